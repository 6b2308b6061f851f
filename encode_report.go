package abledger

import (
	"encoding/csv"
	"fmt"
	"io"
)

// reportHeader is the column layout of the per-lot CSV report.
var reportHeader = []string{
	"Date", "Id", "Account", "Value", "Currency", "Amount",
	"Chargeable", "Profit", "Balance", "Cost",
}

// EncodeReport writes per-lot report rows as CSV. Value, Chargeable, Profit
// and Cost are in base currency; Amount and Balance in the account's own.
func EncodeReport(w io.Writer, rows []ReportRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(reportHeader); err != nil {
		return fmt.Errorf("writing report header: %w", err)
	}
	for _, r := range rows {
		rec := []string{
			r.Date.String(),
			r.ID,
			r.Account,
			r.Value.StringFixed(2),
			r.Currency,
			r.Quantity.StringFixed(8),
			r.Chargeable.StringFixed(2),
			r.Profit.StringFixed(2),
			r.Balance.StringFixed(8),
			r.Cost.StringFixed(2),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("writing report row %s: %w", r.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// EncodeTransfers writes the transfer reconciliation report as CSV. Matched
// duplicates carry the id of their counterpart.
func EncodeTransfers(w io.Writer, report []TransferStatus) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Date", "Id", "Fingerprint", "Source", "Matched With"}); err != nil {
		return fmt.Errorf("writing transfer header: %w", err)
	}
	for _, t := range report {
		rec := []string{t.Date.String(), t.ID, t.Fingerprint, t.Source, t.MatchedWith}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("writing transfer row %s: %w", t.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
