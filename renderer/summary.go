// Package renderer turns computed reports into markdown documents.
package renderer

import (
	"bytes"
	"fmt"

	"github.com/aeron/abledger"
	md "github.com/nao1215/markdown"
)

// SummaryMarkdown renders the per-account and portfolio totals of a summary
// as a markdown document.
func SummaryMarkdown(s *abledger.Summary) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Gains Summary %s to %s", s.Start, s.End))

	rows := make([][]string, 0, len(s.Accounts))
	for _, a := range s.Accounts {
		rows = append(rows, []string{
			a.Account,
			a.Currency,
			a.Balance.StringFixed(8),
			a.Cost.StringFixed(2),
			a.Proceeds.StringFixed(2),
			a.Profit.StringFixed(2),
			a.Chargeable.StringFixed(2),
			fmt.Sprintf("%d", a.Disposals),
		})
	}
	table := md.TableSet{
		Header: []string{"Account", "Currency", "Balance", "Cost", "Proceeds", "Profit", "Chargeable", "Disposals"},
		Rows:   rows,
	}
	doc.Table(table)

	doc.H2("Totals")
	totals := md.TableSet{
		Header: []string{"", fmt.Sprintf("Amount (%s)", s.Base)},
		Rows: [][]string{
			{"Proceeds", s.TotalProceeds.StringFixed(2)},
			{"Profit", s.TotalProfit.StringFixed(2)},
			{"Chargeable gain", s.TotalChargeable.StringFixed(2)},
			{"Disposals", fmt.Sprintf("%d", s.Disposals)},
		},
	}
	doc.Table(totals)

	check := "PASS"
	if !s.CheckOK() {
		check = "FAIL"
	}
	doc.PlainText(fmt.Sprintf("Cost conservation check: %s (error %s %s)",
		check, s.CheckError().StringFixed(4), s.Base))

	return doc.String()
}
