package renderer

import (
	"bytes"
	"fmt"

	"github.com/aeron/abledger"
	md "github.com/nao1215/markdown"
)

// TransfersMarkdown renders the transfer reconciliation report. Unmatched
// transfers are listed first: they are the ones that need attention.
func TransfersMarkdown(report []abledger.TransferStatus) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	var matched, unmatched [][]string
	for _, ts := range report {
		row := []string{ts.Date.String(), ts.Fingerprint, ts.Source, ts.MatchedWith}
		if ts.MatchedWith == "" {
			unmatched = append(unmatched, row[:3])
		} else {
			matched = append(matched, row)
		}
	}

	doc.H1("Transfer Reconciliation")
	doc.PlainText(fmt.Sprintf("%d transfers, %d unmatched.", len(report), len(unmatched)))

	if len(unmatched) > 0 {
		doc.H2("Unmatched")
		doc.Table(md.TableSet{
			Header: []string{"Date", "Fingerprint", "Source"},
			Rows:   unmatched,
		})
	}
	if len(matched) > 0 {
		doc.H2("Matched")
		doc.Table(md.TableSet{
			Header: []string{"Date", "Fingerprint", "Source", "Matched With"},
			Rows:   matched,
		})
	}
	return doc.String()
}
