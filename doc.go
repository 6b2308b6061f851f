// Package abledger computes realized capital gains and losses for a set of
// per-currency accounts from a chronological stream of trade, transfer and
// deposit records.
//
// Three accounting rules are applied, in this order of precedence:
//
//   - same-day / 30-day ("bed and breakfast") matching of disposals against
//     near-term acquisitions, with a last-in-first-out tie-break,
//   - Section-104 style pooling of everything the matching window leaves
//     behind, and
//   - disregard of gains while an account's balance is negative (a "debt"
//     account).
//
// The package also reconciles transfers reported independently by two source
// files, so that a single real-world movement of funds is only posted once.
//
// The entry point is a Book: feed it canonical Records (see the parse
// subpackage for the CSV front ends), call ProcessAll exactly once, then
// query per-account and whole-portfolio totals.
package abledger
