package abledger

import "errors"

// Every fatal condition maps to one of these sentinels so callers can abort
// the whole run with a meaningful category. There is no recovery path: a
// partial report is worthless because later totals depend on full, ordered
// processing.
var (
	// ErrInvalidAdjustment means a lot was asked to absorb a quantity it
	// cannot: wrong sign, or more than is outstanding. It signals a defect
	// in the matching algorithm, never bad input.
	ErrInvalidAdjustment = errors.New("invalid lot adjustment")

	// ErrNoRate means a required currency conversion is missing for an
	// hour bucket.
	ErrNoRate = errors.New("no conversion rate available")

	// ErrInvalidExchange means both legs of a trade move in the same
	// direction. The input data is corrupt.
	ErrInvalidExchange = errors.New("invalid fund exchange")

	// ErrMalformedRecord means a source line could not be parsed. It is
	// always wrapped with file and line context.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrAlreadyProcessed means Process was called twice on an account, or
	// a query was made before Process ran.
	ErrAlreadyProcessed = errors.New("account already processed")
)
