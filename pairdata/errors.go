package pairdata

import "errors"

var (
	// ErrConfiguration reports conflicting representation flags on a TCR:
	// the CDR3 and full-chain projections cannot both be active.
	ErrConfiguration = errors.New("conflicting chain representation flags")

	// ErrValidation reports required identity fields that are missing or
	// unrecoverable after normalization.
	ErrValidation = errors.New("missing required identity fields")

	// ErrSplitInvariant reports a group key present in both partitions
	// after reconciliation. This must never happen.
	ErrSplitInvariant = errors.New("group key present in both train and test partitions")
)
