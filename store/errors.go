package store

import "github.com/cockroachdb/errors"

var (
	// ErrNilParam indicates a required parameter is nil.
	ErrNilParam = errors.New("store: required parameter is nil")

	// ErrTxNotFound indicates the transaction was not found in the store.
	ErrTxNotFound = errors.New("store: transaction not found")

	// ErrDuplicateTx indicates a transaction with this TxID already exists.
	ErrDuplicateTx = errors.New("store: duplicate transaction")

	// ErrInvalidOutput indicates an owned position or outpoint that does not exist.
	ErrInvalidOutput = errors.New("store: invalid output reference")

	// ErrCorrupt indicates a stored record could not be decoded.
	ErrCorrupt = errors.New("store: corrupt record")
)
