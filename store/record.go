package store

import (
	"github.com/bsv-blockchain/go-sdk/transaction"
	"github.com/cockroachdb/errors"

	"github.com/bitfsorg/libsafe-go/utxo"
)

// RecordTransaction stores t and marks every owned output consumed by inputs
// as spent. Inputs spending outputs the store does not own are ignored.
// It returns the number of owned outputs consumed.
func RecordTransaction(s Store, t *utxo.Transaction, inputs []*transaction.TransactionInput) (int, error) {
	if s == nil {
		return 0, errors.Wrap(ErrNilParam, "store")
	}
	if err := s.PutTransaction(t); err != nil {
		return 0, err
	}

	consumed := 0
	for _, in := range inputs {
		if in == nil || in.SourceTXID == nil {
			continue
		}
		err := s.MarkSpent(*in.SourceTXID, in.SourceTxOutIndex)
		switch {
		case err == nil:
			consumed++
		case IsUnknownOutput(err):
		default:
			return consumed, err
		}
	}
	return consumed, nil
}

// IsUnknownOutput reports whether err from MarkSpent means the outpoint is
// not a stored owned output.
func IsUnknownOutput(err error) bool {
	return errors.Is(err, ErrTxNotFound) || errors.Is(err, ErrInvalidOutput)
}
