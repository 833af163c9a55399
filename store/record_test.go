package store

import (
	"testing"

	"github.com/bsv-blockchain/go-sdk/chainhash"
	"github.com/bsv-blockchain/go-sdk/transaction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordTransaction(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		funding := testTx(20, 1, 10, 20)
		funding.Owned = []uint32{0}
		require.NoError(t, s.PutTransaction(funding))

		unknown := chainhash.DoubleHashH([]byte("elsewhere"))
		spend := testTx(21, 2, 5)
		inputs := []*transaction.TransactionInput{
			{SourceTXID: &funding.TxID, SourceTxOutIndex: 0},
			{SourceTXID: &funding.TxID, SourceTxOutIndex: 1}, // not owned
			{SourceTXID: &unknown, SourceTxOutIndex: 0},
			nil,
		}

		n, err := RecordTransaction(s, spend, inputs)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		outs, err := s.OwnedOutputs()
		require.NoError(t, err)
		require.Len(t, outs, 1)
		assert.Equal(t, spend.TxID, outs[0].TxID)

		_, err = RecordTransaction(s, spend, nil)
		assert.ErrorIs(t, err, ErrDuplicateTx)
	})
}

func TestIsUnknownOutput(t *testing.T) {
	assert.True(t, IsUnknownOutput(ErrTxNotFound))
	assert.True(t, IsUnknownOutput(ErrInvalidOutput))
	assert.False(t, IsUnknownOutput(ErrCorrupt))
	assert.False(t, IsUnknownOutput(nil))
}
