package store

import (
	"path/filepath"
	"testing"

	"github.com/bsv-blockchain/go-sdk/chainhash"
	"github.com/bsv-blockchain/go-sdk/script"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"

	"github.com/bitfsorg/libsafe-go/provenance"
	"github.com/bitfsorg/libsafe-go/tx"
	"github.com/bitfsorg/libsafe-go/utxo"
)

func tempBoltStore(t *testing.T) *BoltStore {
	t.Helper()
	s, err := OpenBoltStore(filepath.Join(t.TempDir(), "wallet.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// eachStore runs fn against every Store implementation.
func eachStore(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Run("bolt", func(t *testing.T) { fn(t, tempBoltStore(t)) })
	t.Run("mem", func(t *testing.T) { fn(t, NewMemStore()) })
}

func testTx(seed byte, timestamp int64, values ...uint64) *utxo.Transaction {
	t := &utxo.Transaction{
		TxID:      chainhash.DoubleHashH([]byte{seed}),
		Version:   tx.ExtensionTxVersion,
		Timestamp: timestamp,
	}
	for i, v := range values {
		t.Outputs = append(t.Outputs, &tx.Output{
			Value:         v,
			Index:         uint32(i),
			LockingScript: script.NewFromBytes([]byte{0x51, seed}),
			ProvenanceTag: provenance.Plain(),
		})
		t.Owned = append(t.Owned, uint32(i))
	}
	return t
}

func uint32Ptr(v uint32) *uint32 { return &v }

func TestStore_PutAndGet(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		in := testTx(1, 100, 10, 20)
		in.BlockHeight = uint32Ptr(0)
		in.Outputs[0].SpendLockHeight = tx.Uint64Ptr(0)
		in.Outputs[1].ProvenanceTag = []byte{}
		require.NoError(t, s.PutTransaction(in))

		got, err := s.GetTransaction(in.TxID)
		require.NoError(t, err)
		assert.Equal(t, in.TxID, got.TxID)
		assert.Equal(t, in.Version, got.Version)
		assert.Equal(t, int64(100), got.Timestamp)
		require.NotNil(t, got.BlockHeight)
		assert.Equal(t, uint32(0), *got.BlockHeight)
		require.Len(t, got.Outputs, 2)

		// Zero lock and empty tag keep their presence.
		require.NotNil(t, got.Outputs[0].SpendLockHeight)
		assert.Equal(t, uint64(0), *got.Outputs[0].SpendLockHeight)
		assert.Equal(t, provenance.Plain(), got.Outputs[0].ProvenanceTag)
		require.NotNil(t, got.Outputs[1].ProvenanceTag)
		assert.Empty(t, got.Outputs[1].ProvenanceTag)
		assert.Nil(t, got.Outputs[1].SpendLockHeight)
		assert.Equal(t, uint32(1), got.Outputs[1].Index)
		assert.Equal(t, []byte{0x51, 1}, got.Outputs[1].ScriptBytes())
	})
}

func TestStore_PutErrors(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		assert.ErrorIs(t, s.PutTransaction(nil), ErrNilParam)

		in := testTx(2, 0, 5)
		require.NoError(t, s.PutTransaction(in))
		assert.ErrorIs(t, s.PutTransaction(in), ErrDuplicateTx)

		bad := testTx(3, 0, 5)
		bad.Owned = []uint32{4}
		assert.ErrorIs(t, s.PutTransaction(bad), ErrInvalidOutput)

		_, err := s.GetTransaction(chainhash.DoubleHashH([]byte("missing")))
		assert.ErrorIs(t, err, ErrTxNotFound)
	})
}

func TestStore_Tip(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		_, ok, err := s.LastBlockHeight()
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, s.SetTip(500))
		h, ok, err := s.LastBlockHeight()
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, uint32(500), h)
	})
}

func TestStore_OwnedOutputsAndSpent(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		a := testTx(4, 1, 10, 20, 30)
		a.Owned = []uint32{0, 2}
		require.NoError(t, s.PutTransaction(a))

		outs, err := s.OwnedOutputs()
		require.NoError(t, err)
		require.Len(t, outs, 2)
		assert.Equal(t, uint64(10), outs[0].Value())
		assert.Equal(t, uint64(30), outs[1].Value())
		assert.Equal(t, a.TxID, outs[1].TxID)

		assert.ErrorIs(t, s.MarkSpent(a.TxID, 1), ErrInvalidOutput)
		assert.ErrorIs(t, s.MarkSpent(chainhash.DoubleHashH([]byte("x")), 0), ErrTxNotFound)
		require.NoError(t, s.MarkSpent(a.TxID, 0))

		outs, err = s.OwnedOutputs()
		require.NoError(t, err)
		require.Len(t, outs, 1)
		assert.Equal(t, uint64(30), outs[0].Value())
	})
}

func TestStore_ConfirmTransaction(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		a := testTx(5, 1, 10)
		require.NoError(t, s.PutTransaction(a))
		assert.ErrorIs(t, s.ConfirmTransaction(chainhash.DoubleHashH([]byte("x")), 1), ErrTxNotFound)

		require.NoError(t, s.ConfirmTransaction(a.TxID, 77))
		outs, err := s.OwnedOutputs()
		require.NoError(t, err)
		require.Len(t, outs, 1)
		require.NotNil(t, outs[0].BlockHeight)
		assert.Equal(t, uint32(77), *outs[0].BlockHeight)
	})
}

func TestStore_DeleteTransaction(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		a := testTx(6, 1, 10)
		require.NoError(t, s.PutTransaction(a))
		require.NoError(t, s.MarkSpent(a.TxID, 0))

		require.NoError(t, s.DeleteTransaction(a.TxID))
		assert.ErrorIs(t, s.DeleteTransaction(a.TxID), ErrTxNotFound)

		// Re-adding after a reorg starts with no spent markers.
		require.NoError(t, s.PutTransaction(a))
		outs, err := s.OwnedOutputs()
		require.NoError(t, err)
		assert.Len(t, outs, 1)
	})
}

func TestStore_TransactionsOrderedByTime(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		require.NoError(t, s.PutTransaction(testTx(7, 300, 1)))
		require.NoError(t, s.PutTransaction(testTx(8, 100, 1)))
		require.NoError(t, s.PutTransaction(testTx(9, 200, 1)))

		txs, err := s.Transactions()
		require.NoError(t, err)
		require.Len(t, txs, 3)
		assert.Equal(t, int64(100), txs[0].Timestamp)
		assert.Equal(t, int64(200), txs[1].Timestamp)
		assert.Equal(t, int64(300), txs[2].Timestamp)
	})
}

func TestStore_Snapshot(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		outs, tip, err := s.Snapshot()
		require.NoError(t, err)
		assert.Empty(t, outs)
		assert.Equal(t, uint32(0), tip)

		require.NoError(t, s.PutTransaction(testTx(10, 1, 42)))
		require.NoError(t, s.SetTip(9))
		outs, tip, err = s.Snapshot()
		require.NoError(t, err)
		assert.Len(t, outs, 1)
		assert.Equal(t, uint32(9), tip)
	})
}

func TestStore_FeedsProvider(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		confirmed := testTx(11, 1, 100)
		confirmed.BlockHeight = uint32Ptr(10)
		locked := testTx(12, 2, 40)
		locked.BlockHeight = uint32Ptr(10)
		locked.Outputs[0].SpendLockHeight = tx.Uint64Ptr(1000)
		pending := testTx(13, 3, 7)

		for _, in := range []*utxo.Transaction{confirmed, locked, pending} {
			require.NoError(t, s.PutTransaction(in))
		}
		require.NoError(t, s.SetTip(20))

		p, err := utxo.NewProvider(utxo.ProviderConfig{Storage: s})
		require.NoError(t, err)
		bal, err := p.Balance()
		require.NoError(t, err)
		assert.Equal(t, utxo.Balance{Spendable: 100, Locked: 40}, bal)
	})
}

func TestBoltStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "wallet.db")
	s, err := OpenBoltStore(path, nil)
	require.NoError(t, err)
	a := testTx(14, 1, 10)
	require.NoError(t, s.PutTransaction(a))
	require.NoError(t, s.SetTip(3))
	require.NoError(t, s.Close())

	s, err = OpenBoltStore(path, nil)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.GetTransaction(a.TxID)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), got.Outputs[0].Value)
	h, ok, err := s.LastBlockHeight()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint32(3), h)
}

func TestBoltStore_OwnedPositionOutOfRange(t *testing.T) {
	s := tempBoltStore(t)
	a := testTx(15, 1, 10)
	require.NoError(t, s.PutTransaction(a))

	rec, err := toRecord(a)
	require.NoError(t, err)
	rec.Owned = append(rec.Owned, 7)
	data, err := encodeGob(rec)
	require.NoError(t, err)
	require.NoError(t, s.db.Update(func(btx *bbolt.Tx) error {
		return btx.Bucket(bucketTxs).Put(a.TxID[:], data)
	}))

	_, err = s.GetTransaction(a.TxID)
	assert.ErrorIs(t, err, ErrCorrupt)
	_, err = s.OwnedOutputs()
	assert.ErrorIs(t, err, ErrCorrupt)
	_, _, err = s.Snapshot()
	assert.ErrorIs(t, err, ErrCorrupt)
}
