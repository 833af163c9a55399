// Package store persists the wallet's transactions, spent outpoints and chain
// tip, and serves them to the utxo package.
package store

import (
	"bytes"
	"encoding/gob"
	"slices"

	"github.com/bsv-blockchain/go-sdk/chainhash"
	"github.com/cockroachdb/errors"

	"github.com/bitfsorg/libsafe-go/tx"
	"github.com/bitfsorg/libsafe-go/utxo"
)

// Store is the read/write wallet database.
type Store interface {
	utxo.Storage
	utxo.Snapshotter
	utxo.HistoryStorage

	// PutTransaction stores a transaction touching the wallet.
	PutTransaction(t *utxo.Transaction) error

	// GetTransaction retrieves a transaction by TxID.
	GetTransaction(txID chainhash.Hash) (*utxo.Transaction, error)

	// ConfirmTransaction records the block height that included a transaction.
	ConfirmTransaction(txID chainhash.Hash, height uint32) error

	// MarkSpent records that an owned output was consumed.
	MarkSpent(txID chainhash.Hash, vout uint32) error

	// DeleteTransaction removes an invalidated or reorganized transaction.
	DeleteTransaction(txID chainhash.Hash) error

	// SetTip records the chain tip height.
	SetTip(height uint32) error
}

// record is the persisted form of utxo.Transaction. Outputs are stored with
// the output codec rather than gob so empty tags and zero locks survive.
type record struct {
	Version   uint32
	Outgoing  bool
	Confirmed bool
	Height    uint32
	Timestamp int64
	Outputs   [][]byte
	Owned     []uint32
}

const (
	flagLock byte = 1 << iota
	flagTag
)

func encodeStoredOutput(o *tx.Output) []byte {
	var flags byte
	if o.SpendLockHeight != nil {
		flags |= flagLock
	}
	if o.ProvenanceTag != nil {
		flags |= flagTag
	}
	return append([]byte{flags}, tx.EncodeOutput(o)...)
}

func decodeStoredOutput(b []byte, index uint32) (*tx.Output, error) {
	if len(b) == 0 {
		return nil, errors.Wrap(ErrCorrupt, "empty output")
	}
	flags := b[0]
	r := tx.NewReader(b[1:])

	o, err := tx.DecodeOutputLegacy(r)
	if err != nil {
		return nil, errors.Wrapf(ErrCorrupt, "output %d: %v", index, err)
	}
	o.Index = index
	if flags&flagLock != 0 {
		h, err := r.ReadUint64()
		if err != nil {
			return nil, errors.Wrapf(ErrCorrupt, "output %d lock: %v", index, err)
		}
		o.SpendLockHeight = &h
	}
	if flags&flagTag != 0 {
		n, err := r.ReadVarInt()
		if err != nil {
			return nil, errors.Wrapf(ErrCorrupt, "output %d tag length: %v", index, err)
		}
		if o.ProvenanceTag, err = r.ReadBytes(n); err != nil {
			return nil, errors.Wrapf(ErrCorrupt, "output %d tag: %v", index, err)
		}
	}
	return o, nil
}

func toRecord(t *utxo.Transaction) (*record, error) {
	rec := &record{
		Version:   t.Version,
		Outgoing:  t.Outgoing,
		Timestamp: t.Timestamp,
		Outputs:   make([][]byte, len(t.Outputs)),
		Owned:     slices.Clone(t.Owned),
	}
	if t.BlockHeight != nil {
		rec.Confirmed = true
		rec.Height = *t.BlockHeight
	}
	for i, o := range t.Outputs {
		if o == nil {
			return nil, errors.Wrapf(ErrNilParam, "output %d", i)
		}
		rec.Outputs[i] = encodeStoredOutput(o)
	}
	for _, vout := range rec.Owned {
		if int(vout) >= len(rec.Outputs) {
			return nil, errors.Wrapf(ErrInvalidOutput, "owned position %d of %d outputs", vout, len(rec.Outputs))
		}
	}
	return rec, nil
}

func fromRecord(txID chainhash.Hash, rec *record) (*utxo.Transaction, error) {
	t := &utxo.Transaction{
		TxID:      txID,
		Version:   rec.Version,
		Outgoing:  rec.Outgoing,
		Timestamp: rec.Timestamp,
		Outputs:   make([]*tx.Output, len(rec.Outputs)),
		Owned:     slices.Clone(rec.Owned),
	}
	if rec.Confirmed {
		h := rec.Height
		t.BlockHeight = &h
	}
	for i, raw := range rec.Outputs {
		o, err := decodeStoredOutput(raw, uint32(i))
		if err != nil {
			return nil, err
		}
		t.Outputs[i] = o
	}
	for _, vout := range t.Owned {
		if int(vout) >= len(t.Outputs) {
			return nil, errors.Wrapf(ErrCorrupt, "owned position %d of %d outputs", vout, len(t.Outputs))
		}
	}
	return t, nil
}

// ownedOutputs expands t into its unspent owned outputs.
func ownedOutputs(t *utxo.Transaction, spent func(vout uint32) bool) []*utxo.OwnedOutput {
	var outs []*utxo.OwnedOutput
	for _, vout := range t.Owned {
		if spent(vout) {
			continue
		}
		outs = append(outs, &utxo.OwnedOutput{
			Output:      t.Outputs[vout],
			TxID:        t.TxID,
			Outgoing:    t.Outgoing,
			BlockHeight: t.BlockHeight,
		})
	}
	return outs
}

// encodeGob serializes a value using gob encoding.
func encodeGob(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeGob deserializes gob-encoded data into a value.
func decodeGob(data []byte, v interface{}) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}
