package tx

import (
	"encoding/binary"

	"github.com/bsv-blockchain/go-sdk/chainhash"
	"github.com/bsv-blockchain/go-sdk/script"
	"github.com/bsv-blockchain/go-sdk/transaction"
	"github.com/bsv-blockchain/go-sdk/util"
	"github.com/cockroachdb/errors"
)

// DefaultTxVersion is the version of a transaction without extension fields.
const DefaultTxVersion = 2

// BuiltTx is an immutable transaction produced by finalizing a Draft.
type BuiltTx struct {
	Version  uint32
	LockTime uint32
	Inputs   []*transaction.TransactionInput
	Outputs  []*Output
}

// IsExtended reports whether the transaction version carries extension fields.
func (t *BuiltTx) IsExtended() bool {
	return t.Version >= MinExtensionTxVersion
}

// Bytes serializes the transaction. Outputs of an extended transaction always
// carry both trailing fields; an absent lock is written as height 0 and an
// absent tag as an empty byte string.
func (t *BuiltTx) Bytes() []byte {
	buf := binary.LittleEndian.AppendUint32(nil, t.Version)

	buf = append(buf, util.VarInt(uint64(len(t.Inputs))).Bytes()...)
	for _, in := range t.Inputs {
		buf = appendInput(buf, in)
	}

	buf = append(buf, util.VarInt(uint64(len(t.Outputs))).Bytes()...)
	for _, out := range t.Outputs {
		if t.IsExtended() {
			out = withWireDefaults(out)
		}
		buf = append(buf, EncodeOutput(out)...)
	}

	return binary.LittleEndian.AppendUint32(buf, t.LockTime)
}

// TxID returns the double SHA-256 of the serialized transaction.
func (t *BuiltTx) TxID() chainhash.Hash {
	return chainhash.DoubleHashH(t.Bytes())
}

func withWireDefaults(o *Output) *Output {
	if o.SpendLockHeight != nil && o.ProvenanceTag != nil {
		return o
	}
	c := o.Clone()
	if c.SpendLockHeight == nil {
		c.SpendLockHeight = Uint64Ptr(0)
	}
	if c.ProvenanceTag == nil {
		c.ProvenanceTag = []byte{}
	}
	return c
}

func appendInput(buf []byte, in *transaction.TransactionInput) []byte {
	if in.SourceTXID != nil {
		buf = append(buf, in.SourceTXID[:]...)
	} else {
		buf = append(buf, make([]byte, chainhash.HashSize)...)
	}
	buf = binary.LittleEndian.AppendUint32(buf, in.SourceTxOutIndex)

	var unlocking []byte
	if in.UnlockingScript != nil {
		unlocking = *in.UnlockingScript
	}
	buf = append(buf, util.VarInt(uint64(len(unlocking))).Bytes()...)
	buf = append(buf, unlocking...)
	return binary.LittleEndian.AppendUint32(buf, in.SequenceNumber)
}

// ParseTransaction decodes a serialized transaction, choosing the output
// decoder by the transaction's version.
func ParseTransaction(raw []byte) (*BuiltTx, error) {
	r := NewReader(raw)
	fail := func(field string, err error) error {
		return &DecodeError{Index: -1, Field: field, Err: err}
	}

	version, err := r.ReadUint32()
	if err != nil {
		return nil, fail("version", err)
	}

	inCount, err := r.ReadVarInt()
	if err != nil {
		return nil, fail("input count", err)
	}
	// Each input needs at least 41 bytes.
	if inCount > uint64(r.Len())/41 {
		return nil, fail("input count", errors.Wrapf(ErrMalformed, "%d inputs exceed remaining data", inCount))
	}
	t := &BuiltTx{Version: version, Inputs: make([]*transaction.TransactionInput, 0, inCount)}
	for i := uint64(0); i < inCount; i++ {
		in, err := readInput(r)
		if err != nil {
			return nil, fail("input", errors.Wrapf(err, "input %d", i))
		}
		t.Inputs = append(t.Inputs, in)
	}

	outCount, err := r.ReadVarInt()
	if err != nil {
		return nil, fail("output count", err)
	}
	// Each output needs at least 9 bytes.
	if outCount > uint64(r.Len())/9 {
		return nil, fail("output count", errors.Wrapf(ErrMalformed, "%d outputs exceed remaining data", outCount))
	}
	t.Outputs = make([]*Output, 0, outCount)
	for i := uint64(0); i < outCount; i++ {
		out, err := DecodeOutputVersioned(r, uint32(i), version)
		if err != nil {
			return nil, err
		}
		t.Outputs = append(t.Outputs, out)
	}

	if t.LockTime, err = r.ReadUint32(); err != nil {
		return nil, fail("lock time", err)
	}
	if r.Len() != 0 {
		return nil, fail("trailer", errors.Wrapf(ErrMalformed, "%d unread bytes", r.Len()))
	}
	return t, nil
}

func readInput(r *Reader) (*transaction.TransactionInput, error) {
	txid, err := r.ReadBytes(chainhash.HashSize)
	if err != nil {
		return nil, err
	}
	hash, err := chainhash.NewHash(txid)
	if err != nil {
		return nil, errors.Wrap(ErrMalformed, err.Error())
	}
	vout, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	scriptLen, err := r.ReadVarInt()
	if err != nil {
		return nil, err
	}
	unlocking, err := r.ReadBytes(scriptLen)
	if err != nil {
		return nil, err
	}
	seq, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	return &transaction.TransactionInput{
		SourceTXID:       hash,
		SourceTxOutIndex: vout,
		UnlockingScript:  script.NewFromBytes(unlocking),
		SequenceNumber:   seq,
	}, nil
}
