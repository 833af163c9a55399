package tx

import (
	"encoding/binary"

	"github.com/bsv-blockchain/go-sdk/script"
	"github.com/bsv-blockchain/go-sdk/util"
	"github.com/cockroachdb/errors"
)

// MinExtensionTxVersion is the first transaction version whose outputs carry
// the spend-lock and provenance fields on the wire.
const MinExtensionTxVersion = 102

// ExtensionTxVersion is the version stamped on transactions built with
// extension fields.
const ExtensionTxVersion = 103

// EncodeOutput serializes o in wire format:
//
//	[8 value][varint len][script] [8 spend lock height]? [varint len][tag]?
//
// Each trailing field is written only when it is present.
func EncodeOutput(o *Output) []byte {
	scriptBytes := o.ScriptBytes()
	buf := make([]byte, 0, 8+9+len(scriptBytes)+8+9+len(o.ProvenanceTag))

	buf = binary.LittleEndian.AppendUint64(buf, o.Value)
	buf = append(buf, util.VarInt(uint64(len(scriptBytes))).Bytes()...)
	buf = append(buf, scriptBytes...)

	if o.SpendLockHeight != nil {
		buf = binary.LittleEndian.AppendUint64(buf, *o.SpendLockHeight)
	}
	if o.ProvenanceTag != nil {
		buf = append(buf, util.VarInt(uint64(len(o.ProvenanceTag))).Bytes()...)
		buf = append(buf, o.ProvenanceTag...)
	}
	return buf
}

// DecodeOutputLegacy reads value and locking script only. It never reads the
// extension fields and is used for transactions older than
// MinExtensionTxVersion.
func DecodeOutputLegacy(r *Reader) (*Output, error) {
	return decodeOutput(r, 0, false)
}

// DecodeOutputVersioned reads an output at position index of a transaction
// with the given version. Extension fields are read when version is at least
// MinExtensionTxVersion.
func DecodeOutputVersioned(r *Reader, index uint32, version uint32) (*Output, error) {
	return decodeOutput(r, index, version >= MinExtensionTxVersion)
}

func decodeOutput(r *Reader, index uint32, extended bool) (*Output, error) {
	if r == nil {
		return nil, errors.Wrap(ErrNilParam, "reader")
	}
	fail := func(field string, err error) error {
		return &DecodeError{Index: int(index), Field: field, Err: err}
	}

	value, err := r.ReadUint64()
	if err != nil {
		return nil, fail("value", err)
	}
	scriptLen, err := r.ReadVarInt()
	if err != nil {
		return nil, fail("script length", err)
	}
	scriptBytes, err := r.ReadBytes(scriptLen)
	if err != nil {
		return nil, fail("locking script", err)
	}

	out := &Output{
		Value:         value,
		Index:         index,
		LockingScript: script.NewFromBytes(scriptBytes),
	}
	if !extended {
		return out, nil
	}

	lock, err := r.ReadUint64()
	if err != nil {
		return nil, fail("spend lock height", err)
	}
	tagLen, err := r.ReadVarInt()
	if err != nil {
		return nil, fail("provenance tag length", err)
	}
	tag, err := r.ReadBytes(tagLen)
	if err != nil {
		return nil, fail("provenance tag", err)
	}
	out.SpendLockHeight = &lock
	out.ProvenanceTag = tag
	return out, nil
}

// Reader is a forward-only cursor over a serialized transaction.
type Reader struct {
	buf []byte
	off int
}

// NewReader returns a Reader over b. The caller must not modify b while reading.
func NewReader(b []byte) *Reader {
	return &Reader{buf: b}
}

// Len returns the number of unread bytes.
func (r *Reader) Len() int { return len(r.buf) - r.off }

// ReadBytes returns a copy of the next n bytes.
func (r *Reader) ReadBytes(n uint64) ([]byte, error) {
	if n > uint64(r.Len()) {
		return nil, errors.Wrapf(ErrTruncated, "need %d bytes, have %d", n, r.Len())
	}
	b := make([]byte, n)
	copy(b, r.buf[r.off:])
	r.off += int(n)
	return b, nil
}

// ReadUint32 reads a little-endian uint32.
func (r *Reader) ReadUint32() (uint32, error) {
	if r.Len() < 4 {
		return 0, errors.Wrapf(ErrTruncated, "need 4 bytes, have %d", r.Len())
	}
	v := binary.LittleEndian.Uint32(r.buf[r.off:])
	r.off += 4
	return v, nil
}

// ReadUint64 reads a little-endian uint64.
func (r *Reader) ReadUint64() (uint64, error) {
	if r.Len() < 8 {
		return 0, errors.Wrapf(ErrTruncated, "need 8 bytes, have %d", r.Len())
	}
	v := binary.LittleEndian.Uint64(r.buf[r.off:])
	r.off += 8
	return v, nil
}

// ReadVarInt reads a Bitcoin compact-size integer.
func (r *Reader) ReadVarInt() (uint64, error) {
	if r.Len() < 1 {
		return 0, errors.Wrap(ErrTruncated, "varint prefix")
	}
	size := 1
	switch r.buf[r.off] {
	case 0xfd:
		size = 3
	case 0xfe:
		size = 5
	case 0xff:
		size = 9
	}
	if r.Len() < size {
		return 0, errors.Wrapf(ErrTruncated, "varint needs %d bytes, have %d", size, r.Len())
	}
	v, n := util.NewVarIntFromBytes(r.buf[r.off : r.off+size])
	r.off += n
	return uint64(v), nil
}
