package tx

import (
	"bytes"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/libsafe-go/provenance"
)

func TestEncodeOutput_Layout(t *testing.T) {
	o := &Output{
		Value:         0x0102030405060708,
		LockingScript: testScript(0xaa, 0xbb),
	}
	want := []byte{
		0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01, // value LE
		0x02, 0xaa, 0xbb, // script
	}
	assert.Equal(t, want, EncodeOutput(o))

	o.SpendLockHeight = Uint64Ptr(500000)
	o.ProvenanceTag = provenance.Plain()
	want = append(want,
		0x20, 0xa1, 0x07, 0x00, 0x00, 0x00, 0x00, 0x00, // 500000 LE
		0x04, 's', 'a', 'f', 'e',
	)
	assert.Equal(t, want, EncodeOutput(o))
}

func TestEncodeOutput_OptionalFieldsIndependent(t *testing.T) {
	base := EncodeOutput(&Output{Value: 1, LockingScript: testScript(0x51)})

	lockOnly := EncodeOutput(&Output{Value: 1, LockingScript: testScript(0x51), SpendLockHeight: Uint64Ptr(7)})
	assert.Len(t, lockOnly, len(base)+8)

	tagOnly := EncodeOutput(&Output{Value: 1, LockingScript: testScript(0x51), ProvenanceTag: []byte{0x01, 0x02}})
	assert.Len(t, tagOnly, len(base)+3)
}

func TestEncodeOutput_LongScriptVarInt(t *testing.T) {
	long := bytes.Repeat([]byte{0x01}, 300)
	enc := EncodeOutput(&Output{Value: 5, LockingScript: testScript(long...)})
	assert.Equal(t, []byte{0xfd, 0x2c, 0x01}, enc[8:11])

	out, err := DecodeOutputLegacy(NewReader(enc))
	require.NoError(t, err)
	assert.Equal(t, long, out.ScriptBytes())
}

func TestDecodeOutputVersioned_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		out  *Output
	}{
		{"plain lock", &Output{Value: 1000, LockingScript: testScript(0x76, 0xa9), SpendLockHeight: Uint64Ptr(42), ProvenanceTag: provenance.Plain()}},
		{"zero lock empty tag", &Output{Value: 0, LockingScript: testScript(0x6a), SpendLockHeight: Uint64Ptr(0), ProvenanceTag: []byte{}}},
		{"max values", &Output{Value: ^uint64(0), LockingScript: testScript(0x00), SpendLockHeight: Uint64Ptr(^uint64(0)), ProvenanceTag: bytes.Repeat([]byte{0xee}, 260)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.out.Index = 3
			enc := EncodeOutput(tt.out)

			got, err := DecodeOutputVersioned(NewReader(enc), 3, ExtensionTxVersion)
			require.NoError(t, err)
			assert.Equal(t, tt.out.Value, got.Value)
			assert.Equal(t, tt.out.Index, got.Index)
			assert.Equal(t, tt.out.ScriptBytes(), got.ScriptBytes())
			assert.Equal(t, tt.out.SpendLockHeight, got.SpendLockHeight)
			assert.Equal(t, tt.out.ProvenanceTag, got.ProvenanceTag)
		})
	}
}

func TestDecodeOutputVersioned_OldVersionClearsExtension(t *testing.T) {
	o := &Output{Value: 77, LockingScript: testScript(0x51), SpendLockHeight: Uint64Ptr(9), ProvenanceTag: provenance.Plain()}
	enc := EncodeOutput(o)

	r := NewReader(enc)
	got, err := DecodeOutputVersioned(r, 0, MinExtensionTxVersion-1)
	require.NoError(t, err)
	assert.Equal(t, uint64(77), got.Value)
	assert.Nil(t, got.SpendLockHeight)
	assert.Nil(t, got.ProvenanceTag)
	// The extension bytes are left unread.
	assert.Equal(t, 8+5, r.Len())
}

func TestDecodeOutputLegacy_IgnoresExtension(t *testing.T) {
	o := &Output{Value: 12, LockingScript: testScript(0x00, 0x6a), SpendLockHeight: Uint64Ptr(1), ProvenanceTag: []byte{0x01}}
	got, err := DecodeOutputLegacy(NewReader(EncodeOutput(o)))
	require.NoError(t, err)
	assert.False(t, got.HasExtension())
	assert.Equal(t, uint32(0), got.Index)
}

func TestDecodeOutput_Truncated(t *testing.T) {
	full := EncodeOutput(&Output{Value: 1, LockingScript: testScript(0x01, 0x02, 0x03), SpendLockHeight: Uint64Ptr(5), ProvenanceTag: []byte{0x09, 0x09}})

	tests := []struct {
		name  string
		n     int
		field string
	}{
		{"empty", 0, "value"},
		{"short value", 5, "value"},
		{"no script length", 8, "script length"},
		{"short script", 10, "locking script"},
		{"short lock", 15, "spend lock height"},
		{"no tag length", 20, "provenance tag length"},
		{"short tag", 22, "provenance tag"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeOutputVersioned(NewReader(full[:tt.n]), 4, ExtensionTxVersion)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrTruncated)

			var de *DecodeError
			require.True(t, errors.As(err, &de))
			assert.Equal(t, tt.field, de.Field)
			assert.Equal(t, 4, de.Index)
		})
	}
}

func TestDecodeOutput_NilReader(t *testing.T) {
	_, err := DecodeOutputLegacy(nil)
	assert.ErrorIs(t, err, ErrNilParam)
}

func TestReader_VarIntSizes(t *testing.T) {
	tests := []struct {
		in   []byte
		want uint64
	}{
		{[]byte{0x05}, 5},
		{[]byte{0xfd, 0x00, 0x01}, 256},
		{[]byte{0xfe, 0x00, 0x00, 0x01, 0x00}, 65536},
		{[]byte{0xff, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00}, 1 << 32},
	}
	for _, tt := range tests {
		r := NewReader(tt.in)
		v, err := r.ReadVarInt()
		require.NoError(t, err)
		assert.Equal(t, tt.want, v)
		assert.Equal(t, 0, r.Len())
	}

	_, err := NewReader([]byte{0xfe, 0x01}).ReadVarInt()
	assert.ErrorIs(t, err, ErrTruncated)
}
