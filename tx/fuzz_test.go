package tx

import (
	"bytes"
	"testing"
)

// FuzzParseTransactionNoPanic ensures ParseTransaction never panics.
func FuzzParseTransactionNoPanic(f *testing.F) {
	f.Add([]byte{})
	f.Add([]byte{0x02, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00})
	f.Add([]byte{0x67, 0x00, 0x00, 0x00, 0x00, 0x01, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00})
	f.Add([]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff})

	f.Fuzz(func(t *testing.T, raw []byte) {
		ParseTransaction(raw)
	})
}

// FuzzOutputRoundTrip verifies EncodeOutput followed by DecodeOutputVersioned
// returns the original fields for extension transactions.
func FuzzOutputRoundTrip(f *testing.F) {
	f.Add(uint64(0), []byte{0x6a}, uint64(0), []byte("safe"))
	f.Add(uint64(546), bytes.Repeat([]byte{0x01}, 300), uint64(1<<40), []byte{})

	f.Fuzz(func(t *testing.T, value uint64, lockingScript []byte, lock uint64, tag []byte) {
		if tag == nil {
			tag = []byte{}
		}
		o := &Output{
			Value:           value,
			LockingScript:   testScript(lockingScript...),
			SpendLockHeight: &lock,
			ProvenanceTag:   tag,
		}
		got, err := DecodeOutputVersioned(NewReader(EncodeOutput(o)), 0, ExtensionTxVersion)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got.Value != value || got.LockHeight() != lock {
			t.Errorf("value/lock mismatch: got %d/%d", got.Value, got.LockHeight())
		}
		if !bytes.Equal(got.ScriptBytes(), lockingScript) || !bytes.Equal(got.ProvenanceTag, tag) {
			t.Error("script/tag mismatch")
		}
	})
}
