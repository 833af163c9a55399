package tx

import (
	"testing"

	"github.com/bsv-blockchain/go-sdk/chainhash"
	"github.com/bsv-blockchain/go-sdk/transaction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/libsafe-go/provenance"
)

func testInput(seed string, vout uint32) *transaction.TransactionInput {
	hash := chainhash.DoubleHashH([]byte(seed))
	return &transaction.TransactionInput{
		SourceTXID:       &hash,
		SourceTxOutIndex: vout,
		UnlockingScript:  testScript(0x01, 0x02),
		SequenceNumber:   transaction.DefaultSequenceNumber,
	}
}

func TestBuiltTx_RoundTripLegacy(t *testing.T) {
	built := &BuiltTx{
		Version:  DefaultTxVersion,
		LockTime: 9,
		Inputs:   []*transaction.TransactionInput{testInput("a", 0), testInput("b", 3)},
		Outputs: []*Output{
			{Value: 1000, Index: 0, LockingScript: testScript(0x76, 0xa9)},
			{Value: 0, Index: 1, LockingScript: testScript(0x6a, 0x01)},
		},
	}

	parsed, err := ParseTransaction(built.Bytes())
	require.NoError(t, err)
	assert.Equal(t, built.Version, parsed.Version)
	assert.Equal(t, built.LockTime, parsed.LockTime)
	require.Len(t, parsed.Inputs, 2)
	assert.Equal(t, built.Inputs[1].SourceTXID, parsed.Inputs[1].SourceTXID)
	assert.Equal(t, uint32(3), parsed.Inputs[1].SourceTxOutIndex)
	require.Len(t, parsed.Outputs, 2)
	for i, o := range parsed.Outputs {
		assert.Equal(t, built.Outputs[i].Value, o.Value)
		assert.Equal(t, uint32(i), o.Index)
		assert.False(t, o.HasExtension())
	}
	assert.Equal(t, built.TxID(), parsed.TxID())
}

func TestBuiltTx_RoundTripExtended(t *testing.T) {
	built := &BuiltTx{
		Version: ExtensionTxVersion,
		Inputs:  []*transaction.TransactionInput{testInput("c", 1)},
		Outputs: []*Output{
			{Value: 10, LockingScript: testScript(0x51), SpendLockHeight: Uint64Ptr(800), ProvenanceTag: provenance.Plain()},
			{Value: 20, Index: 1, LockingScript: testScript(0x52), ProvenanceTag: provenance.Plain()},
			{Value: 30, Index: 2, LockingScript: testScript(0x53)},
		},
	}

	parsed, err := ParseTransaction(built.Bytes())
	require.NoError(t, err)
	require.Len(t, parsed.Outputs, 3)

	assert.Equal(t, uint64(800), parsed.Outputs[0].LockHeight())
	assert.True(t, provenance.IsPlain(parsed.Outputs[0].ProvenanceTag))

	// Absent fields travel as zero height and an empty tag.
	assert.Equal(t, uint64(0), parsed.Outputs[1].LockHeight())
	assert.True(t, provenance.IsPlain(parsed.Outputs[1].ProvenanceTag))
	assert.Equal(t, uint64(0), parsed.Outputs[2].LockHeight())
	assert.Empty(t, parsed.Outputs[2].ProvenanceTag)

	// Serializing never mutates the built outputs.
	assert.Nil(t, built.Outputs[1].SpendLockHeight)
	assert.Nil(t, built.Outputs[2].ProvenanceTag)
}

func TestBuiltTx_FromBuilder(t *testing.T) {
	d := NewDraft()
	d.SetRecipient(testAddress(t), 5000)
	d.SetChange(testAddress(t), 100)
	d.SetSpendLock(1234)
	d.AddInput(testInput("funding", 0))

	built, err := NewBuilder(BuilderConfig{}).Build(d)
	require.NoError(t, err)

	parsed, err := ParseTransaction(built.Bytes())
	require.NoError(t, err)
	assert.Equal(t, uint32(ExtensionTxVersion), parsed.Version)
	require.Len(t, parsed.Outputs, 2)
	assert.Equal(t, uint64(1234), parsed.Outputs[0].LockHeight())
	assert.Equal(t, uint64(0), parsed.Outputs[1].LockHeight())
	assert.True(t, parsed.Outputs[0].IsLockedAt(1233))
	assert.False(t, parsed.Outputs[0].IsLockedAt(1234))
}

func TestParseTransaction_Errors(t *testing.T) {
	good := (&BuiltTx{
		Version: DefaultTxVersion,
		Inputs:  []*transaction.TransactionInput{testInput("x", 0)},
		Outputs: []*Output{{Value: 1, LockingScript: testScript(0x51)}},
	}).Bytes()

	for n := 0; n < len(good); n++ {
		_, err := ParseTransaction(good[:n])
		assert.Error(t, err, "prefix of %d bytes", n)
	}

	_, err := ParseTransaction(append(good, 0x00))
	assert.ErrorIs(t, err, ErrMalformed)

	// Declares far more inputs than the data can hold.
	_, err = ParseTransaction([]byte{0x02, 0x00, 0x00, 0x00, 0xfd, 0xff, 0xff})
	assert.ErrorIs(t, err, ErrMalformed)
}
