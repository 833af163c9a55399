package provenance

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func TestIsRecognized(t *testing.T) {
	denom := append(decodeHex(t, DenominationPrefixHex), 0x01, 0x02, 0x03)

	tests := []struct {
		name string
		tag  []byte
		want bool
	}{
		{"absent", nil, true},
		{"plain", decodeHex(t, "73616665"), true},
		{"reward", decodeHex(t, RewardHex), true},
		{"denomination prefix only", decodeHex(t, DenominationPrefixHex), true},
		{"denomination with annotation", denom, true},
		{"unknown", decodeHex(t, "deadbeef"), false},
		{"empty", []byte{}, false},
		{"plain with suffix", decodeHex(t, "7361666500"), false},
		{"reward truncated", decodeHex(t, RewardHex)[:40], false},
		{"denomination prefix truncated", decodeHex(t, DenominationPrefixHex)[:20], false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRecognized(tt.tag))
		})
	}
}

func TestIsRecognizedHex(t *testing.T) {
	assert.True(t, IsRecognizedHex(""))
	assert.True(t, IsRecognizedHex(PlainHex))
	assert.True(t, IsRecognizedHex(RewardHex))
	assert.False(t, IsRecognizedHex("deadbeef"))
	assert.False(t, IsRecognizedHex("not hex"))
}

func TestPlain(t *testing.T) {
	p := Plain()
	assert.Equal(t, []byte("safe"), p)
	assert.True(t, IsPlain(p))

	// Mutating the copy must not affect the marker.
	p[0] = 0x00
	assert.True(t, IsPlain(Plain()))
	assert.False(t, IsPlain(nil))
}

func TestTransactionVisible(t *testing.T) {
	assert.True(t, TransactionVisible(nil))
	assert.True(t, TransactionVisible([][]byte{nil, Plain(), decodeHex(t, RewardHex)}))
	assert.False(t, TransactionVisible([][]byte{Plain(), decodeHex(t, "deadbeef")}))
}
