package tx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSorterFor_None(t *testing.T) {
	in := []*Output{{Value: 3}, {Value: 1}, {Value: 2}}
	out := SorterFor(SortNone).Sort(in)
	require.Len(t, out, 3)
	assert.Equal(t, []uint64{3, 1, 2}, values(out))
}

func TestSorterFor_BIP69(t *testing.T) {
	in := []*Output{
		{Value: 5, LockingScript: testScript(0x02)},
		{Value: 1, LockingScript: testScript(0x09)},
		{Value: 5, LockingScript: testScript(0x01)},
		{Value: 0, LockingScript: testScript(0x6a)},
	}
	out := SorterFor(SortBIP69).Sort(in)
	assert.Equal(t, []uint64{0, 1, 5, 5}, values(out))
	assert.Equal(t, []byte{0x01}, out[2].ScriptBytes())
	assert.Equal(t, []byte{0x02}, out[3].ScriptBytes())

	// The input slice is left untouched.
	assert.Equal(t, uint64(5), in[0].Value)
}

func TestParseSortType(t *testing.T) {
	st, err := ParseSortType("bip69")
	require.NoError(t, err)
	assert.Equal(t, SortBIP69, st)
	assert.Equal(t, "bip69", st.String())

	_, err = ParseSortType("shuffle")
	assert.Error(t, err)
}

func values(outs []*Output) []uint64 {
	v := make([]uint64, len(outs))
	for i, o := range outs {
		v[i] = o.Value
	}
	return v
}
