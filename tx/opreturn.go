package tx

import (
	"slices"

	"github.com/bsv-blockchain/go-sdk/script"
)

// BuildNullDataScript returns the extension-data script: a single OP_RETURN
// followed by each payload id and its bytes, ids ascending.
//
// Layout:
//
//	OP_RETURN <id0><payload0> <id1><payload1> ...
//
// The payloads are concatenated raw, not as push data.
func BuildNullDataScript(payloads map[byte][]byte) *script.Script {
	ids := make([]byte, 0, len(payloads))
	size := 1
	for id, data := range payloads {
		ids = append(ids, id)
		size += 1 + len(data)
	}
	slices.Sort(ids)

	s := make(script.Script, 0, size)
	s = append(s, script.OpRETURN)
	for _, id := range ids {
		s = append(s, id)
		s = append(s, payloads[id]...)
	}
	return &s
}

// NullDataSize returns the script size BuildNullDataScript would produce, or
// 0 when there are no payloads.
func NullDataSize(payloads map[byte][]byte) int {
	if len(payloads) == 0 {
		return 0
	}
	size := 1
	for _, data := range payloads {
		size += 1 + len(data)
	}
	return size
}
