package tx

import (
	"bytes"
	"slices"

	"github.com/cockroachdb/errors"
)

// SortType selects an output ordering policy.
type SortType int

const (
	// SortNone keeps outputs in construction order.
	SortNone SortType = iota
	// SortBIP69 orders outputs by ascending value, then locking script bytes.
	SortBIP69
)

var sortTypeNames = map[string]SortType{
	"none":  SortNone,
	"bip69": SortBIP69,
}

// ParseSortType maps a configuration name to a SortType.
func ParseSortType(name string) (SortType, error) {
	st, ok := sortTypeNames[name]
	if !ok {
		return SortNone, errors.Newf("tx: unknown sort type %q", name)
	}
	return st, nil
}

func (s SortType) String() string {
	for name, st := range sortTypeNames {
		if st == s {
			return name
		}
	}
	return "unknown"
}

// OutputSorter is a deterministic ordering policy over outputs.
type OutputSorter interface {
	Sort(outputs []*Output) []*Output
}

// SorterFunc adapts a function to OutputSorter.
type SorterFunc func(outputs []*Output) []*Output

// Sort calls f.
func (f SorterFunc) Sort(outputs []*Output) []*Output { return f(outputs) }

// SorterFor returns the policy for st. Unknown types keep construction order.
func SorterFor(st SortType) OutputSorter {
	switch st {
	case SortBIP69:
		return SorterFunc(sortBIP69)
	default:
		return SorterFunc(sortNone)
	}
}

func sortNone(outputs []*Output) []*Output {
	return slices.Clone(outputs)
}

func sortBIP69(outputs []*Output) []*Output {
	sorted := slices.Clone(outputs)
	slices.SortStableFunc(sorted, func(a, b *Output) int {
		switch {
		case a.Value < b.Value:
			return -1
		case a.Value > b.Value:
			return 1
		}
		return bytes.Compare(a.ScriptBytes(), b.ScriptBytes())
	})
	return sorted
}
