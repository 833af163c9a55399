package tx

import (
	"bytes"

	"github.com/bsv-blockchain/go-sdk/script"
)

// Output is one transaction output, including the spend-lock and provenance
// extension fields.
type Output struct {
	Value           uint64         `json:"value"`
	Index           uint32         `json:"index"`
	LockingScript   *script.Script `json:"locking_script"`
	SpendLockHeight *uint64        `json:"spend_lock_height,omitempty"` // nil: no lock field
	ProvenanceTag   []byte         `json:"provenance_tag,omitempty"`    // nil: no tag field

	// Address is the destination the output was built for. It is only used to
	// match outputs against the recipient while building and is never encoded.
	Address string `json:"-"`
}

// HasExtension reports whether either extension field is present.
func (o *Output) HasExtension() bool {
	return o.SpendLockHeight != nil || o.ProvenanceTag != nil
}

// LockHeight returns the spend-lock height, or 0 when none is set.
func (o *Output) LockHeight() uint64 {
	if o.SpendLockHeight == nil {
		return 0
	}
	return *o.SpendLockHeight
}

// IsLockedAt reports whether the output may not be spent at chain height tip.
func (o *Output) IsLockedAt(tip uint64) bool {
	return o.SpendLockHeight != nil && *o.SpendLockHeight > tip
}

// ScriptBytes returns the raw locking script, or nil.
func (o *Output) ScriptBytes() []byte {
	if o.LockingScript == nil {
		return nil
	}
	return []byte(*o.LockingScript)
}

// Clone returns a deep copy of o.
func (o *Output) Clone() *Output {
	c := *o
	if o.LockingScript != nil {
		c.LockingScript = script.NewFromBytes(bytes.Clone(*o.LockingScript))
	}
	if o.SpendLockHeight != nil {
		h := *o.SpendLockHeight
		c.SpendLockHeight = &h
	}
	if o.ProvenanceTag != nil {
		c.ProvenanceTag = bytes.Clone(o.ProvenanceTag)
	}
	return &c
}

// setLock stamps the extension fields. A nil height clears the lock.
func (o *Output) setLock(height *uint64, tag []byte) {
	if height == nil {
		o.SpendLockHeight = nil
	} else {
		h := *height
		o.SpendLockHeight = &h
	}
	o.ProvenanceTag = bytes.Clone(tag)
}

// Uint64Ptr returns a pointer to v.
func Uint64Ptr(v uint64) *uint64 { return &v }
