package tx

import (
	"encoding/json"
	"math/bits"

	"github.com/cockroachdb/errors"

	"github.com/bitfsorg/libsafe-go/provenance"
)

// BlocksPerMonth is the number of 30-second blocks in thirty days. Tranche
// unlock heights advance in multiples of it.
const BlocksPerMonth = 86400

// VestingSchedule splits one payment into time-locked tranches. It travels
// inside a draft's provenance tag request as JSON.
type VestingSchedule struct {
	ReferenceHeight uint64 `json:"lastHeight"`
	LockedValue     string `json:"lockedValue"`
	StartMonths     uint64 `json:"startMonth"`
	IntervalMonths  uint64 `json:"intervalMonth"`
	TrancheCount    uint64 `json:"outputSize"`
}

// Tranche is one time-locked recipient output stub.
type Tranche struct {
	Value           uint64
	SpendLockHeight uint64
	ProvenanceTag   []byte
}

// vestingRequest mirrors VestingSchedule with every key required.
type vestingRequest struct {
	ReferenceHeight *uint64 `json:"lastHeight"`
	LockedValue     *string `json:"lockedValue"`
	StartMonths     *uint64 `json:"startMonth"`
	IntervalMonths  *uint64 `json:"intervalMonth"`
	TrancheCount    *uint64 `json:"outputSize"`
}

// ParseVestingSchedule decodes a JSON vesting schedule. All five keys must
// be present.
func ParseVestingSchedule(s string) (*VestingSchedule, error) {
	var r vestingRequest
	if err := json.Unmarshal([]byte(s), &r); err != nil {
		return nil, errors.Wrapf(ErrInvalidVestingSchedule, "decode: %v", err)
	}
	for _, f := range []struct {
		key     string
		present bool
	}{
		{"lastHeight", r.ReferenceHeight != nil},
		{"lockedValue", r.LockedValue != nil},
		{"startMonth", r.StartMonths != nil},
		{"intervalMonth", r.IntervalMonths != nil},
		{"outputSize", r.TrancheCount != nil},
	} {
		if !f.present {
			return nil, errors.Wrapf(ErrInvalidVestingSchedule, "missing key %q", f.key)
		}
	}
	v := &VestingSchedule{
		ReferenceHeight: *r.ReferenceHeight,
		LockedValue:     *r.LockedValue,
		StartMonths:     *r.StartMonths,
		IntervalMonths:  *r.IntervalMonths,
		TrancheCount:    *r.TrancheCount,
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}
	return v, nil
}

// Validate checks the schedule's structural constraints. The unlock height
// of the last tranche must fit in 64 bits.
func (v *VestingSchedule) Validate() error {
	if v.TrancheCount < 1 {
		return errors.Wrap(ErrInvalidVestingSchedule, "tranche count must be at least 1")
	}
	if v.TrancheCount < 2 {
		return nil
	}
	if _, ok := v.unlockHeight(v.TrancheCount - 2); !ok {
		return errors.Wrapf(ErrInvalidVestingSchedule, "unlock height of tranche %d overflows", v.TrancheCount-2)
	}
	return nil
}

// Serialize returns the JSON form used as a provenance tag request.
func (v *VestingSchedule) Serialize() string {
	b, err := json.Marshal(v)
	if err != nil {
		// A struct of plain integers and a string always marshals.
		panic(err)
	}
	return string(b)
}

// UnlockHeight returns the spend-lock height of tranche i. The result is
// only meaningful for schedules that pass Validate.
func (v *VestingSchedule) UnlockHeight(i uint64) uint64 {
	h, _ := v.unlockHeight(i)
	return h
}

// unlockHeight computes ReferenceHeight + BlocksPerMonth*(StartMonths +
// IntervalMonths*i), reporting false on overflow.
func (v *VestingSchedule) unlockHeight(i uint64) (uint64, bool) {
	hi, step := bits.Mul64(v.IntervalMonths, i)
	if hi != 0 {
		return 0, false
	}
	months, carry := bits.Add64(v.StartMonths, step, 0)
	if carry != 0 {
		return 0, false
	}
	hi, blocks := bits.Mul64(BlocksPerMonth, months)
	if hi != 0 {
		return 0, false
	}
	h, carry := bits.Add64(v.ReferenceHeight, blocks, 0)
	if carry != 0 {
		return 0, false
	}
	return h, true
}

// Expand produces TrancheCount-1 tranches of value each, unlocking at
// successive heights. The full value is repeated per tranche.
func (v *VestingSchedule) Expand(value uint64) []Tranche {
	if v.TrancheCount < 2 {
		return nil
	}
	tranches := make([]Tranche, 0, v.TrancheCount-1)
	for i := uint64(0); i < v.TrancheCount-1; i++ {
		tranches = append(tranches, Tranche{
			Value:           value,
			SpendLockHeight: v.UnlockHeight(i),
			ProvenanceTag:   provenance.Plain(),
		})
	}
	return tranches
}
