package utxo

import (
	"github.com/bitfsorg/libsafe-go/provenance"
)

// Balance splits owned value into what can be spent now and what is
// committed but not yet available.
type Balance struct {
	Spendable uint64 `json:"spendable"`
	Locked    uint64 `json:"locked"`
}

// Total returns Spendable + Locked.
func (b Balance) Total() uint64 { return b.Spendable + b.Locked }

// Classification is the partition of owned outputs at one chain tip.
// Spendable and Locked are disjoint and together equal Confirmed.
type Classification struct {
	Tip       uint32
	Confirmed []*OwnedOutput
	Spendable []*OwnedOutput
	Locked    []*OwnedOutput
}

// Balance sums the spendable and locked partitions.
func (c *Classification) Balance() Balance {
	var b Balance
	for _, o := range c.Spendable {
		b.Spendable += o.Value()
	}
	for _, o := range c.Locked {
		b.Locked += o.Value()
	}
	return b
}

// Classify partitions outputs at chain height tip (0 when unknown).
//
// Outputs of outgoing transactions are always confirmed so change can be
// spent in chained transactions. Incoming outputs need a recognized
// provenance tag and at least threshold confirmations. A confirmed output
// is locked while its spend-lock height is above tip or when policy
// refuses it, and spendable otherwise.
func Classify(outputs []*OwnedOutput, tip uint32, threshold uint32, policy SpendabilityPolicy) *Classification {
	if threshold < 1 {
		threshold = 1
	}
	if policy == nil {
		policy = AllSpendable
	}

	c := &Classification{Tip: tip}
	for _, o := range outputs {
		if o == nil || o.Output == nil || !IsConfirmed(o, tip, threshold) {
			continue
		}
		c.Confirmed = append(c.Confirmed, o)

		if o.Output.IsLockedAt(uint64(tip)) || !policy.IsSpendable(o) {
			c.Locked = append(c.Locked, o)
		} else {
			c.Spendable = append(c.Spendable, o)
		}
	}
	return c
}

// IsConfirmed reports whether o is usable at tip with threshold confirmations.
func IsConfirmed(o *OwnedOutput, tip uint32, threshold uint32) bool {
	if o.Outgoing {
		return true
	}
	if o.BlockHeight == nil || tip == 0 {
		return false
	}
	if !provenance.IsRecognized(o.Output.ProvenanceTag) {
		return false
	}
	// confirmations = tip - height + 1
	return uint64(*o.BlockHeight)+uint64(threshold) <= uint64(tip)+1
}

// VisibleHistory drops transactions carrying an output with an unrecognized
// provenance tag.
func VisibleHistory(txs []*Transaction) []*Transaction {
	visible := make([]*Transaction, 0, len(txs))
	for _, t := range txs {
		tags := make([][]byte, len(t.Outputs))
		for i, o := range t.Outputs {
			tags[i] = o.ProvenanceTag
		}
		if provenance.TransactionVisible(tags) {
			visible = append(visible, t)
		}
	}
	return visible
}
