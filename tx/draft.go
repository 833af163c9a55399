package tx

import (
	"bytes"
	"maps"
	"slices"

	"github.com/bsv-blockchain/go-sdk/transaction"
	"github.com/cockroachdb/errors"
)

// Draft is the mutable working state of an outgoing transaction. Populate it,
// then hand it to a Builder exactly once.
type Draft struct {
	RecipientAddress string
	RecipientValue   uint64
	ChangeAddress    string // empty: no change output
	ChangeValue      uint64

	// SpendLockHeight requests a lock on the recipient outputs.
	SpendLockHeight *uint64

	// TagRequest is either a hex provenance tag (the plain marker or an
	// opaque tag) or a JSON VestingSchedule. Empty means absent.
	TagRequest string

	Version  uint32
	LockTime uint32

	inputs   []*transaction.TransactionInput
	payloads map[byte][]byte
	built    bool
}

// NewDraft returns an empty draft with the default transaction version.
func NewDraft() *Draft {
	return &Draft{
		Version:  DefaultTxVersion,
		payloads: make(map[byte][]byte),
	}
}

// SetRecipient sets the payment destination.
func (d *Draft) SetRecipient(address string, value uint64) {
	d.RecipientAddress = address
	d.RecipientValue = value
}

// SetChange sets the change destination.
func (d *Draft) SetChange(address string, value uint64) {
	d.ChangeAddress = address
	d.ChangeValue = value
}

// SetSpendLock requests that recipient outputs be locked until height.
func (d *Draft) SetSpendLock(height uint64) {
	d.SpendLockHeight = &height
}

// SetVesting validates s and stores it as the tag request.
func (d *Draft) SetVesting(s *VestingSchedule) error {
	if s == nil {
		return errors.Wrap(ErrNilParam, "vesting schedule")
	}
	if err := s.Validate(); err != nil {
		return err
	}
	if s.TrancheCount < 2 {
		return errors.Wrapf(ErrEmptyVesting, "tranche count %d", s.TrancheCount)
	}
	d.TagRequest = s.Serialize()
	return nil
}

// AddExtensionPayload stores data under a one-byte plugin id, replacing any
// earlier payload with the same id.
func (d *Draft) AddExtensionPayload(id byte, data []byte) {
	if d.payloads == nil {
		d.payloads = make(map[byte][]byte)
	}
	d.payloads[id] = bytes.Clone(data)
}

// ExtensionPayloads returns a copy of the payload mapping.
func (d *Draft) ExtensionPayloads() map[byte][]byte {
	return maps.Clone(d.payloads)
}

// ExtensionDataSize returns the size of the null-data script the payloads
// will produce, for fee estimation.
func (d *Draft) ExtensionDataSize() int {
	return NullDataSize(d.payloads)
}

// AddInput appends an input to be carried into the built transaction.
func (d *Draft) AddInput(in *transaction.TransactionInput) {
	d.inputs = append(d.inputs, in)
}

// Built reports whether the draft has been finalized.
func (d *Draft) Built() bool { return d.built }

func (d *Draft) finalize(version uint32, outputs []*Output) *BuiltTx {
	d.built = true
	return &BuiltTx{
		Version:  version,
		LockTime: d.LockTime,
		Inputs:   slices.Clone(d.inputs),
		Outputs:  outputs,
	}
}
