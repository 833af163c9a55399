package tx

import (
	"bytes"
	"encoding/hex"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/bitfsorg/libsafe-go/provenance"
)

// BuilderConfig holds the collaborators of a Builder. Zero fields take
// defaults: mainnet P2PKH addresses, no reordering and a no-op logger.
type BuilderConfig struct {
	Encoder AddressEncoder
	Sorter  OutputSorter
	Log     *zap.SugaredLogger
}

// Builder expands a Draft into its ordered, annotated output set.
type Builder struct {
	encoder AddressEncoder
	sorter  OutputSorter
	log     *zap.SugaredLogger
}

// NewBuilder creates a Builder from cfg.
func NewBuilder(cfg BuilderConfig) *Builder {
	b := &Builder{encoder: cfg.Encoder, sorter: cfg.Sorter, log: cfg.Log}
	if b.encoder == nil {
		b.encoder = P2PKHEncoder{Mainnet: true}
	}
	if b.sorter == nil {
		b.sorter = SorterFor(SortNone)
	}
	if b.log == nil {
		b.log = zap.NewNop().Sugar()
	}
	return b
}

// Build finalizes d into a transaction. A draft can be built only once.
//
// The transaction gets ExtensionTxVersion when any output carries a spend
// lock or provenance tag, and the draft's version otherwise.
func (b *Builder) Build(d *Draft) (*BuiltTx, error) {
	if d == nil {
		return nil, errors.Wrap(ErrNilParam, "draft")
	}
	if d.built {
		return nil, ErrDraftFinalized
	}

	outputs, err := b.BuildOutputs(d)
	if err != nil {
		return nil, err
	}

	version := d.Version
	if version == 0 {
		version = DefaultTxVersion
	}
	for _, o := range outputs {
		if o.HasExtension() {
			version = ExtensionTxVersion
			break
		}
	}

	built := d.finalize(version, outputs)
	b.log.Debugw("built transaction",
		"version", built.Version,
		"inputs", len(built.Inputs),
		"outputs", len(built.Outputs),
	)
	return built, nil
}

// BuildOutputs computes the output set of d without finalizing it. It fails
// with ErrDraftFinalized once d has been built. Steps:
//
//  1. recipient outputs, one per vesting tranche or a single plain output
//  2. the change output
//  3. the null-data output carrying extension payloads, ids ascending
//  4. ordering by the configured policy, then position assignment
//  5. spend-lock and provenance stamping
func (b *Builder) BuildOutputs(d *Draft) ([]*Output, error) {
	if d == nil {
		return nil, errors.Wrap(ErrNilParam, "draft")
	}
	if d.built {
		return nil, ErrDraftFinalized
	}
	if d.RecipientAddress == "" && d.RecipientValue != 0 {
		return nil, errors.Wrapf(ErrMissingRecipient, "value %d", d.RecipientValue)
	}

	var outputs []*Output

	var vesting *VestingSchedule
	if d.RecipientAddress != "" {
		vesting = b.vestingSchedule(d.TagRequest)

		lock, err := b.encoder.LockingScript(d.RecipientAddress)
		if err != nil {
			return nil, errors.Wrap(err, "recipient")
		}

		if vesting != nil {
			tranches := vesting.Expand(d.RecipientValue)
			if len(tranches) == 0 {
				return nil, errors.Wrapf(ErrEmptyVesting, "tranche count %d", vesting.TrancheCount)
			}
			for _, tr := range tranches {
				o := &Output{
					Value:         tr.Value,
					LockingScript: lock,
					Address:       d.RecipientAddress,
				}
				o.setLock(&tr.SpendLockHeight, tr.ProvenanceTag)
				outputs = append(outputs, o.Clone())
			}
		} else {
			outputs = append(outputs, &Output{
				Value:         d.RecipientValue,
				LockingScript: lock,
				Address:       d.RecipientAddress,
			})
		}
	}

	if d.ChangeAddress != "" {
		lock, err := b.encoder.LockingScript(d.ChangeAddress)
		if err != nil {
			return nil, errors.Wrap(err, "change")
		}
		outputs = append(outputs, &Output{
			Value:         d.ChangeValue,
			LockingScript: lock,
			Address:       d.ChangeAddress,
		})
	}

	if len(d.payloads) > 0 {
		outputs = append(outputs, &Output{
			Value:         0,
			LockingScript: BuildNullDataScript(d.payloads),
		})
	}

	sorted := b.sorter.Sort(outputs)
	for i, o := range sorted {
		o.Index = uint32(i)
	}

	if err := b.stamp(d, vesting, sorted); err != nil {
		return nil, err
	}
	return sorted, nil
}

// vestingSchedule interprets a tag request as a vesting schedule. Requests
// naming the plain marker, and requests that do not parse, yield nil so the
// recipient is paid by a single output.
func (b *Builder) vestingSchedule(request string) *VestingSchedule {
	if request == "" || strings.HasPrefix(request, provenance.PlainHex) {
		return nil
	}
	v, err := ParseVestingSchedule(request)
	if err != nil {
		b.log.Debugw("tag request is not a vesting schedule, paying single output", "err", err)
		return nil
	}
	return v
}

func (b *Builder) stamp(d *Draft, vesting *VestingSchedule, outputs []*Output) error {
	plain := provenance.Plain()
	isRecipient := func(o *Output) bool {
		return d.RecipientAddress != "" && o.Address == d.RecipientAddress
	}

	switch {
	case vesting != nil:
		// Tranches keep their own locks.
		for _, o := range outputs {
			if !isRecipient(o) {
				o.setLock(nil, plain)
			}
		}
		b.log.Debugw("stamped vesting outputs", "tranches", vesting.TrancheCount-1)

	case d.SpendLockHeight != nil:
		tag := plain
		if d.TagRequest != "" {
			decoded, err := hex.DecodeString(d.TagRequest)
			if err != nil {
				return errors.Wrapf(ErrInvalidTagRequest, "%v", err)
			}
			tag = decoded
		}
		for _, o := range outputs {
			if isRecipient(o) {
				o.setLock(d.SpendLockHeight, tag)
			} else {
				o.setLock(nil, plain)
			}
		}
		b.log.Debugw("stamped spend lock",
			"height", *d.SpendLockHeight,
			"plain", bytes.Equal(tag, plain),
		)
	}
	return nil
}
