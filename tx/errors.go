package tx

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

var (
	// ErrNilParam indicates a required parameter is nil.
	ErrNilParam = errors.New("tx: required parameter is nil")

	// ErrMissingRecipient indicates a non-zero recipient value without a recipient address.
	ErrMissingRecipient = errors.New("tx: recipient address is required for a non-zero value")

	// ErrInvalidAddress indicates an address could not be turned into a locking script.
	ErrInvalidAddress = errors.New("tx: invalid address")

	// ErrInvalidTagRequest indicates the provenance tag request is not valid hex.
	ErrInvalidTagRequest = errors.New("tx: invalid provenance tag request")

	// ErrInvalidVestingSchedule indicates a vesting schedule is malformed.
	ErrInvalidVestingSchedule = errors.New("tx: invalid vesting schedule")

	// ErrEmptyVesting indicates a vesting schedule that yields no tranche outputs.
	ErrEmptyVesting = errors.New("tx: vesting schedule yields no outputs")

	// ErrDraftFinalized indicates the draft has already been built.
	ErrDraftFinalized = errors.New("tx: draft already built")

	// ErrTruncated indicates the byte stream ended before a field was complete.
	ErrTruncated = errors.New("tx: truncated data")

	// ErrMalformed indicates a field holds a value that cannot be accepted.
	ErrMalformed = errors.New("tx: malformed data")
)

// DecodeError reports which field of which output failed to decode.
type DecodeError struct {
	Index int    // output position, -1 when not decoding an output
	Field string // e.g. "value", "script length", "provenance tag"
	Err   error  // ErrTruncated or ErrMalformed, possibly wrapped
}

func (e *DecodeError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("tx: decode %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("tx: decode output %d %s: %v", e.Index, e.Field, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
