package utxo

import "github.com/cockroachdb/errors"

var (
	// ErrNilParam indicates a required parameter is nil.
	ErrNilParam = errors.New("utxo: required parameter is nil")

	// ErrMonitorRunning indicates Run was called on a monitor that is already running.
	ErrMonitorRunning = errors.New("utxo: balance monitor already running")
)
