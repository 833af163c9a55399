package network

import "github.com/cockroachdb/errors"

var (
	// ErrConnectionFailed indicates the client could not connect to the node.
	ErrConnectionFailed = errors.New("network: connection failed")

	// ErrTxNotFound indicates the requested transaction does not exist.
	ErrTxNotFound = errors.New("network: transaction not found")

	// ErrInvalidResponse indicates the node returned a malformed or unexpected response.
	ErrInvalidResponse = errors.New("network: invalid response")

	// ErrNoRPCConfig indicates no node URL was configured for the network.
	ErrNoRPCConfig = errors.New("network: RPC URL not configured")

	// ErrInvalidInterval indicates a non-positive polling interval.
	ErrInvalidInterval = errors.New("network: interval must be positive")

	// ErrNilParam indicates a required parameter is nil.
	ErrNilParam = errors.New("network: required parameter is nil")
)
