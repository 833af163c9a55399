package network

import (
	"context"
	"encoding/hex"

	"github.com/bsv-blockchain/go-sdk/chainhash"
	"github.com/cockroachdb/errors"
)

// ChainSource answers the chain queries the wallet needs.
type ChainSource interface {
	// BestBlockHeight returns the height of the current chain tip.
	BestBlockHeight(ctx context.Context) (uint32, error)

	// RawTransaction returns the serialized transaction with the given id.
	RawTransaction(ctx context.Context, txID chainhash.Hash) ([]byte, error)

	// TxStatus returns the confirmation status of a transaction.
	TxStatus(ctx context.Context, txID chainhash.Hash) (*TxStatus, error)
}

// TxStatus is the confirmation status of a transaction.
type TxStatus struct {
	Confirmations uint32
	BlockHash     string
	BlockHeight   uint32 // 0 when the node does not report it
}

// Confirmed reports whether the transaction is in a block.
func (s *TxStatus) Confirmed() bool { return s.Confirmations > 0 }

// HeightAt returns the inclusion height, derived from tip and the
// confirmation count when the node did not report one.
func (s *TxStatus) HeightAt(tip uint32) (uint32, bool) {
	switch {
	case !s.Confirmed():
		return 0, false
	case s.BlockHeight != 0:
		return s.BlockHeight, true
	case s.Confirmations > tip+1:
		return 0, false
	}
	return tip - s.Confirmations + 1, true
}

// Compile-time interface check.
var _ ChainSource = (*RPCClient)(nil)

// BestBlockHeight calls getblockcount.
func (c *RPCClient) BestBlockHeight(ctx context.Context) (uint32, error) {
	var height uint32
	if err := c.Call(ctx, "getblockcount", nil, &height); err != nil {
		return 0, err
	}
	return height, nil
}

// RawTransaction calls getrawtransaction in non-verbose mode and decodes the
// returned hex.
func (c *RPCClient) RawTransaction(ctx context.Context, txID chainhash.Hash) ([]byte, error) {
	var rawHex string
	if err := c.Call(ctx, "getrawtransaction", []interface{}{txID.String(), false}, &rawHex); err != nil {
		return nil, err
	}
	data, err := hex.DecodeString(rawHex)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidResponse, "invalid tx hex: %v", err)
	}
	return data, nil
}

// verboseTxResult maps the fields of getrawtransaction with verbose=true.
type verboseTxResult struct {
	Confirmations int64  `json:"confirmations"`
	BlockHash     string `json:"blockhash"`
	BlockHeight   int64  `json:"blockheight"`
}

// TxStatus calls getrawtransaction in verbose mode.
func (c *RPCClient) TxStatus(ctx context.Context, txID chainhash.Hash) (*TxStatus, error) {
	var result verboseTxResult
	if err := c.Call(ctx, "getrawtransaction", []interface{}{txID.String(), true}, &result); err != nil {
		return nil, err
	}
	s := &TxStatus{BlockHash: result.BlockHash}
	if result.Confirmations > 0 {
		s.Confirmations = uint32(result.Confirmations)
	}
	if result.BlockHeight > 0 {
		s.BlockHeight = uint32(result.BlockHeight)
	}
	return s, nil
}
