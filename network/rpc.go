package network

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
)

// rpcCodeNotFound is returned by getrawtransaction for unknown transactions.
const rpcCodeNotFound = -5

// RPCClient is a JSON-RPC 1.0 client for communicating with SAFE nodes.
// All chain queries are built on top of the Call method.
type RPCClient struct {
	url    string
	user   string
	pass   string
	client *http.Client
	nextID atomic.Int64
}

// rpcRequest represents a JSON-RPC 1.0 request payload.
type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int64         `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

// rpcResponse represents a JSON-RPC 1.0 response payload.
type rpcResponse struct {
	ID     int64           `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

// rpcError represents an error returned by the JSON-RPC server.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// NewRPCClient creates a new JSON-RPC client with the given configuration.
// The client uses HTTP Basic Auth when User is non-empty.
func NewRPCClient(cfg RPCConfig) *RPCClient {
	return &RPCClient{
		url:  cfg.URL,
		user: cfg.User,
		pass: cfg.Password,
		client: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     90 * time.Second,
				MaxIdleConnsPerHost: 10,
			},
		},
	}
}

// Call invokes a JSON-RPC method on the node and decodes the result into
// result. A nil params sends an empty array; a nil result discards it.
//
// Call returns ErrConnectionFailed if the HTTP request fails, ErrInvalidResponse
// if the response cannot be decoded, and ErrTxNotFound for RPC error -5.
func (c *RPCClient) Call(ctx context.Context, method string, params []interface{}, result interface{}) error {
	if params == nil {
		params = []interface{}{}
	}
	reqBody := rpcRequest{
		JSONRPC: "1.0",
		ID:      c.nextID.Add(1),
		Method:  method,
		Params:  params,
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return errors.Wrap(err, "network: marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "network: create request")
	}
	req.Header.Set("Content-Type", "application/json")
	if c.user != "" {
		req.SetBasicAuth(c.user, c.pass)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return errors.Wrapf(ErrConnectionFailed, "%s: %v", method, err)
	}
	defer func() { _ = resp.Body.Close() }()

	var rpcResp rpcResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 32<<20)).Decode(&rpcResp); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return errors.Wrapf(ErrConnectionFailed, "%s: HTTP %d", method, resp.StatusCode)
		}
		return errors.Wrapf(ErrInvalidResponse, "%s: decode response: %v", method, err)
	}

	// Nodes answer RPC errors with HTTP 500 and a JSON body.
	if rpcResp.Error != nil {
		if rpcResp.Error.Code == rpcCodeNotFound {
			return errors.Wrapf(ErrTxNotFound, "%s: %s", method, rpcResp.Error.Message)
		}
		return errors.Newf("network: rpc error %d: %s", rpcResp.Error.Code, rpcResp.Error.Message)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.Wrapf(ErrConnectionFailed, "%s: HTTP %d", method, resp.StatusCode)
	}

	if rpcResp.ID != reqBody.ID {
		return errors.Wrapf(ErrInvalidResponse, "response ID mismatch: expected %d, got %d",
			reqBody.ID, rpcResp.ID)
	}

	if result != nil && rpcResp.Result != nil {
		if err := json.Unmarshal(rpcResp.Result, result); err != nil {
			return errors.Wrapf(ErrInvalidResponse, "%s: unmarshal result: %v", method, err)
		}
	}
	return nil
}
