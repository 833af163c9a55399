package network

import "github.com/cockroachdb/errors"

// RPCConfig holds the connection parameters for a node's JSON-RPC interface.
type RPCConfig struct {
	URL      string `json:"url"`
	User     string `json:"user"`
	Password string `json:"password"`
}

// NetworkPresets contains default RPC configurations for local networks.
// Mainnet is intentionally omitted to require explicit configuration.
var NetworkPresets = map[string]RPCConfig{
	"regtest": {URL: "http://localhost:25554", User: "safe", Password: "safe"},
	"testnet": {URL: "http://localhost:15554", User: "safe", Password: "safe"},
}

// ResolveConfig fills the empty fields of cfg from the network preset.
// The result must name a URL; mainnet has no preset.
func ResolveConfig(cfg RPCConfig, network string) (*RPCConfig, error) {
	result := cfg
	if preset, ok := NetworkPresets[network]; ok {
		if result.URL == "" {
			result.URL = preset.URL
		}
		if result.User == "" {
			result.User = preset.User
		}
		if result.Password == "" {
			result.Password = preset.Password
		}
	}
	if result.URL == "" {
		return nil, errors.Wrapf(ErrNoRPCConfig, "%s requires rpcurl", network)
	}
	return &result, nil
}
