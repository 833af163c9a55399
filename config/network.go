// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import (
	"github.com/cockroachdb/errors"

	"github.com/bitfsorg/libsafe-go/tx"
)

// Network defines the wallet-facing parameters of a SAFE network.
type Network struct {
	Name                 string
	Mainnet              bool // address version selector
	DefaultConfirmations uint32
}

// Predefined networks.
var (
	MainNet = Network{
		Name:                 "mainnet",
		Mainnet:              true,
		DefaultConfirmations: 1,
	}

	TestNet = Network{
		Name:                 "testnet",
		Mainnet:              false,
		DefaultConfirmations: 1,
	}

	RegTest = Network{
		Name:                 "regtest",
		Mainnet:              false,
		DefaultConfirmations: 1,
	}
)

// predefined maps network names to their parameters.
var predefined = map[string]*Network{
	"mainnet": &MainNet,
	"testnet": &TestNet,
	"regtest": &RegTest,
}

// GetNetwork returns a predefined network by name.
// If the name is not predefined, it returns ErrInvalidNetwork.
func GetNetwork(name string) (*Network, error) {
	if n, ok := predefined[name]; ok {
		return n, nil
	}
	return nil, errors.Wrapf(ErrInvalidNetwork, "%q", name)
}

// AddressEncoder returns the P2PKH encoder for addresses on n.
func (n *Network) AddressEncoder() tx.P2PKHEncoder {
	return tx.P2PKHEncoder{Mainnet: n.Mainnet}
}
