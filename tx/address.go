package tx

import (
	"github.com/bsv-blockchain/go-sdk/script"
	"github.com/bsv-blockchain/go-sdk/transaction/template/p2pkh"
	"github.com/cockroachdb/errors"
)

// AddressEncoder turns an address string into the locking script paying it.
type AddressEncoder interface {
	LockingScript(address string) (*script.Script, error)
}

// P2PKHEncoder encodes base58 P2PKH addresses.
type P2PKHEncoder struct {
	// Mainnet selects the address version used by AddressOf.
	Mainnet bool
}

// LockingScript returns the P2PKH locking script for address.
func (e P2PKHEncoder) LockingScript(address string) (*script.Script, error) {
	addr, err := script.NewAddressFromString(address)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidAddress, "%q: %v", address, err)
	}
	lock, err := p2pkh.Lock(addr)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidAddress, "lock %q: %v", address, err)
	}
	return lock, nil
}

// AddressOf derives the address string of a P2PKH locking script. Other
// script types yield an empty string.
func (e P2PKHEncoder) AddressOf(s *script.Script) string {
	if s == nil || !s.IsP2PKH() {
		return ""
	}
	// OP_DUP OP_HASH160 <20-byte hash> OP_EQUALVERIFY OP_CHECKSIG
	pkh := []byte(*s)[3:23]
	addr, err := script.NewAddressFromPublicKeyHash(pkh, e.Mainnet)
	if err != nil {
		return ""
	}
	return addr.AddressString
}
