package utxo

import (
	"github.com/bsv-blockchain/go-sdk/chainhash"

	"github.com/bitfsorg/libsafe-go/tx"
)

// OwnedOutput is an unspent output paying one of the wallet's keys.
type OwnedOutput struct {
	Output      *tx.Output
	TxID        chainhash.Hash // owning transaction
	Outgoing    bool           // owning transaction was sent by this wallet
	BlockHeight *uint32        // nil while unconfirmed
}

// Value returns the output amount.
func (o *OwnedOutput) Value() uint64 {
	if o.Output == nil {
		return 0
	}
	return o.Output.Value
}

// Transaction is a stored transaction touching the wallet.
type Transaction struct {
	TxID        chainhash.Hash
	Version     uint32
	Outgoing    bool
	BlockHeight *uint32
	Timestamp   int64
	Outputs     []*tx.Output
	Owned       []uint32 // positions of outputs paying the wallet
}

// Storage is the read side of the wallet database used for classification.
type Storage interface {
	// OwnedOutputs returns every unspent owned output.
	OwnedOutputs() ([]*OwnedOutput, error)

	// LastBlockHeight returns the chain tip height, ok is false when unknown.
	LastBlockHeight() (height uint32, ok bool, err error)
}

// Snapshotter is implemented by storages that can return outputs and tip
// from one consistent read.
type Snapshotter interface {
	Snapshot() (outputs []*OwnedOutput, tip uint32, err error)
}

// HistoryStorage lists stored transactions.
type HistoryStorage interface {
	Transactions() ([]*Transaction, error)
}

// SpendabilityPolicy decides whether script-specific rules allow spending.
type SpendabilityPolicy interface {
	IsSpendable(o *OwnedOutput) bool
}

// SpendableFunc adapts a function to SpendabilityPolicy.
type SpendableFunc func(o *OwnedOutput) bool

// IsSpendable calls f.
func (f SpendableFunc) IsSpendable(o *OwnedOutput) bool { return f(o) }

// AllSpendable is the policy that never objects.
var AllSpendable SpendabilityPolicy = SpendableFunc(func(*OwnedOutput) bool { return true })

// PolicySet is spendable only when every member policy agrees.
type PolicySet []SpendabilityPolicy

// IsSpendable reports whether all policies allow spending o.
func (ps PolicySet) IsSpendable(o *OwnedOutput) bool {
	for _, p := range ps {
		if p != nil && !p.IsSpendable(o) {
			return false
		}
	}
	return true
}
