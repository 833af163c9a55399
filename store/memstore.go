package store

import (
	"slices"
	"sync"

	"github.com/bsv-blockchain/go-sdk/chainhash"
	"github.com/cockroachdb/errors"

	"github.com/bitfsorg/libsafe-go/utxo"
)

type outpoint struct {
	txID chainhash.Hash
	vout uint32
}

// MemStore is an in-memory Store for tests and short-lived tools.
type MemStore struct {
	mu    sync.RWMutex
	txs   map[chainhash.Hash]*record
	spent map[outpoint]struct{}
	tip   uint32
	ok    bool
}

// Compile-time interface check.
var _ Store = (*MemStore)(nil)

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		txs:   make(map[chainhash.Hash]*record),
		spent: make(map[outpoint]struct{}),
	}
}

// PutTransaction stores a transaction. Returns ErrDuplicateTx if the TxID
// already exists.
func (m *MemStore) PutTransaction(t *utxo.Transaction) error {
	if t == nil {
		return errors.Wrap(ErrNilParam, "transaction")
	}
	rec, err := toRecord(t)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.txs[t.TxID]; exists {
		return ErrDuplicateTx
	}
	m.txs[t.TxID] = rec
	return nil
}

// GetTransaction retrieves a transaction by TxID.
func (m *MemStore) GetTransaction(txID chainhash.Hash) (*utxo.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.txs[txID]
	if !ok {
		return nil, ErrTxNotFound
	}
	return fromRecord(txID, rec)
}

// ConfirmTransaction records the block height that included a transaction.
func (m *MemStore) ConfirmTransaction(txID chainhash.Hash, height uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.txs[txID]
	if !ok {
		return ErrTxNotFound
	}
	rec.Confirmed = true
	rec.Height = height
	return nil
}

// MarkSpent records that owned output vout of txID was consumed.
func (m *MemStore) MarkSpent(txID chainhash.Hash, vout uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.txs[txID]
	if !ok {
		return ErrTxNotFound
	}
	if !slices.Contains(rec.Owned, vout) {
		return errors.Wrapf(ErrInvalidOutput, "%s:%d is not owned", txID, vout)
	}
	m.spent[outpoint{txID, vout}] = struct{}{}
	return nil
}

// DeleteTransaction removes a transaction and its spent markers.
func (m *MemStore) DeleteTransaction(txID chainhash.Hash) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.txs[txID]
	if !ok {
		return ErrTxNotFound
	}
	for _, vout := range rec.Owned {
		delete(m.spent, outpoint{txID, vout})
	}
	delete(m.txs, txID)
	return nil
}

// SetTip records the chain tip height.
func (m *MemStore) SetTip(height uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tip, m.ok = height, true
	return nil
}

// LastBlockHeight returns the recorded chain tip.
func (m *MemStore) LastBlockHeight() (uint32, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tip, m.ok, nil
}

// OwnedOutputs returns every unspent owned output.
func (m *MemStore) OwnedOutputs() ([]*utxo.OwnedOutput, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ownedLocked()
}

// Snapshot returns the unspent owned outputs and chain tip under one lock.
func (m *MemStore) Snapshot() ([]*utxo.OwnedOutput, uint32, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	outs, err := m.ownedLocked()
	if err != nil {
		return nil, 0, err
	}
	return outs, m.tip, nil
}

func (m *MemStore) ownedLocked() ([]*utxo.OwnedOutput, error) {
	txs, err := m.allLocked()
	if err != nil {
		return nil, err
	}
	var outs []*utxo.OwnedOutput
	for _, t := range txs {
		outs = append(outs, ownedOutputs(t, func(vout uint32) bool {
			_, spent := m.spent[outpoint{t.TxID, vout}]
			return spent
		})...)
	}
	return outs, nil
}

// Transactions returns every stored transaction ordered by timestamp.
func (m *MemStore) Transactions() ([]*utxo.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.allLocked()
}

func (m *MemStore) allLocked() ([]*utxo.Transaction, error) {
	ids := make([]chainhash.Hash, 0, len(m.txs))
	for id := range m.txs {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b chainhash.Hash) int {
		return slices.Compare(a[:], b[:])
	})

	txs := make([]*utxo.Transaction, 0, len(ids))
	for _, id := range ids {
		t, err := fromRecord(id, m.txs[id])
		if err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	sortByTime(txs)
	return txs, nil
}
