package utxo

import (
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// DefaultConfirmations is the confirmation threshold used when none is set.
const DefaultConfirmations = 1

// ProviderConfig holds the collaborators of a Provider.
type ProviderConfig struct {
	Storage       Storage
	Policy        SpendabilityPolicy // nil: AllSpendable
	Confirmations uint32             // 0: DefaultConfirmations
	Log           *zap.SugaredLogger
}

// Provider answers spendable-output and balance queries from storage.
// It keeps no state between calls; every query classifies a fresh snapshot.
type Provider struct {
	storage       Storage
	policy        SpendabilityPolicy
	confirmations uint32
	log           *zap.SugaredLogger
}

// NewProvider creates a Provider. Storage is required.
func NewProvider(cfg ProviderConfig) (*Provider, error) {
	if cfg.Storage == nil {
		return nil, errors.Wrap(ErrNilParam, "storage")
	}
	p := &Provider{
		storage:       cfg.Storage,
		policy:        cfg.Policy,
		confirmations: cfg.Confirmations,
		log:           cfg.Log,
	}
	if p.policy == nil {
		p.policy = AllSpendable
	}
	if p.confirmations == 0 {
		p.confirmations = DefaultConfirmations
	}
	if p.log == nil {
		p.log = zap.NewNop().Sugar()
	}
	return p, nil
}

// Classify reads a storage snapshot and partitions it.
func (p *Provider) Classify() (*Classification, error) {
	outputs, tip, err := p.snapshot()
	if err != nil {
		return nil, err
	}
	c := Classify(outputs, tip, p.confirmations, p.policy)
	p.log.Debugw("classified outputs",
		"tip", tip,
		"owned", len(outputs),
		"confirmed", len(c.Confirmed),
		"spendable", len(c.Spendable),
		"locked", len(c.Locked),
	)
	return c, nil
}

// SpendableOutputs returns the outputs available as inputs right now.
func (p *Provider) SpendableOutputs() ([]*OwnedOutput, error) {
	c, err := p.Classify()
	if err != nil {
		return nil, err
	}
	return c.Spendable, nil
}

// Balance returns the spendable/locked split.
func (p *Provider) Balance() (Balance, error) {
	c, err := p.Classify()
	if err != nil {
		return Balance{}, err
	}
	return c.Balance(), nil
}

// History returns the visible transactions of h.
func (p *Provider) History(h HistoryStorage) ([]*Transaction, error) {
	if h == nil {
		return nil, errors.Wrap(ErrNilParam, "history storage")
	}
	txs, err := h.Transactions()
	if err != nil {
		return nil, errors.Wrap(err, "utxo: list transactions")
	}
	return VisibleHistory(txs), nil
}

func (p *Provider) snapshot() ([]*OwnedOutput, uint32, error) {
	if s, ok := p.storage.(Snapshotter); ok {
		outputs, tip, err := s.Snapshot()
		if err != nil {
			return nil, 0, errors.Wrap(err, "utxo: read snapshot")
		}
		return outputs, tip, nil
	}

	outputs, err := p.storage.OwnedOutputs()
	if err != nil {
		return nil, 0, errors.Wrap(err, "utxo: read owned outputs")
	}
	tip, ok, err := p.storage.LastBlockHeight()
	if err != nil {
		return nil, 0, errors.Wrap(err, "utxo: read chain tip")
	}
	if !ok {
		tip = 0
	}
	return outputs, tip, nil
}
