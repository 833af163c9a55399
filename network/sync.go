package network

import (
	"context"
	"time"

	"github.com/bsv-blockchain/go-sdk/chainhash"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/bitfsorg/libsafe-go/store"
	"github.com/bitfsorg/libsafe-go/tx"
	"github.com/bitfsorg/libsafe-go/utxo"
)

// Syncer brings a wallet store up to date with a chain source.
type Syncer struct {
	chain ChainSource
	store store.Store
	log   *zap.SugaredLogger
}

// SyncResult summarizes one Sync pass.
type SyncResult struct {
	Tip       uint32
	Confirmed int // transactions that gained a block height
	Missing   int // unconfirmed transactions the node does not know
}

// NewSyncer creates a Syncer. A nil logger disables logging.
func NewSyncer(chain ChainSource, s store.Store, log *zap.SugaredLogger) (*Syncer, error) {
	if chain == nil {
		return nil, errors.Wrap(ErrNilParam, "chain source")
	}
	if s == nil {
		return nil, errors.Wrap(ErrNilParam, "store")
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Syncer{chain: chain, store: s, log: log}, nil
}

// Sync records the chain tip and the inclusion height of every stored
// transaction that has since been mined.
func (s *Syncer) Sync(ctx context.Context) (*SyncResult, error) {
	tip, err := s.chain.BestBlockHeight(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "network: query tip")
	}
	if err := s.store.SetTip(tip); err != nil {
		return nil, err
	}

	txs, err := s.store.Transactions()
	if err != nil {
		return nil, err
	}

	res := &SyncResult{Tip: tip}
	for _, t := range txs {
		if t.BlockHeight != nil {
			continue
		}
		status, err := s.chain.TxStatus(ctx, t.TxID)
		if errors.Is(err, ErrTxNotFound) {
			res.Missing++
			s.log.Debugw("unconfirmed transaction unknown to node", "txid", t.TxID.String())
			continue
		}
		if err != nil {
			return nil, errors.Wrapf(err, "network: status of %s", t.TxID)
		}
		height, ok := status.HeightAt(tip)
		if !ok {
			continue
		}
		if err := s.store.ConfirmTransaction(t.TxID, height); err != nil {
			return nil, err
		}
		res.Confirmed++
	}

	s.log.Debugw("synced", "tip", res.Tip, "confirmed", res.Confirmed, "missing", res.Missing)
	return res, nil
}

// Import fetches a transaction from the chain source and records it with
// the given owned output positions.
func (s *Syncer) Import(ctx context.Context, txID chainhash.Hash, owned []uint32, outgoing bool) (*utxo.Transaction, error) {
	raw, err := s.chain.RawTransaction(ctx, txID)
	if err != nil {
		return nil, errors.Wrapf(err, "network: fetch %s", txID)
	}
	parsed, err := tx.ParseTransaction(raw)
	if err != nil {
		return nil, err
	}
	if got := parsed.TxID(); got != txID {
		return nil, errors.Wrapf(ErrInvalidResponse, "requested %s, node returned %s", txID, got)
	}

	t := &utxo.Transaction{
		TxID:      txID,
		Version:   parsed.Version,
		Outgoing:  outgoing,
		Timestamp: time.Now().Unix(),
		Outputs:   parsed.Outputs,
		Owned:     owned,
	}

	status, err := s.chain.TxStatus(ctx, txID)
	if err != nil {
		return nil, errors.Wrapf(err, "network: status of %s", txID)
	}
	if status.Confirmed() {
		tip, err := s.chain.BestBlockHeight(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "network: query tip")
		}
		if height, ok := status.HeightAt(tip); ok {
			t.BlockHeight = &height
		}
	}

	consumed, err := store.RecordTransaction(s.store, t, parsed.Inputs)
	if err != nil {
		return nil, err
	}
	s.log.Debugw("imported transaction", "txid", txID.String(), "owned", len(owned), "consumed", consumed)
	return t, nil
}

// Watch runs Sync every interval until ctx ends, calling onSync after each
// successful pass. Failed passes are logged and retried at the next tick.
// A non-positive interval fails with ErrInvalidInterval.
func (s *Syncer) Watch(ctx context.Context, interval time.Duration, onSync func(*SyncResult)) error {
	if interval <= 0 {
		return errors.Wrapf(ErrInvalidInterval, "%s", interval)
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		res, err := s.Sync(ctx)
		switch {
		case err != nil && ctx.Err() == nil:
			s.log.Warnw("sync failed", "err", err)
		case err == nil && onSync != nil:
			onSync(res)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
