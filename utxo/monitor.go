package utxo

import (
	"context"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// DefaultMonitorInterval coalesces bursts of storage notifications.
const DefaultMonitorInterval = 500 * time.Millisecond

// BalanceMonitor recomputes the balance after storage mutations and
// publishes changed balances on Events. Callers report mutations with Notify.
type BalanceMonitor struct {
	provider *Provider
	interval time.Duration
	log      *zap.SugaredLogger

	notify  chan struct{}
	events  chan Balance
	running *atomic.Bool
	last    atomic.Value // Balance
}

// NewBalanceMonitor creates a monitor over p. A zero interval uses
// DefaultMonitorInterval.
func NewBalanceMonitor(p *Provider, interval time.Duration) *BalanceMonitor {
	if interval <= 0 {
		interval = DefaultMonitorInterval
	}
	return &BalanceMonitor{
		provider: p,
		interval: interval,
		log:      p.log,
		notify:   make(chan struct{}, 1),
		events:   make(chan Balance, 1),
		running:  atomic.NewBool(false),
	}
}

// Events delivers each balance that differs from the previous one. The
// channel is never closed.
func (m *BalanceMonitor) Events() <-chan Balance { return m.events }

// Notify records that stored outputs or the chain tip changed. It never blocks.
func (m *BalanceMonitor) Notify() {
	select {
	case m.notify <- struct{}{}:
	default:
	}
}

// Current returns the last computed balance.
func (m *BalanceMonitor) Current() (Balance, bool) {
	b, ok := m.last.Load().(Balance)
	return b, ok
}

// Run publishes the initial balance, then recomputes at most once per
// interval while notifications are pending. It returns when ctx is done.
func (m *BalanceMonitor) Run(ctx context.Context) error {
	if m.running.Swap(true) {
		return ErrMonitorRunning
	}
	defer m.running.Store(false)

	m.refresh(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	pending := false
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-m.notify:
			pending = true
		case <-ticker.C:
			if pending {
				pending = false
				m.refresh(ctx)
			}
		}
	}
}

func (m *BalanceMonitor) refresh(ctx context.Context) {
	b, err := m.provider.Balance()
	if err != nil {
		m.log.Warnw("balance refresh failed", "err", err)
		return
	}
	if prev, ok := m.Current(); ok && prev == b {
		return
	}
	m.last.Store(b)
	m.log.Debugw("balance changed", "spendable", b.Spendable, "locked", b.Locked)

	select {
	case m.events <- b:
	case <-ctx.Done():
	}
}
