// Package monitor runs detached watch tasks on freshly bought tokens.
// A watch observes the live price feed for a bounded window and flags the
// stored token snapshot when a rapid dump shows up. Failures stay inside
// the task; the lifecycle call that spawned it is never affected.
package monitor

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"solana-trust-ledger/internal/marketdata"
	"solana-trust-ledger/internal/scoring"
	"solana-trust-ledger/internal/storage"
)

// Default watch configuration.
const (
	DefaultWatchDuration = 30 * time.Minute
	DefaultPollInterval  = 30 * time.Second
)

// Monitor watches tokens after a buy. It prefers the websocket price
// stream and falls back to polling the snapshot provider.
type Monitor struct {
	stream   marketdata.PriceStream // optional
	provider marketdata.Provider
	tokens   storage.TokenPerformanceStore
	logger   *log.Logger

	WatchDuration time.Duration
	PollInterval  time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Monitor.
func New(stream marketdata.PriceStream, provider marketdata.Provider, tokens storage.TokenPerformanceStore, logger *log.Logger) *Monitor {
	if logger == nil {
		logger = log.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Monitor{
		stream:        stream,
		provider:      provider,
		tokens:        tokens,
		logger:        logger,
		WatchDuration: DefaultWatchDuration,
		PollInterval:  DefaultPollInterval,
		ctx:           ctx,
		cancel:        cancel,
	}
}

// Watch starts a detached, bounded watch task for a token.
func (m *Monitor) Watch(tokenAddress string) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		ctx, cancel := context.WithTimeout(m.ctx, m.WatchDuration)
		defer cancel()

		if m.stream != nil {
			if err := m.watchStream(ctx, tokenAddress); err == nil {
				return
			} else if !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
				m.logger.Printf("monitor: stream watch for %s failed, polling: %v", tokenAddress, err)
			} else {
				return
			}
		}
		m.poll(ctx, tokenAddress)
	}()
}

// Stop cancels all running watches and waits for them to finish.
func (m *Monitor) Stop() {
	m.cancel()
	m.wg.Wait()
}

// watchStream consumes live ticks until the watch window closes.
func (m *Monitor) watchStream(ctx context.Context, tokenAddress string) error {
	ticks, err := m.stream.Subscribe(ctx, tokenAddress)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case tick, ok := <-ticks:
			if !ok {
				return errors.New("price stream closed")
			}
			if tick.Change24hPct < scoring.RapidDumpThresholdPct {
				m.flagRapidDump(tokenAddress)
			}
		}
	}
}

// poll samples the snapshot provider until the watch window closes.
func (m *Monitor) poll(ctx context.Context, tokenAddress string) {
	ticker := time.NewTicker(m.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap, err := m.provider.Snapshot(ctx, tokenAddress)
			if err != nil {
				m.logger.Printf("monitor: snapshot for %s failed: %v", tokenAddress, err)
				continue
			}
			if scoring.IsRapidDump(snap) {
				m.flagRapidDump(tokenAddress)
			}
		}
	}
}

// flagRapidDump marks the stored token snapshot. Uses a fresh context so
// the write survives the watch window closing mid-flight.
func (m *Monitor) flagRapidDump(tokenAddress string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tp, err := m.tokens.Get(ctx, tokenAddress)
	if err != nil {
		m.logger.Printf("monitor: load token %s failed: %v", tokenAddress, err)
		return
	}
	if tp.RapidDump {
		return
	}
	tp.RapidDump = true
	if err := m.tokens.Upsert(ctx, tp); err != nil {
		m.logger.Printf("monitor: flag rapid dump for %s failed: %v", tokenAddress, err)
	}
}
