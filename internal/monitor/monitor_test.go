package monitor

import (
	"context"
	"log"
	"sync"
	"testing"
	"time"

	"solana-trust-ledger/internal/domain"
	"solana-trust-ledger/internal/marketdata"
	"solana-trust-ledger/internal/marketdata/stub"
	"solana-trust-ledger/internal/storage/memory"
)

type fakeStream struct {
	mu    sync.Mutex
	chans map[string]chan marketdata.PriceTick
}

func newFakeStream() *fakeStream {
	return &fakeStream{chans: make(map[string]chan marketdata.PriceTick)}
}

func (f *fakeStream) Subscribe(_ context.Context, tokenAddress string) (<-chan marketdata.PriceTick, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan marketdata.PriceTick, 8)
	f.chans[tokenAddress] = ch
	return ch, nil
}

func (f *fakeStream) push(tick marketdata.PriceTick) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ch, ok := f.chans[tick.TokenAddress]; ok {
		ch <- tick
	}
}

func (f *fakeStream) Close() error { return nil }

func waitFlagged(t *testing.T, tokens *memory.TokenPerformanceStore, addr string) bool {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		tp, err := tokens.Get(context.Background(), addr)
		if err == nil && tp.RapidDump {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

func TestWatchFlagsRapidDumpFromStream(t *testing.T) {
	tokens := memory.NewTokenPerformanceStore()
	if err := tokens.Upsert(context.Background(), &domain.TokenPerformance{TokenAddress: "tok1"}); err != nil {
		t.Fatalf("seed token: %v", err)
	}

	stream := newFakeStream()
	m := New(stream, stub.NewProvider(), tokens, log.New(testWriter{t}, "", 0))
	m.WatchDuration = time.Second
	defer m.Stop()

	m.Watch("tok1")

	// Wait for the subscription to land before pushing.
	deadline := time.Now().Add(time.Second)
	for {
		stream.mu.Lock()
		_, ok := stream.chans["tok1"]
		stream.mu.Unlock()
		if ok || time.Now().After(deadline) {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	stream.push(marketdata.PriceTick{TokenAddress: "tok1", Change24hPct: -80})

	if !waitFlagged(t, tokens, "tok1") {
		t.Fatal("expected rapid dump flag after dump tick")
	}
}

func TestWatchIgnoresMildTicks(t *testing.T) {
	tokens := memory.NewTokenPerformanceStore()
	if err := tokens.Upsert(context.Background(), &domain.TokenPerformance{TokenAddress: "tok2"}); err != nil {
		t.Fatalf("seed token: %v", err)
	}

	stream := newFakeStream()
	m := New(stream, stub.NewProvider(), tokens, log.New(testWriter{t}, "", 0))
	m.WatchDuration = 200 * time.Millisecond

	m.Watch("tok2")
	time.Sleep(20 * time.Millisecond)
	stream.push(marketdata.PriceTick{TokenAddress: "tok2", Change24hPct: -10})
	m.Stop()

	tp, err := tokens.Get(context.Background(), "tok2")
	if err != nil {
		t.Fatalf("get token: %v", err)
	}
	if tp.RapidDump {
		t.Error("mild tick must not flag a rapid dump")
	}
}

func TestWatchPollsWhenNoStream(t *testing.T) {
	tokens := memory.NewTokenPerformanceStore()
	if err := tokens.Upsert(context.Background(), &domain.TokenPerformance{TokenAddress: "tok3"}); err != nil {
		t.Fatalf("seed token: %v", err)
	}

	provider := stub.NewProvider()
	provider.SetSnapshot(&marketdata.TokenSnapshot{
		TokenAddress:      "tok3",
		Trade24hChangePct: -90,
	})

	m := New(nil, provider, tokens, log.New(testWriter{t}, "", 0))
	m.WatchDuration = time.Second
	m.PollInterval = 20 * time.Millisecond
	defer m.Stop()

	m.Watch("tok3")

	if !waitFlagged(t, tokens, "tok3") {
		t.Fatal("expected rapid dump flag from polled snapshot")
	}
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}
