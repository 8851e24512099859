package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// PriceTick is a single streamed price update for a token.
type PriceTick struct {
	TokenAddress string  `json:"tokenAddress"`
	Price        float64 `json:"price"`
	Change24hPct float64 `json:"change24hPercent"`
	Timestamp    int64   `json:"timestamp"`
}

// PriceStream delivers live price ticks for subscribed tokens.
type PriceStream interface {
	// Subscribe starts streaming ticks for a token. The channel closes
	// when the stream shuts down.
	Subscribe(ctx context.Context, tokenAddress string) (<-chan PriceTick, error)

	// Close terminates the stream and all subscriptions.
	Close() error
}

// WSStreamConfig configures WSStream behavior.
type WSStreamConfig struct {
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
}

// DefaultWSStreamConfig returns default stream configuration.
func DefaultWSStreamConfig() WSStreamConfig {
	return WSStreamConfig{
		HandshakeTimeout: 10 * time.Second,
		WriteTimeout:     10 * time.Second,
	}
}

// WSStream implements PriceStream over a websocket price feed.
type WSStream struct {
	conn   *websocket.Conn
	config WSStreamConfig

	subsMu sync.RWMutex
	subs   map[string][]chan PriceTick // keyed by token address

	writeMu sync.Mutex
	done    chan struct{}
	wg      sync.WaitGroup
	closeMu sync.Mutex
	closed  bool
}

// NewWSStream dials the price feed endpoint and starts the read loop.
func NewWSStream(ctx context.Context, endpoint string, config *WSStreamConfig) (*WSStream, error) {
	cfg := DefaultWSStreamConfig()
	if config != nil {
		cfg = *config
	}

	dialer := websocket.Dialer{HandshakeTimeout: cfg.HandshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("websocket dial: %w", err)
	}

	s := &WSStream{
		conn:   conn,
		config: cfg,
		subs:   make(map[string][]chan PriceTick),
		done:   make(chan struct{}),
	}

	s.wg.Add(1)
	go s.readLoop()

	return s, nil
}

type subscribeRequest struct {
	Op           string `json:"op"`
	TokenAddress string `json:"tokenAddress"`
}

// Subscribe starts streaming ticks for a token.
func (s *WSStream) Subscribe(_ context.Context, tokenAddress string) (<-chan PriceTick, error) {
	select {
	case <-s.done:
		return nil, fmt.Errorf("stream closed")
	default:
	}

	s.writeMu.Lock()
	s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	err := s.conn.WriteJSON(subscribeRequest{Op: "subscribe", TokenAddress: tokenAddress})
	s.writeMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("write subscribe: %w", err)
	}

	// Register only after the subscribe frame is out so a failed write
	// leaves no orphaned channel behind.
	ch := make(chan PriceTick, 64)
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	if s.subs == nil {
		return nil, fmt.Errorf("stream closed")
	}
	s.subs[tokenAddress] = append(s.subs[tokenAddress], ch)
	return ch, nil
}

// readLoop dispatches incoming ticks to subscribers until the connection
// drops or Close is called.
func (s *WSStream) readLoop() {
	defer s.wg.Done()
	defer s.closeSubs()

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			return
		}

		var tick PriceTick
		if err := json.Unmarshal(data, &tick); err != nil {
			continue // skip malformed frames
		}

		s.subsMu.RLock()
		for _, ch := range s.subs[tick.TokenAddress] {
			select {
			case ch <- tick:
			default: // slow subscriber, drop tick
			}
		}
		s.subsMu.RUnlock()
	}
}

// closeSubs closes every subscriber channel and nils the registry so a
// Subscribe racing shutdown fails instead of registering a channel that
// nothing would ever close.
func (s *WSStream) closeSubs() {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for _, chans := range s.subs {
		for _, ch := range chans {
			close(ch)
		}
	}
	s.subs = nil
}

// Close terminates the stream and all subscriptions.
func (s *WSStream) Close() error {
	s.closeMu.Lock()
	defer s.closeMu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	close(s.done)
	err := s.conn.Close()
	s.wg.Wait()
	return err
}

var _ PriceStream = (*WSStream)(nil)
