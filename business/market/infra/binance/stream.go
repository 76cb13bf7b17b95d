package binance

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/dex-router/business/market/domain"
	"github.com/fd1az/dex-router/internal/logger"
	"github.com/fd1az/dex-router/internal/wsconn"
)

var errNoStreamPrice = errors.New("binance: no price received on stream yet")

// StreamConfig holds configuration for the Binance price stream.
type StreamConfig struct {
	BaseURL string // wss://stream.binance.com:9443
	Symbol  string // e.g. "ETHUSDC"
}

// bookTickerEvent is the bookTicker stream payload.
type bookTickerEvent struct {
	Symbol   string `json:"s"`
	BidPrice string `json:"b"`
	AskPrice string `json:"a"`
}

// Streamer pushes live native prices from the Binance bookTicker stream.
// Watch mode uses it so the dashboard updates without polling.
type Streamer struct {
	config StreamConfig
	logger logger.LoggerInterface

	conn   *wsconn.Client
	connMu sync.RWMutex

	onPrice   func(domain.NativePrice)
	handlerMu sync.RWMutex

	last   domain.NativePrice
	lastMu sync.RWMutex
}

// NewStreamer creates a price streamer.
func NewStreamer(cfg StreamConfig, log logger.LoggerInterface) *Streamer {
	return &Streamer{
		config: cfg,
		logger: log,
	}
}

// OnPrice registers a handler for price updates. Must be set before Connect.
func (s *Streamer) OnPrice(handler func(domain.NativePrice)) {
	s.handlerMu.Lock()
	s.onPrice = handler
	s.handlerMu.Unlock()
}

// Connect opens the bookTicker stream and starts dispatching updates.
func (s *Streamer) Connect(ctx context.Context) error {
	streamURL := strings.TrimSuffix(s.config.BaseURL, "/") +
		"/ws/" + strings.ToLower(s.config.Symbol) + "@bookTicker"

	cfg := wsconn.DefaultConfig(streamURL, "binance")
	conn, err := wsconn.New(cfg)
	if err != nil {
		return err
	}

	conn.OnMessage(s.handleMessage)

	if err := conn.ConnectWithRetry(ctx); err != nil {
		return err
	}

	s.connMu.Lock()
	s.conn = conn
	s.connMu.Unlock()

	s.logger.Info(ctx, "binance price stream connected",
		"url", streamURL,
		"symbol", s.config.Symbol)

	return nil
}

// Connected reports whether the stream is currently up.
func (s *Streamer) Connected() bool {
	s.connMu.RLock()
	defer s.connMu.RUnlock()
	return s.conn != nil && s.conn.State() == wsconn.StateConnected
}

// Last returns the most recent price seen on the stream.
func (s *Streamer) Last() (domain.NativePrice, bool) {
	s.lastMu.RLock()
	defer s.lastMu.RUnlock()
	return s.last, !s.last.Price.IsZero()
}

// NativePrice implements app.PriceSource from the live stream.
func (s *Streamer) NativePrice(_ context.Context) (domain.NativePrice, error) {
	if last, ok := s.Last(); ok {
		return last, nil
	}
	return domain.NativePrice{}, errNoStreamPrice
}

// Close closes the stream.
func (s *Streamer) Close() error {
	s.connMu.Lock()
	conn := s.conn
	s.conn = nil
	s.connMu.Unlock()

	if conn != nil {
		return conn.Close()
	}
	return nil
}

func (s *Streamer) handleMessage(ctx context.Context, data []byte) {
	var event bookTickerEvent
	if err := json.Unmarshal(data, &event); err != nil {
		s.logger.Debug(ctx, "failed to parse bookTicker event", "error", err)
		return
	}

	bid, errB := decimal.NewFromString(event.BidPrice)
	ask, errA := decimal.NewFromString(event.AskPrice)
	if errB != nil || errA != nil || !bid.IsPositive() || !ask.IsPositive() {
		return
	}

	// Mid price between best bid and ask
	price := domain.NativePrice{
		Symbol:    event.Symbol,
		Price:     bid.Add(ask).Div(decimal.NewFromInt(2)),
		Timestamp: time.Now(),
	}

	s.lastMu.Lock()
	s.last = price
	s.lastMu.Unlock()

	s.handlerMu.RLock()
	handler := s.onPrice
	s.handlerMu.RUnlock()

	if handler != nil {
		handler(price)
	}
}
