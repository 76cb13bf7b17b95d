// Package wsconn provides a WebSocket client with automatic reconnection.
package wsconn

import (
	"context"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"

	"github.com/fd1az/dex-router/internal/apperror"
)

// State represents the connection state.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateReconnecting State = "reconnecting"
	StateClosed       State = "closed"
)

// MessageHandler receives raw frames from the read loop.
type MessageHandler func(ctx context.Context, data []byte)

// Config holds WebSocket client configuration.
type Config struct {
	URL            string
	Name           string // label for logs and errors
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	MaxReconnects  int // 0 = infinite
	PingInterval   time.Duration
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
}

// DefaultConfig returns sensible defaults for streaming market data.
func DefaultConfig(url, name string) Config {
	return Config{
		URL:            url,
		Name:           name,
		InitialBackoff: 1 * time.Second,
		MaxBackoff:     30 * time.Second,
		MaxReconnects:  0, // infinite
		PingInterval:   30 * time.Second,
		ReadTimeout:    60 * time.Second,
		WriteTimeout:   10 * time.Second,
	}
}

// Client is a reconnecting WebSocket client.
type Client struct {
	config Config

	conn   *websocket.Conn
	connMu sync.RWMutex

	handler   MessageHandler
	handlerMu sync.RWMutex

	state   State
	stateMu sync.RWMutex

	reconnects atomic.Int32
	done       chan struct{}
	closeOnce  sync.Once
}

// New creates a new WebSocket client.
func New(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, apperror.New(apperror.CodeWebSocketConnFailed,
			apperror.WithContext("empty URL"))
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 1 * time.Second
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 30 * time.Second
	}

	return &Client{
		config: cfg,
		state:  StateDisconnected,
		done:   make(chan struct{}),
	}, nil
}

// OnMessage registers the handler invoked for every received frame.
// Must be called before Connect.
func (c *Client) OnMessage(handler MessageHandler) {
	c.handlerMu.Lock()
	c.handler = handler
	c.handlerMu.Unlock()
}

// Connect dials once. The read loop and keep-alive start on success,
// and later disconnects trigger automatic reconnection.
func (c *Client) Connect(ctx context.Context) error {
	c.setState(StateConnecting)

	if err := c.dial(ctx); err != nil {
		c.setState(StateDisconnected)
		return apperror.New(apperror.CodeWebSocketConnFailed,
			apperror.WithCause(err),
			apperror.WithContext(c.config.Name))
	}

	c.setState(StateConnected)
	go c.readLoop(ctx)
	go c.keepAlive(ctx)
	return nil
}

// ConnectWithRetry dials with exponential backoff until connected,
// the context is cancelled, or MaxReconnects is exhausted.
func (c *Client) ConnectWithRetry(ctx context.Context) error {
	backoff := c.config.InitialBackoff
	attempt := 0

	for {
		err := c.Connect(ctx)
		if err == nil {
			return nil
		}

		attempt++
		if c.config.MaxReconnects > 0 && attempt >= c.config.MaxReconnects {
			return apperror.New(apperror.CodeWebSocketConnFailed,
				apperror.WithCause(err),
				apperror.WithContext(c.config.Name))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.done:
			return apperror.New(apperror.CodeWebSocketClosed,
				apperror.WithContext(c.config.Name))
		case <-time.After(jitter(backoff)):
		}

		backoff *= 2
		if backoff > c.config.MaxBackoff {
			backoff = c.config.MaxBackoff
		}
	}
}

// Send writes a text frame.
func (c *Client) Send(ctx context.Context, msg []byte) error {
	c.connMu.RLock()
	conn := c.conn
	c.connMu.RUnlock()

	if conn == nil {
		return apperror.New(apperror.CodeWebSocketSendError,
			apperror.WithContext("not connected"))
	}

	if c.config.WriteTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.WriteTimeout)
		defer cancel()
	}

	if err := conn.Write(ctx, websocket.MessageText, msg); err != nil {
		return apperror.New(apperror.CodeWebSocketSendError,
			apperror.WithCause(err),
			apperror.WithContext(c.config.Name))
	}
	return nil
}

// State returns the current connection state.
func (c *Client) State() State {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.state
}

// Reconnects returns how many reconnections have happened.
func (c *Client) Reconnects() int {
	return int(c.reconnects.Load())
}

// Close gracefully closes the connection and stops reconnection.
func (c *Client) Close() error {
	c.closeOnce.Do(func() { close(c.done) })
	c.setState(StateClosed)

	c.connMu.Lock()
	conn := c.conn
	c.conn = nil
	c.connMu.Unlock()

	if conn != nil {
		return conn.Close(websocket.StatusNormalClosure, "client closing")
	}
	return nil
}

func (c *Client) dial(ctx context.Context) error {
	conn, _, err := websocket.Dial(ctx, c.config.URL, nil)
	if err != nil {
		return err
	}
	// Market data frames can be large
	conn.SetReadLimit(1 << 20)

	c.connMu.Lock()
	c.conn = conn
	c.connMu.Unlock()
	return nil
}

// readLoop reads frames and dispatches them. On read errors it hands
// off to reconnect unless the client is closed.
func (c *Client) readLoop(ctx context.Context) {
	for {
		select {
		case <-c.done:
			return
		case <-ctx.Done():
			return
		default:
		}

		c.connMu.RLock()
		conn := c.conn
		c.connMu.RUnlock()
		if conn == nil {
			return
		}

		readCtx := ctx
		var cancel context.CancelFunc
		if c.config.ReadTimeout > 0 {
			readCtx, cancel = context.WithTimeout(ctx, c.config.ReadTimeout)
		}

		_, data, err := conn.Read(readCtx)
		if cancel != nil {
			cancel()
		}

		if err != nil {
			select {
			case <-c.done:
				return
			case <-ctx.Done():
				return
			default:
			}
			c.reconnect(ctx)
			return
		}

		c.handlerMu.RLock()
		handler := c.handler
		c.handlerMu.RUnlock()

		if handler != nil {
			handler(ctx, data)
		}
	}
}

// reconnect re-dials with backoff and restarts the read loop.
func (c *Client) reconnect(ctx context.Context) {
	c.setState(StateReconnecting)
	c.reconnects.Add(1)

	c.connMu.Lock()
	if c.conn != nil {
		c.conn.Close(websocket.StatusGoingAway, "reconnecting")
		c.conn = nil
	}
	c.connMu.Unlock()

	backoff := c.config.InitialBackoff
	attempt := 0

	for {
		select {
		case <-c.done:
			return
		case <-ctx.Done():
			return
		case <-time.After(jitter(backoff)):
		}

		if err := c.dial(ctx); err == nil {
			c.setState(StateConnected)
			go c.readLoop(ctx)
			return
		}

		attempt++
		if c.config.MaxReconnects > 0 && attempt >= c.config.MaxReconnects {
			c.setState(StateDisconnected)
			return
		}

		backoff *= 2
		if backoff > c.config.MaxBackoff {
			backoff = c.config.MaxBackoff
		}
	}
}

// keepAlive pings on an interval so intermediaries keep the connection open.
func (c *Client) keepAlive(ctx context.Context) {
	if c.config.PingInterval <= 0 {
		return
	}

	ticker := time.NewTicker(c.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.connMu.RLock()
			conn := c.conn
			c.connMu.RUnlock()
			if conn == nil {
				continue
			}

			pingCtx, cancel := context.WithTimeout(ctx, c.config.WriteTimeout)
			_ = conn.Ping(pingCtx)
			cancel()
		}
	}
}

func (c *Client) setState(state State) {
	c.stateMu.Lock()
	c.state = state
	c.stateMu.Unlock()
}

// jitter adds up to 20% randomness so reconnecting clients do not thunder.
func jitter(d time.Duration) time.Duration {
	return d + time.Duration(rand.Int63n(int64(d)/5+1))
}
