package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/quantora/compass/internal/contracts"
	"github.com/quantora/compass/pkg/config"
	"github.com/quantora/compass/pkg/logger"
)

const (
	pingInterval          = 30 * time.Second
	reconnectInitialDelay = 1 * time.Second
	reconnectMaxDelay     = 30 * time.Second
	maxReconnectAttempts  = 10
)

// StreamClient subscribes to the classifier's live signal feed over
// WebSocket. Signals arrive as they are classified, ahead of the nightly
// batch pull.
type StreamClient struct {
	cfg    config.ClassifierConfig
	logger *logger.Logger

	conn      *websocket.Conn
	connMu    sync.Mutex
	connected bool

	subscriptions map[string]bool
	subMu         sync.RWMutex

	// Callbacks
	onSignal     func(contracts.Signal)
	onError      func(error)
	onDisconnect func()

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewStreamClient creates a new live signal stream client
func NewStreamClient(cfg config.ClassifierConfig, log *logger.Logger) *StreamClient {
	return &StreamClient{
		cfg:           cfg,
		logger:        log,
		subscriptions: make(map[string]bool),
		stopCh:        make(chan struct{}),
	}
}

// Callback setters
func (c *StreamClient) OnSignal(fn func(contracts.Signal)) { c.onSignal = fn }
func (c *StreamClient) OnError(fn func(error))             { c.onError = fn }
func (c *StreamClient) OnDisconnect(fn func())             { c.onDisconnect = fn }

// Connect establishes the WebSocket connection and starts the read and
// ping loops.
func (c *StreamClient) Connect(ctx context.Context) error {
	if c.cfg.StreamURL == "" {
		return fmt.Errorf("stream URL not configured")
	}

	if err := c.connect(ctx); err != nil {
		return fmt.Errorf("websocket connect: %w", err)
	}

	c.wg.Add(1)
	go c.readLoop()

	c.wg.Add(1)
	go c.pingLoop()

	c.logger.Info("Classifier stream connected")
	return nil
}

func (c *StreamClient) connect(ctx context.Context) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	header := http.Header{}
	if c.cfg.APIKey != "" {
		header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	conn, _, err := dialer.DialContext(ctx, c.cfg.StreamURL, header)
	if err != nil {
		return err
	}

	c.conn = conn
	c.connected = true

	return nil
}

// Disconnect closes the connection and waits for loops to exit.
func (c *StreamClient) Disconnect() error {
	close(c.stopCh)

	c.connMu.Lock()
	if c.conn != nil {
		c.conn.Close()
		c.connected = false
	}
	c.connMu.Unlock()

	c.wg.Wait()

	if c.onDisconnect != nil {
		c.onDisconnect()
	}

	c.logger.Info("Classifier stream disconnected")
	return nil
}

// IsConnected returns connection status
func (c *StreamClient) IsConnected() bool {
	c.connMu.Lock()
	defer c.connMu.Unlock()
	return c.connected
}

// subscribeMessage is the feed's subscription control frame.
type subscribeMessage struct {
	Action  string   `json:"action"` // "subscribe" or "unsubscribe"
	Sectors []string `json:"sectors"`
}

// Subscribe starts streaming signals for the given sectors.
func (c *StreamClient) Subscribe(sectors ...string) error {
	c.subMu.Lock()
	defer c.subMu.Unlock()

	fresh := make([]string, 0, len(sectors))
	for _, sector := range sectors {
		if !c.subscriptions[sector] {
			fresh = append(fresh, sector)
		}
	}
	if len(fresh) == 0 {
		return nil
	}

	if err := c.send(subscribeMessage{Action: "subscribe", Sectors: fresh}); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}

	for _, sector := range fresh {
		c.subscriptions[sector] = true
	}

	c.logger.WithField("sectors", fresh).Debug("Subscribed to signal stream")
	return nil
}

// Unsubscribe stops streaming signals for the given sectors.
func (c *StreamClient) Unsubscribe(sectors ...string) error {
	c.subMu.Lock()
	defer c.subMu.Unlock()

	stale := make([]string, 0, len(sectors))
	for _, sector := range sectors {
		if c.subscriptions[sector] {
			stale = append(stale, sector)
		}
	}
	if len(stale) == 0 {
		return nil
	}

	if err := c.send(subscribeMessage{Action: "unsubscribe", Sectors: stale}); err != nil {
		return fmt.Errorf("unsubscribe: %w", err)
	}

	for _, sector := range stale {
		delete(c.subscriptions, sector)
	}

	return nil
}

// Subscriptions returns the currently subscribed sectors.
func (c *StreamClient) Subscriptions() []string {
	c.subMu.RLock()
	defer c.subMu.RUnlock()

	sectors := make([]string, 0, len(c.subscriptions))
	for sector := range c.subscriptions {
		sectors = append(sectors, sector)
	}
	return sectors
}

func (c *StreamClient) send(msg subscribeMessage) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.conn == nil {
		return fmt.Errorf("not connected")
	}

	return c.conn.WriteJSON(msg)
}

// readLoop handles incoming messages
func (c *StreamClient) readLoop() {
	defer c.wg.Done()

	for {
		select {
		case <-c.stopCh:
			return
		default:
		}

		c.connMu.Lock()
		conn := c.conn
		c.connMu.Unlock()

		if conn == nil {
			return
		}

		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return
			}
			if c.onError != nil {
				c.onError(fmt.Errorf("read error: %w", err))
			}
			c.handleDisconnect()
			return
		}

		c.handleMessage(message)
	}
}

// handleMessage decodes one feed frame and dispatches it.
func (c *StreamClient) handleMessage(data []byte) {
	var w wireSignal
	if err := json.Unmarshal(data, &w); err != nil {
		if c.onError != nil {
			c.onError(fmt.Errorf("decode stream frame: %w", err))
		}
		return
	}

	// Control frames and heartbeats carry no news id.
	if w.ID == "" {
		return
	}

	if c.onSignal != nil {
		c.onSignal(resolveSignal(w))
	}
}

// pingLoop keeps the connection alive
func (c *StreamClient) pingLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.connMu.Lock()
			if c.conn != nil {
				if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					c.logger.WithError(err).Warn("Stream ping failed")
				}
			}
			c.connMu.Unlock()
		}
	}
}

// handleDisconnect attempts reconnection with exponential backoff and
// restores subscriptions on success.
func (c *StreamClient) handleDisconnect() {
	c.connMu.Lock()
	c.connected = false
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.connMu.Unlock()

	delay := reconnectInitialDelay
	for attempt := 1; attempt <= maxReconnectAttempts; attempt++ {
		select {
		case <-c.stopCh:
			return
		case <-time.After(delay):
		}

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		err := c.connect(ctx)
		cancel()

		if err == nil {
			c.logger.WithField("attempt", attempt).Info("Classifier stream reconnected")

			c.subMu.RLock()
			sectors := make([]string, 0, len(c.subscriptions))
			for sector := range c.subscriptions {
				sectors = append(sectors, sector)
			}
			c.subMu.RUnlock()

			if len(sectors) > 0 {
				if err := c.send(subscribeMessage{Action: "subscribe", Sectors: sectors}); err != nil && c.onError != nil {
					c.onError(fmt.Errorf("resubscribe: %w", err))
				}
			}

			c.wg.Add(1)
			go c.readLoop()
			return
		}

		c.logger.WithError(err).WithField("attempt", attempt).Warn("Stream reconnect failed")

		delay *= 2
		if delay > reconnectMaxDelay {
			delay = reconnectMaxDelay
		}
	}

	if c.onError != nil {
		c.onError(fmt.Errorf("reconnect failed after %d attempts", maxReconnectAttempts))
	}

	if c.onDisconnect != nil {
		c.onDisconnect()
	}
}
