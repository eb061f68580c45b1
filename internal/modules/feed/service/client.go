package service

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"chart_client/internal/models"
	"chart_client/internal/modules/config"
)

type ServiceNotifier interface {
	SendService(ctx context.Context, format string, args ...any)
}

// Client — одно мультиплексированное соединение с поставщиком данных.
// Подписки идемпотентно перешлются на каждом реконнекте.
type Client struct {
	cfg *config.Config
	n   ServiceNotifier

	wsDialer *websocket.Dialer
	http     *http.Client

	mu      sync.RWMutex
	subs    map[models.SubKey]struct{}
	pending map[int64]models.SubKey // id запроса -> ключ, ждём ack
	conn    *websocket.Conn

	writeMu sync.Mutex
	nextID  int64

	out    chan models.BarUpdate
	events chan models.FeedEvent
}

func NewClient(cfg *config.Config, n ServiceNotifier) *Client {
	return &Client{
		cfg:      cfg,
		n:        n,
		wsDialer: &websocket.Dialer{},
		http:     &http.Client{Timeout: 10 * time.Second},
		subs:     make(map[models.SubKey]struct{}),
		pending:  make(map[int64]models.SubKey),
		out:      make(chan models.BarUpdate, 1024),
		events:   make(chan models.FeedEvent, 64),
	}
}

func (c *Client) Updates() <-chan models.BarUpdate { return c.out }
func (c *Client) Events() <-chan models.FeedEvent  { return c.events }

// Subscribe регистрирует интерес к (symbol, interval). Если соединение живо —
// кадр уходит сразу, иначе уйдёт при следующем коннекте.
func (c *Client) Subscribe(key models.SubKey) {
	c.mu.Lock()
	c.subs[key] = struct{}{}
	conn := c.conn
	c.mu.Unlock()

	if conn != nil {
		c.sendRequest(conn, methodSubscribe, key)
	}
}

func (c *Client) Unsubscribe(key models.SubKey) {
	c.mu.Lock()
	delete(c.subs, key)
	conn := c.conn
	c.mu.Unlock()

	if conn != nil {
		c.sendRequest(conn, methodUnsubscribe, key)
	}
}

func (c *Client) sendRequest(conn *websocket.Conn, method string, key models.SubKey) {
	c.writeMu.Lock()
	c.nextID++
	id := c.nextID
	err := conn.WriteJSON(wsRequest{
		Method: method,
		Params: []string{key.Topic()},
		ID:     id,
	})
	c.writeMu.Unlock()

	if err != nil {
		log.Printf("[WS] %s write error %s: %v", method, key, err)
		c.emit(models.FeedEvent{Type: models.FeedError, Key: key, Err: err, At: time.Now()})
		return
	}
	if method == methodSubscribe {
		c.mu.Lock()
		c.pending[id] = key
		c.mu.Unlock()
	}
}

// Run держит соединение: дайл, ресабскрайб, read-loop, реконнект с
// экспоненциальным бэкоффом. После maxAttempts подряд — терминальное
// событие и выход, дальше пусть вызывающий падает в polling.
func (c *Client) Run(ctx context.Context) {
	failures := 0

	for {
		if ctx.Err() != nil {
			return
		}

		conn, _, err := c.wsDialer.DialContext(ctx, c.cfg.Feed.WSURL, nil)
		if err != nil {
			failures++
			delay := backoffDelay(c.cfg.ReconnectBaseDelay, c.cfg.ReconnectMaxDelay, failures)
			log.Printf("[WS] dial error (%d/%d), retry in %s: %v",
				failures, c.cfg.MaxReconnectAttempts, delay, err)
			c.emit(models.FeedEvent{Type: models.FeedError, Err: err, At: time.Now()})

			if !sleepCtx(ctx, delay) {
				return
			}
			if failures >= c.cfg.MaxReconnectAttempts {
				log.Printf("[WS] reconnect attempts exhausted (%d)", failures)
				c.emit(models.FeedEvent{Type: models.FeedMaxReconnect, At: time.Now()})
				if c.n != nil {
					c.n.SendService(ctx, "❌ Стрим: %d попыток реконнекта исчерпано, переходим на polling", failures)
				}
				return
			}
			continue
		}

		failures = 0
		c.mu.Lock()
		c.conn = conn
		c.mu.Unlock()

		log.Printf("[WS] connected %s", c.cfg.Feed.WSURL)
		c.emit(models.FeedEvent{Type: models.FeedConnected, At: time.Now()})
		c.resubscribeAll(conn)

		c.readLoop(ctx, conn)

		c.mu.Lock()
		c.conn = nil
		c.mu.Unlock()
		c.emit(models.FeedEvent{Type: models.FeedDisconnected, At: time.Now()})

		if ctx.Err() != nil {
			return
		}

		// обрыв считаем первой неудачей: ретрай через baseDelay
		failures = 1
		delay := backoffDelay(c.cfg.ReconnectBaseDelay, c.cfg.ReconnectMaxDelay, failures)
		log.Printf("[WS] connection lost, retry in %s", delay)
		if !sleepCtx(ctx, delay) {
			return
		}
	}
}

// resubscribeAll перешлёт SUBSCRIBE на каждый зарегистрированный ключ —
// ровно по одному кадру на ключ.
func (c *Client) resubscribeAll(conn *websocket.Conn) {
	c.mu.RLock()
	keys := make([]models.SubKey, 0, len(c.subs))
	for k := range c.subs {
		keys = append(keys, k)
	}
	c.mu.RUnlock()

	for _, k := range keys {
		c.sendRequest(conn, methodSubscribe, k)
	}
}

func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn) {
	defer func() { _ = conn.Close() }()

	// heartbeat: тихий обрыв ловим по read deadline, pong его отодвигает
	deadline := 2 * c.cfg.HeartbeatEvery
	_ = conn.SetReadDeadline(time.Now().Add(deadline))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(deadline))
	})

	stopPing := make(chan struct{})
	defer close(stopPing)
	go func() {
		t := time.NewTicker(c.cfg.HeartbeatEvery)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				_ = conn.Close()
				return
			case <-stopPing:
				return
			case <-t.C:
				_ = conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
			}
		}
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				log.Printf("[WS] read error: %v", err)
			}
			return
		}

		frame, ok := parseFrame(raw)
		if !ok {
			// кривой кадр логируем и выбрасываем, соединение живёт дальше
			log.Printf("[WS] malformed message dropped: %.120s", raw)
			continue
		}

		if frame.isAck() {
			c.mu.Lock()
			key, known := c.pending[frame.ID]
			delete(c.pending, frame.ID)
			c.mu.Unlock()
			if known {
				c.emit(models.FeedEvent{Type: models.FeedSubscribed, Key: key, At: time.Now()})
			}
			continue
		}

		upd, ok := frame.toBarUpdate()
		if !ok {
			log.Printf("[WS] malformed bar dropped: %.120s", raw)
			continue
		}

		select {
		case c.out <- upd:
		default:
			// потребитель не успевает — дропаем, следующий тик перекроет
		}
	}
}

func (c *Client) emit(ev models.FeedEvent) {
	select {
	case c.events <- ev:
	default:
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
