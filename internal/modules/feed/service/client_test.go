package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chart_client/internal/models"
	"chart_client/internal/modules/config"
)

func testCfg(wsURL string) *config.Config {
	cfg := &config.Config{
		ReconnectBaseDelay:   10 * time.Millisecond,
		ReconnectMaxDelay:    50 * time.Millisecond,
		MaxReconnectAttempts: 3,
		HeartbeatEvery:       200 * time.Millisecond,
	}
	cfg.Feed.WSURL = wsURL
	return cfg
}

func wsURLOf(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

// subRecord — что сервер увидел от клиента за одно соединение.
type subRecord struct {
	topics []string
}

// echoServer апгрейдит соединение, ack-ает SUBSCRIBE и по команде
// роняет соединение, чтобы проверить реконнект.
func echoServer(t *testing.T, conns chan<- *subRecord, drop <-chan struct{}, frames <-chan wsFrame) *httptest.Server {
	t.Helper()
	up := websocket.Upgrader{}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		rec := &subRecord{}
		done := make(chan struct{})

		go func() {
			defer close(done)
			for {
				var req wsRequest
				if err := conn.ReadJSON(&req); err != nil {
					return
				}
				if req.Method == methodSubscribe {
					rec.topics = append(rec.topics, req.Params...)
					ack, _ := sonic.Marshal(wsFrame{ID: req.ID})
					_ = conn.WriteMessage(websocket.TextMessage, ack)
				}
			}
		}()

		select {
		case conns <- rec:
		case <-time.After(time.Second):
			return
		}

		for {
			select {
			case <-drop:
				return
			case f, ok := <-frames:
				if !ok {
					<-done
					return
				}
				raw, _ := sonic.Marshal(f)
				_ = conn.WriteMessage(websocket.TextMessage, raw)
			case <-done:
				return
			}
		}
	}))
}

func waitEvent(t *testing.T, events <-chan models.FeedEvent, want models.FeedEventType) models.FeedEvent {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-events:
			if ev.Type == want {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s", want)
			return models.FeedEvent{}
		}
	}
}

func TestClientResubscribesAfterDrop(t *testing.T) {
	conns := make(chan *subRecord, 4)
	drop := make(chan struct{})
	frames := make(chan wsFrame)

	srv := echoServer(t, conns, drop, frames)
	defer srv.Close()

	c := NewClient(testCfg(wsURLOf(srv)), nil)
	key := models.SubKey{Symbol: "BTCUSDT", Interval: "1m"}
	c.Subscribe(key)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx)

	waitEvent(t, c.Events(), models.FeedConnected)
	waitEvent(t, c.Events(), models.FeedSubscribed)

	first := <-conns
	// роняем соединение, клиент должен переподключиться и переслать подписку
	drop <- struct{}{}
	waitEvent(t, c.Events(), models.FeedDisconnected)
	waitEvent(t, c.Events(), models.FeedConnected)
	ev := waitEvent(t, c.Events(), models.FeedSubscribed)
	assert.Equal(t, key, ev.Key)

	second := <-conns
	// ровно один SUBSCRIBE на ключ в каждом соединении
	assert.Equal(t, []string{"btcusdt@bar_1m"}, first.topics)
	assert.Equal(t, []string{"btcusdt@bar_1m"}, second.topics)
}

func TestClientDeliversBarUpdates(t *testing.T) {
	conns := make(chan *subRecord, 2)
	drop := make(chan struct{})
	frames := make(chan wsFrame, 1)

	srv := echoServer(t, conns, drop, frames)
	defer srv.Close()

	c := NewClient(testCfg(wsURLOf(srv)), nil)
	c.Subscribe(models.SubKey{Symbol: "BTCUSDT", Interval: "1m"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx)

	waitEvent(t, c.Events(), models.FeedConnected)
	<-conns

	frames <- wsFrame{
		Symbol: "BTCUSDT", Interval: "1m", OpenTime: 120_000,
		Open: "100", High: "101", Low: "99", Close: "100.5", Volume: "3",
		IsFinal: true,
	}

	select {
	case upd := <-c.Updates():
		require.Equal(t, "BTCUSDT", upd.Key.Symbol)
		assert.Equal(t, int64(120_000), upd.Bar.OpenTime.UnixMilli())
		assert.Equal(t, 100.5, upd.Bar.Close)
		assert.True(t, upd.IsFinal)
	case <-time.After(2 * time.Second):
		t.Fatal("bar update not delivered")
	}
}

func TestClientGivesUpAfterMaxAttempts(t *testing.T) {
	// порт никем не занят — каждый дайл падает сразу
	c := NewClient(testCfg("ws://127.0.0.1:1"), nil)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()

	errs := 0
	for {
		select {
		case ev := <-c.Events():
			switch ev.Type {
			case models.FeedError:
				errs++
			case models.FeedMaxReconnect:
				assert.Equal(t, 3, errs)
				<-done // Run обязан завершиться сам, без cancel
				return
			}
		case <-time.After(2 * time.Second):
			t.Fatal("terminal reconnect event not emitted")
		}
	}
}
