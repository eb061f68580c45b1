package gesture

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collector копит осевшие действия; таймеры настоящие, settle короткий.
type collector struct {
	mu      sync.Mutex
	starts  []Kind
	actions []Action
}

func (c *collector) onStart(k Kind) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.starts = append(c.starts, k)
}

func (c *collector) onAction(a Action) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.actions = append(c.actions, a)
}

func (c *collector) snapshot() ([]Kind, []Action) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Kind(nil), c.starts...), append([]Action(nil), c.actions...)
}

func newTestDebouncer(c *collector) *Debouncer {
	return New(c.onStart, c.onAction,
		WithSettle(20*time.Millisecond),
		WithCooldown(60*time.Millisecond),
	)
}

func ts(v int64) time.Time { return time.UnixMilli(v) }

func TestBurstCoalescesToSingleAction(t *testing.T) {
	c := &collector{}
	g := newTestDebouncer(c)
	defer g.Close()

	for i := int64(0); i < 10; i++ {
		ok := g.Raw(KindZoom, ts(i*100), ts(i*100+500_000))
		require.True(t, ok)
		time.Sleep(2 * time.Millisecond)
	}
	require.True(t, g.SessionActive())

	time.Sleep(60 * time.Millisecond)

	starts, actions := c.snapshot()
	require.Len(t, starts, 1)
	require.Len(t, actions, 1)
	assert.Equal(t, KindZoom, actions[0].Kind)
	// осело именно последнее состояние шквала
	assert.Equal(t, int64(900), actions[0].Viewport.Min.UnixMilli())
	assert.False(t, g.SessionActive())
}

func TestConcurrentKindDropped(t *testing.T) {
	c := &collector{}
	g := newTestDebouncer(c)
	defer g.Close()

	require.True(t, g.Raw(KindZoom, ts(0), ts(1_000)))
	assert.False(t, g.Raw(KindPan, ts(5), ts(2_000)))

	time.Sleep(60 * time.Millisecond)

	_, actions := c.snapshot()
	require.Len(t, actions, 1)
	assert.Equal(t, KindZoom, actions[0].Kind)
	assert.Equal(t, int64(1_000), actions[0].Viewport.Max.UnixMilli())
}

func TestNewSessionAfterSettleAllowsOtherKind(t *testing.T) {
	c := &collector{}
	g := newTestDebouncer(c)
	defer g.Close()

	require.True(t, g.Raw(KindZoom, ts(0), ts(1_000)))
	time.Sleep(60 * time.Millisecond)

	require.True(t, g.Raw(KindPan, ts(100), ts(1_100)))
	time.Sleep(60 * time.Millisecond)

	starts, actions := c.snapshot()
	assert.Equal(t, []Kind{KindZoom, KindPan}, starts)
	require.Len(t, actions, 2)
}

func TestHoldProgrammaticSuppressesEcho(t *testing.T) {
	c := &collector{}
	g := newTestDebouncer(c)
	defer g.Close()

	g.HoldProgrammatic(40 * time.Millisecond)
	assert.False(t, g.Raw(KindPan, ts(0), ts(1_000)))
	assert.False(t, g.SessionActive())

	time.Sleep(50 * time.Millisecond)
	assert.True(t, g.Raw(KindPan, ts(0), ts(1_000)))

	time.Sleep(60 * time.Millisecond)
	_, actions := c.snapshot()
	require.Len(t, actions, 1)
}

func TestHoldProgrammaticWindowOnlyExtends(t *testing.T) {
	g := New(nil, nil, WithSettle(20*time.Millisecond))
	defer g.Close()

	g.HoldProgrammatic(80 * time.Millisecond)
	g.HoldProgrammatic(time.Millisecond) // короче уже открытого окна — не сжимает
	time.Sleep(20 * time.Millisecond)
	assert.False(t, g.Raw(KindZoom, ts(0), ts(1_000)))
}

func TestInCooldownAfterSettledGesture(t *testing.T) {
	c := &collector{}
	g := newTestDebouncer(c)
	defer g.Close()

	assert.False(t, g.InCooldown(time.Now()))

	require.True(t, g.Raw(KindZoom, ts(0), ts(1_000)))
	time.Sleep(40 * time.Millisecond)

	_, actions := c.snapshot()
	require.Len(t, actions, 1)

	at := actions[0].At
	assert.True(t, g.InCooldown(at.Add(30*time.Millisecond)))
	assert.False(t, g.InCooldown(at.Add(100*time.Millisecond)))
}

func TestCloseStopsPendingTimer(t *testing.T) {
	c := &collector{}
	g := newTestDebouncer(c)

	require.True(t, g.Raw(KindPan, ts(0), ts(1_000)))
	g.Close()

	time.Sleep(40 * time.Millisecond)
	_, actions := c.snapshot()
	assert.Empty(t, actions)
	assert.False(t, g.Raw(KindPan, ts(0), ts(1_000)))
}
