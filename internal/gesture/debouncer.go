package gesture

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"chart_client/internal/models"
)

type Kind int

const (
	KindZoom Kind = iota + 1
	KindPan
)

func (k Kind) String() string {
	switch k {
	case KindZoom:
		return "zoom"
	case KindPan:
		return "pan"
	default:
		return "none"
	}
}

// Action — один осевший жест: из шквала сырых событий остаётся
// только конечное состояние.
type Action struct {
	Kind     Kind
	Viewport models.Viewport
	At       time.Time
}

const (
	DefaultSettle   = 50 * time.Millisecond
	DefaultCooldown = 150 * time.Millisecond
)

// Debouncer превращает высокочастотные zoom/pan-колбэки в дискретные действия
// и давит петлю обратной связи: пока алгоритм сам пишет вьюпорт в рендер,
// любые сырые события с моста — это эхо нашей же записи, их выбрасываем.
type Debouncer struct {
	log *zap.Logger

	settle   time.Duration
	cooldown time.Duration

	onStart  func(Kind)   // первый принятый raw новой сессии
	onAction func(Action) // осевшее действие

	mu            sync.Mutex
	active        Kind // 0 = сессии нет; взаимоисключение zoom/pan
	pending       models.Viewport
	timer         *time.Timer
	suppressUntil time.Time // окно программной записи
	lastAccepted  time.Time // старт кулдауна
	closed        bool
}

type Option func(*Debouncer)

func WithSettle(d time.Duration) Option {
	return func(g *Debouncer) {
		if d > 0 {
			g.settle = d
		}
	}
}

func WithCooldown(d time.Duration) Option {
	return func(g *Debouncer) {
		if d > 0 {
			g.cooldown = d
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(g *Debouncer) {
		if l != nil {
			g.log = l
		}
	}
}

func New(onStart func(Kind), onAction func(Action), opts ...Option) *Debouncer {
	g := &Debouncer{
		log:      zap.NewNop(),
		settle:   DefaultSettle,
		cooldown: DefaultCooldown,
		onStart:  onStart,
		onAction: onAction,
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Raw принимает сырое zoom/pan-событие с моста. Возвращает false, если
// событие отброшено (эхо программной записи или чужой вид жеста).
func (g *Debouncer) Raw(kind Kind, min, max time.Time) bool {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return false
	}
	now := time.Now()
	if now.Before(g.suppressUntil) {
		g.mu.Unlock()
		return false
	}
	if g.active != 0 && g.active != kind {
		// второй вид жеста при живой сессии — дроп, не очередь
		g.log.Warn("[GESTURE] concurrent kind dropped",
			zap.String("active", g.active.String()), zap.String("got", kind.String()))
		g.mu.Unlock()
		return false
	}

	started := g.active == 0
	g.active = kind
	g.pending = models.Viewport{Min: min, Max: max}

	// каждый новый raw сбрасывает и перевзводит таймер —
	// протухший таймер никогда не выстрелит позже
	if g.timer != nil {
		g.timer.Stop()
	}
	g.timer = time.AfterFunc(g.settle, g.fire)
	g.mu.Unlock()

	if started && g.onStart != nil {
		g.onStart(kind)
	}
	return true
}

func (g *Debouncer) fire() {
	g.mu.Lock()
	if g.closed || g.active == 0 {
		g.mu.Unlock()
		return
	}
	act := Action{Kind: g.active, Viewport: g.pending, At: time.Now()}
	g.active = 0
	g.lastAccepted = act.At
	g.mu.Unlock()

	if g.onAction != nil {
		g.onAction(act)
	}
}

// HoldProgrammatic открывает окно, в котором все сырые события считаются
// эхом нашей собственной записи вьюпорта и отбрасываются.
func (g *Debouncer) HoldProgrammatic(d time.Duration) {
	g.mu.Lock()
	until := time.Now().Add(d)
	if until.After(g.suppressUntil) {
		g.suppressUntil = until
	}
	g.mu.Unlock()
}

// InCooldown — находимся ли в коротком окне после принятого жеста.
// Тап по канве внутри окна — хвост жеста, а не отдельный клик.
func (g *Debouncer) InCooldown(at time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.lastAccepted.IsZero() {
		return false
	}
	return at.Sub(g.lastAccepted) < g.cooldown
}

// SessionActive — открыта ли сейчас жестовая сессия.
func (g *Debouncer) SessionActive() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.active != 0
}

func (g *Debouncer) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closed = true
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
	g.active = 0
}
