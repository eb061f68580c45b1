package service

import (
	"context"
	"log"
	"time"

	"chart_client/internal/camera"
	"chart_client/internal/gesture"
	"chart_client/internal/helper"
	"chart_client/internal/models"
	"chart_client/internal/modules/config"
	healthsvc "chart_client/internal/modules/health/service"
	"chart_client/internal/render"
	"chart_client/internal/series"
)

type ServiceNotifier interface {
	SendService(ctx context.Context, format string, args ...any)
}

// Feed — то, что контроллеру нужно от стримера.
type Feed interface {
	Subscribe(key models.SubKey)
	Unsubscribe(key models.SubKey)
	LoadHistoricalBars(ctx context.Context, key models.SubKey, limit int) ([]models.Bar, error)
	Updates() <-chan models.BarUpdate
	Events() <-chan models.FeedEvent
}

// Archive — офлайн-фолбэк бэкфилла (может быть nil).
type Archive interface {
	SaveBar(ctx context.Context, key models.SubKey, bar models.Bar) error
	RecentBars(ctx context.Context, key models.SubKey, limit int) ([]models.Bar, error)
}

// команды единственного пишущего цикла: и прилив, и жесты, и управление
// проходят через один канал — порядок детерминирован
type (
	gestureStartCmd struct{ kind gesture.Kind }
	gestureEndCmd   struct{ act gesture.Action }
	// setKeyCmd несёт только изменившееся поле; недостающее берётся из
	// текущего выбора внутри цикла, а не из стартового конфига
	setKeyCmd struct {
		symbol   string
		interval string
	}
	backfillCmd struct {
		key  models.SubKey
		bars []models.Bar
		err  error
	}
	resetCmd  struct{}
	lockCmd   struct{}
	unlockCmd struct{}
)

// Controller — клей вьюпорт-подсистемы: стрим -> буфер -> камера -> прилив ->
// рендер-мост. Всё состояние мутируется только из Run-цикла.
type Controller struct {
	cfg    *config.Config
	n      ServiceNotifier
	feed   Feed
	bridge render.Bridge
	state  *healthsvc.State
	arch   Archive

	deb *gesture.Debouncer
	cam *camera.Camera
	buf *series.Buffer
	key models.SubKey

	cmds chan any

	cameraOut chan models.CameraChange
	barOut    chan models.BarUpdate
	feedOut   chan models.FeedEvent

	polling  bool
	pollTick *time.Ticker
}

func NewController(
	cfg *config.Config,
	f Feed,
	bridge render.Bridge,
	state *healthsvc.State,
	arch Archive,
	n ServiceNotifier,
) *Controller {
	c := &Controller{
		cfg:       cfg,
		n:         n,
		feed:      f,
		bridge:    bridge,
		state:     state,
		arch:      arch,
		cmds:      make(chan any, 128),
		cameraOut: make(chan models.CameraChange, 16),
		barOut:    make(chan models.BarUpdate, 256),
		feedOut:   make(chan models.FeedEvent, 16),
	}
	c.cam = camera.New(
		camera.WithLockTTL(cfg.LockTTL),
		camera.WithOnChange(c.onCameraChange),
	)
	c.deb = gesture.New(
		func(k gesture.Kind) { c.post(gestureStartCmd{kind: k}) },
		func(a gesture.Action) { c.post(gestureEndCmd{act: a}) },
		gesture.WithSettle(cfg.GestureSettle),
		gesture.WithCooldown(cfg.GestureCooldown),
	)
	return c
}

// CameraChanges — события cameraStateChanged для UI.
func (c *Controller) CameraChanges() <-chan models.CameraChange { return c.cameraOut }

// BarUpdates — сведённые с буфером апдейты для UI.
func (c *Controller) BarUpdates() <-chan models.BarUpdate { return c.barOut }

// FeedEvents — connected/disconnected/maxReconnectAttemptsReached для UI.
func (c *Controller) FeedEvents() <-chan models.FeedEvent { return c.feedOut }

// Run — единственный пишущий цикл. Вся мутация камеры/буфера здесь.
func (c *Controller) Run(ctx context.Context) {
	defer c.deb.Close()

	c.pollTick = time.NewTicker(time.Hour)
	c.pollTick.Stop()
	defer c.pollTick.Stop()

	initial := models.SubKey{
		Symbol:   c.cfg.Chart.Symbol,
		Interval: helper.NormTF(c.cfg.Chart.Interval),
	}
	c.applySelection(ctx, initial, false)

	for {
		select {
		case <-ctx.Done():
			return

		case upd, ok := <-c.feed.Updates():
			if !ok {
				return
			}
			c.onBar(ctx, upd)

		case ev, ok := <-c.feed.Events():
			if !ok {
				return
			}
			c.onFeedEvent(ctx, ev)

		case <-c.pollTick.C:
			c.pollOnce(ctx)

		case cmd := <-c.cmds:
			c.dispatch(ctx, cmd)
		}
	}
}

func (c *Controller) dispatch(ctx context.Context, cmd any) {
	switch v := cmd.(type) {
	case gestureStartCmd:
		c.cam.StartInteraction()
	case gestureEndCmd:
		c.onGestureEnd(v.act)
	case setKeyCmd:
		// частичная команда накладывается на текущий выбор:
		// смена символа не откатывает ранее выбранный интервал
		next := c.key
		intervalChange := v.interval != ""
		if v.symbol != "" {
			next.Symbol = v.symbol
		}
		if intervalChange {
			next.Interval = helper.NormTF(v.interval)
		}
		c.applySelection(ctx, next, intervalChange)
	case backfillCmd:
		c.onBackfill(ctx, v)
	case resetCmd:
		c.onResetToLatest()
	case lockCmd:
		c.cam.Lock()
	case unlockCmd:
		c.cam.Unlock()
	default:
		log.Printf("[CHART] unknown command %T", cmd)
	}
}

func (c *Controller) post(cmd any) {
	select {
	case c.cmds <- cmd:
	default:
		log.Printf("[CHART] command queue full, drop %T", cmd)
	}
}

// --- управление снаружи (UI-поток) ---

func (c *Controller) SetInstrument(symbol string) {
	c.post(setKeyCmd{symbol: symbol})
}

func (c *Controller) SetInterval(interval string) {
	c.post(setKeyCmd{interval: interval})
}

func (c *Controller) ResetToLatest() { c.post(resetCmd{}) }
func (c *Controller) Lock()          { c.post(lockCmd{}) }
func (c *Controller) Unlock()        { c.post(unlockCmd{}) }

func (c *Controller) onResetToLatest() {
	c.cam.ResetToLatest()
	if vp, ok := c.buf.FullRange(); ok {
		vp = c.padDegenerate(vp)
		c.cam.ApplyTide(vp)
		c.applyViewport(vp)
	}
}

// padDegenerate расширяет одноточечный диапазон (единственный бар в буфере)
// до ширины бакета: мост никогда не видит Min == Max.
func (c *Controller) padDegenerate(v models.Viewport) models.Viewport {
	if v.Valid() {
		return v
	}
	width := helper.BucketWidth(c.key.Interval)
	if width <= 0 {
		width = time.Minute
	}
	v.Max = v.Min.Add(width)
	return v
}

func (c *Controller) onCameraChange(ch models.CameraChange) {
	if c.state != nil {
		c.state.SetCameraMode(ch.Mode)
	}
	select {
	case c.cameraOut <- ch:
	default:
	}
}

// applyViewport пишет вьюпорт в мост. Окно программной записи держим
// открытым до и чуть после записи: сырые события в этом окне — наше эхо.
func (c *Controller) applyViewport(v models.Viewport) {
	c.deb.HoldProgrammatic(c.cfg.WriteGuard)
	c.bridge.SetVisibleRange(v.Min, v.Max)
	c.bridge.Redraw(render.RedrawAnimated)
}
