package camera

import (
	"time"

	"go.uber.org/zap"

	"chart_client/internal/models"
)

// Mode — режим камеры. Ровно четыре состояния, без внешних одноразовых флагов:
// одноразовое "растянуть на весь диапазон после сброса" камера хранит сама.
type Mode int

const (
	ModeFirstLoad Mode = iota
	ModeAutoFollow
	ModeInteracting
	ModeLocked
)

func (m Mode) String() string {
	switch m {
	case ModeFirstLoad:
		return "FIRST_LOAD"
	case ModeAutoFollow:
		return "AUTO_FOLLOW"
	case ModeInteracting:
		return "USER_INTERACTING"
	case ModeLocked:
		return "USER_LOCKED"
	default:
		return "UNKNOWN"
	}
}

type ChangeFn func(models.CameraChange)

// Camera владеет ответом на вопрос "какой диапазон сейчас показан".
// Создаётся на маунт графика, на смену инструмента/интервала сбрасывается,
// не пересоздаётся. Невалидные переходы — no-op с warn, ничего не кидаем.
type Camera struct {
	log *zap.Logger
	now func() time.Time

	mode             Mode
	viewport         models.Viewport
	lastUserActionAt time.Time

	// одноразовый флаг: первый AUTO_FOLLOW-тик после сброса
	// растягивает вьюпорт на весь загруженный диапазон
	freshFollow bool

	lockTTL  time.Duration // 0 = автоснятие лока выключено
	lockedAt time.Time

	onChange ChangeFn
}

type Option func(*Camera)

func WithLogger(l *zap.Logger) Option {
	return func(c *Camera) {
		if l != nil {
			c.log = l
		}
	}
}

// WithLockTTL включает автоснятие USER_LOCKED после d простоя.
// По умолчанию выключено, лок держится до явного сброса.
func WithLockTTL(d time.Duration) Option {
	return func(c *Camera) { c.lockTTL = d }
}

func WithOnChange(fn ChangeFn) Option {
	return func(c *Camera) { c.onChange = fn }
}

func WithClock(now func() time.Time) Option {
	return func(c *Camera) {
		if now != nil {
			c.now = now
		}
	}
}

func New(opts ...Option) *Camera {
	c := &Camera{
		log:  zap.NewNop(),
		now:  time.Now,
		mode: ModeFirstLoad,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Camera) Mode() Mode { return c.mode }

func (c *Camera) Viewport() models.Viewport { return c.viewport }

func (c *Camera) LastUserActionAt() time.Time { return c.lastUserActionAt }

func (c *Camera) FreshFollow() bool { return c.freshFollow }

// ApplyBackfill применяет рекомендацию бэкфилла ("показать все бары").
// Работает только в FIRST_LOAD — ровно один раз на цикл жизни/сброс.
func (c *Camera) ApplyBackfill(v models.Viewport) {
	if c.mode != ModeFirstLoad {
		c.log.Warn("[CAMERA] backfill viewport ignored", zap.String("mode", c.mode.String()))
		return
	}
	c.viewport = v
	c.emit()
}

// StartFollowing — первый живой бар после загрузки: FIRST_LOAD -> AUTO_FOLLOW.
func (c *Camera) StartFollowing() {
	if c.mode != ModeFirstLoad {
		c.log.Warn("[CAMERA] StartFollowing out of FIRST_LOAD", zap.String("mode", c.mode.String()))
		return
	}
	c.setMode(ModeAutoFollow)
}

func (c *Camera) StartInteraction() {
	switch c.mode {
	case ModeFirstLoad, ModeAutoFollow, ModeLocked:
		c.lastUserActionAt = c.now()
		c.setMode(ModeInteracting)
	default:
		c.log.Warn("[CAMERA] StartInteraction while interacting, ignored")
	}
}

func (c *Camera) ApplyZoom(min, max time.Time) { c.applyGesture(min, max) }
func (c *Camera) ApplyPan(min, max time.Time)  { c.applyGesture(min, max) }

func (c *Camera) applyGesture(min, max time.Time) {
	if c.mode != ModeInteracting {
		c.log.Warn("[CAMERA] gesture viewport outside interaction, ignored",
			zap.String("mode", c.mode.String()))
		return
	}
	if !min.Before(max) {
		c.log.Warn("[CAMERA] degenerate gesture viewport, ignored")
		return
	}
	c.viewport = models.Viewport{Min: min, Max: max}
	c.lastUserActionAt = c.now()
	c.emit()
}

// EndInteraction завершает жест. lock=true — заморозить вьюпорт до явного
// сброса, иначе вернуться в автоследование с сохранением спана.
func (c *Camera) EndInteraction(lock bool) {
	if c.mode != ModeInteracting {
		c.log.Warn("[CAMERA] EndInteraction without interaction, ignored",
			zap.String("mode", c.mode.String()))
		return
	}
	if lock {
		c.lockedAt = c.now()
		c.setMode(ModeLocked)
		return
	}
	c.setMode(ModeAutoFollow)
}

// Lock — принудительная заморозка текущего вьюпорта.
func (c *Camera) Lock() {
	if c.mode == ModeLocked {
		return
	}
	c.lockedAt = c.now()
	c.setMode(ModeLocked)
}

// Unlock снимает лок, спан пользователя сохраняется.
func (c *Camera) Unlock() {
	if c.mode != ModeLocked {
		c.log.Warn("[CAMERA] Unlock without lock, ignored", zap.String("mode", c.mode.String()))
		return
	}
	c.lastUserActionAt = time.Time{}
	c.setMode(ModeAutoFollow)
}

// ResetToLatest — явный возврат к хвосту: следующий тик растянет
// вьюпорт на весь загруженный диапазон.
func (c *Camera) ResetToLatest() {
	c.lastUserActionAt = time.Time{}
	c.freshFollow = true
	c.setMode(ModeAutoFollow)
}

// ResetForInstrumentChange / ResetForIntervalChange — полный сброс в FIRST_LOAD,
// вьюпорт чистится, следующая рекомендация бэкфилла применится ровно один раз.
func (c *Camera) ResetForInstrumentChange() { c.reset() }
func (c *Camera) ResetForIntervalChange()   { c.reset() }

func (c *Camera) reset() {
	c.viewport = models.Viewport{}
	c.lastUserActionAt = time.Time{}
	c.freshFollow = false
	c.setMode(ModeFirstLoad)
}

// ApplyTide фиксирует вьюпорт, посчитанный приливным алгоритмом.
// Гасит одноразовый freshFollow.
func (c *Camera) ApplyTide(v models.Viewport) {
	if c.mode != ModeAutoFollow {
		c.log.Warn("[CAMERA] tide viewport outside AUTO_FOLLOW, ignored",
			zap.String("mode", c.mode.String()))
		return
	}
	c.freshFollow = false
	c.viewport = v
}

// MaybeExpireLock лениво снимает лок по TTL (если включён). Зовётся на тике,
// фоновых таймеров у камеры нет.
func (c *Camera) MaybeExpireLock() bool {
	if c.lockTTL <= 0 || c.mode != ModeLocked {
		return false
	}
	if c.now().Sub(c.lockedAt) < c.lockTTL {
		return false
	}
	c.log.Info("[CAMERA] lock expired", zap.Duration("ttl", c.lockTTL))
	c.lastUserActionAt = time.Time{}
	c.setMode(ModeAutoFollow)
	return true
}

func (c *Camera) setMode(m Mode) {
	c.mode = m
	c.emit()
}

func (c *Camera) emit() {
	if c.onChange == nil {
		return
	}
	c.onChange(models.CameraChange{
		Mode:     c.mode.String(),
		Viewport: c.viewport,
		At:       c.now(),
	})
}
