package service

import (
	"time"

	"chart_client/internal/gesture"
)

// HandleZoomChanged / HandlePanChanged — сырые события с рендер-моста.
// Высокочастотные, прореживает их дебаунсер; эхо наших собственных
// программных записей он же и выбрасывает.
func (c *Controller) HandleZoomChanged(min, max time.Time) {
	c.deb.Raw(gesture.KindZoom, min, max)
}

func (c *Controller) HandlePanChanged(min, max time.Time) {
	c.deb.Raw(gesture.KindPan, min, max)
}

// HandleTap классифицирует тап по канве: внутри кулдауна после жеста
// это хвост взаимодействия, а не самостоятельный клик.
// Возвращает true, если тап можно обрабатывать как клик.
func (c *Controller) HandleTap(at time.Time) bool {
	return !c.deb.InCooldown(at)
}

// onGestureEnd — осевшее действие: фиксируем вьюпорт жеста и замораживаем
// камеру до явного сброса.
func (c *Controller) onGestureEnd(act gesture.Action) {
	switch act.Kind {
	case gesture.KindZoom:
		c.cam.ApplyZoom(act.Viewport.Min, act.Viewport.Max)
	case gesture.KindPan:
		c.cam.ApplyPan(act.Viewport.Min, act.Viewport.Max)
	}
	c.cam.EndInteraction(true)
}
