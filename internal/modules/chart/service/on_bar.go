package service

import (
	"context"
	"log"

	"chart_client/internal/camera"
	"chart_client/internal/models"
	"chart_client/internal/tide"
)

// onBar — один апдейт бара: stale-чек, реконсиляция, прилив, рендер.
func (c *Controller) onBar(ctx context.Context, upd models.BarUpdate) {
	if upd.Key != c.key {
		// ответ для уже не выбранного ключа — молча выбрасываем
		return
	}

	_, err := c.buf.Reconcile(upd.Bar)
	if err != nil {
		// одна кривая свеча, буфер не тронут, следующий тик сам поправит
		log.Printf("[BAR] rejected %s: %v", c.key, err)
		return
	}

	if c.state != nil {
		c.state.TouchBar(upd.Bar.OpenTime)
	}

	if c.cam.Mode() == camera.ModeFirstLoad {
		c.cam.StartFollowing()
	}
	c.cam.MaybeExpireLock()

	c.tideAndRender()

	if upd.IsFinal && c.arch != nil {
		// архив не должен тормозить цикл
		go func(key models.SubKey, bar models.Bar) {
			if err := c.arch.SaveBar(ctx, key, bar); err != nil {
				log.Printf("[ARCHIVE] save failed %s: %v", key, err)
			}
		}(upd.Key, upd.Bar)
	}

	select {
	case c.barOut <- upd:
	default:
	}
}

// tideAndRender считает следующий вьюпорт и, если он изменился,
// применяет его к мосту под защитой окна программной записи.
func (c *Controller) tideAndRender() {
	first, ok1 := c.buf.First()
	last, ok2 := c.buf.Last()
	if !ok1 || !ok2 {
		return
	}

	prev := c.cam.Viewport()
	next := tide.Next(tide.Input{
		Prev:   prev,
		Mode:   c.cam.Mode(),
		First:  first.OpenTime,
		Newest: last.OpenTime,
		Fresh:  c.cam.FreshFollow(),
		Margin: c.cfg.TrailingMargin,
	})
	next = c.padDegenerate(next)

	if c.cam.Mode() != camera.ModeAutoFollow || next.Equal(prev) {
		return
	}
	c.cam.ApplyTide(next)
	c.applyViewport(next)
}
