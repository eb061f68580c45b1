package service

import (
	"context"
	"log"

	"github.com/opentracing/opentracing-go"

	"chart_client/internal/models"
	"chart_client/internal/series"
)

// applySelection — смена инструмента/интервала: камера в FIRST_LOAD,
// буфер заменяется целиком, бэкфилл уходит в фон.
func (c *Controller) applySelection(ctx context.Context, key models.SubKey, intervalChange bool) {
	if key == c.key && c.buf != nil {
		return
	}

	if !c.key.IsZero() {
		c.feed.Unsubscribe(c.key)
	}
	if intervalChange {
		c.cam.ResetForIntervalChange()
	} else {
		c.cam.ResetForInstrumentChange()
	}

	c.key = key
	c.buf = series.NewBuffer(key,
		series.WithCap(c.cfg.Chart.BufferCap),
		series.WithSkewScan(c.cfg.SkewScan),
	)
	if c.state != nil {
		c.state.SetReady(false)
	}

	c.feed.Subscribe(key)

	// фетч в фоне: цикл не блокируем, протухший ответ отфильтрует onBackfill
	go func() {
		span := opentracing.StartSpan("chart.backfill")
		span.SetTag("symbol", key.Symbol)
		span.SetTag("interval", key.Interval)
		defer span.Finish()

		bars, err := c.feed.LoadHistoricalBars(ctx, key, c.cfg.BackfillLimit)
		c.post(backfillCmd{key: key, bars: bars, err: err})
	}()
}

// onBackfill применяет рекомендацию бэкфилла ровно один раз.
func (c *Controller) onBackfill(ctx context.Context, cmd backfillCmd) {
	if cmd.key != c.key {
		// выбор успел поменяться, пока фетч летел — молча выбрасываем
		log.Printf("[CHART] stale backfill discarded %s (current %s)", cmd.key, c.key)
		return
	}

	bars := cmd.bars
	if cmd.err != nil {
		log.Printf("[CHART] backfill failed %s: %v", cmd.key, cmd.err)
		if c.arch == nil {
			return
		}
		// офлайн-фолбэк из архива
		var aerr error
		bars, aerr = c.arch.RecentBars(ctx, cmd.key, c.cfg.BackfillLimit)
		if aerr != nil || len(bars) == 0 {
			log.Printf("[CHART] archive fallback failed %s: %v", cmd.key, aerr)
			if c.n != nil {
				c.n.SendService(ctx, "⚠️ График: бэкфилл %s недоступен (REST и архив)", cmd.key)
			}
			return
		}
		log.Printf("[CHART] archive fallback %s: %d bars", cmd.key, len(bars))
	}

	n := c.buf.Fill(bars)
	log.Printf("[CHART] backfill %s: %d bars", cmd.key, n)

	if vp, ok := c.buf.FullRange(); ok {
		vp = c.padDegenerate(vp)
		c.cam.ApplyBackfill(vp)
		c.applyViewport(vp)
	}
	if c.state != nil {
		c.state.SetReady(true)
	}
}
