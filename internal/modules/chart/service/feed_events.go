package service

import (
	"context"
	"log"

	"chart_client/internal/helper"
	"chart_client/internal/models"
)

// onFeedEvent — реакция на жизнь соединения + проброс события в UI.
func (c *Controller) onFeedEvent(ctx context.Context, ev models.FeedEvent) {
	switch ev.Type {
	case models.FeedConnected:
		if c.state != nil {
			c.state.SetWSConnected(true)
		}
		if c.polling {
			c.stopPolling()
		}

	case models.FeedDisconnected:
		if c.state != nil {
			c.state.SetWSConnected(false)
		}

	case models.FeedMaxReconnect:
		// стрим умер окончательно — падаем в polling по ширине бакета
		c.startPolling(ctx)
	}

	select {
	case c.feedOut <- ev:
	default:
	}
}

func (c *Controller) startPolling(ctx context.Context) {
	if c.polling {
		return
	}
	width := helper.BucketWidth(c.key.Interval)
	if width <= 0 {
		log.Printf("[CHART] polling fallback impossible for %s", c.key)
		return
	}
	c.polling = true
	c.pollTick.Reset(width)
	if c.state != nil {
		c.state.SetPolling(true)
	}
	log.Printf("[CHART] polling fallback every %s", width)
	if c.n != nil {
		c.n.SendService(ctx, "🔄 График: стрим недоступен, опрашиваем REST каждые %s", width)
	}
}

func (c *Controller) stopPolling() {
	c.polling = false
	c.pollTick.Stop()
	if c.state != nil {
		c.state.SetPolling(false)
	}
	log.Printf("[CHART] polling fallback off, stream is back")
}

// pollOnce — один REST-опрос в режиме фолбэка: хвост истории прогоняем
// через тот же bar-путь, что и стрим.
func (c *Controller) pollOnce(ctx context.Context) {
	bars, err := c.feed.LoadHistoricalBars(ctx, c.key, 2)
	if err != nil {
		log.Printf("[CHART] poll failed %s: %v", c.key, err)
		return
	}
	for _, bar := range bars {
		c.onBar(ctx, models.BarUpdate{Key: c.key, Bar: bar, IsFinal: false})
	}
}
