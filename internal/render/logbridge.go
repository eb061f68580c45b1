package render

import (
	"log"
	"sync"
	"time"
)

// LogBridge — мост для headless-запуска: вместо отрисовки пишет диапазон
// в лог. В проде сюда втыкается настоящий рендер.
type LogBridge struct {
	mu       sync.Mutex
	min, max time.Time
}

func NewLogBridge() *LogBridge { return &LogBridge{} }

func (b *LogBridge) SetVisibleRange(min, max time.Time) {
	b.mu.Lock()
	b.min, b.max = min, max
	b.mu.Unlock()
}

func (b *LogBridge) Redraw(mode RedrawMode) {
	b.mu.Lock()
	min, max := b.min, b.max
	b.mu.Unlock()
	log.Printf("[RENDER] redraw(%d) range=[%d..%d]", mode, min.UnixMilli(), max.UnixMilli())
}

func (b *LogBridge) CurrentVisibleRange() (time.Time, time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.min, b.max
}
