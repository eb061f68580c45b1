package series

import (
	"fmt"
	"sort"
	"time"

	"chart_client/internal/helper"
	"chart_client/internal/models"
)

const (
	DefaultCap = 1000
	// DefaultSkewScan — сколько последних баров, кроме хвоста, проверяем
	// на попадание в тот же бакет. Толеранс к рассинхрону часов у провайдера.
	DefaultSkewScan = 5
)

// Buffer — упорядоченное по OpenTime хранилище баров одного (symbol, interval).
// Уникальность по бакету, при переполнении вытесняем самый старый.
// Про вьюпорт и камеру буфер не знает ничего.
type Buffer struct {
	key      models.SubKey
	width    time.Duration
	cap      int
	skewScan int
	bars     []models.Bar
}

type Option func(*Buffer)

func WithCap(n int) Option {
	return func(b *Buffer) {
		if n > 0 {
			b.cap = n
		}
	}
}

func WithSkewScan(n int) Option {
	return func(b *Buffer) {
		if n >= 0 {
			b.skewScan = n
		}
	}
}

func NewBuffer(key models.SubKey, opts ...Option) *Buffer {
	b := &Buffer{
		key:      key,
		width:    helper.BucketWidth(key.Interval),
		cap:      DefaultCap,
		skewScan: DefaultSkewScan,
	}
	for _, o := range opts {
		o(b)
	}
	b.bars = make([]models.Bar, 0, b.cap)
	return b
}

func (b *Buffer) Key() models.SubKey { return b.key }
func (b *Buffer) Len() int           { return len(b.bars) }

// Result — что произошло с входящим баром.
type Result int

const (
	Rejected Result = iota
	Replaced
	Appended
)

// Reconcile сводит входящий апдейт с буфером: хвост проверяем первым
// (стрим почти всегда обновляет самый свежий бар), потом последние skewScan
// записей; совпал бакет — замена на месте, иначе append + вытеснение.
func (b *Buffer) Reconcile(in models.Bar) (Result, error) {
	if err := in.Validate(); err != nil {
		return Rejected, err
	}

	n := len(b.bars)
	if n > 0 {
		// хвост первым
		if helper.SameBucket(b.bars[n-1].OpenTime, in.OpenTime, b.width) {
			in.OpenTime = b.bars[n-1].OpenTime
			b.bars[n-1] = in
			return Replaced, nil
		}
		lo := n - 1 - b.skewScan
		if lo < 0 {
			lo = 0
		}
		for i := n - 2; i >= lo; i-- {
			if helper.SameBucket(b.bars[i].OpenTime, in.OpenTime, b.width) {
				in.OpenTime = b.bars[i].OpenTime
				b.bars[i] = in
				return Replaced, nil
			}
		}
	}

	b.bars = append(b.bars, in)
	// стрим может догонять историю не по порядку — держим сортировку
	if n > 0 && in.OpenTime.Before(b.bars[n-1].OpenTime) {
		sort.Slice(b.bars, func(i, j int) bool {
			return b.bars[i].OpenTime.Before(b.bars[j].OpenTime)
		})
	}
	if len(b.bars) > b.cap {
		b.bars = b.bars[len(b.bars)-b.cap:]
	}
	return Appended, nil
}

// Fill заменяет содержимое целиком (бэкфилл). Невалидные бары отбрасываются.
func (b *Buffer) Fill(bars []models.Bar) int {
	b.bars = b.bars[:0]
	for _, bar := range bars {
		if bar.Validate() != nil {
			continue
		}
		b.bars = append(b.bars, bar)
	}
	sort.Slice(b.bars, func(i, j int) bool {
		return b.bars[i].OpenTime.Before(b.bars[j].OpenTime)
	})
	if len(b.bars) > b.cap {
		b.bars = b.bars[len(b.bars)-b.cap:]
	}
	return len(b.bars)
}

func (b *Buffer) First() (models.Bar, bool) {
	if len(b.bars) == 0 {
		return models.Bar{}, false
	}
	return b.bars[0], true
}

func (b *Buffer) Last() (models.Bar, bool) {
	if len(b.bars) == 0 {
		return models.Bar{}, false
	}
	return b.bars[len(b.bars)-1], true
}

// Bars — копия содержимого, oldest -> newest.
func (b *Buffer) Bars() []models.Bar {
	out := make([]models.Bar, len(b.bars))
	copy(out, b.bars)
	return out
}

// FullRange — [первый бар, последний бар]; ок=false на пустом буфере.
func (b *Buffer) FullRange() (models.Viewport, bool) {
	if len(b.bars) == 0 {
		return models.Viewport{}, false
	}
	return models.Viewport{
		Min: b.bars[0].OpenTime,
		Max: b.bars[len(b.bars)-1].OpenTime,
	}, true
}

func (b *Buffer) String() string {
	return fmt.Sprintf("series[%s n=%d cap=%d]", b.key, len(b.bars), b.cap)
}
