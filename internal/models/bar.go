package models

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidBar — свеча с NaN или сломанным OHLC-соотношением.
// Такую свечу просто выкидываем, следующий тик сам всё поправит.
var ErrInvalidBar = errors.New("invalid bar")

// Bar — одна OHLCV-свеча. OpenTime указывает на начало бакета.
// Пока бакет ещё формируется — бар мутируется на месте, после закрытия не трогаем.
type Bar struct {
	OpenTime time.Time
	Open     float64
	High     float64
	Low      float64
	Close    float64
	Volume   float64
}

func (b Bar) Validate() error {
	for _, p := range [...]float64{b.Open, b.High, b.Low, b.Close} {
		if math.IsNaN(p) || math.IsInf(p, 0) || p <= 0 {
			return fmt.Errorf("%w: bad price %v", ErrInvalidBar, p)
		}
	}
	if math.IsNaN(b.Volume) || b.Volume < 0 {
		return fmt.Errorf("%w: bad volume %v", ErrInvalidBar, b.Volume)
	}
	if b.High < b.Open || b.High < b.Close || b.High < b.Low {
		return fmt.Errorf("%w: high=%v below open/close/low", ErrInvalidBar, b.High)
	}
	if b.Low > b.Open || b.Low > b.Close {
		return fmt.Errorf("%w: low=%v above open/close", ErrInvalidBar, b.Low)
	}
	return nil
}
