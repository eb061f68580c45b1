package models

import (
	"fmt"
	"time"
)

// Viewport — видимое временное окно графика, Min < Max.
type Viewport struct {
	Min time.Time
	Max time.Time
}

func (v Viewport) IsZero() bool {
	return v.Min.IsZero() && v.Max.IsZero()
}

func (v Viewport) Span() time.Duration {
	return v.Max.Sub(v.Min)
}

func (v Viewport) Valid() bool {
	return v.Min.Before(v.Max)
}

// Equal — побитовое сравнение по моментам (time.Equal, не ==).
func (v Viewport) Equal(o Viewport) bool {
	return v.Min.Equal(o.Min) && v.Max.Equal(o.Max)
}

func (v Viewport) String() string {
	return fmt.Sprintf("[%d..%d]", v.Min.UnixMilli(), v.Max.UnixMilli())
}
