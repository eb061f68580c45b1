package models

import (
	"fmt"
	"strings"
)

// SubKey — (symbol, interval), единица подписки и владения буфером/камерой.
// Сравнивается структурно, строковый topic живёт только на проводе.
type SubKey struct {
	Symbol   string
	Interval string
}

func (k SubKey) Topic() string {
	return strings.ToLower(k.Symbol) + "@bar_" + k.Interval
}

func (k SubKey) String() string {
	return fmt.Sprintf("%s/%s", k.Symbol, k.Interval)
}

func (k SubKey) IsZero() bool {
	return k.Symbol == "" && k.Interval == ""
}
