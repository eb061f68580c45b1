package helper

import (
	"strings"
	"time"
)

// NormTF приводит сырой таймфрейм к канонике: "candle1m"/"60m" -> "1m"/"1h".
func NormTF(raw string) string {
	s := strings.TrimSpace(strings.ToLower(raw))
	s = strings.TrimPrefix(s, "bar_")
	s = strings.TrimPrefix(s, "candle")
	switch s {
	case "60m", "1h":
		return "1h"
	case "240m", "4h":
		return "4h"
	default:
		return s
	}
}

// BucketWidth — длительность одного бара для интервала. Неизвестный интервал -> 0.
func BucketWidth(interval string) time.Duration {
	switch NormTF(interval) {
	case "1s":
		return time.Second
	case "1m":
		return time.Minute
	case "3m":
		return 3 * time.Minute
	case "5m":
		return 5 * time.Minute
	case "15m":
		return 15 * time.Minute
	case "30m":
		return 30 * time.Minute
	case "1h":
		return time.Hour
	case "4h":
		return 4 * time.Hour
	case "1d":
		return 24 * time.Hour
	default:
		return 0
	}
}

// AlignToBucket — начало бакета, в который попадает t.
// Слот считается по Unix-миллисекундам.
func AlignToBucket(t time.Time, width time.Duration) time.Time {
	if width <= 0 {
		return t
	}
	ms := t.UnixMilli()
	ms -= ms % width.Milliseconds()
	return time.UnixMilli(ms).In(t.Location())
}

// SameBucket — попадают ли два момента в один бакет ширины width.
func SameBucket(a, b time.Time, width time.Duration) bool {
	if width <= 0 {
		return a.Equal(b)
	}
	return AlignToBucket(a, width).Equal(AlignToBucket(b, width))
}
