package helper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormTF(t *testing.T) {
	cases := map[string]string{
		"1m":        "1m",
		"bar_1m":    "1m",
		"candle5m":  "5m",
		"60m":       "1h",
		"240m":      "4h",
		" 1H ":      "1h",
		"candle60m": "1h",
	}
	for raw, want := range cases {
		assert.Equal(t, want, NormTF(raw), "raw=%q", raw)
	}
}

func TestBucketWidth(t *testing.T) {
	assert.Equal(t, time.Minute, BucketWidth("1m"))
	assert.Equal(t, time.Minute, BucketWidth("bar_1m"))
	assert.Equal(t, time.Hour, BucketWidth("60m"))
	assert.Equal(t, 24*time.Hour, BucketWidth("1d"))
	assert.Equal(t, time.Duration(0), BucketWidth("7w"))
}

func TestAlignToBucket(t *testing.T) {
	got := AlignToBucket(time.UnixMilli(120_500), time.Minute)
	assert.Equal(t, int64(120_000), got.UnixMilli())

	// нулевая ширина — время не трогаем
	raw := time.UnixMilli(123_456)
	assert.True(t, AlignToBucket(raw, 0).Equal(raw))
}

func TestSameBucket(t *testing.T) {
	w := time.Minute
	assert.True(t, SameBucket(time.UnixMilli(120_000), time.UnixMilli(120_500), w))
	assert.False(t, SameBucket(time.UnixMilli(119_999), time.UnixMilli(120_000), w))
	assert.True(t, SameBucket(time.UnixMilli(5), time.UnixMilli(5), 0))
}
