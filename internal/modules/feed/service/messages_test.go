package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFrameAck(t *testing.T) {
	f, ok := parseFrame([]byte(`{"id":7,"result":null}`))
	require.True(t, ok)
	assert.True(t, f.isAck())
}

func TestParseFrameBarUpdate(t *testing.T) {
	raw := []byte(`{
		"symbol":"BTCUSDT","interval":"bar_1m","openTime":120000,
		"open":"100.5","high":"101","low":"100","close":"100.9",
		"volume":"12.75","isFinal":true
	}`)
	f, ok := parseFrame(raw)
	require.True(t, ok)
	require.False(t, f.isAck())

	upd, ok := f.toBarUpdate()
	require.True(t, ok)
	assert.Equal(t, "BTCUSDT", upd.Key.Symbol)
	assert.Equal(t, "1m", upd.Key.Interval) // префикс bar_ срезан
	assert.Equal(t, int64(120_000), upd.Bar.OpenTime.UnixMilli())
	assert.Equal(t, 100.5, upd.Bar.Open)
	assert.Equal(t, 100.9, upd.Bar.Close)
	assert.Equal(t, 12.75, upd.Bar.Volume)
	assert.True(t, upd.IsFinal)
}

func TestParseFrameGarbage(t *testing.T) {
	_, ok := parseFrame([]byte(`{"symbol":`))
	assert.False(t, ok)
}

func TestToBarUpdateDropsBrokenFields(t *testing.T) {
	cases := map[string]wsFrame{
		"no symbol":     {OpenTime: 1, Open: "1", High: "1", Low: "1", Close: "1"},
		"zero openTime": {Symbol: "BTCUSDT", Open: "1", High: "1", Low: "1", Close: "1"},
		"bad price":     {Symbol: "BTCUSDT", OpenTime: 1, Open: "x", High: "1", Low: "1", Close: "1"},
	}
	for name, f := range cases {
		_, ok := f.toBarUpdate()
		assert.False(t, ok, name)
	}
}

func TestToBarUpdateVolumeOptional(t *testing.T) {
	f := wsFrame{
		Symbol: "ETHUSDT", Interval: "1m", OpenTime: 60_000,
		Open: "10", High: "11", Low: "9", Close: "10.5",
	}
	upd, ok := f.toBarUpdate()
	require.True(t, ok)
	assert.Equal(t, 0.0, upd.Bar.Volume)
}
