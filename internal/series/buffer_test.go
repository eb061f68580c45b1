package series

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chart_client/internal/models"
)

func mkBar(ms int64, price float64) models.Bar {
	return models.Bar{
		OpenTime: time.UnixMilli(ms),
		Open:     price,
		High:     price,
		Low:      price,
		Close:    price,
		Volume:   1,
	}
}

func key1m() models.SubKey {
	return models.SubKey{Symbol: "BTCUSDT", Interval: "1m"}
}

func TestReconcileDistinctBucketsGrowByOne(t *testing.T) {
	buf := NewBuffer(key1m())

	for i := int64(0); i < 10; i++ {
		res, err := buf.Reconcile(mkBar(i*60_000, 100))
		require.NoError(t, err)
		require.Equal(t, Appended, res)
		require.Equal(t, int(i)+1, buf.Len())
	}
}

func TestReconcileCapEvictsOldest(t *testing.T) {
	buf := NewBuffer(key1m(), WithCap(3))

	for i := int64(0); i < 5; i++ {
		_, err := buf.Reconcile(mkBar(i*60_000, 100))
		require.NoError(t, err)
	}

	require.Equal(t, 3, buf.Len())
	first, ok := buf.First()
	require.True(t, ok)
	assert.Equal(t, int64(120_000), first.OpenTime.UnixMilli())
}

func TestReconcileSameBucketReplaces(t *testing.T) {
	buf := NewBuffer(key1m())
	for _, ms := range []int64{0, 60_000, 120_000} {
		_, err := buf.Reconcile(mkBar(ms, 100))
		require.NoError(t, err)
	}

	// апдейт с рассинхроном часов: 120500 попадает в бакет 120000
	res, err := buf.Reconcile(mkBar(120_500, 105))
	require.NoError(t, err)
	assert.Equal(t, Replaced, res)
	assert.Equal(t, 3, buf.Len())

	last, ok := buf.Last()
	require.True(t, ok)
	assert.Equal(t, int64(120_000), last.OpenTime.UnixMilli())
	assert.Equal(t, 105.0, last.Close)
}

func TestReconcileSkewScanReachesBehindTail(t *testing.T) {
	buf := NewBuffer(key1m())
	for _, ms := range []int64{0, 60_000, 120_000, 180_000} {
		_, err := buf.Reconcile(mkBar(ms, 100))
		require.NoError(t, err)
	}

	// поздний апдейт закрытого бара в пределах skewScan
	res, err := buf.Reconcile(mkBar(60_100, 99))
	require.NoError(t, err)
	assert.Equal(t, Replaced, res)
	assert.Equal(t, 4, buf.Len())

	bars := buf.Bars()
	assert.Equal(t, 99.0, bars[1].Close)
	assert.Equal(t, int64(60_000), bars[1].OpenTime.UnixMilli())
}

func TestReconcileOutOfOrderKeepsSorted(t *testing.T) {
	buf := NewBuffer(key1m(), WithSkewScan(0))
	for _, ms := range []int64{120_000, 180_000} {
		_, err := buf.Reconcile(mkBar(ms, 100))
		require.NoError(t, err)
	}

	res, err := buf.Reconcile(mkBar(0, 95))
	require.NoError(t, err)
	require.Equal(t, Appended, res)

	bars := buf.Bars()
	require.Len(t, bars, 3)
	assert.Equal(t, int64(0), bars[0].OpenTime.UnixMilli())
	assert.Equal(t, int64(180_000), bars[2].OpenTime.UnixMilli())
}

func TestReconcileRejectsInvalidBar(t *testing.T) {
	buf := NewBuffer(key1m())
	_, err := buf.Reconcile(mkBar(0, 100))
	require.NoError(t, err)

	bad := mkBar(60_000, 100)
	bad.High = 90 // high ниже open/close

	res, err := buf.Reconcile(bad)
	assert.ErrorIs(t, err, models.ErrInvalidBar)
	assert.Equal(t, Rejected, res)
	assert.Equal(t, 1, buf.Len())
}

func TestFillReplacesWholesale(t *testing.T) {
	buf := NewBuffer(key1m(), WithCap(5))
	_, err := buf.Reconcile(mkBar(0, 100))
	require.NoError(t, err)

	bad := mkBar(60_000, 100)
	bad.Low = 200 // low выше open/close

	n := buf.Fill([]models.Bar{mkBar(180_000, 1), bad, mkBar(120_000, 2)})
	assert.Equal(t, 2, n)

	vp, ok := buf.FullRange()
	require.True(t, ok)
	assert.Equal(t, int64(120_000), vp.Min.UnixMilli())
	assert.Equal(t, int64(180_000), vp.Max.UnixMilli())
}
