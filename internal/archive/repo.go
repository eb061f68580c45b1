package archive

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"chart_client/internal/models"
	"chart_client/pkg/db"
)

// Repo — архив закрытых баров. Нужен как офлайн-фолбэк для бэкфилла,
// когда REST провайдера недоступен.
type Repo struct {
	db *db.PgTxManager
}

func NewRepo(tm *db.PgTxManager) *Repo {
	return &Repo{db: tm}
}

const upsertBarSQL = `
INSERT INTO bars (symbol, interval, open_time, open, high, low, close, volume)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (symbol, interval, open_time)
DO UPDATE SET open = EXCLUDED.open, high = EXCLUDED.high,
              low = EXCLUDED.low, close = EXCLUDED.close,
              volume = EXCLUDED.volume`

// SaveBar — идемпотентный upsert по (symbol, interval, open_time).
func (r *Repo) SaveBar(ctx context.Context, key models.SubKey, bar models.Bar) error {
	err := r.db.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctxTx, upsertBarSQL,
			key.Symbol, key.Interval, bar.OpenTime.UnixMilli(),
			bar.Open, bar.High, bar.Low, bar.Close, bar.Volume,
		)
		return err
	})
	return errors.Wrapf(err, "archive.SaveBar %s", key)
}

const recentBarsSQL = `
SELECT open_time, open, high, low, close, volume
FROM bars
WHERE symbol = $1 AND interval = $2
ORDER BY open_time DESC
LIMIT $3`

// RecentBars — последние limit баров по ключу, oldest -> newest.
func (r *Repo) RecentBars(ctx context.Context, key models.SubKey, limit int) ([]models.Bar, error) {
	var bars []models.Bar
	err := r.db.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		rows, err := tx.Query(ctxTx, recentBarsSQL, key.Symbol, key.Interval, limit)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var (
				ms  int64
				bar models.Bar
			)
			if err := rows.Scan(&ms, &bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume); err != nil {
				return err
			}
			bar.OpenTime = time.UnixMilli(ms)
			bars = append(bars, bar)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, errors.Wrapf(err, "archive.RecentBars %s", key)
	}

	// запрос отдаёт newest-first, разворачиваем
	for i, j := 0, len(bars)-1; i < j; i, j = i+1, j-1 {
		bars[i], bars[j] = bars[j], bars[i]
	}
	return bars, nil
}
