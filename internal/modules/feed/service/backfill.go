package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"

	"chart_client/internal/models"
)

// LoadHistoricalBars — одноразовый бэкфилл: упорядоченная история по ключу.
// Ошибка уходит вызывающему как есть, никаких авторетраев.
func (c *Client) LoadHistoricalBars(ctx context.Context, key models.SubKey, limit int) ([]models.Bar, error) {
	q := url.Values{}
	q.Set("symbol", key.Symbol)
	q.Set("interval", key.Interval)
	q.Set("limit", fmt.Sprintf("%d", limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.cfg.Feed.RestURL+"/bars?"+q.Encode(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "build backfill request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "backfill %s", key)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("backfill %s: status %d", key, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read backfill body")
	}

	var frames []wsFrame
	if err := sonic.Unmarshal(body, &frames); err != nil {
		return nil, errors.Wrapf(err, "decode backfill %s", key)
	}

	bars := make([]models.Bar, 0, len(frames))
	for _, f := range frames {
		upd, ok := f.toBarUpdate()
		if !ok || upd.Bar.Validate() != nil {
			continue
		}
		bars = append(bars, upd.Bar)
	}
	sort.Slice(bars, func(i, j int) bool {
		return bars[i].OpenTime.Before(bars[j].OpenTime)
	})
	return bars, nil
}
