package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"

	"chart_client/internal/camera"
	"chart_client/internal/models"
	"chart_client/internal/series"
	"chart_client/internal/tide"
)

// Оффлайн-прогон приливного алгоритма: yaml-фикстура с барами
// прогоняется через буфер + камеру, вьюпорт печатается на каждый тик.
// Удобно смотреть поведение камеры без живого стрима.

type fixtureBar struct {
	OpenTime int64   `yaml:"open_time"` // unix ms
	Open     float64 `yaml:"open"`
	High     float64 `yaml:"high"`
	Low      float64 `yaml:"low"`
	Close    float64 `yaml:"close"`
	Volume   float64 `yaml:"volume"`
}

func (f fixtureBar) bar() models.Bar {
	return models.Bar{
		OpenTime: time.UnixMilli(f.OpenTime),
		Open:     f.Open,
		High:     f.High,
		Low:      f.Low,
		Close:    f.Close,
		Volume:   f.Volume,
	}
}

func main() {
	viper.SetConfigName(".replay")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	if err := viper.ReadInConfig(); err != nil {
		panic(fmt.Errorf("fatal error config file: %w", err))
	}

	source := viper.GetString("source")
	if source == "" {
		panic("has no source in config")
	}
	key := models.SubKey{
		Symbol:   viper.GetString("symbol"),
		Interval: viper.GetString("interval"),
	}
	backfillN := viper.GetInt("backfill")
	lockAfter := viper.GetInt("lock_after") // 0 = без лока
	margin := viper.GetDuration("margin")

	raw, err := os.ReadFile(source)
	if err != nil {
		panic(fmt.Errorf("read fixture: %w", err))
	}
	var fixture []fixtureBar
	if err := yaml.Unmarshal(raw, &fixture); err != nil {
		panic(fmt.Errorf("decode fixture: %w", err))
	}
	if backfillN > len(fixture) {
		backfillN = len(fixture)
	}

	buf := series.NewBuffer(key)
	cam := camera.New()

	// бэкфилл
	bars := make([]models.Bar, 0, backfillN)
	for _, f := range fixture[:backfillN] {
		bars = append(bars, f.bar())
	}
	buf.Fill(bars)
	if vp, ok := buf.FullRange(); ok {
		cam.ApplyBackfill(vp)
		fmt.Printf("backfill %d bars, viewport %s\n", buf.Len(), vp)
	}

	// стрим
	for i, f := range fixture[backfillN:] {
		if _, err := buf.Reconcile(f.bar()); err != nil {
			fmt.Printf("#%d rejected: %v\n", i, err)
			continue
		}
		if cam.Mode() == camera.ModeFirstLoad {
			cam.StartFollowing()
		}
		if lockAfter > 0 && i == lockAfter {
			cam.Lock()
			fmt.Printf("#%d camera locked\n", i)
		}

		first, _ := buf.First()
		last, _ := buf.Last()
		next := tide.Next(tide.Input{
			Prev:   cam.Viewport(),
			Mode:   cam.Mode(),
			First:  first.OpenTime,
			Newest: last.OpenTime,
			Fresh:  cam.FreshFollow(),
			Margin: margin,
		})
		if cam.Mode() == camera.ModeAutoFollow {
			cam.ApplyTide(next)
		}
		fmt.Printf("#%d %s close=%.4f viewport %s\n", i, cam.Mode(), f.Close, cam.Viewport())
	}
	fmt.Println("done")
}
