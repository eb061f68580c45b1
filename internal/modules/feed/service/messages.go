package service

import (
	"strconv"
	"time"

	"github.com/bytedance/sonic"

	"chart_client/internal/helper"
	"chart_client/internal/models"
)

// wsRequest — управляющий кадр наружу.
// {"method":"SUBSCRIBE","params":["btcusdt@bar_1m"],"id":7}
type wsRequest struct {
	Method string   `json:"method"`
	Params []string `json:"params"`
	ID     int64    `json:"id"`
}

const (
	methodSubscribe   = "SUBSCRIBE"
	methodUnsubscribe = "UNSUBSCRIBE"
)

// wsFrame — входящий кадр: либо ack на наш запрос (ID != 0),
// либо апдейт бара. Цены провайдер шлёт строками.
type wsFrame struct {
	ID       int64  `json:"id"`
	Symbol   string `json:"symbol"`
	Interval string `json:"interval"`
	OpenTime int64  `json:"openTime"`
	Open     string `json:"open"`
	High     string `json:"high"`
	Low      string `json:"low"`
	Close    string `json:"close"`
	Volume   string `json:"volume"`
	IsFinal  bool   `json:"isFinal"`
}

func (f *wsFrame) isAck() bool { return f.ID != 0 && f.Symbol == "" }

// parseFrame декодирует кадр sonic-ом. Кривой кадр -> ok=false,
// соединение не трогаем.
func parseFrame(raw []byte) (wsFrame, bool) {
	var f wsFrame
	if err := sonic.Unmarshal(raw, &f); err != nil {
		return wsFrame{}, false
	}
	return f, true
}

// toBarUpdate превращает кадр в типизированный апдейт.
// Любое кривое поле — дроп всего кадра, следующий тик сам поправит.
func (f *wsFrame) toBarUpdate() (models.BarUpdate, bool) {
	if f.Symbol == "" || f.OpenTime <= 0 {
		return models.BarUpdate{}, false
	}
	open, err1 := strconv.ParseFloat(f.Open, 64)
	high, err2 := strconv.ParseFloat(f.High, 64)
	low, err3 := strconv.ParseFloat(f.Low, 64)
	closep, err4 := strconv.ParseFloat(f.Close, 64)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return models.BarUpdate{}, false
	}
	var vol float64
	if f.Volume != "" {
		vol, _ = strconv.ParseFloat(f.Volume, 64)
	}

	return models.BarUpdate{
		Key: models.SubKey{
			Symbol:   f.Symbol,
			Interval: helper.NormTF(f.Interval),
		},
		Bar: models.Bar{
			OpenTime: time.UnixMilli(f.OpenTime),
			Open:     open,
			High:     high,
			Low:      low,
			Close:    closep,
			Volume:   vol,
		},
		IsFinal: f.IsFinal,
	}, true
}
