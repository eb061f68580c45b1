package models

import "time"

// BarUpdate — один инкрементальный апдейт из стрима.
// IsFinal=false: бакет ещё формируется, бар будет заменён на месте.
type BarUpdate struct {
	Key     SubKey
	Bar     Bar
	IsFinal bool
}

type FeedEventType string

const (
	FeedConnected    FeedEventType = "connected"
	FeedDisconnected FeedEventType = "disconnected"
	FeedSubscribed   FeedEventType = "subscribed"
	FeedError        FeedEventType = "error"
	// FeedMaxReconnect — терминальное событие: ретраи исчерпаны,
	// дальше только polling-фолбэк или ручной рестарт.
	FeedMaxReconnect FeedEventType = "maxReconnectAttemptsReached"
)

type FeedEvent struct {
	Type FeedEventType
	Key  SubKey // заполнен для subscribed
	Err  error  // заполнен для error
	At   time.Time
}

// CameraChange — наружу для UI: режим поменялся и/или вьюпорт.
type CameraChange struct {
	Mode     string
	Viewport Viewport
	At       time.Time
}
