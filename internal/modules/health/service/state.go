package service

import (
	"sync/atomic"
	"time"
)

type State struct {
	ready     atomic.Bool
	startedAt time.Time

	wsConnected atomic.Bool
	polling     atomic.Bool
	lastBarUnix atomic.Int64 // unix seconds
	cameraMode  atomic.Value // string
}

func NewState() *State {
	s := &State{startedAt: time.Now()}
	s.ready.Store(false)
	s.cameraMode.Store("FIRST_LOAD")
	return s
}

func (s *State) SetReady(v bool) { s.ready.Store(v) }
func (s *State) Ready() bool     { return s.ready.Load() }

func (s *State) SetWSConnected(v bool) { s.wsConnected.Store(v) }
func (s *State) WSConnected() bool     { return s.wsConnected.Load() }

func (s *State) SetPolling(v bool) { s.polling.Store(v) }
func (s *State) Polling() bool     { return s.polling.Load() }

func (s *State) TouchBar(t time.Time) { s.lastBarUnix.Store(t.Unix()) }
func (s *State) LastBar() time.Time {
	u := s.lastBarUnix.Load()
	if u == 0 {
		return time.Time{}
	}
	return time.Unix(u, 0)
}

func (s *State) SetCameraMode(m string) { s.cameraMode.Store(m) }
func (s *State) CameraMode() string     { return s.cameraMode.Load().(string) }

func (s *State) Uptime() time.Duration { return time.Since(s.startedAt) }
