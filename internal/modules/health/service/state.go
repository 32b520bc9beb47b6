package service

import (
	"sync"
	"sync/atomic"
	"time"
)

// State — здоровье бота + глобальный сигнал остановки.
// Сигнал кооперативный: его проверяют между шагами, in-flight RPC
// не прерываются.
type State struct {
	ready     atomic.Bool
	startedAt time.Time

	dexUp         atomic.Bool
	cexUp         atomic.Bool
	lastCycleUnix atomic.Int64 // unix seconds

	shutdown     chan struct{}
	shutdownOnce sync.Once
}

func NewState() *State {
	s := &State{
		startedAt: time.Now(),
		shutdown:  make(chan struct{}),
	}
	s.ready.Store(false)
	return s
}

func (s *State) SetReady(v bool) { s.ready.Store(v) }
func (s *State) Ready() bool     { return s.ready.Load() }

func (s *State) SetDexUp(v bool) { s.dexUp.Store(v) }
func (s *State) DexUp() bool     { return s.dexUp.Load() }

func (s *State) SetCexUp(v bool) { s.cexUp.Store(v) }
func (s *State) CexUp() bool     { return s.cexUp.Load() }

func (s *State) TouchCycle(t time.Time) { s.lastCycleUnix.Store(t.Unix()) }
func (s *State) LastCycle() time.Time {
	u := s.lastCycleUnix.Load()
	if u == 0 {
		return time.Time{}
	}
	return time.Unix(u, 0)
}

// RequestShutdown — взводим сигнал; повторные вызовы — no-op.
func (s *State) RequestShutdown() {
	s.shutdownOnce.Do(func() { close(s.shutdown) })
}

// Shutdown — канал закрывается при запросе остановки.
func (s *State) Shutdown() <-chan struct{} { return s.shutdown }

func (s *State) ShutdownRequested() bool {
	select {
	case <-s.shutdown:
		return true
	default:
		return false
	}
}

func (s *State) Uptime() time.Duration { return time.Since(s.startedAt) }
