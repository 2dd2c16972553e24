package poller

import (
	"errors"
	"sync"
	"time"

	"github.com/bft-labs/apicaller/pkg/log"
)

// Lifecycle errors.
var (
	ErrNotRunning      = errors.New("apicaller: poller not running")
	ErrAlreadyRunning  = errors.New("apicaller: poller already running")
	ErrShutdownTimeout = errors.New("apicaller: poller shutdown timeout")
)

// ShutdownTimeout bounds how long Stop waits for the polling loop.
const ShutdownTimeout = 30 * time.Second

// State is the lifecycle state of a Poller.
type State int

const (
	StateStopped State = iota
	StateStarting
	StateRunning
	StateStopping
	StateCrashed
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "Stopped"
	case StateStarting:
		return "Starting"
	case StateRunning:
		return "Running"
	case StateStopping:
		return "Stopping"
	case StateCrashed:
		return "Crashed"
	default:
		return "Unknown"
	}
}

// transitions lists the states reachable from each state.
var transitions = map[State][]State{
	StateStopped:  {StateStarting},
	StateStarting: {StateRunning, StateCrashed},
	StateRunning:  {StateStopping, StateCrashed},
	StateStopping: {StateStopped, StateCrashed},
	StateCrashed:  {StateStarting, StateStopping},
}

// machine guards the lifecycle state and tracks the polling goroutine.
type machine struct {
	mu      sync.RWMutex
	state   State
	wg      sync.WaitGroup
	logger  log.Logger
	onEvent func(StateChangeEvent)
}

func (m *machine) current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

func (m *machine) transition(next State, reason string) error {
	m.mu.Lock()
	prev := m.state
	allowed := false
	for _, s := range transitions[prev] {
		if s == next {
			allowed = true
			break
		}
	}
	if !allowed {
		m.mu.Unlock()
		if prev == StateStopped || prev == StateCrashed {
			return ErrNotRunning
		}
		return ErrAlreadyRunning
	}
	m.state = next
	m.mu.Unlock()

	if m.onEvent != nil {
		m.onEvent(StateChangeEvent{Previous: prev, Current: next, Reason: reason})
	}
	m.logger.Info("state transition",
		log.String("from", prev.String()),
		log.String("to", next.String()),
		log.String("reason", reason))
	return nil
}

func (m *machine) canStart() bool {
	s := m.current()
	return s == StateStopped || s == StateCrashed
}

func (m *machine) canStop() bool {
	s := m.current()
	return s == StateStarting || s == StateRunning || s == StateCrashed
}

// wait blocks until the polling goroutine has returned or timeout expires.
func (m *machine) wait(timeout time.Duration) error {
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		m.logger.Warn("shutdown timeout, forcing exit", log.Duration("timeout", timeout))
		return ErrShutdownTimeout
	}
}
