package asyncgen_test

import (
	"context"
	"sync"
	"time"

	"github.com/illmade-knight/go-async/asyncgen"
	"github.com/stretchr/testify/mock"
)

// --- Fakes ---

// instantSleeper returns immediately and records every requested wait.
type instantSleeper struct {
	mu    sync.Mutex
	waits []time.Duration
	// events is shared with countingRandom so ordering can be asserted.
	events *[]string
}

func (s *instantSleeper) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.waits = append(s.waits, d)
	if s.events != nil {
		*s.events = append(*s.events, "sleep")
	}
	return nil
}

func (s *instantSleeper) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.waits)
}

// countingRandom returns a fixed unit value and counts draws.
type countingRandom struct {
	mu     sync.Mutex
	value  float64
	draws  int
	events *[]string
}

func (r *countingRandom) next() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.draws++
	if r.events != nil {
		*r.events = append(*r.events, "draw")
	}
	return r.value
}

func (r *countingRandom) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.draws
}

// --- Mocks ---

// MockSink is a mock implementation of the Sink interface.
type MockSink struct {
	mock.Mock
}

func (m *MockSink) Connect() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockSink) Disconnect() {
	m.Called()
}

func (m *MockSink) Publish(ctx context.Context, reading asyncgen.Reading) (bool, error) {
	args := m.Called(ctx, reading)
	return args.Bool(0), args.Error(1)
}
