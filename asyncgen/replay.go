package asyncgen

import (
	"context"
	"io" // Next signals exhaustion with io.EOF
	"sort"
	"sync"
)

// Recorder is an in-memory Sink. It keeps every reading it is given so a run
// can be inspected, archived or replayed later.
type Recorder struct {
	mu       sync.Mutex
	readings []Reading
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Connect() error { return nil }

func (r *Recorder) Disconnect() {}

func (r *Recorder) Publish(ctx context.Context, reading Reading) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.readings = append(r.readings, reading)
	return true, nil
}

// Readings returns a copy of everything recorded, ordered by run and position.
func (r *Recorder) Readings() []Reading {
	r.mu.Lock()
	out := make([]Reading, len(r.readings))
	copy(out, r.readings)
	r.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Run != out[j].Run {
			return out[i].Run < out[j].Run
		}
		return out[i].Position < out[j].Position
	})
	return out
}

// Replay hands back previously recorded readings in order.
type Replay struct {
	readings []Reading
	index    int
	mu       sync.Mutex
}

// NewReplay creates a replay over readings. The slice is not copied.
func NewReplay(readings []Reading) *Replay {
	return &Replay{
		readings: readings,
		index:    0,
	}
}

// Next returns the next recorded reading, or io.EOF once all have been
// returned.
func (r *Replay) Next() (Reading, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.index >= len(r.readings) {
		return Reading{}, io.EOF
	}
	reading := r.readings[r.index]
	r.index++
	return reading, nil
}

// Remaining reports how many readings Next has yet to return.
func (r *Replay) Remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.readings) - r.index
}
