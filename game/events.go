package game

import (
	"fmt"

	"github.com/ghthor/polyis/polyomino"
)

// Event is a notification raised by a Session. Drain them with
// Session.Events.
type Event interface {
	fmt.Stringer
	event()
}

type Moved struct{ Direction Direction }

type Rotated struct {
	Clockwise bool
	// Kicked is set when the rotation only fit after a displacement.
	Kicked bool
}

// Held is raised when the piece with ID was moved into the hold slot.
type Held struct{ ID polyomino.ID }

// Placed is raised when a piece locks without clearing a row.
type Placed struct{}

type LinesCleared struct {
	Count     int
	Difficult bool
	Combo     int
	Points    uint64
}

type GameOver struct {
	Score uint64
	Lines int
	Level int
}

func (Moved) event()        {}
func (Rotated) event()      {}
func (Held) event()         {}
func (Placed) event()       {}
func (LinesCleared) event() {}
func (GameOver) event()     {}

func (e Moved) String() string { return "moved " + e.Direction.String() }
func (e Rotated) String() string {
	s := "rotated ccw"
	if e.Clockwise {
		s = "rotated cw"
	}
	if e.Kicked {
		s += " (kicked)"
	}
	return s
}
func (e Held) String() string { return fmt.Sprintf("held %d", e.ID) }
func (Placed) String() string { return "placed" }
func (e LinesCleared) String() string {
	return fmt.Sprintf("cleared %d lines for %d points", e.Count, e.Points)
}
func (e GameOver) String() string { return fmt.Sprintf("game over with %d points", e.Score) }

// eventLog is a fixed size ring of events. When full the oldest event is
// overwritten. It has no concurrency support.
type eventLog struct {
	data  []Event
	size  int
	count int
	write int
}

func newEventLog(size int) *eventLog {
	return &eventLog{data: make([]Event, size), size: size}
}

func (r *eventLog) push(e Event) {
	r.data[r.write] = e
	r.write = (r.write + 1) % r.size
	r.count = min(r.count+1, r.size)
}

// drain returns the buffered events oldest to newest and empties the log.
func (r *eventLog) drain() []Event {
	if r.count == 0 {
		return nil
	}
	res := make([]Event, r.count)
	start := (r.write - r.count + r.size) % r.size
	for i := range res {
		idx := (start + i) % r.size
		res[i] = r.data[idx]
		r.data[idx] = nil
	}
	r.count = 0
	return res
}
