// Package progress tracks per-question interview markers.
package progress

import "fmt"

// Marker is the lifecycle state of one question slot.
type Marker int

const (
	MarkerPending Marker = iota
	MarkerActive
	MarkerCompleted
	MarkerSkipped
)

// String returns the marker name used in logs and status output.
func (m Marker) String() string {
	switch m {
	case MarkerPending:
		return "pending"
	case MarkerActive:
		return "active"
	case MarkerCompleted:
		return "completed"
	case MarkerSkipped:
		return "skipped"
	default:
		return fmt.Sprintf("marker(%d)", int(m))
	}
}

// terminal markers never regress.
func (m Marker) terminal() bool {
	return m == MarkerCompleted || m == MarkerSkipped
}

// Board holds one marker per question. At most one slot is active at a
// time and terminal slots are immutable.
type Board struct {
	markers []Marker
}

// NewBoard creates a board of total pending slots.
func NewBoard(total int) *Board {
	if total < 0 {
		total = 0
	}
	return &Board{markers: make([]Marker, total)}
}

// Size returns the slot count.
func (b *Board) Size() int {
	return len(b.markers)
}

// Activate marks index active, demoting any previous active slot back to
// pending. Terminal slots are left untouched.
func (b *Board) Activate(index int) error {
	if err := b.check(index); err != nil {
		return err
	}
	if b.markers[index].terminal() {
		return fmt.Errorf("question %d already %s", index, b.markers[index])
	}
	for i, m := range b.markers {
		if m == MarkerActive && i != index {
			b.markers[i] = MarkerPending
		}
	}
	b.markers[index] = MarkerActive
	return nil
}

// Complete marks index completed.
func (b *Board) Complete(index int) error {
	return b.finish(index, MarkerCompleted)
}

// Skip marks index skipped.
func (b *Board) Skip(index int) error {
	return b.finish(index, MarkerSkipped)
}

func (b *Board) finish(index int, marker Marker) error {
	if err := b.check(index); err != nil {
		return err
	}
	if current := b.markers[index]; current.terminal() && current != marker {
		return fmt.Errorf("question %d already %s", index, current)
	}
	b.markers[index] = marker
	return nil
}

func (b *Board) check(index int) error {
	if index < 0 || index >= len(b.markers) {
		return fmt.Errorf("question index %d out of range [0,%d)", index, len(b.markers))
	}
	return nil
}

// Marker returns the marker at index, or pending when out of range.
func (b *Board) Marker(index int) Marker {
	if index < 0 || index >= len(b.markers) {
		return MarkerPending
	}
	return b.markers[index]
}

// Markers returns a copy of all slots in order.
func (b *Board) Markers() []Marker {
	out := make([]Marker, len(b.markers))
	copy(out, b.markers)
	return out
}

// Counts summarizes the board for session results.
func (b *Board) Counts() (completed, skipped, pending int) {
	for _, m := range b.markers {
		switch m {
		case MarkerCompleted:
			completed++
		case MarkerSkipped:
			skipped++
		default:
			pending++
		}
	}
	return completed, skipped, pending
}
