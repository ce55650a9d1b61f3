// Package tape implements the unbounded two-way tape of a Turing machine.
//
// The tape is materialized lazily as a buffer of blank cells. Moving the head past
// either end grows the buffer by a fixed increment, so growth is batched over many
// single-cell moves instead of reallocating per cell.
package tape

import (
	"fmt"
	"strings"
)

const (
	// Blank fills every cell that was never written.
	Blank = '_'

	// InitialSize is the number of cells allocated by New.
	InitialSize = 4

	// GrowthIncrement is the number of blank cells added when the head crosses an end.
	GrowthIncrement = 5
)

// Tape is a growable sequence of symbols with a single read/write head.
// It is not safe for concurrent use.
type Tape struct {
	data []rune
	head int
}

// New returns a blank tape of InitialSize cells with the head on the first one.
func New() *Tape {
	t := &Tape{data: make([]rune, InitialSize)}
	fill(t.data)
	return t
}

// InitializeWith replaces the whole buffer with the symbols of text and moves the head
// to the first of them. No blank padding is added; the tape grows on demand.
// An empty text leaves a single blank cell so the head always has a cell to read.
func (t *Tape) InitializeWith(text string) {
	t.data = []rune(text)
	if len(t.data) == 0 {
		t.data = []rune{Blank}
	}
	t.head = 0
}

// Read returns the symbol under the head.
func (t *Tape) Read() rune {
	return t.data[t.head]
}

// Write sets the symbol under the head.
func (t *Tape) Write(symbol rune) {
	t.data[t.head] = symbol
}

// MoveRight advances the head one cell, growing the buffer on the right when the head
// sits on the last cell. It reports whether the buffer grew.
func (t *Tape) MoveRight() bool {
	grew := false
	if t.head >= len(t.data)-1 {
		grown := make([]rune, len(t.data)+GrowthIncrement)
		copy(grown, t.data)
		fill(grown[len(t.data):])
		t.data = grown
		grew = true
	}
	t.head++
	return grew
}

// MoveLeft retreats the head one cell, growing the buffer on the left when the head
// sits on the first cell. It reports whether the buffer grew.
func (t *Tape) MoveLeft() bool {
	grew := false
	if t.head == 0 {
		grown := make([]rune, len(t.data)+GrowthIncrement)
		fill(grown[:GrowthIncrement])
		copy(grown[GrowthIncrement:], t.data)
		t.data = grown
		// Left growth only happens at index 0, so the old first cell lands here.
		t.head = GrowthIncrement
		grew = true
	}
	t.head--
	return grew
}

// Move applies a relative motion: negative moves left, positive moves right, zero is a no-op.
func (t *Tape) Move(delta int) bool {
	switch {
	case delta < 0:
		return t.MoveLeft()
	case delta > 0:
		return t.MoveRight()
	default:
		return false
	}
}

// Window returns left symbols strictly left of the head followed by right symbols
// starting at the head. Positions that are not materialized read as Blank; the padding
// goes on the outer edges. The tape is never grown or modified.
func (t *Tape) Window(left, right int) string {
	if left < 0 || right < 0 {
		panic(fmt.Sprintf("tape: negative window (%d, %d)", left, right))
	}

	var b strings.Builder
	b.Grow(left + right)

	if left > t.head {
		b.WriteString(strings.Repeat(string(Blank), left-t.head))
		b.WriteString(string(t.data[:t.head]))
	} else {
		b.WriteString(string(t.data[t.head-left : t.head]))
	}

	available := len(t.data) - t.head
	if right > available {
		b.WriteString(string(t.data[t.head:]))
		b.WriteString(strings.Repeat(string(Blank), right-available))
	} else {
		b.WriteString(string(t.data[t.head : t.head+right]))
	}

	return b.String()
}

// Head returns the index of the head within the materialized cells.
func (t *Tape) Head() int {
	return t.head
}

// Len returns the number of materialized cells.
func (t *Tape) Len() int {
	return len(t.data)
}

// String returns the materialized cells.
func (t *Tape) String() string {
	return string(t.data)
}

// Restore rebuilds a tape from materialized cells and a head index, as captured by
// String and Head.
func Restore(cells string, head int) (*Tape, error) {
	data := []rune(cells)
	if len(data) == 0 {
		data = []rune{Blank}
	}
	if head < 0 || head >= len(data) {
		return nil, fmt.Errorf("tape: head %d out of range [0, %d)", head, len(data))
	}
	return &Tape{data: data, head: head}, nil
}

func fill(cells []rune) {
	for i := range cells {
		cells[i] = Blank
	}
}
