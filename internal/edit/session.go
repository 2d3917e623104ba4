// Package edit implements the vertex and midpoint editor used to author
// point, polyline and polygon shapes from screen taps.
//
// A Session is driven from a single UI goroutine and does no locking.
// Every method is safe to call in any state: requests that do not make sense
// (an out of range selection, a delete on an empty shape) are ignored rather
// than reported, since each call originates from user input.
package edit

import (
	"mapedit/internal/debug"

	"github.com/pkg/errors"
)

// Session tracks one shape being edited
type Session struct {
	mode      Mode
	current   Snapshot
	history   []Snapshot
	midpoints []Point
	tolerance float64
}

// Option configures a Session
type Option func(*Session)

// WithTolerance sets the hit-test radius in screen units
func WithTolerance(tolerance float64) Option {
	return func(s *Session) {
		if tolerance > 0 {
			s.tolerance = tolerance
		}
	}
}

// NewSession creates an idle session
func NewSession(opts ...Option) *Session {
	s := &Session{
		mode:      ModeNone,
		current:   emptySnapshot(),
		tolerance: DefaultTolerance,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Begin starts a fresh shape in the given mode
func (s *Session) Begin(mode Mode) error {
	if !mode.Editable() {
		return errors.Wrapf(ErrInvalidMode, "cannot begin editing in %s mode", mode)
	}

	s.mode = mode
	s.reset()
	debug.Log("edit session started in %s mode", mode)
	return nil
}

// Discard drops the shape and history and returns to ModeNone
func (s *Session) Discard() {
	s.mode = ModeNone
	s.reset()
}

// MarkSaving freezes the session while its geometry is being persisted
func (s *Session) MarkSaving() {
	if s.mode.Editable() {
		s.mode = ModeSaving
	}
}

func (s *Session) reset() {
	s.current = emptySnapshot()
	s.history = nil
	s.midpoints = nil
}

// HandleTap applies a tap at screen position (x, y).
// A tap either moves the selected handle, selects the handle under it, or
// appends a new vertex.
func (s *Session) HandleTap(x, y float64, proj Projector) {
	if !s.mode.Editable() || proj == nil {
		return
	}

	point := proj.ToMap(x, y)

	// A point shape holds exactly one vertex; every tap replaces it
	if s.mode == ModePoint {
		s.current = emptySnapshot()
		s.refresh()
	}

	if s.current.selection.Active() {
		s.move(point)
		return
	}

	// Midpoints take priority over vertices
	if idx := HitTest(x, y, s.midpoints, proj, s.tolerance); idx != -1 {
		s.current = s.current.withSelection(Selection{Kind: SelectMidpoint, Index: idx})
		return
	}

	if idx := HitTest(x, y, s.current.vertices, proj, s.tolerance); idx != -1 {
		s.current = s.current.withSelection(Selection{Kind: SelectVertex, Index: idx})
		return
	}

	s.commit(s.current.appended(point))
}

// move relocates the selected vertex, or promotes the selected midpoint to a
// vertex placed after the segment's first endpoint
func (s *Session) move(point Point) {
	sel := s.current.selection
	n := s.current.Len()

	switch {
	case sel.IsMidpoint() && sel.Index >= 0 && sel.Index < len(s.midpoints):
		s.commit(s.current.inserted(min(sel.Index+1, n), point))
	case sel.IsVertex() && sel.Index >= 0 && sel.Index < n:
		s.commit(s.current.replaced(sel.Index, point))
	default:
		debug.Warn("dropping stale selection %+v with %d vertices", sel, n)
		s.current = s.current.withSelection(NoSelection)
	}
}

// DeleteSelectedOrLast removes the selected vertex, or the last vertex when
// nothing is selected
func (s *Session) DeleteSelectedOrLast() {
	if !s.mode.Editable() || s.current.Len() == 0 {
		return
	}

	sel := s.current.selection
	switch {
	case sel.IsMidpoint():
		return
	case sel.IsVertex() && sel.Index >= 0 && sel.Index < s.current.Len():
		s.commit(s.current.removed(sel.Index))
	default:
		s.commit(s.current.removed(s.current.Len() - 1))
	}
}

// Undo restores the state before the most recent mutation
func (s *Session) Undo() {
	if len(s.history) == 0 {
		return
	}

	s.history = s.history[:len(s.history)-1]
	if len(s.history) == 0 {
		s.current = emptySnapshot()
	} else {
		s.current = s.history[len(s.history)-1]
	}
	s.refresh()
}

// commit makes next the current state and records it for undo
func (s *Session) commit(next Snapshot) {
	s.current = next
	s.history = append(s.history, next)
	s.refresh()
}

func (s *Session) refresh() {
	s.midpoints = DeriveMidpoints(s.current.vertices, s.mode)
}

// IsSaveValid returns true if the shape has enough vertices for its mode
func (s *Session) IsSaveValid() bool {
	if !s.mode.Editable() {
		return false
	}
	return s.current.Len() >= s.mode.MinVertices()
}

// CanDelete returns true if a delete would change the shape
func (s *Session) CanDelete() bool {
	return s.mode.Editable() &&
		s.mode != ModePoint &&
		s.current.Len() > 0 &&
		!s.current.selection.IsMidpoint()
}

// CanUndo returns true if there is history to step back through
func (s *Session) CanUndo() bool {
	return len(s.history) > 0
}

// Mode returns the session's edit mode
func (s *Session) Mode() Mode {
	return s.mode
}

// Vertices returns a copy of the current vertex list
func (s *Session) Vertices() []Point {
	return s.current.Vertices()
}

// VertexCount returns the number of vertices
func (s *Session) VertexCount() int {
	return s.current.Len()
}

// Midpoints returns a copy of the derived midpoint handles
func (s *Session) Midpoints() []Point {
	out := make([]Point, len(s.midpoints))
	copy(out, s.midpoints)
	return out
}

// Selection returns the current selection
func (s *Session) Selection() Selection {
	return s.current.selection
}

// HistoryLen returns the number of undoable steps
func (s *Session) HistoryLen() int {
	return len(s.history)
}

// Snapshot returns the current state
func (s *Session) Snapshot() Snapshot {
	return s.current
}
