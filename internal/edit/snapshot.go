package edit

// Point is a map coordinate. X is longitude and Y is latitude.
type Point struct {
	X float64
	Y float64
}

// Midpoint returns the point halfway between p and q
func (p Point) Midpoint(q Point) Point {
	return Point{X: (p.X + q.X) / 2, Y: (p.Y + q.Y) / 2}
}

// SelectionKind tags what a selection refers to
type SelectionKind int

const (
	SelectNone SelectionKind = iota
	SelectVertex
	SelectMidpoint
)

// Selection is the handle waiting for a move tap. Index points into the
// vertex list for SelectVertex and into the midpoint list for SelectMidpoint.
type Selection struct {
	Kind  SelectionKind
	Index int
}

// NoSelection is the empty selection
var NoSelection = Selection{Kind: SelectNone, Index: -1}

// IsVertex returns true if a vertex is selected
func (s Selection) IsVertex() bool {
	return s.Kind == SelectVertex
}

// IsMidpoint returns true if a midpoint is selected
func (s Selection) IsMidpoint() bool {
	return s.Kind == SelectMidpoint
}

// Active returns true if anything is selected
func (s Selection) Active() bool {
	return s.Kind != SelectNone
}

// Snapshot is an immutable record of the vertex list and selection.
// Every mutation builds a new Snapshot; the backing slice is never shared
// with callers.
type Snapshot struct {
	vertices  []Point
	selection Selection
}

// emptySnapshot is the state a session starts from
func emptySnapshot() Snapshot {
	return Snapshot{selection: NoSelection}
}

// Vertices returns a copy of the vertex list
func (s Snapshot) Vertices() []Point {
	out := make([]Point, len(s.vertices))
	copy(out, s.vertices)
	return out
}

// Len returns the number of vertices
func (s Snapshot) Len() int {
	return len(s.vertices)
}

// Selection returns the selection held by the snapshot
func (s Snapshot) Selection() Selection {
	return s.selection
}

func (s Snapshot) withSelection(sel Selection) Snapshot {
	return Snapshot{vertices: s.vertices, selection: sel}
}

func (s Snapshot) appended(p Point) Snapshot {
	v := make([]Point, 0, len(s.vertices)+1)
	v = append(v, s.vertices...)
	v = append(v, p)
	return Snapshot{vertices: v, selection: NoSelection}
}

func (s Snapshot) inserted(index int, p Point) Snapshot {
	v := make([]Point, 0, len(s.vertices)+1)
	v = append(v, s.vertices[:index]...)
	v = append(v, p)
	v = append(v, s.vertices[index:]...)
	return Snapshot{vertices: v, selection: NoSelection}
}

func (s Snapshot) replaced(index int, p Point) Snapshot {
	v := s.Vertices()
	v[index] = p
	return Snapshot{vertices: v, selection: NoSelection}
}

func (s Snapshot) removed(index int) Snapshot {
	v := make([]Point, 0, len(s.vertices)-1)
	v = append(v, s.vertices[:index]...)
	v = append(v, s.vertices[index+1:]...)
	return Snapshot{vertices: v, selection: NoSelection}
}
