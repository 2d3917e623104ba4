package edit

// Mode is the kind of geometry being authored in a session
type Mode int

const (
	ModeNone Mode = iota
	ModePoint
	ModePolyline
	ModePolygon
	ModeSaving
)

// String returns a string representation of the mode
func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "None"
	case ModePoint:
		return "Point"
	case ModePolyline:
		return "Polyline"
	case ModePolygon:
		return "Polygon"
	case ModeSaving:
		return "Saving"
	default:
		return "Unknown"
	}
}

// modeRule holds the per-mode editing constraints
type modeRule struct {
	minVertices int  // Smallest vertex count that can be saved
	closed      bool // Last vertex connects back to the first
	editable    bool // Taps and deletes are accepted
}

var modeRules = map[Mode]modeRule{
	ModeNone:     {},
	ModePoint:    {minVertices: 1, editable: true},
	ModePolyline: {minVertices: 2, editable: true},
	ModePolygon:  {minVertices: 3, closed: true, editable: true},
	ModeSaving:   {},
}

func (m Mode) rule() modeRule {
	return modeRules[m]
}

// Editable returns true if vertices can be added in this mode
func (m Mode) Editable() bool {
	return m.rule().editable
}

// Closed returns true if the shape wraps from the last vertex to the first
func (m Mode) Closed() bool {
	return m.rule().closed
}

// MinVertices returns the vertex count needed to save, or 0 for modes that never save
func (m Mode) MinVertices() int {
	return m.rule().minVertices
}
