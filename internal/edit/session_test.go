package edit

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
)

// scaleProjector maps map units to screen units by a constant factor
type scaleProjector struct {
	scale float64
}

func (p scaleProjector) ToMap(x, y float64) Point {
	return Point{X: x / p.scale, Y: y / p.scale}
}

func (p scaleProjector) ToScreen(pt Point) (float64, float64) {
	return pt.X * p.scale, pt.Y * p.scale
}

var identity = scaleProjector{scale: 1}

// tapAt taps the screen position of a map point
func tapAt(s *Session, proj scaleProjector, pt Point) {
	x, y := proj.ToScreen(pt)
	s.HandleTap(x, y, proj)
}

func newSession(t *testing.T, mode Mode, opts ...Option) *Session {
	s := NewSession(opts...)
	require.NoError(t, s.Begin(mode))
	return s
}

func TestBeginRejectsNonEditableModes(t *testing.T) {
	s := NewSession()
	for _, mode := range []Mode{ModeNone, ModeSaving, Mode(42)} {
		err := s.Begin(mode)
		require.ErrorIs(t, err, ErrInvalidMode)
	}
	require.Equal(t, ModeNone, s.Mode())
}

func TestBeginResetsState(t *testing.T) {
	s := newSession(t, ModePolyline, WithTolerance(1))
	tapAt(s, identity, Point{0, 0})
	tapAt(s, identity, Point{10, 10})
	require.Equal(t, 2, s.VertexCount())

	require.NoError(t, s.Begin(ModePolygon))
	require.Zero(t, s.VertexCount())
	require.Zero(t, s.HistoryLen())
	require.Empty(t, s.Midpoints())
	require.False(t, s.Selection().Active())
}

func TestTapFarAwayAppends(t *testing.T) {
	s := newSession(t, ModePolyline)
	s.HandleTap(100, 100, identity)
	s.HandleTap(200, 100, identity)

	require.Equal(t, []Point{{100, 100}, {200, 100}}, s.Vertices())
	require.Equal(t, 2, s.HistoryLen())
	require.False(t, s.Selection().Active())
}

func TestTapNearVertexSelectsIt(t *testing.T) {
	s := newSession(t, ModePolyline)
	s.HandleTap(100, 100, identity)

	s.HandleTap(103, 104, identity)

	require.Equal(t, Selection{Kind: SelectVertex, Index: 0}, s.Selection())
	require.Equal(t, 1, s.VertexCount())
	require.Equal(t, 1, s.HistoryLen(), "selecting is not an undoable step")
}

func TestToleranceIsStrict(t *testing.T) {
	s := newSession(t, ModePolyline)
	s.HandleTap(100, 100, identity)

	s.HandleTap(140, 100, identity)

	require.False(t, s.Selection().Active())
	require.Equal(t, 2, s.VertexCount())
}

func TestMoveSelectedVertex(t *testing.T) {
	s := newSession(t, ModePolygon)
	s.HandleTap(0, 0, identity)
	s.HandleTap(100, 0, identity)
	s.HandleTap(100, 100, identity)

	s.HandleTap(101, 99, identity)
	require.Equal(t, Selection{Kind: SelectVertex, Index: 2}, s.Selection())

	s.HandleTap(150, 150, identity)
	require.Equal(t, []Point{{0, 0}, {100, 0}, {150, 150}}, s.Vertices())
	require.False(t, s.Selection().Active())
	require.Equal(t, 4, s.HistoryLen())
}

func TestMidpointPromotedToVertex(t *testing.T) {
	proj := scaleProjector{scale: 20}
	s := newSession(t, ModePolyline)
	tapAt(s, proj, Point{0, 0})
	tapAt(s, proj, Point{10, 0})
	require.Equal(t, []Point{{5, 0}}, s.Midpoints())

	tapAt(s, proj, Point{5, 0})
	require.Equal(t, Selection{Kind: SelectMidpoint, Index: 0}, s.Selection())

	tapAt(s, proj, Point{5, 2})
	require.Equal(t, []Point{{0, 0}, {5, 2}, {10, 0}}, s.Vertices())
	require.False(t, s.Selection().Active())
}

func TestClosingMidpointInsertsAtEnd(t *testing.T) {
	proj := scaleProjector{scale: 20}
	s := newSession(t, ModePolygon)
	tapAt(s, proj, Point{0, 0})
	tapAt(s, proj, Point{10, 0})
	tapAt(s, proj, Point{10, 10})

	mids := s.Midpoints()
	require.Len(t, mids, 3)
	require.Equal(t, Point{5, 5}, mids[2])

	tapAt(s, proj, Point{5, 5})
	require.Equal(t, Selection{Kind: SelectMidpoint, Index: 2}, s.Selection())

	tapAt(s, proj, Point{3, 7})
	require.Equal(t, []Point{{0, 0}, {10, 0}, {10, 10}, {3, 7}}, s.Vertices())
}

func TestMidpointBeatsVertex(t *testing.T) {
	s := newSession(t, ModePolyline, WithTolerance(20))
	s.HandleTap(0, 0, identity)
	s.HandleTap(30, 0, identity)
	require.Equal(t, []Point{{15, 0}}, s.Midpoints())

	// Vertex is 6 away and the midpoint 9; both are in range
	s.HandleTap(6, 0, identity)
	require.Equal(t, Selection{Kind: SelectMidpoint, Index: 0}, s.Selection())
}

func TestHitTestTieGoesToLowestIndex(t *testing.T) {
	points := []Point{{0, 0}, {10, 0}, {5, 0}}
	require.Equal(t, 2, HitTest(5, 0, points, identity, 40))
	require.Equal(t, 0, HitTest(5, 5, points[:2], identity, 40))
	require.Equal(t, -1, HitTest(500, 0, points, identity, 40))
	require.Equal(t, -1, HitTest(0, 0, nil, identity, 40))
}

func TestPointModeKeepsSingleVertex(t *testing.T) {
	s := newSession(t, ModePoint)
	s.HandleTap(10, 10, identity)
	s.HandleTap(12, 12, identity)
	s.HandleTap(300, 300, identity)

	require.Equal(t, []Point{{300, 300}}, s.Vertices())
	require.Empty(t, s.Midpoints())
	require.False(t, s.Selection().Active())
	require.False(t, s.CanDelete())

	s.Undo()
	require.Equal(t, []Point{{12, 12}}, s.Vertices())
}

func TestDeleteWithoutSelectionRemovesLast(t *testing.T) {
	s := newSession(t, ModePolyline, WithTolerance(0.1))
	s.HandleTap(0, 0, identity)
	s.HandleTap(1, 1, identity)
	s.HandleTap(2, 2, identity)

	s.DeleteSelectedOrLast()

	require.Equal(t, []Point{{0, 0}, {1, 1}}, s.Vertices())
	require.Equal(t, 4, s.HistoryLen())
}

func TestDeleteSelectedVertex(t *testing.T) {
	s := newSession(t, ModePolyline)
	s.HandleTap(0, 0, identity)
	s.HandleTap(100, 100, identity)
	s.HandleTap(200, 200, identity)

	s.HandleTap(100, 102, identity)
	require.True(t, s.Selection().IsVertex())

	s.DeleteSelectedOrLast()
	require.Equal(t, []Point{{0, 0}, {200, 200}}, s.Vertices())
	require.False(t, s.Selection().Active())
}

func TestDeleteIgnoredWithMidpointSelectedOrEmpty(t *testing.T) {
	s := newSession(t, ModePolyline)
	s.DeleteSelectedOrLast()
	require.Zero(t, s.HistoryLen())

	s.HandleTap(0, 0, identity)
	s.HandleTap(200, 0, identity)
	s.HandleTap(100, 0, identity)
	require.True(t, s.Selection().IsMidpoint())
	require.False(t, s.CanDelete())

	s.DeleteSelectedOrLast()
	require.Equal(t, 2, s.VertexCount())
	require.True(t, s.Selection().IsMidpoint())
}

func TestUndoReturnsToEmpty(t *testing.T) {
	s := newSession(t, ModePolygon)
	s.HandleTap(0, 0, identity)
	s.HandleTap(100, 0, identity)
	s.HandleTap(100, 100, identity)
	s.HandleTap(100, 2, identity)   // select vertex 1
	s.HandleTap(120, -20, identity) // move it
	s.DeleteSelectedOrLast()
	require.Equal(t, []Point{{0, 0}, {120, -20}}, s.Vertices())

	expected := [][]Point{
		{{0, 0}, {120, -20}, {100, 100}},
		{{0, 0}, {100, 0}, {100, 100}},
		{{0, 0}, {100, 0}},
		{{0, 0}},
		{},
	}
	require.Equal(t, len(expected), s.HistoryLen())

	for _, want := range expected {
		require.True(t, s.CanUndo())
		s.Undo()
		require.Equal(t, want, s.Vertices())
	}

	require.Empty(t, s.Midpoints())
	require.False(t, s.CanUndo())

	s.Undo()
	require.Zero(t, s.VertexCount())
}

func TestIsSaveValidThresholds(t *testing.T) {
	cases := []struct {
		mode Mode
		min  int
	}{
		{ModePoint, 1},
		{ModePolyline, 2},
		{ModePolygon, 3},
	}

	for _, tc := range cases {
		t.Run(tc.mode.String(), func(t *testing.T) {
			s := newSession(t, tc.mode)
			for n := 0; n < 5; n++ {
				if tc.mode == ModePoint && n > 1 {
					break
				}
				require.Equal(t, n >= tc.min, s.IsSaveValid(), "n=%d", n)
				s.HandleTap(float64(n)*100, 0, identity)
			}
		})
	}

	s := NewSession()
	require.False(t, s.IsSaveValid())
	s.MarkSaving()
	require.False(t, s.IsSaveValid())
}

func TestBuildGeometryPolygon(t *testing.T) {
	s := newSession(t, ModePolygon)
	s.HandleTap(0, 0, identity)
	s.HandleTap(100, 0, identity)

	_, err := s.BuildGeometry()
	require.ErrorIs(t, err, ErrInsufficientVertices)

	s.HandleTap(100, 100, identity)
	g, err := s.BuildGeometry()
	require.NoError(t, err)

	poly, ok := g.(*geom.Polygon)
	require.True(t, ok)
	require.Equal(t, [][]geom.Coord{{{0, 0}, {100, 0}, {100, 100}}}, poly.Coords())
}

func TestBuildGeometryPointAndLine(t *testing.T) {
	s := newSession(t, ModePoint)
	s.HandleTap(7, 9, identity)
	g, err := s.BuildGeometry()
	require.NoError(t, err)
	require.Equal(t, geom.Coord{7, 9}, g.(*geom.Point).Coords())

	s = newSession(t, ModePolyline)
	s.HandleTap(0, 0, identity)
	s.HandleTap(100, 50, identity)
	g, err = s.BuildGeometry()
	require.NoError(t, err)
	require.Equal(t, []geom.Coord{{0, 0}, {100, 50}}, g.(*geom.LineString).Coords())
}

func TestSavingFreezesSession(t *testing.T) {
	s := newSession(t, ModePolyline)
	s.HandleTap(0, 0, identity)
	s.MarkSaving()

	s.HandleTap(100, 100, identity)
	s.DeleteSelectedOrLast()
	require.Equal(t, 1, s.VertexCount())
	require.Equal(t, ModeSaving, s.Mode())

	s.Discard()
	require.Equal(t, ModeNone, s.Mode())
	require.Zero(t, s.VertexCount())
	require.False(t, s.CanUndo())
}

func TestVerticesAreCopies(t *testing.T) {
	s := newSession(t, ModePolyline)
	s.HandleTap(0, 0, identity)
	snap := s.Snapshot()

	v := s.Vertices()
	v[0] = Point{99, 99}
	require.Equal(t, []Point{{0, 0}}, s.Vertices())

	s.HandleTap(0, 2, identity)
	s.HandleTap(50, 50, identity)
	require.Equal(t, []Point{{0, 0}}, snap.Vertices())
}
