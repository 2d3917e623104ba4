package edit

import (
	"github.com/pkg/errors"
	"github.com/twpayne/go-geom"
)

// BuildGeometry converts the current vertex list into a geometry value.
// Polygons get a single ring made of exactly the edited vertices; closing the
// ring is left to whatever stores the geometry.
func (s *Session) BuildGeometry() (geom.T, error) {
	if !s.IsSaveValid() {
		return nil, errors.Wrapf(ErrInsufficientVertices, "%s needs %d, have %d",
			s.mode, s.mode.MinVertices(), s.current.Len())
	}

	coords := make([]geom.Coord, s.current.Len())
	for i, p := range s.current.vertices {
		coords[i] = geom.Coord{p.X, p.Y}
	}

	switch s.mode {
	case ModePoint:
		return geom.NewPoint(geom.XY).SetCoords(coords[len(coords)-1])
	case ModePolyline:
		return geom.NewLineString(geom.XY).SetCoords(coords)
	case ModePolygon:
		return geom.NewPolygon(geom.XY).SetCoords([][]geom.Coord{coords})
	default:
		return nil, errors.Wrapf(ErrInvalidMode, "cannot build geometry in %s mode", s.mode)
	}
}
