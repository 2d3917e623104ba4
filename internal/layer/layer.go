// Package layer provides the feature tables new shapes are saved into.
package layer

import (
	"context"
	"strings"

	"mapedit/internal/edit"

	"github.com/pkg/errors"
	"github.com/twpayne/go-geom"
)

var (
	// ErrConstraintViolation is returned when a geometry does not fit the table
	ErrConstraintViolation = errors.New("constraint violation")

	// ErrWriteConflict is returned when the table changed underneath the editor
	ErrWriteConflict = errors.New("write conflict")

	// ErrReadOnly is returned when adding to a table that is not editable
	ErrReadOnly = errors.New("layer is read-only")
)

// GeometryType is the kind of geometry a table stores
type GeometryType int

const (
	GeometryUnknown GeometryType = iota
	GeometryPoint
	GeometryMultiPoint
	GeometryLine
	GeometryPolyline
	GeometryEnvelope
	GeometryPolygon
)

var geometryNames = map[GeometryType]string{
	GeometryUnknown:    "unknown",
	GeometryPoint:      "point",
	GeometryMultiPoint: "multipoint",
	GeometryLine:       "line",
	GeometryPolyline:   "polyline",
	GeometryEnvelope:   "envelope",
	GeometryPolygon:    "polygon",
}

// String returns the lower-case name of the geometry type
func (g GeometryType) String() string {
	if name, ok := geometryNames[g]; ok {
		return name
	}
	return "unknown"
}

// ParseGeometryType parses a name produced by String
func ParseGeometryType(s string) (GeometryType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for g, name := range geometryNames {
		if name == s && g != GeometryUnknown {
			return g, nil
		}
	}
	return GeometryUnknown, errors.Errorf("unknown geometry type %q", s)
}

// ModeFor returns the edit mode used to author features for a geometry type
func ModeFor(g GeometryType) edit.Mode {
	switch g {
	case GeometryPoint, GeometryMultiPoint:
		return edit.ModePoint
	case GeometryLine, GeometryPolyline:
		return edit.ModePolyline
	case GeometryEnvelope, GeometryPolygon:
		return edit.ModePolygon
	default:
		return edit.ModeNone
	}
}

// Record is a stored feature
type Record struct {
	ID         int64
	GlobalID   string
	Geometry   geom.T
	Attributes map[string]string
}

// Table is an editable collection of features sharing a geometry type
type Table interface {
	Name() string
	GeometryType() GeometryType
	Editable() bool

	// AddFeature stores g and returns the new feature's id
	AddFeature(ctx context.Context, g geom.T) (int64, error)

	// Query returns the features with the given ids, skipping unknown ids
	Query(ctx context.Context, ids ...int64) ([]Record, error)

	// Features returns every feature in the table
	Features(ctx context.Context) ([]Record, error)

	Close() error
}

// checkGeometry verifies g can be stored in a table of type want
func checkGeometry(want GeometryType, g geom.T) error {
	if g == nil {
		return errors.Wrap(ErrConstraintViolation, "missing geometry")
	}

	var ok bool
	switch g.(type) {
	case *geom.Point:
		ok = want == GeometryPoint || want == GeometryMultiPoint
	case *geom.LineString:
		ok = want == GeometryLine || want == GeometryPolyline
	case *geom.Polygon:
		ok = want == GeometryPolygon || want == GeometryEnvelope
	}
	if !ok {
		return errors.Wrapf(ErrConstraintViolation, "%T cannot be stored in a %s layer", g, want)
	}

	if len(g.FlatCoords()) == 0 {
		return errors.Wrap(ErrConstraintViolation, "empty geometry")
	}
	return nil
}

// closeRing returns ring with its first coordinate repeated at the end
func closeRing(ring []geom.Coord) []geom.Coord {
	if len(ring) == 0 {
		return ring
	}
	first, last := ring[0], ring[len(ring)-1]
	if first.X() == last.X() && first.Y() == last.Y() {
		return ring
	}
	closed := make([]geom.Coord, 0, len(ring)+1)
	closed = append(closed, ring...)
	return append(closed, first)
}
