package layer

import (
	"github.com/jonas-p/go-shp"
	"github.com/pkg/errors"
	"github.com/twpayne/go-geom"
)

// shapeGeometryType maps a shapefile shape type to a table geometry type.
// Only the plain 2D types are editable.
func shapeGeometryType(t shp.ShapeType) (GeometryType, bool) {
	switch t {
	case shp.POINT:
		return GeometryPoint, true
	case shp.MULTIPOINT:
		return GeometryMultiPoint, true
	case shp.POLYLINE:
		return GeometryPolyline, true
	case shp.POLYGON:
		return GeometryPolygon, true
	case shp.POINTZ, shp.POINTM:
		return GeometryPoint, false
	case shp.MULTIPOINTZ, shp.MULTIPOINTM:
		return GeometryMultiPoint, false
	case shp.POLYLINEZ, shp.POLYLINEM:
		return GeometryPolyline, false
	case shp.POLYGONZ, shp.POLYGONM:
		return GeometryPolygon, false
	default:
		return GeometryUnknown, false
	}
}

// shapeTypeFor returns the shapefile shape type used to store a geometry type
func shapeTypeFor(g GeometryType) (shp.ShapeType, error) {
	switch g {
	case GeometryPoint:
		return shp.POINT, nil
	case GeometryMultiPoint:
		return shp.MULTIPOINT, nil
	case GeometryLine, GeometryPolyline:
		return shp.POLYLINE, nil
	case GeometryEnvelope, GeometryPolygon:
		return shp.POLYGON, nil
	default:
		return shp.NULL, errors.Errorf("no shapefile type for %s geometry", g)
	}
}

// fromShape converts a shapefile shape to a geometry; nil for unsupported shapes
func fromShape(s shp.Shape) geom.T {
	switch s := s.(type) {
	case *shp.Point:
		return geom.NewPoint(geom.XY).MustSetCoords(geom.Coord{s.X, s.Y})
	case *shp.MultiPoint:
		return geom.NewMultiPoint(geom.XY).MustSetCoords(toCoords(s.Points))
	case *shp.PolyLine:
		parts := splitParts(s.Parts, s.Points)
		if len(parts) == 1 {
			return geom.NewLineString(geom.XY).MustSetCoords(parts[0])
		}
		return geom.NewMultiLineString(geom.XY).MustSetCoords(parts)
	case *shp.Polygon:
		return geom.NewPolygon(geom.XY).MustSetCoords(splitParts(s.Parts, s.Points))
	default:
		return nil
	}
}

// toShape converts a geometry to a shape of the given shapefile type
func toShape(g geom.T, t shp.ShapeType) (shp.Shape, error) {
	switch g := g.(type) {
	case nil:
		return &shp.Null{}, nil
	case *geom.Point:
		pt := shp.Point{X: g.X(), Y: g.Y()}
		if t == shp.MULTIPOINT {
			return newMultiPoint([]shp.Point{pt}), nil
		}
		return &pt, nil
	case *geom.MultiPoint:
		return newMultiPoint(toPoints(g.Coords())), nil
	case *geom.LineString:
		return shp.NewPolyLine([][]shp.Point{toPoints(g.Coords())}), nil
	case *geom.MultiLineString:
		parts := make([][]shp.Point, 0, g.NumLineStrings())
		for _, line := range g.Coords() {
			parts = append(parts, toPoints(line))
		}
		return shp.NewPolyLine(parts), nil
	case *geom.Polygon:
		parts := make([][]shp.Point, 0, g.NumLinearRings())
		for _, ring := range g.Coords() {
			parts = append(parts, toPoints(closeRing(ring)))
		}
		polygon := shp.Polygon(*shp.NewPolyLine(parts))
		return &polygon, nil
	default:
		return nil, errors.Wrapf(ErrConstraintViolation, "unsupported geometry %T", g)
	}
}

func newMultiPoint(points []shp.Point) *shp.MultiPoint {
	return &shp.MultiPoint{
		Box:       shp.BBoxFromPoints(points),
		NumPoints: int32(len(points)),
		Points:    points,
	}
}

// splitParts slices a flat point array at the part offsets
func splitParts(parts []int32, points []shp.Point) [][]geom.Coord {
	out := make([][]geom.Coord, 0, len(parts))
	for i, start := range parts {
		end := int32(len(points))
		if i+1 < len(parts) {
			end = parts[i+1]
		}
		if start < 0 || start > end || end > int32(len(points)) {
			continue
		}
		out = append(out, toCoords(points[start:end]))
	}
	return out
}

func toCoords(points []shp.Point) []geom.Coord {
	coords := make([]geom.Coord, len(points))
	for i, p := range points {
		coords[i] = geom.Coord{p.X, p.Y}
	}
	return coords
}

func toPoints(coords []geom.Coord) []shp.Point {
	points := make([]shp.Point, len(coords))
	for i, c := range coords {
		points[i] = shp.Point{X: c.X(), Y: c.Y()}
	}
	return points
}

// closePolygon returns g with every polygon ring explicitly closed
func closePolygon(g geom.T) geom.T {
	poly, ok := g.(*geom.Polygon)
	if !ok {
		return g
	}
	rings := poly.Coords()
	for i, ring := range rings {
		rings[i] = closeRing(ring)
	}
	return geom.NewPolygon(poly.Layout()).MustSetCoords(rings)
}
