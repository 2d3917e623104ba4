package render

import (
	"mapedit/internal/debug"
	"mapedit/internal/edit"
	"mapedit/internal/geo"
	"mapedit/internal/layer"

	"github.com/gdamore/tcell/v2"
	"github.com/twpayne/go-geom"
)

// MapRenderer renders the basemap, a layer's features, and the edit overlay
// to a canvas. Map coordinates are X = longitude, Y = latitude.
type MapRenderer struct {
	projection *geo.Projection
	basemap    geo.Basemap
	canvas     *Canvas
}

// NewMapRenderer creates a new map renderer
func NewMapRenderer(projection *geo.Projection, basemap geo.Basemap, canvas *Canvas) *MapRenderer {
	return &MapRenderer{
		projection: projection,
		basemap:    basemap,
		canvas:     canvas,
	}
}

// RenderMap draws all basemap features to the canvas
func (m *MapRenderer) RenderMap() {
	bounds := m.projection.GetBounds()

	// Bottom to top: coastlines, rivers, borders, then city labels
	m.renderFeatureType(geo.FeatureCoastline, bounds)
	m.renderFeatureType(geo.FeatureRiver, bounds)
	m.renderFeatureType(geo.FeatureStateBorder, bounds)
	m.renderFeatureType(geo.FeatureCity, bounds)
}

// renderFeatureType renders all visible basemap features of a specific type
func (m *MapRenderer) renderFeatureType(ftype geo.FeatureType, bounds *geo.Bounds) {
	features, exists := m.basemap[ftype]
	if !exists {
		return
	}

	visible := geo.FilterByBounds(features, bounds)
	if ftype == geo.FeatureCity && debug.Enabled() {
		debug.Log("Rendering %d cities (of %d total)", len(visible), len(features))
	}

	for _, feature := range visible {
		m.RenderFeature(feature)
	}
}

// RenderFeature draws a single basemap feature
func (m *MapRenderer) RenderFeature(feature *geo.Feature) {
	style := GetStyleForFeature(feature.Type)
	char := GetCharForFeature(feature.Type)

	if feature.IsPoint() {
		point := m.projection.Project(feature.Point.Lat, feature.Point.Lon)
		m.canvas.Set(point.X, point.Y, char, style)

		if feature.Name != "" && point.X < m.canvas.Width()-len(feature.Name)-1 {
			m.canvas.DrawText(point.X+1, point.Y, feature.Name, StyleLabel)
		}
	} else if feature.IsLine() {
		for i := 0; i < len(feature.Points)-1; i++ {
			p1 := m.projection.Project(feature.Points[i].Lat, feature.Points[i].Lon)
			p2 := m.projection.Project(feature.Points[i+1].Lat, feature.Points[i+1].Lon)
			m.canvas.DrawLine(p1.X, p1.Y, p2.X, p2.Y, char, style)
		}
	}
}

// RenderRecords draws a layer's stored features. The record whose id is
// highlight is drawn in the last-added style.
func (m *MapRenderer) RenderRecords(records []layer.Record, highlight int64) {
	for _, rec := range records {
		style := StyleFeature
		if rec.ID == highlight {
			style = StyleLastAdded
		}
		m.RenderGeometry(rec.Geometry, style)
	}
}

// RenderGeometry draws a go-geom value
func (m *MapRenderer) RenderGeometry(g geom.T, style tcell.Style) {
	switch g := g.(type) {
	case *geom.Point:
		m.plot(g.Coords(), GlyphPoint, style)
	case *geom.MultiPoint:
		for i := 0; i < g.NumPoints(); i++ {
			m.plot(g.Point(i).Coords(), GlyphPoint, style)
		}
	case *geom.LineString:
		m.path(g.Coords(), false, GlyphFeature, style)
	case *geom.MultiLineString:
		for i := 0; i < g.NumLineStrings(); i++ {
			m.path(g.LineString(i).Coords(), false, GlyphFeature, style)
		}
	case *geom.Polygon:
		for _, ring := range g.Coords() {
			m.path(ring, true, GlyphFeature, style)
		}
	case *geom.MultiPolygon:
		for i := 0; i < g.NumPolygons(); i++ {
			for _, ring := range g.Polygon(i).Coords() {
				m.path(ring, true, GlyphFeature, style)
			}
		}
	case nil:
	default:
		debug.Warn("cannot draw geometry %T", g)
	}
}

// RenderEdit draws the shape under construction: its outline, midpoint
// handles, then vertices on top
func (m *MapRenderer) RenderEdit(session *edit.Session) {
	mode := session.Mode()
	if mode == edit.ModeNone {
		return
	}

	vertices := session.Vertices()
	sel := session.Selection()

	if mode != edit.ModePoint {
		coords := make([]geom.Coord, len(vertices))
		for i, v := range vertices {
			coords[i] = geom.Coord{v.X, v.Y}
		}
		m.path(coords, mode.Closed() && len(vertices) > 2, GlyphSketch, StyleSketch)
	}

	for i, mid := range session.Midpoints() {
		style := StyleMidpoint
		if sel.IsMidpoint() && sel.Index == i {
			style = StyleHandleActive
		}
		m.plot(geom.Coord{mid.X, mid.Y}, GlyphMidpoint, style)
	}

	last := len(vertices) - 1
	for i, v := range vertices {
		m.plot(geom.Coord{v.X, v.Y}, GlyphVertex, VertexStyle(i, last, sel))
	}
}

// VertexStyle picks the style of vertex i: the selected vertex is active,
// and with nothing selected so is the last one
func VertexStyle(i, last int, sel edit.Selection) tcell.Style {
	if sel.IsVertex() {
		if sel.Index == i {
			return StyleHandleActive
		}
		return StyleVertex
	}
	if !sel.Active() && i == last {
		return StyleHandleActive
	}
	return StyleVertex
}

func (m *MapRenderer) plot(c geom.Coord, char rune, style tcell.Style) {
	if len(c) < 2 {
		return
	}
	p := m.projection.Project(c.Y(), c.X())
	m.canvas.Set(p.X, p.Y, char, style)
}

func (m *MapRenderer) path(coords []geom.Coord, closed bool, char rune, style tcell.Style) {
	if len(coords) == 0 {
		return
	}

	points := make([]geo.Point, 0, len(coords)+1)
	for _, c := range coords {
		points = append(points, m.projection.Project(c.Y(), c.X()))
	}
	if closed {
		points = append(points, points[0])
	}

	if len(points) == 1 {
		m.canvas.Set(points[0].X, points[0].Y, char, style)
		return
	}
	for i := 0; i < len(points)-1; i++ {
		m.canvas.DrawLine(points[i].X, points[i].Y, points[i+1].X, points[i+1].Y, char, style)
	}
}

// UpdateProjection updates the renderer's projection
func (m *MapRenderer) UpdateProjection(projection *geo.Projection) {
	m.projection = projection
}

// UpdateCanvas updates the renderer's canvas
func (m *MapRenderer) UpdateCanvas(canvas *Canvas) {
	m.canvas = canvas
}
