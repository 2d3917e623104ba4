package ui

import (
	"mapedit/internal/debug"
	"mapedit/internal/edit"
	"mapedit/internal/geo"
	"mapedit/internal/layer"
	"mapedit/internal/render"

	"github.com/gdamore/tcell/v2"
	"github.com/twpayne/go-geom"
)

// Nominal cell size in pixels. Hit testing runs in pixel units so the
// tolerance keeps its meaning on a character grid.
const (
	CellWidthPx  = 8.0
	CellHeightPx = 16.0
)

// Zoom limits in miles
const (
	minRadius = 10.0
	maxRadius = 1000.0
)

// MapView displays the basemap, the active layer and the edit overlay
type MapView struct {
	renderer    *render.MapRenderer
	projection  *geo.Projection
	canvas      *render.Canvas
	width       int
	height      int
	radiusMiles float64
	aspectRatio float64
}

// NewMapView creates a new map view
func NewMapView(width, height int, basemap geo.Basemap, center geo.LatLon, radiusMiles, aspectRatio float64) *MapView {
	projection := geo.NewProjection(center.Lat, center.Lon, radiusMiles, width, height, aspectRatio)
	canvas := render.NewCanvas(width, height)
	renderer := render.NewMapRenderer(projection, basemap, canvas)

	return &MapView{
		renderer:    renderer,
		projection:  projection,
		canvas:      canvas,
		width:       width,
		height:      height,
		radiusMiles: radiusMiles,
		aspectRatio: aspectRatio,
	}
}

// Draw renders the map view to the screen
func (m *MapView) Draw(screen tcell.Screen, records []layer.Record, lastAdded int64, session *edit.Session) {
	m.canvas.Clear()

	m.renderer.RenderMap()
	m.renderer.RenderRecords(records, lastAdded)
	if session != nil {
		m.renderer.RenderEdit(session)
	}

	m.canvas.Blit(screen, 0, 0)
}

// Projector returns the current screen/map transform for hit testing
func (m *MapView) Projector() edit.Projector {
	return projector{proj: m.projection}
}

// CellCenter returns the pixel position of the center of a screen cell
func CellCenter(x, y int) (float64, float64) {
	return (float64(x) + 0.5) * CellWidthPx, (float64(y) + 0.5) * CellHeightPx
}

// projector adapts geo.Projection to edit.Projector. Map points are
// X = longitude, Y = latitude; screen units are pixels.
type projector struct {
	proj *geo.Projection
}

func (p projector) ToMap(x, y float64) edit.Point {
	lat, lon := p.proj.UnprojectF(x/CellWidthPx, y/CellHeightPx)
	return edit.Point{X: lon, Y: lat}
}

func (p projector) ToScreen(pt edit.Point) (float64, float64) {
	cx, cy := p.proj.ProjectF(pt.Y, pt.X)
	return cx * CellWidthPx, cy * CellHeightPx
}

// CenterOnRecords moves the map to the middle of the records' extent
func (m *MapView) CenterOnRecords(records []layer.Record) {
	bounds := geom.NewBounds(geom.XY)
	n := 0
	for _, rec := range records {
		if rec.Geometry == nil || len(rec.Geometry.FlatCoords()) == 0 {
			continue
		}
		bounds.Extend(rec.Geometry)
		n++
	}
	if n == 0 {
		return
	}

	lon := (bounds.Min(0) + bounds.Max(0)) / 2
	lat := (bounds.Min(1) + bounds.Max(1)) / 2
	m.projection.UpdateCenter(lat, lon)
	debug.Log("Map centered on %d features at %.4f, %.4f", n, lat, lon)
}

// Pan moves the map by a number of cells
func (m *MapView) Pan(dx, dy int) {
	m.projection.Pan(dx, dy)
}

// UpdateDimensions updates the view dimensions when the screen is resized
func (m *MapView) UpdateDimensions(width, height int) {
	m.width = width
	m.height = height

	m.projection.UpdateDimensions(width, height)

	m.canvas = render.NewCanvas(width, height)
	m.renderer.UpdateCanvas(m.canvas)
}

// ZoomIn decreases the radius
func (m *MapView) ZoomIn() {
	m.SetRadius(max(m.radiusMiles*0.75, minRadius))
}

// ZoomOut increases the radius
func (m *MapView) ZoomOut() {
	m.SetRadius(min(m.radiusMiles*1.33, maxRadius))
}

// SetRadius updates the map radius and recalculates the projection
func (m *MapView) SetRadius(radiusMiles float64) {
	m.radiusMiles = radiusMiles
	centerLat, centerLon := m.projection.GetCenter()
	m.projection = geo.NewProjection(centerLat, centerLon, radiusMiles, m.width, m.height, m.aspectRatio)
	m.renderer.UpdateProjection(m.projection)
	debug.Log("Map radius changed to %.0f miles", radiusMiles)
}

// GetRadius returns the current map radius
func (m *MapView) GetRadius() float64 {
	return m.radiusMiles
}
