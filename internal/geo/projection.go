package geo

import (
	"math"
)

// Point represents a screen cell
type Point struct {
	X int
	Y int
}

// Projection handles conversion between lat/lon and screen cells
type Projection struct {
	centerLat    float64
	centerLon    float64
	radiusMiles  float64
	screenWidth  int
	screenHeight int
	aspectRatio  float64
	scaleX       float64
	scaleY       float64
}

// NewProjection creates an equirectangular projection for a given center point and radius
// The projection will fit a circle of radiusMiles around the center point into the screen dimensions
// aspectRatio compensates for character dimensions (typically 2.0 for characters twice as tall as wide)
func NewProjection(centerLat, centerLon, radiusMiles float64, screenWidth, screenHeight int, aspectRatio float64) *Projection {
	p := &Projection{
		centerLat:    centerLat,
		centerLon:    centerLon,
		radiusMiles:  radiusMiles,
		screenWidth:  screenWidth,
		screenHeight: screenHeight,
		aspectRatio:  aspectRatio,
	}

	p.calculateScale()
	return p
}

// calculateScale computes the cells-per-degree scaling factors
func (p *Projection) calculateScale() {
	// 1 degree latitude ≈ 69 miles, 1 degree longitude ≈ 69 * cos(latitude) miles
	milesPerDegreeLat := 69.0
	milesPerDegreeLon := 69.0 * math.Cos(p.centerLat*math.Pi/180.0)

	totalDegreesLat := 2 * p.radiusMiles / milesPerDegreeLat
	totalDegreesLon := 2 * p.radiusMiles / milesPerDegreeLon

	effectiveHeight := float64(p.screenHeight) * p.aspectRatio
	scaleY := effectiveHeight / totalDegreesLat
	scaleX := float64(p.screenWidth) / totalDegreesLon

	if scaleX < scaleY {
		p.scaleX = scaleX
		p.scaleY = scaleX / p.aspectRatio
	} else {
		p.scaleX = scaleY * p.aspectRatio
		p.scaleY = scaleY
	}
}

// ProjectF converts lat/lon to fractional screen coordinates with (0, 0) at top-left
func (p *Projection) ProjectF(lat, lon float64) (x, y float64) {
	// Screen Y grows downward while latitude grows upward
	x = (lon-p.centerLon)*p.scaleX + float64(p.screenWidth/2)
	y = -(lat-p.centerLat)*p.scaleY + float64(p.screenHeight/2)
	return x, y
}

// Project converts lat/lon to the screen cell containing it
func (p *Projection) Project(lat, lon float64) Point {
	x, y := p.ProjectF(lat, lon)
	return Point{X: int(math.Floor(x)), Y: int(math.Floor(y))}
}

// UnprojectF converts fractional screen coordinates back to lat/lon
func (p *Projection) UnprojectF(x, y float64) (lat, lon float64) {
	deltaLon := (x - float64(p.screenWidth/2)) / p.scaleX
	deltaLat := -(y - float64(p.screenHeight/2)) / p.scaleY

	return p.centerLat + deltaLat, p.centerLon + deltaLon
}

// Unproject converts a screen cell back to lat/lon
func (p *Projection) Unproject(x, y int) (lat, lon float64) {
	return p.UnprojectF(float64(x), float64(y))
}

// IsInBounds checks if a lat/lon point would be visible on screen
func (p *Projection) IsInBounds(lat, lon float64) bool {
	point := p.Project(lat, lon)
	return point.X >= 0 && point.X < p.screenWidth &&
		point.Y >= 0 && point.Y < p.screenHeight
}

// UpdateCenter recalculates the projection with a new center point
func (p *Projection) UpdateCenter(lat, lon float64) {
	p.centerLat = lat
	p.centerLon = lon
	p.calculateScale()
}

// Pan shifts the center by a number of screen cells
func (p *Projection) Pan(dx, dy int) {
	lat, lon := p.Unproject(p.screenWidth/2+dx, p.screenHeight/2+dy)
	p.UpdateCenter(lat, lon)
}

// UpdateDimensions updates the screen dimensions and recalculates scaling
func (p *Projection) UpdateDimensions(width, height int) {
	p.screenWidth = width
	p.screenHeight = height
	p.calculateScale()
}

// GetCenter returns the current center point
func (p *Projection) GetCenter() (lat, lon float64) {
	return p.centerLat, p.centerLon
}

// GetBounds returns the geographic bounds visible on screen
func (p *Projection) GetBounds() *Bounds {
	topLeftLat, topLeftLon := p.Unproject(0, 0)
	bottomRightLat, bottomRightLon := p.Unproject(p.screenWidth-1, p.screenHeight-1)

	return &Bounds{
		MinLat: math.Min(topLeftLat, bottomRightLat),
		MaxLat: math.Max(topLeftLat, bottomRightLat),
		MinLon: math.Min(topLeftLon, bottomRightLon),
		MaxLon: math.Max(topLeftLon, bottomRightLon),
	}
}
