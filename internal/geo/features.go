package geo

// FeatureType represents the type of basemap feature
type FeatureType int

const (
	FeatureStateBorder FeatureType = iota
	FeatureRiver
	FeatureCoastline
	FeatureCity
)

// String returns a string representation of the feature type
func (f FeatureType) String() string {
	switch f {
	case FeatureStateBorder:
		return "StateBorder"
	case FeatureRiver:
		return "River"
	case FeatureCoastline:
		return "Coastline"
	case FeatureCity:
		return "City"
	default:
		return "Unknown"
	}
}

// LatLon represents a geographic coordinate
type LatLon struct {
	Lat float64
	Lon float64
}

// Feature is a read-only basemap feature drawn underneath the edit layer
type Feature struct {
	Type   FeatureType // Type of feature
	Points []LatLon    // Polyline points (empty for point features)
	Point  *LatLon     // Single point (for cities)
	Name   string      // Label for cities
}

// NewLineFeature creates a new line/polyline feature
func NewLineFeature(ftype FeatureType, points []LatLon) *Feature {
	return &Feature{
		Type:   ftype,
		Points: points,
	}
}

// NewPointFeature creates a new named point feature
func NewPointFeature(ftype FeatureType, point LatLon, name string) *Feature {
	return &Feature{
		Type:  ftype,
		Point: &point,
		Name:  name,
	}
}

// IsPoint returns true if this is a point feature
func (f *Feature) IsPoint() bool {
	return f.Point != nil
}

// IsLine returns true if this is a line/polyline feature
func (f *Feature) IsLine() bool {
	return len(f.Points) > 0
}
