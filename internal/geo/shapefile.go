package geo

import (
	"math"
	"os"
	"path/filepath"
	"strings"

	"mapedit/internal/debug"

	"github.com/jonas-p/go-shp"
	"github.com/pkg/errors"
)

// Basemap holds the Natural Earth layers drawn under the edit layer
type Basemap map[FeatureType][]*Feature

// basemapFiles maps feature types to their Natural Earth shapefile base names
var basemapFiles = []struct {
	ftype FeatureType
	base  string
}{
	{FeatureStateBorder, "ne_50m_admin_1_states_provinces"},
	{FeatureRiver, "ne_50m_rivers_lake_centerlines"},
	{FeatureCoastline, "ne_50m_coastline"},
	{FeatureCity, "ne_50m_populated_places"},
}

// ShapefileLoader loads and parses ESRI shapefiles
type ShapefileLoader struct {
	dataDir string
}

// NewShapefileLoader creates a new shapefile loader
func NewShapefileLoader(dataDir string) *ShapefileLoader {
	return &ShapefileLoader{
		dataDir: dataDir,
	}
}

// LoadAll loads every basemap shapefile found in the data directory.
// Missing files are logged and skipped; the editor works without a basemap.
func (s *ShapefileLoader) LoadAll() Basemap {
	features := make(Basemap)

	for _, file := range basemapFiles {
		path := filepath.Join(s.dataDir, file.base+".shp")

		var (
			loaded []*Feature
			err    error
		)
		if file.ftype == FeatureCity {
			loaded, err = s.LoadCities(path)
		} else {
			loaded, err = s.LoadShapefile(path, file.ftype)
		}
		if err != nil {
			debug.Warn("skipping basemap layer %s: %v", file.ftype, err)
			continue
		}
		features[file.ftype] = loaded
	}

	debug.Log("loaded basemap: %d states, %d rivers, %d coastlines, %d cities",
		len(features[FeatureStateBorder]),
		len(features[FeatureRiver]),
		len(features[FeatureCoastline]),
		len(features[FeatureCity]))
	return features
}

// LoadShapefile loads a shapefile and converts it to line features.
// Polygons become their outline; points become unnamed point features.
func (s *ShapefileLoader) LoadShapefile(path string, ftype FeatureType) ([]*Feature, error) {
	shape, err := shp.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer shape.Close()

	features := make([]*Feature, 0)

	for shape.Next() {
		_, p := shape.Shape()

		switch geom := p.(type) {
		case *shp.PolyLine:
			features = appendParts(features, ftype, geom.Parts, geom.Points)
		case *shp.Polygon:
			features = appendParts(features, ftype, geom.Parts, geom.Points)
		case *shp.Point:
			features = append(features, NewPointFeature(ftype, LatLon{Lat: geom.Y, Lon: geom.X}, ""))
		}
	}

	return features, nil
}

// appendParts splits a multi-part shape into one line feature per part
func appendParts(features []*Feature, ftype FeatureType, parts []int32, points []shp.Point) []*Feature {
	for i, start := range parts {
		end := int32(len(points))
		if i+1 < len(parts) {
			end = parts[i+1]
		}
		if start < 0 || end > int32(len(points)) || end-start < 2 {
			continue
		}

		line := make([]LatLon, 0, end-start)
		for _, pt := range points[start:end] {
			line = append(line, LatLon{Lat: pt.Y, Lon: pt.X})
		}
		features = append(features, NewLineFeature(ftype, line))
	}
	return features
}

// LoadCities loads populated place features with names
func (s *ShapefileLoader) LoadCities(path string) ([]*Feature, error) {
	shape, err := shp.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer shape.Close()

	nameIdx := FieldIndex(shape.Fields(), "NAME", "NAMEASCII", "NAME_EN")

	features := make([]*Feature, 0)
	for shape.Next() {
		n, p := shape.Shape()

		point, ok := p.(*shp.Point)
		if !ok {
			continue
		}

		name := ""
		if nameIdx >= 0 {
			name = strings.TrimSpace(shape.ReadAttribute(n, nameIdx))
		}

		features = append(features, NewPointFeature(FeatureCity, LatLon{Lat: point.Y, Lon: point.X}, name))
	}

	return features, nil
}

// FixDBFName moves the attribute table go-shp's Writer leaves at
// "<base>dbf" to "<base>.dbf", where readers look for it
func FixDBFName(shpPath string) error {
	base := strings.TrimSuffix(shpPath, filepath.Ext(shpPath))
	stray := base + "dbf"
	if _, err := os.Stat(stray); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, "stat %s", stray)
	}
	if err := os.Rename(stray, base+".dbf"); err != nil {
		return errors.Wrapf(err, "renaming %s", stray)
	}
	return nil
}

// FieldIndex returns the index of the first field matching one of names, or -1
func FieldIndex(fields []shp.Field, names ...string) int {
	for _, want := range names {
		for i, field := range fields {
			// Field names are fixed-size byte arrays padded with nulls
			if strings.EqualFold(strings.TrimRight(string(field.Name[:]), "\x00 "), want) {
				return i
			}
		}
	}
	return -1
}

// FilterByBounds filters features to only those within or intersecting the given bounds
func FilterByBounds(features []*Feature, bounds *Bounds) []*Feature {
	filtered := make([]*Feature, 0)

	for _, feature := range features {
		if feature.IsPoint() {
			if bounds.Contains(feature.Point.Lat, feature.Point.Lon) {
				filtered = append(filtered, feature)
			}
			continue
		}

		for _, point := range feature.Points {
			if bounds.Contains(point.Lat, point.Lon) {
				filtered = append(filtered, feature)
				break
			}
		}
	}

	return filtered
}

// Bounds represents a geographic bounding box
type Bounds struct {
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64
}

// NewBounds creates a bounding box from center point and radius
func NewBounds(centerLat, centerLon, radiusMiles float64) *Bounds {
	latDegrees := radiusMiles / 69.0
	lonDegrees := radiusMiles / (69.0 * math.Cos(centerLat*math.Pi/180.0))

	return &Bounds{
		MinLat: centerLat - latDegrees,
		MaxLat: centerLat + latDegrees,
		MinLon: centerLon - lonDegrees,
		MaxLon: centerLon + lonDegrees,
	}
}

// Contains checks if a point is within the bounds
func (b *Bounds) Contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat &&
		lon >= b.MinLon && lon <= b.MaxLon
}
