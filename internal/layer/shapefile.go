package layer

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"mapedit/internal/debug"
	"mapedit/internal/geo"

	"github.com/google/uuid"
	"github.com/jonas-p/go-shp"
	"github.com/pkg/errors"
	"github.com/twpayne/go-geom"
)

// GlobalIDField is the attribute holding each feature's stable identifier
const GlobalIDField = "GLOBALID"

// shapefileSidecars are the files rewritten together on every save
var shapefileSidecars = []string{".shp", ".shx", ".dbf"}

// ShapefileTable is a feature table backed by an ESRI shapefile.
// The whole file is held in memory and rewritten on each add.
type ShapefileTable struct {
	mu        sync.Mutex
	path      string
	name      string
	gtype     GeometryType
	shapeType shp.ShapeType
	editable  bool
	fields    []shp.Field
	records   []Record
	modTime   time.Time
}

// OpenShapefile loads the shapefile at path
func OpenShapefile(path string) (*ShapefileTable, error) {
	t := &ShapefileTable{
		path: path,
		name: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
	}
	if err := t.load(); err != nil {
		return nil, err
	}
	return t, nil
}

// CreateShapefile creates an empty shapefile layer for the given geometry type
func CreateShapefile(path string, g GeometryType) (*ShapefileTable, error) {
	shapeType, err := shapeTypeFor(g)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err == nil {
		return nil, errors.Errorf("layer %s already exists", path)
	}

	w, err := shp.Create(path, shapeType)
	if err != nil {
		return nil, errors.Wrapf(err, "creating %s", path)
	}
	if err := w.SetFields([]shp.Field{shp.StringField(GlobalIDField, 38)}); err != nil {
		w.Close()
		return nil, errors.Wrapf(err, "writing fields for %s", path)
	}
	w.Close()

	if err := geo.FixDBFName(path); err != nil {
		return nil, err
	}
	return OpenShapefile(path)
}

func (t *ShapefileTable) load() error {
	r, err := shp.Open(t.path)
	if err != nil {
		return errors.Wrapf(err, "opening %s", t.path)
	}
	defer r.Close()

	t.shapeType = r.GeometryType
	t.gtype, t.editable = shapeGeometryType(r.GeometryType)
	t.fields = r.Fields()

	globalIdx := geo.FieldIndex(t.fields, GlobalIDField)

	t.records = t.records[:0]
	for r.Next() {
		n, s := r.Shape()

		rec := Record{
			ID:         int64(n) + 1,
			Geometry:   fromShape(s),
			Attributes: make(map[string]string, len(t.fields)),
		}
		for i, field := range t.fields {
			rec.Attributes[fieldName(field)] = strings.TrimSpace(r.ReadAttribute(n, i))
		}
		if globalIdx >= 0 {
			rec.GlobalID = rec.Attributes[fieldName(t.fields[globalIdx])]
		}
		t.records = append(t.records, rec)
	}

	info, err := os.Stat(t.path)
	if err != nil {
		return errors.Wrapf(err, "stat %s", t.path)
	}
	t.modTime = info.ModTime()

	debug.Log("opened shapefile layer %s: %s, %d features", t.name, t.gtype, len(t.records))
	return nil
}

// Name returns the layer name
func (t *ShapefileTable) Name() string {
	return t.name
}

// GeometryType returns the layer's geometry type
func (t *ShapefileTable) GeometryType() GeometryType {
	return t.gtype
}

// Editable returns true if features can be added
func (t *ShapefileTable) Editable() bool {
	return t.editable
}

// AddFeature appends g to the shapefile
func (t *ShapefileTable) AddFeature(ctx context.Context, g geom.T) (int64, error) {
	if !t.editable {
		return 0, errors.Wrapf(ErrReadOnly, "layer %s", t.name)
	}
	if err := checkGeometry(t.gtype, g); err != nil {
		return 0, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return 0, err
	}

	info, err := os.Stat(t.path)
	if err != nil {
		return 0, errors.Wrapf(err, "stat %s", t.path)
	}
	if !info.ModTime().Equal(t.modTime) {
		return 0, errors.Wrapf(ErrWriteConflict, "%s was modified outside the editor", t.path)
	}

	rec := Record{
		ID:         int64(len(t.records)) + 1,
		GlobalID:   "{" + strings.ToUpper(uuid.NewString()) + "}",
		Geometry:   closePolygon(g),
		Attributes: map[string]string{},
	}

	records := append(t.records[:len(t.records):len(t.records)], rec)
	if err := t.rewrite(records); err != nil {
		return 0, err
	}

	info, err = os.Stat(t.path)
	if err != nil {
		return 0, errors.Wrapf(err, "stat %s", t.path)
	}
	t.modTime = info.ModTime()
	t.records = records

	debug.Log("added feature %d (%s) to %s", rec.ID, rec.GlobalID, t.name)
	return rec.ID, nil
}

// rewrite writes records to a temporary shapefile and moves it over the
// layer. On failure the layer's files are left as they were.
func (t *ShapefileTable) rewrite(records []Record) error {
	fields := t.fields
	if geo.FieldIndex(fields, GlobalIDField) < 0 {
		fields = append(fields[:len(fields):len(fields)], shp.StringField(GlobalIDField, 38))
	}

	base := strings.TrimSuffix(t.path, filepath.Ext(t.path))
	tmpBase := base + ".tmp"
	defer removeSet(tmpBase)

	if err := writeShapefile(tmpBase+".shp", t.shapeType, fields, records); err != nil {
		return err
	}

	if err := replaceSet(tmpBase, base); err != nil {
		return err
	}
	t.fields = fields
	return nil
}

// writeShapefile writes records and their attributes to a new shapefile
func writeShapefile(path string, shapeType shp.ShapeType, fields []shp.Field, records []Record) error {
	w, err := shp.Create(path, shapeType)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	if err := w.SetFields(fields); err != nil {
		w.Close()
		return errors.Wrap(err, "writing fields")
	}

	for _, rec := range records {
		s, err := toShape(rec.Geometry, shapeType)
		if err != nil {
			w.Close()
			return err
		}
		row := int(w.Write(s))

		for i, field := range fields {
			value := rec.Attributes[fieldName(field)]
			if fieldName(field) == GlobalIDField {
				value = rec.GlobalID
			}
			if value == "" {
				continue
			}
			if err := w.WriteAttribute(row, i, value); err != nil {
				w.Close()
				return errors.Wrapf(err, "writing attribute %s", fieldName(field))
			}
		}
	}
	w.Close()

	return geo.FixDBFName(path)
}

// rename is swapped in tests to simulate filesystem failures
var rename = os.Rename

// replaceSet moves the files of shapefile src over those of dst. The old
// files are parked under a backup name first and restored if any move fails.
func replaceSet(src, dst string) error {
	backup := dst + ".bak"
	var parked, placed []string

	rollback := func() {
		for _, ext := range placed {
			os.Remove(dst + ext)
		}
		for _, ext := range parked {
			if err := rename(backup+ext, dst+ext); err != nil {
				debug.Error("restoring %s%s: %v", dst, ext, err)
			}
		}
	}

	for _, ext := range shapefileSidecars {
		if err := rename(dst+ext, backup+ext); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			rollback()
			return errors.Wrapf(err, "backing up %s%s", dst, ext)
		}
		parked = append(parked, ext)
	}

	for _, ext := range shapefileSidecars {
		if err := rename(src+ext, dst+ext); err != nil {
			rollback()
			return errors.Wrapf(err, "replacing %s%s", dst, ext)
		}
		placed = append(placed, ext)
	}

	removeSet(backup)
	return nil
}

// removeSet deletes any files of the shapefile with the given base name
func removeSet(base string) {
	for _, ext := range shapefileSidecars {
		os.Remove(base + ext)
	}
}

// Query returns the features with the given ids
func (t *ShapefileTable) Query(ctx context.Context, ids ...int64) ([]Record, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]Record, 0, len(ids))
	for _, id := range ids {
		if id >= 1 && id <= int64(len(t.records)) {
			out = append(out, t.records[id-1])
		}
	}
	return out, nil
}

// Features returns every feature in the layer
func (t *ShapefileTable) Features(ctx context.Context) ([]Record, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]Record, len(t.records))
	copy(out, t.records)
	return out, nil
}

// Close releases the table; shapefiles hold no open handles
func (t *ShapefileTable) Close() error {
	return nil
}

func fieldName(f shp.Field) string {
	return strings.TrimRight(string(f.Name[:]), "\x00 ")
}
