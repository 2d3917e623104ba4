package layer

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"mapedit/internal/debug"

	"github.com/pkg/errors"
)

// SQLiteExt is the file extension of SQLite layers
const SQLiteExt = ".sqlite"

// Catalog is the set of layers found in a directory
type Catalog struct {
	dir    string
	tables []Table
}

// OpenCatalog opens every shapefile and SQLite layer in dir.
// Layers that fail to open are logged and skipped.
func OpenCatalog(ctx context.Context, dir string) (*Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "reading layer directory %s", dir)
	}

	c := &Catalog{dir: dir}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())

		var (
			table Table
			err   error
		)
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".shp":
			if strings.HasSuffix(entry.Name(), ".tmp.shp") {
				continue
			}
			table, err = OpenShapefile(path)
		case SQLiteExt:
			table, err = OpenSQLite(ctx, path)
		default:
			continue
		}
		if err != nil {
			debug.Warn("skipping layer %s: %v", path, err)
			continue
		}
		c.tables = append(c.tables, table)
	}

	sort.Slice(c.tables, func(i, j int) bool {
		return c.tables[i].Name() < c.tables[j].Name()
	})

	return c, nil
}

// Dir returns the catalog directory
func (c *Catalog) Dir() string {
	return c.dir
}

// All returns every layer sorted by name
func (c *Catalog) All() []Table {
	return c.tables
}

// Editable returns the layers features can be added to
func (c *Catalog) Editable() []Table {
	out := make([]Table, 0, len(c.tables))
	for _, t := range c.tables {
		if t.Editable() && ModeFor(t.GeometryType()).Editable() {
			out = append(out, t)
		}
	}
	return out
}

// Close closes every layer
func (c *Catalog) Close() error {
	var first error
	for _, t := range c.tables {
		if err := t.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
