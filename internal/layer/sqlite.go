package layer

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"mapedit/internal/debug"

	"github.com/google/uuid"
	"github.com/ncruces/go-sqlite3"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/pkg/errors"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/wkb"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS layer_meta (
    name          TEXT NOT NULL,
    geometry_type TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS features (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    global_id  TEXT NOT NULL UNIQUE,
    geom       BLOB NOT NULL,
    created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// SQLiteTable is a feature table stored in its own SQLite database.
// Geometries are kept as little-endian WKB.
type SQLiteTable struct {
	db    *sql.DB
	path  string
	name  string
	gtype GeometryType
}

func openDB(path, mode string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=%s&_pragma=busy_timeout(2000)", path, mode)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

// CreateSQLite creates a new SQLite layer with the given name and geometry type
func CreateSQLite(ctx context.Context, path, name string, g GeometryType) (*SQLiteTable, error) {
	if !ModeFor(g).Editable() {
		return nil, errors.Errorf("cannot create a layer of %s geometry", g)
	}
	if _, err := os.Stat(path); err == nil {
		return nil, errors.Errorf("layer %s already exists", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "mkdir layer dir")
	}

	db, err := openDB(path, "rwc")
	if err != nil {
		return nil, errors.Wrapf(err, "creating %s", path)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return nil, errors.Wrap(err, "creating schema")
	}
	if _, err := db.ExecContext(ctx,
		`INSERT INTO layer_meta (name, geometry_type) VALUES (?, ?)`, name, g.String()); err != nil {
		return nil, errors.Wrap(err, "writing layer metadata")
	}

	return OpenSQLite(ctx, path)
}

// OpenSQLite opens an existing SQLite layer
func OpenSQLite(ctx context.Context, path string) (*SQLiteTable, error) {
	db, err := openDB(path, "rw")
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}

	var name, gtype string
	row := db.QueryRowContext(ctx, `SELECT name, geometry_type FROM layer_meta LIMIT 1`)
	if err := row.Scan(&name, &gtype); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "reading layer metadata from %s", path)
	}

	g, err := ParseGeometryType(gtype)
	if err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "layer %s", path)
	}

	debug.Log("opened sqlite layer %s: %s", name, g)
	return &SQLiteTable{db: db, path: path, name: name, gtype: g}, nil
}

// Name returns the layer name
func (t *SQLiteTable) Name() string {
	return t.name
}

// GeometryType returns the layer's geometry type
func (t *SQLiteTable) GeometryType() GeometryType {
	return t.gtype
}

// Editable returns true; SQLite layers are always writable
func (t *SQLiteTable) Editable() bool {
	return true
}

// AddFeature inserts g and returns its row id
func (t *SQLiteTable) AddFeature(ctx context.Context, g geom.T) (int64, error) {
	if err := checkGeometry(t.gtype, g); err != nil {
		return 0, err
	}

	data, err := wkb.Marshal(closePolygon(g), binary.LittleEndian)
	if err != nil {
		return 0, errors.Wrap(err, "encoding geometry")
	}

	globalID := uuid.NewString()
	res, err := t.db.ExecContext(ctx,
		`INSERT INTO features (global_id, geom) VALUES (?, ?)`, globalID, data)
	if err != nil {
		return 0, classifySQLiteError(err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, errors.Wrap(err, "reading new feature id")
	}

	debug.Log("added feature %d (%s) to %s", id, globalID, t.name)
	return id, nil
}

// classifySQLiteError maps SQLite failures onto the table error kinds
func classifySQLiteError(err error) error {
	switch {
	case errors.Is(err, sqlite3.CONSTRAINT):
		return errors.Wrap(ErrConstraintViolation, err.Error())
	case errors.Is(err, sqlite3.BUSY), errors.Is(err, sqlite3.LOCKED):
		return errors.Wrap(ErrWriteConflict, err.Error())
	case errors.Is(err, sqlite3.READONLY):
		return errors.Wrap(ErrReadOnly, err.Error())
	default:
		return errors.Wrap(err, "inserting feature")
	}
}

// Query returns the features with the given ids
func (t *SQLiteTable) Query(ctx context.Context, ids ...int64) ([]Record, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	return t.query(ctx,
		`SELECT id, global_id, geom, created_at FROM features WHERE id IN (`+placeholders+`) ORDER BY id`,
		args...)
}

// Features returns every feature in the layer
func (t *SQLiteTable) Features(ctx context.Context) ([]Record, error) {
	return t.query(ctx, `SELECT id, global_id, geom, created_at FROM features ORDER BY id`)
}

func (t *SQLiteTable) query(ctx context.Context, q string, args ...interface{}) ([]Record, error) {
	rows, err := t.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, errors.Wrap(err, "querying features")
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			rec       Record
			data      []byte
			createdAt string
		)
		if err := rows.Scan(&rec.ID, &rec.GlobalID, &data, &createdAt); err != nil {
			return nil, errors.Wrap(err, "scanning feature")
		}
		rec.Geometry, err = wkb.Unmarshal(data)
		if err != nil {
			return nil, errors.Wrapf(err, "decoding feature %d", rec.ID)
		}
		rec.Attributes = map[string]string{"created_at": createdAt}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Close closes the database
func (t *SQLiteTable) Close() error {
	return t.db.Close()
}
