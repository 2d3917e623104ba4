package editor

import (
	"context"
	"sync"
	"testing"
	"time"

	"mapedit/internal/edit"
	"mapedit/internal/layer"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
)

type fakeTable struct {
	name     string
	gtype    layer.GeometryType
	editable bool

	mu      sync.Mutex
	added   []geom.T
	addErr  error
	records map[int64]layer.Record
	extra   int           // Duplicate records returned by Query
	stall   chan struct{} // Query blocks until closed when set
}

func newFakeTable(gtype layer.GeometryType) *fakeTable {
	return &fakeTable{
		name:     "test",
		gtype:    gtype,
		editable: true,
		records:  map[int64]layer.Record{},
	}
}

func (f *fakeTable) Name() string                     { return f.name }
func (f *fakeTable) GeometryType() layer.GeometryType { return f.gtype }
func (f *fakeTable) Editable() bool                   { return f.editable }
func (f *fakeTable) Close() error                     { return nil }

func (f *fakeTable) AddFeature(ctx context.Context, g geom.T) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.addErr != nil {
		return 0, f.addErr
	}
	f.added = append(f.added, g)
	id := int64(len(f.added))
	f.records[id] = layer.Record{ID: id, Geometry: g}
	return id, nil
}

func (f *fakeTable) Query(ctx context.Context, ids ...int64) ([]layer.Record, error) {
	if f.stall != nil {
		<-f.stall
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	var out []layer.Record
	for _, id := range ids {
		if rec, ok := f.records[id]; ok {
			out = append(out, rec)
			for i := 0; i < f.extra; i++ {
				out = append(out, rec)
			}
		}
	}
	return out, nil
}

func (f *fakeTable) Features(ctx context.Context) ([]layer.Record, error) {
	return f.Query(ctx, 1)
}

type recordingListener struct {
	added  []layer.Record
	failed []error
}

func (l *recordingListener) FeatureAdded(table layer.Table, rec layer.Record) {
	l.added = append(l.added, rec)
}

func (l *recordingListener) SaveFailed(err error) {
	l.failed = append(l.failed, err)
}

type identityProjector struct{}

func (identityProjector) ToMap(x, y float64) edit.Point         { return edit.Point{X: x, Y: y} }
func (identityProjector) ToScreen(p edit.Point) (float64, float64) { return p.X, p.Y }

func newController(t *testing.T, table layer.Table) (*Controller, *recordingListener) {
	l := &recordingListener{}
	c := NewController(Config{Tolerance: 1, IdentifyTimeout: time.Second}, l)
	require.NoError(t, c.Start(table))
	return c, l
}

func tapAll(c *Controller, pts ...edit.Point) {
	for _, p := range pts {
		c.Tap(p.X, p.Y, identityProjector{})
	}
}

func TestStartPicksModeFromLayer(t *testing.T) {
	for gtype, mode := range map[layer.GeometryType]edit.Mode{
		layer.GeometryPoint:    edit.ModePoint,
		layer.GeometryPolyline: edit.ModePolyline,
		layer.GeometryPolygon:  edit.ModePolygon,
	} {
		c, _ := newController(t, newFakeTable(gtype))
		require.Equal(t, mode, c.Session().Mode())
		require.True(t, c.Editing())
	}
}

func TestStartRejectsReadOnlyAndUnknownLayers(t *testing.T) {
	c := NewController(Config{}, nil)

	ro := newFakeTable(layer.GeometryPolygon)
	ro.editable = false
	require.ErrorIs(t, c.Start(ro), edit.ErrInvalidMode)

	require.ErrorIs(t, c.Start(newFakeTable(layer.GeometryUnknown)), edit.ErrInvalidMode)
	require.False(t, c.Editing())
	require.Nil(t, c.Table())
}

func TestActions(t *testing.T) {
	c, _ := newController(t, newFakeTable(layer.GeometryPolygon))
	require.Equal(t, ActionState{}, c.Actions())

	tapAll(c, edit.Point{X: 0, Y: 0}, edit.Point{X: 10, Y: 0})
	require.Equal(t, ActionState{Save: false, Delete: true, Undo: true}, c.Actions())

	tapAll(c, edit.Point{X: 10, Y: 10})
	require.Equal(t, ActionState{Save: true, Delete: true, Undo: true}, c.Actions())

	// Selecting a midpoint disables delete
	tapAll(c, edit.Point{X: 5, Y: 0})
	require.True(t, c.Session().Selection().IsMidpoint())
	require.False(t, c.Actions().Delete)

	c.Cancel()
	require.Equal(t, ActionState{}, c.Actions())
}

func TestPointLayerNeverOffersDelete(t *testing.T) {
	c, _ := newController(t, newFakeTable(layer.GeometryPoint))
	tapAll(c, edit.Point{X: 3, Y: 4})
	require.Equal(t, ActionState{Save: true, Delete: false, Undo: true}, c.Actions())

	history := c.Session().HistoryLen()
	require.False(t, c.Delete())
	require.Equal(t, 1, c.Session().VertexCount())
	require.Equal(t, history, c.Session().HistoryLen())
}

func TestDeleteFollowsActions(t *testing.T) {
	c, _ := newController(t, newFakeTable(layer.GeometryPolyline))
	require.False(t, c.Delete())

	tapAll(c, edit.Point{X: 0, Y: 0}, edit.Point{X: 10, Y: 0})
	tapAll(c, edit.Point{X: 5, Y: 0})
	require.True(t, c.Session().Selection().IsMidpoint())
	require.False(t, c.Delete())
	require.Equal(t, 2, c.Session().VertexCount())

	// Placing the midpoint clears the selection and re-enables delete
	tapAll(c, edit.Point{X: 5, Y: 50})
	require.Equal(t, 3, c.Session().VertexCount())
	require.True(t, c.Delete())
	require.Equal(t, 2, c.Session().VertexCount())
}

func TestSaveAddsAndIdentifies(t *testing.T) {
	table := newFakeTable(layer.GeometryPolyline)
	c, l := newController(t, table)

	tapAll(c, edit.Point{X: 0, Y: 0}, edit.Point{X: 10, Y: 10})
	require.NoError(t, c.Save(context.Background()))

	require.Len(t, table.added, 1)
	line, ok := table.added[0].(*geom.LineString)
	require.True(t, ok)
	require.Equal(t, []geom.Coord{{0, 0}, {10, 10}}, line.Coords())

	require.Len(t, l.added, 1)
	require.Equal(t, int64(1), l.added[0].ID)
	require.Empty(t, l.failed)

	require.False(t, c.Editing())
	require.Equal(t, edit.ModeNone, c.Session().Mode())
}

func TestSaveWithTooFewVerticesKeepsEditing(t *testing.T) {
	table := newFakeTable(layer.GeometryPolygon)
	c, l := newController(t, table)
	tapAll(c, edit.Point{X: 0, Y: 0}, edit.Point{X: 10, Y: 0})

	err := c.Save(context.Background())
	require.ErrorIs(t, err, edit.ErrInsufficientVertices)

	require.True(t, c.Editing())
	require.Equal(t, 2, c.Session().VertexCount())
	require.Empty(t, table.added)
	require.Empty(t, l.added)
	require.Empty(t, l.failed)
}

func TestSaveFailureReportsPersistenceError(t *testing.T) {
	table := newFakeTable(layer.GeometryPoint)
	table.addErr = errors.Wrap(layer.ErrConstraintViolation, "disk says no")
	c, l := newController(t, table)
	tapAll(c, edit.Point{X: 1, Y: 1})

	err := c.Save(context.Background())
	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	require.Equal(t, "test", perr.Layer)
	require.Contains(t, perr.Description, "constraint")
	require.Contains(t, perr.Description, "disk says no")
	require.ErrorIs(t, err, layer.ErrConstraintViolation)

	require.Len(t, l.failed, 1)
	require.Empty(t, l.added)
	require.False(t, c.Editing())
}

func TestSaveWhenIdle(t *testing.T) {
	c := NewController(Config{}, nil)
	require.ErrorIs(t, c.Save(context.Background()), edit.ErrInvalidMode)
}

func TestIdentifyMismatchIsNotDelivered(t *testing.T) {
	table := newFakeTable(layer.GeometryPoint)
	table.extra = 1
	c, l := newController(t, table)
	tapAll(c, edit.Point{X: 1, Y: 1})

	require.NoError(t, c.Save(context.Background()))
	require.Len(t, table.added, 1)
	require.Empty(t, l.added)
	require.Empty(t, l.failed)
}

func TestIdentifyTimeout(t *testing.T) {
	table := newFakeTable(layer.GeometryPoint)
	table.stall = make(chan struct{})
	defer close(table.stall)

	l := &recordingListener{}
	c := NewController(Config{IdentifyTimeout: 20 * time.Millisecond}, l)
	require.NoError(t, c.Start(table))
	tapAll(c, edit.Point{X: 1, Y: 1})

	start := time.Now()
	require.NoError(t, c.Save(context.Background()))
	require.Less(t, time.Since(start), 2*time.Second)
	require.Empty(t, l.added)
}

func TestErrorMessages(t *testing.T) {
	perr := &PersistenceError{Layer: "roads", Description: "locked"}
	require.Equal(t, "could not add feature to roads: locked", perr.Error())

	qerr := &QueryMismatchError{Layer: "roads", FeatureID: 7, Count: 0}
	require.Equal(t, "query for feature 7 in roads expected 1 result, got 0", qerr.Error())
}
