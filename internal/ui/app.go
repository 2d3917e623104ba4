package ui

import (
	"context"
	"fmt"
	"time"

	"mapedit/internal/config"
	"mapedit/internal/debug"
	"mapedit/internal/edit"
	"mapedit/internal/editor"
	"mapedit/internal/geo"
	"mapedit/internal/layer"

	"github.com/gdamore/tcell/v2"
	"github.com/pkg/errors"
)

// Panel sizes
const (
	listWidth    = 30
	listHeight   = 8
	statusWidth  = 44
	statusHeight = 10
	panStep      = 2
)

// App is the main application controller
type App struct {
	screen     tcell.Screen
	mapView    *MapView
	listView   *ListView
	statusView *StatusView
	controller *editor.Controller

	shown     layer.Table // Layer whose features are drawn
	records   []layer.Record
	lastAdded int64
	buttons   tcell.ButtonMask

	events chan tcell.Event
	ctx    context.Context
	cancel context.CancelFunc
}

// NewApp creates a new application on the terminal
func NewApp(cfg config.Config, tables []layer.Table, basemap geo.Basemap) (*App, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create screen")
	}

	if err := screen.Init(); err != nil {
		return nil, errors.Wrap(err, "failed to initialize screen")
	}

	return newAppWithScreen(screen, cfg, tables, basemap), nil
}

// newAppWithScreen builds the application on an initialized screen
func newAppWithScreen(screen tcell.Screen, cfg config.Config, tables []layer.Table, basemap geo.Basemap) *App {
	screen.SetStyle(tcell.StyleDefault)
	screen.EnableMouse()
	screen.Clear()

	width, height := screen.Size()
	center := geo.LatLon{Lat: cfg.CenterLat, Lon: cfg.CenterLon}

	ctx, cancel := context.WithCancel(context.Background())

	app := &App{
		screen:     screen,
		mapView:    NewMapView(width, height, basemap, center, cfg.RadiusMiles, cfg.AspectRatio),
		listView:   NewListView(0, 0, listWidth, listHeight),
		statusView: NewStatusView(0, height-statusHeight, statusWidth, statusHeight),
		events:     make(chan tcell.Event, 16),
		ctx:        ctx,
		cancel:     cancel,
	}
	app.controller = editor.NewController(editor.Config{
		Tolerance:       cfg.Tolerance,
		IdentifyTimeout: cfg.IdentifyTimeout,
	}, app)

	app.listView.Update(tables)
	app.update()
	return app
}

// Run starts the application main loop
func (a *App) Run() error {
	defer a.cleanup()

	go a.pollEvents()

	ticker := time.NewTicker(100 * time.Millisecond) // 10 FPS
	defer ticker.Stop()

	a.render()
	for {
		select {
		case <-a.ctx.Done():
			return nil

		case ev := <-a.events:
			if !a.handleEvent(ev) {
				return nil
			}

		case <-ticker.C:
			a.render()
		}
	}
}

// Stop ends Run
func (a *App) Stop() {
	a.cancel()
}

// pollEvents forwards terminal events to the main loop until the screen is
// finalized
func (a *App) pollEvents() {
	for {
		ev := a.screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case a.events <- ev:
		case <-a.ctx.Done():
			return
		}
	}
}

// FeatureAdded records a saved feature for display
func (a *App) FeatureAdded(table layer.Table, rec layer.Record) {
	if a.shown == table {
		a.records = append(a.records, rec)
	}
	a.lastAdded = rec.ID
	a.statusView.SetFeature(rec)
	a.statusView.SetMessage(fmt.Sprintf("Saved to %s", table.Name()))
}

// SaveFailed shows a persistence failure
func (a *App) SaveFailed(err error) {
	a.statusView.SetError(err)
}

// update refreshes panel state from the controller
func (a *App) update() {
	a.statusView.SetEditState(a.controller)
}

// render renders the current view to the screen
func (a *App) render() {
	a.screen.Clear()

	var session *edit.Session
	if a.controller.Editing() {
		session = a.controller.Session()
	}
	a.mapView.Draw(a.screen, a.records, a.lastAdded, session)

	if !a.controller.Editing() {
		a.listView.Draw(a.screen)
	}
	a.statusView.Draw(a.screen)

	a.screen.Show()
}

// handleEvent processes keyboard and mouse events.
// Returns false when the application should quit.
func (a *App) handleEvent(ev tcell.Event) bool {
	defer a.update()

	switch ev := ev.(type) {
	case *tcell.EventKey:
		return a.handleKey(ev)

	case *tcell.EventMouse:
		a.handleMouse(ev)

	case *tcell.EventResize:
		a.handleResize()
	}

	return true
}

func (a *App) handleKey(ev *tcell.EventKey) bool {
	editing := a.controller.Editing()

	switch ev.Key() {
	case tcell.KeyEscape:
		if !editing {
			return false
		}
		a.controller.Cancel()
		a.statusView.SetMessage("Edit discarded")

	case tcell.KeyEnter:
		if !editing {
			a.startEditing()
		}

	case tcell.KeyUp:
		if editing {
			a.mapView.Pan(0, -panStep)
		} else {
			a.listView.SelectPrev()
		}

	case tcell.KeyDown:
		if editing {
			a.mapView.Pan(0, panStep)
		} else {
			a.listView.SelectNext()
		}

	case tcell.KeyLeft:
		a.mapView.Pan(-panStep*2, 0)

	case tcell.KeyRight:
		a.mapView.Pan(panStep*2, 0)

	case tcell.KeyDelete, tcell.KeyBackspace, tcell.KeyBackspace2:
		a.deleteVertex()

	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q', 'Q':
			return false

		case 's', 'S':
			if editing {
				a.save()
			}

		case 'd', 'D':
			a.deleteVertex()

		case 'u', 'U':
			if editing {
				a.controller.Undo()
			}

		case 'r', 'R':
			a.screen.Sync()

		case '+', '=':
			a.mapView.ZoomIn()

		case '-', '_':
			a.mapView.ZoomOut()
		}
	}

	return true
}

// deleteVertex runs the delete action only while the panel offers it
func (a *App) deleteVertex() {
	if !a.controller.Actions().Delete {
		return
	}
	a.controller.Delete()
}

// handleMouse turns a primary button press on the map into a tap
func (a *App) handleMouse(ev *tcell.EventMouse) {
	buttons := ev.Buttons()
	pressed := buttons&tcell.Button1 != 0 && a.buttons&tcell.Button1 == 0
	a.buttons = buttons

	if !pressed || !a.controller.Editing() {
		return
	}

	x, y := ev.Position()
	if a.statusView.contains(x, y) {
		return
	}

	px, py := CellCenter(x, y)
	a.controller.Tap(px, py, a.mapView.Projector())
}

// startEditing begins a new feature in the selected layer
func (a *App) startEditing() {
	table := a.listView.GetSelected()
	if table == nil {
		return
	}

	if err := a.controller.Start(table); err != nil {
		a.statusView.SetError(err)
		return
	}

	if a.shown != table {
		a.showLayer(table)
	}
	a.statusView.SetMessage(fmt.Sprintf("Tap the map to add %s vertices", a.controller.Session().Mode()))
}

// showLayer loads a layer's features for drawing
func (a *App) showLayer(table layer.Table) {
	records, err := table.Features(a.ctx)
	if err != nil {
		debug.Error("loading features of %s: %v", table.Name(), err)
		records = nil
	}

	a.shown = table
	a.records = records
	a.lastAdded = 0
	a.mapView.CenterOnRecords(records)
}

func (a *App) save() {
	err := a.controller.Save(a.ctx)

	var perr *editor.PersistenceError
	switch {
	case err == nil:
	case errors.As(err, &perr):
		// Already reported through SaveFailed
	case errors.Is(err, edit.ErrInsufficientVertices):
		mode := a.controller.Session().Mode()
		a.statusView.SetError(errors.Errorf("%s needs at least %d vertices", mode, mode.MinVertices()))
	default:
		a.statusView.SetError(err)
	}
}

// handleResize handles terminal resize events
func (a *App) handleResize() {
	a.screen.Sync()
	width, height := a.screen.Size()

	a.mapView.UpdateDimensions(width, height)
	a.listView.UpdateDimensions(0, 0, listWidth, listHeight)
	a.statusView.UpdateDimensions(0, height-statusHeight, statusWidth, statusHeight)
}

// cleanup performs cleanup before exit
func (a *App) cleanup() {
	if a.cancel != nil {
		a.cancel()
	}

	if a.screen != nil {
		a.screen.Fini()
	}
}
