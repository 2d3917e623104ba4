// Package editor drives an edit session against a chosen layer: it starts
// and discards sessions, reports which actions are available, and runs the
// save and post-save identify steps.
package editor

import (
	"context"
	"time"

	"mapedit/internal/debug"
	"mapedit/internal/edit"
	"mapedit/internal/identify"
	"mapedit/internal/layer"

	"github.com/pkg/errors"
)

// Listener is notified about save outcomes
type Listener interface {
	// FeatureAdded is called with the stored record after a successful save
	FeatureAdded(table layer.Table, rec layer.Record)

	// SaveFailed is called when the table rejects the new feature
	SaveFailed(err error)
}

// ActionState tells the UI which editing actions to offer
type ActionState struct {
	Save   bool
	Delete bool
	Undo   bool
}

// Controller owns the edit session for one layer at a time
type Controller struct {
	session         *edit.Session
	table           layer.Table
	listener        Listener
	identifyTimeout time.Duration
}

// Config holds controller settings
type Config struct {
	Tolerance       float64       // Hit radius in screen units
	IdentifyTimeout time.Duration // Bound on the post-save lookup
}

// NewController creates an idle controller
func NewController(cfg Config, listener Listener) *Controller {
	return &Controller{
		session:         edit.NewSession(edit.WithTolerance(cfg.Tolerance)),
		listener:        listener,
		identifyTimeout: cfg.IdentifyTimeout,
	}
}

// Start begins editing a new feature for table, replacing any session in progress
func (c *Controller) Start(table layer.Table) error {
	c.Cancel()

	if table == nil || !table.Editable() {
		return errors.Wrap(edit.ErrInvalidMode, "layer is not editable")
	}

	mode := layer.ModeFor(table.GeometryType())
	if err := c.session.Begin(mode); err != nil {
		c.session.Discard()
		return errors.Wrapf(err, "layer %s has %s geometry", table.Name(), table.GeometryType())
	}

	c.table = table
	debug.Log("editing %s (%s)", table.Name(), mode)
	return nil
}

// Cancel discards the session without saving
func (c *Controller) Cancel() {
	c.session.Discard()
	c.table = nil
}

// Editing returns true while a session is active
func (c *Controller) Editing() bool {
	return c.table != nil && c.session.Mode().Editable()
}

// Table returns the layer being edited, or nil
func (c *Controller) Table() layer.Table {
	return c.table
}

// Session returns the edit session for rendering
func (c *Controller) Session() *edit.Session {
	return c.session
}

// Tap forwards a screen tap to the session
func (c *Controller) Tap(x, y float64, proj edit.Projector) {
	c.session.HandleTap(x, y, proj)
}

// Delete removes the selected or last vertex when the delete action is
// enabled; it reports whether anything was removed
func (c *Controller) Delete() bool {
	if !c.session.CanDelete() {
		return false
	}
	c.session.DeleteSelectedOrLast()
	return true
}

// Undo steps back one edit
func (c *Controller) Undo() {
	c.session.Undo()
}

// Actions reports which actions are currently meaningful
func (c *Controller) Actions() ActionState {
	if !c.Editing() {
		return ActionState{}
	}
	return ActionState{
		Save:   c.session.IsSaveValid(),
		Delete: c.session.CanDelete(),
		Undo:   c.session.CanUndo(),
	}
}

// Save stores the shape in the active layer and ends the session.
// Too few vertices leaves the session untouched. A table failure is returned
// as a *PersistenceError and also passed to the listener; the session is
// discarded either way. After a successful add the new feature is looked up
// and handed to the listener; lookup problems are only logged.
func (c *Controller) Save(ctx context.Context) error {
	if !c.Editing() {
		return errors.Wrap(edit.ErrInvalidMode, "not editing")
	}

	g, err := c.session.BuildGeometry()
	if err != nil {
		return err
	}

	table := c.table
	c.session.MarkSaving()

	id, err := table.AddFeature(ctx, g)
	c.Cancel()

	if err != nil {
		perr := &PersistenceError{
			Layer:       table.Name(),
			Description: err.Error(),
			Err:         err,
		}
		debug.Error("%v: %v", perr, err)
		if c.listener != nil {
			c.listener.SaveFailed(perr)
		}
		return perr
	}

	debug.Log("saved feature %d to %s", id, table.Name())
	c.identify(ctx, table, id)
	return nil
}

// identify looks up a freshly added feature and notifies the listener
func (c *Controller) identify(ctx context.Context, table layer.Table, id int64) {
	future := identify.Go(ctx, c.identifyTimeout, func(ctx context.Context) ([]layer.Record, error) {
		return table.Query(ctx, id)
	})

	recs, err := future.Wait()
	if err != nil {
		debug.Error("identify feature %d in %s: %v", id, table.Name(), err)
		return
	}

	if len(recs) != 1 {
		debug.Warn("%v", &QueryMismatchError{Layer: table.Name(), FeatureID: id, Count: len(recs)})
		return
	}

	if c.listener == nil {
		debug.Warn("feature %d added to %s with no listener", id, table.Name())
		return
	}
	c.listener.FeatureAdded(table, recs[0])
}
