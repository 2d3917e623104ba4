package ui

import (
	"fmt"

	"mapedit/internal/debug"
	"mapedit/internal/editor"
	"mapedit/internal/layer"
	"mapedit/internal/render"

	"github.com/gdamore/tcell/v2"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// StatusView shows the edit state, the available actions, the last message
// and the most recently added feature
type StatusView struct {
	panel
	layerName string
	mode      string
	vertices  int
	actions   editor.ActionState
	editing   bool
	message   string
	isError   bool
	feature   *layer.Record
	featureGJ string
}

// NewStatusView creates a new status view
func NewStatusView(x, y, width, height int) *StatusView {
	s := &StatusView{}
	s.UpdateDimensions(x, y, width, height)
	return s
}

// SetEditState updates the editing summary
func (s *StatusView) SetEditState(c *editor.Controller) {
	s.editing = c.Editing()
	s.actions = c.Actions()
	s.vertices = c.Session().VertexCount()
	s.mode = c.Session().Mode().String()
	s.layerName = ""
	if t := c.Table(); t != nil {
		s.layerName = t.Name()
	}
}

// SetMessage shows an informational message
func (s *StatusView) SetMessage(msg string) {
	s.message = msg
	s.isError = false
}

// SetError shows an error message
func (s *StatusView) SetError(err error) {
	s.message = err.Error()
	s.isError = true
}

// Message returns the current message
func (s *StatusView) Message() string {
	return s.message
}

// SetFeature shows a newly added feature as GeoJSON
func (s *StatusView) SetFeature(rec layer.Record) {
	s.feature = &rec
	s.featureGJ = ""

	data, err := geojson.Marshal(rec.Geometry)
	if err != nil {
		debug.Warn("encoding feature %d as GeoJSON: %v", rec.ID, err)
		return
	}
	s.featureGJ = string(data)
}

// FeatureJSON returns the GeoJSON of the last added feature
func (s *StatusView) FeatureJSON() string {
	return s.featureGJ
}

// Draw renders the status view to the screen
func (s *StatusView) Draw(screen tcell.Screen) {
	s.drawFrame(screen, "Edit")

	row := 1
	bottom := s.height - 1
	line := func(text string, style tcell.Style) {
		for _, l := range wrap(text, s.innerWidth()) {
			if row >= bottom {
				return
			}
			s.text(screen, 2, row, l, style)
			row++
		}
	}

	if s.editing {
		line(fmt.Sprintf("Layer: %s (%s)", s.layerName, s.mode), render.StyleLabel)
		line(fmt.Sprintf("Vertices: %d", s.vertices), render.StyleLabel)
		if row < bottom {
			s.drawActions(screen, row)
			row++
		}
	} else {
		line("Select a layer and press Enter", render.StyleLabel.Dim(true))
	}

	if s.message != "" {
		style := render.StyleLabel
		if s.isError {
			style = render.StyleError
		}
		line(s.message, style)
	}

	if s.feature != nil {
		line(fmt.Sprintf("Added #%d %s", s.feature.ID, s.feature.GlobalID), render.StyleLabel)
		line(s.featureGJ, render.StyleLabel.Dim(true))
	}
}

// drawActions writes the key hints, dimming the ones that do nothing now
func (s *StatusView) drawActions(screen tcell.Screen, row int) {
	actions := []struct {
		label string
		on    bool
	}{
		{"[s]ave", s.actions.Save},
		{"[d]elete", s.actions.Delete},
		{"[u]ndo", s.actions.Undo},
		{"[esc]", true},
	}

	col := 2
	for _, a := range actions {
		style := render.StyleActionOff
		if a.on {
			style = render.StyleActionOn
		}
		col += s.text(screen, col, row, a.label, style) + 1
	}
}
