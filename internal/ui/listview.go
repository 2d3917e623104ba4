package ui

import (
	"fmt"

	"mapedit/internal/layer"
	"mapedit/internal/render"

	"github.com/gdamore/tcell/v2"
)

// ListView displays a scrollable list of editable layers
type ListView struct {
	panel
	tables        []layer.Table
	selectedIndex int
	scrollOffset  int
	maxVisible    int
}

// NewListView creates a new layer list view
func NewListView(x, y, width, height int) *ListView {
	l := &ListView{}
	l.UpdateDimensions(x, y, width, height)
	return l
}

// Update replaces the listed layers
func (l *ListView) Update(tables []layer.Table) {
	l.tables = tables

	if l.selectedIndex >= len(l.tables) {
		l.selectedIndex = len(l.tables) - 1
	}
	if l.selectedIndex < 0 {
		l.selectedIndex = 0
	}

	l.adjustScroll()
}

// SelectNext moves selection down
func (l *ListView) SelectNext() {
	if l.selectedIndex < len(l.tables)-1 {
		l.selectedIndex++
		l.adjustScroll()
	}
}

// SelectPrev moves selection up
func (l *ListView) SelectPrev() {
	if l.selectedIndex > 0 {
		l.selectedIndex--
		l.adjustScroll()
	}
}

// adjustScroll keeps the selected item visible
func (l *ListView) adjustScroll() {
	if l.selectedIndex >= l.scrollOffset+l.maxVisible {
		l.scrollOffset = l.selectedIndex - l.maxVisible + 1
	}

	if l.selectedIndex < l.scrollOffset {
		l.scrollOffset = l.selectedIndex
	}

	if l.scrollOffset < 0 {
		l.scrollOffset = 0
	}
}

// GetSelected returns the currently selected layer
func (l *ListView) GetSelected() layer.Table {
	if l.selectedIndex >= 0 && l.selectedIndex < len(l.tables) {
		return l.tables[l.selectedIndex]
	}
	return nil
}

// Draw renders the list view to the screen
func (l *ListView) Draw(screen tcell.Screen) {
	l.drawFrame(screen, "Layers")

	if len(l.tables) == 0 {
		l.text(screen, 2, 1, "No editable layers", render.StyleLabel.Dim(true))
		return
	}

	visibleCount := min(l.maxVisible, len(l.tables)-l.scrollOffset)
	for i := 0; i < visibleCount; i++ {
		index := l.scrollOffset + i
		table := l.tables[index]

		style := render.StyleListItem
		if index == l.selectedIndex {
			style = render.StyleListSelected
		}

		text := fmt.Sprintf("%-*s %s", max(l.width-12, 1), table.Name(), table.GeometryType())
		n := l.text(screen, 1, i+1, text, style)
		for j := n; j < l.width-2; j++ {
			screen.SetContent(l.x+1+j, l.y+i+1, ' ', nil, style)
		}
	}

	if len(l.tables) > l.maxVisible {
		screen.SetContent(l.x+l.width-2, l.y, '↕', nil, render.StyleLabel)
	}
}

// UpdateDimensions moves and resizes the view
func (l *ListView) UpdateDimensions(x, y, width, height int) {
	l.panel.UpdateDimensions(x, y, width, height)
	l.maxVisible = max(height-2, 1)
	l.adjustScroll()
}
