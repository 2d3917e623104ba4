package ui

import (
	"mapedit/internal/render"

	"github.com/gdamore/tcell/v2"
)

// panel is a bordered, opaque rectangle drawn over the map
type panel struct {
	x, y          int
	width, height int
}

// UpdateDimensions moves and resizes the panel
func (p *panel) UpdateDimensions(x, y, width, height int) {
	p.x = x
	p.y = y
	p.width = width
	p.height = height
}

func (p *panel) contains(x, y int) bool {
	return x >= p.x && x < p.x+p.width && y >= p.y && y < p.y+p.height
}

// drawFrame clears the interior, draws the border and centers title on it
func (p *panel) drawFrame(screen tcell.Screen, title string) {
	if p.width < 2 || p.height < 2 {
		return
	}

	for row := p.y + 1; row < p.y+p.height-1; row++ {
		for col := p.x + 1; col < p.x+p.width-1; col++ {
			screen.SetContent(col, row, ' ', nil, tcell.StyleDefault)
		}
	}

	style := render.StyleLabel
	screen.SetContent(p.x, p.y, '┌', nil, style)
	screen.SetContent(p.x+p.width-1, p.y, '┐', nil, style)
	screen.SetContent(p.x, p.y+p.height-1, '└', nil, style)
	screen.SetContent(p.x+p.width-1, p.y+p.height-1, '┘', nil, style)

	for i := 1; i < p.width-1; i++ {
		screen.SetContent(p.x+i, p.y, '─', nil, style)
		screen.SetContent(p.x+i, p.y+p.height-1, '─', nil, style)
	}

	for i := 1; i < p.height-1; i++ {
		screen.SetContent(p.x, p.y+i, '│', nil, style)
		screen.SetContent(p.x+p.width-1, p.y+i, '│', nil, style)
	}

	if title != "" {
		p.text(screen, (p.width-len([]rune(title)))/2, 0, title, style)
	}
}

// text writes s at an offset inside the panel, clipped to the border.
// Returns the number of cells written.
func (p *panel) text(screen tcell.Screen, dx, dy int, s string, style tcell.Style) int {
	n := 0
	for _, ch := range s {
		col := p.x + dx + n
		if col >= p.x+p.width-1 {
			break
		}
		screen.SetContent(col, p.y+dy, ch, nil, style)
		n++
	}
	return n
}

// innerWidth is the usable width between the borders with one cell padding
func (p *panel) innerWidth() int {
	return p.width - 4
}

// wrap breaks s into lines of at most width runes
func wrap(s string, width int) []string {
	if width <= 0 {
		return nil
	}

	var lines []string
	runes := []rune(s)
	for len(runes) > width {
		lines = append(lines, string(runes[:width]))
		runes = runes[width:]
	}
	if len(runes) > 0 {
		lines = append(lines, string(runes))
	}
	return lines
}
