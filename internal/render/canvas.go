package render

import (
	"github.com/gdamore/tcell/v2"
)

// Canvas is a 2D grid of styled cells that is drawn off-screen and then
// copied to the terminal in one pass
type Canvas struct {
	width  int
	height int
	cells  [][]Cell
}

// Cell represents a single character cell with style
type Cell struct {
	Char  rune
	Style tcell.Style
}

var blank = Cell{Char: ' ', Style: tcell.StyleDefault}

// NewCanvas creates a new blank canvas
func NewCanvas(width, height int) *Canvas {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}

	cells := make([][]Cell, height)
	for i := range cells {
		cells[i] = make([]Cell, width)
	}

	c := &Canvas{
		width:  width,
		height: height,
		cells:  cells,
	}
	c.Clear()
	return c
}

// Set sets the character and style at the given position.
// (0,0) is the top-left cell; positions off the canvas are ignored.
func (c *Canvas) Set(x, y int, char rune, style tcell.Style) {
	if c.contains(x, y) {
		c.cells[y][x] = Cell{Char: char, Style: style}
	}
}

// Get retrieves the cell at the given position
func (c *Canvas) Get(x, y int) Cell {
	if c.contains(x, y) {
		return c.cells[y][x]
	}
	return blank
}

func (c *Canvas) contains(x, y int) bool {
	return x >= 0 && x < c.width && y >= 0 && y < c.height
}

// Clear resets the entire canvas to spaces with default style
func (c *Canvas) Clear() {
	for y := range c.cells {
		for x := range c.cells[y] {
			c.cells[y][x] = blank
		}
	}
}

// DrawText draws a string at the given position
func (c *Canvas) DrawText(x, y int, text string, style tcell.Style) {
	i := 0
	for _, char := range text {
		c.Set(x+i, y, char, style)
		i++
	}
}

// DrawLine draws a line between two cells with Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int, char rune, style tcell.Style) {
	dx := abs(x1 - x0)
	dy := abs(y1 - y0)

	sx := -1
	if x0 < x1 {
		sx = 1
	}

	sy := -1
	if y0 < y1 {
		sy = 1
	}

	err := dx - dy

	for {
		c.Set(x0, y0, char, style)

		if x0 == x1 && y0 == y1 {
			break
		}

		e2 := 2 * err

		if e2 > -dy {
			err -= dy
			x0 += sx
		}

		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// Width returns the canvas width
func (c *Canvas) Width() int {
	return c.width
}

// Height returns the canvas height
func (c *Canvas) Height() int {
	return c.height
}

// Blit renders the canvas to a tcell screen
func (c *Canvas) Blit(screen tcell.Screen, offsetX, offsetY int) {
	for y := 0; y < c.height; y++ {
		for x := 0; x < c.width; x++ {
			cell := c.cells[y][x]
			screen.SetContent(offsetX+x, offsetY+y, cell.Char, nil, cell.Style)
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
