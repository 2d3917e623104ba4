package render

import (
	"mapedit/internal/geo"

	"github.com/gdamore/tcell/v2"
)

// Basemap styles
var (
	StyleStateBorder = tcell.StyleDefault.Foreground(tcell.ColorDarkGray)
	StyleRiver       = tcell.StyleDefault.Foreground(tcell.ColorDarkCyan)
	StyleCoastline   = tcell.StyleDefault.Foreground(tcell.ColorDarkBlue)
	StyleCity        = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	StyleLabel       = tcell.StyleDefault.Foreground(tcell.ColorWhite)
)

// Layer and edit overlay styles
var (
	StyleFeature      = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	StyleLastAdded    = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true).Reverse(true)
	StyleSketch       = tcell.StyleDefault.Foreground(tcell.ColorFuchsia)
	StyleVertex       = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	StyleMidpoint     = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	StyleHandleActive = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
)

// Panel styles
var (
	StyleListItem     = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	StyleListSelected = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorWhite)
	StyleActionOn     = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	StyleActionOff    = tcell.StyleDefault.Foreground(tcell.ColorGray).Dim(true)
	StyleError        = tcell.StyleDefault.Foreground(tcell.ColorRed)
)

// Glyphs
const (
	GlyphVertex   = '●'
	GlyphMidpoint = '○'
	GlyphPoint    = '■'
	GlyphCity     = '·'
	GlyphSketch   = '*'
	GlyphFeature  = '#'
)

// GetStyleForFeature returns the appropriate style for a basemap feature type
func GetStyleForFeature(ftype geo.FeatureType) tcell.Style {
	switch ftype {
	case geo.FeatureStateBorder:
		return StyleStateBorder
	case geo.FeatureRiver:
		return StyleRiver
	case geo.FeatureCoastline:
		return StyleCoastline
	case geo.FeatureCity:
		return StyleCity
	default:
		return tcell.StyleDefault
	}
}

// GetCharForFeature returns the character used to draw a basemap feature type
func GetCharForFeature(ftype geo.FeatureType) rune {
	switch ftype {
	case geo.FeatureRiver:
		return '~'
	case geo.FeatureStateBorder, geo.FeatureCoastline:
		return '-'
	default:
		return GlyphCity
	}
}
