package edit

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeriveMidpointsCount(t *testing.T) {
	for n := 0; n <= 8; n++ {
		vertices := make([]Point, n)
		for i := range vertices {
			vertices[i] = Point{X: float64(i), Y: float64(i * i)}
		}

		open := max(n-1, 0)
		closed := open
		if n >= 3 {
			closed = n
		}

		require.Len(t, DeriveMidpoints(vertices, ModePoint), open, "point n=%d", n)
		require.Len(t, DeriveMidpoints(vertices, ModePolyline), open, "polyline n=%d", n)
		require.Len(t, DeriveMidpoints(vertices, ModePolygon), closed, "polygon n=%d", n)
	}
}

func TestDeriveMidpointsValues(t *testing.T) {
	square := []Point{{0, 0}, {4, 0}, {4, 4}, {0, 4}}

	require.Equal(t, []Point{{2, 0}, {4, 2}, {2, 4}}, DeriveMidpoints(square, ModePolyline))
	require.Equal(t, []Point{{2, 0}, {4, 2}, {2, 4}, {0, 2}}, DeriveMidpoints(square, ModePolygon))
}

func TestModeRules(t *testing.T) {
	require.Equal(t, 1, ModePoint.MinVertices())
	require.Equal(t, 2, ModePolyline.MinVertices())
	require.Equal(t, 3, ModePolygon.MinVertices())
	require.True(t, ModePolygon.Closed())
	require.False(t, ModePolyline.Closed())
	require.False(t, ModeNone.Editable())
	require.False(t, ModeSaving.Editable())
	require.Equal(t, "Unknown", Mode(99).String())
}
