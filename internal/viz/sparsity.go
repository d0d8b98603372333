package viz

import (
	"strings"

	"github.com/james-bowman/sparse"
)

var shades = []rune{'░', '▒', '▓', '█'}

// Sparsity renders the nonzero pattern of a sparse matrix as a character
// grid of at most width x height cells. Each cell aggregates a block of the
// matrix; empty blocks print as dots, occupied blocks shade with density.
func Sparsity(m *sparse.CSR, width, height int) string {
	rows, cols := m.Dims()
	if rows == 0 || cols == 0 {
		return ""
	}
	if width < 1 || width > cols {
		width = cols
	}
	if height < 1 || height > rows {
		height = rows
	}

	counts := make([][]int, height)
	for r := range counts {
		counts[r] = make([]int, width)
	}

	maxCount := 0
	m.DoNonZero(func(i, j int, v float64) {
		r := i * height / rows
		c := j * width / cols
		counts[r][c]++
		if counts[r][c] > maxCount {
			maxCount = counts[r][c]
		}
	})

	var b strings.Builder
	for r := 0; r < height; r++ {
		for c := 0; c < width; c++ {
			n := counts[r][c]
			if n == 0 {
				b.WriteRune('·')
				continue
			}
			shade := (n*len(shades)+maxCount-1)/maxCount - 1
			if shade >= len(shades) {
				shade = len(shades) - 1
			}
			b.WriteRune(shades[shade])
		}
		if r < height-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
