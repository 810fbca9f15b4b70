// Package polyomino describes the shapes dropped onto a board: square tile
// matrices, the catalog of shapes used by a game, and the enumeration of every
// one-sided polyomino of a given size.
package polyomino

import "fmt"

type Color struct {
	R, G, B uint8
}

// Hex formats the color as #rrggbb.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Tile is a single cell of a shape or a board. Color has no meaning when
// Exists is false.
type Tile struct {
	Exists bool
	Color  Color
}

// Grid is a square tile matrix indexed [row][col].
type Grid [][]Tile

func NewGrid(n int) Grid {
	g := make(Grid, n)
	for i := range g {
		g[i] = make([]Tile, n)
	}
	return g
}

func (g Grid) Size() int { return len(g) }

func (g Grid) Clone() Grid {
	c := make(Grid, len(g))
	for i, row := range g {
		c[i] = append([]Tile(nil), row...)
	}
	return c
}

// Count returns the number of existing tiles.
func (g Grid) Count() int {
	n := 0
	for _, row := range g {
		for _, t := range row {
			if t.Exists {
				n++
			}
		}
	}
	return n
}

// Equal compares existence and color of every tile.
func (g Grid) Equal(o Grid) bool {
	if len(g) != len(o) {
		return false
	}
	for y := range g {
		if len(g[y]) != len(o[y]) {
			return false
		}
		for x := range g[y] {
			if g[y][x] != o[y][x] {
				return false
			}
		}
	}
	return true
}

// Rotate returns a new grid turned a quarter turn. The source grid is left
// untouched.
func (g Grid) Rotate(clockwise bool) Grid {
	n := len(g)
	r := NewGrid(n)
	for yy := range n {
		for xx := range n {
			if clockwise {
				r[xx][n-1-yy] = g[yy][xx]
			} else {
				r[n-1-xx][yy] = g[yy][xx]
			}
		}
	}
	return r
}
