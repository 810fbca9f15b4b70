package polyomino

import (
	"fmt"
	"strings"
)

// ID indexes a shape within a Catalog.
type ID int

// NoID marks an absent shape, e.g. an empty hold slot.
const NoID ID = -1

// Shape is an immutable square tile matrix.
type Shape struct {
	Name  string
	tiles Grid
}

func NewShape(name string, tiles Grid) Shape {
	return Shape{Name: name, tiles: tiles.Clone()}
}

func (s Shape) Size() int { return len(s.tiles) }

// Tiles returns a copy of the shape's matrix.
func (s Shape) Tiles() Grid { return s.tiles.Clone() }

func (s Shape) At(row, col int) Tile { return s.tiles[row][col] }

// Catalog is the ordered set of shapes a game draws from. Every shape in a
// catalog has the same tile count.
type Catalog struct {
	tiles  int
	shapes []Shape
}

func NewCatalog(tiles int, shapes ...Shape) Catalog {
	return Catalog{tiles: tiles, shapes: shapes}
}

func (c Catalog) Len() int       { return len(c.shapes) }
func (c Catalog) TileCount() int { return c.tiles }
func (c Catalog) Shape(id ID) Shape {
	return c.shapes[id]
}

// Shapes returns the catalog contents in ID order.
func (c Catalog) Shapes() []Shape {
	return append([]Shape(nil), c.shapes...)
}

// CatalogFor returns the classic seven tetrominoes for four tiles and an
// enumerated catalog for every other size.
func CatalogFor(tiles int) Catalog {
	if tiles == 4 {
		return Tetrominoes
	}
	return Generate(tiles)
}

var Tetrominoes Catalog

func init() {
	defs := []struct {
		name   string
		color  Color
		visual string
	}{
		{"I", Color{0, 255, 255}, `
|....
|OOOO
|....
|....
`},
		{"J", Color{0, 0, 255}, `
|O..
|OOO
|...
`},
		{"L", Color{255, 128, 0}, `
|..O
|OOO
|...
`},
		{"O", Color{255, 255, 0}, `
|....
|.OO.
|.OO.
|....
`},
		{"S", Color{128, 255, 0}, `
|.OO
|OO.
|...
`},
		{"T", Color{128, 0, 128}, `
|.O.
|OOO
|...
`},
		{"Z", Color{255, 0, 0}, `
|OO.
|.OO
|...
`},
	}

	shapes := make([]Shape, 0, len(defs))
	for _, d := range defs {
		g, err := parseVisual(d.visual, d.color)
		if err != nil {
			panic(fmt.Sprintf("failed to parse visual for %s: %v", d.name, err))
		}
		shapes = append(shapes, Shape{Name: d.name, tiles: g})
	}
	Tetrominoes = NewCatalog(4, shapes...)
}

// parseVisual converts a visual raw string into a square Grid. Only lines
// beginning with '|' are read and the characters after the '|' are the grid
// columns. 'O' and 'X' are tiles, anything else is empty. The grid is padded
// to a square sized by the larger of the row count and the widest row.
func parseVisual(v string, c Color) (Grid, error) {
	v = strings.TrimSpace(v)
	lines := make([]string, 0, 4)
	for ln := range strings.SplitSeq(v, "\n") {
		if !strings.HasPrefix(ln, "|") {
			continue
		}
		lines = append(lines, ln[1:])
	}

	n := len(lines)
	for _, row := range lines {
		n = max(n, len(row))
	}

	g := NewGrid(n)
	tiles := 0
	for y, row := range lines {
		for x, ch := range []byte(row) {
			if ch == 'O' || ch == 'X' {
				g[y][x] = Tile{Exists: true, Color: c}
				tiles++
			}
		}
	}
	if tiles == 0 {
		return nil, fmt.Errorf("no tiles found")
	}
	return g, nil
}
