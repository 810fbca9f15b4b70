package game

import "github.com/ghthor/polyis/polyomino"

// HiddenRows is the number of rows above the visible playfield used as the
// spawn buffer.
const HiddenRows = 2

type Board struct {
	Width, Height int
	// Cells is indexed [row][col], row 0 at the top.
	Cells [][]polyomino.Tile
}

func NewBoard(w, h int) *Board {
	cells := make([][]polyomino.Tile, h)
	for i := range cells {
		cells[i] = make([]polyomino.Tile, w)
	}
	return &Board{Width: w, Height: h, Cells: cells}
}

func (b *Board) Reset() {
	for y := range b.Cells {
		clear(b.Cells[y])
	}
}

// Occupied reports whether the cell is filled. Cells outside the board are
// treated as filled.
func (b *Board) Occupied(x, y int) bool {
	if x < 0 || x >= b.Width || y < 0 || y >= b.Height {
		return true
	}
	return b.Cells[y][x].Exists
}

// Fits reports whether every existing tile of g placed with its top-left
// corner at (x, y) lands inside the board on an empty cell.
func (b *Board) Fits(g polyomino.Grid, x, y int) bool {
	for yy, row := range g {
		for xx, t := range row {
			if t.Exists && b.Occupied(x+xx, y+yy) {
				return false
			}
		}
	}
	return true
}

// Lock copies the piece's tiles onto the board.
func (b *Board) Lock(p *Piece) {
	for yy, row := range p.Tiles {
		for xx, t := range row {
			if !t.Exists {
				continue
			}
			bx, by := p.X+xx, p.Y+yy
			if bx >= 0 && bx < b.Width && by >= 0 && by < b.Height {
				b.Cells[by][bx] = t
			}
		}
	}
}

func (b *Board) full(y int) bool {
	for _, t := range b.Cells[y] {
		if !t.Exists {
			return false
		}
	}
	return true
}

// ClearLines removes every full row, shifting the rows above each one down
// and emptying the top row, and returns how many rows were removed.
func (b *Board) ClearLines() int {
	cleared := 0

	// iterate from bottom to top, re-checking a row after it receives the
	// row above it
	for y, top := b.Height-1, 0; y >= top; {
		if !b.full(y) {
			y--
			continue
		}
		cleared++
		top++
		for yy := y; yy > 0; yy-- {
			copy(b.Cells[yy], b.Cells[yy-1])
		}
		clear(b.Cells[0])
	}
	return cleared
}
