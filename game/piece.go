package game

import "github.com/ghthor/polyis/polyomino"

type Direction int

const (
	Left  Direction = -1
	Right Direction = 1
)

func (d Direction) String() string {
	if d == Left {
		return "left"
	}
	return "right"
}

// Piece is the falling shape. Tiles is owned by the piece and is replaced,
// never mutated, by rotation.
type Piece struct {
	ID    polyomino.ID
	Tiles polyomino.Grid
	X, Y  int
}

// SpawnPiece places a copy of the shape horizontally centered at the top of a
// board of the given width.
func SpawnPiece(id polyomino.ID, s polyomino.Shape, boardWidth int) Piece {
	return Piece{
		ID:    id,
		Tiles: s.Tiles(),
		X:     (boardWidth - s.Size()) / 2,
	}
}

func (p *Piece) Size() int { return len(p.Tiles) }

// Move shifts the piece one column. The piece is unchanged when the target
// does not fit.
func (p *Piece) Move(b *Board, dir Direction) bool {
	if !b.Fits(p.Tiles, p.X+int(dir), p.Y) {
		return false
	}
	p.X += int(dir)
	return true
}

// Fall reports whether the piece fits one row lower, moving it there only when
// commit is set.
func (p *Piece) Fall(b *Board, commit bool) bool {
	if !b.Fits(p.Tiles, p.X, p.Y+1) {
		return false
	}
	if commit {
		p.Y++
	}
	return true
}

// Rotate turns the piece a quarter turn in place or, failing that, at the
// first kick offset where the rotated tiles fit. The piece is unchanged when
// no position fits.
func (p *Piece) Rotate(b *Board, clockwise bool) bool {
	rot := p.Tiles.Rotate(clockwise)
	if b.Fits(rot, p.X, p.Y) {
		p.Tiles = rot
		return true
	}

	for _, k := range Kicks(len(rot)) {
		for _, d := range k.trials() {
			x, y := p.X+d.DX, p.Y+d.DY
			if b.Fits(rot, x, y) {
				p.Tiles, p.X, p.Y = rot, x, y
				return true
			}
		}
	}
	return false
}
