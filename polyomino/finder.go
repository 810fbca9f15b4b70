package polyomino

import (
	"fmt"
	"strings"

	"github.com/kamstrup/intmap"
	"github.com/lucasb-eyer/go-colorful"
)

// knownCounts[n-1] is the number of one-sided polyominoes with n tiles:
// shapes equal under rotation are the same, mirror images are distinct.
var knownCounts = [...]int{1, 1, 2, 7, 18, 60, 196, 704, 2500, 9189}

// MaxTiles is the largest shape size Find enumerates.
const MaxTiles = len(knownCounts)

// Mask is an n×n occupancy matrix indexed [row][col].
type Mask [][]bool

func newMask(n int) Mask {
	m := make(Mask, n)
	for i := range m {
		m[i] = make([]bool, n)
	}
	return m
}

func (m Mask) Size() int { return len(m) }

func (m Mask) clone() Mask {
	c := make(Mask, len(m))
	for i, row := range m {
		c[i] = append([]bool(nil), row...)
	}
	return c
}

// Normalize translates the occupied cells so the topmost row and the leftmost
// column are both zero.
func (m Mask) Normalize() Mask {
	n := len(m)
	top, left := n, n
	for y := range n {
		for x := range n {
			if m[y][x] {
				top = min(top, y)
				left = min(left, x)
			}
		}
	}
	out := newMask(n)
	if top == n {
		return out
	}
	for y := top; y < n; y++ {
		for x := left; x < n; x++ {
			out[y-top][x-left] = m[y][x]
		}
	}
	return out
}

// RotateCW returns a clockwise quarter turn of m, not normalized.
func (m Mask) RotateCW() Mask {
	n := len(m)
	r := newMask(n)
	for yy := range n {
		for xx := range n {
			r[xx][n-1-yy] = m[yy][xx]
		}
	}
	return r
}

// Grid converts m into a tile matrix of the given color.
func (m Mask) Grid(c Color) Grid {
	g := NewGrid(len(m))
	for y, row := range m {
		for x, ok := range row {
			if ok {
				g[y][x] = Tile{Exists: true, Color: c}
			}
		}
	}
	return g
}

// String draws occupied cells as full blocks, one row per line.
func (m Mask) String() string {
	var b strings.Builder
	for y, row := range m {
		for _, ok := range row {
			if ok {
				b.WriteString("█")
			} else {
				b.WriteByte(' ')
			}
		}
		if y+1 < len(m) {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// maskKey packs a mask of up to 128 cells into a bitset, bit row*n+col.
type maskKey [2]uint64

func keyOf(m Mask) maskKey {
	var k maskKey
	n := len(m)
	for y, row := range m {
		for x, ok := range row {
			if ok {
				i := y*n + x
				k[i/64] |= 1 << (i % 64)
			}
		}
	}
	return k
}

func (k maskKey) hash() uint64 {
	h := k[0]*0x9e3779b97f4a7c15 ^ (k[1] + 0x632be59bd9b4e019)
	h ^= h >> 31
	return h
}

// keySet is a set of masks, bucketed by hash.
type keySet struct {
	buckets *intmap.Map[uint64, []maskKey]
}

func newKeySet(capacity int) *keySet {
	return &keySet{buckets: intmap.New[uint64, []maskKey](capacity)}
}

func (s *keySet) has(k maskKey) bool {
	bucket, _ := s.buckets.Get(k.hash())
	for _, v := range bucket {
		if v == k {
			return true
		}
	}
	return false
}

// add reports whether k was newly inserted.
func (s *keySet) add(k maskKey) bool {
	h := k.hash()
	bucket, _ := s.buckets.Get(h)
	for _, v := range bucket {
		if v == k {
			return false
		}
	}
	s.buckets.Put(h, append(bucket, k))
	return true
}

type point struct{ x, y int }

// neighbourOffsets is the order in which adjacent cells are tried.
var neighbourOffsets = [4]point{{-1, 0}, {0, 1}, {1, 0}, {0, -1}}

type finder struct {
	n    int
	want int

	found []Mask
	// seen holds every rotation of every accepted shape.
	seen *keySet
	// visited holds every partial mask already expanded.
	visited *keySet
}

// Find enumerates the one-sided polyominoes with n tiles as normalized n×n
// masks. n is clamped to [1, MaxTiles]. The
// order of the result is deterministic.
func Find(n int) []Mask {
	n = max(1, min(n, MaxTiles))
	want := knownCounts[n-1]

	f := &finder{
		n:       n,
		want:    want,
		found:   make([]Mask, 0, want),
		seen:    newKeySet(want * 4),
		visited: newKeySet(want * 8),
	}

	seed := newMask(n)
	c := (n - 1) / 2
	seed[c][c] = true
	if n == 1 {
		f.accept(seed.Normalize())
		return f.found
	}
	f.grow(seed, 1)
	return f.found
}

func (f *finder) grow(m Mask, count int) {
	if len(f.found) >= f.want {
		return
	}
	if !f.visited.add(keyOf(m)) {
		return
	}

	for _, p := range f.frontier(m) {
		next := m.clone()
		next[p.y][p.x] = true
		if count+1 == f.n {
			f.accept(next.Normalize())
			if len(f.found) >= f.want {
				return
			}
			continue
		}
		f.grow(next, count+1)
	}
}

// frontier returns the empty cells adjacent to an occupied cell, scanning
// columns left to right and rows top to bottom within each column.
func (f *finder) frontier(m Mask) []point {
	n := f.n
	var out []point
	var taken [MaxTiles][MaxTiles]bool
	for x := range n {
		for y := range n {
			if !m[y][x] {
				continue
			}
			for _, d := range neighbourOffsets {
				nx, ny := x+d.x, y+d.y
				if nx < 0 || ny < 0 || nx >= n || ny >= n {
					continue
				}
				if m[ny][nx] || taken[ny][nx] {
					continue
				}
				taken[ny][nx] = true
				out = append(out, point{nx, ny})
			}
		}
	}
	return out
}

func (f *finder) accept(m Mask) {
	if f.seen.has(keyOf(m)) {
		return
	}
	f.found = append(f.found, m)
	r := m
	for range 4 {
		f.seen.add(keyOf(r))
		r = r.RotateCW().Normalize()
	}
}

// Generate builds a catalog of every polyomino with n tiles, each given its
// own hue spread evenly around the color wheel.
func Generate(n int) Catalog {
	masks := Find(n)
	n = max(1, min(n, MaxTiles))
	shapes := make([]Shape, len(masks))
	for i, m := range masks {
		h := float64(i) * 360 / float64(len(masks))
		r, g, b := colorful.Hsv(h, 0.75, 1).RGB255()
		shapes[i] = Shape{
			Name:  fmt.Sprintf("%d-%d", n, i+1),
			tiles: m.Grid(Color{r, g, b}),
		}
	}
	return NewCatalog(n, shapes...)
}
