package game

import (
	"cmp"
	"math"
	"slices"
	"sync"
)

// Kick is a displacement tried when a rotation does not fit in place.
type Kick struct {
	DX, DY int
}

// trials expands an offset into the eight displacements tried for it, in
// order.
func (k Kick) trials() [8]Kick {
	dx, dy := k.DX, k.DY
	return [8]Kick{
		{-dx, dy}, {dx, dy},
		{-dy, dx}, {dy, dx},
		{-dy, -dx}, {dy, -dx},
		{-dx, -dy}, {dx, -dy},
	}
}

var kicks = struct {
	sync.Mutex
	bySize map[int][]Kick
}{bySize: map[int][]Kick{}}

// Kicks returns the kick offsets for shapes of size n ordered by increasing
// distance. Only the first offset generated at each distance is kept. The
// table is built once per size and shared.
func Kicks(n int) []Kick {
	kicks.Lock()
	defer kicks.Unlock()

	if k, ok := kicks.bySize[n]; ok {
		return k
	}

	type ranked struct {
		Kick
		dist float64
	}
	var rs []ranked
	for dy := 1; dy < n; dy++ {
		for dx := 0; dx <= min(n-2, dy); dx++ {
			rs = append(rs, ranked{Kick{dx, dy}, math.Sqrt(float64(dx*dx + dy*dy))})
		}
	}
	slices.SortStableFunc(rs, func(a, b ranked) int {
		return cmp.Compare(a.dist, b.dist)
	})

	k := make([]Kick, 0, len(rs))
	for i, r := range rs {
		if i > 0 && r.dist == rs[i-1].dist {
			continue
		}
		k = append(k, r.Kick)
	}
	kicks.bySize[n] = k
	return k
}
