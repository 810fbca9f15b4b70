package game

import (
	"math/rand/v2"

	"github.com/ghthor/polyis/polyomino"
)

// Bag deals shape IDs so every ID appears exactly once per consecutive run of
// catalog-size draws. The following bag is shuffled ahead of time so upcoming
// pieces can be shown across the bag boundary.
type Bag struct {
	rng     *rand.Rand
	current []polyomino.ID
	next    []polyomino.ID
}

func NewBag(size int, rng *rand.Rand) *Bag {
	b := &Bag{rng: rng}
	b.current = b.shuffled(size)
	b.next = b.shuffled(size)
	return b
}

func (b *Bag) shuffled(n int) []polyomino.ID {
	ids := make([]polyomino.ID, n)
	for i := range ids {
		ids[i] = polyomino.ID(i)
	}
	b.rng.Shuffle(n, func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	return ids
}

// Pop removes and returns the next ID, promoting the pre-shuffled bag when the
// current one is exhausted.
func (b *Bag) Pop() polyomino.ID {
	for {
		for i, id := range b.current {
			if id != polyomino.NoID {
				b.current[i] = polyomino.NoID
				return id
			}
		}
		b.current, b.next = b.next, b.shuffled(len(b.next))
	}
}

// Peek returns up to n upcoming IDs without consuming them.
func (b *Bag) Peek(n int) []polyomino.ID {
	out := make([]polyomino.ID, 0, n)
	for _, id := range b.current {
		if len(out) == n {
			return out
		}
		if id != polyomino.NoID {
			out = append(out, id)
		}
	}
	for _, id := range b.next {
		if len(out) == n {
			break
		}
		out = append(out, id)
	}
	return out
}
