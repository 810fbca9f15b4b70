package polyis

import (
	"context"
	"maps"
	"slices"
	"sync"
)

// Lobby keeps track of who is playing on a server. It is shared by every
// connection.
type Lobby struct {
	mu sync.Mutex

	// playing counts the open games of each player
	playing map[string]int
	games   int
}

func NewLobby() *Lobby {
	return &Lobby{playing: make(map[string]int)}
}

// Join records a game by player that lasts until ctx is done.
func (l *Lobby) Join(ctx context.Context, player string) {
	l.mu.Lock()
	l.playing[player]++
	l.games++
	l.mu.Unlock()

	context.AfterFunc(ctx, func() { l.leave(player) })
}

func (l *Lobby) leave(player string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.playing[player]--; l.playing[player] <= 0 {
		delete(l.playing, player)
	}
}

// Players returns the sorted names of everyone with an open game.
func (l *Lobby) Players() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Sorted(maps.Keys(l.playing))
}

// Playing is the number of open games.
func (l *Lobby) Playing() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := 0
	for _, c := range l.playing {
		n += c
	}
	return n
}

// Games is the number of games started since the lobby was made.
func (l *Lobby) Games() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.games
}
