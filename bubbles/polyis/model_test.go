package polyis

import (
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghthor/polyis/game"
	"github.com/ghthor/polyis/polyomino"
)

func newTestModel(t *testing.T, opts ...Option) *Model {
	t.Helper()
	cfg := game.DefaultConfig()
	cfg.Seed = 7
	s := game.NewSession(cfg, polyomino.CatalogFor(cfg.Tiles))
	opts = append([]Option{WithLogger(log.New(io.Discard))}, opts...)
	return New(s, opts...)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModelKeys(t *testing.T) {
	m := newTestModel(t)
	s := m.Session()
	x := s.Piece().X

	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, x-1, s.Piece().X)
	m.Update(runes("l"))
	assert.Equal(t, x, s.Piece().X)

	m.Update(runes("p"))
	assert.Equal(t, game.Paused, s.State())
	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, x, s.Piece().X)
	m.Update(runes("p"))
	assert.Equal(t, game.Playing, s.State())

	m.Update(tea.KeyMsg{Type: tea.KeySpace})
	assert.True(t, s.Locking())
	assert.Positive(t, s.Score())

	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestModelHold(t *testing.T) {
	m := newTestModel(t)
	s := m.Session()
	first := s.Piece().ID

	m.Update(runes("c"))
	assert.Equal(t, first, s.Held())
	assert.Contains(t, m.View(), "HOLD")
}

func TestModelTickAdvancesSession(t *testing.T) {
	m := newTestModel(t)
	s := m.Session()
	t0 := time.Unix(1000, 0)

	m.HandleTick(t0)
	assert.Equal(t, 0, s.Piece().Y)

	// a stalled program only advances by a bounded frame
	m.HandleTick(t0.Add(10 * time.Second))
	assert.Equal(t, 0, s.Piece().Y)

	next := t0.Add(10 * time.Second)
	for range 4 {
		next = next.Add(maxFrame)
		m.HandleTick(next)
	}
	assert.Equal(t, 1, s.Piece().Y)
}

func TestModelSoftDropRelease(t *testing.T) {
	m := newTestModel(t)
	s := m.Session()

	t0 := time.Now()
	m.HandleTick(t0)
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	require.True(t, s.SoftDropping())

	m.HandleTick(t0.Add(100 * time.Millisecond))
	assert.True(t, s.SoftDropping())
	assert.Equal(t, 1, s.Piece().Y)

	m.HandleTick(t0.Add(SoftDropRelease + 150*time.Millisecond))
	assert.False(t, s.SoftDropping())
}

func TestModelGameOver(t *testing.T) {
	var over []game.GameOver
	cfg := game.DefaultConfig()
	cfg.Tiles = 1
	cfg.Seed = 3
	s := game.NewSession(cfg, polyomino.CatalogFor(1))
	m := New(s,
		WithLogger(log.New(io.Discard)),
		WithGameOver(func(e game.GameOver) tea.Cmd {
			over = append(over, e)
			return func() tea.Msg { return ScoreSavedMsg{Rank: 1} }
		}),
	)

	s.Board().Cells[1][4] = polyomino.Tile{Exists: true}
	m.Update(tea.KeyMsg{Type: tea.KeySpace})

	t0 := time.Unix(0, 0)
	m.HandleTick(t0)
	cmd := m.HandleTick(t0.Add(Frame))
	require.Equal(t, game.Over, s.State())
	require.Len(t, over, 1)
	assert.Equal(t, game.GameOver{Score: 0, Lines: 0, Level: 1}, over[0])
	assert.NotNil(t, cmd)

	m.Update(ScoreSavedMsg{Rank: 1})
	assert.Contains(t, m.View(), "GAME OVER")
	assert.Contains(t, m.View(), "ranked #1")

	m.Update(runes("r"))
	assert.Equal(t, game.Playing, s.State())
	assert.NotContains(t, m.View(), "GAME OVER")
}

func TestModelView(t *testing.T) {
	m := newTestModel(t, WithGhost(false))
	v := m.View()
	for _, want := range []string{"SCORE", "LINES", "LEVEL", "NEXT", "HOLD"} {
		assert.Contains(t, v, want)
	}

	assert.Empty(t, m.banner())

	m.Update(runes("p"))
	assert.Contains(t, m.banner(), "PAUSED")
	assert.Contains(t, m.View(), "PAUSED")

	m.Update(runes("p"))
	assert.Empty(t, m.banner())
}

func TestKeyMapRebind(t *testing.T) {
	k := DefaultKeyMap()
	require.NoError(t, k.Rebind(map[string][]string{
		"left":      {"a"},
		"hard-drop": {" ", "enter"},
	}))
	assert.True(t, key.Matches(runes("a"), k.Left))
	assert.False(t, key.Matches(tea.KeyMsg{Type: tea.KeyLeft}, k.Left))
	assert.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyEnter}, k.HardDrop))
	assert.Equal(t, "space", k.HardDrop.Help().Key)
	assert.Equal(t, "hard drop", k.HardDrop.Help().Desc)

	assert.Error(t, k.Rebind(map[string][]string{"jump": {"w"}}))
	assert.Error(t, k.Rebind(map[string][]string{"left": {}}))
	assert.Contains(t, Actions(), "rotate-ccw")
	assert.Len(t, Actions(), 11)
}
