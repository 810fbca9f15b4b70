package game

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghthor/polyis/polyomino"
)

const (
	idI polyomino.ID = 0
	idO polyomino.ID = 3
)

func newTestSession(t *testing.T, opts ...func(*Config)) *Session {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Seed = 42
	for _, opt := range opts {
		opt(&cfg)
	}
	require.NoError(t, cfg.Validate())
	return NewSession(cfg, polyomino.CatalogFor(cfg.Tiles))
}

func singleTile(c *Config) { c.Tiles = 1 }

func forceO(s *Session) {
	s.piece = SpawnPiece(idO, polyomino.Tetrominoes.Shape(idO), s.board.Width)
}

func forceVerticalI(s *Session) {
	s.piece = Piece{ID: idI, Tiles: polyomino.Tetrominoes.Shape(idI).Tiles().Rotate(true), X: 3}
}

func TestSessionStart(t *testing.T) {
	s := newTestSession(t)

	assert.Equal(t, Playing, s.State())
	assert.Equal(t, 3, s.Piece().X)
	assert.Equal(t, 0, s.Piece().Y)
	assert.Equal(t, polyomino.NoID, s.Held())
	assert.True(t, s.CanHold())
	assert.Len(t, s.Upcoming(), 3)
	assert.Equal(t, 1, s.Level())
	assert.InDelta(t, 1.0, s.Speed(), 1e-9)
	assert.InDelta(t, 0.5, s.LockDelay(), 1e-9)
	assert.Empty(t, s.Events())
}

func TestSessionHardDrop(t *testing.T) {
	s := newTestSession(t)
	forceO(s)

	// the square fills rows 1 and 2 of its grid
	require.True(t, s.Handle(HardDrop))
	assert.Equal(t, uint64(38), s.Score())
	assert.Equal(t, 19, s.Piece().Y)
	assert.True(t, s.Locking())

	s.Update(0)
	assert.Equal(t, uint64(38), s.Score())
	assert.Equal(t, []Event{Placed{}}, s.Events())
	for _, c := range [][2]int{{4, 20}, {5, 20}, {4, 21}, {5, 21}} {
		assert.True(t, s.Board().Cells[c[1]][c[0]].Exists, "%v", c)
	}
	assert.Equal(t, 0, s.Piece().Y)
	assert.False(t, s.Locking())
}

func TestSessionSingleLineClear(t *testing.T) {
	s := newTestSession(t, singleTile)
	require.Equal(t, 4, s.Piece().X)
	fillRow(s.board, 21, 4)

	require.True(t, s.Handle(HardDrop))
	assert.Equal(t, uint64(42), s.Score())
	s.Update(0)

	assert.Equal(t, 1, s.Lines())
	assert.Equal(t, 1, s.Combo())
	assert.Equal(t, uint64(142), s.Score())
	assert.Equal(t, []Event{
		LinesCleared{Count: 1, Combo: 0, Points: 100},
	}, s.Events())
	for x := range s.board.Width {
		assert.False(t, s.board.Cells[21][x].Exists)
	}
}

func TestSessionBackToBackDifficultClears(t *testing.T) {
	s := newTestSession(t)

	tetris := func() {
		for y := 18; y < 22; y++ {
			fillRow(s.board, y, 5)
		}
		forceVerticalI(s)
		require.True(t, s.Handle(HardDrop))
		s.Update(0)
	}

	tetris()
	assert.Equal(t, uint64(36+800), s.Score())
	assert.Equal(t, 4, s.Lines())
	assert.Equal(t, 1, s.Combo())
	assert.Equal(t, []Event{
		LinesCleared{Count: 4, Difficult: true, Combo: 0, Points: 800},
	}, s.Events())

	tetris()
	assert.Equal(t, uint64(836+36+1250), s.Score())
	assert.Equal(t, 8, s.Lines())
	assert.Equal(t, 2, s.Combo())
	assert.Equal(t, 1, s.Level())
	assert.Equal(t, []Event{
		LinesCleared{Count: 4, Difficult: true, Combo: 1, Points: 1250},
	}, s.Events())

	forceO(s)
	s.Handle(HardDrop)
	s.Update(0)
	assert.Equal(t, 0, s.Combo())
	assert.Equal(t, uint64(2122+38), s.Score())
}

func TestSessionFiveRowClearIsDifficult(t *testing.T) {
	s := newTestSession(t, func(c *Config) { c.Tiles = 5 })

	bar := polyomino.NewGrid(5)
	for y := range bar {
		bar[y][0] = polyomino.Tile{Exists: true}
	}
	clearFive := func() {
		for y := 17; y < 22; y++ {
			fillRow(s.board, y, 5)
		}
		s.piece = Piece{Tiles: bar.Clone(), X: 5}
		require.True(t, s.Handle(HardDrop))
		s.Update(0)
	}

	clearFive()
	assert.Equal(t, uint64(34+800), s.Score())
	assert.Equal(t, []Event{
		LinesCleared{Count: 5, Difficult: true, Combo: 0, Points: 800},
	}, s.Events())

	clearFive()
	assert.Equal(t, []Event{
		LinesCleared{Count: 5, Difficult: true, Combo: 1, Points: 1250},
	}, s.Events())
	assert.Equal(t, 10, s.Lines())
}

func TestSessionComboAfterSmallClears(t *testing.T) {
	s := newTestSession(t, singleTile)

	for i := range 3 {
		fillRow(s.board, 21, 4)
		require.Equal(t, 4, s.Piece().X)
		s.Handle(HardDrop)
		s.Update(0)
		ev := s.Events()
		require.Len(t, ev, 1)
		assert.Equal(t, uint64(100+50*i), ev[0].(LinesCleared).Points)
	}
	assert.Equal(t, 3, s.Combo())
}

func TestSessionLevelProgression(t *testing.T) {
	s := newTestSession(t, func(c *Config) { c.LinesPerLevel = 2 })

	for y := 18; y < 22; y++ {
		fillRow(s.board, y, 5)
	}
	forceVerticalI(s)
	s.Handle(HardDrop)
	s.Update(0)

	assert.Equal(t, 3, s.Level())
	// scored at the level the rows were cleared on
	assert.Equal(t, uint64(36+800), s.Score())
	assert.InDelta(t, 0.3*5.196152+0.7, s.Speed(), 1e-5)
	assert.InDelta(t, (1.732051+2)/6, s.LockDelay(), 1e-5)
}

func TestSessionCustomMultipliers(t *testing.T) {
	multipliers := func(c *Config) {
		c.GravityMultiplier = 2
		c.LockDelayMultiplier = 0.5
	}

	s := newTestSession(t, multipliers)
	assert.InDelta(t, 1.0, s.Speed(), 1e-9)
	assert.InDelta(t, 0.5, s.LockDelay(), 1e-9)

	s = newTestSession(t, multipliers, func(c *Config) { c.Custom = true })
	assert.InDelta(t, 2.0, s.Speed(), 1e-9)
	assert.InDelta(t, 0.25, s.LockDelay(), 1e-9)
}

func TestSessionGravityAndLockDelay(t *testing.T) {
	s := newTestSession(t)
	forceO(s)

	for y := 1; y <= 19; y++ {
		s.Update(time.Second)
		require.Equal(t, y, s.Piece().Y)
	}
	assert.False(t, s.Locking())

	s.Update(time.Second)
	require.True(t, s.Locking())
	assert.Zero(t, s.LockProgress())

	s.Update(250 * time.Millisecond)
	assert.True(t, s.Locking())
	assert.InDelta(t, 0.5, s.LockProgress(), 1e-9)

	// a successful move restarts the lock timer
	require.True(t, s.Handle(MoveLeft))
	assert.Zero(t, s.LockProgress())

	s.Update(250 * time.Millisecond)
	assert.True(t, s.Locking())
	s.Update(250 * time.Millisecond)
	assert.False(t, s.Locking())

	assert.Equal(t, []Event{Moved{Direction: Left}, Placed{}}, s.Events())
	for _, c := range [][2]int{{3, 20}, {4, 20}, {3, 21}, {4, 21}} {
		assert.True(t, s.Board().Cells[c[1]][c[0]].Exists, "%v", c)
	}
}

func TestSessionLockingResumesFalling(t *testing.T) {
	s := newTestSession(t)
	forceO(s)
	s.piece.Y = 5
	s.board.Cells[8][4] = polyomino.Tile{Exists: true}

	s.Update(time.Second)
	require.True(t, s.Locking())
	s.Update(100 * time.Millisecond)
	require.True(t, s.Locking())

	s.board.Cells[8][4] = polyomino.Tile{}
	s.Update(100 * time.Millisecond)
	assert.False(t, s.Locking())
	assert.Zero(t, s.LockProgress())
	assert.Equal(t, 5, s.Piece().Y)

	s.Update(time.Second)
	assert.Equal(t, 6, s.Piece().Y)
}

func TestSessionSoftDrop(t *testing.T) {
	s := newTestSession(t)
	forceO(s)

	require.True(t, s.Handle(SoftDropStart))
	assert.False(t, s.Handle(SoftDropStart))
	assert.True(t, s.SoftDropping())

	for y := 1; y <= 5; y++ {
		s.Update(40 * time.Millisecond)
		require.Equal(t, y, s.Piece().Y)
	}
	assert.Equal(t, uint64(5), s.Score())

	require.True(t, s.Handle(SoftDropStop))
	assert.False(t, s.Handle(SoftDropStop))
	s.Update(40 * time.Millisecond)
	assert.Equal(t, 5, s.Piece().Y)
	assert.Equal(t, uint64(5), s.Score())
}

func TestSessionSoftDropOntoFloor(t *testing.T) {
	s := newTestSession(t, singleTile)
	s.piece.Y = 20

	require.True(t, s.Handle(SoftDropStart))
	s.Update(40 * time.Millisecond)
	require.Equal(t, 21, s.Piece().Y)
	assert.Equal(t, uint64(1), s.Score())
	assert.False(t, s.locking)

	s.Update(40 * time.Millisecond)
	assert.Equal(t, 21, s.Piece().Y)
	assert.Equal(t, uint64(2), s.Score())
	assert.True(t, s.locking)
}

func TestSessionHold(t *testing.T) {
	s := newTestSession(t)
	first := s.Piece().ID
	next := s.Upcoming()[0]

	require.True(t, s.Handle(Hold))
	assert.Equal(t, first, s.Held())
	assert.Equal(t, next, s.Piece().ID)
	assert.False(t, s.CanHold())
	assert.False(t, s.Handle(Hold))
	assert.Equal(t, []Event{Held{ID: first}}, s.Events())

	s.Handle(HardDrop)
	s.Update(0)
	require.True(t, s.CanHold())
	current := s.Piece().ID

	require.True(t, s.Handle(MoveLeft))
	require.True(t, s.Handle(Hold))
	assert.Equal(t, current, s.Held())
	assert.Equal(t, first, s.Piece().ID)
	assert.Equal(t, 3, s.Piece().X)
	assert.Equal(t, 0, s.Piece().Y)
	assert.True(t, polyomino.Tetrominoes.Shape(first).Tiles().Equal(s.Piece().Tiles))
}

func TestSessionPause(t *testing.T) {
	s := newTestSession(t)

	require.True(t, s.Handle(Pause))
	assert.Equal(t, Paused, s.State())

	s.Update(5 * time.Second)
	assert.Equal(t, 0, s.Piece().Y)
	assert.False(t, s.Handle(MoveLeft))
	assert.False(t, s.Handle(HardDrop))

	require.True(t, s.Handle(Pause))
	assert.Equal(t, Playing, s.State())
	s.Update(time.Second)
	assert.Equal(t, 1, s.Piece().Y)
}

func TestSessionGameOver(t *testing.T) {
	s := newTestSession(t, singleTile)
	s.score = 500
	s.board.Cells[1][4] = polyomino.Tile{Exists: true}

	require.True(t, s.Handle(HardDrop))
	s.Update(0)

	assert.Equal(t, Over, s.State())
	assert.Equal(t, []Event{
		Placed{},
		GameOver{Score: 500, Lines: 0, Level: 1},
	}, s.Events())

	assert.False(t, s.Handle(MoveLeft))
	assert.False(t, s.Handle(Pause))
	s.Update(time.Minute)
	assert.Equal(t, uint64(500), s.Score())

	s.Reset()
	assert.Equal(t, Playing, s.State())
	assert.Zero(t, s.Score())
	assert.False(t, s.Board().Cells[0][4].Exists)
	assert.False(t, s.Board().Cells[1][4].Exists)
}

func TestSessionGhostY(t *testing.T) {
	s := newTestSession(t)
	forceO(s)
	assert.Equal(t, 19, s.GhostY())

	s.board.Cells[12][5] = polyomino.Tile{Exists: true}
	assert.Equal(t, 9, s.GhostY())
	assert.Equal(t, 0, s.Piece().Y)
}

func TestSessionRotateEvent(t *testing.T) {
	s := newTestSession(t)
	forceVerticalI(s)
	s.piece.X = -2

	require.True(t, s.Handle(RotateCW))
	assert.Equal(t, []Event{Rotated{Clockwise: true, Kicked: true}}, s.Events())

	s.piece.Y = 5
	require.True(t, s.Handle(RotateCCW))
	assert.Equal(t, []Event{Rotated{Clockwise: false}}, s.Events())
}

func TestSessionSeedIsReproducible(t *testing.T) {
	a, b := newTestSession(t), newTestSession(t)
	for range 20 {
		require.Equal(t, a.Piece().ID, b.Piece().ID)
		require.Equal(t, a.Upcoming(), b.Upcoming())
		a.Handle(HardDrop)
		a.Update(0)
		b.Handle(HardDrop)
		b.Update(0)
		if a.State() == Over {
			break
		}
	}
}

func TestEventLogOverwritesOldest(t *testing.T) {
	l := newEventLog(4)
	for i := range 6 {
		l.push(Held{ID: polyomino.ID(i)})
	}
	assert.Equal(t, []Event{Held{2}, Held{3}, Held{4}, Held{5}}, l.drain())
	assert.Nil(t, l.drain())

	l.push(Placed{})
	assert.Equal(t, []Event{Placed{}}, l.drain())
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.Tiles = 11
	cfg.StartLevel = 0
	cfg.Lookahead = 8
	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidConfig))
	assert.Contains(t, err.Error(), "tiles 11")
	assert.Contains(t, err.Error(), "start level 0")
	assert.Contains(t, err.Error(), "lookahead 8")

	for name, mut := range map[string]func(*Config){
		"narrow":          func(c *Config) { c.Width = 3 },
		"short":           func(c *Config) { c.Height = 5 },
		"lines per level": func(c *Config) { c.LinesPerLevel = 1 },
		"gravity":         func(c *Config) { c.GravityMultiplier = 0 },
		"lock delay":      func(c *Config) { c.LockDelayMultiplier = 17 },
		"level":           func(c *Config) { c.StartLevel = 16 },
	} {
		cfg := DefaultConfig()
		mut(&cfg)
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig, name)
	}
}
