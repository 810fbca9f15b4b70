package game

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/ghthor/polyis/polyomino"
)

type State int

const (
	Playing State = iota
	Paused
	Over
)

func (s State) String() string {
	switch s {
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	default:
		return "over"
	}
}

type Command int

const (
	MoveLeft Command = iota
	MoveRight
	RotateCW
	RotateCCW
	SoftDropStart
	SoftDropStop
	HardDrop
	Hold
	Pause
)

var commandNames = [...]string{
	MoveLeft:      "move-left",
	MoveRight:     "move-right",
	RotateCW:      "rotate-cw",
	RotateCCW:     "rotate-ccw",
	SoftDropStart: "soft-drop-start",
	SoftDropStop:  "soft-drop-stop",
	HardDrop:      "hard-drop",
	Hold:          "hold",
	Pause:         "pause",
}

func (c Command) String() string {
	if c < 0 || int(c) >= len(commandNames) {
		return "unknown"
	}
	return commandNames[c]
}

const (
	// softDropSpeed is the minimum soft drop rate in rows per second.
	softDropSpeed  = 30.0
	softDropPoints = 1
	hardDropPoints = 2

	difficultMultiplier = 1.5
	comboPoints         = 50

	eventLogSize = 64
)

// linePoints[c-1] is the base award for clearing c rows at level one.
var linePoints = [...]float64{100, 300, 500, 800}

// Session is a single game. It is driven by Update with the elapsed time and
// by Handle with player commands. A Session is not safe for concurrent use.
type Session struct {
	cfg     Config
	catalog polyomino.Catalog
	rng     *rand.Rand

	board *Board
	bag   *Bag
	piece Piece

	held    polyomino.ID
	canHold bool

	state   State
	locking bool
	fast    bool

	// timers in seconds
	fallTime     float64
	fastFallTime float64
	lockTime     float64

	speed     float64
	fastSpeed float64
	lockDelay float64

	score         uint64
	lines         int
	level         int
	combo         int
	lastDifficult bool

	events *eventLog
}

// NewSession starts a game. The config is assumed valid and the catalog must
// hold shapes of cfg.Tiles tiles.
func NewSession(cfg Config, catalog polyomino.Catalog) *Session {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	s := &Session{
		cfg:     cfg,
		catalog: catalog,
		rng:     rand.New(rand.NewPCG(seed, seed^0x5851f42d4c957f2d)),
		board:   NewBoard(cfg.Width, cfg.Height),
		events:  newEventLog(eventLogSize),
	}
	s.Reset()
	return s
}

// Reset starts a new game with the same config, continuing the random
// sequence.
func (s *Session) Reset() {
	s.board.Reset()
	s.bag = NewBag(s.catalog.Len(), s.rng)
	s.held = polyomino.NoID
	s.state = Playing
	s.fast = false
	s.fallTime, s.fastFallTime = 0, 0

	s.score, s.lines, s.combo = 0, 0, 0
	s.lastDifficult = false
	s.level = s.cfg.StartLevel
	s.fastSpeed = softDropSpeed
	s.retime()

	s.spawn()
}

func (s *Session) retime() {
	lvl := float64(s.level)
	s.speed = 0.3*math.Pow(lvl, 1.5) + 0.7
	s.lockDelay = (math.Sqrt(lvl) + 2) / 6
	if s.cfg.Custom {
		s.speed *= s.cfg.GravityMultiplier
		s.lockDelay *= s.cfg.LockDelayMultiplier
	}
	s.fastSpeed = max(s.fastSpeed, s.speed)
}

func (s *Session) emit(e Event) { s.events.push(e) }

// Update advances gravity and lock delay by dt. At most one row is fallen per
// call.
func (s *Session) Update(dt time.Duration) {
	if s.state != Playing {
		return
	}
	sec := dt.Seconds()
	if s.locking {
		s.updateLocking(sec)
		return
	}
	s.updateFalling(sec)
}

func (s *Session) updateFalling(sec float64) {
	acc, speed := &s.fallTime, s.speed
	if s.fast {
		acc, speed = &s.fastFallTime, s.fastSpeed
	}

	*acc += sec
	if *acc < 1/speed {
		return
	}
	*acc -= 1 / speed

	// a soft-drop step scores even when it lands the piece
	if s.fast {
		s.score += softDropPoints
	}
	if s.piece.Fall(s.board, true) {
		return
	}
	s.locking = true
}

func (s *Session) updateLocking(sec float64) {
	s.lockTime += sec
	switch {
	case s.lockTime >= s.lockDelay:
		s.place()
	case s.piece.Fall(s.board, false):
		s.locking = false
		s.lockTime = 0
	}
}

// Handle applies a player command and reports whether it changed the game.
// While paused only Pause is accepted and after game over nothing is.
func (s *Session) Handle(cmd Command) bool {
	switch s.state {
	case Over:
		return false
	case Paused:
		if cmd != Pause {
			return false
		}
		s.state = Playing
		return true
	}

	switch cmd {
	case MoveLeft, MoveRight:
		dir := Left
		if cmd == MoveRight {
			dir = Right
		}
		if !s.piece.Move(s.board, dir) {
			return false
		}
		s.lockTime = 0
		s.emit(Moved{Direction: dir})

	case RotateCW, RotateCCW:
		x, y := s.piece.X, s.piece.Y
		if !s.piece.Rotate(s.board, cmd == RotateCW) {
			return false
		}
		s.lockTime = 0
		s.emit(Rotated{
			Clockwise: cmd == RotateCW,
			Kicked:    x != s.piece.X || y != s.piece.Y,
		})

	case SoftDropStart:
		if s.fast {
			return false
		}
		s.fast = true

	case SoftDropStop:
		if !s.fast {
			return false
		}
		s.fast = false

	case HardDrop:
		for s.piece.Fall(s.board, true) {
			s.score += hardDropPoints
		}
		s.locking = true
		s.lockTime = s.lockDelay

	case Hold:
		return s.hold()

	case Pause:
		s.state = Paused

	default:
		return false
	}
	return true
}

func (s *Session) hold() bool {
	if !s.canHold {
		return false
	}

	current := s.piece.ID
	prev := s.held
	s.held = current
	s.emit(Held{ID: current})

	if prev == polyomino.NoID {
		s.spawn()
	} else {
		s.setPiece(prev)
	}
	s.canHold = false
	return true
}

func (s *Session) spawn() {
	s.setPiece(s.bag.Pop())
	s.canHold = true
}

func (s *Session) setPiece(id polyomino.ID) {
	s.piece = SpawnPiece(id, s.catalog.Shape(id), s.board.Width)
	s.fast = false
	s.locking = false
	s.lockTime = 0
	if !s.board.Fits(s.piece.Tiles, s.piece.X, s.piece.Y) {
		s.state = Over
		s.emit(GameOver{Score: s.score, Lines: s.lines, Level: s.level})
	}
}

func (s *Session) place() {
	s.board.Lock(&s.piece)
	s.locking = false
	s.lockTime = 0

	if c := s.board.ClearLines(); c > 0 {
		s.scoreClear(c)
	} else {
		s.combo = 0
		s.emit(Placed{})
	}
	s.spawn()
}

func (s *Session) scoreClear(c int) {
	// Shapes of more than four tiles can clear more than four rows at once.
	// Those clears are difficult too and score as four.
	difficult := c >= len(linePoints)
	mult := 1.0
	if difficult && s.lastDifficult {
		mult = difficultMultiplier
	}

	lvl := float64(s.level)
	base := linePoints[min(c, len(linePoints))-1]
	points := uint64(base*lvl*mult + comboPoints*float64(s.combo)*lvl)

	s.emit(LinesCleared{Count: c, Difficult: difficult, Combo: s.combo, Points: points})

	s.score += points
	s.lines += c
	s.lastDifficult = difficult
	s.combo++

	s.level = s.cfg.StartLevel + s.lines/s.cfg.LinesPerLevel
	s.retime()
}

func (s *Session) Config() Config             { return s.cfg }
func (s *Session) Catalog() polyomino.Catalog { return s.catalog }
func (s *Session) Board() *Board              { return s.board }
func (s *Session) State() State               { return s.state }
func (s *Session) Held() polyomino.ID         { return s.held }
func (s *Session) CanHold() bool              { return s.canHold }
func (s *Session) Score() uint64              { return s.score }
func (s *Session) Lines() int                 { return s.lines }
func (s *Session) Level() int                 { return s.level }
func (s *Session) Combo() int                 { return s.combo }
func (s *Session) Locking() bool              { return s.locking }
func (s *Session) SoftDropping() bool         { return s.fast }
func (s *Session) Speed() float64             { return s.speed }
func (s *Session) LockDelay() float64         { return s.lockDelay }
func (s *Session) Upcoming() []polyomino.ID   { return s.bag.Peek(s.cfg.Lookahead) }
func (s *Session) Events() []Event            { return s.events.drain() }

// Piece returns a copy of the falling piece.
func (s *Session) Piece() Piece {
	p := s.piece
	p.Tiles = p.Tiles.Clone()
	return p
}

// LockProgress is the fraction of the lock delay elapsed, in [0, 1].
func (s *Session) LockProgress() float64 {
	if !s.locking || s.lockDelay <= 0 {
		return 0
	}
	return min(1, s.lockTime/s.lockDelay)
}

// GhostY is the row the falling piece would land on if hard dropped.
func (s *Session) GhostY() int {
	p := s.piece
	for p.Fall(s.board, true) {
	}
	return p.Y
}
