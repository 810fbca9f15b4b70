package game

import (
	"errors"
	"fmt"

	"github.com/ghthor/polyis/polyomino"
)

var ErrInvalidConfig = errors.New("invalid game config")

const (
	MinLevel         = 1
	MaxLevel         = 15
	MinLinesPerLevel = 2
	MaxLinesPerLevel = 255
	MinMultiplier    = 1.0 / 8
	MaxMultiplier    = 16.0
	MaxLookahead     = 7
)

type Config struct {
	Width  int `json:"width"`
	Height int `json:"height"`
	// Tiles is the number of tiles in every shape.
	Tiles      int `json:"tiles"`
	StartLevel int `json:"start_level"`

	LinesPerLevel int `json:"lines_per_level"`
	// GravityMultiplier and LockDelayMultiplier only apply to custom games.
	GravityMultiplier   float64 `json:"gravity_multiplier"`
	LockDelayMultiplier float64 `json:"lock_delay_multiplier"`
	Custom              bool    `json:"custom"`

	// Lookahead is the number of upcoming pieces exposed by a Session.
	Lookahead int `json:"lookahead"`

	// Seed for the piece randomizer. Zero picks a random seed.
	Seed uint64 `json:"seed,omitempty"`
}

func DefaultConfig() Config {
	return Config{
		Width:               10,
		Height:              22,
		Tiles:               4,
		StartLevel:          1,
		LinesPerLevel:       10,
		GravityMultiplier:   1,
		LockDelayMultiplier: 1,
		Lookahead:           3,
	}
}

func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
		}
	}

	check(c.Tiles >= 1 && c.Tiles <= polyomino.MaxTiles,
		"tiles %d outside [1, %d]", c.Tiles, polyomino.MaxTiles)
	check(c.Width >= c.Tiles, "width %d narrower than tiles %d", c.Width, c.Tiles)
	check(c.Height >= c.Tiles+HiddenRows,
		"height %d shorter than tiles %d plus %d hidden rows", c.Height, c.Tiles, HiddenRows)
	check(c.StartLevel >= MinLevel && c.StartLevel <= MaxLevel,
		"start level %d outside [%d, %d]", c.StartLevel, MinLevel, MaxLevel)
	check(c.LinesPerLevel >= MinLinesPerLevel && c.LinesPerLevel <= MaxLinesPerLevel,
		"lines per level %d outside [%d, %d]", c.LinesPerLevel, MinLinesPerLevel, MaxLinesPerLevel)
	check(c.GravityMultiplier >= MinMultiplier && c.GravityMultiplier <= MaxMultiplier,
		"gravity multiplier %g outside [%g, %g]", c.GravityMultiplier, MinMultiplier, MaxMultiplier)
	check(c.LockDelayMultiplier >= MinMultiplier && c.LockDelayMultiplier <= MaxMultiplier,
		"lock delay multiplier %g outside [%g, %g]", c.LockDelayMultiplier, MinMultiplier, MaxMultiplier)
	check(c.Lookahead >= 0 && c.Lookahead <= MaxLookahead,
		"lookahead %d outside [0, %d]", c.Lookahead, MaxLookahead)

	return errors.Join(errs...)
}
