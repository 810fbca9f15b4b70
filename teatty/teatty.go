// Package teatty plays polyis in a browser. gotty hands each websocket to a
// Factory, which runs a game on the tty side of a fresh pty and streams the
// other side back to the browser.
package teatty

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v5"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/creack/pty"
	"github.com/ghthor/gotty/v2/server"
	"github.com/gorilla/websocket"
	"github.com/muesli/termenv"
	"golang.org/x/sync/errgroup"

	tui "github.com/ghthor/polyis/bubbles/polyis"
)

// DefaultPlayer names browser players that did not pass a name.
const DefaultPlayer = "web"

// Player is the browser end of a game.
type Player struct {
	Name   string
	Remote net.Addr
}

// PlayerFrom reads the player name from the "player" URL argument.
func PlayerFrom(params map[string][]string, remote net.Addr) Player {
	p := Player{Name: DefaultPlayer, Remote: remote}
	if names := params["player"]; len(names) > 0 && names[0] != "" {
		p.Name = names[0]
	}
	return p
}

// NewModel builds the game for one browser. r renders true color into the
// pty.
type NewModel func(ctx context.Context, p Player, r *lipgloss.Renderer) *tui.Model

// JoinFunc joins the server context with a connection context.
type JoinFunc func(ctx1, ctx2 context.Context) (context.Context, context.CancelCauseFunc)

type Factory struct {
	ctx  context.Context
	join JoinFunc

	newModel NewModel
}

func NewFactory(ctx context.Context, join JoinFunc, newModel NewModel) *Factory {
	return &Factory{
		ctx:  ctx,
		join: join,

		newModel: newModel,
	}
}

var _ server.Factory = &Factory{}

func (*Factory) Name() string { return "polyis" }

func (f *Factory) New(ctx context.Context, params map[string][]string, conn *websocket.Conn) (server.Slave, error) {
	player := PlayerFrom(params, conn.RemoteAddr())
	ctx, cancel := f.join(f.ctx, ctx)

	ptm, tty, err := pty.Open()
	if err != nil {
		cancel(err)
		return nil, fmt.Errorf("opening pty for %s: %w", player.Name, err)
	}

	r := lipgloss.NewRenderer(tty)
	r.SetColorProfile(termenv.TrueColor)

	g := &Game{
		File:   ptm,
		tty:    tty,
		player: player,
		model:  f.newModel(ctx, player, r),
		log:    log.With("player", player.Name, "remote", player.Remote.String()),
	}
	g.program = tea.NewProgram(g.model,
		tea.WithContext(ctx),
		tea.WithInput(tty),
		tea.WithOutput(tty),
		tea.WithAltScreen(),
	)

	g.grp, g.ctx = errgroup.WithContext(ctx)
	g.grp.Go(func() error {
		defer func() {
			tty.Close()
			ptm.Close()
			conn.Close()
		}()

		_, err := g.program.Run()
		switch {
		case err == nil, g.closing.Load():
			return nil
		case errors.Is(err, context.Canceled), errors.Is(err, tea.ErrProgramKilled):
			return nil
		}
		g.log.Error("game failed", "error", err)
		cancel(err)
		return err
	})
	return g, nil
}

// Game is a browser game in progress. Reads and writes go to the pty master.
type Game struct {
	*os.File
	tty *os.File

	ctx     context.Context
	grp     *errgroup.Group
	program *tea.Program
	closing atomic.Bool

	player Player
	model  *tui.Model
	log    *log.Logger

	cols, rows int
}

var _ server.Slave = &Game{}

// Close ends the game when the browser goes away and logs how far the player
// got.
func (g *Game) Close() error {
	g.closing.Store(true)
	g.File.Close()
	g.program.Quit()
	err := g.grp.Wait()

	s := g.model.Session()
	g.log.Info("game closed",
		"state", s.State().String(),
		"score", s.Score(),
		"lines", s.Lines(),
		"level", s.Level(),
	)
	return err
}

func (g *Game) WindowTitleVariables() map[string]any {
	return map[string]any{
		"command": "polyis",
		"player":  g.player.Name,
	}
}

// ResizeTerminal sizes the pty to the browser window and redraws the game.
// The pty may still be settling right after New, so setting the size is
// retried for a short while.
func (g *Game) ResizeTerminal(cols, rows int) error {
	if cols == g.cols && rows == g.rows {
		return nil
	}

	ws := &pty.Winsize{Cols: uint16(cols), Rows: uint16(rows)}
	_, err := backoff.Retry(g.ctx, func() (struct{}, error) {
		return struct{}{}, errors.Join(
			pty.Setsize(g.File, ws),
			pty.Setsize(g.tty, ws),
		)
	}, resizeRetry(g.log)...)
	if err != nil {
		g.log.Warn("resize failed", "cols", cols, "rows", rows, "error", err)
		return err
	}

	g.cols, g.rows = cols, rows
	g.program.Send(tea.WindowSizeMsg{Width: cols, Height: rows})
	return nil
}

func resizeRetry(l *log.Logger) []backoff.RetryOption {
	return []backoff.RetryOption{
		backoff.WithBackOff(&backoff.ExponentialBackOff{
			InitialInterval: 10 * time.Millisecond,
			Multiplier:      1.1,
			MaxInterval:     500 * time.Millisecond,
		}),
		backoff.WithMaxElapsedTime(2 * time.Second),
		backoff.WithNotify(func(err error, d time.Duration) {
			l.Debug("retrying resize", "error", err, "in", d)
		}),
	}
}
