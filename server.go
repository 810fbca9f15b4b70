// Package polyis serves the game to ssh clients with wish and to browsers
// with gotty.
package polyis

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/bubbletea"
	"github.com/charmbracelet/wish/logging"
	"github.com/ghthor/gotty/v2/server"
	"github.com/ghthor/gotty/v2/utils"
	"github.com/muesli/termenv"
	"golang.org/x/sync/errgroup"
)

// DefaultShutdownTimeout is how long players get to finish when a server
// stops.
const DefaultShutdownTimeout = 30 * time.Second

// Session is the part of an ssh session a model needs.
type Session interface {
	User() string
	RemoteAddr() net.Addr
}

// NewModel builds the model for one connection. ctx is canceled when either
// the server or the connection is done and r renders for the client's
// terminal.
type NewModel func(ctx context.Context, s Session, r *lipgloss.Renderer) tea.Model

// Middleware runs a new bubbletea program per ssh session.
func Middleware(ctx context.Context, newModel NewModel) wish.Middleware {
	teaHandler := func(s ssh.Session) *tea.Program {
		var (
			progCtx, _ = JoinContext(ctx, s.Context())
			m          = newModel(progCtx, s, bubbletea.MakeRenderer(s))
		)
		opts := append(bubbletea.MakeOptions(s),
			tea.WithContext(progCtx),
			tea.WithAltScreen(),
		)
		return tea.NewProgram(m, opts...)
	}
	return bubbletea.MiddlewareWithProgramHandler(teaHandler, termenv.TrueColor)
}

func NewSSHServer(ctx context.Context, addr, hostKeyPath string, newModel NewModel) (*ssh.Server, error) {
	return wish.NewServer(
		wish.WithAddress(addr),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithMiddleware(
			Middleware(ctx, newModel),
			activeterm.Middleware(),
			logging.StructuredMiddleware(),
		),
	)
}

// run starts serve in grp. Any error other than stopped, which serve returns
// after a clean stop, cancels with the error as the cause.
func run(grp *errgroup.Group, cancel context.CancelCauseFunc, serve func() error, stopped error) {
	grp.Go(func() error {
		if err := serve(); err != nil && !errors.Is(err, stopped) {
			cancel(err)
			return err
		}
		return nil
	})
}

// RunSSH serves ssh games on l in grp.
func RunSSH(grp *errgroup.Group, cancel context.CancelCauseFunc, l net.Listener, s *ssh.Server) {
	run(grp, cancel, func() error { return s.Serve(l) }, ssh.ErrServerClosed)
}

// ShutdownSSH stops accepting players and waits up to timeout for the games
// in lobby to end before closing their connections.
func ShutdownSSH(s *ssh.Server, timeout time.Duration, lobby *Lobby) error {
	if timeout <= 0 {
		timeout = DefaultShutdownTimeout
	}
	if n := lobby.Playing(); n > 0 {
		log.Info("Waiting for games to end", "playing", n, "players", lobby.Players(), "timeout", timeout)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	err := s.Shutdown(ctx)
	switch {
	case err == nil, errors.Is(err, ssh.ErrServerClosed):
		err = nil
	case errors.Is(err, context.DeadlineExceeded):
		log.Warn("Closing unfinished games", "players", lobby.Players())
		err = s.Close()
	}
	log.Info("Served", "games", lobby.Games())
	return err
}

// webOptions configures gotty for the game: keys are forwarded, the player
// name may be passed as a URL argument and the terminal draws with WebGL.
func webOptions() (*server.Options, error) {
	opts := &server.Options{}
	if err := utils.ApplyDefaultValues(opts); err != nil {
		return nil, fmt.Errorf("web defaults: %w", err)
	}
	opts.Preferences = &server.HtermPrefernces{}
	if err := utils.ApplyDefaultValues(opts.Preferences); err != nil {
		return nil, fmt.Errorf("web terminal defaults: %w", err)
	}
	opts.Preferences.EnableWebGL = true
	opts.PermitWrite = true
	opts.PermitArguments = true

	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("web options: %w", err)
	}
	return opts, nil
}

// RunWeb serves browser games from fact on l in grp until ctx is done.
func RunWeb(ctx context.Context, grp *errgroup.Group, cancel context.CancelCauseFunc, l net.Listener, fact server.Factory) error {
	opts, err := webOptions()
	if err != nil {
		return err
	}
	srv, err := server.New(fact, opts)
	if err != nil {
		return fmt.Errorf("creating web server: %w", err)
	}
	run(grp, cancel, func() error { return srv.Run(ctx, server.WithListener(l)) }, context.Canceled)
	return nil
}

// JoinContext returns a context canceled when either parent is done.
func JoinContext(ctx1, ctx2 context.Context) (context.Context, context.CancelCauseFunc) {
	ctx, cancel := context.WithCancelCause(context.Background())

	go func() {
		select {
		case <-ctx1.Done():
			cancel(context.Cause(ctx1))
		case <-ctx2.Done():
			cancel(context.Cause(ctx2))
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
