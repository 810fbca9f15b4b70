package main

import (
	"context"
	"errors"
	"net"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ghthor/polyis"
	tui "github.com/ghthor/polyis/bubbles/polyis"
	"github.com/ghthor/polyis/config"
	"github.com/ghthor/polyis/game"
	"github.com/ghthor/polyis/polyomino"
	"github.com/ghthor/polyis/teatty"
)

func newServeCmd(settings *config.Settings) *cobra.Command {
	var (
		addr     string
		httpAddr string
		hostKey  string
		timeout  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve games over ssh and optionally to browsers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancelCause(cmd.Context())
			defer cancel(nil)
			rootCtx := ctx

			ctx, sigCancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer sigCancel()

			grp, grpCtx := errgroup.WithContext(ctx)

			keys, err := settings.KeyMap()
			if err != nil {
				return err
			}

			store := openStore(ctx, *settings, log.Default())
			if store != nil {
				defer store.Close()
			}

			// shared by every connection, shapes are immutable
			catalog := polyomino.CatalogFor(settings.Game.Tiles)
			cfg := settings.Game

			lobby := polyis.NewLobby()
			newGame := func(ctx context.Context, player string, remote net.Addr, r *lipgloss.Renderer) *tui.Model {
				lobby.Join(ctx, player)
				logger := log.With("user", player, "remote", remote.String())
				logger.Info("game started", "playing", lobby.Playing())
				return tui.New(game.NewSession(cfg, catalog),
					tui.WithRenderer(r),
					tui.WithKeyMap(keys),
					tui.WithGhost(settings.Ghost),
					tui.WithLogger(logger),
					tui.WithGameOver(recordScore(store, player, cfg)),
				)
			}

			s, err := polyis.NewSSHServer(ctx, addr, hostKey,
				func(ctx context.Context, sess polyis.Session, r *lipgloss.Renderer) tea.Model {
					return newGame(ctx, sess.User(), sess.RemoteAddr(), r)
				})
			if err != nil {
				return err
			}

			if httpAddr != "" {
				hl, err := net.Listen("tcp", httpAddr)
				if err != nil {
					return err
				}
				fact := teatty.NewFactory(ctx, polyis.JoinContext,
					func(ctx context.Context, p teatty.Player, r *lipgloss.Renderer) *tui.Model {
						return newGame(ctx, p.Name, p.Remote, r)
					})
				log.Info("Starting web server", "addr", hl.Addr().String())
				if err = polyis.RunWeb(grpCtx, grp, cancel, hl, fact); err != nil {
					hl.Close()
					return err
				}
			}

			l, err := net.Listen("tcp", addr)
			if err != nil {
				return err
			}
			log.Info("Starting SSH server", "addr", l.Addr().String(), "tiles", cfg.Tiles)
			polyis.RunSSH(grp, cancel, l, s)

			<-grpCtx.Done()
			if err = context.Cause(rootCtx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("server failed", "error", err)
			}

			log.Info("Stopping SSH server")
			if err = polyis.ShutdownSSH(s, timeout, lobby); err != nil {
				log.Error("Could not stop server", "error", err)
			}

			if err = grp.Wait(); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&addr, "addr", ":23234", "ssh listen address")
	f.StringVar(&httpAddr, "http", "", "browser terminal listen address, disabled when empty")
	f.StringVar(&hostKey, "host-key", ".ssh/id_ed25519", "ssh host key path, generated when missing")
	f.DurationVar(&timeout, "shutdown-timeout", polyis.DefaultShutdownTimeout, "time allowed for players to disconnect")
	return cmd
}

