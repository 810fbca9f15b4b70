package main

import (
	"context"
	"errors"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	tui "github.com/ghthor/polyis/bubbles/polyis"
	"github.com/ghthor/polyis/config"
	"github.com/ghthor/polyis/game"
	"github.com/ghthor/polyis/polyomino"
	"github.com/ghthor/polyis/scores"
)

// runGame takes over the terminal until the player quits.
var runGame = func(ctx context.Context, m *tui.Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

func newPlayCmd(settings *config.Settings) *cobra.Command {
	var logFile string

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play in this terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// the terminal belongs to the game, so logs go to a file or nowhere
			logger := log.New(io.Discard)
			if logFile != "" {
				f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					return err
				}
				defer f.Close()
				logger = log.NewWithOptions(f, log.Options{
					Level:           log.GetLevel(),
					ReportTimestamp: true,
				})
			}
			log.SetDefault(logger)

			ctx := cmd.Context()
			store := openStore(ctx, *settings, logger)
			if store != nil {
				defer store.Close()
			}

			keys, err := settings.KeyMap()
			if err != nil {
				return err
			}

			s := game.NewSession(settings.Game, polyomino.CatalogFor(settings.Game.Tiles))
			m := tui.New(s,
				tui.WithKeyMap(keys),
				tui.WithGhost(settings.Ghost),
				tui.WithLogger(logger),
				tui.WithGameOver(recordScore(store, settings.Player, settings.Game)),
			)

			return runGame(ctx, m)
		},
	}
	cmd.Flags().StringVar(&logFile, "log-file", "", "append debug logs to this file")
	return cmd
}

// openStore opens the score database, returning nil when scores cannot be
// kept.
func openStore(ctx context.Context, settings config.Settings, logger *log.Logger) *scores.Store {
	path, err := settings.ScoresFile()
	if err != nil {
		logger.Warn("scores disabled", "error", err)
		return nil
	}
	store, err := scores.Open(ctx, path)
	if err != nil {
		logger.Warn("scores disabled", "path", path, "error", err)
		return nil
	}
	return store
}

// recordScore saves standard games to store and reports their rank. Custom
// games and games without a store are not recorded.
func recordScore(store *scores.Store, player string, cfg game.Config) tui.GameOverFunc {
	return func(over game.GameOver) tea.Cmd {
		if store == nil || cfg.Custom {
			return nil
		}
		return func() tea.Msg {
			e, err := store.Save(scores.Entry{
				Player: player,
				Score:  over.Score,
				Lines:  over.Lines,
				Level:  over.Level,
				Tiles:  cfg.Tiles,
			})
			if err != nil {
				return tui.ScoreSavedMsg{Err: err}
			}
			rank, err := store.Rank(e.Tiles, e.Score)
			return tui.ScoreSavedMsg{Rank: rank, Err: err}
		}
	}
}
