package main

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/ghthor/polyis/config"
	"github.com/ghthor/polyis/scores"
)

func newScoresCmd(settings *config.Settings) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "scores",
		Short: "Show the best standard games for the selected tile count",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := settings.ScoresFile()
			if err != nil {
				return err
			}
			store, err := scores.Open(cmd.Context(), path)
			if err != nil {
				return fmt.Errorf("opening scores: %w", err)
			}
			defer store.Close()

			top, err := store.Top(settings.Game.Tiles, limit)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if len(top) == 0 {
				fmt.Fprintf(w, "no %d-tile games recorded\n", settings.Game.Tiles)
				return nil
			}

			t := table.New().
				Border(lipgloss.RoundedBorder()).
				Headers("#", "PLAYER", "SCORE", "LINES", "LEVEL", "DATE")
			for i, e := range top {
				t.Row(
					strconv.Itoa(i+1),
					e.Player,
					strconv.FormatUint(e.Score, 10),
					strconv.Itoa(e.Lines),
					strconv.Itoa(e.Level),
					e.At.Local().Format("2006-01-02 15:04"),
				)
			}
			fmt.Fprintln(w, t.Render())
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "number of games shown")
	return cmd
}
