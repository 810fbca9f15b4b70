package main

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ghthor/polyis/config"
)

func init() {
	switch os.Getenv("LIPGLOSS_LOG_FORMAT") {
	case "json":
		log.SetFormatter(log.JSONFormatter)
	case "logfmt":
		log.SetFormatter(log.LogfmtFormatter)
	}
}

func main() {
	settings, path, err := config.Load()
	if err != nil {
		log.Fatal("loading config", "error", err)
	}
	if path != "" {
		log.Debug("loaded config", "path", path)
	}

	if err := newRootCmd(&settings).ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(settings *config.Settings) *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "polyis",
		Short: "Falling polyomino puzzle for the terminal",
		Long: `polyis drops shapes made of any number of tiles from 1 to 10 onto a board.
Complete rows to clear them. Four tiles plays the classic seven shapes,
every other size plays every polyomino of that size.

Settings are read from $XDG_CONFIG_HOME/polyis/config.json and flags override
them.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				log.SetLevel(log.DebugLevel)
			}
			flags := cmd.Flags()
			if flags.Changed("gravity") || flags.Changed("lock-delay") {
				settings.Game.Custom = true
			}
			return settings.Validate()
		},
	}

	g := &settings.Game
	pf := root.PersistentFlags()
	pf.BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	pf.IntVar(&g.Width, "width", g.Width, "board width")
	pf.IntVar(&g.Height, "height", g.Height, "board height including the 2 hidden rows")
	pf.IntVarP(&g.Tiles, "tiles", "n", g.Tiles, "tiles per shape, 1 to 10")
	pf.IntVar(&g.StartLevel, "level", g.StartLevel, "starting level, 1 to 15")
	pf.IntVar(&g.LinesPerLevel, "lines-per-level", g.LinesPerLevel, "cleared rows needed per level")
	pf.Float64Var(&g.GravityMultiplier, "gravity", g.GravityMultiplier, "gravity multiplier, makes the game custom")
	pf.Float64Var(&g.LockDelayMultiplier, "lock-delay", g.LockDelayMultiplier, "lock delay multiplier, makes the game custom")
	pf.BoolVar(&g.Custom, "custom", g.Custom, "custom games are not recorded on the scoreboard")
	pf.IntVar(&g.Lookahead, "lookahead", g.Lookahead, "upcoming pieces shown, 0 to 7")
	pf.Uint64Var(&g.Seed, "seed", g.Seed, "piece randomizer seed, 0 for random")
	pf.BoolVar(&settings.Ghost, "ghost", settings.Ghost, "show where the piece will land")
	pf.StringVar(&settings.Player, "player", settings.Player, "name recorded with scores")
	pf.StringVar(&settings.ScoresPath, "scores", settings.ScoresPath, "score database path")

	// a bare polyis plays
	play := newPlayCmd(settings)
	root.RunE = play.RunE
	root.Args = cobra.NoArgs
	root.Flags().AddFlagSet(play.Flags())

	root.AddCommand(play)
	root.AddCommand(newServeCmd(settings))
	root.AddCommand(newShapesCmd())
	root.AddCommand(newScoresCmd(settings))
	root.AddCommand(newConfigCmd(settings))

	return root
}

