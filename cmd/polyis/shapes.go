package main

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/ghthor/polyis/polyomino"
)

func newShapesCmd() *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "shapes <tiles>",
		Short: "List every shape of a tile count",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("tiles: %w", err)
			}
			if n < 1 || n > polyomino.MaxTiles {
				return fmt.Errorf("tiles %d outside [1, %d]", n, polyomino.MaxTiles)
			}

			w := cmd.OutOrStdout()
			if plain {
				masks := polyomino.Find(n)
				fmt.Fprintf(w, "%d shapes\n", len(masks))
				for i, m := range masks {
					fmt.Fprintf(w, "\n#%d\n%s\n", i+1, m)
				}
				return nil
			}

			catalog := polyomino.CatalogFor(n)
			fmt.Fprintf(w, "%d shapes\n", catalog.Len())
			for _, s := range catalog.Shapes() {
				fmt.Fprintf(w, "\n%s\n", s.Name)
				for _, row := range s.Tiles() {
					for _, t := range row {
						if t.Exists {
							fmt.Fprint(w, lipgloss.NewStyle().Background(lipgloss.Color(t.Color.Hex())).Render("  "))
						} else {
							fmt.Fprint(w, "  ")
						}
					}
					fmt.Fprintln(w)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "draw enumerated shapes without color")
	return cmd
}
