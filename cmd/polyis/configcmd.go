package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ghthor/polyis/config"
)

func newConfigCmd(settings *config.Settings) *cobra.Command {
	var save bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective settings",
		Long: `Print the settings after applying the config file and flags.
With --save they are written to the user config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if save {
				path, err := settings.Save()
				if err != nil {
					return fmt.Errorf("saving config: %w", err)
				}
				fmt.Fprintln(cmd.ErrOrStderr(), "saved", path)
			}
			data, err := json.MarshalIndent(settings, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
	cmd.Flags().BoolVar(&save, "save", false, "write the settings to the config file")
	return cmd
}
