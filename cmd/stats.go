package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	statsview "github.com/abhisek/quantiz/internal/screens/stats"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show progress statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		if err := d.catalog.RefreshStats(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), statsview.Render(d.catalog.Stats(), 80))
		return nil
	},
}
