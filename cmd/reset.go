package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Erase all attempts and solved marks on the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		u, err := d.requireLogin(cmd)
		if err != nil {
			return err
		}

		confirmed, _ := cmd.Flags().GetBool("yes")
		if !confirmed {
			answer, err := prompt(bufio.NewReader(cmd.InOrStdin()), cmd.ErrOrStderr(),
				fmt.Sprintf("Erase all progress for %s? This cannot be undone. [y/N] ", u.Username))
			if err != nil {
				return err
			}
			confirmed = strings.EqualFold(answer, "y") || strings.EqualFold(answer, "yes")
		}
		if !confirmed {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
			return nil
		}

		if err := d.mediator.ResetAll(cmd.Context(), true); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Progress reset.")
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
}
