package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newResetCommand(ctx *commandContext) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset <collection>",
		Short: "Delete your progress in a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(a *app) error {
				c, err := a.collection(args[0])
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if !yes {
					fmt.Fprintf(out, "Delete all progress for %s in %s? [y/N] ", a.userID, c.ID)
					in := bufio.NewScanner(cmd.InOrStdin())
					if !in.Scan() || !isYes(in.Text()) {
						fmt.Fprintln(out, "Aborted.")
						return nil
					}
				}

				n, err := a.mastery.Reset(cmd.Context(), a.userID, c.ID)
				if err != nil {
					return err
				}
				a.logger.Info("progress reset", "collection", c.ID, "records", n)
				fmt.Fprintf(out, "Removed %d record(s) from %s.\n", n, c.ID)
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func isYes(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes":
		return true
	}
	return false
}
