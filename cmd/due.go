package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/lingo/internal/spacedrep"
)

func newDueCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "due <collection>",
		Short: "List items due for review, most overdue first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(a *app) error {
				c, err := a.collection(args[0])
				if err != nil {
					return err
				}
				progress, err := a.mastery.Progress(cmd.Context(), a.userID, c.ID)
				if err != nil {
					return err
				}

				now := time.Now()
				out := cmd.OutOrStdout()
				due := spacedrep.DueItems(progress, now)
				if len(due) == 0 {
					if next := spacedrep.NextDue(progress, now); !next.IsZero() {
						fmt.Fprintf(out, "Nothing due in %s. Next review %s.\n", c.ID, formatDate(next))
					} else {
						fmt.Fprintf(out, "Nothing reviewed in %s yet. Start with: lingo practice %s\n", c.ID, c.ID)
					}
					return nil
				}
				if limit > 0 && len(due) > limit {
					due = due[:limit]
				}

				r := rendererFor(cmd)
				rows := make([][]string, 0, len(due))
				for _, d := range due {
					glyph := d.ItemID
					if item, ok := c.Item(d.ItemID); ok {
						glyph = item.Glyph
					}
					rows = append(rows, []string{
						glyph,
						d.ItemID,
						string(d.Status),
						fmt.Sprintf("%.1f", d.OverdueDays),
						strconv.Itoa(d.Record.Strength),
						r.Status(d.Record.Status()),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Item", "ID", "Review", "Overdue (days)", "Strength", "Status"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Show at most this many items (0 for all)")
	return cmd
}
