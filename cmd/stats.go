package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/lingo/internal/catalog"
	"github.com/abhisek/lingo/internal/mastery"
	"github.com/abhisek/lingo/internal/ui"
)

func newStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats [collection]",
		Short: "Show learning statistics",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(a *app) error {
				collections := a.catalog.List()
				if len(args) == 1 {
					c, err := a.collection(args[0])
					if err != nil {
						return err
					}
					collections = []*catalog.Collection{c}
				}

				now := time.Now()
				r := rendererFor(cmd)
				rows := make([][]string, 0, len(collections))
				var bars []string
				for _, c := range collections {
					progress, err := a.mastery.Progress(cmd.Context(), a.userID, c.ID)
					if err != nil {
						return err
					}
					acc, reviews, err := a.store.ReviewEventRepo().Accuracy(cmd.Context(), a.userID, c.ID)
					if err != nil {
						return &mastery.PersistenceError{Op: "load accuracy", Key: mastery.Key{UserID: a.userID, CollectionID: c.ID}, Err: err}
					}

					sum := mastery.Summarize(c.ItemIDs(), progress, now)
					accuracy := "-"
					if reviews > 0 {
						accuracy = formatPercent(acc)
					}
					rows = append(rows, []string{
						c.ID,
						strconv.Itoa(sum.Total),
						strconv.Itoa(sum.New),
						strconv.Itoa(sum.Learning),
						strconv.Itoa(sum.Reviewing),
						strconv.Itoa(sum.Mastered),
						strconv.Itoa(sum.Due),
						strconv.Itoa(reviews),
						accuracy,
					})
					bars = append(bars, r.View(ui.ProgressBar{
						Label:   fmt.Sprintf("%-14s", c.ID),
						Percent: float64(sum.MasteryPercent) / 100,
						Width:   30,
					}))
				}

				out := cmd.OutOrStdout()
				fmt.Fprintln(out, renderTable(
					[]string{"Collection", "Items", "New", "Learning", "Reviewing", "Mastered", "Due", "Reviews", "Accuracy"},
					rows,
					[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight},
				))
				for _, b := range bars {
					fmt.Fprintln(out, b)
				}
				return nil
			})
		},
	}
}
