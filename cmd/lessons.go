package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/lingo/internal/catalog"
	"github.com/abhisek/lingo/internal/mastery"
)

func newLessonsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "lessons <collection>",
		Short: "List the lesson sets of a collection",
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
				lessons := catalog.GenerateLessonSets(c, a.cfg.Practice.LessonMinSize)
				rows := make([][]string, 0, len(lessons))
				for _, l := range lessons {
					sum := mastery.Summarize(l.ItemIDs(), progress, now)
					rows = append(rows, []string{
						l.ID,
						l.Name,
						strconv.Itoa(sum.Total),
						strconv.Itoa(sum.Due),
						fmt.Sprintf("%d%%", sum.MasteryPercent),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Lesson", "Name", "Items", "Due", "Mastered"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight},
				))
				return nil
			})
		},
	}
}
