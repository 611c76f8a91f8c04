package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/lingo/internal/catalog"
	"github.com/abhisek/lingo/internal/mastery"
	"github.com/abhisek/lingo/internal/spacedrep"
)

func newReviewCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "review <collection> <item> <quality>",
		Short: "Record a single graded review",
		Long: `Record a single graded review outside a practice session.

<item> is an item ID or its glyph. <quality> is 0-5, or y/n for a known/unknown
answer (graded 4 and 1).`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := mastery.ParseQuality(args[2])
			if err != nil {
				return err
			}
			return ctx.withApp(cmd, func(a *app) error {
				c, err := a.collection(args[0])
				if err != nil {
					return err
				}
				item, ok := c.Find(args[1])
				if !ok {
					return fmt.Errorf("%w: item %q in %s", catalog.ErrNotFound, args[1], c.ID)
				}

				key := mastery.Key{UserID: a.userID, CollectionID: c.ID, ItemID: item.ID}
				before, err := a.mastery.Get(cmd.Context(), key)
				if err != nil {
					return err
				}
				rec, err := a.mastery.Review(cmd.Context(), key, q)
				if err != nil {
					return err
				}

				r := rendererFor(cmd)
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s %s graded %d (%s)\n", item.Glyph, item.ID, int(q), q)
				fmt.Fprintf(out, "  strength %d, ease %.2f, interval %d day(s)\n", rec.Strength, rec.EaseFactor, rec.IntervalDays)
				fmt.Fprintf(out, "  next review %s (in %d day(s))\n", formatDate(rec.NextReviewAt), spacedrep.DaysUntilReview(rec, time.Now()))
				if tr := mastery.Transition(before, rec); tr != nil {
					fmt.Fprintf(out, "  %s -> %s\n", r.Status(tr.From), r.Status(tr.To))
				} else {
					fmt.Fprintf(out, "  status %s\n", r.Status(rec.Status()))
				}
				return nil
			})
		},
	}
}
