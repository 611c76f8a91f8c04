package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/abhisek/lingo/internal/reminder"
)

func newRemindCommand(ctx *commandContext) *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Report collections with reviews due, periodically",
		Long: `Report collections with reviews due.

By default remind keeps running and checks every reminder.interval_minutes
while the local hour is within [reminder.start_hour, reminder.end_hour].
With --once it checks a single time and exits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(a *app) error {
				source := reminder.ProgressSource{Service: a.mastery, Registry: a.catalog, UserID: a.userID}
				notifier := printNotifier(cmd.OutOrStdout())
				cfg := a.cfg.Reminder
				if once {
					cfg.StartHour, cfg.EndHour = 0, 23
				}
				sched := reminder.New(cfg, source, notifier, reminder.WithLogger(a.logger))

				if once {
					sent, err := sched.Check(cmd.Context())
					if err != nil {
						return err
					}
					if !sent {
						fmt.Fprintln(cmd.OutOrStdout(), "Nothing due.")
					}
					return nil
				}

				if err := sched.Start(cmd.Context()); err != nil {
					return err
				}
				defer sched.Stop()
				<-cmd.Context().Done()
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&once, "once", false, "Check once and exit, ignoring the reminder hours")
	return cmd
}

func printNotifier(out io.Writer) reminder.NotifierFunc {
	return func(_ context.Context, due []reminder.Due) error {
		for _, d := range due {
			line := fmt.Sprintf("%s: %d item(s) due", d.CollectionID, d.Count)
			if d.Overdue > 0 {
				line += fmt.Sprintf(", %d overdue", d.Overdue)
			}
			if _, err := fmt.Fprintln(out, line); err != nil {
				return err
			}
		}
		return nil
	}
}
