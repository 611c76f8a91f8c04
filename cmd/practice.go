package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/abhisek/lingo/internal/catalog"
	"github.com/abhisek/lingo/internal/mastery"
	"github.com/abhisek/lingo/internal/session"
	"github.com/abhisek/lingo/internal/spacedrep"
	"github.com/abhisek/lingo/internal/ui"
)

type practiceOptions struct {
	filter string
	count  int
	lesson string
	seed   uint64
}

func newPracticeCommand(ctx *commandContext) *cobra.Command {
	var opts practiceOptions

	cmd := &cobra.Command{
		Use:   "practice <collection>",
		Short: "Run an interactive flashcard session",
		Long: `Run an interactive flashcard session.

Each card shows a glyph. Answer y if you knew it, n if you did not, or grade
it 0-5. Enter q to stop early; answers given so far are still saved.

With --lesson, the lesson is worked in batches of five: a flash pass, then a
quiz asking for each glyph's romanization. A final quiz asking for the glyph
of every romanization closes the lesson, and only its answers are saved.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lockPath, err := ctx.lockPath()
			if err != nil {
				return err
			}
			lock := flock.New(lockPath)
			ok, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire lock: %w", err)
			}
			if !ok {
				return errors.New("another practice session is already running")
			}
			defer func() { _ = lock.Unlock() }()

			return ctx.withApp(cmd, func(a *app) error {
				return runPractice(cmd, a, args[0], opts)
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.filter, "filter", "f", "", "Item filter: all, new, due or weak (default from config)")
	flags.IntVarP(&opts.count, "count", "n", 0, "Items per session (default from config, -1 for all)")
	flags.StringVar(&opts.lesson, "lesson", "", "Practice every item of one lesson set")
	flags.Uint64Var(&opts.seed, "seed", 0, "Shuffle seed for a reproducible order (0 for random)")
	return cmd
}

func runPractice(cmd *cobra.Command, a *app, collectionID string, opts practiceOptions) error {
	c, err := a.collection(collectionID)
	if err != nil {
		return err
	}

	filterName := opts.filter
	if filterName == "" {
		filterName = a.cfg.Practice.Filter
	}
	filter, err := spacedrep.ParseFilter(filterName)
	if err != nil {
		return err
	}
	count := opts.count
	if count == 0 {
		count = a.cfg.Practice.Count
	}

	progress, err := a.mastery.Progress(cmd.Context(), a.userID, c.ID)
	if err != nil {
		return err
	}

	var rng *rand.Rand
	if opts.seed != 0 {
		rng = rand.New(rand.NewPCG(opts.seed, opts.seed))
	}
	if opts.lesson != "" {
		return runLesson(cmd, a, c, opts.lesson, rng)
	}

	planner := session.NewPlanner(rng, time.Now)
	s, err := planner.Plan(a.userID, c, progress, session.Options{
		Filter: filter,
		Count:  count,
	})
	if errors.Is(err, spacedrep.ErrNoItemsAvailable) {
		fmt.Fprintf(cmd.OutOrStdout(), "No items match filter %q in %s.\n", filter, c.ID)
		return nil
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	r := rendererFor(cmd)
	in := bufio.NewScanner(cmd.InOrStdin())
	log := a.logger.With("session", s.ID, "collection", c.ID)
	log.Debug("session started", "items", len(s.Batch), "filter", filter)

	fmt.Fprintln(out, r.Title(fmt.Sprintf("%s: %d item(s)", collectionName(c), len(s.Batch))))
	quit := runSession(cmd, r, in, s)

	saveErr := saveAnswers(cmd, a, c, r, s, log)
	printSummary(out, r, s.Summary())
	log.Info("session finished", "answered", len(s.Answers), "known", len(s.Known))
	if saveErr != nil || quit {
		return saveErr
	}

	for len(s.Unknown) > 0 {
		fmt.Fprintf(out, "Retry the %d missed item(s)? Retries are not saved. [y/N] ", len(s.Unknown))
		if !in.Scan() || !isYes(in.Text()) {
			fmt.Fprintln(out)
			return nil
		}
		retry, err := s.RetryMissed(rng)
		if err != nil {
			return err
		}
		s = retry
		if runSession(cmd, r, in, s) {
			return nil
		}
		printSummary(out, r, s.Summary())
	}
	return nil
}

// runLesson works through a lesson set batch by batch and saves the final
// quiz. Stopping before the final quiz is finished saves nothing.
func runLesson(cmd *cobra.Command, a *app, c *catalog.Collection, lessonID string, rng *rand.Rand) error {
	planner := session.NewPlanner(rng, time.Now)
	l, err := planner.PlanLesson(a.userID, c, lessonID, a.cfg.Practice.LessonMinSize)
	if errors.Is(err, spacedrep.ErrNoItemsAvailable) {
		fmt.Fprintf(cmd.OutOrStdout(), "Lesson %s has no items.\n", lessonID)
		return nil
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	r := rendererFor(cmd)
	in := bufio.NewScanner(cmd.InOrStdin())
	log := a.logger.With("lesson", l.ID, "collection", c.ID)
	log.Debug("lesson started", "items", len(l.Items), "batches", len(l.Batches))

	stopped := func() error {
		fmt.Fprintln(out, "Lesson stopped before the final quiz; nothing was saved.")
		log.Info("lesson stopped", "batch", l.BatchIndex+1)
		return nil
	}

	fmt.Fprintln(out, r.Title(fmt.Sprintf("%s: lesson %s, %d item(s) in %d batch(es)",
		collectionName(c), l.ID, len(l.Items), len(l.Batches))))
	for {
		n := l.BatchIndex + 1
		fmt.Fprintln(out, r.Title(fmt.Sprintf("Batch %d/%d: flash", n, len(l.Batches))))
		flash := l.Flash()
		for {
			if runSession(cmd, r, in, flash) {
				return stopped()
			}
			if len(flash.Unknown) == 0 {
				break
			}
			fmt.Fprintf(out, "Flash the %d card(s) again? [y/N] ", len(flash.Batch))
			if !in.Scan() || !isYes(in.Text()) {
				break
			}
			flash.Restart(rng)
		}

		fmt.Fprintln(out, r.Title(fmt.Sprintf("Batch %d/%d: quiz", n, len(l.Batches))))
		quiz := l.BatchQuiz()
		if runQuiz(cmd, r, in, quiz) {
			return stopped()
		}
		correct, total := quiz.Score()
		fmt.Fprintf(out, "  batch %d: flash %d/%d, quiz %d/%d\n", n, len(flash.Known), len(flash.Batch), correct, total)
		if !l.NextBatch() {
			break
		}
	}

	fmt.Fprintln(out, r.Title(fmt.Sprintf("Final quiz: %d item(s)", len(l.Items))))
	final := l.FinalQuiz()
	if runQuiz(cmd, r, in, final) {
		return stopped()
	}
	res, err := l.Results(final)
	if err != nil {
		return err
	}

	saveErr := saveAnswers(cmd, a, c, r, res, log.With("session", res.ID))
	printSummary(out, r, res.Summary())
	log.Info("lesson finished", "known", len(res.Known), "unknown", len(res.Unknown))
	return saveErr
}

// saveAnswers persists a session's answers and prints status transitions.
// It runs on a context detached from cancellation so an interrupted session
// still keeps what was answered.
func saveAnswers(cmd *cobra.Command, a *app, c *catalog.Collection, r ui.Renderer, s *session.Session, log *slog.Logger) error {
	if len(s.Answers) == 0 {
		return nil
	}
	ctx := context.WithoutCancel(cmd.Context())
	res, err := a.mastery.ReviewBatch(ctx, a.userID, c.ID, s.ID, s.Outcomes())
	for _, tr := range res.Transitions {
		item, _ := c.Item(tr.ItemID)
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s -> %s\n", item.Glyph, r.Status(tr.From), r.Status(tr.To))
	}
	if err != nil {
		log.Error("saving reviews failed", "failed", len(res.Failed), "error", err)
		return fmt.Errorf("save %d review(s): %w", len(res.Failed), err)
	}
	return nil
}

// runSession asks for every remaining card. It reports whether the learner
// quit early.
func runSession(cmd *cobra.Command, r ui.Renderer, in *bufio.Scanner, s *session.Session) bool {
	out := cmd.OutOrStdout()
	for !s.Finished() {
		if cmd.Context().Err() != nil {
			return true
		}
		item, _ := s.Current()
		fmt.Fprintln(out, r.Front(item, s.CurrentIndex+1, len(s.Batch)))
		fmt.Fprint(out, r.Hint("known? [y/n/0-5, q to quit] "))
		if !in.Scan() {
			fmt.Fprintln(out)
			return true
		}

		input := strings.TrimSpace(in.Text())
		if input == "q" || input == "quit" {
			fmt.Fprintf(out, "Stopped with %d card(s) unanswered.\n", s.Remaining())
			return true
		}
		q, err := mastery.ParseQuality(input)
		if err != nil {
			fmt.Fprintln(out, "Enter y, n or a grade from 0 to 5.")
			continue
		}
		if err := s.Answer(q); err != nil {
			fmt.Fprintln(out, err)
			continue
		}

		verdict := "✓"
		if !q.IsCorrect() {
			verdict = "✗"
		}
		fmt.Fprintln(out, r.Result(verdict, q.IsCorrect()))
		fmt.Fprintln(out, r.Back(item))
	}
	return false
}

// runQuiz asks every remaining question. It reports whether the learner
// quit early.
func runQuiz(cmd *cobra.Command, r ui.Renderer, in *bufio.Scanner, q *session.Quiz) bool {
	out := cmd.OutOrStdout()
	for !q.Finished() {
		if cmd.Context().Err() != nil {
			return true
		}
		cur, _ := q.Current()
		fmt.Fprintln(out, r.Choice(cur.Prompt, cur.Options, q.CurrentIndex+1, len(q.Questions)))
		fmt.Fprint(out, r.Hint(fmt.Sprintf("answer [1-%d, q to quit] ", len(cur.Options))))
		if !in.Scan() {
			fmt.Fprintln(out)
			return true
		}

		input := strings.TrimSpace(in.Text())
		if input == "q" || input == "quit" {
			return true
		}
		n, err := strconv.Atoi(input)
		if err != nil {
			fmt.Fprintf(out, "Enter a number from 1 to %d.\n", len(cur.Options))
			continue
		}
		correct, err := q.Choose(n - 1)
		if err != nil {
			fmt.Fprintf(out, "Enter a number from 1 to %d.\n", len(cur.Options))
			continue
		}
		if correct {
			fmt.Fprintln(out, r.Result("✓ "+cur.Answer, true))
		} else {
			fmt.Fprintln(out, r.Result("✗ "+cur.Answer, false))
		}
	}
	return false
}

func printSummary(out io.Writer, r ui.Renderer, sum session.Summary) {
	fmt.Fprintln(out, r.Title("Session summary"))
	fmt.Fprintf(out, "  answered %d of %d in %s\n", sum.Answered, sum.Total, sum.Duration.Round(time.Second))
	fmt.Fprintf(out, "  known %d, unknown %d, accuracy %s\n", sum.Known, sum.Unknown, formatPercent(sum.Accuracy))
	if len(sum.Missed) > 0 {
		glyphs := make([]string, len(sum.Missed))
		for i, it := range sum.Missed {
			glyphs[i] = it.Glyph
		}
		fmt.Fprintf(out, "  missed: %s\n", strings.Join(glyphs, " "))
	}
}
