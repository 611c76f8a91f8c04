package cmd

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/lingo/internal/catalog"
	"github.com/abhisek/lingo/internal/mastery"
	"github.com/abhisek/lingo/internal/store"
)

// setupCLIEnv isolates config, data and .env lookup in a temp dir and
// returns the database path commands will use.
func setupCLIEnv(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	t.Setenv("HOME", base)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(base, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(base, "data"))
	t.Setenv("XDG_RUNTIME_DIR", base)
	t.Setenv("NO_COLOR", "1")
	for _, k := range []string{"LINGO_DB", "LINGO_DB_DRIVER", "LINGO_USER", "LINGO_LOG_FORMAT"} {
		t.Setenv(k, "")
	}
	t.Setenv("LINGO_LOG_LEVEL", "error")
	t.Chdir(base)
	return filepath.Join(base, "data", "lingo", "lingo.db")
}

func runCLI(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := runCLIContext(t, context.Background(), &out, &errOut, strings.NewReader(stdin), args...)
	return out.String(), errOut.String(), err
}

// runCLIContext runs the CLI with ctx and caller-owned streams, for input
// that reacts to output or to cancellation.
func runCLIContext(t *testing.T, ctx context.Context, out, errOut *bytes.Buffer, in io.Reader, args ...string) error {
	t.Helper()
	root := newRootCommand()
	root.SetOut(out)
	root.SetErr(errOut)
	root.SetIn(in)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected output to contain %q, got:\n%s", substr, output)
	}
}

func reviewEvents(t *testing.T, dbPath, userID string) []store.ReviewEventRecord {
	t.Helper()
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()
	events, err := st.ReviewEventRepo().QueryReviews(context.Background(), userID, store.QueryOpts{})
	require.NoError(t, err)
	return events
}

func TestVersion(t *testing.T) {
	setupCLIEnv(t)
	out, _, err := runCLI(t, "", "version")
	require.NoError(t, err)
	requireContains(t, out, "lingo")
}

func TestCollections(t *testing.T) {
	setupCLIEnv(t)

	out, _, err := runCLI(t, "", "collections")
	require.NoError(t, err)
	for _, id := range []string{"ja-hiragana", "ko-jamo", "ru-cyrillic"} {
		requireContains(t, out, id)
	}

	out, _, err = runCLI(t, "", "collections", "--lang", "ko")
	require.NoError(t, err)
	requireContains(t, out, "ko-jamo")
	assert.NotContains(t, out, "ja-hiragana")

	out, _, err = runCLI(t, "", "collections", "--lang", "fr")
	require.NoError(t, err)
	requireContains(t, out, "No collections found. Languages: ja, ko, ru")
}

func TestLessons(t *testing.T) {
	setupCLIEnv(t)
	out, _, err := runCLI(t, "", "lessons", "ja-hiragana")
	require.NoError(t, err)
	requireContains(t, out, "ja-hiragana--0")
	requireContains(t, out, "Y row / R row")
}

func TestUnknownCollection(t *testing.T) {
	setupCLIEnv(t)
	_, _, err := runCLI(t, "", "due", "xx-nothing")
	require.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestReviewAndDue(t *testing.T) {
	db := setupCLIEnv(t)

	out, _, err := runCLI(t, "", "due", "ja-hiragana")
	require.NoError(t, err)
	requireContains(t, out, "Nothing reviewed")

	out, _, err = runCLI(t, "", "review", "ja-hiragana", "あ", "n")
	require.NoError(t, err)
	requireContains(t, out, "graded 1")
	requireContains(t, out, "new -> learning")

	out, _, err = runCLI(t, "", "review", "ja-hiragana", "i", "5")
	require.NoError(t, err)
	requireContains(t, out, "interval 1 day(s)")

	out, _, err = runCLI(t, "", "due", "ja-hiragana")
	require.NoError(t, err)
	requireContains(t, out, "あ")
	assert.NotContains(t, out, "い")

	events := reviewEvents(t, db, "default")
	require.Len(t, events, 2)
	assert.Equal(t, "a", events[0].ItemID)
	assert.False(t, events[0].Correct)
}

func TestReviewRejectsInvalidQuality(t *testing.T) {
	setupCLIEnv(t)
	_, _, err := runCLI(t, "", "review", "ja-hiragana", "a", "7")
	require.ErrorIs(t, err, mastery.ErrInvalidQuality)
}

func TestReviewUnknownItem(t *testing.T) {
	setupCLIEnv(t)
	_, _, err := runCLI(t, "", "review", "ja-hiragana", "zz", "4")
	require.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestPracticeSavesAnswers(t *testing.T) {
	db := setupCLIEnv(t)

	out, _, err := runCLI(t, "y\nbogus\nn\nq\n", "practice", "ja-hiragana", "--count", "3", "--seed", "7")
	require.NoError(t, err)
	requireContains(t, out, "Enter y, n or a grade")
	requireContains(t, out, "answered 2 of 3")
	requireContains(t, out, "known 1, unknown 1")

	events := reviewEvents(t, db, "default")
	require.Len(t, events, 2)
	assert.True(t, events[0].Correct)
	assert.False(t, events[1].Correct)
	assert.Equal(t, events[0].SessionID, events[1].SessionID)
}

func TestPracticeRetryIsNotSaved(t *testing.T) {
	db := setupCLIEnv(t)

	out, _, err := runCLI(t, "n\nn\ny\nn\ny\n", "practice", "ko-jamo", "--count", "2")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "Retries are not saved"))
	requireContains(t, out, "known 1, unknown 1")

	events := reviewEvents(t, db, "default")
	require.Len(t, events, 2)
	for _, e := range events {
		assert.False(t, e.Correct)
	}
}

// interruptingReader answers the first card and then cancels the command
// context, as SIGINT does through Execute.
type interruptingReader struct {
	answered bool
	cancel   context.CancelFunc
}

func (r *interruptingReader) Read(p []byte) (int, error) {
	if !r.answered {
		r.answered = true
		return copy(p, "y\n"), nil
	}
	r.cancel()
	return 0, io.EOF
}

func TestPracticeInterruptedKeepsAnswers(t *testing.T) {
	db := setupCLIEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var out, errOut bytes.Buffer
	err := runCLIContext(t, ctx, &out, &errOut, &interruptingReader{cancel: cancel},
		"practice", "ja-hiragana", "--count", "3", "--seed", "11")
	require.NoError(t, err)
	requireContains(t, out.String(), "answered 1 of 3")

	events := reviewEvents(t, db, "default")
	require.Len(t, events, 1)
	assert.True(t, events[0].Correct)
}

// lessonLearner answers a lesson by reading the command's output: y for
// flash cards and the right option for quiz questions, except for prompts
// listed in miss, which get a wrong option.
type lessonLearner struct {
	t    *testing.T
	out  *bytes.Buffer
	seen int
	c    *catalog.Collection
	miss map[string]bool
}

func (l *lessonLearner) Read(p []byte) (int, error) {
	fresh := l.out.String()[l.seen:]
	l.seen = l.out.Len()
	switch {
	case strings.HasSuffix(fresh, "q to quit] ") && strings.Contains(fresh, "known?"):
		return copy(p, "y\n"), nil
	case strings.HasSuffix(fresh, "q to quit] "):
		return copy(p, l.choose(fresh)+"\n"), nil
	}
	return 0, io.EOF
}

// choose picks an option number from the last rendered question.
func (l *lessonLearner) choose(fresh string) string {
	lines := strings.Split(fresh, "\n")
	at := -1
	for i, line := range lines {
		if strings.HasPrefix(line, "  1) ") {
			at = i
		}
	}
	require.Positive(l.t, at, "no question in output:\n%s", fresh)

	head := lines[at-1]
	prompt := head[strings.Index(head, "] ")+2:]
	var want string
	for _, it := range l.c.Items {
		switch prompt {
		case it.Glyph:
			want = it.Romanization
		case it.Romanization:
			want = it.Glyph
		}
	}

	opts := strings.Split(strings.TrimSpace(lines[at]), "   ")
	for i, o := range opts {
		if strings.SplitN(o, ") ", 2)[1] == want {
			if l.miss[prompt] {
				i = (i + 1) % len(opts)
			}
			return strconv.Itoa(i + 1)
		}
	}
	l.t.Fatalf("answer %q for %q not among %v", want, prompt, opts)
	return ""
}

func TestPracticeLesson(t *testing.T) {
	db := setupCLIEnv(t)
	reg, err := catalog.Default()
	require.NoError(t, err)
	c, err := reg.Get("ja-hiragana")
	require.NoError(t, err)

	var out, errOut bytes.Buffer
	learner := &lessonLearner{t: t, out: &out, c: c, miss: map[string]bool{"ra": true}}
	err = runCLIContext(t, context.Background(), &out, &errOut, learner,
		"practice", "ja-hiragana", "--lesson", "ja-hiragana--7", "--seed", "3")
	require.NoError(t, err)

	got := out.String()
	requireContains(t, got, "lesson ja-hiragana--7, 8 item(s) in 2 batch(es)")
	requireContains(t, got, "Batch 1/2: flash")
	requireContains(t, got, "batch 1: flash 5/5, quiz 5/5")
	requireContains(t, got, "batch 2: flash 3/3, quiz 3/3")
	requireContains(t, got, "Final quiz: 8 item(s)")
	requireContains(t, got, "known 7, unknown 1")
	assert.NotContains(t, got, "Retry")
	assert.NotContains(t, got, "nothing was saved")

	events := reviewEvents(t, db, "default")
	require.Len(t, events, 8)
	for _, e := range events {
		assert.Equal(t, e.ItemID != "ra", e.Correct, e.ItemID)
	}
}

func TestPracticeLessonStoppedSavesNothing(t *testing.T) {
	db := setupCLIEnv(t)

	out, _, err := runCLI(t, strings.Repeat("y\n", 5)+"q\n", "practice", "ja-hiragana", "--lesson", "ja-hiragana--0")
	require.NoError(t, err)
	requireContains(t, out, "Batch 1/1: quiz")
	requireContains(t, out, "nothing was saved")
	assert.Empty(t, reviewEvents(t, db, "default"))
}

func TestPracticeLessonRepeatsFlash(t *testing.T) {
	setupCLIEnv(t)

	// Miss one card, flash the batch again, know them all, then quit the quiz.
	stdin := "n\n" + strings.Repeat("y\n", 4) + "y\n" + strings.Repeat("y\n", 5) + "q\n"
	out, _, err := runCLI(t, stdin, "practice", "ja-hiragana", "--lesson", "ja-hiragana--0")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "Flash the 5 card(s) again?"))
	assert.Equal(t, 2, strings.Count(out, "[5/5]"))
	requireContains(t, out, "Batch 1/1: quiz")
}

func TestPracticeQuitReportsUnanswered(t *testing.T) {
	setupCLIEnv(t)
	out, _, err := runCLI(t, "y\nq\n", "practice", "ja-hiragana", "--count", "4")
	require.NoError(t, err)
	requireContains(t, out, "Stopped with 3 card(s) unanswered.")
}

func TestPracticeNothingDue(t *testing.T) {
	setupCLIEnv(t)
	out, _, err := runCLI(t, "", "practice", "ja-hiragana", "--filter", "due")
	require.NoError(t, err)
	requireContains(t, out, "No items match")
}

func TestPracticeBadFilter(t *testing.T) {
	setupCLIEnv(t)
	_, _, err := runCLI(t, "", "practice", "ja-hiragana", "--filter", "sometimes")
	require.Error(t, err)
}

func TestPracticeLocked(t *testing.T) {
	db := setupCLIEnv(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(db), 0o755))

	lock := flock.New(db + ".lock")
	ok, err := lock.TryLock()
	require.NoError(t, err)
	require.True(t, ok)
	defer lock.Unlock()

	_, _, err = runCLI(t, "y\n", "practice", "ja-hiragana")
	require.Error(t, err)
	requireContains(t, err.Error(), "already running")
}

func TestUserFlagSeparatesProgress(t *testing.T) {
	db := setupCLIEnv(t)

	_, _, err := runCLI(t, "", "--user", "alice", "review", "ru-cyrillic", "a", "2")
	require.NoError(t, err)

	assert.Len(t, reviewEvents(t, db, "alice"), 1)
	assert.Empty(t, reviewEvents(t, db, "default"))
}

func TestReset(t *testing.T) {
	setupCLIEnv(t)

	_, _, err := runCLI(t, "", "review", "ja-hiragana", "a", "4")
	require.NoError(t, err)

	out, _, err := runCLI(t, "n\n", "reset", "ja-hiragana")
	require.NoError(t, err)
	requireContains(t, out, "Aborted.")

	out, _, err = runCLI(t, "", "reset", "ja-hiragana", "--yes")
	require.NoError(t, err)
	requireContains(t, out, "Removed 1 record(s)")

	out, _, err = runCLI(t, "", "due", "ja-hiragana")
	require.NoError(t, err)
	requireContains(t, out, "Nothing reviewed")
}

func TestStats(t *testing.T) {
	setupCLIEnv(t)

	_, _, err := runCLI(t, "", "review", "ja-hiragana", "a", "5")
	require.NoError(t, err)

	out, _, err := runCLI(t, "", "stats", "ja-hiragana")
	require.NoError(t, err)
	requireContains(t, out, "Accuracy")
	requireContains(t, out, "100%")
	assert.NotContains(t, out, "ko-jamo")

	out, _, err = runCLI(t, "", "stats")
	require.NoError(t, err)
	requireContains(t, out, "ko-jamo")
}

func TestRemindOnce(t *testing.T) {
	setupCLIEnv(t)

	out, _, err := runCLI(t, "", "remind", "--once")
	require.NoError(t, err)
	requireContains(t, out, "Nothing due.")

	_, _, err = runCLI(t, "", "review", "ja-hiragana", "ka", "0")
	require.NoError(t, err)

	out, _, err = runCLI(t, "", "remind", "--once")
	require.NoError(t, err)
	requireContains(t, out, "ja-hiragana: 1 item(s) due")
}

func TestConfigCommands(t *testing.T) {
	setupCLIEnv(t)
	target := filepath.Join(t.TempDir(), "lingo.toml")

	out, _, err := runCLI(t, "", "config", "init", "--path", target)
	require.NoError(t, err)
	requireContains(t, out, "Wrote sample configuration")

	_, _, err = runCLI(t, "", "config", "init", "--path", target)
	require.Error(t, err)
	requireContains(t, err.Error(), "already exists")

	out, _, err = runCLI(t, "", "--config", target, "config", "validate")
	require.NoError(t, err)
	requireContains(t, out, "Configuration valid")

	out, _, err = runCLI(t, "", "--config", target, "config", "show")
	require.NoError(t, err)
	requireContains(t, out, "[practice]")
}

func TestInvalidConfigFails(t *testing.T) {
	setupCLIEnv(t)
	target := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(target, []byte("[practice]\nfilter = \"sometimes\"\n"), 0o644))

	_, _, err := runCLI(t, "", "--config", target, "collections")
	require.Error(t, err)

	// version never needs configuration.
	_, _, err = runCLI(t, "", "--config", target, "version")
	require.NoError(t, err)
}
