package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testKey(item string) ProgressKey {
	return ProgressKey{UserID: "u1", CollectionID: "ja-hiragana", ItemID: item}
}

func setRow(values ProgressRow) UpdateFunc {
	return func(_ *ProgressRow) (*ProgressRow, error) {
		return &values, nil
	}
}

func TestOpenClose(t *testing.T) {
	s := openTestStore(t)
	if s.db == nil {
		t.Fatal("expected non-nil database handle")
	}
	if s.dialect != "sqlite3" {
		t.Errorf("dialect = %q, want sqlite3", s.dialect)
	}
}

func TestOpenDriverRejectsUnknownDriver(t *testing.T) {
	_, err := OpenDriver("oracle", "whatever")
	if err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.db

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestAutoMigrationCreatesTables(t *testing.T) {
	s := openTestStore(t)

	for _, table := range []string{"progress", "review_events", "global_sequence"} {
		var name string
		err := s.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %s not found: %v", table, err)
		}
	}
}

func TestAutoMigrationCreatesIndexes(t *testing.T) {
	s := openTestStore(t)

	tests := []struct {
		index  string
		unique bool
	}{
		{"progress_user_id_collection_id_item_id", true},
		{"progress_user_id_collection_id_next_review_at", false},
		{"review_events_user_id_collection_id", false},
		{"review_events_sequence_key", true},
	}
	for _, tt := range tests {
		var sqlText string
		err := s.db.QueryRow(
			"SELECT sql FROM sqlite_master WHERE type='index' AND name=?", tt.index,
		).Scan(&sqlText)
		if err != nil {
			t.Errorf("index %s not found: %v", tt.index, err)
			continue
		}
		assert.Equal(t, tt.unique, strings.HasPrefix(sqlText, "CREATE UNIQUE INDEX"), tt.index)
	}
}

func TestAutoMigrationColumnDefaults(t *testing.T) {
	s := openTestStore(t)
	_, err := s.db.Exec(`INSERT INTO progress
		(user_id, collection_id, item_id, last_reviewed_at, next_review_at, created_at, updated_at)
		VALUES ('u1', 'ja-hiragana', 'a', ?, ?, ?, ?)`,
		time.Now(), time.Now(), time.Now(), time.Now())
	require.NoError(t, err)

	row, err := s.ProgressRepo().Get(context.Background(), testKey("a"))
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, 0, row.Strength)
	assert.InDelta(t, 2.5, row.EaseFactor, 1e-9)
	assert.Equal(t, int64(1), row.Version)
}

func TestSQLiteDSN(t *testing.T) {
	got := sqliteDSN("/tmp/lingo.db")
	assert.True(t, strings.HasPrefix(got, "/tmp/lingo.db?"), got)
	assert.Contains(t, got, "_txlock=immediate")
	assert.Contains(t, got, "_pragma=busy_timeout%285000%29")

	got = sqliteDSN("file:lingo.db?mode=rwc")
	assert.True(t, strings.HasPrefix(got, "file:lingo.db?mode=rwc&"), got)
}

func TestMigrateIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "twice.db")
	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s2.Close())
}

func TestProgressGetMissing(t *testing.T) {
	s := openTestStore(t)
	row, err := s.ProgressRepo().Get(context.Background(), testKey("a"))
	require.NoError(t, err)
	assert.Nil(t, row)
}

func TestProgressUpdateInsertsThenUpdates(t *testing.T) {
	s := openTestStore(t)
	repo := s.ProgressRepo()
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	var seen []*ProgressRow
	first, err := repo.Update(ctx, testKey("a"), func(existing *ProgressRow) (*ProgressRow, error) {
		seen = append(seen, existing)
		return &ProgressRow{
			Strength: 1, EaseFactor: 2.5, IntervalDays: 1,
			ReviewCount: 1, CorrectCount: 1,
			LastReviewedAt: now, NextReviewAt: now.AddDate(0, 0, 1),
		}, nil
	})
	require.NoError(t, err)
	require.Len(t, seen, 1)
	assert.Nil(t, seen[0], "first update should see no existing row")
	assert.Equal(t, int64(1), first.Version)
	assert.Equal(t, "a", first.ItemID)
	assert.Equal(t, "u1", first.UserID)
	assert.True(t, first.NextReviewAt.Equal(now.AddDate(0, 0, 1)))

	second, err := repo.Update(ctx, testKey("a"), func(existing *ProgressRow) (*ProgressRow, error) {
		require.NotNil(t, existing)
		assert.Equal(t, 1, existing.Strength)
		existing.Strength = 2
		existing.IntervalDays = 6
		existing.ReviewCount++
		existing.CorrectCount++
		return existing, nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.Version)
	assert.Equal(t, 2, second.Strength)
	assert.Equal(t, 6, second.IntervalDays)
	assert.Equal(t, first.ID, second.ID)
}

func TestProgressUpdateFuncErrorWritesNothing(t *testing.T) {
	s := openTestStore(t)
	repo := s.ProgressRepo()
	ctx := context.Background()

	boom := assert.AnError
	_, err := repo.Update(ctx, testKey("a"), func(*ProgressRow) (*ProgressRow, error) {
		return nil, boom
	})
	require.ErrorIs(t, err, boom)

	row, err := repo.Get(ctx, testKey("a"))
	require.NoError(t, err)
	assert.Nil(t, row)
}

func TestProgressListScopedToUserAndCollection(t *testing.T) {
	s := openTestStore(t)
	repo := s.ProgressRepo()
	ctx := context.Background()
	now := time.Now().UTC()
	values := ProgressRow{EaseFactor: 2.5, LastReviewedAt: now, NextReviewAt: now}

	keys := []ProgressKey{
		testKey("b"),
		testKey("a"),
		{UserID: "u2", CollectionID: "ja-hiragana", ItemID: "a"},
		{UserID: "u1", CollectionID: "ko-jamo", ItemID: "a"},
	}
	for _, k := range keys {
		_, err := repo.Update(ctx, k, setRow(values))
		require.NoError(t, err)
	}

	rows, err := repo.List(ctx, "u1", "ja-hiragana")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "a", rows[0].ItemID)
	assert.Equal(t, "b", rows[1].ItemID)
}

func TestProgressDeleteCollection(t *testing.T) {
	s := openTestStore(t)
	repo := s.ProgressRepo()
	ctx := context.Background()
	now := time.Now().UTC()
	values := ProgressRow{EaseFactor: 2.5, LastReviewedAt: now, NextReviewAt: now}

	for _, item := range []string{"a", "b", "c"} {
		_, err := repo.Update(ctx, testKey(item), setRow(values))
		require.NoError(t, err)
	}
	other := ProgressKey{UserID: "u1", CollectionID: "ko-jamo", ItemID: "a"}
	_, err := repo.Update(ctx, other, setRow(values))
	require.NoError(t, err)

	n, err := repo.DeleteCollection(ctx, "u1", "ja-hiragana")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	rows, err := repo.List(ctx, "u1", "ko-jamo")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestProgressConcurrentUpdatesDoNotLoseWrites(t *testing.T) {
	s := openTestStore(t)
	repo := s.ProgressRepo()
	ctx := context.Background()
	now := time.Now().UTC()

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Update(ctx, testKey("a"), func(existing *ProgressRow) (*ProgressRow, error) {
				next := &ProgressRow{EaseFactor: 2.5, LastReviewedAt: now, NextReviewAt: now}
				if existing != nil {
					next = existing
				}
				next.ReviewCount++
				return next, nil
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	row, err := repo.Get(ctx, testKey("a"))
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, workers, row.ReviewCount)
	assert.Equal(t, int64(workers), row.Version)
}

func TestProgressUpdatesAcrossHandles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shared.db")
	ctx := context.Background()
	now := time.Now().UTC()

	const handles, perHandle = 4, 10
	stores := make([]*Store, handles)
	for i := range stores {
		s, err := Open(path)
		require.NoError(t, err)
		t.Cleanup(func() { s.Close() })
		stores[i] = s
	}

	var wg sync.WaitGroup
	errs := make(chan error, handles*perHandle)
	for _, s := range stores {
		repo := s.ProgressRepo()
		for range perHandle {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := repo.Update(ctx, testKey("ta"), func(existing *ProgressRow) (*ProgressRow, error) {
					next := &ProgressRow{EaseFactor: 2.5, LastReviewedAt: now, NextReviewAt: now}
					if existing != nil {
						next = existing
					}
					next.ReviewCount++
					return next, nil
				})
				errs <- err
			}()
		}
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	row, err := stores[0].ProgressRepo().Get(ctx, testKey("ta"))
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, handles*perHandle, row.ReviewCount)
	assert.Equal(t, int64(handles*perHandle), row.Version)
	assert.WithinDuration(t, now, row.NextReviewAt, time.Second)
}

func TestProgressUpdateReturnsWrittenRow(t *testing.T) {
	s := openTestStore(t)
	repo := s.ProgressRepo()
	ctx := context.Background()
	due := time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC)

	got, err := repo.Update(ctx, testKey("ka"), setRow(ProgressRow{
		Strength: 2, EaseFactor: 2.36, IntervalDays: 6, ReviewCount: 2,
		LastReviewedAt: due.Add(-6 * 24 * time.Hour), NextReviewAt: due,
	}))
	require.NoError(t, err)

	stored, err := repo.Get(ctx, testKey("ka"))
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, stored.ID, got.ID)
	assert.Equal(t, testKey("ka"), got.Key())
	assert.Equal(t, stored.Version, got.Version)
	assert.True(t, stored.NextReviewAt.Equal(got.NextReviewAt))
	assert.Equal(t, stored.IntervalDays, got.IntervalDays)
}

func TestIsBusy(t *testing.T) {
	assert.False(t, isBusy(nil))
	assert.False(t, isBusy(errors.New("boom")))
	assert.False(t, isBusy(ErrConflict))
	assert.True(t, isBusy(&pq.Error{Code: "40001"}))
	assert.True(t, isBusy(fmt.Errorf("begin: %w", &pq.Error{Code: "40P01"})))
	assert.False(t, isBusy(&pq.Error{Code: "23505"}))
}

func TestSequenceCounter(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		got, err := s.seq.Next(ctx)
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		if got != want {
			t.Errorf("sequence = %d, want %d", got, want)
		}
	}
}

func TestReviewEventsAppendAndQuery(t *testing.T) {
	s := openTestStore(t)
	repo := s.ReviewEventRepo()
	ctx := context.Background()

	events := []ReviewEventData{
		{UserID: "u1", CollectionID: "ja-hiragana", ItemID: "a", Quality: 4, Correct: true, StrengthAfter: 1, IntervalDays: 1},
		{UserID: "u1", CollectionID: "ja-hiragana", ItemID: "i", Quality: 1, Correct: false},
		{UserID: "u1", CollectionID: "ko-jamo", ItemID: "g", Quality: 5, Correct: true, StrengthAfter: 1, IntervalDays: 1},
		{UserID: "u2", CollectionID: "ja-hiragana", ItemID: "a", Quality: 4, Correct: true},
	}
	for _, e := range events {
		require.NoError(t, repo.AppendReview(ctx, e))
	}

	all, err := repo.QueryReviews(ctx, "u1", QueryOpts{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Less(t, all[0].Sequence, all[1].Sequence)
	assert.Less(t, all[1].Sequence, all[2].Sequence)

	scoped, err := repo.QueryReviews(ctx, "u1", QueryOpts{CollectionID: "ja-hiragana"})
	require.NoError(t, err)
	require.Len(t, scoped, 2)
	assert.True(t, scoped[0].Correct)
	assert.False(t, scoped[1].Correct)

	after, err := repo.QueryReviews(ctx, "u1", QueryOpts{After: all[0].Sequence, Limit: 1})
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, "i", after[0].ItemID)
}

func TestReviewEventsAccuracy(t *testing.T) {
	s := openTestStore(t)
	repo := s.ReviewEventRepo()
	ctx := context.Background()

	acc, n, err := repo.Accuracy(ctx, "u1", "ja-hiragana")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Zero(t, acc)

	for _, correct := range []bool{true, true, false, true} {
		require.NoError(t, repo.AppendReview(ctx, ReviewEventData{
			UserID: "u1", CollectionID: "ja-hiragana", ItemID: "a", Correct: correct,
		}))
	}

	acc, n, err = repo.Accuracy(ctx, "u1", "ja-hiragana")
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.InDelta(t, 0.75, acc, 1e-9)
}

func TestDefaultDBPathHonorsEnv(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nested", "lingo.db")
	t.Setenv("LINGO_DB", p)

	got, err := DefaultDBPath()
	require.NoError(t, err)
	assert.Equal(t, p, got)
	assert.DirExists(t, filepath.Dir(p))
}
