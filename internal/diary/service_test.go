package diary_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/grimoire/internal/apperr"
	"github.com/starford/grimoire/internal/diary"
	"github.com/starford/grimoire/internal/index"
	"github.com/starford/grimoire/internal/session"
	"github.com/starford/grimoire/internal/sse"
	"github.com/starford/grimoire/internal/testutil"
)

type recorder struct {
	mu     sync.Mutex
	events []sse.Event
}

func (r *recorder) Publish(e sse.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

func TestLockedUntilAuthenticated(t *testing.T) {
	svc, _ := testutil.TestDiary(t, "")
	ctx := context.Background()
	assert.Equal(t, session.AwaitingEnrollment, svc.State())

	_, err := svc.Append(ctx, "too early")
	require.ErrorIs(t, err, apperr.ErrLocked)
	_, err = svc.ListAll(ctx)
	require.ErrorIs(t, err, apperr.ErrLocked)
	_, err = svc.Search(ctx, "x", 5)
	require.ErrorIs(t, err, apperr.ErrLocked)
	_, err = svc.Reindex(ctx)
	require.ErrorIs(t, err, apperr.ErrLocked)
}

func TestAppendIndexesAndPublishes(t *testing.T) {
	events := &recorder{}
	db := testutil.TestDB(t)
	svc, _ := testutil.TestDiary(t, "spellbook42", diary.WithIndex(db), diary.WithPublisher(events))
	ctx := context.Background()

	rec, err := svc.Append(ctx, "Dear diary, today was odd. #odd")
	require.NoError(t, err)
	assert.Equal(t, "Entry 1", rec.Label)
	assert.Equal(t, testutil.Stamp.Day, rec.Entry.Day)
	assert.Equal(t, testutil.Stamp.Time, rec.Entry.Time)

	n, err := db.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	labels, err := db.ByTag("odd")
	require.NoError(t, err)
	assert.Equal(t, []string{"Entry 1"}, labels)

	assert.Equal(t, []string{sse.TypeSessionChanged, sse.TypeEntryAppended}, events.types())
}

func TestAppendEmptyRejected(t *testing.T) {
	events := &recorder{}
	svc, _ := testutil.TestDiary(t, "pw", diary.WithPublisher(events))
	ctx := context.Background()

	_, err := svc.Append(ctx, "   ")
	require.ErrorIs(t, err, apperr.ErrEmptyContent)

	recs, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, recs)
	assert.Equal(t, []string{sse.TypeSessionChanged}, events.types())
}

func TestSearch_IndexedAndScan(t *testing.T) {
	ctx := context.Background()
	for name, opts := range map[string][]diary.Option{
		"indexed": {diary.WithIndex(testutil.TestDB(t))},
		"scan":    nil,
	} {
		t.Run(name, func(t *testing.T) {
			svc, _ := testutil.TestDiary(t, "pw", opts...)
			_, err := svc.Append(ctx, "The troll was ugly.")
			require.NoError(t, err)
			_, err = svc.Append(ctx, "A quiet day.")
			require.NoError(t, err)

			res, err := svc.Search(ctx, "troll", 10)
			require.NoError(t, err)
			require.Len(t, res, 1)
			assert.Equal(t, "Entry 1", res[0].Label)
			assert.Equal(t, "The troll was ugly.", res[0].Headline)

			res, err = svc.Search(ctx, "  ", 10)
			require.NoError(t, err)
			assert.Empty(t, res)

			res, err = svc.Search(ctx, "dragon", 10)
			require.NoError(t, err)
			assert.NotNil(t, res)
			assert.Empty(t, res)
		})
	}
}

func TestReindexAfterRestart(t *testing.T) {
	ctx := context.Background()
	svc, fs := testutil.TestDiary(t, "pw")
	_, _ = svc.Append(ctx, "one")
	_, _ = svc.Append(ctx, "two")

	db := testutil.TestDB(t)
	restarted := testutil.Boot(t, fs, diary.WithIndex(db))
	assert.Equal(t, session.AwaitingVerification, restarted.State())

	_, err := restarted.Verify(ctx, "nope")
	require.ErrorIs(t, err, apperr.ErrWrongPassword)

	st, err := restarted.Verify(ctx, "pw")
	require.NoError(t, err)
	assert.Equal(t, session.Authenticated, st)

	// Unlocking brings the index up to date.
	n, err := db.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	stats, err := restarted.Reindex(ctx)
	require.NoError(t, err)
	assert.Equal(t, index.SyncStats{Total: 2}, stats)

	rec, err := restarted.Append(ctx, "three")
	require.NoError(t, err)
	assert.Equal(t, "Entry 3", rec.Label)

	at, ok := restarted.UnlockedAt()
	assert.True(t, ok)
	assert.Equal(t, testutil.Stamp, at)
	assert.Equal(t, testutil.Stamp, restarted.Now())
}

func TestEntriesSyncedPublishes(t *testing.T) {
	events := &recorder{}
	svc, _ := testutil.TestDiary(t, "", diary.WithPublisher(events))
	svc.EntriesSynced(index.SyncStats{Indexed: 1, Total: 1})
	assert.Equal(t, []string{sse.TypeEntriesSynced}, events.types())
}

func TestSourceIsGated(t *testing.T) {
	svc, _ := testutil.TestDiary(t, "")
	_, err := svc.Source().ListAll()
	require.ErrorIs(t, err, apperr.ErrLocked)

	_, err = svc.Enroll(context.Background(), "pw")
	require.NoError(t, err)
	recs, err := svc.Source().ListAll()
	require.NoError(t, err)
	assert.Empty(t, recs)
}
