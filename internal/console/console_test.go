package console

import (
	"bytes"
	"context"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/grimoire/internal/session"
	"github.com/starford/grimoire/internal/testutil"
)

func run(t *testing.T, d Diary, lines ...string) string {
	t.Helper()
	var out bytes.Buffer
	c := New(d, strings.NewReader(strings.Join(lines, "\n")+"\n"), &out)
	require.NoError(t, c.Run(context.Background()))
	return out.String()
}

func TestRun_EnrollWriteAndList(t *testing.T) {
	svc, _ := testutil.TestDiary(t, "")

	out := run(t, svc,
		"",        // empty password is refused
		"hunter2", // enrolls
		"list",
		"write",
		"Dear diary,",
		"",
		"today was odd.",
		".",
		"list",
		"exit",
	)

	assert.Equal(t, session.Authenticated, svc.State())
	assert.Contains(t, out, "The password cannot be empty.")
	assert.Contains(t, out, "Date & Time of Entry: "+testutil.Stamp.String())
	assert.Contains(t, out, "You have no previous entries saved.")
	assert.Contains(t, out, "Saved Entry 1.")
	assert.Contains(t, out, "Entry 1\nDay: Monday\nTime: 21:00:00\nEntry: Dear diary,\n\ntoday was odd.\n")
	assert.True(t, strings.HasSuffix(out, "Bye!\n"))

	recs, err := svc.ListAll(t.Context())
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Dear diary,\n\ntoday was odd.", recs[0].Entry.Entry)
}

func TestRun_VerifyRetriesUntilCorrect(t *testing.T) {
	_, fs := testutil.TestDataDir(t)
	_, err := testutil.Boot(t, fs).Enroll(t.Context(), "right")
	require.NoError(t, err)

	svc := testutil.Boot(t, fs)
	out := run(t, svc, "wrong", "right", "exit")

	assert.Equal(t, 1, strings.Count(out, "The entered password is incorrect!"))
	assert.Equal(t, 2, strings.Count(out, "Current Password:"))
	assert.Equal(t, session.Authenticated, svc.State())
}

func TestRun_EOFBeforeUnlockIsClean(t *testing.T) {
	svc, _ := testutil.TestDiary(t, "")

	var out bytes.Buffer
	require.NoError(t, New(svc, strings.NewReader(""), &out).Run(context.Background()))
	assert.Equal(t, session.AwaitingEnrollment, svc.State())
}

func TestRun_BlankEntryRejected(t *testing.T) {
	svc, _ := testutil.TestDiary(t, "pw")

	out := run(t, svc, "w", "   ", ".", "exit")
	assert.Contains(t, out, "You left one of the fields empty.")

	n, err := svc.ListAll(t.Context())
	require.NoError(t, err)
	assert.Empty(t, n)
}

func TestRun_SearchAndUnknown(t *testing.T) {
	svc, _ := testutil.TestDiary(t, "pw")
	_, err := svc.Append(t.Context(), "picnic by the lake")
	require.NoError(t, err)

	out := run(t, svc, "search lake", "s", "nothing-here", "dance", "q")
	assert.Contains(t, out, "Entry 1 | Monday 21:00:00 | picnic by the lake")
	assert.Contains(t, out, "No matching entries.")
	assert.Contains(t, out, "Unknown command: dance")
}

func TestRun_CanceledContext(t *testing.T) {
	svc, _ := testutil.TestDiary(t, "pw")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := New(svc, strings.NewReader("list\n"), &bytes.Buffer{}).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func TestRun_CancelWhileReading(t *testing.T) {
	for name, password := range map[string]string{
		"at password prompt": "",
		"at command prompt":  "pw",
	} {
		t.Run(name, func(t *testing.T) {
			svc, _ := testutil.TestDiary(t, password)
			in, w := io.Pipe()
			t.Cleanup(func() { w.Close() })

			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error, 1)
			go func() { done <- New(svc, in, io.Discard).Run(ctx) }()

			time.Sleep(50 * time.Millisecond)
			cancel()

			select {
			case err := <-done:
				assert.ErrorIs(t, err, context.Canceled)
			case <-time.After(2 * time.Second):
				t.Fatal("Run still blocked after cancel")
			}
		})
	}
}

func TestRun_CancelWhileWritingEntry(t *testing.T) {
	svc, _ := testutil.TestDiary(t, "pw")
	in, w := io.Pipe()
	t.Cleanup(func() { w.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- New(svc, in, io.Discard).Run(ctx) }()

	_, err := io.WriteString(w, "w\nhalf an entry\n")
	require.NoError(t, err)
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run still blocked after cancel")
	}
	recs, err := svc.ListAll(t.Context())
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestRun_PipedPasswordKeepsSpaces(t *testing.T) {
	_, fs := testutil.TestDataDir(t)
	run(t, testutil.Boot(t, fs), " spaced pw ", "q")

	svc := testutil.Boot(t, fs)
	out := run(t, svc, "spaced pw", " spaced pw ", "q")
	assert.Equal(t, 1, strings.Count(out, "The entered password is incorrect!"))
	assert.Equal(t, session.Authenticated, svc.State())
}
