// Package console is the interactive terminal front end of the diary: it
// walks the user through the password gate and then runs a small command loop.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/starford/grimoire/internal/apperr"
	"github.com/starford/grimoire/internal/clock"
	"github.com/starford/grimoire/internal/index"
	"github.com/starford/grimoire/internal/journal"
	"github.com/starford/grimoire/internal/session"
)

// Diary is the surface the console drives.
type Diary interface {
	State() session.State
	Now() clock.Stamp
	Enroll(ctx context.Context, password string) (session.State, error)
	Verify(ctx context.Context, password string) (session.State, error)
	Append(ctx context.Context, content string) (*journal.Record, error)
	ListAll(ctx context.Context) ([]journal.Record, error)
	Search(ctx context.Context, query string, limit int) ([]index.SearchResult, error)
}

const searchLimit = 20

var (
	titleColor = color.New(color.FgGreen, color.Bold)
	warnColor  = color.New(color.FgYellow)
	labelColor = color.New(color.FgCyan, color.Bold)
)

// Console reads commands from in and writes to out.
type Console struct {
	diary    Diary
	in       *bufio.Reader
	out      io.Writer
	fd       int
	terminal bool
}

// New creates a console over d. Passwords are read without echo when in is
// a terminal.
func New(d Diary, in io.Reader, out io.Writer) *Console {
	c := &Console{
		diary: d,
		in:    bufio.NewReader(in),
		out:   out,
	}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		c.fd = int(f.Fd())
		c.terminal = true
	}
	return c
}

// Run unlocks the diary and then serves commands until exit, EOF, or ctx
// is done. EOF is a normal close. A cancelled ctx ends Run even while a read
// is blocked, returning ctx.Err().
func (c *Console) Run(ctx context.Context) error {
	if c.terminal {
		// A read abandoned on cancel may have switched echo off.
		if st, err := term.GetState(c.fd); err == nil {
			defer term.Restore(c.fd, st) //nolint:errcheck
		}
	}

	titleColor.Fprintln(c.out, "Secret Diary")

	if err := c.unlock(ctx); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}

	now := c.diary.Now()
	fmt.Fprintf(c.out, "Date & Time of Entry: %s\n", now)
	c.help()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(c.out, "diary> ")
		line, err := c.read(ctx, func() (string, error) { return c.in.ReadString('\n') })
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if !errors.Is(err, io.EOF) {
				return err
			}
			if line == "" {
				fmt.Fprintln(c.out)
				return nil
			}
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		switch cmd, args := parts[0], strings.Join(parts[1:], " "); cmd {
		case "help", "h":
			c.help()
		case "write", "new", "w":
			c.write(ctx)
		case "list", "l":
			c.list(ctx)
		case "search", "s":
			c.search(ctx, args)
		case "today", "t":
			now := c.diary.Now()
			fmt.Fprintf(c.out, "%s, %s\n", now.Day, now)
		case "exit", "quit", "q":
			fmt.Fprintln(c.out, "Bye!")
			return nil
		default:
			warnColor.Fprintln(c.out, "Unknown command:", cmd)
		}
	}
}

// unlock loops until the gate is authenticated. Each failed attempt prints
// the notice and asks again.
func (c *Console) unlock(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		var err error
		switch c.diary.State() {
		case session.Authenticated:
			return nil
		case session.AwaitingEnrollment:
			var pw string
			if pw, err = c.password(ctx, "New Password:"); err != nil {
				return err
			}
			_, err = c.diary.Enroll(ctx, pw)
		case session.AwaitingVerification:
			var pw string
			if pw, err = c.password(ctx, "Current Password:"); err != nil {
				return err
			}
			_, err = c.diary.Verify(ctx, pw)
		default:
			return apperr.ErrInvalidState
		}
		if err != nil {
			c.warn(err)
		}
	}
}

type readResult struct {
	text string
	err  error
}

// read runs fn, which blocks on input, and gives up when ctx is done. The
// abandoned read finishes in the background; Run returns right after.
func (c *Console) read(ctx context.Context, fn func() (string, error)) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	done := make(chan readResult, 1)
	go func() {
		text, err := fn()
		done <- readResult{text, err}
	}()
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.text, r.err
	}
}

func (c *Console) password(ctx context.Context, prompt string) (string, error) {
	return c.read(ctx, func() (string, error) {
		return GetPassword(c.in, prompt, c.out, c.fd, c.terminal)
	})
}

func (c *Console) help() {
	fmt.Fprintln(c.out, "Commands: (w)rite, (l)ist, (s)earch <query>, (t)oday, (h)elp, (q)uit")
}

func (c *Console) warn(err error) {
	warnColor.Fprintln(c.out, apperr.Notice(err))
}

func (c *Console) write(ctx context.Context) {
	text, err := c.read(ctx, func() (string, error) {
		return GetMultiline(c.in, "Diary Entry:", c.out)
	})
	if err != nil {
		if ctx.Err() == nil {
			c.warn(apperr.ErrEmptyContent)
		}
		return
	}
	rec, err := c.diary.Append(ctx, text)
	if err != nil {
		c.warn(err)
		return
	}
	titleColor.Fprintf(c.out, "Saved %s.\n", rec.Label)
}

func (c *Console) list(ctx context.Context) {
	recs, err := c.diary.ListAll(ctx)
	if err != nil {
		c.warn(err)
		return
	}
	if len(recs) == 0 {
		warnColor.Fprintln(c.out, apperr.NoEntries)
		return
	}
	for _, r := range recs {
		labelColor.Fprintln(c.out, r.Label)
		fmt.Fprintf(c.out, "Day: %s\nTime: %s\nEntry: %s\n\n", r.Entry.Day, r.Entry.Time, r.Entry.Entry)
	}
}

func (c *Console) search(ctx context.Context, query string) {
	if query == "" {
		var err error
		query, err = c.read(ctx, func() (string, error) {
			return GetSimpleText(c.in, "Search for:", c.out)
		})
		if ctx.Err() != nil {
			return
		}
		if err != nil || query == "" {
			c.warn(apperr.ErrEmptyContent)
			return
		}
	}
	results, err := c.diary.Search(ctx, query, searchLimit)
	if err != nil {
		c.warn(err)
		return
	}
	if len(results) == 0 {
		fmt.Fprintln(c.out, "No matching entries.")
		return
	}
	for _, r := range results {
		labelColor.Fprint(c.out, r.Label)
		fmt.Fprintf(c.out, " | %s %s | %s\n", r.Day, r.Time, r.Headline)
	}
}
