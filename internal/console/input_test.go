package console

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reader(s string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(s))
}

func TestGetSimpleText(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(reader("  hello \n"), "Say", &out)
	require.NoError(t, err)
	assert.Equal(t, "hello", got)
	assert.Equal(t, "Say\n> ", out.String())
}

func TestGetSimpleText_PartialLineAtEOF(t *testing.T) {
	got, err := GetSimpleText(reader("tail"), "Say", io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "tail", got)
}

func TestGetSimpleText_EOF(t *testing.T) {
	_, err := GetSimpleText(reader(""), "Say", io.Discard)
	assert.ErrorIs(t, err, io.EOF)
}

func TestGetMultiline_KeepsBlankLines(t *testing.T) {
	got, err := GetMultiline(reader("first\n\nsecond\n.\nnext command\n"), "Entry", io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "first\n\nsecond", got)
}

func TestGetMultiline_EndsAtEOF(t *testing.T) {
	got, err := GetMultiline(reader("one\ntwo"), "Entry", io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo", got)
}

func TestGetMultiline_NothingRead(t *testing.T) {
	_, err := GetMultiline(reader(""), "Entry", io.Discard)
	assert.ErrorIs(t, err, io.EOF)
}

func TestGetMultiline_OnlyTerminator(t *testing.T) {
	got, err := GetMultiline(reader(".\n"), "Entry", io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestGetPassword_Terminal(t *testing.T) {
	orig := readPassword
	t.Cleanup(func() { readPassword = orig })

	readPassword = func(fd int) ([]byte, error) {
		assert.Equal(t, 7, fd)
		return []byte("s3cret"), nil
	}
	var out bytes.Buffer
	got, err := GetPassword(reader(""), "Password:", &out, 7, true)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", got)
	assert.Equal(t, "Password:\n> \n", out.String())
}

func TestGetPassword_TerminalError(t *testing.T) {
	orig := readPassword
	t.Cleanup(func() { readPassword = orig })

	boom := errors.New("boom")
	readPassword = func(int) ([]byte, error) { return nil, boom }
	_, err := GetPassword(reader(""), "Password:", io.Discard, 0, true)
	assert.ErrorIs(t, err, boom)
}

func TestGetPassword_PipedInput(t *testing.T) {
	got, err := GetPassword(reader("pw\n"), "Password:", io.Discard, 0, false)
	require.NoError(t, err)
	assert.Equal(t, "pw", got)
}

func TestGetPassword_PipedKeepsSpaces(t *testing.T) {
	got, err := GetPassword(reader(" pw \r\n"), "Password:", io.Discard, 0, false)
	require.NoError(t, err)
	assert.Equal(t, " pw ", got)

	got, err = GetPassword(reader("tail "), "Password:", io.Discard, 0, false)
	require.NoError(t, err)
	assert.Equal(t, "tail ", got)

	_, err = GetPassword(reader(""), "Password:", io.Discard, 0, false)
	assert.ErrorIs(t, err, io.EOF)
}
