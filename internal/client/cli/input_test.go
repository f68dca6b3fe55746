package cli

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func rdr(s string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(s))
}

func stubTerminal(t *testing.T, tty bool, read func(int) ([]byte, error)) {
	t.Helper()
	origTTY, origRead := isTerminal, readPassword
	isTerminal = func(int) bool { return tty }
	if read != nil {
		readPassword = read
	}
	t.Cleanup(func() {
		isTerminal = origTTY
		readPassword = origRead
	})
}

func TestGetSimpleText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain line", "hello world\n", "hello world"},
		{"trims blanks", "  Dune \r\n", "Dune"},
		{"last line without newline", "lastline", "lastline"},
		{"empty line", "\n", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			got, err := GetSimpleText(rdr(tc.input), "Title", &out)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
			require.Equal(t, "Title: ", out.String())
		})
	}
}

func TestGetSimpleText_EmptyInput(t *testing.T) {
	var out bytes.Buffer
	_, err := GetSimpleText(rdr(""), "Name", &out)
	require.Error(t, err)
}

func TestGetPassword_Terminal(t *testing.T) {
	stubTerminal(t, true, func(int) ([]byte, error) { return []byte("s3cret"), nil })

	var out bytes.Buffer
	pw, err := GetPassword(rdr(""), "Password", &out)
	require.NoError(t, err)
	require.Equal(t, "s3cret", string(pw))
	require.Equal(t, "Password: \n", out.String())
}

func TestGetPassword_TerminalError(t *testing.T) {
	stubTerminal(t, true, func(int) ([]byte, error) { return nil, errors.New("boom") })

	var out bytes.Buffer
	_, err := GetPassword(rdr(""), "Password", &out)
	require.Error(t, err)
}

func TestGetPassword_TerminalEmpty(t *testing.T) {
	stubTerminal(t, true, func(int) ([]byte, error) { return []byte{}, nil })

	var out bytes.Buffer
	_, err := GetPassword(rdr(""), "Password", &out)
	require.ErrorContains(t, err, "empty password")
}

func TestGetPassword_PipedInput(t *testing.T) {
	stubTerminal(t, false, func(int) ([]byte, error) {
		t.Fatal("terminal must not be read for piped input")
		return nil, nil
	})

	var out bytes.Buffer
	pw, err := GetPassword(rdr("piped-pw\nnext\n"), "Password", &out)
	require.NoError(t, err)
	require.Equal(t, "piped-pw", string(pw))
}
