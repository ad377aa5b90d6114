package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

// Prompter asks the user for a value. An empty answer means the user
// cancelled.
type Prompter interface {
	Ask(ctx context.Context, message string) (string, error)
}

// Func adapts a function to Prompter.
type Func func(ctx context.Context, message string) (string, error)

// Ask implements Prompter.
func (f Func) Ask(ctx context.Context, message string) (string, error) {
	return f(ctx, message)
}

// Static answers every question with the same value.
func Static(answer string) Prompter {
	return Func(func(ctx context.Context, _ string) (string, error) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		return answer, nil
	})
}

// Terminal reads answers from a terminal or any line-oriented reader.
// Input is hidden when in is a TTY. Answers are returned as typed; only the
// line terminator is removed.
type Terminal struct {
	in  io.Reader
	out io.Writer

	mu      sync.Mutex
	reader  *bufio.Reader
	pending chan answer
}

// NewTerminal creates a Terminal. Nil in/out default to os.Stdin/os.Stderr.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stderr
	}
	return &Terminal{in: in, out: out}
}

type answer struct {
	value string
	err   error
}

// Ask prints message and reads one line. EOF on an empty line is a cancel.
// When ctx is done first, Ask returns ctx.Err() and the read stays pending:
// the next Ask receives that line instead of starting a second reader.
func (t *Terminal) Ask(ctx context.Context, message string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, err := fmt.Fprintf(t.out, "%s: ", message); err != nil {
		return "", errors.Join(ErrPromptFailed, err)
	}

	if t.pending == nil {
		done := make(chan answer, 1)
		go func() {
			v, err := t.read()
			done <- answer{value: v, err: err}
		}()
		t.pending = done
	}

	select {
	case <-ctx.Done():
		fmt.Fprintln(t.out)
		return "", ctx.Err()
	case a := <-t.pending:
		t.pending = nil
		if a.err != nil {
			return "", errors.Join(ErrPromptFailed, a.err)
		}
		return a.value, nil
	}
}

// read returns one answer without its line terminator. Only one read runs at
// a time; Ask owns t.pending.
func (t *Terminal) read() (string, error) {
	if f, ok := t.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(t.out)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	if t.reader == nil {
		t.reader = bufio.NewReader(t.in)
	}
	line, err := t.reader.ReadString('\n')
	line = strings.TrimRight(line, "\r\n")
	if errors.Is(err, io.EOF) {
		return line, nil
	}
	return line, err
}
