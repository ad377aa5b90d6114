package autofill

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/dmitrymomot/otpfill/pkg/secretstore"
)

// Countdown reports the seconds left in the current code window.
// *totp.Generator implements it.
type Countdown interface {
	SecondsRemaining() int
}

// WriterFiller "fills" by printing to a writer, redrawing the code line in
// place. It is the filler used on a terminal.
type WriterFiller struct {
	w         io.Writer
	countdown Countdown

	mu   sync.Mutex
	last string
}

// NewWriterFiller creates a WriterFiller. countdown may be nil.
func NewWriterFiller(w io.Writer, countdown Countdown) *WriterFiller {
	return &WriterFiller{w: w, countdown: countdown}
}

// FillCredentials prints the username and a masked password.
func (f *WriterFiller) FillCredentials(_ context.Context, c secretstore.Credentials) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if c.Username != "" {
		if _, err := fmt.Fprintf(f.w, "username: %s\n", c.Username); err != nil {
			return err
		}
	}
	if c.Password != "" {
		if _, err := fmt.Fprintf(f.w, "password: %s\n", strings.Repeat("*", 8)); err != nil {
			return err
		}
	}
	return nil
}

// FillCode redraws the code line.
func (f *WriterFiller) FillCode(_ context.Context, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	line := code
	if f.countdown != nil {
		line = fmt.Sprintf("%s  (%2ds)", code, f.countdown.SecondsRemaining())
	}
	if line == f.last {
		return nil
	}
	f.last = line
	_, err := fmt.Fprintf(f.w, "\r%s", line)
	return err
}

// Finish ends the redrawn line.
func (f *WriterFiller) Finish() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.last == "" {
		return nil
	}
	_, err := fmt.Fprintln(f.w)
	return err
}
