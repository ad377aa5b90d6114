// Package autofill keeps a login form filled with the current one-time code.
//
// A Session fills the stored username and password once, then recomputes the
// code on a fixed ticker (one second by default) and hands it to a Filler. The
// ticker is independent of the 30-second window, so a new code appears at most
// one interval after the window rolls over. When auto-submit is enabled and
// the filler implements Submitter, the form is submitted once after the first
// complete fill.
//
// Only one Run may be active per Session; a concurrent Run fails with
// ErrAlreadyRunning. Run ends cleanly when its context is cancelled and with
// an error when generation or filling fails.
//
// WriterFiller is the terminal Filler used by the CLI.
package autofill
