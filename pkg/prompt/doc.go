// Package prompt asks the user for secrets.
//
// Prompter is the collaborator the secret store calls when a value is
// missing or being reset. An empty answer is a cancel, never an error.
//
// Terminal writes the question to stderr and hides typed input with
// golang.org/x/term when stdin is a TTY; with piped input it reads one line.
// Func and Static adapt plain functions and fixed answers, mostly for tests.
package prompt
