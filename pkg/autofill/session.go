package autofill

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/otpfill/pkg/logger"
	"github.com/dmitrymomot/otpfill/pkg/secretstore"
)

// DefaultInterval is how often the code is recomputed and refilled.
const DefaultInterval = time.Second

// Filler puts values into the login form.
type Filler interface {
	FillCredentials(ctx context.Context, c secretstore.Credentials) error
	FillCode(ctx context.Context, code string) error
}

// Submitter is implemented by fillers that can submit the form.
type Submitter interface {
	Submit(ctx context.Context) error
}

// CodeGenerator produces the current code for a secret. *totp.Generator
// implements it.
type CodeGenerator interface {
	Generate(secret string) (string, error)
}

// Session keeps a form filled with the current code.
type Session struct {
	gen        CodeGenerator
	filler     Filler
	interval   time.Duration
	autoSubmit bool
	log        *slog.Logger

	running atomic.Bool
}

// Option configures a Session.
type Option func(*Session)

// WithInterval sets the refresh interval. Non-positive values are ignored.
func WithInterval(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithAutoSubmit submits the form once after the first fill when username,
// password and code are all present and the filler is a Submitter.
func WithAutoSubmit(enabled bool) Option {
	return func(s *Session) {
		s.autoSubmit = enabled
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// NewSession creates a Session.
func NewSession(gen CodeGenerator, filler Filler, opts ...Option) *Session {
	s := &Session{
		gen:      gen,
		filler:   filler,
		interval: DefaultInterval,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("autofill"))
	return s
}

// Running reports whether Run is active.
func (s *Session) Running() bool {
	return s.running.Load()
}

// Run fills creds once, then fills the code immediately and on every tick
// until ctx is done. It returns nil when ctx ends the session and an error
// when generating or filling fails. Only one Run may be active at a time.
func (s *Session) Run(ctx context.Context, secret string, creds secretstore.Credentials) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer s.running.Store(false)

	log := s.log.With(logger.SessionID(uuid.NewString()))
	log.DebugContext(ctx, "session started")

	if creds.Username != "" || creds.Password != "" {
		if err := s.filler.FillCredentials(ctx, creds); err != nil {
			return errors.Join(ErrFillFailed, err)
		}
		log.DebugContext(ctx, "credentials filled")
	}

	code, err := s.fill(ctx, log, secret)
	if err != nil {
		return err
	}

	if s.autoSubmit && creds.Complete() && code != "" {
		if err := s.submit(ctx, log); err != nil {
			return err
		}
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.DebugContext(ctx, "session stopped")
			return nil
		case <-ticker.C:
			if _, err := s.fill(ctx, log, secret); err != nil {
				return err
			}
		}
	}
}

func (s *Session) fill(ctx context.Context, log *slog.Logger, secret string) (string, error) {
	code, err := s.gen.Generate(secret)
	if err != nil {
		log.ErrorContext(ctx, "code generation failed", logger.Error(err))
		return "", errors.Join(ErrGenerationFailed, err)
	}
	if err := s.filler.FillCode(ctx, code); err != nil {
		return "", errors.Join(ErrFillFailed, err)
	}
	return code, nil
}

func (s *Session) submit(ctx context.Context, log *slog.Logger) error {
	sub, ok := s.filler.(Submitter)
	if !ok {
		log.DebugContext(ctx, "auto-submit skipped, filler cannot submit")
		return nil
	}
	if err := sub.Submit(ctx); err != nil {
		return errors.Join(ErrSubmitFailed, err)
	}
	log.InfoContext(ctx, "form submitted", logger.Event("auto_submit"))
	return nil
}
