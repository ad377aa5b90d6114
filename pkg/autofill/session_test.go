package autofill_test

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/otpfill/pkg/autofill"
	"github.com/dmitrymomot/otpfill/pkg/secretstore"
	"github.com/dmitrymomot/otpfill/pkg/totp"
)

type recordingFiller struct {
	mu        sync.Mutex
	creds     []secretstore.Credentials
	codes     []string
	submits   int
	fillErr   error
	submitErr error
	onCode    func(n int)
}

func (f *recordingFiller) FillCredentials(_ context.Context, c secretstore.Credentials) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creds = append(f.creds, c)
	return nil
}

func (f *recordingFiller) FillCode(_ context.Context, code string) error {
	f.mu.Lock()
	f.codes = append(f.codes, code)
	n := len(f.codes)
	cb := f.onCode
	err := f.fillErr
	f.mu.Unlock()
	if cb != nil {
		cb(n)
	}
	return err
}

func (f *recordingFiller) snapshot() ([]secretstore.Credentials, []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]secretstore.Credentials(nil), f.creds...), append([]string(nil), f.codes...)
}

type submittingFiller struct {
	recordingFiller
}

func (f *submittingFiller) Submit(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submits++
	return f.submitErr
}

func fixedGenerator(unix int64) *totp.Generator {
	return totp.NewGenerator(totp.WithClock(totp.ClockFunc(func() time.Time {
		return time.Unix(unix, 0)
	})))
}

func TestSession_Run(t *testing.T) {
	t.Parallel()

	t.Run("fills credentials once and refreshes code", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		f := &recordingFiller{}
		f.onCode = func(n int) {
			if n == 3 {
				cancel()
			}
		}
		s := autofill.NewSession(fixedGenerator(59), f, autofill.WithInterval(5*time.Millisecond))

		creds := secretstore.Credentials{Username: "alice", Password: "hunter2"}
		err := s.Run(ctx, "JBSWY3DPEHPK3PXP", creds)
		require.NoError(t, err)

		gotCreds, codes := f.snapshot()
		assert.Equal(t, []secretstore.Credentials{creds}, gotCreds)
		require.GreaterOrEqual(t, len(codes), 3)
		for _, c := range codes {
			assert.Equal(t, "996554", c)
		}
		assert.False(t, s.Running())
	})

	t.Run("skips credentials when none stored", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		f := &recordingFiller{onCode: func(int) { cancel() }}
		s := autofill.NewSession(fixedGenerator(59), f)

		require.NoError(t, s.Run(ctx, "JBSWY3DPEHPK3PXP", secretstore.Credentials{}))
		gotCreds, codes := f.snapshot()
		assert.Empty(t, gotCreds)
		assert.Equal(t, []string{"996554"}, codes)
	})

	t.Run("generation failure stops the session", func(t *testing.T) {
		t.Parallel()
		f := &recordingFiller{}
		s := autofill.NewSession(fixedGenerator(59), f)

		err := s.Run(context.Background(), "NOT BASE32 1", secretstore.Credentials{})
		require.ErrorIs(t, err, autofill.ErrGenerationFailed)
		assert.ErrorIs(t, err, totp.ErrMalformedSecret)
		_, codes := f.snapshot()
		assert.Empty(t, codes)
		assert.False(t, s.Running())
	})

	t.Run("fill failure stops the session", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("field gone")
		f := &recordingFiller{fillErr: boom}
		s := autofill.NewSession(fixedGenerator(59), f)

		err := s.Run(context.Background(), "JBSWY3DPEHPK3PXP", secretstore.Credentials{})
		require.ErrorIs(t, err, autofill.ErrFillFailed)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("second run is rejected while active", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		started := make(chan struct{})
		var once sync.Once
		f := &recordingFiller{onCode: func(int) { once.Do(func() { close(started) }) }}
		s := autofill.NewSession(fixedGenerator(59), f, autofill.WithInterval(time.Hour))

		done := make(chan error, 1)
		go func() { done <- s.Run(ctx, "JBSWY3DPEHPK3PXP", secretstore.Credentials{}) }()
		<-started

		assert.True(t, s.Running())
		err := s.Run(ctx, "JBSWY3DPEHPK3PXP", secretstore.Credentials{})
		assert.ErrorIs(t, err, autofill.ErrAlreadyRunning)

		cancel()
		require.NoError(t, <-done)
		assert.False(t, s.Running())
	})
}

func TestSession_AutoSubmit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		autoSubmit  bool
		creds       secretstore.Credentials
		wantSubmits int
	}{
		{"submits with complete fill", true, secretstore.Credentials{Username: "alice", Password: "hunter2"}, 1},
		{"disabled", false, secretstore.Credentials{Username: "alice", Password: "hunter2"}, 0},
		{"missing password", true, secretstore.Credentials{Username: "alice"}, 0},
		{"no credentials", true, secretstore.Credentials{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctx, cancel := context.WithCancel(context.Background())
			f := &submittingFiller{}
			f.onCode = func(n int) {
				if n == 2 {
					cancel()
				}
			}
			s := autofill.NewSession(fixedGenerator(59), f,
				autofill.WithAutoSubmit(tt.autoSubmit),
				autofill.WithInterval(time.Millisecond),
			)

			require.NoError(t, s.Run(ctx, "JBSWY3DPEHPK3PXP", tt.creds))
			f.mu.Lock()
			defer f.mu.Unlock()
			assert.Equal(t, tt.wantSubmits, f.submits)
		})
	}

	t.Run("submit failure is returned", func(t *testing.T) {
		t.Parallel()
		f := &submittingFiller{}
		f.submitErr = errors.New("button disabled")
		s := autofill.NewSession(fixedGenerator(59), f, autofill.WithAutoSubmit(true))

		err := s.Run(context.Background(), "JBSWY3DPEHPK3PXP", secretstore.Credentials{Username: "a", Password: "b"})
		assert.ErrorIs(t, err, autofill.ErrSubmitFailed)
	})

	t.Run("filler without submit is tolerated", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		f := &recordingFiller{onCode: func(int) { cancel() }}
		s := autofill.NewSession(fixedGenerator(59), f, autofill.WithAutoSubmit(true))

		assert.NoError(t, s.Run(ctx, "JBSWY3DPEHPK3PXP", secretstore.Credentials{Username: "a", Password: "b"}))
	})
}

func TestWriterFiller(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	buf := &bytes.Buffer{}
	f := autofill.NewWriterFiller(buf, fixedGenerator(59))

	require.NoError(t, f.FillCredentials(ctx, secretstore.Credentials{Username: "alice", Password: "hunter2"}))
	require.NoError(t, f.FillCode(ctx, "996554"))
	require.NoError(t, f.FillCode(ctx, "996554"))
	require.NoError(t, f.Finish())

	out := buf.String()
	assert.Contains(t, out, "username: alice\n")
	assert.Contains(t, out, "password: ********\n")
	assert.NotContains(t, out, "hunter2")
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("\r996554  ( 1s)")))
	assert.True(t, bytes.HasSuffix(buf.Bytes(), []byte("\n")))
}
