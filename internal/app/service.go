package app

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dmitrymomot/otpfill/pkg/autofill"
	"github.com/dmitrymomot/otpfill/pkg/devicekey"
	"github.com/dmitrymomot/otpfill/pkg/envelope"
	"github.com/dmitrymomot/otpfill/pkg/kvstore"
	"github.com/dmitrymomot/otpfill/pkg/logger"
	"github.com/dmitrymomot/otpfill/pkg/prompt"
	"github.com/dmitrymomot/otpfill/pkg/secretstore"
	"github.com/dmitrymomot/otpfill/pkg/totp"
)

// Service ties the secret store, generator and autofill session together.
type Service struct {
	cfg     Config
	kv      kvstore.Store
	keys    secretstore.Keys
	devkeys *devicekey.Manager
	secrets *secretstore.Store
	gen     *totp.Generator
	log     *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	clock totp.Clock
}

// WithClock replaces the system clock used for codes.
func WithClock(c totp.Clock) ServiceOption {
	return func(o *serviceOptions) {
		if c != nil {
			o.clock = c
		}
	}
}

// NewService wires a Service on top of kv. cfg must be valid.
func NewService(cfg Config, kv kvstore.Store, p prompt.Prompter, log *slog.Logger, opts ...ServiceOption) *Service {
	if log == nil {
		log = slog.Default()
	}
	o := serviceOptions{clock: totp.SystemClock}
	for _, opt := range opts {
		opt(&o)
	}

	keys := secretstore.KeysFor(cfg.Namespace)
	devkeys := devicekey.NewManager(kv, keys.DeviceKey, devicekey.WithLogger(log))
	secrets := secretstore.New(kv, envelope.NewCipher(devkeys), p,
		secretstore.WithKeys(keys),
		secretstore.WithLogger(log),
	)

	return &Service{
		cfg:     cfg,
		kv:      kv,
		keys:    keys,
		devkeys: devkeys,
		secrets: secrets,
		gen:     totp.NewGenerator(totp.WithDecodeMode(cfg.Mode()), totp.WithClock(o.clock)),
		log:     log,
	}
}

// Generator returns the code generator.
func (s *Service) Generator() *totp.Generator {
	return s.gen
}

func (s *Service) totpSecret() secretstore.Secret {
	return secretstore.TOTPSecret(s.keys.TOTP, s.gen.Mode())
}

// Code returns the current code, asking for the TOTP secret on first use.
func (s *Service) Code(ctx context.Context) (string, error) {
	secret, err := s.secrets.GetOrPrompt(ctx, s.totpSecret())
	if err != nil {
		return "", err
	}
	return s.gen.Generate(secret)
}

// Reset asks for a new TOTP secret and replaces the stored one.
func (s *Service) Reset(ctx context.Context) error {
	_, err := s.secrets.Prompt(ctx, s.totpSecret())
	if err != nil {
		return err
	}
	s.log.InfoContext(ctx, "totp secret replaced", logger.StoreKey(s.keys.TOTP))
	return nil
}

// SaveCredentials stores a complete username/password pair.
func (s *Service) SaveCredentials(ctx context.Context, c secretstore.Credentials) (bool, error) {
	return s.secrets.SaveCredentials(ctx, c)
}

// Credentials returns the stored username and password.
func (s *Service) Credentials(ctx context.Context) (secretstore.Credentials, error) {
	return s.secrets.Credentials(ctx)
}

// Watch runs an autofill session until ctx is done.
func (s *Service) Watch(ctx context.Context, filler autofill.Filler) error {
	secret, err := s.secrets.GetOrPrompt(ctx, s.totpSecret())
	if err != nil {
		return err
	}
	creds, err := s.secrets.Credentials(ctx)
	if err != nil {
		return err
	}

	session := autofill.NewSession(s.gen, filler,
		autofill.WithInterval(s.cfg.RefreshInterval),
		autofill.WithAutoSubmit(s.cfg.AutoSubmit),
		autofill.WithLogger(s.log),
	)
	return session.Run(ctx, secret, creds)
}

// Status describes what is stored for the namespace. Only existence is
// checked; nothing is decrypted.
type Status struct {
	Backend    Backend
	Namespace  string
	DecodeMode totp.DecodeMode
	DeviceKey  bool
	TOTPSecret bool
	Username   bool
	Password   bool
}

// Status reports which entries exist.
func (s *Service) Status(ctx context.Context) (Status, error) {
	st := Status{
		Backend:    s.cfg.Store,
		Namespace:  s.cfg.Namespace,
		DecodeMode: s.gen.Mode(),
	}
	var err error
	if st.DeviceKey, err = s.devkeys.Exists(ctx); err != nil {
		return Status{}, err
	}

	checks := []struct {
		key string
		dst *bool
	}{
		{s.keys.TOTP, &st.TOTPSecret},
		{s.keys.Username, &st.Username},
		{s.keys.Password, &st.Password},
	}
	for _, c := range checks {
		_, err = s.kv.Get(ctx, c.key)
		switch {
		case err == nil:
			*c.dst = true
		case errors.Is(err, kvstore.ErrNotFound):
		default:
			return Status{}, err
		}
	}
	return st, nil
}
