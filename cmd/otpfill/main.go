package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrymomot/otpfill/internal/app"
	"github.com/dmitrymomot/otpfill/pkg/autofill"
	"github.com/dmitrymomot/otpfill/pkg/config"
	"github.com/dmitrymomot/otpfill/pkg/logger"
	"github.com/dmitrymomot/otpfill/pkg/prompt"
	"github.com/dmitrymomot/otpfill/pkg/secretstore"
)

type commandKey struct{}

func main() {
	envFile := flag.String("env-file", "", "load variables from this .env file first")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	if *envFile != "" {
		if err := config.LoadEnv(*envFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, flag.Arg(0), flag.Args()[1:])
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

var errUsage = errors.New("invalid usage")

func run(ctx context.Context, cmd string, args []string) error {
	cfg, err := app.LoadConfig()
	if err != nil {
		return err
	}

	log := logger.New(
		logger.WithEnvironment(cfg.Env, "otpfill"),
		logger.WithLevelName(cfg.LogLevel),
		logger.WithContextValue("command", commandKey{}),
		logger.WithRedactedKeys("secret", "password", "code"),
	)
	logger.SetAsDefault(log)
	ctx = context.WithValue(ctx, commandKey{}, cmd)

	backends, err := app.LoadBackends()
	if err != nil {
		return err
	}

	store, err := app.OpenStore(ctx, cfg, backends, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			log.Error("failed to close store", logger.Error(err))
		}
	}()

	p := prompt.NewTerminal(os.Stdin, os.Stderr)
	svc := app.NewService(cfg, store, p, log)

	switch cmd {
	case "code":
		return cmdCode(ctx, svc)
	case "watch":
		return cmdWatch(ctx, svc)
	case "reset":
		return cmdReset(ctx, svc)
	case "save-credentials":
		return cmdSaveCredentials(ctx, svc, p, args)
	case "credentials":
		return cmdCredentials(ctx, svc)
	case "status":
		return cmdStatus(ctx, svc, store, log)
	default:
		usage()
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

func cmdCode(ctx context.Context, svc *app.Service) error {
	code, err := svc.Code(ctx)
	if err != nil {
		return err
	}
	fmt.Println(code)
	return nil
}

func cmdWatch(ctx context.Context, svc *app.Service) error {
	filler := autofill.NewWriterFiller(os.Stdout, svc.Generator())
	err := svc.Watch(ctx, filler)
	if ferr := filler.Finish(); err == nil {
		err = ferr
	}
	return err
}

func cmdReset(ctx context.Context, svc *app.Service) error {
	if err := svc.Reset(ctx); err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr, "TOTP secret updated")
	return nil
}

func cmdSaveCredentials(ctx context.Context, svc *app.Service, p prompt.Prompter, args []string) error {
	fs := flag.NewFlagSet("save-credentials", flag.ContinueOnError)
	username := fs.String("username", "", "username to store (prompted when empty)")
	if err := fs.Parse(args); err != nil {
		return errors.Join(errUsage, err)
	}

	c := secretstore.Credentials{Username: *username}
	var err error
	if c.Username == "" {
		if c.Username, err = p.Ask(ctx, "Enter username"); err != nil {
			return err
		}
	}
	if c.Password, err = p.Ask(ctx, "Enter password"); err != nil {
		return err
	}

	saved, err := svc.SaveCredentials(ctx, c)
	if err != nil {
		return err
	}
	if !saved {
		return secretstore.ErrNoSecretProvided
	}
	fmt.Fprintln(os.Stderr, "Credentials saved")
	return nil
}

func cmdCredentials(ctx context.Context, svc *app.Service) error {
	c, err := svc.Credentials(ctx)
	if err != nil {
		return err
	}
	if c.Username == "" && c.Password == "" {
		return secretstore.ErrSecretNotFound
	}
	fmt.Printf("username: %s\n", c.Username)
	if c.Password != "" {
		fmt.Println("password: ********")
	}
	return nil
}

func cmdStatus(ctx context.Context, svc *app.Service, store *app.OpenedStore, log *slog.Logger) error {
	health := "ok"
	if err := store.Healthcheck(ctx); err != nil {
		log.WarnContext(ctx, "backend unhealthy", logger.Error(err))
		health = err.Error()
	}

	st, err := svc.Status(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("backend:      %s (%s)\n", st.Backend, health)
	fmt.Printf("namespace:    %s\n", st.Namespace)
	fmt.Printf("decode mode:  %s\n", st.DecodeMode)
	fmt.Printf("device key:   %s\n", present(st.DeviceKey))
	fmt.Printf("totp secret:  %s\n", present(st.TOTPSecret))
	fmt.Printf("username:     %s\n", present(st.Username))
	fmt.Printf("password:     %s\n", present(st.Password))
	return nil
}

func present(ok bool) string {
	if ok {
		return "stored"
	}
	return "missing"
}

func usage() {
	fmt.Fprint(os.Stderr, `otpfill keeps a TOTP secret encrypted on this device and produces its codes.

Usage:
  otpfill [-env-file path] <command> [flags]

Commands:
  code              print the current code (asks for the secret on first use)
  watch             keep printing the current code, with stored credentials
  reset             replace the stored TOTP secret
  save-credentials  store a username and password [-username name]
  credentials       show the stored username
  status            show the backend and which entries are stored

Configuration is read from the environment (OTPFILL_STORE, OTPFILL_NAMESPACE,
OTPFILL_DECODE_MODE, ...) and from a .env file in the working directory.
`)
}
