// Package logger builds the *slog.Logger used across otpfill.
//
// New applies functional options (format, level, static attributes, context
// extractors) and wraps the chosen slog handler with LogHandlerDecorator so
// attributes carried in a context.Context, such as the running subcommand,
// are added to every record logged with that context.
//
// Records go to stderr by default. Stdout carries command output (the
// generated code) and must stay clean for scripts.
//
// Attribute helpers in attr.go keep key names consistent. StoreKey logs a
// storage identifier only; values read from a store are secrets and are never
// passed to the logger. WithRedactedKeys masks named attributes as a second
// line of defence.
//
//	log := logger.New(
//	    logger.WithEnvironment(cfg.Env, "otpfill"),
//	    logger.WithLevelName(cfg.LogLevel),
//	)
//	log.InfoContext(ctx, "secret stored", logger.StoreKey(key))
package logger
