// Package config reads settings from environment variables into tagged
// structs using github.com/caarlos0/env/v11, with .env support from
// github.com/joho/godotenv.
//
// Every package that needs settings declares a struct with env and envDefault
// tags. Load parses it once per type and serves copies afterwards; Parse is
// the uncached variant and accepts a variable prefix. The first call of either
// reads ./.env without overriding variables that are already set. LoadEnv
// loads explicit files (the CLI's -env-file flag) and does override, later
// files winning.
//
//	var cfg kvstore.BoltConfig
//	if err := config.Load(&cfg); err != nil {
//	    return err
//	}
//
// ResetCache and ForceReloadConfig exist for tests that change the
// environment between loads.
package config
