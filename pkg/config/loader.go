package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// entry holds one parsed configuration type.
type entry struct {
	once  sync.Once
	value any
	err   error
}

var (
	cacheMu sync.Mutex
	cache   = map[reflect.Type]*entry{}

	defaultEnvLoaded sync.Once
)

// Load parses the environment into v, once per configuration type. Later
// calls for the same type copy the cached value. A failed parse is not
// cached, so the caller may fix the environment and retry.
//
//	type Config struct {
//		Path string `env:"OTPFILL_FILE_PATH" envDefault:"otpfill.json"`
//	}
//
//	var cfg Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
func Load[T any](v *T) error {
	loadDefaultEnv()
	if v == nil {
		return ErrNilPointer
	}

	e := lookup[T]()
	e.once.Do(func() {
		var parsed T
		if err := env.Parse(&parsed); err != nil {
			e.err = errors.Join(ErrParsingConfig, err)
			return
		}
		e.value = parsed
	})

	if e.err != nil {
		evict[T](e)
		return e.err
	}
	*v = e.value.(T)
	return nil
}

// MustLoad works like Load but panics on failure.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("Failed to load required configuration: %v", err))
	}
}

// ResetCache drops every cached configuration.
func ResetCache() {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	cache = map[reflect.Type]*entry{}
}

// ForceReloadConfig evicts the cached value for T and loads it again.
func ForceReloadConfig[T any](v *T) error {
	cacheMu.Lock()
	delete(cache, typeOf[T]())
	cacheMu.Unlock()
	return Load(v)
}

func lookup[T any]() *entry {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	t := typeOf[T]()
	e, ok := cache[t]
	if !ok {
		e = &entry{}
		cache[t] = e
	}
	return e
}

// evict removes e only if it is still the cached entry for T.
func evict[T any](e *entry) {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	if t := typeOf[T](); cache[t] == e {
		delete(cache, t)
	}
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// loadDefaultEnv reads ./.env once per process. A missing file is fine.
func loadDefaultEnv() {
	defaultEnvLoaded.Do(func() {
		_ = godotenv.Load()
	})
}
