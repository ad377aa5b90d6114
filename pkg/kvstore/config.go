package kvstore

import "time"

// FileConfig configures FileStore.
type FileConfig struct {
	Path string `env:"OTPFILL_FILE_PATH" envDefault:"otpfill.json"` // Path is the JSON document holding all values.
}

// BoltConfig configures BoltStore.
type BoltConfig struct {
	Path        string        `env:"OTPFILL_BOLT_PATH" envDefault:"otpfill.db"` // Path is the bbolt database file.
	Bucket      string        `env:"OTPFILL_BOLT_BUCKET" envDefault:"secrets"`  // Bucket holds all keys.
	OpenTimeout time.Duration `env:"OTPFILL_BOLT_TIMEOUT" envDefault:"1s"`      // OpenTimeout bounds the wait for the file lock.
}

// S3Config configures S3Store.
type S3Config struct {
	Bucket         string `env:"OTPFILL_S3_BUCKET"`                              // Bucket is the target bucket.
	Region         string `env:"OTPFILL_S3_REGION" envDefault:"us-east-1"`       // Region of the bucket.
	Prefix         string `env:"OTPFILL_S3_PREFIX" envDefault:"otpfill"`         // Prefix is prepended to every object key.
	AccessKeyID    string `env:"OTPFILL_S3_ACCESS_KEY_ID"`                       // AccessKeyID for static credentials (optional).
	SecretKey      string `env:"OTPFILL_S3_SECRET_KEY"`                          // SecretKey for static credentials (optional).
	Endpoint       string `env:"OTPFILL_S3_ENDPOINT"`                            // Endpoint for S3-compatible services (optional).
	ForcePathStyle bool   `env:"OTPFILL_S3_FORCE_PATH_STYLE" envDefault:"false"` // ForcePathStyle for MinIO and similar services.
}
