// Package store persists small JSON values under named keys.
package store

import (
	"context"
	"fmt"
)

// Keys used by the application.
const (
	KeyResumeRaw        = "resumeRawText"
	KeyResumeStructured = "resumeStructured"
	KeyResumeUpdatedAt  = "resumeUpdatedAt"
	KeyFieldMemory      = "fieldMemory"
	KeyModels           = "aiModels"
	KeyActiveModel      = "activeModelId"
	KeyBuiltinOverride  = "builtinModelOverride"
)

// KV is a key/value store of JSON-serializable values.
type KV interface {
	// Get decodes the value stored under key into dst. It reports false
	// when the key is absent, leaving dst untouched.
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Options selects and configures a backend.
type Options struct {
	Driver string // file or redis
	Path   string

	RedisAddr   string
	RedisDB     int
	RedisPrefix string
}

// Open returns the backend named by opts.Driver.
func Open(ctx context.Context, opts Options) (KV, error) {
	switch opts.Driver {
	case "", "file":
		return OpenFile(opts.Path)
	case "redis":
		return OpenRedis(ctx, opts.RedisAddr, opts.RedisDB, opts.RedisPrefix)
	default:
		return nil, fmt.Errorf("unknown storage driver: %s (supported: file, redis)", opts.Driver)
	}
}
