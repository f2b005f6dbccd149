package storage

import (
	"context"
	"fmt"
)

// Options selects and configures a backend.
type Options struct {
	Kind        string // file, sqlite, postgres or redis
	FilePath    string
	SQLitePath  string
	DatabaseURL string
	Redis       RedisOptions
}

// Open returns the backend named by opts.Kind.
func Open(ctx context.Context, opts Options) (Backend, error) {
	switch opts.Kind {
	case "", "file":
		return NewFileBackend(opts.FilePath), nil
	case "sqlite":
		return OpenSQL(ctx, SQLite, opts.SQLitePath)
	case "postgres":
		return OpenSQL(ctx, Postgres, opts.DatabaseURL)
	case "redis":
		return OpenRedis(ctx, opts.Redis)
	default:
		return nil, fmt.Errorf("unknown state backend %q", opts.Kind)
	}
}
