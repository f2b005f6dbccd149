// Command statecheck opens the configured dedup backend and prints what it
// holds, to check connectivity before starting the forwarder.
package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"sort"
	"time"

	"github.com/deusflow/feedhook/internal/config"
	"github.com/deusflow/feedhook/internal/storage"
)

const recentLinks = 5

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Backend: %s (%s)\n", cfg.StateBackend, target(cfg))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	backend, err := storage.Open(ctx, storage.Options{
		Kind:        cfg.StateBackend,
		FilePath:    cfg.StateFile,
		SQLitePath:  cfg.SQLitePath,
		DatabaseURL: cfg.DatabaseURL,
		Redis: storage.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisKeyPrefix,
		},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open backend: %v\n", err)
		os.Exit(1)
	}
	defer backend.Close()

	st, err := backend.Read(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read state: %v\n", err)
		os.Exit(1)
	}

	printState(st)
}

func printState(st *storage.State) {
	if len(st.Feeds) == 0 {
		fmt.Println("No links recorded yet")
		return
	}

	names := make([]string, 0, len(st.Feeds))
	for name := range st.Feeds {
		names = append(names, name)
	}
	sort.Strings(names)

	total := 0
	for _, name := range names {
		links := st.Feeds[name]
		total += len(links)
		fmt.Printf("%s: %d links\n", name, len(links))

		start := len(links) - recentLinks
		if start < 0 {
			start = 0
		}
		for i := len(links) - 1; i >= start; i-- {
			fmt.Printf("    %s\n", links[i])
		}
	}
	fmt.Printf("Total: %d links in %d feeds\n", total, len(names))
}

func target(cfg *config.Config) string {
	switch cfg.StateBackend {
	case config.BackendSQLite:
		return cfg.SQLitePath
	case config.BackendPostgres:
		return maskDSN(cfg.DatabaseURL)
	case config.BackendRedis:
		return cfg.RedisAddr
	default:
		return cfg.StateFile
	}
}

// maskDSN hides the password of a URL-style connection string.
func maskDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.User == nil {
		return dsn
	}
	return u.Redacted()
}
