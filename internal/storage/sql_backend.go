package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

// SQLBackend stores one row per delivered link in seen_links.
type SQLBackend struct {
	db      *sql.DB
	dialect Dialect

	mu      sync.Mutex
	written map[string]map[string]struct{}
}

// OpenSQL connects, checks the connection and migrates the schema.
func OpenSQL(ctx context.Context, d Dialect, dsn string) (*SQLBackend, error) {
	db, err := sql.Open(string(d), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", d, err)
	}
	if d == SQLite {
		// One writer; avoids "database is locked" between pooled connections.
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	version, err := Migrate(db, d)
	if err != nil {
		db.Close()
		return nil, err
	}
	slog.Info("Database schema ready", "dialect", d, "version", version)

	return &SQLBackend{db: db, dialect: d, written: map[string]map[string]struct{}{}}, nil
}

func (b *SQLBackend) Read(ctx context.Context) (*State, error) {
	rows, err := b.db.QueryContext(ctx, `SELECT feed, link FROM seen_links ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to query seen links: %w", err)
	}
	defer rows.Close()

	st := NewState()
	for rows.Next() {
		var feed, link string
		if err := rows.Scan(&feed, &link); err != nil {
			return nil, fmt.Errorf("failed to scan seen link: %w", err)
		}
		st.Feeds[feed] = append(st.Feeds[feed], link)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read seen links: %w", err)
	}

	b.mu.Lock()
	b.written = map[string]map[string]struct{}{}
	for feed, links := range st.Feeds {
		b.remember(feed, links)
	}
	b.mu.Unlock()

	return st, nil
}

// Write inserts every link of st not yet stored by this backend, in one
// transaction. Rows are never deleted.
func (b *SQLBackend) Write(ctx context.Context, st *State) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	pending := b.pending(st)
	if len(pending) == 0 {
		return nil
	}

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, b.rebind(
		`INSERT INTO seen_links (feed, link) VALUES (?, ?) ON CONFLICT (feed, link) DO NOTHING`))
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range pending {
		if _, err := stmt.ExecContext(ctx, p.feed, p.link); err != nil {
			return fmt.Errorf("failed to insert seen link: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit seen links: %w", err)
	}

	for _, p := range pending {
		b.remember(p.feed, []string{p.link})
	}
	return nil
}

func (b *SQLBackend) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}

type feedLink struct {
	feed, link string
}

func (b *SQLBackend) pending(st *State) []feedLink {
	var out []feedLink
	for feed, links := range st.Feeds {
		done := b.written[feed]
		for _, l := range links {
			if _, ok := done[l]; !ok {
				out = append(out, feedLink{feed, l})
			}
		}
	}
	return out
}

func (b *SQLBackend) remember(feed string, links []string) {
	done, ok := b.written[feed]
	if !ok {
		done = make(map[string]struct{}, len(links))
		b.written[feed] = done
	}
	for _, l := range links {
		done[l] = struct{}{}
	}
}

// rebind rewrites ? placeholders to $n for postgres.
func (b *SQLBackend) rebind(query string) string {
	if b.dialect != Postgres {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&sb, "$%d", n)
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
