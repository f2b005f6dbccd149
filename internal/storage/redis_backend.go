package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisBackend stores each feed as a sorted set keyed <prefix><feed>. Scores
// record insertion time so links read back in delivery order.
type RedisBackend struct {
	client *redis.Client
	prefix string

	mu        sync.Mutex
	written   map[string]map[string]struct{}
	lastScore float64
}

type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// OpenRedis connects and checks the connection.
func OpenRedis(ctx context.Context, opts RedisOptions) (*RedisBackend, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	slog.Info("Connected to Redis", "addr", opts.Addr)

	return &RedisBackend{
		client:  client,
		prefix:  opts.Prefix,
		written: map[string]map[string]struct{}{},
	}, nil
}

func (b *RedisBackend) Read(ctx context.Context) (*State, error) {
	st := NewState()

	iter := b.client.Scan(ctx, 0, b.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		links, err := b.client.ZRange(ctx, key, 0, -1).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", key, err)
		}
		st.Feeds[feedFromKey(b.prefix, key)] = links
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan feed keys: %w", err)
	}

	b.mu.Lock()
	b.written = map[string]map[string]struct{}{}
	for feed, links := range st.Feeds {
		b.remember(feed, links)
	}
	b.mu.Unlock()

	return st, nil
}

// Write adds the links of st not yet stored by this backend. ZADD NX keeps
// the first score of a link that is already present.
func (b *RedisBackend) Write(ctx context.Context, st *State) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	pending := map[string][]redis.Z{}
	score := nextScore(b.lastScore, time.Now())
	n := 0
	for feed, links := range st.Feeds {
		done := b.written[feed]
		for _, l := range links {
			if _, ok := done[l]; ok {
				continue
			}
			pending[feed] = append(pending[feed], redis.Z{Score: score, Member: l})
			score++
			n++
		}
	}
	if n == 0 {
		return nil
	}

	_, err := b.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for feed, members := range pending {
			pipe.ZAddNX(ctx, feedKey(b.prefix, feed), members...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write seen links: %w", err)
	}

	b.lastScore = score - 1
	for feed, members := range pending {
		links := make([]string, 0, len(members))
		for _, m := range members {
			links = append(links, m.Member.(string))
		}
		b.remember(feed, links)
	}
	return nil
}

func (b *RedisBackend) Close() error {
	return b.client.Close()
}

func (b *RedisBackend) remember(feed string, links []string) {
	done, ok := b.written[feed]
	if !ok {
		done = make(map[string]struct{}, len(links))
		b.written[feed] = done
	}
	for _, l := range links {
		done[l] = struct{}{}
	}
}

// nextScore returns a score above last, based on wall time in microseconds.
func nextScore(last float64, now time.Time) float64 {
	score := float64(now.UnixMicro())
	if score <= last {
		score = last + 1
	}
	return score
}

func feedKey(prefix, feed string) string {
	return prefix + feed
}

func feedFromKey(prefix, key string) string {
	return strings.TrimPrefix(key, prefix)
}
