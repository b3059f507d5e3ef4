package ledger

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const seenSetKey = "leveler:seen"

// RedisLedger keeps the seen set in a Redis SET. Unlike the file ledger it
// is append-only: Replace adds the latest scan's usernames and never
// removes earlier entries, so concurrent runs cannot clobber each other's
// snapshot.
type RedisLedger struct {
	client *redis.Client
}

func NewRedisLedger(url string) (*RedisLedger, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &RedisLedger{client: client}, nil
}

func (l *RedisLedger) Load(ctx context.Context) (map[string]struct{}, error) {
	members, err := l.client.SMembers(ctx, seenSetKey).Result()
	if err != nil {
		return nil, fmt.Errorf("load seen set: %w", err)
	}
	seen := make(map[string]struct{}, len(members))
	for _, m := range members {
		seen[m] = struct{}{}
	}
	return seen, nil
}

func (l *RedisLedger) Replace(ctx context.Context, rows []string) error {
	if len(rows) == 0 {
		return nil
	}
	names := make([]any, 0, len(rows))
	for _, row := range rows {
		if name := Username(row); name != "" {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return nil
	}
	if err := l.client.SAdd(ctx, seenSetKey, names...).Err(); err != nil {
		return fmt.Errorf("add to seen set: %w", err)
	}
	return nil
}

func (l *RedisLedger) Close() error {
	return l.client.Close()
}
