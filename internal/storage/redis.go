package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store keeps per-facility watcher state in Redis so restarts do not re-announce
// slots that were already reported.
type Store struct {
	client *redis.Client
}

func New(addr, password string) *Store {
	return &Store{client: redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})}
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

func seenKey(facility string) string {
	return "tennisbot:seen:" + facility
}

// SeenSlots returns the slot start times already announced for facility.
// A missing key is an empty set, not an error.
func (s *Store) SeenSlots(ctx context.Context, facility string) (map[string]bool, error) {
	raw, err := s.client.Get(ctx, seenKey(facility)).Result()
	if err == redis.Nil {
		return map[string]bool{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get seen slots: %w", err)
	}
	var starts []string
	if err := json.Unmarshal([]byte(raw), &starts); err != nil {
		return nil, fmt.Errorf("decode seen slots: %w", err)
	}
	seen := make(map[string]bool, len(starts))
	for _, st := range starts {
		seen[st] = true
	}
	return seen, nil
}

// SaveSeenSlots overwrites the announced set for facility. Entries expire after
// two days; by then the slots themselves are in the past.
func (s *Store) SaveSeenSlots(ctx context.Context, facility string, seen map[string]bool) error {
	starts := make([]string, 0, len(seen))
	for st := range seen {
		starts = append(starts, st)
	}
	raw, err := json.Marshal(starts)
	if err != nil {
		return fmt.Errorf("encode seen slots: %w", err)
	}
	if err := s.client.Set(ctx, seenKey(facility), raw, 48*time.Hour).Err(); err != nil {
		return fmt.Errorf("save seen slots: %w", err)
	}
	return nil
}
