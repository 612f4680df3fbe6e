// Package store keeps a journal of slots for which a booking attempt
// was started. A slot in the journal is never re-attempted: a failed
// booking must be looked at by a human, not resubmitted (retried
// submissions risk duplicate reservations).
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"pitchBooker/pkg/scraper"

	"github.com/redis/go-redis/v9"
)

// Attempted bookings are kept for a week; by then the slot itself has
// passed and the key can never collide again.
const journalTTL = 7 * 24 * time.Hour

// Journal records booking attempts.
type Journal interface {
	Seen(ctx context.Context, slot scraper.Slot) (bool, error)
	Record(ctx context.Context, slot scraper.Slot) error
}

// RedisJournal persists attempts in Redis so a restarted process won't
// book the same slot twice.
type RedisJournal struct {
	client *redis.Client
}

// NewRedis creates a Redis-backed journal.
func NewRedis(addr, password string) *RedisJournal {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
	return &RedisJournal{client: rdb}
}

// Ping verifies the Redis connection.
func (j *RedisJournal) Ping(ctx context.Context) error {
	return j.client.Ping(ctx).Err()
}

// Seen reports whether a booking attempt for this slot was recorded.
func (j *RedisJournal) Seen(ctx context.Context, slot scraper.Slot) (bool, error) {
	key := fmt.Sprintf("attempt:%s", slot.Key())
	_, err := j.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Record stores the slot before the booking attempt starts.
func (j *RedisJournal) Record(ctx context.Context, slot scraper.Slot) error {
	key := fmt.Sprintf("attempt:%s", slot.Key())
	data, err := json.Marshal(slot)
	if err != nil {
		return err
	}
	return j.client.Set(ctx, key, data, journalTTL).Err()
}

// MemoryJournal is the fallback when no Redis is configured. It only
// guards the lifetime of a single process.
type MemoryJournal struct {
	mu   sync.Mutex
	seen map[string]bool
}

// NewMemory creates an in-memory journal.
func NewMemory() *MemoryJournal {
	return &MemoryJournal{seen: make(map[string]bool)}
}

func (j *MemoryJournal) Seen(_ context.Context, slot scraper.Slot) (bool, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.seen[slot.Key()], nil
}

func (j *MemoryJournal) Record(_ context.Context, slot scraper.Slot) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.seen[slot.Key()] = true
	return nil
}
