package redisrepo

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/jrsteele09/go-auth-frontdoor/sessions"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/blake2b"
)

// ErrRedisUnavailable wraps failures talking to Redis.
var ErrRedisUnavailable = errors.New("redis unavailable")

const (
	fieldSession      = "session"
	fieldIntermediate = "intermediate"
)

var _ sessions.Repo = (*Repo)(nil)

// Repo stores browser records as Redis hashes with a sliding TTL. Keys are
// derived from a BLAKE2b hash of the browser id so cookie values never appear
// in the keyspace.
type Repo struct {
	rdb     redis.UniversalClient
	prefix  string
	timeout time.Duration
}

// New creates a Redis backed session repo. timeout is the inactivity expiry.
func New(rdb redis.UniversalClient, prefix string, timeout time.Duration) *Repo {
	if prefix == "" {
		prefix = "frontdoor"
	}
	return &Repo{
		rdb:     rdb,
		prefix:  prefix,
		timeout: timeout,
	}
}

// Get reads the record and extends its TTL in the same transaction.
func (r *Repo) Get(ctx context.Context, browserID string) (sessions.Record, error) {
	if browserID == "" {
		return sessions.Record{}, fmt.Errorf("browserID is required")
	}
	key := r.key(browserID)

	var fields *redis.MapStringStringCmd
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		fields = pipe.HGetAll(ctx, key)
		pipe.Expire(ctx, key, r.timeout)
		return nil
	})
	if err != nil {
		return sessions.Record{}, fmt.Errorf("[redisrepo.Get] %w: %v", ErrRedisUnavailable, err)
	}

	values := fields.Val()
	return sessions.Record{
		SessionCredential:      values[fieldSession],
		IntermediateCredential: values[fieldIntermediate],
	}, nil
}

// Put replaces the whole record atomically; an empty record deletes the key.
func (r *Repo) Put(ctx context.Context, browserID string, record sessions.Record) error {
	if browserID == "" {
		return fmt.Errorf("browserID is required")
	}
	if record.Empty() {
		return r.Delete(ctx, browserID)
	}
	key := r.key(browserID)

	values := make([]any, 0, 4)
	if record.SessionCredential != "" {
		values = append(values, fieldSession, record.SessionCredential)
	}
	if record.IntermediateCredential != "" {
		values = append(values, fieldIntermediate, record.IntermediateCredential)
	}

	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, values...)
		pipe.Expire(ctx, key, r.timeout)
		return nil
	})
	if err != nil {
		return fmt.Errorf("[redisrepo.Put] %w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, browserID string) error {
	if browserID == "" {
		return fmt.Errorf("browserID is required")
	}
	if err := r.rdb.Del(ctx, r.key(browserID)).Err(); err != nil {
		return fmt.Errorf("[redisrepo.Delete] %w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

func (r *Repo) key(browserID string) string {
	sum := blake2b.Sum256([]byte(browserID))
	return r.prefix + ":browser:" + hex.EncodeToString(sum[:])
}
