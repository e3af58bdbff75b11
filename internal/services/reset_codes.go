package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// ResetCodeTTL is how long a mailed code and a verified flag stay valid.
	ResetCodeTTL = 10 * time.Minute

	// MaxResetCodeAttempts wrong codes burn the mailed code.
	MaxResetCodeAttempts = 5

	ResetCodeKeyPrefix     = "reset_code:"
	ResetVerifiedKeyPrefix = "reset_verified:"
	ResetAttemptsKeyPrefix = "reset_attempts:"
)

// ResetCodeStore keeps forgot-password codes. A code is single use: a
// successful Verify deletes it and marks the email verified until Consume.
// Wrong guesses are counted per email so the caller can Discard the code.
type ResetCodeStore interface {
	Save(ctx context.Context, email, code string) error
	Verify(ctx context.Context, email, code string) (bool, error)
	RecordFailedAttempt(ctx context.Context, email string) (int64, error)
	Discard(ctx context.Context, email string) error
	ConsumeVerified(ctx context.Context, email string) (bool, error)
}

type RedisResetCodeStore struct {
	client *redis.Client
}

func NewRedisResetCodeStore(client *redis.Client) *RedisResetCodeStore {
	return &RedisResetCodeStore{client: client}
}

// Save replaces any earlier code for the email and clears a stale verified flag.
func (s *RedisResetCodeStore) Save(ctx context.Context, email, code string) error {
	email = normalizeEmail(email)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, ResetCodeKeyPrefix+email, code, ResetCodeTTL)
		pipe.Del(ctx, ResetVerifiedKeyPrefix+email, ResetAttemptsKeyPrefix+email)
		return nil
	})
	return err
}

func (s *RedisResetCodeStore) Verify(ctx context.Context, email, code string) (bool, error) {
	email = normalizeEmail(email)
	stored, err := s.client.Get(ctx, ResetCodeKeyPrefix+email).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(strings.TrimSpace(code))) != 1 {
		return false, nil
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, ResetCodeKeyPrefix+email, ResetAttemptsKeyPrefix+email)
		pipe.Set(ctx, ResetVerifiedKeyPrefix+email, "1", ResetCodeTTL)
		return nil
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// RecordFailedAttempt counts a wrong code for the email and returns the
// count so far. The counter lives as long as a code does.
func (s *RedisResetCodeStore) RecordFailedAttempt(ctx context.Context, email string) (int64, error) {
	key := ResetAttemptsKeyPrefix + normalizeEmail(email)
	var incr *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, ResetCodeTTL)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// Discard drops the email's code and attempt counter.
func (s *RedisResetCodeStore) Discard(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	return s.client.Del(ctx, ResetCodeKeyPrefix+email, ResetAttemptsKeyPrefix+email).Err()
}

func (s *RedisResetCodeStore) ConsumeVerified(ctx context.Context, email string) (bool, error) {
	err := s.client.GetDel(ctx, ResetVerifiedKeyPrefix+normalizeEmail(email)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// GenerateResetCode returns a random six digit code.
func GenerateResetCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+100000, 10), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
