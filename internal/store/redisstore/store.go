package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	captchaPrefix  = "workspace:captcha:"
	identityPrefix = "workspace:identity:"

	captchaTTL  = 10 * time.Minute
	identityTTL = 24 * time.Hour
)

type Store struct {
	rdb *redis.Client
}

func New(addr, password string, db int) *Store {
	return &Store{
		rdb: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
	}
}

func (s *Store) Close() error { return s.rdb.Close() }

func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// Captcha codes for signup email verification.

func (s *Store) SetCaptcha(ctx context.Context, email, code string) error {
	return s.rdb.Set(ctx, captchaPrefix+email, code, captchaTTL).Err()
}

func (s *Store) GetCaptcha(ctx context.Context, email string) (string, error) {
	return s.rdb.Get(ctx, captchaPrefix+email).Result()
}

func (s *Store) DeleteCaptcha(ctx context.Context, email string) error {
	return s.rdb.Del(ctx, captchaPrefix+email).Err()
}

// Identity is the minimal signed-in snapshot kept under a fixed per-user
// key so a reload does not need a profile round trip. Best-effort cache,
// never the source of truth.
type Identity struct {
	UserID       uint64 `json:"user_id"`
	Email        string `json:"email"`
	Username     string `json:"username"`
	ProfileImage string `json:"profile_image"`
	Token        string `json:"token"`
}

func identityKey(userID uint64) string {
	return fmt.Sprintf("%s%d", identityPrefix, userID)
}

func (s *Store) CacheIdentity(ctx context.Context, id Identity) error {
	b, err := json.Marshal(id)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, identityKey(id.UserID), b, identityTTL).Err()
}

func (s *Store) GetIdentity(ctx context.Context, userID uint64) (*Identity, error) {
	b, err := s.rdb.Get(ctx, identityKey(userID)).Bytes()
	if err != nil {
		return nil, err
	}
	var id Identity
	if err := json.Unmarshal(b, &id); err != nil {
		return nil, err
	}
	return &id, nil
}

// ClearIdentity drops the cached snapshot on sign-out.
func (s *Store) ClearIdentity(ctx context.Context, userID uint64) error {
	return s.rdb.Del(ctx, identityKey(userID)).Err()
}
