// Package cache keeps in-progress settlement sessions in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"vendorbook/internal/core/apperror"
	"vendorbook/internal/core/id"
	"vendorbook/internal/domain/settlement"
)

const (
	defaultKeyPrefix  = "vendorbook:session"
	defaultSessionTTL = 36 * time.Hour
)

// SessionStore is a Redis-backed settlement.SessionStore. Each session is one
// JSON string key that expires after TTL of inactivity, so abandoned sessions
// clean themselves up.
type SessionStore struct {
	R      *redis.Client
	Prefix string
	TTL    time.Duration
}

var _ settlement.SessionStore = (*SessionStore)(nil)

// NewSessionStore creates a store with default prefix when prefix is empty.
func NewSessionStore(client *redis.Client, prefix string, ttl time.Duration) *SessionStore {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &SessionStore{R: client, Prefix: prefix, TTL: ttl}
}

func (s *SessionStore) key(businessID, sessionID id.ID) string {
	return fmt.Sprintf("%s:%s:%s", s.Prefix, businessID, sessionID)
}

// Create implements settlement.SessionStore.
func (s *SessionStore) Create(ctx context.Context, sess *settlement.Session) error {
	sess.Version = 1
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	ok, err := s.R.SetNX(ctx, s.key(sess.BusinessID, sess.ID), data, s.TTL).Result()
	if err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	if !ok {
		return apperror.NewConflict("session already exists").WithDetail("id", sess.ID.String())
	}
	return nil
}

// Get implements settlement.SessionStore.
func (s *SessionStore) Get(ctx context.Context, businessID, sessionID id.ID) (*settlement.Session, error) {
	data, err := s.R.Get(ctx, s.key(businessID, sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperror.NewNotFound("session", sessionID.String())
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return decode(data)
}

// Save implements settlement.SessionStore. The write is a compare-and-set on
// the stored version guarded by WATCH.
func (s *SessionStore) Save(ctx context.Context, sess *settlement.Session) error {
	key := s.key(sess.BusinessID, sess.ID)

	err := s.R.Watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return apperror.NewNotFound("session", sess.ID.String())
		}
		if err != nil {
			return fmt.Errorf("load session: %w", err)
		}
		cur, err := decode(data)
		if err != nil {
			return err
		}
		if cur.Version != sess.Version {
			return apperror.NewConcurrentModification("session", sess.ID.String())
		}

		next := sess.Clone()
		next.Version++
		encoded, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("encode session: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, encoded, s.TTL)
			return nil
		})
		return err
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		return apperror.NewConcurrentModification("session", sess.ID.String())
	}
	if err != nil {
		return err
	}
	sess.Version++
	return nil
}

// Delete implements settlement.SessionStore. Deleting a missing session is not an error.
func (s *SessionStore) Delete(ctx context.Context, businessID, sessionID id.ID) error {
	if err := s.R.Del(ctx, s.key(businessID, sessionID)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func decode(data []byte) (*settlement.Session, error) {
	var sess settlement.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &sess, nil
}
