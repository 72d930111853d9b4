// Package session tracks per-kiosk-session verification state and hydrated
// form stores.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Verification is the session-scoped record created only after the
// appointment gate succeeds. Its absence means the wizard is unreachable.
type Verification struct {
	PatientID   string         `json:"id"`
	EncounterID string         `json:"encounterId"`
	Record      map[string]any `json:"data"`
	VerifiedAt  string         `json:"date"`
}

// InsuranceSide routes captured card images to the right insurance section.
type InsuranceSide string

const (
	InsurancePrimary   InsuranceSide = "primary"
	InsuranceSecondary InsuranceSide = "secondary"
)

// Store is the session-scoped key-value store behind the kiosk: the
// verification record, the bare patient/encounter identifiers, and the
// insurance-type toggle.
type Store interface {
	SaveVerification(ctx context.Context, sessionID string, v *Verification) error
	// LoadVerification returns nil, nil when the session is not verified.
	LoadVerification(ctx context.Context, sessionID string) (*Verification, error)
	SetInsuranceSide(ctx context.Context, sessionID string, side InsuranceSide) error
	// InsuranceSide defaults to primary when never set.
	InsuranceSide(ctx context.Context, sessionID string) (InsuranceSide, error)
	Clear(ctx context.Context, sessionID string) error
}

const sessionKeyPrefix = "session:"

func sessionKey(sessionID, field string) string {
	return sessionKeyPrefix + sessionID + ":" + field
}

// RedisStore keeps session keys in Redis with a TTL so abandoned kiosks
// expire on their own.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) SaveVerification(ctx context.Context, sessionID string, v *Verification) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("session: marshal verification: %w", err)
	}
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, sessionKey(sessionID, "patient"), data, s.ttl)
	pipe.Set(ctx, sessionKey(sessionID, "patientId"), v.PatientID, s.ttl)
	pipe.Set(ctx, sessionKey(sessionID, "encounterId"), v.EncounterID, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("session: save verification: %w", err)
	}
	return nil
}

func (s *RedisStore) LoadVerification(ctx context.Context, sessionID string) (*Verification, error) {
	data, err := s.client.Get(ctx, sessionKey(sessionID, "patient")).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session: load verification: %w", err)
	}
	var v Verification
	if err := json.Unmarshal(data, &v); err != nil {
		// A corrupt record gates exactly like an absent one.
		return nil, nil
	}
	return &v, nil
}

func (s *RedisStore) SetInsuranceSide(ctx context.Context, sessionID string, side InsuranceSide) error {
	if err := s.client.Set(ctx, sessionKey(sessionID, "insuranceType"), string(side), s.ttl).Err(); err != nil {
		return fmt.Errorf("session: set insurance side: %w", err)
	}
	return nil
}

func (s *RedisStore) InsuranceSide(ctx context.Context, sessionID string) (InsuranceSide, error) {
	val, err := s.client.Get(ctx, sessionKey(sessionID, "insuranceType")).Result()
	if errors.Is(err, redis.Nil) {
		return InsurancePrimary, nil
	}
	if err != nil {
		return "", fmt.Errorf("session: get insurance side: %w", err)
	}
	if InsuranceSide(val) == InsuranceSecondary {
		return InsuranceSecondary, nil
	}
	return InsurancePrimary, nil
}

func (s *RedisStore) Clear(ctx context.Context, sessionID string) error {
	keys := []string{
		sessionKey(sessionID, "patient"),
		sessionKey(sessionID, "patientId"),
		sessionKey(sessionID, "encounterId"),
		sessionKey(sessionID, "insuranceType"),
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("session: clear: %w", err)
	}
	return nil
}

// MemoryStore is an in-memory Store for tests.
type MemoryStore struct {
	mu    sync.RWMutex
	data  map[string]*Verification
	sides map[string]InsuranceSide
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data:  make(map[string]*Verification),
		sides: make(map[string]InsuranceSide),
	}
}

func (s *MemoryStore) SaveVerification(_ context.Context, sessionID string, v *Verification) error {
	s.mu.Lock()
	s.data[sessionID] = v
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) LoadVerification(_ context.Context, sessionID string) (*Verification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data[sessionID], nil
}

func (s *MemoryStore) SetInsuranceSide(_ context.Context, sessionID string, side InsuranceSide) error {
	s.mu.Lock()
	s.sides[sessionID] = side
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) InsuranceSide(_ context.Context, sessionID string) (InsuranceSide, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if side, ok := s.sides[sessionID]; ok {
		return side, nil
	}
	return InsurancePrimary, nil
}

func (s *MemoryStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.data, sessionID)
	delete(s.sides, sessionID)
	s.mu.Unlock()
	return nil
}
