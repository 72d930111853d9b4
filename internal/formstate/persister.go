package formstate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/totalfootcare/checkin-kiosk/pkg/logging"
)

// Persister stores serialized FormState aggregates keyed by kiosk session.
type Persister interface {
	Save(ctx context.Context, sessionID string, state FormState) error
	// Load returns the persisted aggregate for a session. An absent or
	// malformed copy yields the empty aggregate and no error; only transport
	// failures are reported.
	Load(ctx context.Context, sessionID string) (FormState, error)
	Delete(ctx context.Context, sessionID string) error
}

const stateKeyPrefix = "state:"

// RedisPersister keeps one JSON document per session in Redis.
type RedisPersister struct {
	client *redis.Client
	ttl    time.Duration
	logger *logging.Logger
}

// NewRedisPersister builds a persister writing under "state:<session>" with
// the given TTL (zero means no expiry).
func NewRedisPersister(client *redis.Client, ttl time.Duration, logger *logging.Logger) *RedisPersister {
	if logger == nil {
		logger = logging.Default()
	}
	return &RedisPersister{client: client, ttl: ttl, logger: logger}
}

func (p *RedisPersister) Save(ctx context.Context, sessionID string, state FormState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("formstate: marshal state: %w", err)
	}
	if err := p.client.Set(ctx, stateKeyPrefix+sessionID, data, p.ttl).Err(); err != nil {
		return fmt.Errorf("formstate: save state: %w", err)
	}
	return nil
}

func (p *RedisPersister) Load(ctx context.Context, sessionID string) (FormState, error) {
	data, err := p.client.Get(ctx, stateKeyPrefix+sessionID).Bytes()
	if errors.Is(err, redis.Nil) {
		return FormState{}, nil
	}
	if err != nil {
		return FormState{}, fmt.Errorf("formstate: load state: %w", err)
	}

	var state FormState
	if err := json.Unmarshal(data, &state); err != nil {
		// A corrupt stored copy starts the session over rather than
		// wedging the kiosk.
		p.logger.Warn("discarding malformed persisted state", "session_id", sessionID, "error", err)
		return FormState{}, nil
	}
	return state, nil
}

func (p *RedisPersister) Delete(ctx context.Context, sessionID string) error {
	if err := p.client.Del(ctx, stateKeyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("formstate: delete state: %w", err)
	}
	return nil
}

// MemoryPersister is an in-memory Persister for tests and local runs.
type MemoryPersister struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{data: make(map[string][]byte)}
}

func (p *MemoryPersister) Save(_ context.Context, sessionID string, state FormState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.data[sessionID] = data
	p.mu.Unlock()
	return nil
}

func (p *MemoryPersister) Load(_ context.Context, sessionID string) (FormState, error) {
	p.mu.RLock()
	data, ok := p.data[sessionID]
	p.mu.RUnlock()
	if !ok {
		return FormState{}, nil
	}
	var state FormState
	if err := json.Unmarshal(data, &state); err != nil {
		return FormState{}, nil
	}
	return state, nil
}

func (p *MemoryPersister) Delete(_ context.Context, sessionID string) error {
	p.mu.Lock()
	delete(p.data, sessionID)
	p.mu.Unlock()
	return nil
}

// Has reports whether a serialized copy exists for the session.
func (p *MemoryPersister) Has(sessionID string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.data[sessionID]
	return ok
}

// Attach wires persistence to a store as a side-effecting subscriber: every
// update re-serializes the whole aggregate, and a cleared (empty) aggregate
// removes the stored copy. Persistence failures are logged and swallowed so
// the in-memory state stays authoritative for the session.
func Attach(store *Store, persister Persister, sessionID string, logger *logging.Logger) {
	if logger == nil {
		logger = logging.Default()
	}
	store.Subscribe(func(state FormState) {
		ctx := context.Background()
		var err error
		if state.IsEmpty() {
			err = persister.Delete(ctx, sessionID)
		} else {
			err = persister.Save(ctx, sessionID, state)
		}
		if err != nil {
			logger.Error("form state persistence failed", "session_id", sessionID, "error", err)
		}
	})
}
