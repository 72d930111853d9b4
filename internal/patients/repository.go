package patients

import (
	"context"
	"sync"
	"time"
)

// Repository defines the interface for patient record storage.
//
// FindByFirstName is a case-sensitive exact match; the verification gate
// owns the capitalization-retry and full-scan fallbacks.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Record, error)
	FindByEncounterID(ctx context.Context, encounterID string) ([]*Record, error)
	FindByFirstName(ctx context.Context, firstName string) ([]*Record, error)
	ScanAll(ctx context.Context) ([]*Record, error)
	MarkCheckedIn(ctx context.Context, id string, update CheckInUpdate) error
}

// InMemoryRepository is a Repository backed by a map, for tests and local
// runs without a document store.
type InMemoryRepository struct {
	mu      sync.RWMutex
	records map[string]*Record
}

// NewInMemoryRepository creates an empty in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{records: make(map[string]*Record)}
}

// Put stores a record, normalizing it first when built from a raw document.
func (r *InMemoryRepository) Put(record *Record) {
	r.mu.Lock()
	r.records[record.ID] = record
	r.mu.Unlock()
}

// PutRaw normalizes and stores a raw document.
func (r *InMemoryRepository) PutRaw(id string, raw map[string]any) *Record {
	record := FromRaw(id, raw)
	r.Put(record)
	return record
}

func (r *InMemoryRepository) GetByID(_ context.Context, id string) (*Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.records[id]
	if !ok {
		return nil, ErrPatientNotFound
	}
	return record, nil
}

func (r *InMemoryRepository) FindByEncounterID(_ context.Context, encounterID string) ([]*Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Record
	for _, record := range r.records {
		if record.EncounterID == encounterID {
			out = append(out, record)
		}
	}
	return out, nil
}

func (r *InMemoryRepository) FindByFirstName(_ context.Context, firstName string) ([]*Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Record
	for _, record := range r.records {
		if record.FirstName == firstName {
			out = append(out, record)
		}
	}
	return out, nil
}

func (r *InMemoryRepository) ScanAll(_ context.Context) ([]*Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Record, 0, len(r.records))
	for _, record := range r.records {
		out = append(out, record)
	}
	return out, nil
}

func (r *InMemoryRepository) MarkCheckedIn(_ context.Context, id string, update CheckInUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[id]
	if !ok {
		return ErrPatientNotFound
	}
	record.CheckInStatus = StatusCheckedIn
	if update.Phone != "" {
		record.Phone = update.Phone
	}
	if update.Email != "" {
		record.Email = update.Email
	}
	if record.Raw == nil {
		record.Raw = make(map[string]any)
	}
	record.Raw["checkInStatus"] = string(StatusCheckedIn)
	record.Raw["checkInTime"] = update.CheckInTime.Format(time.RFC3339)
	record.Raw["kioskDataId"] = update.KioskDataID
	return nil
}
