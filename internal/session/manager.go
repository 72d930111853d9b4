package session

import (
	"context"
	"sync"
	"time"

	"github.com/totalfootcare/checkin-kiosk/internal/formstate"
	"github.com/totalfootcare/checkin-kiosk/internal/patients"
	"github.com/totalfootcare/checkin-kiosk/pkg/logging"
)

// Manager owns the lifecycle of a kiosk session: the verification record,
// the hydrated form store, and the post-ticket cleanup timer.
type Manager struct {
	store        Store
	persister    formstate.Persister
	logger       *logging.Logger
	cleanupDelay time.Duration

	mu     sync.Mutex
	forms  map[string]*formstate.Store
	timers map[string]*time.Timer
}

// NewManager wires the session store and form persistence together.
// cleanupDelay is how long after ticket issuance the verification record
// lingers for the confirmation screen before being wiped.
func NewManager(store Store, persister formstate.Persister, cleanupDelay time.Duration, logger *logging.Logger) *Manager {
	if logger == nil {
		logger = logging.Default()
	}
	return &Manager{
		store:        store,
		persister:    persister,
		logger:       logger,
		cleanupDelay: cleanupDelay,
		forms:        make(map[string]*formstate.Store),
		timers:       make(map[string]*time.Timer),
	}
}

// Form returns the session's form store, rehydrating it from persisted state
// on first touch. An absent or malformed persisted copy hydrates empty.
func (m *Manager) Form(ctx context.Context, sessionID string) *formstate.Store {
	m.mu.Lock()
	if store, ok := m.forms[sessionID]; ok {
		m.mu.Unlock()
		return store
	}
	m.mu.Unlock()

	state, err := m.persister.Load(ctx, sessionID)
	if err != nil {
		// Storage trouble is non-fatal: start empty, in-memory state rules.
		m.logger.Error("form state load failed", "session_id", sessionID, "error", err)
		state = formstate.FormState{}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if store, ok := m.forms[sessionID]; ok {
		return store
	}
	store := formstate.NewStoreFrom(state)
	formstate.Attach(store, m.persister, sessionID, m.logger)
	m.forms[sessionID] = store
	return store
}

// Establish records a successful verification for the session. Seeding the
// form from the matched record is the verification handler's job, once,
// right after this call. Any cleanup timer left over from the previous
// patient on the same kiosk is cancelled first so it cannot wipe the new
// session mid-wizard.
func (m *Manager) Establish(ctx context.Context, sessionID string, record *patients.Record, encounterID string) (*Verification, error) {
	m.mu.Lock()
	if timer, ok := m.timers[sessionID]; ok {
		timer.Stop()
		delete(m.timers, sessionID)
	}
	m.mu.Unlock()

	v := &Verification{
		PatientID:   record.ID,
		EncounterID: encounterID,
		Record:      record.Raw,
		VerifiedAt:  time.Now().Format("1/2/2006"),
	}
	if err := m.store.SaveVerification(ctx, sessionID, v); err != nil {
		return nil, err
	}
	return v, nil
}

// Verification returns the session's verification record, or nil when the
// gate has not been passed.
func (m *Manager) Verification(ctx context.Context, sessionID string) (*Verification, error) {
	return m.store.LoadVerification(ctx, sessionID)
}

// Verified reports whether the session has passed the gate. Store failures
// gate closed.
func (m *Manager) Verified(ctx context.Context, sessionID string) bool {
	v, err := m.store.LoadVerification(ctx, sessionID)
	if err != nil {
		m.logger.Error("verification lookup failed", "session_id", sessionID, "error", err)
		return false
	}
	return v != nil
}

// SetInsuranceSide records which insurance section the next captured card
// image belongs to.
func (m *Manager) SetInsuranceSide(ctx context.Context, sessionID string, side InsuranceSide) error {
	return m.store.SetInsuranceSide(ctx, sessionID, side)
}

// InsuranceSide reports the section the capture adapter should target.
func (m *Manager) InsuranceSide(ctx context.Context, sessionID string) (InsuranceSide, error) {
	return m.store.InsuranceSide(ctx, sessionID)
}

// ClearForm wipes the form aggregate and its persisted copy.
func (m *Manager) ClearForm(ctx context.Context, sessionID string) {
	m.Form(ctx, sessionID).Clear()
}

// Clear tears the whole session down: verification record, form state, and
// any pending cleanup timer.
func (m *Manager) Clear(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	if timer, ok := m.timers[sessionID]; ok {
		timer.Stop()
		delete(m.timers, sessionID)
	}
	form, hadForm := m.forms[sessionID]
	delete(m.forms, sessionID)
	m.mu.Unlock()

	if hadForm {
		form.Clear()
	} else if err := m.persister.Delete(ctx, sessionID); err != nil {
		// The persisted aggregate may predate this process; abandon must
		// still remove it.
		m.logger.Error("form state delete failed", "session_id", sessionID, "error", err)
	}
	return m.store.Clear(ctx, sessionID)
}

// ScheduleCleanup clears the verification record a fixed delay after ticket
// issuance, giving the confirmation screen time to show the encounter number.
// Fire-and-forget; a new verification on the same session cancels it.
func (m *Manager) ScheduleCleanup(sessionID string) {
	m.mu.Lock()
	if timer, ok := m.timers[sessionID]; ok {
		timer.Stop()
	}
	m.timers[sessionID] = time.AfterFunc(m.cleanupDelay, func() {
		m.mu.Lock()
		delete(m.timers, sessionID)
		delete(m.forms, sessionID)
		m.mu.Unlock()
		if err := m.store.Clear(context.Background(), sessionID); err != nil {
			m.logger.Error("ticket cleanup failed", "session_id", sessionID, "error", err)
		} else {
			m.logger.Info("ticket session cleaned up", "session_id", sessionID)
		}
	})
	m.mu.Unlock()
}
