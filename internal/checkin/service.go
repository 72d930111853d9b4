package checkin

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/totalfootcare/checkin-kiosk/internal/session"
	"github.com/totalfootcare/checkin-kiosk/pkg/logging"
)

// Service runs the final submission step: it gathers the session's form,
// ships it to the backend, and on success tears the session down.
type Service struct {
	sessions       *session.Manager
	backend        Backend
	clinicLocation string
	logger         *logging.Logger
	now            func() time.Time

	mu       sync.Mutex
	inflight map[string]bool
}

// NewService wires the submission step.
func NewService(sessions *session.Manager, backend Backend, clinicLocation string, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		sessions:       sessions,
		backend:        backend,
		clinicLocation: clinicLocation,
		logger:         logger,
		now:            time.Now,
		inflight:       make(map[string]bool),
	}
}

// Submit sends the session's aggregate to the backend. A second call while
// one is running returns ErrInFlight; a slow backend does not produce two
// check-ins for one patient. On success the form and verification are
// cleared and the encounter ID is returned for the ticket screen. On
// failure everything is left in place so the patient can retry.
func (s *Service) Submit(ctx context.Context, sessionID string) (*Confirmation, error) {
	s.mu.Lock()
	if s.inflight[sessionID] {
		s.mu.Unlock()
		return nil, ErrInFlight
	}
	s.inflight[sessionID] = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.inflight, sessionID)
		s.mu.Unlock()
	}()

	verification, err := s.sessions.Verification(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("checkin: load verification: %w", err)
	}
	if verification == nil {
		return nil, ErrNotVerified
	}

	state := s.sessions.Form(ctx, sessionID).Snapshot()
	payload := BuildPayload(state, s.clinicLocation, s.now())

	confirmation, err := s.backend.Submit(ctx, verification.EncounterID, payload)
	if err != nil {
		s.logger.Error("submission failed",
			"session_id", sessionID,
			"encounter_id", verification.EncounterID,
			"error", err,
		)
		return nil, err
	}

	s.sessions.ClearForm(ctx, sessionID)
	s.sessions.ScheduleCleanup(sessionID)

	s.logger.Info("check-in submitted",
		"session_id", sessionID,
		"encounter_id", verification.EncounterID,
	)
	return confirmation, nil
}
