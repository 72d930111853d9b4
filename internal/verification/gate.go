// Package verification implements the appointment verification gate that
// guards the check-in wizard.
package verification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/totalfootcare/checkin-kiosk/internal/patients"
	"github.com/totalfootcare/checkin-kiosk/pkg/logging"
)

// Credential identifies an appointment: either an opaque encounter ID or a
// first name + last name + date of birth triple.
type Credential struct {
	EncounterID string `json:"encounterId,omitempty"`
	FirstName   string `json:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty"`
	DateOfBirth string `json:"dateOfBirth,omitempty"`
}

// Gate verifies appointment credentials against the patient record store.
type Gate struct {
	repo   patients.Repository
	logger *logging.Logger
	now    func() time.Time
}

// NewGate builds a gate verifying against today's schedule in local time.
func NewGate(repo patients.Repository, logger *logging.Logger) *Gate {
	if logger == nil {
		logger = logging.Default()
	}
	return &Gate{repo: repo, logger: logger, now: time.Now}
}

// WithClock overrides the verification date source, for tests.
func (g *Gate) WithClock(now func() time.Time) *Gate {
	g.now = now
	return g
}

// Verify resolves a credential to an eligible appointment record for today.
// It returns ErrNotFound when nothing matches, ErrAlreadyCheckedIn when the
// only matches have already completed check-in, and an error wrapping
// ErrBackend on store failures. Failed attempts leave no state behind; the
// gate is freely re-enterable.
func (g *Gate) Verify(ctx context.Context, cred Credential) (*patients.Record, error) {
	if id := strings.TrimSpace(cred.EncounterID); id != "" {
		return g.verifyEncounterID(ctx, id)
	}
	if cred.FirstName != "" && cred.LastName != "" && cred.DateOfBirth != "" {
		return g.verifyNameDOB(ctx, cred)
	}
	return nil, ErrMissingCredential
}

func (g *Gate) verifyEncounterID(ctx context.Context, encounterID string) (*patients.Record, error) {
	candidates, err := g.repo.FindByEncounterID(ctx, encounterID)
	if err != nil {
		g.logger.Error("encounter lookup failed", "encounter_id", encounterID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrBackend, err)
	}

	today := g.now()
	return g.pick(filterByDay(candidates, today), encounterID)
}

func (g *Gate) verifyNameDOB(ctx context.Context, cred Credential) (*patients.Record, error) {
	firstName := strings.TrimSpace(cred.FirstName)
	lastName := strings.TrimSpace(cred.LastName)
	dob, err := NormalizeDate(cred.DateOfBirth)
	if err != nil {
		return nil, ErrNotFound
	}

	candidates, err := g.candidatesByFirstName(ctx, firstName)
	if err != nil {
		return nil, err
	}

	today := g.now()
	var matches []*patients.Record
	for _, r := range filterByDay(candidates, today) {
		if !strings.EqualFold(strings.TrimSpace(r.FirstName), firstName) {
			continue
		}
		if !strings.EqualFold(strings.TrimSpace(r.LastName), lastName) {
			continue
		}
		recordDOB, err := NormalizeDate(r.DateOfBirth)
		if err != nil || recordDOB != dob {
			continue
		}
		matches = append(matches, r)
	}
	return g.pick(matches, firstName+" "+lastName)
}

// candidatesByFirstName queries by the name exactly as typed, retries with
// a single-capitalized variant, then falls back to scanning every record.
// The scan is tolerable at one clinic's daily-schedule scale.
func (g *Gate) candidatesByFirstName(ctx context.Context, firstName string) ([]*patients.Record, error) {
	candidates, err := g.repo.FindByFirstName(ctx, firstName)
	if err != nil {
		g.logger.Error("first-name lookup failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrBackend, err)
	}
	if len(candidates) > 0 {
		return candidates, nil
	}

	if variant := capitalize(firstName); variant != firstName {
		candidates, err = g.repo.FindByFirstName(ctx, variant)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBackend, err)
		}
		if len(candidates) > 0 {
			return candidates, nil
		}
	}

	candidates, err = g.repo.ScanAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackend, err)
	}
	return candidates, nil
}

// pick returns the first eligible match. Matches that have already checked
// in are never returned; they surface as ErrAlreadyCheckedIn so the kiosk
// can show the distinct message.
func (g *Gate) pick(matches []*patients.Record, identifier string) (*patients.Record, error) {
	if len(matches) == 0 {
		return nil, ErrNotFound
	}
	for _, r := range matches {
		if r.Eligible() {
			g.logger.Info("appointment verified", "patient_id", r.ID, "identifier", identifier)
			return r, nil
		}
	}
	g.logger.Info("appointment already checked in", "identifier", identifier)
	return nil, ErrAlreadyCheckedIn
}

func filterByDay(records []*patients.Record, day time.Time) []*patients.Record {
	var out []*patients.Record
	for _, r := range records {
		if SameDay(r.AppointmentDate, day) {
			out = append(out, r)
		}
	}
	return out
}
