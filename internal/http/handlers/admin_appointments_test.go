package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/totalfootcare/checkin-kiosk/internal/patients"
)

func newRosterHandler(t *testing.T) (*AdminAppointmentsHandler, *patients.InMemoryRepository) {
	t.Helper()
	repo := patients.NewInMemoryRepository()
	now := func() time.Time { return time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC) }

	repo.PutRaw("p-1", map[string]any{
		"id": "p-1", "fullName": "Jane Doe",
		"appointmentDate": "2025-06-15", "encounterId": "enc-1",
	})
	repo.PutRaw("p-2", map[string]any{
		"id": "p-2", "fullName": "Alex Kim",
		"appointmentDate": "2025-06-15", "checkInStatus": "checked-in",
	})
	repo.PutRaw("p-3", map[string]any{
		"id": "p-3", "fullName": "Pat Long",
		"appointmentDate": "2025-06-16",
	})

	return NewAdminAppointmentsHandler(AdminAppointmentsConfig{Patients: repo, Now: now}), repo
}

func TestAdminAppointmentsDefaultsToToday(t *testing.T) {
	handler, _ := newRosterHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/admin/appointments", nil)
	rec := httptest.NewRecorder()
	handler.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Date         string        `json:"date"`
		Appointments []rosterEntry `json:"appointments"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Date != "2025-06-15" {
		t.Fatalf("date = %q", resp.Date)
	}
	if len(resp.Appointments) != 2 {
		t.Fatalf("appointments = %+v", resp.Appointments)
	}
	// Sorted by name, with check-in status visible to the front desk.
	if resp.Appointments[0].FullName != "Alex Kim" || resp.Appointments[0].CheckInStatus != "checked-in" {
		t.Fatalf("first entry = %+v", resp.Appointments[0])
	}
	if resp.Appointments[1].FullName != "Jane Doe" || resp.Appointments[1].CheckInStatus != "not-checked-in" {
		t.Fatalf("second entry = %+v", resp.Appointments[1])
	}
}

func TestAdminAppointmentsExplicitDate(t *testing.T) {
	handler, _ := newRosterHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/admin/appointments?date=2025-06-16", nil)
	rec := httptest.NewRecorder()
	handler.List(rec, req)

	var resp struct {
		Appointments []rosterEntry `json:"appointments"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Appointments) != 1 || resp.Appointments[0].FullName != "Pat Long" {
		t.Fatalf("appointments = %+v", resp.Appointments)
	}
}

func TestAdminAppointmentsBadDate(t *testing.T) {
	handler, _ := newRosterHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/admin/appointments?date=June-16", nil)
	rec := httptest.NewRecorder()
	handler.List(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}
