package patients

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestInMemoryRepository_FindByFirstNameIsCaseSensitive(t *testing.T) {
	repo := NewInMemoryRepository()
	repo.PutRaw("p-1", map[string]any{"firstName": "Jane", "lastName": "Smith"})

	got, err := repo.FindByFirstName(context.Background(), "Jane")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 match, got %d", len(got))
	}

	got, _ = repo.FindByFirstName(context.Background(), "jane")
	if len(got) != 0 {
		t.Errorf("lookup must be case-sensitive, got %d matches", len(got))
	}
}

func TestInMemoryRepository_FindByEncounterID(t *testing.T) {
	repo := NewInMemoryRepository()
	repo.PutRaw("p-1", map[string]any{"encounterId": "888470"})
	repo.PutRaw("p-2", map[string]any{"encounterId": "112233"})

	got, err := repo.FindByEncounterID(context.Background(), "888470")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(got) != 1 || got[0].ID != "p-1" {
		t.Errorf("unexpected result: %+v", got)
	}
}

func TestInMemoryRepository_MarkCheckedIn(t *testing.T) {
	repo := NewInMemoryRepository()
	repo.PutRaw("p-1", map[string]any{"firstName": "Jane"})

	update := CheckInUpdate{
		CheckInTime: time.Now(),
		KioskDataID: "kd-1",
		Phone:       "5551234567",
		Email:       "jane@example.com",
	}
	if err := repo.MarkCheckedIn(context.Background(), "p-1", update); err != nil {
		t.Fatalf("mark: %v", err)
	}

	record, _ := repo.GetByID(context.Background(), "p-1")
	if record.CheckInStatus != StatusCheckedIn {
		t.Errorf("status not updated: %q", record.CheckInStatus)
	}
	if record.Phone != "5551234567" || record.Email != "jane@example.com" {
		t.Errorf("contact not updated: %q %q", record.Phone, record.Email)
	}
	if record.Eligible() {
		t.Error("checked-in record still eligible")
	}
}

func TestInMemoryRepository_MarkCheckedIn_Missing(t *testing.T) {
	repo := NewInMemoryRepository()
	err := repo.MarkCheckedIn(context.Background(), "ghost", CheckInUpdate{CheckInTime: time.Now()})
	if !errors.Is(err, ErrPatientNotFound) {
		t.Fatalf("expected ErrPatientNotFound, got %v", err)
	}
}

func TestInMemoryRepository_GetByID_Missing(t *testing.T) {
	repo := NewInMemoryRepository()
	if _, err := repo.GetByID(context.Background(), "ghost"); !errors.Is(err, ErrPatientNotFound) {
		t.Fatalf("expected ErrPatientNotFound, got %v", err)
	}
}
