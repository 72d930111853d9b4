package checkin

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/totalfootcare/checkin-kiosk/internal/formstate"
	"github.com/totalfootcare/checkin-kiosk/internal/patients"
	"github.com/totalfootcare/checkin-kiosk/internal/session"
)

type stubBackend struct {
	mu       sync.Mutex
	calls    int
	lastEnc  string
	lastPay  Payload
	err      error
	blocking chan struct{}
}

func (b *stubBackend) Submit(_ context.Context, encounterID string, payload Payload) (*Confirmation, error) {
	b.mu.Lock()
	b.calls++
	b.lastEnc = encounterID
	b.lastPay = payload
	block := b.blocking
	b.mu.Unlock()

	if block != nil {
		<-block
	}
	if b.err != nil {
		return nil, b.err
	}
	return &Confirmation{EncounterID: encounterID, Message: "Check-in completed successfully"}, nil
}

func newTestService(t *testing.T, backend Backend) (*Service, *session.Manager, *formstate.MemoryPersister) {
	t.Helper()
	persister := formstate.NewMemoryPersister()
	sessions := session.NewManager(session.NewMemoryStore(), persister, time.Minute, nil)
	return NewService(sessions, backend, "Your Total Foot Care Specialist", nil), sessions, persister
}

func establish(t *testing.T, sessions *session.Manager, sessionID string) {
	t.Helper()
	record := &patients.Record{ID: "p-1", Raw: map[string]any{"id": "p-1"}}
	if _, err := sessions.Establish(context.Background(), sessionID, record, "enc-7"); err != nil {
		t.Fatalf("establish: %v", err)
	}
}

func TestSubmitRequiresVerification(t *testing.T) {
	svc, _, _ := newTestService(t, &stubBackend{})

	_, err := svc.Submit(context.Background(), "s1")
	if !errors.Is(err, ErrNotVerified) {
		t.Fatalf("err = %v, want ErrNotVerified", err)
	}
}

func TestSubmitClearsStateOnSuccess(t *testing.T) {
	backend := &stubBackend{}
	svc, sessions, persister := newTestService(t, backend)
	ctx := context.Background()
	establish(t, sessions, "s1")

	form := sessions.Form(ctx, "s1")
	if err := form.UpdateSection(formstate.SectionShoeSize, formstate.ShoeSize{ShoeSize: "10"}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if !persister.Has("s1") {
		t.Fatal("expected persisted state before submit")
	}

	conf, err := svc.Submit(ctx, "s1")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if conf.EncounterID != "enc-7" {
		t.Fatalf("confirmation = %+v", conf)
	}
	if backend.lastEnc != "enc-7" {
		t.Fatalf("backend got encounter %q", backend.lastEnc)
	}
	if backend.lastPay.MedicalInfo.ShoeSize != "10" {
		t.Fatalf("payload missing form data: %+v", backend.lastPay.MedicalInfo)
	}

	// The form is gone, in memory and in storage.
	snap := form.Snapshot()
	if !snap.IsEmpty() {
		t.Fatal("form state survived submission")
	}
	if persister.Has("s1") {
		t.Fatal("persisted state survived submission")
	}
}

func TestSubmitFailurePreservesState(t *testing.T) {
	backend := &stubBackend{err: &SubmitError{StatusCode: 422, Message: "Missing insurance"}}
	svc, sessions, persister := newTestService(t, backend)
	ctx := context.Background()
	establish(t, sessions, "s1")

	form := sessions.Form(ctx, "s1")
	if err := form.UpdateSection(formstate.SectionShoeSize, formstate.ShoeSize{ShoeSize: "10"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	_, err := svc.Submit(ctx, "s1")
	var submitErr *SubmitError
	if !errors.As(err, &submitErr) {
		t.Fatalf("err = %v, want SubmitError", err)
	}
	if submitErr.Message != "Missing insurance" {
		t.Fatalf("backend message lost: %q", submitErr.Message)
	}

	// Everything stays for a retry.
	rec, _ := form.Read(formstate.SectionShoeSize)
	if rec.(formstate.ShoeSize).ShoeSize != "10" {
		t.Fatal("form state cleared on failure")
	}
	if !persister.Has("s1") {
		t.Fatal("persisted state cleared on failure")
	}
	if !sessions.Verified(ctx, "s1") {
		t.Fatal("verification cleared on failure")
	}
}

func TestSubmitInFlightGuard(t *testing.T) {
	backend := &stubBackend{blocking: make(chan struct{})}
	svc, sessions, _ := newTestService(t, backend)
	ctx := context.Background()
	establish(t, sessions, "s1")

	done := make(chan error, 1)
	go func() {
		_, err := svc.Submit(ctx, "s1")
		done <- err
	}()

	// Wait for the first submit to reach the backend.
	deadline := time.Now().Add(2 * time.Second)
	for {
		backend.mu.Lock()
		calls := backend.calls
		backend.mu.Unlock()
		if calls == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("first submit never reached the backend")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if _, err := svc.Submit(ctx, "s1"); !errors.Is(err, ErrInFlight) {
		t.Fatalf("second submit err = %v, want ErrInFlight", err)
	}

	close(backend.blocking)
	if err := <-done; err != nil {
		t.Fatalf("first submit: %v", err)
	}

	// With the first finished, a retry is allowed again.
	if _, err := svc.Submit(ctx, "s1"); errors.Is(err, ErrInFlight) {
		t.Fatal("guard stuck after completion")
	}
}
