package checkin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/totalfootcare/checkin-kiosk/internal/formstate"
)

func TestRESTBackendSubmit(t *testing.T) {
	var gotMethod, gotPath string
	var gotPayload Payload

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{"success": true, "message": "Welcome back"})
	}))
	defer server.Close()

	backend := NewRESTBackend(server.URL, nil)
	state := formstate.FormState{UserInfo: formstate.UserInfo{FullName: "Jane Doe"}}
	payload := BuildPayload(state, "clinic", time.Now())

	conf, err := backend.Submit(context.Background(), "enc-7", payload)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if gotMethod != http.MethodPatch {
		t.Fatalf("method = %q, want PATCH", gotMethod)
	}
	if gotPath != "/kiosk/submit/enc-7" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotPayload.PersonalInfo.FullName != "Jane Doe" {
		t.Fatalf("payload = %+v", gotPayload.PersonalInfo)
	}
	if conf.Message != "Welcome back" {
		t.Fatalf("confirmation = %+v", conf)
	}
}

func TestRESTBackendSurfacesBackendMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"message": "Appointment already checked in",
			"details": map[string]string{"encounterId": "already used"},
		})
	}))
	defer server.Close()

	backend := NewRESTBackend(server.URL, nil)
	_, err := backend.Submit(context.Background(), "enc-7", Payload{})

	var submitErr *SubmitError
	if !errors.As(err, &submitErr) {
		t.Fatalf("err = %v, want SubmitError", err)
	}
	if submitErr.Message != "Appointment already checked in" {
		t.Fatalf("message = %q", submitErr.Message)
	}
	if submitErr.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", submitErr.StatusCode)
	}
	if submitErr.Details["encounterId"] != "already used" {
		t.Fatalf("details = %+v", submitErr.Details)
	}
}

func TestRESTBackendSuccessFalseIsRejection(t *testing.T) {
	// Some backend routes report failure with a 200 envelope.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "Validation failed"})
	}))
	defer server.Close()

	backend := NewRESTBackend(server.URL, nil)
	_, err := backend.Submit(context.Background(), "enc-7", Payload{})

	var submitErr *SubmitError
	if !errors.As(err, &submitErr) {
		t.Fatalf("err = %v, want SubmitError", err)
	}
	if submitErr.Message != "Validation failed" {
		t.Fatalf("message = %q", submitErr.Message)
	}
}

func TestRESTBackendNetworkError(t *testing.T) {
	backend := NewRESTBackend("http://127.0.0.1:1", nil)
	_, err := backend.Submit(context.Background(), "enc-7", Payload{})
	if err == nil {
		t.Fatal("expected network error")
	}
	var submitErr *SubmitError
	if errors.As(err, &submitErr) {
		t.Fatal("network failure should not masquerade as a backend rejection")
	}
}
