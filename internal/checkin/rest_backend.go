package checkin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/totalfootcare/checkin-kiosk/pkg/logging"
)

const defaultHTTPTimeout = 15 * time.Second

// RESTBackend submits check-ins to the clinic's HTTP API.
type RESTBackend struct {
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
}

// NewRESTBackend creates the HTTP backend. baseURL is the API root without a
// trailing slash.
func NewRESTBackend(baseURL string, logger *logging.Logger) *RESTBackend {
	if baseURL == "" {
		panic("checkin: empty backend base url")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &RESTBackend{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		logger:     logger,
	}
}

// submitResponse is the backend's envelope.
type submitResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Details map[string]string `json:"details"`
}

// Submit delivers the document with a PATCH against the appointment. A
// backend-provided failure message is surfaced verbatim so the patient sees
// what the front desk would.
func (b *RESTBackend) Submit(ctx context.Context, encounterID string, payload Payload) (*Confirmation, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("checkin: marshal payload: %w", err)
	}

	url := fmt.Sprintf("%s/kiosk/submit/%s", b.baseURL, encounterID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("checkin: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("checkin: submit request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("checkin: read response: %w", err)
	}

	var envelope submitResponse
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil, fmt.Errorf("checkin: decode response: %w", err)
		}
		return nil, &SubmitError{StatusCode: resp.StatusCode}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 && envelope.Success {
		message := envelope.Message
		if message == "" {
			message = "Check-in completed successfully"
		}
		return &Confirmation{EncounterID: encounterID, Message: message}, nil
	}

	b.logger.Warn("backend rejected check-in",
		"encounter_id", encounterID,
		"status", resp.StatusCode,
		"message", envelope.Message,
	)
	return nil, &SubmitError{
		StatusCode: resp.StatusCode,
		Message:    envelope.Message,
		Details:    envelope.Details,
	}
}
