package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/totalfootcare/checkin-kiosk/internal/capture"
	"github.com/totalfootcare/checkin-kiosk/internal/checkin"
	"github.com/totalfootcare/checkin-kiosk/internal/formstate"
	"github.com/totalfootcare/checkin-kiosk/internal/http/middleware"
	"github.com/totalfootcare/checkin-kiosk/internal/observability/metrics"
	"github.com/totalfootcare/checkin-kiosk/internal/session"
	"github.com/totalfootcare/checkin-kiosk/internal/verification"
	"github.com/totalfootcare/checkin-kiosk/internal/wizard"
	"github.com/totalfootcare/checkin-kiosk/pkg/logging"
)

// KioskConfig wires the kiosk handler's collaborators.
type KioskConfig struct {
	Sessions       *session.Manager
	Gate           *verification.Gate
	Navigator      *wizard.Navigator
	Adapter        capture.Adapter
	Checkin        *checkin.Service
	Metrics        *metrics.KioskMetrics
	Logger         *logging.Logger
	MaxUploadBytes int64
}

// KioskHandler serves the patient-facing check-in flow.
type KioskHandler struct {
	sessions       *session.Manager
	gate           *verification.Gate
	nav            *wizard.Navigator
	adapter        capture.Adapter
	checkin        *checkin.Service
	metrics        *metrics.KioskMetrics
	logger         *logging.Logger
	maxUploadBytes int64
}

func NewKioskHandler(cfg KioskConfig) *KioskHandler {
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	return &KioskHandler{
		sessions:       cfg.Sessions,
		gate:           cfg.Gate,
		nav:            cfg.Navigator,
		adapter:        cfg.Adapter,
		checkin:        cfg.Checkin,
		metrics:        cfg.Metrics,
		logger:         cfg.Logger,
		maxUploadBytes: cfg.MaxUploadBytes,
	}
}

func (h *KioskHandler) sessionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	sid, ok := middleware.SessionIDFromContext(r.Context())
	if !ok || sid == "" {
		writeError(w, http.StatusInternalServerError, "session not established")
		return "", false
	}
	return sid, true
}

type verifyRequest struct {
	EncounterID string `json:"encounterId"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	DateOfBirth string `json:"dateOfBirth"`
}

type patientSummary struct {
	ID              string `json:"id"`
	FullName        string `json:"fullName"`
	AppointmentDate string `json:"appointmentDate"`
	Provider        string `json:"provider,omitempty"`
	Facility        string `json:"facility,omitempty"`
}

// Verify matches the patient against today's appointments and opens the
// wizard on success.
// Route: POST /kiosk/verify
func (h *KioskHandler) Verify(w http.ResponseWriter, r *http.Request) {
	sid, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	start := time.Now()
	record, err := h.gate.Verify(r.Context(), verification.Credential{
		EncounterID: req.EncounterID,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		DateOfBirth: req.DateOfBirth,
	})
	elapsed := time.Since(start).Seconds()

	switch {
	case errors.Is(err, verification.ErrMissingCredential):
		h.metrics.ObserveVerification("bad_request", elapsed)
		writeError(w, http.StatusBadRequest, "Enter an encounter ID or your name and date of birth")
		return
	case errors.Is(err, verification.ErrNotFound):
		h.metrics.ObserveVerification("not_found", elapsed)
		writeError(w, http.StatusNotFound, "No appointment found for today. Please see the front desk.")
		return
	case errors.Is(err, verification.ErrAlreadyCheckedIn):
		h.metrics.ObserveVerification("already_checked_in", elapsed)
		writeError(w, http.StatusConflict, "You are already checked in. Please see the front desk.")
		return
	case err != nil:
		h.metrics.ObserveVerification("backend_error", elapsed)
		h.logger.Error("verification backend failure", "session_id", sid, "error", err)
		writeError(w, http.StatusBadGateway, "We could not reach the scheduling system. Please try again.")
		return
	}

	encounterID := record.EncounterID
	if req.EncounterID != "" {
		encounterID = req.EncounterID
	}
	if _, err := h.sessions.Establish(r.Context(), sid, record, encounterID); err != nil {
		h.metrics.ObserveVerification("session_error", elapsed)
		h.logger.Error("establish session failed", "session_id", sid, "error", err)
		writeError(w, http.StatusBadGateway, "We could not start your check-in. Please try again.")
		return
	}
	form := h.sessions.Form(r.Context(), sid)
	if err := verification.Seed(form, record, encounterID); err != nil {
		h.logger.Warn("seed form failed", "session_id", sid, "error", err)
	}

	h.metrics.ObserveVerification("matched", elapsed)
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"patient": patientSummary{
			ID:              record.ID,
			FullName:        record.FullName,
			AppointmentDate: record.AppointmentDate,
			Provider:        record.ProviderName,
			Facility:        record.FacilityName,
		},
		"nextStep": h.nav.Machine().First().Path,
	})
}

type stepView struct {
	ID    string `json:"id"`
	Path  string `json:"path"`
	Title string `json:"title"`
	Index int    `json:"index"`
}

// Steps returns the wizard sequence and the session's gate status.
// Route: GET /kiosk/steps
func (h *KioskHandler) Steps(w http.ResponseWriter, r *http.Request) {
	sid, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	steps := h.nav.Machine().Steps()
	views := make([]stepView, len(steps))
	for i, step := range steps {
		views[i] = stepView{ID: string(step.ID), Path: step.Path, Title: step.Title, Index: i}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "success",
		"steps":    views,
		"verified": h.sessions.Verified(r.Context(), sid),
	})
}

// State returns the whole form aggregate.
// Route: GET /kiosk/state
func (h *KioskHandler) State(w http.ResponseWriter, r *http.Request) {
	sid, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"state":  h.sessions.Form(r.Context(), sid).Snapshot(),
	})
}

// StateSection returns one section's record.
// Route: GET /kiosk/state/{section}
func (h *KioskHandler) StateSection(w http.ResponseWriter, r *http.Request) {
	sid, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	section, err := formstate.ParseSection(chi.URLParam(r, "section"))
	if err != nil {
		writeError(w, http.StatusNotFound, "unknown section")
		return
	}
	record, err := h.sessions.Form(r.Context(), sid).Read(section)
	if err != nil {
		writeError(w, http.StatusNotFound, "unknown section")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"section": section,
		"record":  record,
	})
}

// Advance saves the step's payload and moves forward.
// Route: POST /kiosk/steps/{step}/advance
func (h *KioskHandler) Advance(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "advance")
}

// Back moves to the previous step without saving.
// Route: POST /kiosk/steps/{step}/back
func (h *KioskHandler) Back(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "back")
}

func (h *KioskHandler) transition(w http.ResponseWriter, r *http.Request, direction string) {
	sid, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	stepID := wizard.StepID(chi.URLParam(r, "step"))

	var (
		tr  *wizard.Transition
		err error
	)
	if direction == "advance" {
		body, readErr := io.ReadAll(r.Body)
		if readErr != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		var payload json.RawMessage
		if len(body) > 0 && string(body) != "null" {
			payload = body
		}
		tr, err = h.nav.Advance(r.Context(), sid, stepID, payload)
	} else {
		tr, err = h.nav.Retreat(r.Context(), sid, stepID)
	}

	switch {
	case errors.Is(err, wizard.ErrUnknownStep):
		writeError(w, http.StatusNotFound, "unknown step")
		return
	case errors.Is(err, wizard.ErrNotVerified):
		writeRedirect(w, http.StatusForbidden, "Please verify your appointment first", tr.ToPath)
		return
	case errors.Is(err, wizard.ErrValidation):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	case err != nil:
		h.logger.Error("transition failed", "session_id", sid, "step", stepID, "error", err)
		writeError(w, http.StatusInternalServerError, "could not save this step")
		return
	}

	h.metrics.ObserveTransition(string(stepID), direction)
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "success",
		"transition": tr,
	})
}

type captureRequest struct {
	Kind    string `json:"kind"`
	DataURL string `json:"dataUrl"`
	Facing  string `json:"facing"`
}

// document is one parsed upload request. A JSON body with no data URL asks
// the adapter to use its own camera instead.
type document struct {
	kind   string
	upload capture.Upload
	live   bool
	facing string
}

// Documents accepts a patient document as a multipart upload (kind + file)
// or a JSON body carrying a camera frame as a data URL. A JSON body with no
// frame requests a live capture, which only camera-equipped adapters
// support. The image is validated, run through the capture adapter, and
// written into the section the kind implies.
// Route: POST /kiosk/documents
func (h *KioskHandler) Documents(w http.ResponseWriter, r *http.Request) {
	sid, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	if !h.sessions.Verified(r.Context(), sid) {
		writeRedirect(w, http.StatusForbidden, "Please verify your appointment first", wizard.VerifyPath)
		return
	}

	doc, err := h.readDocument(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	kind, err := capture.ParseKind(doc.kind)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown document kind")
		return
	}

	var value capture.ImageValue
	if doc.live {
		lc, ok := h.adapter.(capture.LiveCapturer)
		if !ok {
			writeError(w, http.StatusUnprocessableEntity, capture.ErrLiveCapture.Error())
			return
		}
		value, err = lc.Capture(r.Context(), kind, doc.facing)
		if err != nil {
			h.logger.Error("live capture failed", "session_id", sid, "kind", kind, "error", err)
			writeError(w, http.StatusBadGateway, "We could not capture your document. Please try again.")
			return
		}
	} else {
		if err := capture.Validate(doc.upload, h.maxUploadBytes); err != nil {
			reason := "invalid"
			switch {
			case errors.Is(err, capture.ErrTooLarge):
				reason = "too_large"
			case errors.Is(err, capture.ErrUnsupportedType):
				reason = "unsupported_type"
			}
			h.metrics.ObserveUploadRejected(reason)
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}

		value, err = h.adapter.Upload(r.Context(), doc.upload)
		if err != nil {
			h.logger.Error("document upload failed", "session_id", sid, "kind", kind, "error", err)
			writeError(w, http.StatusBadGateway, "We could not store your document. Please try again.")
			return
		}
	}

	side, err := h.sessions.InsuranceSide(r.Context(), sid)
	if err != nil {
		h.logger.Warn("insurance side lookup failed", "session_id", sid, "error", err)
		side = session.InsurancePrimary
	}
	form := h.sessions.Form(r.Context(), sid)
	if err := capture.Assign(form, kind, side == session.InsuranceSecondary, value); err != nil {
		writeError(w, http.StatusInternalServerError, "could not save your document")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"kind":   kind,
		"value":  value,
	})
}

func (h *KioskHandler) readDocument(w http.ResponseWriter, r *http.Request) (document, error) {
	limit := h.maxUploadBytes
	if limit <= 0 {
		limit = 10 << 20
	}

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "application/json") {
		// base64 runs about a third larger than the raw image bytes.
		body := http.MaxBytesReader(w, r.Body, limit+limit/2+4096)
		var req captureRequest
		if err := json.NewDecoder(body).Decode(&req); err != nil {
			return document{}, errors.New("invalid request body")
		}
		if req.DataURL == "" {
			return document{kind: req.Kind, live: true, facing: req.Facing}, nil
		}
		upload, err := capture.ParseDataURL(req.DataURL)
		if err != nil {
			return document{}, errors.New("invalid data url")
		}
		return document{kind: req.Kind, upload: upload}, nil
	}

	if err := r.ParseMultipartForm(limit + 1024); err != nil {
		return document{}, errors.New("invalid multipart body")
	}
	kind := r.FormValue("kind")
	file, header, err := r.FormFile("file")
	if err != nil {
		return document{}, errors.New("missing file")
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return document{}, errors.New("could not read file")
	}
	return document{
		kind: kind,
		upload: capture.Upload{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		},
	}, nil
}

type insuranceTypeRequest struct {
	InsuranceType string `json:"insuranceType"`
}

// InsuranceType records which insurance section the next card capture
// belongs to.
// Route: PUT /kiosk/insurance-type
func (h *KioskHandler) InsuranceType(w http.ResponseWriter, r *http.Request) {
	sid, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	var req insuranceTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	side := session.InsuranceSide(req.InsuranceType)
	if side != session.InsurancePrimary && side != session.InsuranceSecondary {
		writeError(w, http.StatusBadRequest, "insuranceType must be primary or secondary")
		return
	}
	if err := h.sessions.SetInsuranceSide(r.Context(), sid, side); err != nil {
		h.logger.Error("set insurance side failed", "session_id", sid, "error", err)
		writeError(w, http.StatusBadGateway, "could not save insurance selection")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "insuranceType": side})
}

// SubmitCheckIn runs the final submission.
// Route: POST /kiosk/submit
func (h *KioskHandler) SubmitCheckIn(w http.ResponseWriter, r *http.Request) {
	sid, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	confirmation, err := h.checkin.Submit(r.Context(), sid)

	var submitErr *checkin.SubmitError
	switch {
	case errors.Is(err, checkin.ErrNotVerified):
		h.metrics.ObserveSubmission("not_verified")
		writeRedirect(w, http.StatusForbidden, "Please verify your appointment first", wizard.VerifyPath)
		return
	case errors.Is(err, checkin.ErrInFlight):
		h.metrics.ObserveSubmission("in_flight")
		writeError(w, http.StatusConflict, "Your check-in is still being processed")
		return
	case errors.As(err, &submitErr):
		h.metrics.ObserveSubmission("rejected")
		message := submitErr.Message
		if message == "" {
			message = "Failed to submit check-in data"
		}
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"status":  "error",
			"message": message,
			"details": submitErr.Details,
		})
		return
	case err != nil:
		h.metrics.ObserveSubmission("error")
		writeError(w, http.StatusBadGateway, "Network or server error, please try again")
		return
	}

	h.metrics.ObserveSubmission("success")
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "success",
		"message":     confirmation.Message,
		"encounterId": confirmation.EncounterID,
	})
}

// Abandon clears the session on explicit walk-away.
// Route: POST /kiosk/abandon
func (h *KioskHandler) Abandon(w http.ResponseWriter, r *http.Request) {
	sid, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	if err := h.sessions.Clear(r.Context(), sid); err != nil {
		h.logger.Error("abandon failed", "session_id", sid, "error", err)
		writeError(w, http.StatusBadGateway, "could not clear the session")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success"})
}

// Health reports process liveness.
// Route: GET /health
func (h *KioskHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
