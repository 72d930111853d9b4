package handlers

import (
	"net/http"
	"sort"
	"time"

	"github.com/totalfootcare/checkin-kiosk/internal/patients"
	"github.com/totalfootcare/checkin-kiosk/internal/verification"
	"github.com/totalfootcare/checkin-kiosk/pkg/logging"
)

// AdminAppointmentsConfig wires the roster handler.
type AdminAppointmentsConfig struct {
	Patients patients.Repository
	Logger   *logging.Logger
	Now      func() time.Time
}

// AdminAppointmentsHandler serves the front desk's view of the day.
type AdminAppointmentsHandler struct {
	patients patients.Repository
	logger   *logging.Logger
	now      func() time.Time
}

func NewAdminAppointmentsHandler(cfg AdminAppointmentsConfig) *AdminAppointmentsHandler {
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &AdminAppointmentsHandler{
		patients: cfg.Patients,
		logger:   cfg.Logger,
		now:      cfg.Now,
	}
}

type rosterEntry struct {
	ID              string `json:"id"`
	EncounterID     string `json:"encounterId,omitempty"`
	FullName        string `json:"fullName"`
	AppointmentDate string `json:"appointmentDate"`
	Provider        string `json:"provider,omitempty"`
	Facility        string `json:"facility,omitempty"`
	CheckInStatus   string `json:"checkInStatus"`
}

// List returns the appointment roster for a day, default today.
// Route: GET /admin/appointments?date=YYYY-MM-DD
func (h *AdminAppointmentsHandler) List(w http.ResponseWriter, r *http.Request) {
	day := h.now()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, day.Location())
		if err != nil {
			writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		day = parsed
	}

	records, err := h.patients.ScanAll(r.Context())
	if err != nil {
		h.logger.Error("roster scan failed", "error", err)
		writeError(w, http.StatusBadGateway, "could not load appointments")
		return
	}

	entries := make([]rosterEntry, 0, len(records))
	for _, record := range records {
		if !verification.SameDay(record.AppointmentDate, day) {
			continue
		}
		entries = append(entries, rosterEntry{
			ID:              record.ID,
			EncounterID:     record.EncounterID,
			FullName:        record.FullName,
			AppointmentDate: record.AppointmentDate,
			Provider:        record.ProviderName,
			Facility:        record.FacilityName,
			CheckInStatus:   string(record.CheckInStatus),
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].FullName < entries[j].FullName })

	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "success",
		"date":         day.Format("2006-01-02"),
		"appointments": entries,
	})
}
