// Package patients provides access to the clinic's patient document store.
package patients

import (
	"strings"
	"time"
)

// CheckInStatus is the patient's check-in lifecycle state for today's
// appointment.
type CheckInStatus string

const (
	StatusNotCheckedIn CheckInStatus = "not-checked-in"
	StatusCheckedIn    CheckInStatus = "checked-in"
)

// Address is the mailing address block on a patient record.
type Address struct {
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	ZipCode string `json:"zipCode,omitempty"`
}

// InsuranceInfo is the insurance block on a patient record.
type InsuranceInfo struct {
	Provider     string `json:"provider,omitempty"`
	PolicyNumber string `json:"policyNumber,omitempty"`
}

// Record is a patient appointment record with canonical field names. Raw
// preserves the stored document as-is so callers needing an un-normalized
// field can still reach it.
type Record struct {
	ID              string        `json:"id"`
	EncounterID     string        `json:"encounterId,omitempty"`
	FirstName       string        `json:"firstName,omitempty"`
	LastName        string        `json:"lastName,omitempty"`
	FullName        string        `json:"fullName,omitempty"`
	DateOfBirth     string        `json:"dateOfBirth,omitempty"`
	AppointmentDate string        `json:"appointmentDate,omitempty"`
	ProviderName    string        `json:"appointmentProviderName,omitempty"`
	FacilityName    string        `json:"facilityName,omitempty"`
	CheckInStatus   CheckInStatus `json:"checkInStatus,omitempty"`
	Phone           string        `json:"phone,omitempty"`
	Email           string        `json:"email,omitempty"`
	Address         Address       `json:"address,omitempty"`
	Insurance       InsuranceInfo `json:"insurance,omitempty"`

	Raw map[string]any `json:"-"`
}

// Historical field-name aliases seen across record revisions, checked in
// fixed fallback order. The first populated alias wins.
var fieldAliases = map[string][]string{
	"firstName":       {"firstName", "patientFirstName", "patient_first_name"},
	"lastName":        {"lastName", "patientLastName", "patient_last_name"},
	"fullName":        {"fullName", "patientName", "patient_name"},
	"dateOfBirth":     {"dateOfBirth", "patientDOB", "patient_dob", "dob"},
	"appointmentDate": {"appointmentDate", "appointment_date"},
	"providerName":    {"appointmentProviderName", "providerName", "provider_name"},
	"facilityName":    {"facilityName", "appointmentFacilityName", "appointment_facility_name", "facility"},
	"checkInStatus":   {"checkInStatus", "check_in_status"},
	"phone":           {"phone", "phoneNumber", "patientPhone"},
	"email":           {"email", "patientEmail"},
}

func aliasString(raw map[string]any, field string) string {
	for _, alias := range fieldAliases[field] {
		if v, ok := raw[alias]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

// FromRaw normalizes a stored document into a canonical Record. Split
// first/last names are preferred; a full-name-only record is split on the
// first space. An absent check-in status is treated as not yet checked in.
func FromRaw(id string, raw map[string]any) *Record {
	r := &Record{
		ID:              id,
		FirstName:       aliasString(raw, "firstName"),
		LastName:        aliasString(raw, "lastName"),
		FullName:        aliasString(raw, "fullName"),
		DateOfBirth:     aliasString(raw, "dateOfBirth"),
		AppointmentDate: aliasString(raw, "appointmentDate"),
		ProviderName:    aliasString(raw, "providerName"),
		FacilityName:    aliasString(raw, "facilityName"),
		Phone:           aliasString(raw, "phone"),
		Email:           aliasString(raw, "email"),
		Raw:             raw,
	}

	if v, ok := raw["encounterId"].(string); ok {
		r.EncounterID = v
	}

	if r.FullName == "" && r.FirstName != "" {
		r.FullName = strings.TrimSpace(r.FirstName + " " + r.LastName)
	}
	if r.FirstName == "" && r.FullName != "" {
		first, last, _ := strings.Cut(r.FullName, " ")
		r.FirstName = first
		r.LastName = last
	}

	if status := aliasString(raw, "checkInStatus"); status != "" {
		r.CheckInStatus = CheckInStatus(status)
	} else {
		r.CheckInStatus = StatusNotCheckedIn
	}

	if addr, ok := raw["address"].(map[string]any); ok {
		r.Address = Address{
			Street:  str(addr, "street"),
			City:    str(addr, "city"),
			State:   str(addr, "state"),
			ZipCode: str(addr, "zipCode"),
		}
	}
	if ins, ok := raw["insurance"].(map[string]any); ok {
		r.Insurance = InsuranceInfo{
			Provider:     str(ins, "provider"),
			PolicyNumber: str(ins, "policyNumber"),
		}
	}

	return r
}

func str(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

// Eligible reports whether the record can still check in today.
func (r *Record) Eligible() bool {
	return r.CheckInStatus == StatusNotCheckedIn
}

// CheckInUpdate is the mutation applied when a patient completes the kiosk
// flow.
type CheckInUpdate struct {
	CheckInTime time.Time
	KioskDataID string
	Phone       string
	Email       string
}
