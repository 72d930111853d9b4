package patients

import "testing"

func TestFromRaw_CanonicalFields(t *testing.T) {
	raw := map[string]any{
		"id":              "p-1",
		"encounterId":     "888470",
		"firstName":       "Jane",
		"lastName":        "Smith",
		"dateOfBirth":     "1985-06-15",
		"appointmentDate": "6/15/2025",
		"facilityName":    "Your Total Foot Care Specialist",
		"checkInStatus":   "not-checked-in",
		"phone":           "5551234567",
		"address": map[string]any{
			"street":  "1 Main St",
			"city":    "Houston",
			"state":   "TX",
			"zipCode": "77001",
		},
		"insurance": map[string]any{
			"provider":     "Acme Health",
			"policyNumber": "AH-123",
		},
	}

	r := FromRaw("p-1", raw)

	if r.FirstName != "Jane" || r.LastName != "Smith" {
		t.Errorf("name mismatch: %q %q", r.FirstName, r.LastName)
	}
	if r.FullName != "Jane Smith" {
		t.Errorf("full name not derived: %q", r.FullName)
	}
	if r.EncounterID != "888470" {
		t.Errorf("encounter ID: %q", r.EncounterID)
	}
	if r.Address.City != "Houston" || r.Insurance.Provider != "Acme Health" {
		t.Errorf("nested blocks not normalized: %+v %+v", r.Address, r.Insurance)
	}
	if !r.Eligible() {
		t.Error("not-checked-in record must be eligible")
	}
}

func TestFromRaw_HistoricalAliases(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
	}{
		{"patientDOB", map[string]any{"patientName": "Jane Smith", "patientDOB": "1985-06-15", "appointmentFacilityName": "Clinic"}},
		{"patient_dob", map[string]any{"patient_name": "Jane Smith", "patient_dob": "1985-06-15", "appointment_facility_name": "Clinic"}},
		{"dob", map[string]any{"fullName": "Jane Smith", "dob": "1985-06-15", "facility": "Clinic"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := FromRaw("p-1", tt.raw)
			if r.DateOfBirth != "1985-06-15" {
				t.Errorf("DOB alias %s not resolved: %q", tt.name, r.DateOfBirth)
			}
			if r.FirstName != "Jane" || r.LastName != "Smith" {
				t.Errorf("full name not split: %q %q", r.FirstName, r.LastName)
			}
			if r.FacilityName != "Clinic" {
				t.Errorf("facility alias not resolved: %q", r.FacilityName)
			}
		})
	}
}

func TestFromRaw_AliasFallbackOrder(t *testing.T) {
	// When both the canonical and a legacy alias are present, canonical wins.
	r := FromRaw("p-1", map[string]any{
		"dateOfBirth": "1990-01-01",
		"patientDOB":  "1985-06-15",
	})
	if r.DateOfBirth != "1990-01-01" {
		t.Errorf("expected canonical field to win, got %q", r.DateOfBirth)
	}
}

func TestFromRaw_MissingStatusDefaultsToNotCheckedIn(t *testing.T) {
	r := FromRaw("p-1", map[string]any{"firstName": "Jane"})
	if r.CheckInStatus != StatusNotCheckedIn {
		t.Errorf("expected default status, got %q", r.CheckInStatus)
	}
}

func TestEligible(t *testing.T) {
	r := &Record{CheckInStatus: StatusCheckedIn}
	if r.Eligible() {
		t.Error("checked-in record must not be eligible")
	}
}
