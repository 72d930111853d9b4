// Package formstate holds the session-persisted check-in form aggregate.
//
// The aggregate is a closed set of named sections. Each section is replaced
// wholesale by the wizard step that owns it; partial updates are the caller's
// responsibility. The aggregate serializes to a single JSON document in the
// session store.
package formstate

import "fmt"

// Section names a form section. The set of sections is fixed at build time;
// unknown sections are never created.
type Section string

const (
	SectionUserInfo         Section = "userInfo"
	SectionDemographics     Section = "demographicsInfo"
	SectionPrimaryInsurance Section = "primaryInsurance"
	SectionSecondaryIns     Section = "secondaryInsurance"
	SectionAllergies        Section = "allergies"
	SectionMedications      Section = "medications"
	SectionMedicalHistory   Section = "medicalHistory"
	SectionSurgicalHistory  Section = "surgicalHistory"
	SectionFamilyHistory    Section = "familyHistory"
	SectionSocialHistory    Section = "socialHistory"
	SectionShoeSize         Section = "shoeSize"
	SectionHippaPolicy      Section = "hippaPolicy"
	SectionPracticePolicies Section = "practicePolicies"
	SectionSurvey           Section = "survey"
)

// Sections lists every section in wizard order.
var Sections = []Section{
	SectionUserInfo,
	SectionDemographics,
	SectionPrimaryInsurance,
	SectionSecondaryIns,
	SectionAllergies,
	SectionMedications,
	SectionMedicalHistory,
	SectionSurgicalHistory,
	SectionFamilyHistory,
	SectionSocialHistory,
	SectionShoeSize,
	SectionHippaPolicy,
	SectionPracticePolicies,
	SectionSurvey,
}

// ParseSection validates a section name from an external caller.
func ParseSection(name string) (Section, error) {
	for _, s := range Sections {
		if string(s) == name {
			return s, nil
		}
	}
	return "", fmt.Errorf("formstate: %w: %q", ErrUnknownSection, name)
}

// UserInfo is collected on the general check-in step.
type UserInfo struct {
	FullName    string `json:"fullName,omitempty"`
	Day         string `json:"day,omitempty"`
	Month       string `json:"month,omitempty"`
	Year        string `json:"year,omitempty"`
	Location    string `json:"location,omitempty"`
	EncounterID string `json:"encounterId,omitempty"`
}

// Demographics holds contact details plus the captured portrait and license
// images (data URLs or remote URLs, stored opaquely).
type Demographics struct {
	Address         string `json:"address,omitempty"`
	Address2        string `json:"address2,omitempty"`
	City            string `json:"city,omitempty"`
	State           string `json:"state,omitempty"`
	Zipcode         string `json:"zipcode,omitempty"`
	Phone           string `json:"phone,omitempty"`
	Email           string `json:"email,omitempty"`
	PatientsPicture string `json:"patientsPicture,omitempty"`
	DriversLicense  string `json:"driversLicense,omitempty"`
}

// Insurance covers both the primary and secondary policy sections.
type Insurance struct {
	ActiveDate         string `json:"activeDate,omitempty"`
	Copay              string `json:"copay,omitempty"`
	CopayForSpecialist string `json:"copayForSpecialist,omitempty"`
	InsuranceName      string `json:"insuranceName,omitempty"`
	MemberID           string `json:"memberId,omitempty"`
	GroupName          string `json:"groupName,omitempty"`
	GroupNumber        string `json:"groupNumber,omitempty"`
	PhoneNumber        string `json:"phoneNumber,omitempty"`
	InsuranceCardFront string `json:"insuranceCardFront,omitempty"`
	InsuranceCardBack  string `json:"insuranceCardBack,omitempty"`
}

// Empty reports whether no policy information has been entered.
func (i Insurance) Empty() bool {
	return i == Insurance{}
}

// Allergies is the list of active allergies.
type Allergies struct {
	Active []string `json:"active,omitempty"`
}

// Medications is the list of current medications.
type Medications struct {
	Current []string `json:"current,omitempty"`
}

// MedicalHistory lists past medical conditions.
type MedicalHistory struct {
	Conditions []string `json:"conditions,omitempty"`
}

// SurgicalHistory lists past procedures.
type SurgicalHistory struct {
	Procedures []string `json:"procedures,omitempty"`
}

// FamilyHistory records the parental-diabetes screening answer.
type FamilyHistory struct {
	Diabetes string `json:"diabetes,omitempty"`
}

// SocialHistory records smoker status.
type SocialHistory struct {
	Smoke string `json:"smoke,omitempty"`
}

// ShoeSize records the patient's shoe size.
type ShoeSize struct {
	ShoeSize string `json:"shoeSize,omitempty"`
}

// PolicySignature is a captured e-signature for a policy document.
type PolicySignature struct {
	Signature string `json:"signature,omitempty"`
	SignedAt  string `json:"signedAt,omitempty"`
}

// Survey records the exit-survey answer.
type Survey struct {
	Answer string `json:"answer,omitempty"`
}
