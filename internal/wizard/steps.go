// Package wizard drives the ordered check-in step sequence as an explicit
// finite-state machine.
package wizard

import (
	"fmt"
	"strings"

	"github.com/totalfootcare/checkin-kiosk/internal/formstate"
)

// StepID names a wizard state.
type StepID string

// Step describes one wizard screen: its route, its chrome title, and the
// form section it owns. A step with an empty Title is the signature-capture
// screen, rendered without the standard chrome; the step list carries
// exactly one such step.
type Step struct {
	ID      StepID            `json:"id"`
	Path    string            `json:"path"`
	Title   string            `json:"title"`
	Section formstate.Section `json:"section"`

	// Required validates the record about to be saved for this step; nil
	// means the step has no required fields.
	Required func(record any) error `json:"-"`
}

// DefaultSteps is the kiosk's step sequence in wizard order.
func DefaultSteps() []Step {
	return []Step{
		{
			ID:       "general",
			Path:     "/kiosk/checkIn_General",
			Title:    "General Information",
			Section:  formstate.SectionUserInfo,
			Required: requireUserInfo,
		},
		{
			ID:      "demographics",
			Path:    "/kiosk/demographics_information",
			Title:   "Demographics",
			Section: formstate.SectionDemographics,
		},
		{
			ID:      "demographics-documents",
			Path:    "/kiosk/demographics_documents",
			Title:   "Your Documents",
			Section: formstate.SectionDemographics,
		},
		{
			ID:      "primary-insurance",
			Path:    "/kiosk/insurance_information",
			Title:   "Primary Insurance",
			Section: formstate.SectionPrimaryInsurance,
		},
		{
			ID:      "primary-insurance-cards",
			Path:    "/kiosk/insurance_documents",
			Title:   "Insurance Cards",
			Section: formstate.SectionPrimaryInsurance,
		},
		{
			ID:      "secondary-insurance",
			Path:    "/kiosk/secondary_insurance_information",
			Title:   "Secondary Insurance",
			Section: formstate.SectionSecondaryIns,
		},
		{
			ID:      "secondary-insurance-cards",
			Path:    "/kiosk/secondary_insurance_documents",
			Title:   "Secondary Insurance Cards",
			Section: formstate.SectionSecondaryIns,
		},
		{
			ID:      "allergies",
			Path:    "/kiosk/allergies_add",
			Title:   "Allergies",
			Section: formstate.SectionAllergies,
		},
		{
			ID:      "medications",
			Path:    "/kiosk/medications_add",
			Title:   "Medications",
			Section: formstate.SectionMedications,
		},
		{
			ID:      "medical-history",
			Path:    "/kiosk/medical_history",
			Title:   "Medical History",
			Section: formstate.SectionMedicalHistory,
		},
		{
			ID:      "surgical-history",
			Path:    "/kiosk/surgical_history",
			Title:   "Surgical History",
			Section: formstate.SectionSurgicalHistory,
		},
		{
			ID:      "family-history",
			Path:    "/kiosk/family_history",
			Title:   "Family History",
			Section: formstate.SectionFamilyHistory,
		},
		{
			ID:      "social-history",
			Path:    "/kiosk/social_history",
			Title:   "Social History",
			Section: formstate.SectionSocialHistory,
		},
		{
			ID:      "shoe-size",
			Path:    "/kiosk/shoe_size",
			Title:   "Shoe Size",
			Section: formstate.SectionShoeSize,
		},
		{
			ID:      "hippa-policy",
			Path:    "/kiosk/hippa_policy",
			Title:   "HIPAA Privacy Policy",
			Section: formstate.SectionHippaPolicy,
		},
		{
			ID:       "hippa-signature",
			Path:     "/kiosk/hippa_policy_sign",
			Title:    "",
			Section:  formstate.SectionHippaPolicy,
			Required: requireSignature,
		},
		{
			ID:       "practice-policies",
			Path:     "/kiosk/practice_policies",
			Title:    "Practice Policies",
			Section:  formstate.SectionPracticePolicies,
			Required: requireSignature,
		},
		{
			ID:      "survey",
			Path:    "/kiosk/survey",
			Title:   "Quick Survey",
			Section: formstate.SectionSurvey,
		},
	}
}

func requireUserInfo(record any) error {
	user, ok := record.(formstate.UserInfo)
	if !ok {
		return fmt.Errorf("wizard: %w: expected user info", ErrValidation)
	}
	missing := []string{}
	if strings.TrimSpace(user.FullName) == "" {
		missing = append(missing, "fullName")
	}
	if user.Day == "" || user.Month == "" || user.Year == "" {
		missing = append(missing, "dateOfBirth")
	}
	if strings.TrimSpace(user.Location) == "" {
		missing = append(missing, "location")
	}
	if len(missing) > 0 {
		return fmt.Errorf("wizard: %w: missing %s", ErrValidation, strings.Join(missing, ", "))
	}
	return nil
}

func requireSignature(record any) error {
	sig, ok := record.(formstate.PolicySignature)
	if !ok {
		return fmt.Errorf("wizard: %w: expected signature", ErrValidation)
	}
	if sig.Signature == "" {
		return fmt.Errorf("wizard: %w: signature required", ErrValidation)
	}
	return nil
}
