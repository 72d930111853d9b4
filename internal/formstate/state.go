package formstate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
)

// FormState is the persisted aggregate: one typed record per section. The
// zero value is the empty form.
type FormState struct {
	UserInfo         UserInfo        `json:"userInfo"`
	Demographics     Demographics    `json:"demographicsInfo"`
	PrimaryInsurance Insurance       `json:"primaryInsurance"`
	SecondaryIns     Insurance       `json:"secondaryInsurance"`
	Allergies        Allergies       `json:"allergies"`
	Medications      Medications     `json:"medications"`
	MedicalHistory   MedicalHistory  `json:"medicalHistory"`
	SurgicalHistory  SurgicalHistory `json:"surgicalHistory"`
	FamilyHistory    FamilyHistory   `json:"familyHistory"`
	SocialHistory    SocialHistory   `json:"socialHistory"`
	ShoeSize         ShoeSize        `json:"shoeSize"`
	HippaPolicy      PolicySignature `json:"hippaPolicy"`
	PracticePolicies PolicySignature `json:"practicePolicies"`
	Survey           Survey          `json:"survey"`
}

// Record returns the current record for a section. A section that was never
// set yields its empty record.
func (f *FormState) Record(section Section) (any, error) {
	switch section {
	case SectionUserInfo:
		return f.UserInfo, nil
	case SectionDemographics:
		return f.Demographics, nil
	case SectionPrimaryInsurance:
		return f.PrimaryInsurance, nil
	case SectionSecondaryIns:
		return f.SecondaryIns, nil
	case SectionAllergies:
		return f.Allergies, nil
	case SectionMedications:
		return f.Medications, nil
	case SectionMedicalHistory:
		return f.MedicalHistory, nil
	case SectionSurgicalHistory:
		return f.SurgicalHistory, nil
	case SectionFamilyHistory:
		return f.FamilyHistory, nil
	case SectionSocialHistory:
		return f.SocialHistory, nil
	case SectionShoeSize:
		return f.ShoeSize, nil
	case SectionHippaPolicy:
		return f.HippaPolicy, nil
	case SectionPracticePolicies:
		return f.PracticePolicies, nil
	case SectionSurvey:
		return f.Survey, nil
	}
	return nil, fmt.Errorf("formstate: %w: %q", ErrUnknownSection, section)
}

// setRecord replaces a section's record wholesale. The record must be the
// section's concrete type; nothing is merged.
func (f *FormState) setRecord(section Section, record any) error {
	ok := false
	switch section {
	case SectionUserInfo:
		f.UserInfo, ok = record.(UserInfo)
	case SectionDemographics:
		f.Demographics, ok = record.(Demographics)
	case SectionPrimaryInsurance:
		f.PrimaryInsurance, ok = record.(Insurance)
	case SectionSecondaryIns:
		f.SecondaryIns, ok = record.(Insurance)
	case SectionAllergies:
		f.Allergies, ok = record.(Allergies)
	case SectionMedications:
		f.Medications, ok = record.(Medications)
	case SectionMedicalHistory:
		f.MedicalHistory, ok = record.(MedicalHistory)
	case SectionSurgicalHistory:
		f.SurgicalHistory, ok = record.(SurgicalHistory)
	case SectionFamilyHistory:
		f.FamilyHistory, ok = record.(FamilyHistory)
	case SectionSocialHistory:
		f.SocialHistory, ok = record.(SocialHistory)
	case SectionShoeSize:
		f.ShoeSize, ok = record.(ShoeSize)
	case SectionHippaPolicy:
		f.HippaPolicy, ok = record.(PolicySignature)
	case SectionPracticePolicies:
		f.PracticePolicies, ok = record.(PolicySignature)
	case SectionSurvey:
		f.Survey, ok = record.(Survey)
	default:
		return fmt.Errorf("formstate: %w: %q", ErrUnknownSection, section)
	}
	if !ok {
		return fmt.Errorf("formstate: %w: section %q got %T", ErrRecordType, section, record)
	}
	return nil
}

// DecodeRecord parses raw JSON into the concrete record type for a section.
// Unknown fields are rejected so a payload aimed at the wrong section fails
// loudly instead of silently dropping data.
func DecodeRecord(section Section, raw json.RawMessage) (any, error) {
	decode := func(dst any) (any, error) {
		if err := strictUnmarshal(raw, dst); err != nil {
			return nil, fmt.Errorf("formstate: decode %s: %w", section, err)
		}
		return reflect.ValueOf(dst).Elem().Interface(), nil
	}

	switch section {
	case SectionUserInfo:
		return decode(&UserInfo{})
	case SectionDemographics:
		return decode(&Demographics{})
	case SectionPrimaryInsurance, SectionSecondaryIns:
		return decode(&Insurance{})
	case SectionAllergies:
		return decode(&Allergies{})
	case SectionMedications:
		return decode(&Medications{})
	case SectionMedicalHistory:
		return decode(&MedicalHistory{})
	case SectionSurgicalHistory:
		return decode(&SurgicalHistory{})
	case SectionFamilyHistory:
		return decode(&FamilyHistory{})
	case SectionSocialHistory:
		return decode(&SocialHistory{})
	case SectionShoeSize:
		return decode(&ShoeSize{})
	case SectionHippaPolicy, SectionPracticePolicies:
		return decode(&PolicySignature{})
	case SectionSurvey:
		return decode(&Survey{})
	}
	return nil, fmt.Errorf("formstate: %w: %q", ErrUnknownSection, section)
}

func strictUnmarshal(raw json.RawMessage, dst any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// IsEmpty reports whether every section holds its empty record.
func (f *FormState) IsEmpty() bool {
	return reflect.DeepEqual(*f, FormState{})
}
