// Package checkin assembles the finished form into the submission payload
// and delivers it to the clinic backend.
package checkin

import (
	"time"

	"github.com/totalfootcare/checkin-kiosk/internal/formstate"
)

// Payload is the check-in document sent to the backend. Field names follow
// the clinic's existing kiosk contract.
type Payload struct {
	PersonalInfo       PersonalInfo      `json:"personalInfo"`
	PrimaryInsurance   InsurancePayload  `json:"primaryInsurance"`
	SecondaryInsurance *InsurancePayload `json:"secondaryInsurance,omitempty"`
	MedicalInfo        MedicalInfo       `json:"medicalInfo"`
	KioskCheckIn       KioskCheckIn      `json:"kioskCheckIn"`
	VisitTimes         VisitTimes        `json:"visitTimes"`
}

type PersonalInfo struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Address2 string `json:"address2"`
	City     string `json:"city"`
	State    string `json:"state"`
	Zipcode  string `json:"zipcode"`
}

type InsurancePayload struct {
	Name               string `json:"name"`
	MemberID           string `json:"memberId"`
	GroupName          string `json:"groupName"`
	GroupNumber        string `json:"groupNumber"`
	PhoneNumber        string `json:"phoneNumber"`
	Copay              string `json:"copay"`
	SpecialistCopay    string `json:"specialistCopay"`
	ActiveDate         string `json:"activeDate"`
	InsuranceCardFront string `json:"insuranceCardFront,omitempty"`
	InsuranceCardBack  string `json:"insuranceCardBack,omitempty"`
}

type MedicalInfo struct {
	Allergies       []string                `json:"allergies"`
	Medications     []string                `json:"medications"`
	MedicalHistory  []string                `json:"medicalHistory"`
	SurgicalHistory []string                `json:"surgicalHistory"`
	FamilyHistory   formstate.FamilyHistory `json:"familyHistory"`
	SocialHistory   formstate.SocialHistory `json:"socialHistory"`
	ShoeSize        string                  `json:"shoeSize"`
}

type KioskCheckIn struct {
	Location                     string `json:"location"`
	HasHIPAASignature            bool   `json:"hasHIPAASignature"`
	HasPracticePoliciesSignature bool   `json:"hasPracticePoliciesSignature"`
	HasUploadedPictures          bool   `json:"hasUploadedPictures"`
}

// VisitTimes starts the patient's visit clock at submission.
type VisitTimes struct {
	RawEvents []VisitEvent `json:"rawEvents"`
}

type VisitEvent struct {
	Label string    `json:"label"`
	Time  time.Time `json:"time"`
}

// Confirmation is what the ticket screen needs after a successful check-in.
type Confirmation struct {
	EncounterID string `json:"encounterId"`
	Message     string `json:"message"`
}

// BuildPayload flattens the form aggregate into the backend contract.
// Secondary insurance is omitted entirely when the patient left it blank.
func BuildPayload(state formstate.FormState, clinicLocation string, now time.Time) Payload {
	p := Payload{
		PersonalInfo: PersonalInfo{
			FullName: state.UserInfo.FullName,
			Email:    state.Demographics.Email,
			Phone:    state.Demographics.Phone,
			Address:  state.Demographics.Address,
			Address2: state.Demographics.Address2,
			City:     state.Demographics.City,
			State:    state.Demographics.State,
			Zipcode:  state.Demographics.Zipcode,
		},
		PrimaryInsurance: insurancePayload(state.PrimaryInsurance, now),
		MedicalInfo: MedicalInfo{
			Allergies:       orEmpty(state.Allergies.Active),
			Medications:     orEmpty(state.Medications.Current),
			MedicalHistory:  orEmpty(state.MedicalHistory.Conditions),
			SurgicalHistory: orEmpty(state.SurgicalHistory.Procedures),
			FamilyHistory:   state.FamilyHistory,
			SocialHistory:   state.SocialHistory,
			ShoeSize:        state.ShoeSize.ShoeSize,
		},
		KioskCheckIn: KioskCheckIn{
			Location:                     clinicLocation,
			HasHIPAASignature:            state.HippaPolicy.Signature != "",
			HasPracticePoliciesSignature: state.PracticePolicies.Signature != "",
			HasUploadedPictures:          hasUploadedPictures(state),
		},
		VisitTimes: VisitTimes{
			RawEvents: []VisitEvent{{Label: "patient_start", Time: now}},
		},
	}

	if !state.SecondaryIns.Empty() {
		secondary := insurancePayload(state.SecondaryIns, now)
		p.SecondaryInsurance = &secondary
	}
	return p
}

func insurancePayload(ins formstate.Insurance, now time.Time) InsurancePayload {
	activeDate := ins.ActiveDate
	if activeDate == "" {
		activeDate = now.Format("1/2/2006")
	}
	return InsurancePayload{
		Name:               ins.InsuranceName,
		MemberID:           ins.MemberID,
		GroupName:          ins.GroupName,
		GroupNumber:        ins.GroupNumber,
		PhoneNumber:        ins.PhoneNumber,
		Copay:              ins.Copay,
		SpecialistCopay:    ins.CopayForSpecialist,
		ActiveDate:         activeDate,
		InsuranceCardFront: ins.InsuranceCardFront,
		InsuranceCardBack:  ins.InsuranceCardBack,
	}
}

func hasUploadedPictures(state formstate.FormState) bool {
	return state.Demographics.PatientsPicture != "" ||
		state.Demographics.DriversLicense != "" ||
		state.PrimaryInsurance.InsuranceCardFront != "" ||
		state.PrimaryInsurance.InsuranceCardBack != "" ||
		state.SecondaryIns.InsuranceCardFront != "" ||
		state.SecondaryIns.InsuranceCardBack != ""
}

// orEmpty keeps list fields as [] rather than null in the JSON document.
func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
