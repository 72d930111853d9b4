package verification

import (
	"strconv"
	"time"

	"github.com/totalfootcare/checkin-kiosk/internal/formstate"
	"github.com/totalfootcare/checkin-kiosk/internal/patients"
)

// Seed pre-populates the form aggregate from a freshly verified record so the
// patient only confirms instead of retyping. Sections are replaced wholesale;
// seeding happens once, right after verification, before any step has saved.
func Seed(store *formstate.Store, record *patients.Record, encounterID string) error {
	user := formstate.UserInfo{
		FullName:    record.FullName,
		Location:    record.FacilityName,
		EncounterID: encounterID,
	}
	if dob, err := NormalizeDate(record.DateOfBirth); err == nil {
		if t, err := time.Parse("2006-01-02", dob); err == nil {
			user.Day = strconv.Itoa(t.Day())
			user.Month = strconv.Itoa(int(t.Month()))
			user.Year = strconv.Itoa(t.Year())
		}
	}
	if err := store.UpdateSection(formstate.SectionUserInfo, user); err != nil {
		return err
	}

	if record.Address != (patients.Address{}) || record.Phone != "" || record.Email != "" {
		demo := formstate.Demographics{
			Address: record.Address.Street,
			City:    record.Address.City,
			State:   record.Address.State,
			Zipcode: record.Address.ZipCode,
			Phone:   record.Phone,
			Email:   record.Email,
		}
		if err := store.UpdateSection(formstate.SectionDemographics, demo); err != nil {
			return err
		}
	}

	if record.Insurance != (patients.InsuranceInfo{}) {
		ins := formstate.Insurance{
			InsuranceName: record.Insurance.Provider,
			MemberID:      record.Insurance.PolicyNumber,
			ActiveDate:    time.Now().Format("1/2/2006"),
		}
		if err := store.UpdateSection(formstate.SectionPrimaryInsurance, ins); err != nil {
			return err
		}
	}

	return nil
}
