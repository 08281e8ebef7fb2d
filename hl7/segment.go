package hl7

import (
	"fmt"
	"time"

	"github.com/nomihealth/flshots/records"
	"github.com/nomihealth/flshots/sites"
)

// Manufacturer code for doses submitted without insurance information.
const manufacturerBioNTech = "BN"

func (a *Assembler) buildMSH(profile sites.Profile, controlID string) (string, error) {
	fields := map[string]string{
		"message_time_stamp": a.now().Format(timestampLayout),
		"message_control_id": controlID,
		"login_id":           profile.LoginID,
		"org_name":           profile.OrgName,
	}
	return a.renderer.Render(MSHTemplate, fields)
}

func (a *Assembler) buildPID(rec records.Record) (string, error) {
	patientID := rec.String(records.FieldPatientID)
	if len(patientID) > 20 {
		patientID = patientID[:20]
	}
	dob, err := birthDate(rec.String(records.FieldDOB), a.now())
	if err != nil {
		return "", err
	}
	fields := map[string]string{
		"patient_id":        patientID,
		"last_name":         StringOrCaret(rec[records.FieldLastName]),
		"first_name":        StringOrCaret(rec[records.FieldFirstName]),
		"patient_dob":       dob,
		"patient_gender":    rec.String(records.FieldGender),
		"patient_race":      RaceCode(rec[records.FieldRace]),
		"patient_address_1": rec.String(records.FieldStreetAddress),
		"patient_city":      StringOrCaret(rec[records.FieldCity]),
		"state":             rec.String(records.FieldState),
		"zip":               rec.String(records.FieldZipCode),
		"phone":             ToHL7Phone(StringOrCaret(rec[records.FieldPhone])),
		"patient_ethnicity": EthnicityCode(rec[records.FieldEthnicity]),
	}
	return a.renderer.Render(PIDTemplate, fields)
}

func (a *Assembler) buildORC(controlID string) (string, error) {
	return a.renderer.Render(ORCTemplate, map[string]string{
		"message_control_id": controlID,
	})
}

func (a *Assembler) buildRXA(rec records.Record, profile sites.Profile) (string, error) {
	administered, err := plainDate(rec.String(records.FieldVaccineDate))
	if err != nil {
		return "", err
	}
	expires, err := plainDate(rec.String(records.FieldExpirationDate))
	if err != nil {
		return "", err
	}
	fields := map[string]string{
		"procedure_date":    administered,
		"cvx_code":          rec.String(records.FieldCVXCode),
		"vaccine_name":      rec.String(records.FieldVaccine),
		"site_id":           profile.SiteID,
		"site_description":  profile.SiteDescription,
		"lot_number":        rec.String(records.FieldLot),
		"expiration_date":   expires,
		"mfg_code":          rec.String(records.FieldManufacturer),
		"manufacturer_name": rec.String(records.FieldManufacturerName),
	}
	return a.renderer.Render(RXATemplate, fields)
}

func (a *Assembler) buildRXR(rec records.Record) (string, error) {
	fields := map[string]string{
		"route":               rec.String(records.FieldRoute),
		"administration_site": rec.String(records.FieldSite),
	}
	return a.renderer.Render(RXRTemplate, fields)
}

func (a *Assembler) buildOBX(rec records.Record) (string, error) {
	administered, err := plainDate(rec.String(records.FieldVaccineDate))
	if err != nil {
		return "", err
	}
	code, status := "FLSHOTS071", "Privately insured"
	if rec.String(records.FieldManufacturer) == manufacturerBioNTech {
		code, status = "FLSHOTS084", "Unknown/Unspecified"
	}
	fields := map[string]string{
		"vaccine_date": administered,
		"obx_code":     code,
		"obx_status":   status,
	}
	return a.renderer.Render(OBXTemplate, fields)
}

// birthDate parses a four-digit-year date of birth into the 8-digit HL7 form.
// The previous-century rollback is still applied even though the year is
// unambiguous; the registry has always received dates computed this way.
func birthDate(s string, now time.Time) (string, error) {
	t, err := time.Parse(dobLayout, s)
	if err != nil {
		return "", fmt.Errorf("hl7: invalid date of birth %q: %w", s, err)
	}
	return toPast(t, now).Format("20060102"), nil
}

// plainDate parses an m/d/yyyy date into the 8-digit HL7 form used for
// administration and expiry dates.
func plainDate(s string) (string, error) {
	t, err := time.Parse(dobLayout, s)
	if err != nil {
		return "", fmt.Errorf("hl7: invalid date %q: %w", s, err)
	}
	return t.Format("20060102"), nil
}
