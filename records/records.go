// Package records defines the upload row schema and the sources that yield it
package records

// Column names of the upload extract. Names are case-sensitive and must match
// the extract exactly.
const (
	FieldPatientID        = "Patient ID"
	FieldFirstName        = "First Name"
	FieldLastName         = "Last Name"
	FieldDOB              = "DOB"
	FieldGender           = "Gender"
	FieldRace             = "Race"
	FieldEthnicity        = "Ethnicity"
	FieldStreetAddress    = "Street Address"
	FieldCity             = "City"
	FieldState            = "State"
	FieldZipCode          = "Zip Code"
	FieldPhone            = "Phone"
	FieldInstance         = "Instance"
	FieldVaccineDate      = "Vaccine Administered Date"
	FieldCVXCode          = "CVX_Code"
	FieldVaccine          = "Vaccine"
	FieldLot              = "Lot"
	FieldExpirationDate   = "Vaccine Expiration Date"
	FieldManufacturer     = "Manufacturer"
	FieldManufacturerName = "vax_manufacturer"
	FieldRoute            = "Route"
	FieldSite             = "Site"
)

// Record is one row of an upload, keyed by column name. Populated cells hold
// strings; an absent or malformed cell may be missing or hold a non-string,
// which the normalizers treat as unset.
type Record map[string]any

// String returns the value of the named column when it holds a string, and
// the empty string otherwise.
func (r Record) String(name string) string {
	s, _ := r[name].(string)
	return s
}
