package constants

// Canonical field keys shared by the registry, extractor, sanitizer and
// validator. Stable values (these exact strings appear in persisted records).
const (
	FieldSerialNumber    = "serialNumber"
	FieldIDNumber        = "idNumber"
	FieldName            = "name"
	FieldDateOfBirth     = "dateOfBirth"
	FieldSex             = "sex"
	FieldDistrictOfBirth = "districtOfBirth"
	FieldPlaceOfIssue    = "placeOfIssue"
	FieldDateOfIssue     = "dateOfIssue"
	FieldExpiryDate      = "expiryDate"
	FieldNationality     = "nationality"
	FieldAddress         = "address"
	FieldHoldersSign     = "holdersSign"
)

// FormatName identifies a known document layout.
type FormatName string

const (
	FormatGeneric    FormatName = "GENERIC"
	FormatNationalID FormatName = "NATIONAL_ID"
	FormatPassport   FormatName = "PASSPORT"
)

// SignPresent is the sentinel recorded for presence-only fields such as the
// holder's signature, where the document shows the field but OCR cannot
// recover a value.
const SignPresent = "PRESENT"
