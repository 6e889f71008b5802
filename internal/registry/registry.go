// Package registry holds the static pattern tables that drive format
// detection, field extraction and validation. The built-in tables cover the
// generic layout plus the national-ID and passport specializations; external
// overlays can replace them without code changes (see overlay.go).
package registry

import (
	"regexp"
	"slices"
	"sort"

	"github.com/0xKimutai/IDSnap/constants"
)

// FieldPattern describes how a single field is extracted and validated.
// Immutable after construction.
type FieldPattern struct {
	// Validation matches a well-formed value for the field.
	Validation *regexp.Regexp
	// Extraction is a label-anchored regex whose first capture group is the
	// candidate value. Nil for fields with no reliable label.
	Extraction *regexp.Regexp
	// BaseConfidence in (0,1] is assigned to label-anchored matches whose
	// value conforms to Validation.
	BaseConfidence float64
}

// FieldSpec binds a field key to its label and pattern within one format.
type FieldSpec struct {
	Key      string
	Label    string
	Required bool
	Pattern  FieldPattern
}

// DocumentFormat is a named layout with an ordered field list.
type DocumentFormat struct {
	Name   constants.FormatName
	Fields []FieldSpec
}

// Field returns the spec for key, if the format carries it.
func (f DocumentFormat) Field(key string) (FieldSpec, bool) {
	for _, fs := range f.Fields {
		if fs.Key == key {
			return fs, true
		}
	}
	return FieldSpec{}, false
}

// RequiredKeys returns the keys of all required fields, in field order.
func (f DocumentFormat) RequiredKeys() []string {
	var keys []string
	for _, fs := range f.Fields {
		if fs.Required {
			keys = append(keys, fs.Key)
		}
	}
	return keys
}

// Registry is the read-only pattern table. Loaded once at startup; safe for
// concurrent readers.
type Registry struct {
	patterns map[string]FieldPattern
	formats  map[constants.FormatName]DocumentFormat
	keywords map[constants.FormatName][]string
	// order is the fixed detection priority; the generic format is the
	// fallback and never appears here.
	order []constants.FormatName
}

// PatternsFor returns the pattern table entry for a field key.
func (r *Registry) PatternsFor(key string) (FieldPattern, bool) {
	p, ok := r.patterns[key]
	return p, ok
}

// PatternKeys returns all known field keys in a stable order. Built-in keys
// come first in their canonical order; overlay-only keys follow, sorted.
func (r *Registry) PatternKeys() []string {
	keys := make([]string, 0, len(r.patterns))
	for _, k := range patternOrder {
		if _, ok := r.patterns[k]; ok {
			keys = append(keys, k)
		}
	}
	var extra []string
	for k := range r.patterns {
		if !slices.Contains(keys, k) {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	return append(keys, extra...)
}

// Formats returns all known formats, generic first.
func (r *Registry) Formats() []DocumentFormat {
	out := []DocumentFormat{r.formats[constants.FormatGeneric]}
	for _, name := range r.order {
		out = append(out, r.formats[name])
	}
	return out
}

// Format returns the format with the given name.
func (r *Registry) Format(name constants.FormatName) (DocumentFormat, bool) {
	f, ok := r.formats[name]
	return f, ok
}

// Generic returns the fallback format.
func (r *Registry) Generic() DocumentFormat {
	return r.formats[constants.FormatGeneric]
}

// KeywordsFor returns the detection keywords for a format name.
func (r *Registry) KeywordsFor(name constants.FormatName) []string {
	return r.keywords[name]
}

// DetectionOrder returns the fixed format priority used by the detector.
func (r *Registry) DetectionOrder() []constants.FormatName {
	return r.order
}

// patternOrder fixes iteration order for the generic second pass of the
// extractor; map iteration would break first-success-wins determinism.
var patternOrder = []string{
	constants.FieldName,
	constants.FieldIDNumber,
	constants.FieldSerialNumber,
	constants.FieldDateOfBirth,
	constants.FieldDateOfIssue,
	constants.FieldExpiryDate,
	constants.FieldSex,
	constants.FieldNationality,
	constants.FieldDistrictOfBirth,
	constants.FieldPlaceOfIssue,
	constants.FieldAddress,
	constants.FieldHoldersSign,
}

var dateShape = `\d{1,2}[./\- ]\d{1,2}[./\- ]\d{2,4}`

var builtinPatterns = map[string]FieldPattern{
	constants.FieldName: {
		Validation:     regexp.MustCompile(`^[A-Za-z][A-Za-z .,'-]{1,49}$`),
		Extraction:     regexp.MustCompile(`(?im)^(?:FULL\s+)?NAMES?\s*[:;.]?\s*([A-Z][A-Z .,'-]{4,})$`),
		BaseConfidence: 0.85,
	},
	constants.FieldIDNumber: {
		Validation:     regexp.MustCompile(`^[A-Z0-9][A-Z0-9 -]{3,24}$`),
		Extraction:     regexp.MustCompile(`(?im)^.*\bID\s*(?:NO|NUMBER)?\s*[:;.]\s*([A-Z0-9-]{4,})\s*$`),
		BaseConfidence: 0.9,
	},
	constants.FieldSerialNumber: {
		Validation:     regexp.MustCompile(`^[0-9]{7,12}$`),
		Extraction:     regexp.MustCompile(`(?im)^.*\bSERIAL\s*(?:NO|NUMBER)?\s*[:;.]?\s*([0-9]{5,})\s*$`),
		BaseConfidence: 0.85,
	},
	constants.FieldDateOfBirth: {
		Validation:     regexp.MustCompile(`^` + dateShape + `$`),
		Extraction:     regexp.MustCompile(`(?im)^.*\b(?:DATE\s+OF\s+BIRTH|D\.?O\.?B)\s*[:;.]?\s*(` + dateShape + `)`),
		BaseConfidence: 0.9,
	},
	constants.FieldDateOfIssue: {
		Validation:     regexp.MustCompile(`^` + dateShape + `$`),
		Extraction:     regexp.MustCompile(`(?im)^.*\b(?:DATE\s+OF\s+ISSUE|ISSUED?\s+ON)\s*[:;.]?\s*(` + dateShape + `)`),
		BaseConfidence: 0.9,
	},
	constants.FieldExpiryDate: {
		Validation:     regexp.MustCompile(`^` + dateShape + `$`),
		Extraction:     regexp.MustCompile(`(?im)^.*\b(?:DATE\s+OF\s+EXPIRY|EXPIRY\s+DATE|VALID\s+UNTIL)\s*[:;.]?\s*(` + dateShape + `)`),
		BaseConfidence: 0.9,
	},
	constants.FieldSex: {
		Validation:     regexp.MustCompile(`(?i)^(?:M|F|MALE|FEMALE)$`),
		Extraction:     regexp.MustCompile(`(?im)^.*\b(?:SEX|GENDER)\s*[:;.]?\s*(MALE|FEMALE|M|F)\b`),
		BaseConfidence: 0.9,
	},
	constants.FieldNationality: {
		Validation:     regexp.MustCompile(`^[A-Za-z ]{3,30}$`),
		Extraction:     regexp.MustCompile(`(?im)^.*\bNATIONALITY\s*[:;.]?\s*([A-Z ]{3,})\s*$`),
		BaseConfidence: 0.8,
	},
	constants.FieldDistrictOfBirth: {
		Validation:     regexp.MustCompile(`^[A-Za-z][A-Za-z .'-]{2,39}$`),
		Extraction:     regexp.MustCompile(`(?im)^.*\bDISTRICT\s+OF\s+BIRTH\s*[:;.]?\s*([A-Z][A-Z .'-]{2,})\s*$`),
		BaseConfidence: 0.8,
	},
	constants.FieldPlaceOfIssue: {
		Validation:     regexp.MustCompile(`^[A-Za-z][A-Za-z .'-]{2,39}$`),
		Extraction:     regexp.MustCompile(`(?im)^.*\bPLACE\s+OF\s+ISSUE\s*[:;.]?\s*([A-Z][A-Z .'-]{2,})\s*$`),
		BaseConfidence: 0.8,
	},
	constants.FieldAddress: {
		Validation:     regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9 ,.'#-]{4,79}$`),
		Extraction:     regexp.MustCompile(`(?im)^.*\bADDRESS\s*[:;.]?\s*(\S.*)$`),
		BaseConfidence: 0.75,
	},
	constants.FieldHoldersSign: {
		Validation:     regexp.MustCompile(`^.+$`),
		Extraction:     nil, // presence-only, handled by the heuristic scanner
		BaseConfidence: 0.7,
	},
}

// Default returns the built-in registry.
func Default() *Registry {
	r := &Registry{
		patterns: builtinPatterns,
		formats:  make(map[constants.FormatName]DocumentFormat),
		keywords: map[constants.FormatName][]string{
			constants.FormatNationalID: {
				"NATIONAL IDENTITY CARD",
				"NATIONAL ID",
				"JAMHURI YA KENYA",
				"REPUBLIC OF KENYA",
				"HUDUMA",
			},
			constants.FormatPassport: {
				"PASSPORT",
				"PASSEPORT",
			},
		},
		order: []constants.FormatName{
			constants.FormatNationalID,
			constants.FormatPassport,
		},
	}

	spec := func(key, label string, required bool) FieldSpec {
		return FieldSpec{Key: key, Label: label, Required: required, Pattern: builtinPatterns[key]}
	}

	r.formats[constants.FormatGeneric] = DocumentFormat{
		Name: constants.FormatGeneric,
		Fields: []FieldSpec{
			spec(constants.FieldName, "Name", true),
			spec(constants.FieldIDNumber, "ID Number", true),
			spec(constants.FieldDateOfBirth, "Date of Birth", false),
			spec(constants.FieldSex, "Sex", false),
			spec(constants.FieldAddress, "Address", false),
			spec(constants.FieldDateOfIssue, "Date of Issue", false),
			spec(constants.FieldExpiryDate, "Expiry Date", false),
		},
	}
	r.formats[constants.FormatNationalID] = DocumentFormat{
		Name: constants.FormatNationalID,
		Fields: []FieldSpec{
			spec(constants.FieldSerialNumber, "Serial Number", false),
			spec(constants.FieldIDNumber, "ID Number", true),
			spec(constants.FieldName, "Full Names", true),
			spec(constants.FieldDateOfBirth, "Date of Birth", true),
			spec(constants.FieldSex, "Sex", false),
			spec(constants.FieldDistrictOfBirth, "District of Birth", false),
			spec(constants.FieldPlaceOfIssue, "Place of Issue", false),
			spec(constants.FieldDateOfIssue, "Date of Issue", false),
			spec(constants.FieldHoldersSign, "Holder's Sign", false),
		},
	}
	r.formats[constants.FormatPassport] = DocumentFormat{
		Name: constants.FormatPassport,
		Fields: []FieldSpec{
			spec(constants.FieldIDNumber, "Passport Number", true),
			spec(constants.FieldName, "Name", true),
			spec(constants.FieldNationality, "Nationality", false),
			spec(constants.FieldDateOfBirth, "Date of Birth", true),
			spec(constants.FieldSex, "Sex", false),
			spec(constants.FieldDateOfIssue, "Date of Issue", false),
			spec(constants.FieldExpiryDate, "Date of Expiry", false),
		},
	}
	return r
}
