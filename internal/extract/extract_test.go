package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xKimutai/IDSnap/constants"
	"github.com/0xKimutai/IDSnap/internal/registry"
)

const fullCard = `REPUBLIC OF KENYA
NATIONAL IDENTITY CARD
SERIAL NO: 123456789
ID NO: 12345678
FULL NAMES
JOHN KIPCHOGE KAMAU
DATE OF BIRTH: 12/05/1990
SEX: M
DISTRICT OF BIRTH: NAKURU
PLACE OF ISSUE: NAIROBI
DATE OF ISSUE: 01/02/2010
HOLDER'S SIGN`

func nationalID(t *testing.T, reg *registry.Registry) registry.DocumentFormat {
	t.Helper()
	f, ok := reg.Format(constants.FormatNationalID)
	require.True(t, ok)
	return f
}

func TestExtractFullCard(t *testing.T) {
	reg := registry.Default()
	res := Extract(fullCard, nationalID(t, reg), reg)

	want := map[string]string{
		constants.FieldSerialNumber:    "123456789",
		constants.FieldIDNumber:        "12345678",
		constants.FieldName:            "JOHN KIPCHOGE KAMAU",
		constants.FieldDateOfBirth:     "12/05/1990",
		constants.FieldSex:             "M",
		constants.FieldDistrictOfBirth: "NAKURU",
		constants.FieldPlaceOfIssue:    "NAIROBI",
		constants.FieldDateOfIssue:     "01/02/2010",
		constants.FieldHoldersSign:     constants.SignPresent,
	}
	assert.Equal(t, want, res.Fields)

	// Label-anchored fields carry the pattern base confidence; scanner fields
	// share one completeness-derived scalar, capped below full certainty.
	assert.InDelta(t, 0.9, res.Confidence[constants.FieldIDNumber], 1e-9)
	assert.InDelta(t, 0.85, res.Confidence[constants.FieldSerialNumber], 1e-9)
	assert.InDelta(t, 0.95, res.Confidence[constants.FieldName], 1e-9)
	assert.InDelta(t, 0.95, res.Confidence[constants.FieldHoldersSign], 1e-9)

	for key, c := range res.Confidence {
		assert.Greater(t, c, 0.0, key)
		assert.LessOrEqual(t, c, 1.0, key)
		_, ok := res.Fields[key]
		assert.True(t, ok, "confidence for missing field %s", key)
	}
}

func TestExtractFirstMatchWins(t *testing.T) {
	reg := registry.Default()
	text := "ID NO: 11112222\nID NO: 33334444"
	res := Extract(text, reg.Generic(), reg)
	assert.Equal(t, "11112222", res.Fields[constants.FieldIDNumber])
}

func TestExtractPartialConfidence(t *testing.T) {
	reg := registry.Default()
	// The value matches the label anchor but fails shape validation, so it is
	// kept at half the base confidence.
	text := "ID NO: 123456789012345678901234567890"
	res := Extract(text, reg.Generic(), reg)

	require.Equal(t, "123456789012345678901234567890", res.Fields[constants.FieldIDNumber])
	assert.InDelta(t, 0.45, res.Confidence[constants.FieldIDNumber], 1e-9)
}

func TestExtractGenericPassCoversExtraKeys(t *testing.T) {
	reg := registry.Default()
	// The national ID format has no nationality field; the generic registry
	// pass still picks it up.
	text := fullCard + "\nNATIONALITY: KENYAN"
	res := Extract(text, nationalID(t, reg), reg)
	assert.Equal(t, "KENYAN", res.Fields[constants.FieldNationality])
}

func TestExtractEmptyText(t *testing.T) {
	reg := registry.Default()
	res := Extract("", reg.Generic(), reg)
	assert.Empty(t, res.Fields)
	assert.Empty(t, res.Confidence)
}

func TestExtractNeverStoresEmptyValues(t *testing.T) {
	reg := registry.Default()
	res := Extract(fullCard, nationalID(t, reg), reg)
	for key, v := range res.Fields {
		assert.NotEmpty(t, strings.TrimSpace(v), key)
	}
}
