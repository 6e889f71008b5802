package validate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xKimutai/IDSnap/constants"
	"github.com/0xKimutai/IDSnap/internal/registry"
)

var testNow = time.Date(2026, time.August, 31, 12, 0, 0, 0, time.UTC)

func nationalID(t *testing.T) registry.DocumentFormat {
	t.Helper()
	f, ok := registry.Default().Format(constants.FormatNationalID)
	require.True(t, ok)
	return f
}

func cleanFields() map[string]string {
	return map[string]string{
		constants.FieldIDNumber:    "12345678",
		constants.FieldName:        "John Kamau",
		constants.FieldDateOfBirth: "12/05/1990",
	}
}

func TestValidateCleanRecord(t *testing.T) {
	res := Validate(cleanFields(), nationalID(t), testNow)
	assert.True(t, res.IsValid())
	assert.Empty(t, res.Errors)
	assert.Empty(t, res.Warnings)
}

func TestValidateRequiredFields(t *testing.T) {
	res := Validate(map[string]string{}, nationalID(t), testNow)
	assert.False(t, res.IsValid())
	// idNumber, name and dateOfBirth are required on the national ID layout.
	assert.Len(t, res.Errors, 3)
	for _, e := range res.Errors {
		assert.Contains(t, e, "required field missing")
	}
}

func TestValidateImpossibleDateIsError(t *testing.T) {
	fields := cleanFields()
	fields[constants.FieldDateOfBirth] = "31/04/2020"
	res := Validate(fields, nationalID(t), testNow)
	assert.False(t, res.IsValid())
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "not a valid calendar date")
}

func TestValidateFutureBirthIsError(t *testing.T) {
	fields := cleanFields()
	fields[constants.FieldDateOfBirth] = "01/01/2030"
	res := Validate(fields, nationalID(t), testNow)
	assert.False(t, res.IsValid())
}

func TestValidateCrossDateOrdering(t *testing.T) {
	t.Run("issue before birth", func(t *testing.T) {
		fields := cleanFields()
		fields[constants.FieldDateOfBirth] = "01/01/2015"
		fields[constants.FieldDateOfIssue] = "01/01/2010"
		res := Validate(fields, nationalID(t), testNow)
		assert.False(t, res.IsValid())
		found := false
		for _, e := range res.Errors {
			if e == "issue date is before birth date" {
				found = true
			}
		}
		assert.True(t, found, "errors: %v", res.Errors)
	})

	t.Run("expiry before issue", func(t *testing.T) {
		fields := cleanFields()
		fields[constants.FieldDateOfIssue] = "01/01/2015"
		fields[constants.FieldExpiryDate] = "01/01/2012"
		res := Validate(fields, nationalID(t), testNow)
		assert.Contains(t, res.Errors, "expiry date is before issue date")
	})
}

func TestValidateWarnings(t *testing.T) {
	t.Run("expired document", func(t *testing.T) {
		fields := cleanFields()
		fields[constants.FieldExpiryDate] = "01/01/2020"
		res := Validate(fields, nationalID(t), testNow)
		assert.True(t, res.IsValid(), "warnings never fail validation")
		assert.Contains(t, res.Warnings, "document appears expired")
	})

	t.Run("future issue date", func(t *testing.T) {
		fields := cleanFields()
		fields[constants.FieldDateOfIssue] = "01/01/2030"
		res := Validate(fields, nationalID(t), testNow)
		assert.True(t, res.IsValid())
		assert.Contains(t, res.Warnings, "issue date is in the future")
	})

	t.Run("underage holder", func(t *testing.T) {
		fields := cleanFields()
		fields[constants.FieldDateOfBirth] = "01/01/2015"
		res := Validate(fields, nationalID(t), testNow)
		assert.True(t, res.IsValid())
		assert.Contains(t, res.Warnings, "holder appears younger than 16")
	})

	t.Run("implausibly old birth date", func(t *testing.T) {
		fields := cleanFields()
		fields[constants.FieldDateOfBirth] = "01/01/1900"
		res := Validate(fields, nationalID(t), testNow)
		assert.True(t, res.IsValid())
		assert.Contains(t, res.Warnings, "birth date is unusually old")
	})

	t.Run("name with digits", func(t *testing.T) {
		fields := cleanFields()
		fields[constants.FieldName] = "J0hn Kamau"
		res := Validate(fields, nationalID(t), testNow)
		assert.True(t, res.IsValid())
		assert.Contains(t, res.Warnings, "name contains digits")
	})

	t.Run("repeated id digits", func(t *testing.T) {
		fields := cleanFields()
		fields[constants.FieldIDNumber] = "11111111"
		res := Validate(fields, nationalID(t), testNow)
		assert.Contains(t, res.Warnings, "ID number is a single repeated character")
	})

	t.Run("short id", func(t *testing.T) {
		fields := cleanFields()
		fields[constants.FieldIDNumber] = "123"
		res := Validate(fields, nationalID(t), testNow)
		assert.Contains(t, res.Warnings, "ID number length is implausible")
	})

	t.Run("suspicious address", func(t *testing.T) {
		fields := cleanFields()
		fields[constants.FieldAddress] = "Somewhere Nice"
		res := Validate(fields, nationalID(t), testNow)
		assert.Contains(t, res.Warnings, "address has neither a number nor a street keyword")
	})
}

func TestYearsBetween(t *testing.T) {
	birth := time.Date(1990, time.December, 5, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 35, yearsBetween(birth, testNow))

	dayBefore := time.Date(2026, time.December, 4, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 35, yearsBetween(birth, dayBefore))

	onBirthday := time.Date(2026, time.December, 5, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 36, yearsBetween(birth, onBirthday))

	assert.Equal(t, -1, yearsBetween(testNow, time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)))
}
