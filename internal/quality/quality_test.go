package quality

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xKimutai/IDSnap/constants"
	"github.com/0xKimutai/IDSnap/internal/registry"
	"github.com/0xKimutai/IDSnap/internal/validate"
)

func nationalID(t *testing.T) registry.DocumentFormat {
	t.Helper()
	f, ok := registry.Default().Format(constants.FormatNationalID)
	require.True(t, ok)
	return f
}

func TestAssessCompleteness(t *testing.T) {
	format := nationalID(t)

	t.Run("all required present", func(t *testing.T) {
		c := AssessCompleteness(map[string]string{
			constants.FieldIDNumber:    "12345678",
			constants.FieldName:        "John Kamau",
			constants.FieldDateOfBirth: "12/05/1990",
		}, format)
		assert.Equal(t, 9, c.TotalFields)
		assert.Equal(t, 3, c.FilledFields)
		assert.Equal(t, 3, c.RequiredFields)
		assert.Equal(t, 3, c.RequiredFieldsPresent)
		assert.InDelta(t, 3.0/9.0, c.CompletenessScore, 1e-9)
		assert.InDelta(t, 1.0, c.RequiredFieldsScore, 1e-9)
		assert.Empty(t, c.MissingRequiredFields)
	})

	t.Run("blank counts as missing", func(t *testing.T) {
		c := AssessCompleteness(map[string]string{
			constants.FieldIDNumber: "   ",
		}, format)
		assert.Equal(t, 0, c.FilledFields)
		assert.Contains(t, c.MissingRequiredFields, "ID Number")
	})

	t.Run("no required fields scores one", func(t *testing.T) {
		c := AssessCompleteness(nil, registry.DocumentFormat{
			Name:   "BARE",
			Fields: []registry.FieldSpec{{Key: "x", Label: "X"}},
		})
		assert.InDelta(t, 1.0, c.RequiredFieldsScore, 1e-9)
	})
}

func TestGenerateReportScore(t *testing.T) {
	full := Completeness{CompletenessScore: 1, RequiredFieldsScore: 1}

	t.Run("perfect", func(t *testing.T) {
		r := GenerateReport(validate.Result{}, full)
		assert.InDelta(t, 1.0, r.Score, 1e-9)
		assert.Equal(t, constants.QualityExcellent, r.Level)
	})

	t.Run("penalties applied", func(t *testing.T) {
		v := validate.Result{
			Errors:   []string{"e1"},
			Warnings: []string{"w1", "w2"},
		}
		r := GenerateReport(v, full)
		// (1 - 0.2 - 2*0.05) * (0.3 + 0.7) = 0.7
		assert.InDelta(t, 0.7, r.Score, 1e-9)
		assert.Equal(t, constants.QualityGood, r.Level)
	})

	t.Run("completeness weighting", func(t *testing.T) {
		c := Completeness{CompletenessScore: 0.5, RequiredFieldsScore: 1}
		r := GenerateReport(validate.Result{}, c)
		// 1.0 * (0.3*0.5 + 0.7*1.0) = 0.85
		assert.InDelta(t, 0.85, r.Score, 1e-9)
	})

	t.Run("many errors clamp at zero", func(t *testing.T) {
		v := validate.Result{Errors: []string{"a", "b", "c", "d", "e", "f"}}
		r := GenerateReport(v, full)
		assert.Zero(t, r.Score)
		assert.Equal(t, constants.QualityPoor, r.Level)
	})
}

func TestLevelFor(t *testing.T) {
	tests := []struct {
		score float64
		want  constants.QualityLevel
	}{
		{1.0, constants.QualityExcellent},
		{0.8, constants.QualityExcellent},
		{0.79, constants.QualityGood},
		{0.6, constants.QualityGood},
		{0.59, constants.QualityFair},
		{0.4, constants.QualityFair},
		{0.39, constants.QualityPoor},
		{0.0, constants.QualityPoor},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, levelFor(tt.score), "score %v", tt.score)
	}
}

func TestRecommendations(t *testing.T) {
	t.Run("all clear", func(t *testing.T) {
		r := GenerateReport(validate.Result{}, Completeness{
			CompletenessScore: 1, RequiredFieldsScore: 1,
		})
		require.Len(t, r.Recommendations, 1)
		assert.Contains(t, r.Recommendations[0], "successfully")
	})

	t.Run("missing required fields named", func(t *testing.T) {
		r := GenerateReport(validate.Result{}, Completeness{
			CompletenessScore:     0.2,
			RequiredFieldsScore:   0.5,
			MissingRequiredFields: []string{"Date of Birth"},
		})
		assert.Contains(t, r.Recommendations, "Retake the photo with better lighting and framing to capture more fields.")
		assert.Contains(t, r.Recommendations, "Capture the Date of Birth region of the document clearly.")
	})

	t.Run("errors and warnings", func(t *testing.T) {
		v := validate.Result{Errors: []string{"e"}, Warnings: []string{"w"}}
		r := GenerateReport(v, Completeness{CompletenessScore: 1, RequiredFieldsScore: 1})
		assert.Len(t, r.Recommendations, 2)
	})
}
