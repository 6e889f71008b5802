// Package quality aggregates per-field outcomes into a completeness
// assessment and an overall quality report with recommendations.
package quality

import (
	"fmt"
	"strings"

	"github.com/0xKimutai/IDSnap/constants"
	"github.com/0xKimutai/IDSnap/internal/registry"
	"github.com/0xKimutai/IDSnap/internal/validate"
)

// Completeness counts filled versus expected fields for one extraction.
type Completeness struct {
	TotalFields           int
	FilledFields          int
	RequiredFields        int
	RequiredFieldsPresent int
	CompletenessScore     float64
	RequiredFieldsScore   float64
	MissingRequiredFields []string
}

// Report is the aggregate verdict over one extraction attempt.
type Report struct {
	Score           float64
	Level           constants.QualityLevel
	Errors          []string
	Warnings        []string
	Completeness    Completeness
	Recommendations []string
}

const (
	errorPenalty   = 0.2
	warningPenalty = 0.05

	completenessWeight = 0.3
	requiredWeight     = 0.7

	excellentThreshold = 0.8
	goodThreshold      = 0.6
	fairThreshold      = 0.4

	lowCompleteness = 0.6
)

// AssessCompleteness counts filled, total and required fields for a format.
// A blank value counts as missing.
func AssessCompleteness(fields map[string]string, format registry.DocumentFormat) Completeness {
	c := Completeness{TotalFields: len(format.Fields)}
	for _, fs := range format.Fields {
		filled := strings.TrimSpace(fields[fs.Key]) != ""
		if filled {
			c.FilledFields++
		}
		if fs.Required {
			c.RequiredFields++
			if filled {
				c.RequiredFieldsPresent++
			} else {
				c.MissingRequiredFields = append(c.MissingRequiredFields, fs.Label)
			}
		}
	}
	if c.TotalFields > 0 {
		c.CompletenessScore = float64(c.FilledFields) / float64(c.TotalFields)
	}
	if c.RequiredFields > 0 {
		c.RequiredFieldsScore = float64(c.RequiredFieldsPresent) / float64(c.RequiredFields)
	} else {
		c.RequiredFieldsScore = 1
	}
	return c
}

// GenerateReport scores one extraction: start at 1.0, subtract per-issue
// penalties, weight by completeness, clamp to [0,1].
func GenerateReport(validation validate.Result, completeness Completeness) Report {
	score := 1.0
	score -= errorPenalty * float64(len(validation.Errors))
	score -= warningPenalty * float64(len(validation.Warnings))
	score *= completenessWeight*completeness.CompletenessScore +
		requiredWeight*completeness.RequiredFieldsScore
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}

	return Report{
		Score:           score,
		Level:           levelFor(score),
		Errors:          validation.Errors,
		Warnings:        validation.Warnings,
		Completeness:    completeness,
		Recommendations: recommendations(validation, completeness),
	}
}

func levelFor(score float64) constants.QualityLevel {
	switch {
	case score >= excellentThreshold:
		return constants.QualityExcellent
	case score >= goodThreshold:
		return constants.QualityGood
	case score >= fairThreshold:
		return constants.QualityFair
	default:
		return constants.QualityPoor
	}
}

func recommendations(validation validate.Result, completeness Completeness) []string {
	var recs []string
	if len(validation.Errors) > 0 {
		recs = append(recs, "Resolve the reported errors before using this record.")
	}
	if len(validation.Warnings) > 0 {
		recs = append(recs, "Review the flagged fields against the physical document.")
	}
	if completeness.CompletenessScore < lowCompleteness {
		recs = append(recs, "Retake the photo with better lighting and framing to capture more fields.")
	}
	for _, label := range completeness.MissingRequiredFields {
		recs = append(recs, fmt.Sprintf("Capture the %s region of the document clearly.", label))
	}
	if len(recs) == 0 {
		recs = append(recs, "Document scanned successfully. All checks passed.")
	}
	return recs
}
