// Package extract converts raw recognition text into typed fields with
// per-field confidence. Two strategies run in sequence: a label-anchored
// regex pass over the whole text, then a heuristic line scanner for fields
// the labels missed. A field, once set, is never overwritten.
package extract

import (
	"strings"

	"github.com/0xKimutai/IDSnap/internal/registry"
)

// Result is produced once per recognition attempt and is immutable after
// creation. Keys absent from Fields mean "not found"; an empty string is
// never stored as a placeholder.
type Result struct {
	Fields     map[string]string
	Confidence map[string]float64
	Format     registry.DocumentFormat
	RawText    string
}

// partialConfidenceFactor discounts label-anchored values whose shape fails
// validation: OCR noise corrupts value shape, but the label anchor is still
// trustworthy.
const partialConfidenceFactor = 0.5

// scannerConfidenceCap bounds the scalar confidence of heuristic-scanner
// results; a crowded card never reads as fully certain.
const scannerConfidenceCap = 0.95

// Extract runs both strategies over rawText for the given format.
func Extract(rawText string, format registry.DocumentFormat, reg *registry.Registry) Result {
	res := Result{
		Fields:     make(map[string]string),
		Confidence: make(map[string]float64),
		Format:     format,
		RawText:    rawText,
	}

	// Pass 1: label-anchored extraction for the format's own fields.
	for _, fs := range format.Fields {
		applyAnchored(&res, fs.Key, fs.Pattern, rawText)
	}

	// Pass 1b: generic registry patterns not covered by the format's field
	// list, only filling keys still absent.
	for _, key := range reg.PatternKeys() {
		if _, covered := format.Field(key); covered {
			continue
		}
		p, _ := reg.PatternsFor(key)
		applyAnchored(&res, key, p, rawText)
	}

	// Pass 2: heuristic line scanner for whatever is still missing.
	scanKeys := scan(&res, rawText)

	// Scanner confidence is one scalar, how much of the document was
	// legible, applied uniformly to every field the scanner found.
	if len(scanKeys) > 0 {
		expected := len(format.Fields)
		if expected == 0 {
			expected = len(scanKeys)
		}
		conf := float64(len(res.Fields)) / float64(expected)
		if conf > scannerConfidenceCap {
			conf = scannerConfidenceCap
		}
		for _, key := range scanKeys {
			res.Confidence[key] = conf
		}
	}

	return res
}

// applyAnchored runs one label-anchored pattern and records the first match.
// Conforming values get the pattern's base confidence; non-conforming ones
// are still recorded at half confidence.
func applyAnchored(res *Result, key string, p registry.FieldPattern, rawText string) {
	if p.Extraction == nil {
		return
	}
	if _, done := res.Fields[key]; done {
		return
	}
	m := p.Extraction.FindStringSubmatch(rawText)
	if m == nil || len(m) < 2 {
		return
	}
	value := strings.TrimSpace(m[1])
	if value == "" {
		return
	}
	conf := p.BaseConfidence
	if p.Validation != nil && !p.Validation.MatchString(value) {
		conf *= partialConfidenceFactor
	}
	res.Fields[key] = value
	res.Confidence[key] = conf
}
