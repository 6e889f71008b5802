// Package detect classifies raw recognition text into a document format.
package detect

import (
	"strings"

	"github.com/0xKimutai/IDSnap/internal/registry"
)

// Detect returns the first format (in the registry's fixed priority order)
// whose keyword list has any member present in the text, or the generic
// format when none match. Single pass, deterministic.
func Detect(rawText string, reg *registry.Registry) registry.DocumentFormat {
	upper := strings.ToUpper(rawText)
	for _, name := range reg.DetectionOrder() {
		for _, kw := range reg.KeywordsFor(name) {
			if strings.Contains(upper, kw) {
				f, _ := reg.Format(name)
				return f
			}
		}
	}
	return reg.Generic()
}
