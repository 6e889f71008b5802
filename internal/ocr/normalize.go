package ocr

import (
	"regexp"
	"strings"
)

// Normalize flattens an engine output into a single text plus one scalar
// confidence. Block text is joined with newlines; block confidences are
// averaged. When the engine reports no confidence at all, a text-shape
// heuristic estimates one.
func Normalize(out Output) (string, float64) {
	text := out.Text
	conf := out.Confidence

	if len(out.Blocks) > 0 {
		var parts []string
		var sum float64
		var scored int
		for _, b := range out.Blocks {
			if t := strings.TrimSpace(b.Text); t != "" {
				parts = append(parts, t)
			}
			if b.Confidence > 0 {
				sum += b.Confidence
				scored++
			}
		}
		if text == "" {
			text = strings.Join(parts, "\n")
		}
		if conf == 0 && scored > 0 {
			conf = sum / float64(scored)
		}
	}

	text = cleanText(text)
	if conf == 0 {
		conf = heuristicConfidence(text)
	}
	if conf > 1 {
		conf = 1
	}
	return text, conf
}

var (
	reCRLF       = regexp.MustCompile(`\r\n?`)
	reTabs       = regexp.MustCompile(`\t+`)
	reMultiSpace = regexp.MustCompile(` {2,}`)
	reMultiBlank = regexp.MustCompile(`\n{3,}`)
)

// cleanText collapses noisy whitespace. Conservative: keeps line breaks,
// collapses runs of blank lines into one.
func cleanText(s string) string {
	if s == "" {
		return s
	}
	s = reCRLF.ReplaceAllString(s, "\n")
	s = reTabs.ReplaceAllString(s, " ")
	s = reMultiSpace.ReplaceAllString(s, " ")
	s = reMultiBlank.ReplaceAllString(s, "\n\n")
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

var (
	reDateish = regexp.MustCompile(`\b\d{1,2}[./\- ]\d{1,2}[./\- ]\d{2,4}\b`)
	reIDish   = regexp.MustCompile(`\b\d{7,}\b`)
	reSexish  = regexp.MustCompile(`(?i)\b(?:SEX|MALE|FEMALE)\b`)
)

// heuristicConfidence scores decoded text by how strongly it resembles an
// identity document: date-shaped runs, long digit runs and sex markers each
// add a little, enough content adds a little more.
func heuristicConfidence(txt string) float64 {
	score := 0.2 // base
	if reDateish.MatchString(txt) {
		score += 0.2
	}
	if reIDish.MatchString(txt) {
		score += 0.2
	}
	if reSexish.MatchString(txt) {
		score += 0.15
	}
	if len(txt) > 120 {
		score += 0.1
	}
	if score > 1 {
		score = 1
	}
	return score
}
