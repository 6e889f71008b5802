package extract

import (
	"regexp"
	"strings"

	"github.com/0xKimutai/IDSnap/constants"
)

// The heuristic scanner handles crowded card layouts where labels are
// unreliable. It walks trimmed non-empty lines once, top to bottom, applying
// per-field detectors in a fixed precedence order. A field is never
// overwritten once set, by either strategy.

// nameWindow bounds how deep into the document a bare name line may appear.
const nameWindow = 10

// boilerplate lines are institutional headers, never field values.
var boilerplate = []string{
	"REPUBLIC OF",
	"JAMHURI YA",
	"NATIONAL IDENTITY CARD",
	"EAST AFRICAN COMMUNITY",
	"GOVERNMENT OF",
}

// labelKeywords mark a line as carrying some field's label; such lines are
// excluded from bare-name detection.
var labelKeywords = []string{
	"ID", "SERIAL", "DATE", "BIRTH", "ISSUE", "EXPIRY", "SEX", "GENDER",
	"DISTRICT", "PLACE", "NATIONALITY", "ADDRESS", "SIGN", "NAME", "NAMES",
	"HOLDER",
}

var (
	reDate        = regexp.MustCompile(`\b\d{1,2}[./\- ]\d{1,2}[./\- ]\d{2,4}\b`)
	reDigitRun    = regexp.MustCompile(`\d{8,}`)
	reBareName    = regexp.MustCompile(`^[A-Za-z][A-Za-z .,'-]+$`)
	reAlphaOnly   = regexp.MustCompile(`^[A-Za-z][A-Za-z .'-]*$`)
	reNonNameChar = regexp.MustCompile(`[^A-Za-z ]`)
	reSpaces      = regexp.MustCompile(`\s+`)

	reIDInline     = regexp.MustCompile(`(?i)\bI\.?D\.?\s*(?:NO|NUMBER)?\s*[:;.]\s*([A-Z0-9]{7,})`)
	reIDLabelOnly  = regexp.MustCompile(`(?i)\bI\.?D\.?\s*(?:NO|NUMBER)\s*[:;.]?\s*$`)
	reSerialInline = regexp.MustCompile(`(?i)\bSERIAL\s*(?:NO|NUMBER)?\s*[:;.]?\s*([A-Z0-9]{7,})`)
	reSerialLabel  = regexp.MustCompile(`(?i)\bSERIAL\s*(?:NO|NUMBER)?\s*[:;.]?\s*$`)
	reSerialWord   = regexp.MustCompile(`(?i)\bSERIAL\b`)
	reAlnumValue   = regexp.MustCompile(`^[A-Z0-9]{7,}$`)

	reBirthLabel  = regexp.MustCompile(`(?i)\b(?:DATE\s+OF\s+BIRTH|D\.?O\.?B)\b`)
	reIssueLabel  = regexp.MustCompile(`(?i)\b(?:DATE\s+OF\s+ISSUE|ISSUED?\s+ON)\b`)
	reBirthWord   = regexp.MustCompile(`(?i)\bBIRTH\b`)
	reIssueWord   = regexp.MustCompile(`(?i)\bISSUE\b`)
	reSexInline   = regexp.MustCompile(`(?i)\b(?:SEX|GENDER)\s*[:;.]?\s*(MALE|FEMALE|M|F)\b`)
	reDistrictLbl = regexp.MustCompile(`(?i)\bDISTRICT\s+OF\s+BIRTH\s*[:;.]?\s*(.*)$`)
	rePlaceLbl    = regexp.MustCompile(`(?i)\bPLACE\s+OF\s+ISSUE\s*[:;.]?\s*(.*)$`)
	reSignWord    = regexp.MustCompile(`(?i)\bSIGN(?:ATURE)?\b`)
)

type scanState struct {
	res   *Result
	lines []string
	// keys records scanner-found fields in discovery order.
	keys []string
	// unclaimed collects date strings no rule assigned; the last-resort pass
	// fills birth before issue from them.
	unclaimed []string
	// dateTaken marks lines whose date was already claimed by a label on the
	// line above, so the positional rules do not reassign it.
	dateTaken map[int]bool
}

func (s *scanState) has(key string) bool {
	_, ok := s.res.Fields[key]
	return ok
}

func (s *scanState) set(key, value string) bool {
	value = strings.TrimSpace(value)
	if value == "" || s.has(key) {
		return false
	}
	s.res.Fields[key] = value
	s.keys = append(s.keys, key)
	return true
}

// next returns the trimmed line after idx, or "".
func (s *scanState) next(idx int) string {
	if idx+1 < len(s.lines) {
		return s.lines[idx+1]
	}
	return ""
}

// detectors run in this precedence for every line; each stops at the first
// value it yields for its field.
var detectors = []func(s *scanState, line string, idx int){
	detectName,
	detectIDNumber,
	detectSerialNumber,
	detectDates,
	detectSex,
	detectDistrictOfBirth,
	detectPlaceOfIssue,
	detectHoldersSign,
}

// scan fills fields the anchored passes missed. Returns the keys it set.
func scan(res *Result, rawText string) []string {
	s := &scanState{res: res, dateTaken: make(map[int]bool)}
	for _, raw := range strings.Split(rawText, "\n") {
		if line := strings.TrimSpace(raw); line != "" {
			s.lines = append(s.lines, line)
		}
	}

	for idx, line := range s.lines {
		if skipLine(line) {
			continue
		}
		for _, d := range detectors {
			d(s, line, idx)
		}
	}

	// Last resort: unclaimed dates fill whichever slot is still empty,
	// birth before issue.
	for _, date := range s.unclaimed {
		switch {
		case !s.has(constants.FieldDateOfBirth):
			s.set(constants.FieldDateOfBirth, date)
		case !s.has(constants.FieldDateOfIssue):
			s.set(constants.FieldDateOfIssue, date)
		}
	}

	return s.keys
}

func skipLine(line string) bool {
	if len(line) < 3 {
		// Standalone M/F lines are a legitimate sex value on crowded cards.
		u := strings.ToUpper(line)
		return u != "M" && u != "F"
	}
	upper := strings.ToUpper(line)
	for _, kw := range boilerplate {
		if strings.Contains(upper, kw) {
			return true
		}
	}
	return false
}

// detectName accepts a bare two-token letters line within the early window,
// excluding anything that carries another field's label keyword.
func detectName(s *scanState, line string, idx int) {
	if s.has(constants.FieldName) || idx >= nameWindow {
		return
	}
	upper := strings.ToUpper(line)
	for _, kw := range labelKeywords {
		if containsWord(upper, kw) {
			return
		}
	}
	stripped := strings.TrimSpace(reNonNameChar.ReplaceAllString(line, " "))
	stripped = reSpaces.ReplaceAllString(stripped, " ")
	if len(stripped) <= 5 || !reBareName.MatchString(stripped) {
		return
	}
	if len(strings.Fields(stripped)) < 2 {
		return
	}
	s.set(constants.FieldName, strings.ToUpper(stripped))
}

func detectIDNumber(s *scanState, line string, idx int) {
	if s.has(constants.FieldIDNumber) {
		return
	}
	if m := reIDInline.FindStringSubmatch(line); m != nil {
		s.set(constants.FieldIDNumber, strings.ToUpper(m[1]))
		return
	}
	if reIDLabelOnly.MatchString(line) {
		if next := strings.ToUpper(s.next(idx)); reAlnumValue.MatchString(next) {
			s.set(constants.FieldIDNumber, next)
			return
		}
	}
	// Positional fallback: the longest digit run of 8+ on the line, skipping
	// runs that are really dates. Serial-labelled lines belong to the serial
	// detector below.
	if reSerialWord.MatchString(line) {
		return
	}
	if run := longestDigitRun(line); run != "" {
		s.set(constants.FieldIDNumber, run)
	}
}

func detectSerialNumber(s *scanState, line string, idx int) {
	if s.has(constants.FieldSerialNumber) {
		return
	}
	if m := reSerialInline.FindStringSubmatch(line); m != nil {
		s.set(constants.FieldSerialNumber, strings.ToUpper(m[1]))
		return
	}
	if reSerialLabel.MatchString(line) {
		if next := strings.ToUpper(s.next(idx)); reAlnumValue.MatchString(next) {
			s.set(constants.FieldSerialNumber, next)
		}
	}
}

func detectDates(s *scanState, line string, idx int) {
	if s.dateTaken[idx] {
		return
	}
	dates := reDate.FindAllString(line, -1)

	// Label-anchored: value on the same line after the label, or on the next.
	if reBirthLabel.MatchString(line) {
		if len(dates) > 0 {
			s.set(constants.FieldDateOfBirth, dates[0])
			dates = dates[1:]
		} else if d := reDate.FindString(s.next(idx)); d != "" {
			if s.set(constants.FieldDateOfBirth, d) {
				s.dateTaken[idx+1] = true
			}
		}
	}
	if reIssueLabel.MatchString(line) {
		if len(dates) > 0 {
			s.set(constants.FieldDateOfIssue, dates[0])
			dates = dates[1:]
		} else if d := reDate.FindString(s.next(idx)); d != "" {
			if s.set(constants.FieldDateOfIssue, d) {
				s.dateTaken[idx+1] = true
			}
		}
	}

	for _, d := range dates {
		switch {
		// Context keyword on the line decides the field.
		case reBirthWord.MatchString(line):
			if !s.set(constants.FieldDateOfBirth, d) {
				s.unclaimed = append(s.unclaimed, d)
			}
		case reIssueWord.MatchString(line):
			if !s.set(constants.FieldDateOfIssue, d) {
				s.unclaimed = append(s.unclaimed, d)
			}
		// Positional: dates in the first half of the document default to
		// birth, later ones to issue.
		case idx < len(s.lines)/2 || len(s.lines) == 1:
			if !s.set(constants.FieldDateOfBirth, d) {
				s.unclaimed = append(s.unclaimed, d)
			}
		default:
			if !s.set(constants.FieldDateOfIssue, d) {
				s.unclaimed = append(s.unclaimed, d)
			}
		}
	}
}

func detectSex(s *scanState, line string, idx int) {
	if s.has(constants.FieldSex) {
		return
	}
	if m := reSexInline.FindStringSubmatch(line); m != nil {
		s.set(constants.FieldSex, strings.ToUpper(m[1][:1]))
		return
	}
	upper := strings.ToUpper(strings.TrimSpace(line))
	switch upper {
	case "M", "F":
		s.set(constants.FieldSex, upper)
		return
	}
	for _, tok := range strings.Fields(upper) {
		if tok == "MALE" || tok == "FEMALE" {
			s.set(constants.FieldSex, tok[:1])
			return
		}
	}
}

func detectDistrictOfBirth(s *scanState, line string, idx int) {
	detectLabeledText(s, constants.FieldDistrictOfBirth, reDistrictLbl, line, idx)
}

func detectPlaceOfIssue(s *scanState, line string, idx int) {
	detectLabeledText(s, constants.FieldPlaceOfIssue, rePlaceLbl, line, idx)
}

// detectLabeledText takes the value after the label on the same line, or the
// following line when it is alphabetic-only and not itself a label.
func detectLabeledText(s *scanState, key string, label *regexp.Regexp, line string, idx int) {
	if s.has(key) {
		return
	}
	m := label.FindStringSubmatch(line)
	if m == nil {
		return
	}
	if v := strings.TrimSpace(m[1]); v != "" && reAlphaOnly.MatchString(v) {
		s.set(key, strings.ToUpper(v))
		return
	}
	next := s.next(idx)
	if next == "" || !reAlphaOnly.MatchString(next) || looksLikeLabel(next) {
		return
	}
	s.set(key, strings.ToUpper(next))
}

func detectHoldersSign(s *scanState, line string, idx int) {
	if s.has(constants.FieldHoldersSign) {
		return
	}
	if reSignWord.MatchString(line) {
		s.set(constants.FieldHoldersSign, constants.SignPresent)
	}
}

func looksLikeLabel(line string) bool {
	upper := strings.ToUpper(line)
	for _, kw := range labelKeywords {
		if containsWord(upper, kw) {
			return true
		}
	}
	return false
}

// containsWord reports whether upper contains kw as a whole word.
func containsWord(upper, kw string) bool {
	for start := 0; ; {
		i := strings.Index(upper[start:], kw)
		if i < 0 {
			return false
		}
		i += start
		before := i == 0 || !isWordByte(upper[i-1])
		after := i+len(kw) == len(upper) || !isWordByte(upper[i+len(kw)])
		if before && after {
			return true
		}
		start = i + 1
	}
}

func isWordByte(b byte) bool {
	return b >= 'A' && b <= 'Z' || b >= 'a' && b <= 'z' || b >= '0' && b <= '9'
}

// longestDigitRun returns the longest run of 8+ digits on the line that is
// not part of a date match, or "".
func longestDigitRun(line string) string {
	dateSpans := reDate.FindAllStringIndex(line, -1)
	best := ""
	for _, span := range reDigitRun.FindAllStringIndex(line, -1) {
		if withinAny(span, dateSpans) {
			continue
		}
		if run := line[span[0]:span[1]]; len(run) > len(best) {
			best = run
		}
	}
	return best
}

func withinAny(span []int, spans [][]int) bool {
	for _, s := range spans {
		if span[0] >= s[0] && span[1] <= s[1] {
			return true
		}
	}
	return false
}
