// Package registration derives a single aircraft registration code from noisy
// OCR text using ordered pattern matching, false-positive suppression, and a
// deterministic OCR error correction.
package registration

import (
	"regexp"
	"strings"
)

// Family identifies the pattern family that matched a candidate.
type Family string

const (
	// FamilyNNumber covers US registrations (N12345).
	FamilyNNumber Family = "N-number"
	// FamilyHyphenated covers country-prefixed registrations (OY-RCM, G-ABCD).
	FamilyHyphenated Family = "Hyphenated"
)

// Candidate is a normalized registration code tagged with its pattern family.
type Candidate struct {
	Code   string
	Family Family
}

// The trailing (?:[^0-9A-Z-]|$) group stands in for a negative lookahead,
// which RE2 does not support: a code is only accepted when it is not
// immediately followed by another alphanumeric or a hyphen. The code itself
// is capture group 1, so the boundary character is never part of the result.
var patterns = []struct {
	family Family
	re     *regexp.Regexp
}{
	// N-numbers: N followed by a leading digit 1-9 and 1-4 more alphanumerics.
	{FamilyNNumber, regexp.MustCompile(`(?i)(N[1-9][0-9A-Z]{1,4})(?:[^0-9A-Z-]|$)`)},
	// Hyphenated: enumerated country prefix, hyphen, 3-5 alphanumerics.
	{FamilyHyphenated, regexp.MustCompile(`(?i)((?:G|OY|SE|PH|D|F|EC|HB|TC|VH|ZK|JA|HL|B|VT|EI|4X|P4|A6|VP|C|LV|LN|SP|CS|RA|HS|RP|9M|PK)-[A-Z0-9]{3,5})(?:[^0-9A-Z-]|$)`)},
}

// falsePositives are strings that match the patterns syntactically but are
// known UI artifacts, not registrations. Checked before the O->0 correction.
var falsePositives = map[string]struct{}{
	"3D-ANSICHT": {},
	"3D-VIEW":    {},
	"D-ANSIC":    {},
	"F-SUR":      {},
	"D-INFO":     {},
	"3D-AI":      {},
	"D-VIEW":     {},
	"F-SHARE":    {},
	"D-MENU":     {},
	"N-MENU":     {},
}

var whitespaceRE = regexp.MustCompile(`\s+`)

// Normalize collapses whitespace runs to single spaces and trims the ends.
func Normalize(text string) string {
	return strings.TrimSpace(whitespaceRE.ReplaceAllString(text, " "))
}

// Extract returns the first accepted registration candidate in text, scanning
// the N-number family across the whole text before the hyphenated family, in
// left-to-right order within each. The accepted code is uppercased and every
// letter O is replaced with the digit 0, country prefixes included, so
// OY-RCM comes back as 0Y-RCM. The substitution order is
// load-bearing: false positives are matched against the raw uppercased text.
// Returns false when the text holds no acceptable code.
func Extract(text string) (Candidate, bool) {
	text = Normalize(text)
	if text == "" {
		return Candidate{}, false
	}

	for _, p := range patterns {
		for _, m := range p.re.FindAllStringSubmatch(text, -1) {
			code := strings.ToUpper(m[1])
			if _, bad := falsePositives[code]; bad {
				continue
			}
			code = strings.ReplaceAll(code, "O", "0")
			return Candidate{Code: code, Family: p.family}, true
		}
	}
	return Candidate{}, false
}

// ExtractAll returns every distinct accepted candidate in priority-then-
// position order. Extract is ExtractAll's first element; the full list exists
// for diagnostics only.
func ExtractAll(text string) []Candidate {
	text = Normalize(text)
	if text == "" {
		return nil
	}

	var out []Candidate
	seen := make(map[string]struct{})
	for _, p := range patterns {
		for _, m := range p.re.FindAllStringSubmatch(text, -1) {
			code := strings.ToUpper(m[1])
			if _, bad := falsePositives[code]; bad {
				continue
			}
			code = strings.ReplaceAll(code, "O", "0")
			if _, dup := seen[code]; dup {
				continue
			}
			seen[code] = struct{}{}
			out = append(out, Candidate{Code: code, Family: p.family})
		}
	}
	return out
}
