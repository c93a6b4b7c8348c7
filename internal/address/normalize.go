// Package address canonicalizes free-text Vietnamese delivery addresses and
// derives the query variants used for geocoding. Everything here is pure
// string manipulation: no I/O, no shared state.
package address

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	reParens      = regexp.MustCompile(`\([^)]*\)`)
	reCityAbbrev  = regexp.MustCompile(`(?i)\bTP\.?\s*HCM\b|\bTPHCM\b`)
	reCityBare    = regexp.MustCompile(`(?i)\bHCM\b`)
	reDistrict    = regexp.MustCompile(`(?i)\bQ\.\s*`)
	reWard        = regexp.MustCompile(`(?i)\bP\.\s*`)
	reSpaces      = regexp.MustCompile(`\s+`)
	reCommaRuns   = regexp.MustCompile(`(\s*,)+`)
	reHouseNumber = regexp.MustCompile(`^\s*\d+\s*[-/\\]?\s*`)
	reDistrictNum = regexp.MustCompile(`^q\.?\s*\d+`)
	reAnyDigit    = regexp.MustCompile(`\d`)
)

// Normalize canonicalizes raw address text for geocoding: parenthesised
// noise is dropped, common administrative abbreviations are expanded,
// whitespace and comma runs are collapsed. Idempotent.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}

	s = reParens.ReplaceAllString(s, " ")
	s = reCityAbbrev.ReplaceAllString(s, "Hồ Chí Minh")
	s = reCityBare.ReplaceAllString(s, "Hồ Chí Minh")
	s = reDistrict.ReplaceAllString(s, "Quận ")
	s = reWard.ReplaceAllString(s, "Phường ")

	s = reSpaces.ReplaceAllString(s, " ")
	s = reCommaRuns.ReplaceAllString(s, ",")
	s = strings.ReplaceAll(s, " ,", ",")
	s = strings.ReplaceAll(s, ",", ", ")
	s = reSpaces.ReplaceAllString(s, " ")

	return strings.Trim(strings.TrimSpace(s), ",")
}

// RemoveDiacritics strips combining marks (NFD, drop Mn, NFC), producing an
// ASCII-compatible fallback for providers that mis-handle accented queries.
// The Vietnamese đ/Đ has no combining decomposition and is kept as-is.
func RemoveDiacritics(s string) string {
	if s == "" {
		return s
	}

	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(fold, s)
	if err != nil {
		return s
	}
	return out
}

// NormalizeKey derives the canonical cache/compare key for an address:
// normalized, diacritics-stripped, lowercased, single-spaced. Display text
// must never use this form.
func NormalizeKey(s string) string {
	s = RemoveDiacritics(Normalize(s))
	s = strings.ToLower(strings.TrimSpace(s))
	return reSpaces.ReplaceAllString(s, " ")
}

// StripAdministrative removes ward/district/city qualifier segments from a
// comma-separated address, keeping the city proper so shorter retry queries
// stay anchored. Providers frequently fail on redundantly-qualified
// Vietnamese addresses; the shortened form recovers many of them.
func StripAdministrative(s string) string {
	if strings.TrimSpace(s) == "" {
		return s
	}

	kept := make([]string, 0, 4)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		t := strings.ToLower(part)
		switch {
		case strings.Contains(t, "hồ chí minh"), strings.Contains(t, "ho chi minh"):
			kept = append(kept, part)
		case strings.Contains(t, "phường"), strings.HasPrefix(t, "p "):
		case strings.Contains(t, "quận"), reDistrictNum.MatchString(t):
		case strings.Contains(t, "huyện"):
		case strings.Contains(t, "thành phố"), strings.HasPrefix(t, "tp"):
		default:
			kept = append(kept, part)
		}
	}

	return strings.Join(kept, ", ")
}

// RemoveLeadingHouseNumber drops a leading house-number token ("123 ",
// "45/2 ", "6-8 ") so street-level retries can match when the exact number
// is missing from the provider's data.
func RemoveLeadingHouseNumber(s string) string {
	if strings.TrimSpace(s) == "" {
		return s
	}
	return reHouseNumber.ReplaceAllString(strings.TrimSpace(s), "")
}

// Keyword lists are matched against NormalizeKey output, where combining
// marks are stripped but đ survives folding (it has no decomposition), so
// both spellings of đ-words appear.
var streetKeywords = []string{
	" duong ", " đuong ", " street ", " hem ", " ngo ", " alley ",
	" chung cu ", " toa ", " building ", " khu pho ", " khu dan cu ",
}

var poiKeywords = []string{
	"vincom", "dai hoc", "đai hoc", "benh vien", "cong nghe cao",
	"suoi tien", "metro", " ga ", " tram ",
}

// Minimum key length at which an address is assumed specific enough even
// without a house number or street keyword.
const minSpecificKeyLen = 25

// TooVague reports whether an address lacks any house number, street or
// point-of-interest keyword, and is too short to identify a location.
// Rejecting these up front saves a provider round trip that would only
// return a meaningless centroid or nothing at all.
func TooVague(s string) bool {
	if strings.TrimSpace(s) == "" {
		return true
	}

	key := " " + NormalizeKey(s) + " "

	if reAnyDigit.MatchString(key) {
		return false
	}
	for _, kw := range streetKeywords {
		if strings.Contains(key, kw) {
			return false
		}
	}
	for _, kw := range poiKeywords {
		if strings.Contains(key, kw) {
			return false
		}
	}

	return len(strings.TrimSpace(key)) < minSpecificKeyLen
}

// ComposeDetail joins a detail address with ward/district/province hints,
// skipping hints the detail text already mentions (compared via
// NormalizeKey containment).
func ComposeDetail(detail, ward, district, province string) string {
	detail = Normalize(detail)

	contains := func(part string) bool {
		if detail == "" || part == "" {
			return false
		}
		return strings.Contains(NormalizeKey(detail), NormalizeKey(part))
	}

	parts := make([]string, 0, 4)
	if detail != "" {
		parts = append(parts, detail)
	}
	for _, hint := range []string{ward, district, province} {
		hint = strings.TrimSpace(hint)
		if hint != "" && !contains(hint) {
			parts = append(parts, hint)
		}
	}

	return strings.Join(parts, ", ")
}
