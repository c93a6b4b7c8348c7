package address

import "strings"

const maxCandidates = 10

// Candidates derives the ordered geocode query variants for an address,
// most specific first. fallbackCity and country suffix the anchored
// variants ("Hồ Chí Minh", "Việt Nam" in production). Variants are deduped
// case-insensitively and capped at 10.
func Candidates(addr, fallbackCity, country string) []string {
	n := Normalize(addr)
	if n == "" {
		return nil
	}

	stripped := StripAdministrative(n)
	strippedNoHouse := RemoveLeadingHouseNumber(stripped)

	// Do not re-anchor variants that still carry the city.
	city := fallbackCity
	if strings.Contains(NormalizeKey(stripped), NormalizeKey(fallbackCity)) {
		city = ""
	}

	variants := []string{
		join(n, country),
		n,
		join(stripped, city, country),
		stripped,
		join(strippedNoHouse, city, country),
		strippedNoHouse,
	}

	if ascii := RemoveDiacritics(n); ascii != n {
		variants = append(variants, join(ascii, RemoveDiacritics(country)))
	}

	out := make([]string, 0, len(variants))
	seen := make(map[string]struct{}, len(variants))
	for _, v := range variants {
		v = strings.Trim(strings.TrimSpace(v), ",")
		if v == "" {
			continue
		}
		k := strings.ToLower(v)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, v)
		if len(out) == maxCandidates {
			break
		}
	}

	return out
}

func join(parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, strings.TrimSpace(p))
		}
	}
	return strings.Join(kept, ", ")
}
