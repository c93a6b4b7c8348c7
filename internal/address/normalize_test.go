package address

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"city abbreviation dotted", "123 Nguyễn Trãi, Q.5, TP.HCM", "123 Nguyễn Trãi, Quận 5, Hồ Chí Minh"},
		{"city abbreviation spaced", "12 Lê Lợi, TP. HCM", "12 Lê Lợi, Hồ Chí Minh"},
		{"city abbreviation glued", "12 Lê Lợi, TPHCM", "12 Lê Lợi, Hồ Chí Minh"},
		{"bare hcm", "12 Lê Lợi, HCM", "12 Lê Lợi, Hồ Chí Minh"},
		{"ward abbreviation", "45 CMT8, P.7, Quận 3", "45 CMT8, Phường 7, Quận 3"},
		{"parenthesised noise", "12 Lê Lợi (gần chợ), Quận 1", "12 Lê Lợi, Quận 1"},
		{"whitespace and comma runs", "  12   Lê Lợi ,, Quận 1 , ", "12 Lê Lợi, Quận 1"},
		{"empty", "   ", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Normalize(tc.in))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"123 Nguyễn Trãi, Q.5, TP.HCM",
		"45 CMT8 ,, P.7,Quận 3",
		"12 Lê Lợi (khu B), TPHCM",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestRemoveDiacritics(t *testing.T) {
	assert.Equal(t, "Ho Chi Minh", RemoveDiacritics("Hồ Chí Minh"))
	assert.Equal(t, "Nguyen Trai", RemoveDiacritics("Nguyễn Trãi"))
	// đ has no combining decomposition and survives folding.
	assert.Equal(t, "đuong", RemoveDiacritics("đường"))
	assert.Equal(t, "", RemoveDiacritics(""))
}

func TestNormalizeKey(t *testing.T) {
	a := NormalizeKey("123 Nguyễn Trãi, Q.5, TP.HCM")
	b := NormalizeKey("  123  nguyen trai, quận 5, Hồ Chí Minh ")
	assert.Equal(t, a, b)
	assert.Equal(t, "123 nguyen trai, quan 5, ho chi minh", a)
}

func TestStripAdministrative(t *testing.T) {
	got := StripAdministrative("123 Nguyễn Trãi, Phường 3, Quận 5, Hồ Chí Minh")
	assert.Equal(t, "123 Nguyễn Trãi, Hồ Chí Minh", got)

	got = StripAdministrative("88 Lê Lợi, Huyện Bình Chánh, Thành phố Thủ Đức")
	assert.Equal(t, "88 Lê Lợi", got)
}

func TestRemoveLeadingHouseNumber(t *testing.T) {
	assert.Equal(t, "Nguyễn Trãi", RemoveLeadingHouseNumber("123 Nguyễn Trãi"))
	assert.Equal(t, "2 Trần Phú", RemoveLeadingHouseNumber("45/2 Trần Phú"))
	assert.Equal(t, "Lê Lợi", RemoveLeadingHouseNumber("6- Lê Lợi"))
	assert.Equal(t, "Nguyễn Huệ", RemoveLeadingHouseNumber("Nguyễn Huệ"))
}

func TestTooVague(t *testing.T) {
	assert.True(t, TooVague(""))

	vague := []string{"gần chợ", "nhà tôi", "khu A"}
	for _, in := range vague {
		assert.True(t, TooVague(in), "expected vague: %q", in)
	}

	specific := []string{
		"123 Nguyễn Trãi",                          // has a digit
		"đường Nguyễn Huệ",                         // street keyword
		"Vincom Đồng Khởi",                         // POI keyword
		"ngã tư hàng xanh khu trung tâm thành phố", // long enough
	}
	for _, in := range specific {
		assert.False(t, TooVague(in), "expected specific: %q", in)
	}
}

func TestComposeDetail(t *testing.T) {
	got := ComposeDetail("123 Nguyễn Trãi", "Phường 3", "Quận 5", "Hồ Chí Minh")
	assert.Equal(t, "123 Nguyễn Trãi, Phường 3, Quận 5, Hồ Chí Minh", got)

	// Hints already present in the detail text are not repeated.
	got = ComposeDetail("123 Nguyễn Trãi, Quận 5", "", "Quận 5", "Hồ Chí Minh")
	assert.Equal(t, "123 Nguyễn Trãi, Quận 5, Hồ Chí Minh", got)
}

func TestCandidates(t *testing.T) {
	got := Candidates("123 Nguyễn Trãi, Q.5, TP.HCM", "Hồ Chí Minh", "Việt Nam")
	require.NotEmpty(t, got)

	assert.Equal(t, "123 Nguyễn Trãi, Quận 5, Hồ Chí Minh, Việt Nam", got[0])
	assert.Equal(t, "123 Nguyễn Trãi, Quận 5, Hồ Chí Minh", got[1])

	seen := map[string]struct{}{}
	for _, c := range got {
		k := strings.ToLower(c)
		if _, ok := seen[k]; ok {
			t.Fatalf("duplicate candidate %q", c)
		}
		seen[k] = struct{}{}
	}
	assert.LessOrEqual(t, len(got), 10)
}

func TestCandidatesFallbackOrder(t *testing.T) {
	// Retries step down in specificity: full address, then the stripped
	// form with and without the city anchor, then street-level without
	// the house number, and last the diacritic-free form.
	got := Candidates("123 Nguyễn Trãi, P.7, Q.5, TP.HCM", "Hồ Chí Minh", "Việt Nam")
	assert.Equal(t, []string{
		"123 Nguyễn Trãi, Phường 7, Quận 5, Hồ Chí Minh, Việt Nam",
		"123 Nguyễn Trãi, Phường 7, Quận 5, Hồ Chí Minh",
		"123 Nguyễn Trãi, Hồ Chí Minh, Việt Nam",
		"123 Nguyễn Trãi, Hồ Chí Minh",
		"Nguyễn Trãi, Hồ Chí Minh, Việt Nam",
		"Nguyễn Trãi, Hồ Chí Minh",
		"123 Nguyen Trai, Phuong 7, Quan 5, Ho Chi Minh, Viet Nam",
	}, got)
}

func TestCandidatesEmpty(t *testing.T) {
	assert.Nil(t, Candidates("   ", "Hồ Chí Minh", "Việt Nam"))
}

func TestCandidatesDiacriticFallback(t *testing.T) {
	got := Candidates("12 Lê Lợi, Quận 1", "Hồ Chí Minh", "Việt Nam")
	require.NotEmpty(t, got)

	var found bool
	for _, c := range got {
		if c == "12 Le Loi, Quan 1, Viet Nam" {
			found = true
		}
	}
	assert.True(t, found, "expected diacritic-stripped fallback, got %v", got)
}
