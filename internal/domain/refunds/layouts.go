package refunds

import (
	"fmt"
	"strings"
)

// patternTokens maps calendar pattern tokens onto Go reference-time layout
// elements. Longer tokens come first so "MM" wins over "M".
var patternTokens = []struct {
	token  string
	layout string
}{
	{"YYYY", "2006"},
	{"YY", "06"},
	{"MM", "01"},
	{"M", "1"},
	{"DD", "02"},
	{"D", "2"},
	{"HH", "15"},
	{"mm", "04"},
	{"m", "4"},
	{"ss", "05"},
	{"s", "5"},
}

// LayoutFromPattern converts a pattern such as "MM/DD/YYYY" or "HH:mm" into
// the equivalent Go layout. Separators pass through; any other letter or a
// digit is rejected because Go would read it as part of the layout.
func LayoutFromPattern(pattern string) (string, error) {
	if strings.TrimSpace(pattern) == "" {
		return "", fmt.Errorf("empty date pattern")
	}

	var b strings.Builder
	rest := pattern
	for len(rest) > 0 {
		matched := false
		for _, t := range patternTokens {
			if strings.HasPrefix(rest, t.token) {
				b.WriteString(t.layout)
				rest = rest[len(t.token):]
				matched = true
				break
			}
		}
		if matched {
			continue
		}

		c := rest[0]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			return "", fmt.Errorf("unsupported token %q in date pattern %q", string(c), pattern)
		}
		b.WriteByte(c)
		rest = rest[1:]
	}
	return b.String(), nil
}
