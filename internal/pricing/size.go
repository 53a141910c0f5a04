package pricing

import (
	"regexp"
	"strconv"
	"strings"
)

var sizePattern = regexp.MustCompile(`^(\d+(?:\.\d+)?)(?:x|by|\*)(\d+(?:\.\d+)?)(?:cm|mm)?$`)

// NormalizeSize canonicalizes tile size tokens so "60 X 60", "60by60" and "60×60cm"
// all compare equal to "60x60". Unrecognized tokens are lower-cased with spaces removed.
func NormalizeSize(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, "×", "x")
	s = strings.Join(strings.Fields(s), "")
	m := sizePattern.FindStringSubmatch(s)
	if m == nil {
		return s
	}
	return trimDimension(m[1]) + "x" + trimDimension(m[2])
}

func trimDimension(v string) string {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return v
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
