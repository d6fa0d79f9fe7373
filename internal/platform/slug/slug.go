package slug

import (
	"regexp"
	"strings"
)

var nonAlphaNum = regexp.MustCompile(`[^a-z0-9]+`)

func Make(input string) string {
	return makeWith(input, "-", "untitled")
}

// Label normalizes a classification label to its wire form, e.g. "Dried Squid" -> "dried_squid".
func Label(input string) string {
	return makeWith(input, "_", "")
}

func makeWith(input, sep, fallback string) string {
	s := strings.ToLower(strings.TrimSpace(input))
	s = nonAlphaNum.ReplaceAllString(s, sep)
	s = strings.Trim(s, sep)
	if s == "" {
		return fallback
	}
	return s
}
