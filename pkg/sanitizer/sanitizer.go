package sanitizer

import (
	"regexp"
	"strings"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

var (
	reKeepSlotChars = regexp.MustCompile(`[^0-9A-Za-z\-]+`)
	reTrimDashes    = regexp.MustCompile(`-+`)
)

func trimAndUpper(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func collapseDashes(s string) string {
	s = reTrimDashes.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// SanitizeSlotNumber normalizes a human-facing slot label to an
// uppercase alphanumeric form: " a 12 " becomes "A-12".
func SanitizeSlotNumber(input string) string {
	p := Pipeline{
		trimAndUpper,
		func(s string) string { return reKeepSlotChars.ReplaceAllString(s, "-") },
		collapseDashes,
	}
	return p.Apply(input)
}
