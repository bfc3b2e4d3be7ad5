package ocr

import (
	"regexp"
	"strings"
)

var (
	reCRLF     = regexp.MustCompile(`\r\n?`)
	reTabs     = regexp.MustCompile(`\t+`)
	reWideGap  = regexp.MustCompile(`\s{3,}`)
	reBoxNoise = regexp.MustCompile(`^[_\-=]{3,}$`)
	reFormFeed = regexp.MustCompile(`\f`)
)

// Normalize trims every line, drops blank lines and box-drawing rules, and
// narrows wide in-line gaps to two spaces. Line order is preserved.
func Normalize(s string) string {
	if s == "" {
		return s
	}
	s = reCRLF.ReplaceAllString(s, "\n")
	s = reFormFeed.ReplaceAllString(s, "\n")
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, l := range lines {
		l = strings.TrimSpace(reTabs.ReplaceAllString(l, "  "))
		if l == "" || reBoxNoise.MatchString(l) {
			continue
		}
		out = append(out, reWideGap.ReplaceAllString(l, "  "))
	}
	return strings.Join(out, "\n")
}

// nonSpaceLen counts the characters of s that are not whitespace.
func nonSpaceLen(s string) int {
	n := 0
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' && r != '\f' {
			n++
		}
	}
	return n
}
