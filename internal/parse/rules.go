package parse

import (
	"regexp"
	"strings"
)

// Rule finds one field value in raw text, or nil.
type Rule interface {
	Find(text string) *string
}

// RuleFunc adapts a function to Rule.
type RuleFunc func(text string) *string

func (f RuleFunc) Find(text string) *string { return f(text) }

// Pattern is a case-insensitive regex whose first group is the value.
type Pattern struct {
	re *regexp.Regexp
}

// NewPattern compiles expr with case folding. It panics on a bad expression,
// like regexp.MustCompile; patterns are package-level literals.
func NewPattern(expr string) Pattern {
	return Pattern{re: regexp.MustCompile(`(?i)` + expr)}
}

func (p Pattern) Find(text string) *string {
	m := p.re.FindStringSubmatch(text)
	if len(m) < 2 {
		return nil
	}
	v := strings.TrimSpace(m[1])
	return &v
}

// LabelThenNextLine reads the value from the line after "Label:". The value is
// never taken from the label's own line; ID card templates print the label and
// the value on separate lines.
type LabelThenNextLine struct {
	Label string
	re    *regexp.Regexp
}

// NewLabelThenNextLine builds the rule for a label regex such as `Blood\s*Group`.
func NewLabelThenNextLine(label string) LabelThenNextLine {
	return LabelThenNextLine{
		Label: label,
		re:    regexp.MustCompile(`(?i)` + label + `\s*:\s*\n([^\n]+)`),
	}
}

func (r LabelThenNextLine) Find(text string) *string {
	m := r.re.FindStringSubmatch(text)
	if len(m) < 2 {
		return nil
	}
	v := strings.TrimSpace(m[1])
	if v == "" {
		return nil
	}
	return &v
}

// FirstOf tries rules in order and returns the first hit.
func FirstOf(rules ...Rule) Rule {
	return RuleFunc(func(text string) *string {
		for _, r := range rules {
			if v := r.Find(text); v != nil {
				return v
			}
		}
		return nil
	})
}

// Money wraps a rule and cleans its result with CleanAmount.
func Money(r Rule) Rule {
	return RuleFunc(func(text string) *string {
		v := r.Find(text)
		if v == nil {
			return nil
		}
		c := CleanAmount(*v)
		if c == "" {
			return nil
		}
		return &c
	})
}
