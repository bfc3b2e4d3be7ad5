package parse

import "regexp"

var (
	reEmail = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	rePhone = regexp.MustCompile(`\+?\d[\d\s\-]{8,}\d`)

	scoreRule = NewPattern(`CGPA[:\s]*([\d.]+/\d+)`)
)

// ExtractResume takes the first non-empty line as the candidate's name and the
// first email, phone and CGPA found anywhere.
func ExtractResume(text string) ResumeFields {
	return ResumeFields{
		Name:  firstLine(text),
		Email: firstMatch(reEmail, text),
		Phone: firstMatch(rePhone, text),
		Score: scoreRule.Find(text),
	}
}

func firstMatch(re *regexp.Regexp, text string) *string {
	m := re.FindString(text)
	if m == "" {
		return nil
	}
	return &m
}
