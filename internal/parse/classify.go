package parse

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/joseph-ayodele/docfields/constants"
)

// Scheme selects a rule table and confidence floor for the classifier.
type Scheme string

const (
	// SchemeStandard scores invoice, purchase_order, resume and id_card and
	// requires the winner to reach 2 points.
	SchemeStandard Scheme = "standard"
	// SchemeLegacy scores invoice, resume and id_card only and accepts any
	// winner with a positive score.
	SchemeLegacy Scheme = "legacy"
)

// ParseScheme maps a configuration value onto a Scheme.
func ParseScheme(s string) (Scheme, error) {
	switch Scheme(strings.ToLower(strings.TrimSpace(s))) {
	case "", SchemeStandard:
		return SchemeStandard, nil
	case SchemeLegacy:
		return SchemeLegacy, nil
	default:
		return "", fmt.Errorf("unknown classifier scheme %q", s)
	}
}

// Scores holds the accumulated rule weight per document type.
type Scores map[constants.DocumentType]int

// rule adds Weight to Type when Match holds for the lower-cased text.
type rule struct {
	Name   string
	Type   constants.DocumentType
	Weight int
	Match  func(t string) bool
}

func has(kw string) func(string) bool {
	return func(t string) bool { return strings.Contains(t, kw) }
}

func hasAny(kws ...string) func(string) bool {
	return func(t string) bool { return containsAny(t, kws) }
}

func hasAll(kws ...string) func(string) bool {
	return func(t string) bool {
		for _, kw := range kws {
			if !strings.Contains(t, kw) {
				return false
			}
		}
		return true
	}
}

func matches(re *regexp.Regexp) func(string) bool {
	return re.MatchString
}

var (
	rePONumberish = regexp.MustCompile(`po[-\s]\d`)
	reYearRange   = regexp.MustCompile(`20\d{2}\s*[-–]\s*20\d{2}`)
)

var standardRules = []rule{
	{"purchase order", constants.PurchaseOrder, 5, has("purchase order")},
	{"po number", constants.PurchaseOrder, 3, has("po number")},
	{"po-prefixed number", constants.PurchaseOrder, 2, matches(rePONumberish)},
	{"delivery date", constants.PurchaseOrder, 2, has("delivery date")},

	{"invoice", constants.Invoice, 3, has("invoice")},
	{"bill to", constants.Invoice, 3, has("bill to")},
	{"invoice no", constants.Invoice, 2, has("invoice no")},
	{"invoice number", constants.Invoice, 2, has("invoice number")},

	{"resume heading", constants.Resume, 4, hasAny("curriculum vitae", "resume")},
	{"experience section", constants.Resume, 3, hasAny("work experience", "professional experience")},
	{"education and skills", constants.Resume, 3, hasAll("education", "skills")},
	{"grade point", constants.Resume, 2, hasAny("cgpa", "gpa")},
	{"certifications", constants.Resume, 1, has("certifications")},

	{"id card heading", constants.IDCard, 5, hasAny("identity card", "id card")},
	{"employee id", constants.IDCard, 3, has("employee id")},
	{"validity", constants.IDCard, 2, hasAny("valid until", "valid upto")},
	{"designation and department", constants.IDCard, 2, hasAll("designation", "department")},
	{"blood group", constants.IDCard, 2, has("blood group")},
	{"year range", constants.IDCard, 2, matches(reYearRange)},
}

var legacyRules = []rule{
	{"invoice", constants.Invoice, 3, has("invoice")},
	{"bill to", constants.Invoice, 2, has("bill to")},
	{"gst", constants.Invoice, 2, has("gst")},
	{"total", constants.Invoice, 1, has("total")},
	{"amount", constants.Invoice, 1, has("amount")},

	{"education", constants.Resume, 2, has("education")},
	{"experience", constants.Resume, 2, has("experience")},
	{"skills", constants.Resume, 2, has("skills")},

	{"student id", constants.IDCard, 1, has("student id")},
	{"employee id", constants.IDCard, 1, has("employee id")},
	{"identity", constants.IDCard, 1, has("identity")},
	{"card no", constants.IDCard, 1, has("card no")},
	{"roll", constants.IDCard, 1, has("roll")},
	{"register", constants.IDCard, 1, has("register")},
	{"valid upto", constants.IDCard, 1, has("valid upto")},
	{"principal", constants.IDCard, 1, has("principal")},
	{"year range", constants.IDCard, 2, matches(reYearRange)},
}

// ClassifierConfig configures a Classifier.
type ClassifierConfig struct {
	Scheme Scheme
}

// Classifier assigns a DocumentType to raw text. It holds only immutable rule
// tables, so one value may be shared across goroutines.
type Classifier struct {
	scheme     Scheme
	candidates []constants.DocumentType
	rules      []rule
	// floor is the minimum winning score; below it the text is general.
	floor int
}

func NewClassifier(cfg ClassifierConfig) *Classifier {
	if cfg.Scheme == SchemeLegacy {
		return &Classifier{
			scheme:     SchemeLegacy,
			candidates: []constants.DocumentType{constants.Invoice, constants.Resume, constants.IDCard},
			rules:      legacyRules,
			floor:      1,
		}
	}
	return &Classifier{
		scheme:     SchemeStandard,
		candidates: []constants.DocumentType{constants.Invoice, constants.PurchaseOrder, constants.Resume, constants.IDCard},
		rules:      standardRules,
		floor:      2,
	}
}

var defaultClassifier = NewClassifier(ClassifierConfig{})

// Classify runs the standard scheme.
func Classify(text string) constants.DocumentType {
	return defaultClassifier.Classify(text)
}

func (c *Classifier) Scheme() Scheme { return c.scheme }

// Score evaluates every rule independently against the lower-cased text.
func (c *Classifier) Score(text string) Scores {
	t := strings.ToLower(text)
	scores := make(Scores, len(c.candidates))
	for _, dt := range c.candidates {
		scores[dt] = 0
	}
	for _, r := range c.rules {
		if r.Match(t) {
			scores[r.Type] += r.Weight
		}
	}
	return scores
}

// Classify returns the highest scoring type, earlier candidates winning ties,
// or general when the best score is under the floor.
func (c *Classifier) Classify(text string) constants.DocumentType {
	scores := c.Score(text)
	best, bestScore := constants.General, -1
	for _, dt := range c.candidates {
		if scores[dt] > bestScore {
			best, bestScore = dt, scores[dt]
		}
	}
	if bestScore < c.floor {
		return constants.General
	}
	return best
}
