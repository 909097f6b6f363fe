package service

import (
	"fmt"
	"regexp"
	"strings"

	phiDomain "github.com/medmarket/phiguard/internal/phi/domain"
)

// RegexMatcher is a Matcher backed by a single regular expression.
type RegexMatcher struct {
	phiType string
	re      *regexp.Regexp
	tag     string
}

// NewRegexMatcher compiles pattern for phiType. An empty tag defaults to "<TYPE>-REDACTED".
func NewRegexMatcher(phiType, pattern, tag string) (*RegexMatcher, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern for %s: %w", phiType, err)
	}
	if tag == "" {
		tag = strings.ToUpper(phiType) + "-REDACTED"
	}
	return &RegexMatcher{phiType: phiType, re: re, tag: tag}, nil
}

func (m *RegexMatcher) Type() string {
	return m.phiType
}

func (m *RegexMatcher) Match(text string) bool {
	return m.re.MatchString(text)
}

func (m *RegexMatcher) Redact(text string) string {
	return m.re.ReplaceAllLiteralString(text, "["+m.tag+"]")
}

// defaultPatterns favour recall over precision.
var defaultPatterns = []struct {
	phiType string
	pattern string
	tag     string
}{
	// 123-45-6789, 123 45 6789, and labelled 9-digit runs
	{phiDomain.TypeSSN, `\b\d{3}[-\s]\d{2}[-\s]\d{4}\b|(?i:\bSSN[:\s#]*\d{9}\b)`, "SSN-REDACTED"},

	// MRN 001234, medical record number: A-55821
	{
		phiDomain.TypeMRN,
		`(?i)\b(?:MRN|medical\s*record(?:\s*(?:number|no\.?|#))?)[:\s#]*[A-Z0-9\-]{4,15}\b`,
		"MRN-REDACTED",
	},

	{phiDomain.TypeEmail, `\b[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}\b`, "EMAIL-REDACTED"},

	// (555) 123-4567, 555-123-4567, 555.123.4567, +1 555 123 4567
	{
		phiDomain.TypePhone,
		`(?:\+?1[-.\s]?)?(?:\(\d{3}\)\s*\d{3}[-.\s]?\d{4}|\b\d{3}[-.\s]?\d{3}[-.\s]?\d{4}\b)`,
		"PHONE-REDACTED",
	},

	// DOB: 01/02/1980, date of birth 1980-01-02
	{
		phiDomain.TypeDOB,
		`(?i)\b(?:DOB|D\.O\.B\.?|date\s*of\s*birth|born(?:\s+on)?)[:\s]*` +
			`(?:\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4}|\d{4}-\d{2}-\d{2})\b`,
		"DOB-REDACTED",
	},

	// Titled or labelled names and "Last, First"
	{
		phiDomain.TypeName,
		`\b(?:Mr|Mrs|Ms|Miss|Dr)\.?\s+[A-Z][a-z]+(?:\s+[A-Z][a-z]+)?\b` +
			`|(?i:\b(?:patient|name|full\s*name)\s*:\s*)[A-Z][a-z]+(?:\s+[A-Z][a-z]+)+\b` +
			`|\b[A-Z][a-z]+,\s+[A-Z][a-z]+\b`,
		"NAME-REDACTED",
	},

	// 742 Evergreen Terrace, 12 Main St, 9 Elm Street Apt 4
	{
		phiDomain.TypeAddress,
		`\b\d{1,6}\s+[A-Z][a-z]+(?:\s+[A-Z][a-z]+)*\s+` +
			`(?:Street|St|Avenue|Ave|Boulevard|Blvd|Drive|Dr|Road|Rd|Lane|Ln|Court|Ct|Way|Place|Pl|` +
			`Circle|Cir|Terrace|Ter|Parkway|Pkwy|Highway|Hwy)\b\.?|\b\d{5}-\d{4}\b`,
		"ADDRESS-REDACTED",
	},
}

// DefaultMatchers returns the built-in matcher set.
func DefaultMatchers() []phiDomain.Matcher {
	matchers := make([]phiDomain.Matcher, 0, len(defaultPatterns))
	for _, p := range defaultPatterns {
		m, err := NewRegexMatcher(p.phiType, p.pattern, p.tag)
		if err != nil {
			panic(err)
		}
		matchers = append(matchers, m)
	}
	return matchers
}
