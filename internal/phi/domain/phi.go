// Package domain defines PHI categories and the results produced by the detector.
package domain

// PHI categories reported by the default matcher set.
const (
	TypeSSN     = "ssn"
	TypeMRN     = "mrn"
	TypeEmail   = "email"
	TypePhone   = "phone"
	TypeDOB     = "dob"
	TypeName    = "name"
	TypeAddress = "address"
)

// Matcher recognises one PHI category in free text.
type Matcher interface {
	// Type returns the category reported when the matcher fires.
	Type() string
	// Match reports whether text contains the category.
	Match(text string) bool
	// Redact replaces every occurrence in text with a placeholder.
	Redact(text string) string
}

// ScanResult lists every PHI category found in a text, sorted and de-duplicated.
type ScanResult struct {
	HasPHI bool     `json:"hasPHI"`
	Types  []string `json:"types"`
}

// Issue reports a field that still contains PHI.
type Issue struct {
	Field string   `json:"field"`
	Types []string `json:"types"`
}

// DeIdentificationReport is the outcome of checking a structured record.
type DeIdentificationReport struct {
	IsDeIdentified bool    `json:"isDeIdentified"`
	Issues         []Issue `json:"issues"`
}
