// Package service implements the PHI detector: a pluggable set of matchers run
// over free text and structured records.
package service

import (
	"fmt"
	"sort"
	"strconv"

	phiDomain "github.com/medmarket/phiguard/internal/phi/domain"
)

// Detector scans text and records for PHI. It is immutable and safe for concurrent use.
type Detector struct {
	matchers []phiDomain.Matcher
}

// NewDetector builds a detector over matchers. With no matchers the default set is used.
func NewDetector(matchers ...phiDomain.Matcher) *Detector {
	if len(matchers) == 0 {
		matchers = DefaultMatchers()
	}
	return &Detector{matchers: matchers}
}

// Scan runs every matcher and returns all matched categories.
func (d *Detector) Scan(text string) phiDomain.ScanResult {
	seen := map[string]struct{}{}
	for _, m := range d.matchers {
		if m.Match(text) {
			seen[m.Type()] = struct{}{}
		}
	}

	types := make([]string, 0, len(seen))
	for t := range seen {
		types = append(types, t)
	}
	sort.Strings(types)

	return phiDomain.ScanResult{HasPHI: len(types) > 0, Types: types}
}

// Redact replaces every match with its category placeholder, e.g. "[SSN-REDACTED]".
func (d *Detector) Redact(text string) string {
	for _, m := range d.matchers {
		text = m.Redact(text)
	}
	return text
}

// VerifyDeIdentification scans every scalar field of record, descending into nested
// objects and arrays. Field paths use dots for objects and [i] for array items.
func (d *Detector) VerifyDeIdentification(record map[string]any) phiDomain.DeIdentificationReport {
	issues := []phiDomain.Issue{}
	d.walk("", record, &issues)

	sort.Slice(issues, func(i, j int) bool { return issues[i].Field < issues[j].Field })

	return phiDomain.DeIdentificationReport{
		IsDeIdentified: len(issues) == 0,
		Issues:         issues,
	}
}

func (d *Detector) walk(path string, value any, issues *[]phiDomain.Issue) {
	switch v := value.(type) {
	case map[string]any:
		for key, child := range v {
			d.walk(joinPath(path, key), child, issues)
		}
	case []any:
		for i, child := range v {
			d.walk(fmt.Sprintf("%s[%d]", path, i), child, issues)
		}
	default:
		text, ok := scalarText(v)
		if !ok {
			return
		}
		if result := d.Scan(text); result.HasPHI {
			*issues = append(*issues, phiDomain.Issue{Field: path, Types: result.Types})
		}
	}
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

func scalarText(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), true
	case int:
		return strconv.Itoa(s), true
	case int64:
		return strconv.FormatInt(s, 10), true
	case fmt.Stringer:
		return s.String(), true
	default:
		return "", false
	}
}
