// Package sanitizer filters outbound response bodies: sensitive keys are
// dropped and PHI in string values is redacted.
package sanitizer

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Redactor replaces PHI in text with placeholders.
type Redactor interface {
	Redact(text string) string
}

// DefaultSensitiveKeys are removed wherever they appear. Keys are compared
// case-insensitively with '_' and '-' ignored.
var DefaultSensitiveKeys = []string{
	"password",
	"passwordHash",
	"ssn",
	"socialSecurityNumber",
	"encryptionKey",
	"masterKey",
	"privateKey",
	"secret",
	"clientSecret",
	"token",
	"accessToken",
	"refreshToken",
	"authorization",
	"salt",
	"authTag",
	"iv",
	"signingKey",
}

// DefaultAllowedFields hold identifiers and metadata that are never redacted.
var DefaultAllowedFields = []string{
	"id",
	"requestId",
	"subjectId",
	"recordId",
	"grantId",
	"actorId",
	"grantee",
	"approvedBy",
	"purpose",
	"category",
	"action",
	"resource",
	"outcome",
	"level",
	"role",
	"status",
	"code",
	"error",
	"reasonCode",
	"requiredStep",
	"contentHash",
	"signature",
	"phiTypes",
	"types",
	"field",
	"createdAt",
	"createdBy",
	"issuedAt",
	"expiresAt",
	"occurredAt",
	"timestamp",
	"retainUntil",
}

// Option configures a Sanitizer.
type Option func(*Sanitizer)

// WithSensitiveKeys adds keys to the removal list.
func WithSensitiveKeys(keys ...string) Option {
	return func(s *Sanitizer) {
		for _, k := range keys {
			s.sensitive[normalizeKey(k)] = struct{}{}
		}
	}
}

// WithAllowedFields adds fields whose string values are left untouched.
func WithAllowedFields(fields ...string) Option {
	return func(s *Sanitizer) {
		for _, f := range fields {
			s.allowed[normalizeKey(f)] = struct{}{}
		}
	}
}

// Sanitizer is the ResponseSanitizer. It is immutable and safe for concurrent use.
type Sanitizer struct {
	redactor  Redactor
	sensitive map[string]struct{}
	allowed   map[string]struct{}
}

// NewSanitizer creates a Sanitizer with the default key lists.
func NewSanitizer(redactor Redactor, opts ...Option) *Sanitizer {
	s := &Sanitizer{
		redactor:  redactor,
		sensitive: make(map[string]struct{}),
		allowed:   make(map[string]struct{}),
	}
	WithSensitiveKeys(DefaultSensitiveKeys...)(s)
	WithAllowedFields(DefaultAllowedFields...)(s)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sanitize JSON-normalizes v and returns the filtered copy. A value that
// cannot be serialized yields nil so nothing unfiltered leaves the process.
func (s *Sanitizer) Sanitize(v any) any {
	if v == nil {
		return nil
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var normalized any
	if err := dec.Decode(&normalized); err != nil {
		return nil
	}

	return s.walk(normalized, false)
}

func (s *Sanitizer) walk(v any, allowed bool) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for key, child := range val {
			norm := normalizeKey(key)
			if _, drop := s.sensitive[norm]; drop {
				continue
			}
			_, ok := s.allowed[norm]
			out[key] = s.walk(child, ok)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, child := range val {
			out[i] = s.walk(child, allowed)
		}
		return out
	case string:
		if allowed {
			return val
		}
		return s.redactor.Redact(val)
	default:
		return val
	}
}

func normalizeKey(key string) string {
	key = strings.ToLower(key)
	return strings.NewReplacer("_", "", "-", "").Replace(key)
}
