package service

import (
	"fmt"
	"os"

	validation "github.com/jellydator/validation"
	"gopkg.in/yaml.v3"

	phiDomain "github.com/medmarket/phiguard/internal/phi/domain"
)

// PatternFile is the YAML document that extends the matcher set:
//
//	patterns:
//	  - type: npi
//	    pattern: '\bNPI[:\s#]*\d{10}\b'
//	    tag: NPI-REDACTED
type PatternFile struct {
	Patterns []PatternDefinition `yaml:"patterns"`
}

// PatternDefinition describes one additional matcher.
type PatternDefinition struct {
	Type    string `yaml:"type"`
	Pattern string `yaml:"pattern"`
	Tag     string `yaml:"tag"`
}

// Validate checks the definition is complete.
func (d PatternDefinition) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Type, validation.Required),
		validation.Field(&d.Pattern, validation.Required),
	)
}

// ParsePatterns decodes YAML pattern definitions into matchers.
func ParsePatterns(data []byte) ([]phiDomain.Matcher, error) {
	var file PatternFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse pattern file: %w", err)
	}

	matchers := make([]phiDomain.Matcher, 0, len(file.Patterns))
	for i, def := range file.Patterns {
		if err := def.Validate(); err != nil {
			return nil, fmt.Errorf("pattern %d: %w", i, err)
		}
		m, err := NewRegexMatcher(def.Type, def.Pattern, def.Tag)
		if err != nil {
			return nil, err
		}
		matchers = append(matchers, m)
	}
	return matchers, nil
}

// LoadPatternFile reads and parses a YAML pattern file.
func LoadPatternFile(path string) ([]phiDomain.Matcher, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pattern file: %w", err)
	}
	return ParsePatterns(data)
}
