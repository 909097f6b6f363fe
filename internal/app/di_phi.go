package app

import (
	"fmt"
	"log/slog"

	phiHttp "github.com/medmarket/phiguard/internal/phi/http"
	phiService "github.com/medmarket/phiguard/internal/phi/service"
)

// PHIDetector returns the detector. Patterns from PHI_PATTERNS_FILE extend
// the default matcher set.
func (c *Container) PHIDetector() (*phiService.Detector, error) {
	return resolve(c, &c.components.detectorInit, "phiDetector",
		&c.components.detector, c.initPHIDetector)
}

// PHIHandler returns the PHI detection HTTP handler.
func (c *Container) PHIHandler() (*phiHttp.PHIHandler, error) {
	detector, err := c.PHIDetector()
	if err != nil {
		return nil, err
	}
	return phiHttp.NewPHIHandler(detector, c.Logger()), nil
}

func (c *Container) initPHIDetector() (*phiService.Detector, error) {
	matchers := phiService.DefaultMatchers()
	if c.config.PHIPatternsFile != "" {
		extra, err := phiService.LoadPatternFile(c.config.PHIPatternsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load phi patterns: %w", err)
		}
		c.Logger().Info("loaded phi patterns",
			slog.String("path", c.config.PHIPatternsFile),
			slog.Int("count", len(extra)))
		matchers = append(matchers, extra...)
	}
	return phiService.NewDetector(matchers...), nil
}
