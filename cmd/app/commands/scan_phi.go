package commands

import (
	"encoding/json"
	"fmt"
	"io"

	phiDomain "github.com/medmarket/phiguard/internal/phi/domain"
)

// PHIScanner is the part of the detector the scan-phi command uses.
type PHIScanner interface {
	Scan(text string) phiDomain.ScanResult
	Redact(text string) string
}

// RunScanPHI reads text from reader and reports the PHI categories it contains.
// With redact the text is also printed with every match replaced.
func RunScanPHI(scanner PHIScanner, reader io.Reader, writer io.Writer, redact bool, format string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	text := string(data)
	result := scanner.Scan(text)

	if format == "json" {
		out := map[string]any{
			"hasPHI": result.HasPHI,
			"types":  result.Types,
		}
		if redact {
			out["redacted"] = scanner.Redact(text)
		}
		jsonBytes, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		_, _ = fmt.Fprintln(writer, string(jsonBytes))
		return nil
	}

	if !result.HasPHI {
		_, _ = fmt.Fprintln(writer, "No PHI detected")
	} else {
		_, _ = fmt.Fprintf(writer, "PHI detected: %d type(s)\n", len(result.Types))
		for _, t := range result.Types {
			_, _ = fmt.Fprintf(writer, "  - %s\n", t)
		}
	}
	if redact {
		_, _ = fmt.Fprintf(writer, "\n%s\n", scanner.Redact(text))
	}
	return nil
}
