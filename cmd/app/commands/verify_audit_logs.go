package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	auditDomain "github.com/medmarket/phiguard/internal/audit/domain"
	auditUseCase "github.com/medmarket/phiguard/internal/audit/usecase"
)

// RunVerifyAuditLogs checks the HMAC signature of every audit entry in the range.
// Any invalid or unsigned entry fails the command.
func RunVerifyAuditLogs(
	ctx context.Context,
	auditLogUseCase auditUseCase.AuditLogUseCase,
	logger *slog.Logger,
	writer io.Writer,
	startDate, endDate string,
	format string,
) error {
	start, end, err := parseRange(startDate, endDate)
	if err != nil {
		return err
	}

	logger.Info("verifying audit logs",
		slog.Time("start_date", start),
		slog.Time("end_date", end),
	)

	report, err := auditLogUseCase.VerifyBatch(ctx, start, end)
	if err != nil {
		return fmt.Errorf("failed to verify audit logs: %w", err)
	}

	if format == "json" {
		if err := outputVerifyJSON(writer, report); err != nil {
			return fmt.Errorf("failed to output JSON: %w", err)
		}
	} else {
		outputVerifyText(writer, report, start, end)
	}

	logger.Info("verification completed",
		slog.Int("total_checked", report.Total),
		slog.Int("valid", report.Valid),
		slog.Int("invalid", report.Invalid),
		slog.Int("unsigned", report.Unsigned),
	)

	if !report.Passed() {
		return fmt.Errorf("integrity check failed: %d invalid and %d unsigned entries",
			report.Invalid, report.Unsigned)
	}

	return nil
}

func outputVerifyText(writer io.Writer, report *auditDomain.VerificationReport, start, end time.Time) {
	_, _ = fmt.Fprintf(writer, "Audit Log Integrity Verification\n")
	_, _ = fmt.Fprintf(writer, "=================================\n\n")
	_, _ = fmt.Fprintf(writer,
		"Time Range: %s to %s\n\n",
		start.Format("2006-01-02 15:04:05"),
		end.Format("2006-01-02 15:04:05"),
	)

	_, _ = fmt.Fprintf(writer, "Total Checked:  %d\n", report.Total)
	_, _ = fmt.Fprintf(writer, "Valid:          %d\n", report.Valid)
	_, _ = fmt.Fprintf(writer, "Invalid:        %d\n", report.Invalid)
	_, _ = fmt.Fprintf(writer, "Unsigned:       %d\n\n", report.Unsigned)

	switch {
	case !report.Passed():
		_, _ = fmt.Fprintf(writer, "WARNING: %d entry(ies) failed integrity check!\n\n",
			report.Invalid+report.Unsigned)
		_, _ = fmt.Fprintf(writer, "Failed Entry IDs:\n")
		for _, id := range report.InvalidIDs {
			_, _ = fmt.Fprintf(writer, "  - %s\n", id)
		}
		_, _ = fmt.Fprintf(writer, "\nStatus: FAILED\n")
	case report.Total == 0:
		_, _ = fmt.Fprintf(writer, "Status: No entries found in specified time range\n")
	default:
		_, _ = fmt.Fprintf(writer, "Status: PASSED\n")
	}
}

func outputVerifyJSON(writer io.Writer, report *auditDomain.VerificationReport) error {
	result := map[string]any{
		"total_checked":  report.Total,
		"valid_count":    report.Valid,
		"invalid_count":  report.Invalid,
		"unsigned_count": report.Unsigned,
		"invalid_ids":    report.InvalidIDs,
		"passed":         report.Passed(),
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	_, _ = fmt.Fprintln(writer, string(jsonBytes))
	return nil
}
