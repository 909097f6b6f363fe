package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	auditUseCase "github.com/medmarket/phiguard/internal/audit/usecase"
)

// RunArchiveAuditLogs exports the entries in the range as JSON lines to the
// archive bucket. Nothing is deleted from the primary store.
func RunArchiveAuditLogs(
	ctx context.Context,
	auditLogUseCase auditUseCase.AuditLogUseCase,
	logger *slog.Logger,
	writer io.Writer,
	startDate, endDate string,
	prefix string,
) error {
	start, end, err := parseRange(startDate, endDate)
	if err != nil {
		return err
	}

	key := fmt.Sprintf("%s%s_%s.jsonl", prefix, start.Format("20060102T150405Z"), end.Format("20060102T150405Z"))
	logger.Info("archiving audit logs",
		slog.Time("start_date", start),
		slog.Time("end_date", end),
		slog.String("key", key),
	)

	count, err := auditLogUseCase.Archive(ctx, start, end, key)
	if err != nil {
		return fmt.Errorf("failed to archive audit logs: %w", err)
	}

	logger.Info("archive completed", slog.Int("entries", count))
	_, _ = fmt.Fprintf(writer, "Archived %d entries to %s\n", count, key)
	return nil
}
