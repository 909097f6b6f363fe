package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	auditUseCase "github.com/medmarket/phiguard/internal/audit/usecase"
)

// RunReconcileAuditLogs replays entries held in the local fallback store into
// the primary sink.
func RunReconcileAuditLogs(
	ctx context.Context,
	auditLogUseCase auditUseCase.AuditLogUseCase,
	logger *slog.Logger,
	writer io.Writer,
	batchSize int,
) error {
	if batchSize <= 0 {
		return fmt.Errorf("batch size must be positive")
	}

	count, err := auditLogUseCase.Reconcile(ctx, batchSize)
	if err != nil {
		return fmt.Errorf("failed to reconcile audit logs: %w", err)
	}

	logger.Info("reconcile completed", slog.Int("replayed", count))
	_, _ = fmt.Fprintf(writer, "Replayed %d entries from the fallback store\n", count)
	return nil
}
