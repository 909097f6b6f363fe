package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/medmarket/phiguard/cmd/app/commands"
	"github.com/medmarket/phiguard/internal/app"
	"github.com/medmarket/phiguard/internal/config"
)

func rangeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "start-date",
			Aliases:  []string{"s"},
			Required: true,
			Usage:    "Start date in YYYY-MM-DD or YYYY-MM-DD HH:MM:SS format",
		},
		&cli.StringFlag{
			Name:     "end-date",
			Aliases:  []string{"e"},
			Required: true,
			Usage:    "End date in YYYY-MM-DD or YYYY-MM-DD HH:MM:SS format",
		},
	}
}

func getAuditCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "verify-audit-logs",
			Usage: "Verify cryptographic integrity of audit logs",
			Flags: append(rangeFlags(), &cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "text",
				Usage:   "Output format: 'text' or 'json'",
			}),
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				auditLogUseCase, err := container.AuditLogUseCase()
				if err != nil {
					return err
				}

				return commands.RunVerifyAuditLogs(
					ctx,
					auditLogUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("start-date"),
					cmd.String("end-date"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "archive-audit-logs",
			Usage: "Export audit logs in a time range to the archive bucket",
			Flags: append(rangeFlags(), &cli.StringFlag{
				Name:  "prefix",
				Value: "audit/",
				Usage: "Object key prefix inside AUDIT_ARCHIVE_BUCKET",
			}),
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				auditLogUseCase, err := container.AuditLogUseCase()
				if err != nil {
					return err
				}

				return commands.RunArchiveAuditLogs(
					ctx,
					auditLogUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("start-date"),
					cmd.String("end-date"),
					cmd.String("prefix"),
				)
			},
		},
		{
			Name:  "reconcile-audit-logs",
			Usage: "Replay audit entries held in the local fallback store",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:    "batch-size",
					Aliases: []string{"b"},
					Value:   500,
					Usage:   "Maximum number of entries replayed",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				auditLogUseCase, err := container.AuditLogUseCase()
				if err != nil {
					return err
				}

				return commands.RunReconcileAuditLogs(
					ctx,
					auditLogUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					int(cmd.Int("batch-size")),
				)
			},
		},
	}
}
