package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/medmarket/phiguard/cmd/app/commands"
	"github.com/medmarket/phiguard/internal/app"
	"github.com/medmarket/phiguard/internal/config"
)

func getPHICommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "scan-phi",
			Usage: "Scan text from a file or stdin for PHI",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "file",
					Aliases: []string{"i"},
					Usage:   "Input file (defaults to stdin)",
				},
				&cli.BoolFlag{
					Name:  "redact",
					Usage: "Print the input with PHI replaced",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				detector, err := container.PHIDetector()
				if err != nil {
					return err
				}

				var reader io.Reader = commands.DefaultIO().Reader
				if path := cmd.String("file"); path != "" {
					f, err := os.Open(path)
					if err != nil {
						return fmt.Errorf("failed to open input: %w", err)
					}
					defer func() { _ = f.Close() }()
					reader = f
				}

				return commands.RunScanPHI(
					detector,
					reader,
					commands.DefaultIO().Writer,
					cmd.Bool("redact"),
					cmd.String("format"),
				)
			},
		},
	}
}
