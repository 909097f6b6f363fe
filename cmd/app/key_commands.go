package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/medmarket/phiguard/cmd/app/commands"
	"github.com/medmarket/phiguard/internal/app"
	"github.com/medmarket/phiguard/internal/config"
	cryptoService "github.com/medmarket/phiguard/internal/crypto/service"
)

func getKeyCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-encryption-key",
			Usage: "Generate a new master encryption key, optionally wrapped by a KMS",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "kms-key-uri",
					Value: "",
					Usage: "KMS key URI (e.g., base64key://, gcpkms://projects/.../cryptoKeys/..., hashivault://...)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				return commands.RunCreateEncryptionKey(
					ctx,
					cryptoService.NewKMSService(),
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("kms-key-uri"),
				)
			},
		},
		{
			Name:  "wrap-encryption-key",
			Usage: "Wrap the current ENCRYPTION_KEY with a KMS key",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "kms-key-uri",
					Required: true,
					Usage:    "KMS key URI used to wrap the key",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()

				return commands.RunWrapEncryptionKey(
					ctx,
					cryptoService.NewKMSService(),
					commands.DefaultIO().Writer,
					cfg.EncryptionKey,
					cmd.String("kms-key-uri"),
				)
			},
		},
	}
}
