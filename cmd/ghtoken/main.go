package main

import (
	"context"
	"fmt"
	"os"

	"github.com/common-nighthawk/go-figure"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/jrsteele09/github-app-auth/internal/config"
)

func main() {
	cfg := config.Load()
	setupLogger(cfg.LogLevel)

	cmd := &cli.Command{
		Name:  "ghtoken",
		Usage: "Mint GitHub App installation tokens",
		Commands: []*cli.Command{
			{
				Name:  "token",
				Usage: "Print a fresh installation token",
				Flags: sharedFlags(cfg),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runToken(ctx, cmd, cfg)
				},
			},
			{
				Name:  "header",
				Usage: "Print the Authorization header for an installation token",
				Flags: sharedFlags(cfg),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runHeader(ctx, cmd, cfg)
				},
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			displayAppname(cmd.Name)
			return cli.ShowAppHelp(cmd)
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal().Err(err).Msg("ghtoken failed")
	}
}

// setupLogger routes human readable logs to stderr, keeping stdout free
// for the credential output.
func setupLogger(level string) {
	parsedLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		parsedLevel = zerolog.InfoLevel
	}

	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(parsedLevel).
		With().
		Timestamp().
		Str("run_id", uuid.New().String()).
		Logger()
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
