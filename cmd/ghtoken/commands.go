package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/jrsteele09/github-app-auth/auth"
	"github.com/jrsteele09/github-app-auth/internal/config"
)

// sharedFlags is the flag set both subcommands take. Defaults come from
// the environment configuration, so flags only need to be passed for
// values not already exported.
func sharedFlags(cfg *config.Config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "key-file",
			Value: cfg.PrivateKeyFile,
			Usage: "Path of the App's PEM encoded RSA private key",
		},
		&cli.StringFlag{
			Name:  "app-id",
			Value: cfg.AppID,
			Usage: "Numeric GitHub App identifier",
		},
		&cli.StringFlag{
			Name:  "installation-id",
			Value: cfg.InstallationID,
			Usage: "Numeric installation identifier",
		},
		&cli.StringFlag{
			Name:  "user-agent",
			Value: cfg.UserAgent,
			Usage: "User-Agent sent on every GitHub request",
		},
		&cli.StringFlag{
			Name:  "base-url",
			Value: cfg.BaseURL,
			Usage: "GitHub API endpoint base (override for GitHub Enterprise Server)",
		},
		&cli.StringSliceFlag{
			Name:  "repo",
			Usage: "Restrict the token to a repository (repeatable)",
		},
		&cli.StringFlag{
			Name:  "permissions",
			Usage: `Restrict the token's permissions, as JSON (e.g. '{"contents": "read"}')`,
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Emit JSON instead of plain text",
		},
	}
}

// newInstallationToken assembles auth parameters from flags and performs
// the initial exchange.
func newInstallationToken(ctx context.Context, cmd *cli.Command, cfg *config.Config) (*auth.InstallationToken, error) {
	privateKey, err := resolvePrivateKey(cmd.String("key-file"), cfg.PrivateKey)
	if err != nil {
		return nil, err
	}

	appID, err := strconv.ParseUint(cmd.String("app-id"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid --app-id %q: %w", cmd.String("app-id"), err)
	}

	installationID, err := strconv.ParseUint(cmd.String("installation-id"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid --installation-id %q: %w", cmd.String("installation-id"), err)
	}

	options := []auth.TokenOption{
		auth.WithBaseURL(cmd.String("base-url")),
	}
	if repos := cmd.StringSlice("repo"); len(repos) > 0 {
		options = append(options, auth.WithRepositories(repos...))
	}
	if rawPermissions := cmd.String("permissions"); rawPermissions != "" {
		permissions := map[string]string{}
		if err := json.Unmarshal([]byte(rawPermissions), &permissions); err != nil {
			return nil, fmt.Errorf("invalid --permissions: %w", err)
		}
		options = append(options, auth.WithPermissions(permissions))
	}

	log.Debug().
		Uint64("app_id", appID).
		Uint64("installation_id", installationID).
		Str("base_url", cmd.String("base-url")).
		Msg("requesting installation token")

	return auth.NewInstallationToken(ctx, auth.GithubAuthParams{
		UserAgent:      cmd.String("user-agent"),
		PrivateKey:     privateKey,
		AppID:          appID,
		InstallationID: installationID,
	}, options...)
}

// resolvePrivateKey prefers a key file and falls back to key material from
// the environment.
func resolvePrivateKey(keyFile, inlineKey string) ([]byte, error) {
	if keyFile != "" {
		privateKey, err := os.ReadFile(keyFile)
		if err != nil {
			return nil, fmt.Errorf("reading --key-file: %w", err)
		}
		return privateKey, nil
	}
	if inlineKey != "" {
		return []byte(inlineKey), nil
	}
	return nil, fmt.Errorf("no private key: pass --key-file or set GITHUB_PRIVATE_KEY")
}

// runToken prints the raw installation token.
func runToken(ctx context.Context, cmd *cli.Command, cfg *config.Config) error {
	token, err := newInstallationToken(ctx, cmd, cfg)
	if err != nil {
		return err
	}

	oauthToken, err := token.TokenSource(ctx).Token()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return printJSON(map[string]string{
			"token":      oauthToken.AccessToken,
			"expires_at": oauthToken.Expiry.UTC().Format(time.RFC3339),
		})
	}
	fmt.Println(oauthToken.AccessToken)
	return nil
}

// runHeader prints the Authorization header line, ready to paste into a
// curl invocation.
func runHeader(ctx context.Context, cmd *cli.Command, cfg *config.Config) error {
	token, err := newInstallationToken(ctx, cmd, cfg)
	if err != nil {
		return err
	}

	header, err := token.Header(ctx)
	if err != nil {
		return err
	}

	authorization := header.Get("Authorization")
	if cmd.Bool("json") {
		return printJSON(map[string]string{"Authorization": authorization})
	}
	fmt.Printf("Authorization: %s\n", authorization)
	return nil
}

func printJSON(v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	fmt.Println(string(payload))
	return nil
}
