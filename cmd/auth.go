package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/lukestiles/voice-memo-to-doc/internal/auth"
	"github.com/urfave/cli/v3"
)

// AuthLogin obtains a Google credential, running the consent flow when no
// usable token is persisted.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	config, err := r.resolveConfig(cmd)
	if err != nil {
		return err
	}

	if cmd.Bool("force") {
		tokenPath := config.Credentials.Google.TokenPath
		if err := os.Remove(tokenPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove token file: %w", err)
		}
		r.logger.Info("discarded persisted token", "path", tokenPath)
	}

	manager, err := r.newManager(config)
	if err != nil {
		return err
	}

	token, err := manager.Obtain(ctx)
	if err != nil {
		return err
	}

	r.writePlain("✓ Authenticated with Google\n")
	r.writePlain("Token expires: %s\n", token.Expiry.Format(time.RFC1123))
	return nil
}

// AuthStatus inspects the persisted credential without touching the network.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	config, err := r.resolveConfig(cmd)
	if err != nil {
		return err
	}

	credentialsPath := config.Credentials.Google.CredentialsPath
	if _, err := os.Stat(credentialsPath); err != nil {
		r.writePlain("Client secret: missing (%s)\n", credentialsPath)
	} else {
		r.writePlain("Client secret: %s\n", credentialsPath)
	}

	// Token inspection reads only the token file, no OAuth config needed.
	manager := auth.NewManagerWithConfig(nil, config.Credentials.Google.TokenPath, nil, r.logger)
	status := manager.Status()

	if !status.Present {
		r.writePlain("Token: none (run 'auth login')\n")
		return nil
	}

	if status.Valid {
		r.writePlain("Token: valid, expires %s\n", status.Expiry.Format(time.RFC1123))
	} else if status.HasRefreshToken {
		r.writePlain("Token: expired %s, refreshable\n", status.Expiry.Format(time.RFC1123))
	} else {
		r.writePlain("Token: expired %s, re-authentication required\n", status.Expiry.Format(time.RFC1123))
	}

	return nil
}
