package main

import (
	"context"

	"github.com/lukestiles/voice-memo-to-doc/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes a config.toml with default values.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")

	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	r.writePlain("✓ Created %s\n", path)
	r.writePlain("Edit it to set your OpenAI API key and Google credential paths.\n")
	return nil
}

// SetupDatabase opens the run-history database and applies migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	config, err := r.resolveConfig(cmd)
	if err != nil {
		return err
	}

	db, err := r.openDatabase(config)
	if err != nil {
		return err
	}
	defer db.Close()

	r.writePlain("✓ Database ready at %s\n", config.Database.Path)
	return nil
}
