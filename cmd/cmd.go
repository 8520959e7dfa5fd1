// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// configFlags are shared by every command that reads the config file.
func configFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
			Value:   "config.toml",
		},
		&cli.StringFlag{
			Name:    "env",
			Aliases: []string{"e"},
			Usage:   "Environment profile (loads config.<env>.toml when present)",
		},
	}
}

// processCommand runs the transcription pipeline over a batch of recordings.
func processCommand(r *Runner) *cli.Command {
	flags := append(configFlags(),
		&cli.StringSliceFlag{
			Name:     "files",
			Aliases:  []string{"f"},
			Usage:    "Audio files to process (repeatable)",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "directory",
			Aliases:  []string{"d"},
			Usage:    "Directory containing the audio files",
			Required: true,
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Title for the Google Doc (default: current timestamp)",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Enable debug logging",
		},
		&cli.BoolFlag{
			Name:  "ui",
			Usage: "Show interactive progress view",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output per-file results as JSON",
		},
		&cli.BoolFlag{
			Name:  "save",
			Usage: "Record the run in the local history database",
			Value: true,
		},
	)

	return &cli.Command{
		Name:    "process",
		Aliases: []string{"run"},
		Usage:   "Transcribe audio files and collect them in a new Google Doc",
		Flags:   flags,
		Action:  r.Process,
	}
}

// authCommand handles Google credential operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage Google authentication",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Authenticate with Google using OAuth2",
				Flags: append(configFlags(),
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Discard the persisted token and re-run the consent flow",
					},
				),
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Inspect the persisted token without network calls",
				Flags:  configFlags(),
				Action: r.AuthStatus,
			},
		},
	}
}

// runsCommand reads the local run history
func runsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "runs",
		Usage: "Inspect past processing runs",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List past runs, newest first",
				Flags: append(configFlags(),
					&cli.StringFlag{
						Name:  "status",
						Usage: "Filter by run status (completed or failed)",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				),
				Action: r.RunsList,
			},
			{
				Name:  "show",
				Usage: "Show one run with its per-file results",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: append(configFlags(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				),
				Action: r.RunsShow,
			},
		},
	}
}

// setupCommand handles setup operations for configuration and the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Create a config.toml file with defaults",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Flags:  configFlags(),
				Action: r.SetupDatabase,
			},
		},
	}
}
