package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/lukestiles/voice-memo-to-doc/internal/auth"
	"github.com/lukestiles/voice-memo-to-doc/internal/services"
	"github.com/lukestiles/voice-memo-to-doc/internal/shared"
	"github.com/lukestiles/voice-memo-to-doc/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config        *shared.Config
	transcription services.Transcription
	documents     services.Documents
	engine        tasks.Engine
	logger        *log.Logger
	output        io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config        *shared.Config
	Transcription services.Transcription
	Documents     services.Documents
	Engine        tasks.Engine
	Logger        *log.Logger
	Output        io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:        opts.Config,
		transcription: opts.Transcription,
		documents:     opts.Documents,
		engine:        opts.Engine,
		logger:        opts.Logger,
		output:        opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		processCommand, authCommand, runsCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// resolveConfig loads the config file named by the command's --config and
// --env flags, falling back to the runner's config when the file is absent.
func (r *Runner) resolveConfig(cmd *cli.Command) (*shared.Config, error) {
	path := shared.ConfigPathForEnv(cmd.String("config"), cmd.String("env"))

	if _, err := os.Stat(path); err != nil {
		return r.config, nil
	}

	config, err := shared.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	return config, nil
}

// openDatabase opens the run-history database and applies pending migrations.
func (r *Runner) openDatabase(config *shared.Config) (*sql.DB, error) {
	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return nil, err
	}

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// newManager builds the OAuth credential manager from config file paths.
func (r *Runner) newManager(config *shared.Config) (*auth.Manager, error) {
	return auth.NewManager(
		config.Credentials.Google.CredentialsPath,
		config.Credentials.Google.TokenPath,
		auth.NewLocalServerFlow(r.logger),
		r.logger,
	)
}

// transcriptionService returns the injected transcription service or builds
// one from the OpenAI credentials in config.
func (r *Runner) transcriptionService(config *shared.Config) (services.Transcription, error) {
	if r.transcription != nil {
		return r.transcription, nil
	}

	return services.NewOpenAIService(map[string]string{
		"api_key":      config.Credentials.OpenAI.APIKey,
		"organization": config.Credentials.OpenAI.Organization,
		"project":      config.Credentials.OpenAI.Project,
	}, r.logger)
}

// documentService returns the injected document service or builds one after
// obtaining a Google credential. Building may run the interactive consent
// flow when no usable token is persisted.
func (r *Runner) documentService(ctx context.Context, config *shared.Config) (services.Documents, error) {
	if r.documents != nil {
		return r.documents, nil
	}

	manager, err := r.newManager(config)
	if err != nil {
		return nil, err
	}

	ts, err := manager.TokenSource(ctx)
	if err != nil {
		return nil, err
	}

	return services.NewGoogleDocsService(ctx, ts, config.Docs.FolderID, r.logger)
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
