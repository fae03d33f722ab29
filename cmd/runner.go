package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/bandctl/internal/secrets"
	"github.com/desertthunder/bandctl/internal/shared"
	"github.com/desertthunder/bandctl/internal/whoop"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config    *shared.Config
	store     *secrets.Store
	client    *whoop.Client
	logger    *log.Logger
	output    io.Writer
	errOutput io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config    *shared.Config
	Store     *secrets.Store
	Client    *whoop.Client
	Logger    *log.Logger
	Output    io.Writer
	ErrOutput io.Writer
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
	if opts.ErrOutput == nil {
		opts.ErrOutput = os.Stderr
	}

	return &Runner{
		config:    opts.Config,
		store:     opts.Store,
		client:    opts.Client,
		logger:    opts.Logger,
		output:    opts.Output,
		errOutput: opts.ErrOutput,
	}
}

// Before loads configuration and wires the credential store and API client
// before any action runs. Dependencies injected through RunnerOpts (tests)
// are left untouched.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	configPath := cmd.String("config")
	if _, err := os.Stat(configPath); err == nil {
		config, err := shared.LoadConfig(configPath)
		if err != nil {
			return ctx, err
		}
		r.config = config
	}

	if r.store == nil {
		r.store = secrets.NewStore(r.config.Secrets.Path)
	}

	if r.client == nil {
		clientID, clientSecret, err := r.store.ClientCredentials()
		if err != nil {
			return ctx, err
		}
		r.client = whoop.NewClient(whoop.ClientOpts{
			BaseURL:      r.config.API.BaseURL,
			TokenURL:     r.config.API.TokenURL,
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Timeout:      time.Duration(r.config.API.TimeoutSeconds) * time.Second,
			RateLimit:    r.config.API.RateLimit,
			Logger:       r.logger,
		})
	}

	return ctx, nil
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, getSleepCommand, getCycleCommand, getRecoveryCommand, getWorkoutCommand, complianceCommand, historyCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

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
