package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rlch/compatinfo"
	"github.com/rlch/compatinfo/refdb"
)

// app holds what every command shares. It is filled in by the root
// command's Before hook.
type app struct {
	logger *zap.Logger
	cfg    *compatinfo.Config
	env    *refdb.Environment

	// newLogger builds the diagnostics logger. Tests replace it.
	newLogger func(level zapcore.Level) (*zap.Logger, error)

	// checkRequirements guards every command touching the database.
	checkRequirements func() error
}

func newApp() *app {
	return &app{
		logger:            zap.NewNop(),
		cfg:               &compatinfo.Config{},
		newLogger:         developmentLogger,
		checkRequirements: refdb.CheckRequirements,
	}
}

// developmentLogger logs to stderr; stdout carries command output.
func developmentLogger(level zapcore.Level) (*zap.Logger, error) {
	config := zap.NewDevelopmentConfig()
	config.OutputPaths = []string{"stderr"}
	config.Level = zap.NewAtomicLevelAt(level)

	return config.Build()
}

func (a *app) command() *cli.Command {
	return &cli.Command{
		Name:  "compatinfo",
		Usage: "Reference database and test result printer",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "config file (default: nearest .compatinfo.yaml)",
				Sources: cli.EnvVars("COMPATINFO_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "diagnostics level on stderr (debug, info, warn, error)",
				Value:   "warn",
				Sources: cli.EnvVars("COMPATINFO_LOG_LEVEL"),
			},
		},
		Before: a.before,
		After:  a.after,
		Commands: []*cli.Command{
			initCommand(a),
			pathCommand(a),
			versionCommand(a),
			checkCommand(a),
			reportCommand(a),
		},
	}
}

func (a *app) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	level, err := zapcore.ParseLevel(cmd.String("log-level"))
	if err != nil {
		return ctx, fmt.Errorf("--log-level: %w", err)
	}

	a.logger, err = a.newLogger(level)
	if err != nil {
		return ctx, fmt.Errorf("building logger: %w", err)
	}

	a.cfg, err = a.loadConfig(cmd.String("config"))
	if err != nil {
		return ctx, err
	}

	opts := []refdb.Option{refdb.WithLogger(a.logger.Named("refdb"))}
	if dir := a.cfg.ResolveDir(a.cfg.Database.TempDir); dir != "" {
		opts = append(opts, refdb.WithTempDir(dir))
	}

	a.env = refdb.New(opts...)

	return ctx, nil
}

// loadConfig reads the explicit config file, or the nearest one from the
// working directory. A missing implicit config is not an error.
func (a *app) loadConfig(path string) (*compatinfo.Config, error) {
	if path != "" {
		return compatinfo.LoadConfigFile(path)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting cwd: %w", err)
	}

	cfg, err := compatinfo.LoadConfig(cwd)
	if errors.Is(err, compatinfo.ErrConfigNotFound) {
		a.logger.Debug("no config file", zap.String("dir", cwd))
		return &compatinfo.Config{}, nil
	}

	if err != nil {
		return nil, err
	}

	a.logger.Debug("loaded config", zap.String("path", cfg.Path()))

	return cfg, nil
}

// requireDatabase is the Before hook of the database commands. It fails
// before the database is installed or opened.
func (a *app) requireDatabase(ctx context.Context, _ *cli.Command) (context.Context, error) {
	if err := a.checkRequirements(); err != nil {
		a.logger.Error("platform check failed", zap.Error(err))
		return ctx, err
	}

	return ctx, nil
}

func (a *app) after(_ context.Context, _ *cli.Command) error {
	_ = a.logger.Sync()

	if a.env == nil {
		return nil
	}

	return a.env.Close()
}
