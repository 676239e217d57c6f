package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/hunkstage/internal/config"
	"github.com/Sumatoshi-tech/hunkstage/internal/observability"
	"github.com/Sumatoshi-tech/hunkstage/pkg/gitcmd"
	"github.com/Sumatoshi-tech/hunkstage/pkg/opqueue"
	"github.com/Sumatoshi-tech/hunkstage/pkg/procrun"
	"github.com/Sumatoshi-tech/hunkstage/pkg/version"
)

// app holds the collaborators one command invocation needs.
type app struct {
	cfg          *config.Config
	providers    observability.Providers
	git          *gitcmd.Git
	queue        *opqueue.Queue
	stageMetrics *observability.StageMetrics
	repoDir      string
}

func newApp(opts *globalOptions, command string, logOutput io.Writer) (*app, error) {
	if opts.noColor {
		color.NoColor = true //nolint:reassign // documented fatih/color switch
	}

	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return nil, err
	}

	providers, err := observability.Init(observabilityConfig(cfg, opts, command, logOutput))
	if err != nil {
		return nil, fmt.Errorf("init observability: %w", err)
	}

	processMetrics, err := observability.NewProcessMetrics(providers.Meter)
	if err != nil {
		return nil, errors.Join(err, providers.Shutdown(context.Background()))
	}

	stageMetrics, err := observability.NewStageMetrics(providers.Meter)
	if err != nil {
		return nil, errors.Join(err, providers.Shutdown(context.Background()))
	}

	// Validate already rejected unparseable delays.
	waitDelay, _ := cfg.Git.WaitDelayDuration()

	runner := procrun.NewExecRunner(
		procrun.WithLogger(providers.Logger),
		procrun.WithTracer(providers.Tracer),
		procrun.WithRecorder(processMetrics),
		procrun.WithWaitDelay(waitDelay),
	)

	return &app{
		cfg:          cfg,
		providers:    providers,
		git:          gitcmd.New(runner, cfg.Git.Binary, cfg.Git.Env),
		queue:        opqueue.New(providers.Logger),
		stageMetrics: stageMetrics,
		repoDir:      opts.repoDir,
	}, nil
}

func observabilityConfig(cfg *config.Config, opts *globalOptions, command string, logOutput io.Writer) observability.Config {
	obsCfg := observability.DefaultConfig()
	obsCfg.Command = command
	obsCfg.RepoDir = opts.repoDir
	obsCfg.ServiceVersion = version.Version
	obsCfg.Environment = cfg.Telemetry.Environment
	obsCfg.OTLPEndpoint = cfg.Telemetry.OTLPEndpoint
	obsCfg.OTLPHeaders = observability.ParseOTLPHeaders(cfg.Telemetry.OTLPHeaders)
	obsCfg.OTLPInsecure = cfg.Telemetry.OTLPInsecure
	obsCfg.SampleRatio = cfg.Telemetry.SampleRatio
	obsCfg.MetricsDump = cfg.Telemetry.MetricsDump || opts.metrics
	obsCfg.LogJSON = cfg.Logging.JSON
	obsCfg.LogOutput = logOutput

	level, err := cfg.Logging.SlogLevel()
	if err == nil {
		obsCfg.LogLevel = level
	}

	if opts.verbose {
		obsCfg.LogLevel = slog.LevelDebug
	}

	return obsCfg
}

// close dumps collected metrics to w when requested and flushes telemetry.
func (a *app) close(ctx context.Context, w io.Writer) error {
	var errs []error

	if a.providers.Registry != nil {
		if err := observability.DumpMetrics(w, a.providers.Registry); err != nil {
			errs = append(errs, fmt.Errorf("dump metrics: %w", err))
		}
	}

	if err := a.providers.Shutdown(ctx); err != nil {
		a.providers.Logger.Warn("observability shutdown failed", "error", err)
	}

	return errors.Join(errs...)
}

// withApp runs fn with a fresh app for cmd and closes it afterwards. Logs
// and the metrics dump go to the command's stderr.
func withApp(cmd *cobra.Command, opts *globalOptions, fn func(context.Context, *app) error) error {
	ctx, errOut := cmd.Context(), cmd.ErrOrStderr()

	a, err := newApp(opts, cmd.Name(), errOut)
	if err != nil {
		return err
	}

	runErr := fn(ctx, a)

	return errors.Join(runErr, a.close(context.WithoutCancel(ctx), errOut))
}
