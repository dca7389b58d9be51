// Command streamkit feeds a sequence of values through a signal, collects them into a promise and turns the promise
// back into a signal, printing every event of the resulting signal.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"
	flag "github.com/spf13/pflag"
	"go.uber.org/dig"

	"github.com/iotaledger/streamkit/bridge"
	"github.com/iotaledger/streamkit/configuration"
	"github.com/iotaledger/streamkit/event"
	"github.com/iotaledger/streamkit/logger"
	streamsignal "github.com/iotaledger/streamkit/signal"
	"github.com/iotaledger/streamkit/workerpool"
)

const envPrefix = "STREAMKIT"

const (
	paramValues       = "values"
	paramFail         = "fail"
	paramInterrupt    = "interrupt"
	paramReplay       = "replay"
	paramWorkers      = "workers"
	paramConfigFile   = "config"
	loggerNamespace   = "logger"
	workerPoolName    = "continuations"
	defaultWorkers    = 4
	defaultReplaySize = 0
)

type dependencies struct {
	dig.In

	Configuration *configuration.Configuration
	Logger        *logger.Logger
	WorkerPool    *workerpool.WorkerPool
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}

		fmt.Fprintf(os.Stderr, "streamkit: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	container, err := newContainer(args)
	if err != nil {
		return err
	}

	return container.Invoke(func(deps dependencies) error {
		defer deps.WorkerPool.Shutdown()
		//nolint:errcheck // syncing stdout/stderr fails on some platforms
		defer deps.Logger.Sync()

		return roundTrip(ctx, deps, out)
	})
}

func newFlagSet() *flag.FlagSet {
	flagSet := configuration.NewUnsortedFlagSet("streamkit", flag.ContinueOnError)
	flagSet.StringP(paramConfigFile, "c", "", "file path of the configuration file (.json, .yaml, .yml or .toml)")
	flagSet.IntSlice(paramValues, []int{1, 2, 3}, "the values sent through the source signal")
	flagSet.String(paramFail, "", "terminate the source signal with a failure carrying this message")
	flagSet.Bool(paramInterrupt, false, "dispose the source signal instead of completing it")
	flagSet.Int(paramReplay, defaultReplaySize, "the replay buffer size of the source signal")
	flagSet.Int(paramWorkers, defaultWorkers, "the number of workers that run promise continuations")

	defaults := logger.DefaultConfig()
	flagSet.String(logger.ConfigurationKeyLevel, defaults.Level, "the minimum enabled logging level")
	flagSet.String(logger.ConfigurationKeyEncoding, defaults.Encoding, "the logger's encoding (console or json)")
	flagSet.StringSlice(logger.ConfigurationKeyOutputPaths, []string{"stderr"}, "the paths to write logging output to")

	return flagSet
}

func loadConfiguration(args []string) (*configuration.Configuration, error) {
	flagSet := newFlagSet()
	if err := flagSet.Parse(args); err != nil {
		return nil, err
	}

	config := configuration.New()

	if filePath, _ := flagSet.GetString(paramConfigFile); filePath != "" {
		if err := config.LoadFile(filePath); err != nil {
			return nil, err
		}
	}

	// defaults first, so that environment variables can override known keys
	if err := config.LoadFlagSet(flagSet); err != nil {
		return nil, errors.Wrap(err, "failed to load flags")
	}

	if err := config.LoadEnvironmentVars(envPrefix); err != nil {
		return nil, errors.Wrap(err, "failed to load environment variables")
	}

	// flags given on the command line win over everything else
	if err := config.LoadFlagSet(flagSet); err != nil {
		return nil, errors.Wrap(err, "failed to load flags")
	}

	return config, nil
}

func newContainer(args []string) (*dig.Container, error) {
	config, err := loadConfiguration(args)
	if err != nil {
		return nil, err
	}

	container := dig.New()

	if err := container.Provide(func() *configuration.Configuration {
		return config
	}); err != nil {
		return nil, err
	}

	if err := container.Provide(func(config *configuration.Configuration) (logger.Config, error) {
		cfg := logger.DefaultConfig()
		if err := config.Unmarshal(loggerNamespace, &cfg); err != nil {
			return cfg, err
		}

		return cfg, nil
	}); err != nil {
		return nil, err
	}

	if err := container.Provide(logger.NewRootLogger); err != nil {
		return nil, err
	}

	if err := container.Provide(func(config *configuration.Configuration, log *logger.Logger) (*workerpool.WorkerPool, error) {
		return workerpool.New(workerPoolName,
			workerpool.WithWorkerCount(config.Int(paramWorkers)),
			workerpool.WithLogger(log),
		)
	}); err != nil {
		return nil, err
	}

	return container, nil
}

func roundTrip(ctx context.Context, deps dependencies, out io.Writer) error {
	log := deps.Logger.Named("roundtrip")

	source, observer := streamsignal.Pipe[int](
		streamsignal.WithReplay(deps.Configuration.Int(paramReplay)),
		streamsignal.WithLogger(log.Named("source")),
	)

	collected := bridge.ToPromise(source, bridge.WithLogger(log), bridge.WithWorkerPool(deps.WorkerPool))
	result := bridge.ToSignal(collected, bridge.WithLogger(log))

	done := make(chan struct{})
	result.Observe(func(e event.Event[[]int]) {
		fmt.Fprintln(out, e)

		if e.IsTerminating() {
			close(done)
		}
	})

	for _, value := range deps.Configuration.Ints(paramValues) {
		observer.SendNext(value)
	}

	switch {
	case deps.Configuration.String(paramFail) != "":
		observer.SendFailed(errors.New(deps.Configuration.String(paramFail)))
	case deps.Configuration.Bool(paramInterrupt):
		source.Dispose()
	default:
		observer.SendCompleted()
	}

	select {
	case <-done:
		log.Infof("round trip finished, source violations: %d", source.Violations())

		return nil
	case <-ctx.Done():
		result.Dispose()

		return errors.Wrap(ctx.Err(), "round trip aborted")
	}
}
