package main

import (
	"context"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wippyai/variant/codec"
	"github.com/wippyai/variant/metrics"
	"github.com/wippyai/variant/registry"
	"github.com/wippyai/variant/store"
	"github.com/wippyai/variant/typecache"
)

// app holds everything a command needs, built once in PersistentPreRunE.
type app struct {
	cfg      Config
	log      *zap.Logger
	reg      *registry.Registry
	codec    *codec.Codec
	metrics  *metrics.Collector
	gatherer *prometheus.Registry

	configPath  string
	logLevel    string
	logFile     string
	backend     string
	strict      bool
	dumpMetrics bool
}

func main() {
	a := &app{}
	root := a.rootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "variant",
		Short:         "Encode, decode and store packed variant containers",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.teardown()
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&a.configPath, "config", "variant.yaml", "configuration file")
	f.StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	f.StringVar(&a.logFile, "log-file", "", "log to a rotating file instead of stderr")
	f.StringVar(&a.backend, "store", "", "store backend (badger, redis, linear)")
	f.BoolVar(&a.strict, "strict", false, "fail on descriptor cache direction conflicts")
	f.BoolVar(&a.dumpMetrics, "metrics", false, "print collected metrics on exit")

	root.AddCommand(
		a.inCommand(),
		a.outCommand(),
		a.inspectCommand(),
		a.typesCommand(),
		a.putCommand(),
		a.getCommand(),
		a.deleteCommand(),
		a.replCommand(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := loadConfig(a.configPath, cmd.Flags().Changed("config"))
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.logFile != "" {
		cfg.Log.File = a.logFile
	}
	if a.backend != "" {
		cfg.Store.Backend = a.backend
	}
	if cmd.Flags().Changed("strict") {
		cfg.Codec.Strict = a.strict
	}
	a.cfg = cfg

	a.log, err = newLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	typecache.SetLogger(a.log.Named("typecache"))
	codec.SetLogger(a.log.Named("codec"))
	store.SetLogger(a.log.Named("store"))

	a.metrics = metrics.New("variant")
	a.gatherer = prometheus.NewRegistry()
	if err := a.gatherer.Register(a.metrics); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	a.reg = registry.NewBuiltin()
	a.codec = codec.New(a.reg,
		codec.WithStrict(cfg.Codec.Strict),
		codec.WithObserver(a.metrics))
	return nil
}

func (a *app) teardown() error {
	if a.dumpMetrics && a.gatherer != nil {
		families, err := a.gatherer.Gather()
		if err != nil {
			return err
		}
		for _, mf := range families {
			if _, err := expfmt.MetricFamilyToText(os.Stderr, mf); err != nil {
				return err
			}
		}
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
	return nil
}

func (a *app) openStore(ctx context.Context) (store.Store, error) {
	opts := []store.Option{
		store.WithCompression(a.cfg.Store.Compress),
		store.WithMetrics(a.metrics),
		store.WithLogger(a.log.Named("store")),
	}

	switch a.cfg.Store.Backend {
	case "badger":
		return store.OpenBadger(a.cfg.Store.Badger.Dir, opts...)
	case "redis":
		return store.OpenRedis(ctx, a.cfg.Store.Redis, opts...)
	case "linear":
		return store.OpenLinear(ctx, a.cfg.Store.Linear, opts...)
	default:
		return nil, fmt.Errorf("unknown store backend %q", a.cfg.Store.Backend)
	}
}
