package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/aonescu/kubelens/internal/config"
	"github.com/aonescu/kubelens/internal/db"
	"github.com/aonescu/kubelens/internal/kube"
	"github.com/aonescu/kubelens/internal/state"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	kubeconfig string
	namespaces string
	logLevel   string
}

// env is what a subcommand needs once flags and config are resolved.
type env struct {
	cfg    config.Config
	logger *zap.Logger
	client *kube.RESTClient
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		// Cobra prints the error, we just exit non-zero
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:   "kubelens",
		Short: "Inspect how Kubernetes resources relate and what happens to them",
		Long: `kubelens answers "what is related to what" for Pods, Services and other
namespaced resources, and streams a merged, time-ordered view of cluster
events across the namespaces you watch.`,
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file (default is $HOME/.config/kubelens/config.yaml)")
	flags.StringVar(&opts.kubeconfig, "kubeconfig", "", "path to the kubeconfig file")
	flags.StringVar(&opts.namespaces, "namespaces", "", "comma-separated namespaces to watch")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(newEventsCmd(opts))
	rootCmd.AddCommand(newRelatedCmd(opts))
	rootCmd.AddCommand(newDescribeCmd(opts))
	rootCmd.AddCommand(newServeCmd(opts))
	return rootCmd
}

// resolve loads the config, applies flags on top and builds the logger.
func (o *rootOptions) resolve() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return config.Config{}, nil, err
	}
	if o.kubeconfig != "" {
		cfg.Kubeconfig = o.kubeconfig
	}
	if o.namespaces != "" {
		cfg.Namespaces = config.SplitList(o.namespaces)
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, nil, err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}

// connect resolves the config and opens the cluster connection.
func (o *rootOptions) connect() (*env, error) {
	cfg, logger, err := o.resolve()
	if err != nil {
		return nil, err
	}
	client, err := kube.Connect(cfg.Kubeconfig, cfg.RequestTimeout)
	if err != nil {
		logger.Sync()
		return nil, fmt.Errorf("failed to connect to cluster: %w", err)
	}
	return &env{cfg: cfg, logger: logger, client: client}, nil
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	logConfig := zap.NewProductionConfig()
	logConfig.Level = lvl
	logConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return logConfig.Build()
}

// openStore returns the PostgreSQL store when a database is configured and
// reachable, and an in-memory store otherwise. The returned func releases it.
func openStore(cfg config.Config, logger *zap.Logger) (state.EventStore, func()) {
	if cfg.DatabaseURL == "" {
		return state.NewMemoryStore(), func() {}
	}
	pgStore, err := db.NewPostgresStore(cfg.DatabaseURL, logger)
	if err != nil {
		logger.Warn("failed to connect to PostgreSQL, falling back to in-memory storage", zap.Error(err))
		return state.NewMemoryStore(), func() {}
	}
	logger.Info("connected to PostgreSQL")
	return pgStore, func() { pgStore.Close() }
}
