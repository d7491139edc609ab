package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	infraconfig "github.com/jonesrussell/north-cloud/extracurricular/infrastructure/config"
	"github.com/jonesrussell/north-cloud/extracurricular/infrastructure/logger"
	infraredis "github.com/jonesrussell/north-cloud/extracurricular/infrastructure/redis"
	"github.com/jonesrussell/north-cloud/extracurricular/internal/config"
	"github.com/jonesrussell/north-cloud/extracurricular/internal/storage"
)

// app carries the dependencies every subcommand shares.
type app struct {
	configPath string
	redisAddr  string
	namespace  string
	debug      bool

	client *redis.Client
	store  *storage.RecordStore
	logger logger.Logger
}

func newRootCommand() (*cobra.Command, *app) {
	a := &app{}

	root := &cobra.Command{
		Use:           "scrapectl",
		Short:         "Inspect and maintain the scrape record store",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.connect()
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", infraconfig.GetConfigPath("config.yml"), "service config file")
	root.PersistentFlags().StringVar(&a.redisAddr, "redis", "", "redis address (overrides config)")
	root.PersistentFlags().StringVar(&a.namespace, "namespace", "", "key namespace (overrides config)")
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		newStoreCommand(a),
		newGetCommand(a),
		newListCommand(a),
		newDeleteCommand(a),
		newDumpCommand(a),
		newClearCommand(a),
		newFetchCommand(a),
		newSmokeCommand(a),
	)
	return root, a
}

// execute runs the command tree and releases the redis connection afterwards,
// also when the command failed.
func execute(ctx context.Context, root *cobra.Command, a *app) error {
	err := root.ExecuteContext(ctx)
	return errors.Join(err, a.close())
}

func (a *app) connect() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if a.redisAddr != "" {
		cfg.Redis.Address = a.redisAddr
	}
	if a.namespace != "" {
		cfg.Scrape.Namespace = a.namespace
	}

	level := "warn"
	if a.debug {
		level = "debug"
	}
	a.logger, err = logger.New(logger.Config{Level: level, OutputPaths: []string{"stderr"}})
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}

	a.client, err = infraredis.NewClient(cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect to redis at %s: %w", cfg.Redis.Address, err)
	}

	a.store = storage.NewRecordStore(a.client, storage.Config{
		Namespace:    cfg.Scrape.Namespace,
		MaxTxRetries: cfg.Scrape.MaxTxRetries,
	}, a.logger)

	a.logger.Debug("Connected",
		logger.String("redis_address", cfg.Redis.Address),
		logger.String("namespace", cfg.Scrape.Namespace),
	)
	return nil
}

func (a *app) close() error {
	var err error
	if a.client != nil {
		err = a.client.Close()
		a.client = nil
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	return err
}
