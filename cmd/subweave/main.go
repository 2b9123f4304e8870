package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/subweave/subweave/internal/config"
	"github.com/subweave/subweave/internal/fetch"
	"github.com/subweave/subweave/internal/pipeline"
	"github.com/subweave/subweave/internal/rules"
)

// Build info - injected via ldflags
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "subweave",
	Short: "Subscription link decoder and Clash config generator",
	Long:  `subweave fetches proxy share-link subscriptions, decodes them and emits Clash routing configs.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, err
	}

	log := logrus.New()
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	if cfg.Log.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	return cfg, log, nil
}

func buildPipeline(cfg *config.Config, log *logrus.Logger) *pipeline.Pipeline {
	client := fetch.NewClient(fetch.Options{
		Timeout:  cfg.Fetch.Timeout,
		MaxBytes: cfg.Fetch.MaxBytes,
		Retries:  cfg.Fetch.Retries,
		Delay:    cfg.Fetch.Delay,
		CacheTTL: cfg.Fetch.CacheTTL,
	})

	var provider rules.Provider = rules.Static{}
	if cfg.Rules.URL != "" {
		provider = rules.Remote{URL: cfg.Rules.URL, Fetch: client.Text}
	}

	return &pipeline.Pipeline{
		Fetch:      client.Text,
		Provider:   provider,
		MaxProxies: cfg.Output.MaxProxies,
		Log:        log,
	}
}
