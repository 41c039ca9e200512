package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/XavierBriggs/fortuna/services/stake-calculator/internal/config"
	"github.com/XavierBriggs/fortuna/services/stake-calculator/internal/empirical"
	"github.com/XavierBriggs/fortuna/services/stake-calculator/internal/logger"
	"github.com/XavierBriggs/fortuna/services/stake-calculator/internal/view"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

var (
	configFile string
	cfg        *config.Config
	log        *logrus.Logger
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to configuration file")
	rootCmd.AddCommand(serveCmd, quoteCmd, watchCmd)
}

var rootCmd = &cobra.Command{
	Use:     "stake-calculator",
	Short:   "Kelly stake sizing for single bets",
	Version: fmt.Sprintf("%s (%s)", Version, GitCommit),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A missing .env is fine
		_ = godotenv.Load()

		var err error
		cfg, err = config.LoadAndValidate(configFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		log = logger.New(cfg.App.LogLevel, cfg.App.Environment)
		return nil
	},
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "✗ %v\n", err)
		os.Exit(1)
	}
}

func defaultsFrom(c *config.Config) view.Defaults {
	return view.Defaults{
		Bankroll:    c.Calculator.DefaultBankroll,
		CapFraction: c.Calculator.DefaultCapFraction,
		MinStake:    c.Calculator.MinStake,
	}
}

// newSource picks the remote client when a URL is configured, else the local history.
// The returned func releases the source.
func newSource(c config.EmpiricalConfig, logger *logrus.Logger) (empirical.Source, func(), error) {
	if c.RemoteURL != "" {
		client := empirical.NewClient(empirical.ClientConfig{
			URL:       c.RemoteURL,
			Timeout:   c.RequestTimeout,
			RetryMax:  c.RetryMax,
			RateLimit: c.RateLimit,
		}, logger)
		logger.WithField("url", c.RemoteURL).Info("Using remote empirical endpoint")
		return client, client.Close, nil
	}

	history, err := empirical.LoadHistory(c.HistoryFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load settled bets: %w", err)
	}
	logger.WithFields(logrus.Fields{
		"file":         c.HistoryFile,
		"settled_bets": history.Len(),
	}).Info("Loaded settled bet history")

	params := empirical.Params{
		Alpha:   c.Alpha,
		TauDays: c.TauDays,
		MinProb: c.MinProb,
		MaxProb: c.MaxProb,
	}
	return empirical.NewService(history, params, c.CacheTTL, logger), func() {}, nil
}
