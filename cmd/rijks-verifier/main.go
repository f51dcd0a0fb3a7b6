// Command rijks-verifier checks the documented behaviour of the Rijksmuseum
// collection API.
package main

import (
	"errors"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"rijks-verifier/internal/config"
)

// errChecksFailed makes the process exit non-zero without printing usage.
var errChecksFailed = errors.New("verification failed")

func newRootCmd() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:   "rijks-verifier",
		Short: "Verify the Rijksmuseum collection API contract",
		Long: `Runs contract checks against the Rijksmuseum collection API.

The API key is read from RIJKS_API_KEY. Checks that need it are skipped
when it is not set.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (overrides LOGGER_LEVEL)")

	// Each subcommand loads config itself so flags apply before logging starts.
	load := func() (*config.Config, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		if logLevel != "" {
			cfg.Logger.Level = logLevel
		}
		initLogger(cfg)
		return cfg, nil
	}

	root.AddCommand(newRunCmd(load))
	root.AddCommand(newChecksCmd(load))
	root.AddCommand(newServeCmd(load))
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errChecksFailed) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func initLogger(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.Logger.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Logger.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}
