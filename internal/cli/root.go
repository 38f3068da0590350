package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"contractqa/config"
)

var (
	cfgFile  string
	docPath  string
	logLevel string
	cfg      *config.Config
	creds    config.Credentials
	rootDir  string
)

// skipCredentials marks commands that never call a provider.
const skipCredentials = "skip-credentials"

var rootCmd = &cobra.Command{
	Use:   "contractqa",
	Short: "Ask questions about a contract using retrieval-augmented generation",
	Long: `contractqa splits a contract into overlapping chunks, embeds them with an
OpenAI-compatible embedding model, keeps the vectors in memory and answers
questions by handing the most similar chunks to a chat model.

Example usage:
  contractqa demo                                  # Run the full walkthrough
  contractqa ask -q "What services are provided?"  # Answer one question
  contractqa query -q "termination" --json         # Show retrieved chunks only
  contractqa serve                                 # Open the browser form`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		if err := config.LoadEnv(rootDir); err != nil {
			return err
		}

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if docPath != "" {
			cfg.Document.Path = docPath
		}
		if logLevel != "" {
			cfg.Logging.Level = logLevel
		}
		setupLogging(cfg.Logging)

		if err := cfg.Validate(); err != nil {
			return err
		}

		if cmd.Annotations[skipCredentials] == "true" {
			return nil
		}
		creds, err = cfg.ResolveCredentials()
		return err
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// ExecuteServe runs the serve command with the process arguments as its
// flags, for the standalone web binary.
func ExecuteServe() {
	rootCmd.SetArgs(append([]string{"serve"}, os.Args[1:]...))
	Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./contractqa.yaml)")
	rootCmd.PersistentFlags().StringVar(&docPath, "document", "", "contract text file (overrides document.path)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "working directory for config and .env (default is current directory)")
}

func setupLogging(lc config.LoggingConfig) {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lc.SlogLevel()})
	slog.SetDefault(slog.New(handler))
}

func GetConfig() *config.Config {
	return cfg
}
