package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"contractqa/internal/web"
)

var (
	serveAddr   string
	serveWarmup bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the question form in a browser",
	Long: `Start an HTTP server with a question form at / and a JSON endpoint at
/api/ask. The index is built on the first question unless --warmup is set.

Examples:
  contractqa serve
  contractqa serve --addr :9000 --warmup`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	serveCmd.Flags().BoolVar(&serveWarmup, "warmup", false, "build the index before accepting requests")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	pipeline, err := NewPipeline(cfg, creds)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if serveWarmup {
		if _, err := pipeline.Build(ctx); err != nil {
			return err
		}
	}

	srv, err := web.NewServer(pipeline, cfg.Server)
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}
