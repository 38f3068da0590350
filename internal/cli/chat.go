package cli

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"contractqa/internal/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Ask questions in an interactive terminal form",
	Long: `Open a terminal form: type a question and press Enter to see the answer,
use up/down to browse the chunks it was built from, Esc or Ctrl+C to quit.`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	pipeline, err := NewPipeline(cfg, creds)
	if err != nil {
		return err
	}

	title := fmt.Sprintf("%s  (chunks %d/%d, top-k %d, %s)",
		cfg.Document.Path, cfg.Chunker.ChunkSize, cfg.Chunker.Overlap, cfg.Retrieve.TopK, cfg.Completion.Model)
	timeout := 2 * time.Duration(cfg.Provider.TimeoutSecs) * time.Second

	p := tea.NewProgram(tui.New(pipeline, title, cfg.Retrieve.TopK, timeout), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("terminal UI failed: %w", err)
	}
	return nil
}
