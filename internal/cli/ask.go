package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	askText    string
	askTopK    int
	askSources bool
	askJSON    bool
)

var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "Answer a question about the contract",
	Long: `Retrieve the most similar chunks for a question and ask the chat model to
answer from them.

Examples:
  contractqa ask -q "What are the services agreed to provide?"
  contractqa ask -q "How can the agreement be terminated?" -k 6 --sources`,
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringVarP(&askText, "question", "q", "", "question to ask (required)")
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "number of chunks to answer from (default from config)")
	askCmd.Flags().BoolVar(&askSources, "sources", false, "print the chunks the answer was built from")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output as JSON")
	askCmd.MarkFlagRequired("question")
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	pipeline, err := NewPipeline(cfg, creds)
	if err != nil {
		return err
	}
	if !askJSON {
		pipeline.OnProgress(newProgress("Embedding"))
	}

	answer := pipeline.Ask(cmd.Context(), askText, askTopK)

	if askJSON {
		out := struct {
			Question string `json:"question"`
			Answer   string `json:"answer"`
			Error    string `json:"error,omitempty"`
			Sources  any    `json:"sources,omitempty"`
		}{Question: answer.Question, Answer: answer.Text, Sources: answer.Sources}
		if answer.Err != nil {
			out.Error = answer.Err.Error()
		}
		output, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Println(answer)

	if askSources && len(answer.Sources) > 0 {
		fmt.Println()
		for i, sc := range answer.Sources {
			fmt.Printf("--- [%d] %s chunk %d, chars %d-%d (score: %.2f) ---\n",
				i+1, sc.Chunk.Source, sc.Chunk.Index, sc.Chunk.StartOffset, sc.Chunk.EndOffset(), sc.Score)
			fmt.Println(truncate(sc.Chunk.Text, 500))
			fmt.Println()
		}
	}

	return nil
}
