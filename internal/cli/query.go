package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	queryText string
	queryTopK int
	queryJSON bool
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Show the chunks most similar to a query",
	Long: `Embed a query and print the most similar chunks without calling the chat
model.

Examples:
  contractqa query -q "payment terms"
  contractqa query -q "termination notice" --top-k 2 --json`,
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().StringVarP(&queryText, "query", "q", "", "search query (required)")
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "number of results (default from config)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output as JSON")
	queryCmd.MarkFlagRequired("query")
}

// ScoredChunkResult is a simplified result for CLI output.
type ScoredChunkResult struct {
	Source string  `json:"source"`
	Index  int     `json:"index"`
	Start  int     `json:"start"`
	End    int     `json:"end"`
	Score  float64 `json:"score"`
	Text   string  `json:"text"`
}

func runQuery(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	pipeline, err := NewPipeline(cfg, creds)
	if err != nil {
		return err
	}
	if !queryJSON {
		pipeline.OnProgress(newProgress("Embedding"))
	}

	topK := cfg.Retrieve.TopK
	if queryTopK > 0 {
		topK = queryTopK
	}

	chunks, err := pipeline.Retrieve(cmd.Context(), queryText, topK)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	results := make([]ScoredChunkResult, 0, len(chunks))
	for _, c := range chunks {
		results = append(results, ScoredChunkResult{
			Source: c.Chunk.Source,
			Index:  c.Chunk.Index,
			Start:  c.Chunk.StartOffset,
			End:    c.Chunk.EndOffset(),
			Score:  c.Score,
			Text:   c.Chunk.Text,
		})
	}

	if queryJSON {
		output, _ := json.MarshalIndent(results, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}
	fmt.Printf("Found %d results for: %s\n\n", len(results), queryText)
	for i, r := range results {
		fmt.Printf("--- [%d] %s chunk %d, chars %d-%d (score: %.2f) ---\n", i+1, r.Source, r.Index, r.Start, r.End, r.Score)
		fmt.Println(truncate(r.Text, 500))
		fmt.Println()
	}

	return nil
}
