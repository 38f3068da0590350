package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var demoQuery string

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Walk through loading, splitting, embedding, retrieval and answering",
	Long: `Run the whole pipeline once against the configured contract, narrating
each step: the top preview_k similar chunks with their metadata, the number
of chunks a retriever with retriever_k finds, and the final answer built
from top_k chunks.

Examples:
  contractqa demo
  contractqa demo -q "What is the monthly fee?" --document data/other.txt`,
	RunE: runDemo,
}

func init() {
	rootCmd.AddCommand(demoCmd)
	demoCmd.Flags().StringVarP(&demoQuery, "query", "q", "What are the services agreed to provide?", "question to ask")
}

func runDemo(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	ctx := cmd.Context()

	fmt.Printf("Loading the %s.....\n", cfg.Provider.APIKeyEnv)

	pipeline, err := NewPipeline(cfg, creds)
	if err != nil {
		return err
	}
	pipeline.OnProgress(newProgress("Embedding"))

	fmt.Println("Loading the scanned data.....")
	fmt.Println("Splitting the text data into chunks........")
	fmt.Printf("Initializing embedding - %s (%s)........\n", cfg.Embedding.Provider, cfg.Embedding.Model)
	fmt.Println("Creating vector store in memory.......")

	result, err := pipeline.Build(ctx)
	if err != nil {
		return fmt.Errorf("failed to build index: %w", err)
	}
	fmt.Printf("Indexed %d chunks from %s in %s\n", result.ChunksIndexed, result.Document.Path, result.Duration.Round(time.Millisecond))

	preview, err := pipeline.Retrieve(ctx, demoQuery, cfg.Retrieve.PreviewK)
	if err != nil {
		return fmt.Errorf("similarity search failed: %w", err)
	}
	for i, sc := range preview {
		fmt.Printf("\n--- Chunk #%d ---\n", i+1)
		fmt.Println(sc.Chunk.Text)
		fmt.Printf("Metadata: {source: %s, chunk: %d, start: %d, end: %d, score: %.4f}\n",
			sc.Chunk.Source, sc.Chunk.Index, sc.Chunk.StartOffset, sc.Chunk.EndOffset(), sc.Score)
	}

	fmt.Println("\nCreating a retriever for further RAG steps...")
	found, err := pipeline.Retrieve(ctx, demoQuery, cfg.Retrieve.RetrieverK)
	if err != nil {
		return fmt.Errorf("retrieval failed: %w", err)
	}
	fmt.Printf("Retriever found %d chunks.\n", len(found))

	answer := pipeline.Ask(ctx, demoQuery, cfg.Retrieve.TopK)
	fmt.Printf("\nQuery: %s\n", demoQuery)
	fmt.Printf("Result: %s\n", answer)

	return nil
}
