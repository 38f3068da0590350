package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"contractqa/internal/adapter/chunker"
	"contractqa/internal/adapter/fs"
)

var chunksJSON bool

var chunksCmd = &cobra.Command{
	Use:   "chunks",
	Short: "Print the chunks the document is split into",
	Long: `Load the configured document and print its chunks with their offsets.
No provider is called, so no API key is needed.

Examples:
  contractqa chunks
  contractqa chunks --json --document data/other.txt`,
	Annotations: map[string]string{skipCredentials: "true"},
	RunE:        runChunks,
}

func init() {
	rootCmd.AddCommand(chunksCmd)
	chunksCmd.Flags().BoolVar(&chunksJSON, "json", false, "output as JSON")
}

func runChunks(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	doc, err := fs.NewLoader(cfg.Document.Pattern).Load(cfg.Document.Path)
	if err != nil {
		return err
	}

	ch, err := chunker.NewWindowChunker(cfg.Chunker.ChunkSize, cfg.Chunker.Overlap)
	if err != nil {
		return err
	}

	chunks, err := ch.Chunk(doc)
	if err != nil {
		return err
	}

	if chunksJSON {
		output, _ := json.MarshalIndent(chunks, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("%s: %d chunks (size %d, overlap %d)\n\n", doc.Path, len(chunks), cfg.Chunker.ChunkSize, cfg.Chunker.Overlap)
	for _, c := range chunks {
		fmt.Printf("--- chunk %d [%s] chars %d-%d ---\n", c.Index, c.ID, c.StartOffset, c.EndOffset())
		fmt.Println(c.Text)
		fmt.Println()
	}

	return nil
}
