package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"contractqa/config"
	"contractqa/internal/cli"
)

func main() {
	dir := flag.String("dir", ".", "Directory holding contractqa.yaml and .env")
	document := flag.String("document", "", "Contract text file (overrides config)")
	query := flag.String("q", "", "Query to test")
	topK := flag.Int("k", 4, "Number of results")
	flag.Parse()

	if *query == "" {
		fmt.Println("Usage: go run ./cmd/benchmark -q \"query\" [-k 4] [-document file.txt]")
		fmt.Println("\nReports:")
		fmt.Println("  1. Embedding setup (model, chunk count, dimension)")
		fmt.Println("  2. Similarity of the top-k chunks to the query")
		fmt.Println("  3. Overall retrieval quality rating")
		os.Exit(1)
	}

	if err := config.LoadEnv(*dir); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading .env: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.LoadFromDir(*dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *document != "" {
		cfg.Document.Path = *document
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	creds, err := cfg.ResolveCredentials()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	pipeline, err := cli.NewPipeline(cfg, creds)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building pipeline: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	result, err := pipeline.Build(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building index: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("RETRIEVAL BENCHMARK")
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("Document: %s\n", shortPath(result.Document.Path))
	fmt.Printf("Chunks indexed: %d (size %d, overlap %d)\n", result.ChunksIndexed, cfg.Chunker.ChunkSize, cfg.Chunker.Overlap)
	fmt.Printf("Model: %s (%s)\n", result.Model, cfg.Embedding.Provider)
	fmt.Printf("Index built in: %s\n", result.Duration)
	fmt.Println()

	fmt.Printf("Query: \"%s\"\n", *query)
	fmt.Println(strings.Repeat("-", 70))

	results, err := pipeline.Retrieve(ctx, *query, *topK)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Search error: %v\n", err)
		os.Exit(1)
	}
	if len(results) == 0 {
		fmt.Println("No chunks indexed.")
		return
	}

	fmt.Printf("Top %d matches:\n\n", len(results))

	totalScore := 0.0
	for i, r := range results {
		preview := []rune(r.Chunk.Text)
		if len(preview) > 150 {
			preview = append(preview[:150], []rune("...")...)
		}
		text := strings.ReplaceAll(string(preview), "\n", " ")

		similarity := r.Score
		totalScore += similarity

		fmt.Printf("%d. [%s %.3f] chunk %d, chars %d-%d\n", i+1, rating(similarity), similarity,
			r.Chunk.Index, r.Chunk.StartOffset, r.Chunk.EndOffset())
		fmt.Printf("   %s\n\n", text)
	}

	avgScore := totalScore / float64(len(results))
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("QUALITY METRICS:\n")
	fmt.Printf("  Average similarity: %.3f\n", avgScore)
	fmt.Printf("  Top-1 similarity:   %.3f\n", results[0].Score)

	if avgScore > 0.8 {
		fmt.Println("  Status: GOOD - retrieved chunks are close to the query")
	} else if avgScore > 0.7 {
		fmt.Println("  Status: OK - results are somewhat related")
	} else {
		fmt.Println("  Status: POOR - try rephrasing or a smaller chunk size")
	}
}

// rating buckets a cosine similarity. Ada-002 similarities cluster high, so
// the thresholds sit above 0.7.
func rating(similarity float64) string {
	switch {
	case similarity > 0.85:
		return "HIGH"
	case similarity > 0.8:
		return "GOOD"
	case similarity > 0.7:
		return "OK"
	default:
		return "LOW"
	}
}

func shortPath(path string) string {
	parts := strings.Split(path, "/")
	if len(parts) > 2 {
		return parts[len(parts)-1]
	}
	return path
}
