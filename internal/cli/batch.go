package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/spf13/cobra"

	"github.com/ppiankov/atlasprompt/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Extract places for many prompts from a file in parallel",
	Long: `Batch reads prompts from a file (one per line, # for comments), extracts
each one concurrently and writes one JSON file per prompt. Requests to the
extraction provider are paced by batch.requests_per_second.

Batch never changes the current set.

Example:
  atlasprompt batch prompts.txt
  atlasprompt batch prompts.txt --concurrency 8 --output-dir ./places`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default: batch.concurrency)")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./atlasprompt-places", "output directory for JSON files")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().String("provider", "", "extraction provider (gemini, openai, anthropic, ollama)")
	batchCmd.Flags().String("model", "", "model name (provider-specific)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	workers := concurrency
	if workers <= 0 {
		workers = cfg.Batch.Concurrency
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	p, err := newPipeline(true)
	if err != nil {
		return err
	}

	processor := worker.NewBatchProcessor(p, workers, cfg.Batch.RequestsPerSecond, cfg.Batch.Burst)

	log.Info("batch started", "file", file, "workers", workers, "output_dir", outputDir)
	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	successCount := 0
	for _, result := range results {
		if result.Error != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Prompt, result.Error)
			continue
		}

		path := filepath.Join(outputDir, fmt.Sprintf("%03d-%s.json", result.Index+1, sanitizeFilename(result.Prompt)))
		if err := writeJSON(path, result.Result.Records); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Prompt, err)
			continue
		}

		successCount++
		fmt.Fprintf(os.Stderr, "✓ %s (%d places)\n", result.Prompt, len(result.Result.Records))
	}

	fmt.Fprintf(os.Stderr, "\n  Total:     %d prompts\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", len(results)-successCount)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n\n", outputDir)

	if successCount == 0 && len(results) > 0 {
		return fmt.Errorf("all %d prompts failed", len(results))
	}
	return nil
}

// sanitizeFilename turns a prompt into a short, filesystem-safe slug
func sanitizeFilename(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}

	slug := strings.TrimSuffix(b.String(), "-")
	if runes := []rune(slug); len(runes) > 60 {
		slug = strings.TrimSuffix(string(runes[:60]), "-")
	}
	if slug == "" {
		slug = "prompt"
	}
	return slug
}
