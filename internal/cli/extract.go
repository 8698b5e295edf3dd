package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/atlasprompt/internal/model"
)

var (
	extractTimeout time.Duration
	extractOut     string
	extractDryRun  bool
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract <prompt>",
	Short: "Extract places from a prompt and make them the current set",
	Long: `Extract sends the prompt to the configured language model, validates the
returned place list and, on success, replaces the current set.
On any failure the previous current set is kept.

Example:
  atlasprompt extract "The Silk Road from Xi'an to Samarkand"
  atlasprompt extract "Castles of Wales" --provider openai --model gpt-4o-mini
  atlasprompt extract "Roman Britain" --dry-run -o places.json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().String("provider", "", "extraction provider (gemini, openai, anthropic, ollama)")
	extractCmd.Flags().String("model", "", "model name (provider-specific)")
	extractCmd.Flags().String("store", "", "store backend (memory, file, layered, redis)")
	extractCmd.Flags().String("store-path", "", "path of the current set document")
	extractCmd.Flags().DurationVar(&extractTimeout, "timeout", 2*time.Minute, "overall timeout")
	extractCmd.Flags().StringVarP(&extractOut, "output", "o", "", "also write the places to this JSON file")
	extractCmd.Flags().BoolVar(&extractDryRun, "dry-run", false, "validate only; do not replace the current set")
}

func runExtract(cmd *cobra.Command, args []string) error {
	prompt := strings.Join(args, " ")
	ctx, cancel := context.WithTimeout(context.Background(), extractTimeout)
	defer cancel()

	p, err := newPipeline(true)
	if err != nil {
		return err
	}

	extract := p.Extract
	if extractDryRun {
		extract = p.ExtractOnly
	}

	result, err := extract(ctx, prompt)
	if err != nil {
		if raw, ok := model.RawResponse(err); ok && verbose {
			fmt.Fprintf(os.Stderr, "Raw response:\n%s\n\n", raw)
		}
		return fmt.Errorf("extract failed: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Extracted %d places with %s in %v (%d tokens)\n",
			len(result.Records), result.Model, result.Duration.Round(time.Millisecond), result.TokensUsed)
	}

	if extractOut != "" {
		if err := writeJSON(extractOut, result.Records); err != nil {
			return err
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote JSON: %s\n", extractOut)
		}
	}

	printPlaces(p.Annotate(result.Records))
	return nil
}

// writeJSON writes v as indented JSON
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
