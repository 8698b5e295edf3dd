package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/atlasprompt/internal/model"
	"github.com/ppiankov/atlasprompt/internal/pipeline"
	"github.com/ppiankov/atlasprompt/internal/render"
	"github.com/ppiankov/atlasprompt/internal/validate"
)

var (
	renderOut     string
	renderInput   string
	renderTheme   string
	renderNoNames bool
	renderURLOnly bool
	renderTimeout time.Duration
)

// renderCmd represents the render command
var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the current set (or a JSON file) to a PNG map",
	Long: `Render composes the static map request for the current set and saves the image.

Example:
  atlasprompt render -o map.png
  atlasprompt render --theme night --no-names
  atlasprompt render --input coordinates.json --url`,
	Args: cobra.NoArgs,
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().StringVarP(&renderOut, "output", "o", "map.png", "output image path")
	renderCmd.Flags().StringVar(&renderInput, "input", "", "render places from this JSON file instead of the current set")
	renderCmd.Flags().StringVar(&renderTheme, "theme", "", "map theme (default, dark, light, grayscale, retro, night, aubergine)")
	renderCmd.Flags().BoolVar(&renderNoNames, "no-names", false, "hide name markers and boundary labels")
	renderCmd.Flags().BoolVar(&renderURLOnly, "url", false, "print the request URL (key redacted) instead of fetching")
	renderCmd.Flags().DurationVar(&renderTimeout, "timeout", time.Minute, "overall timeout")
	renderCmd.Flags().Int("width", 0, "image width in pixels")
	renderCmd.Flags().Int("height", 0, "image height in pixels")
	renderCmd.Flags().String("store", "", "store backend (memory, file, layered, redis)")
	renderCmd.Flags().String("store-path", "", "path of the current set document")
}

func runRender(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), renderTimeout)
	defer cancel()

	p, err := newPipeline(false)
	if err != nil {
		return err
	}

	opts := pipeline.RenderOptions{ShowNames: !renderNoNames, Theme: renderTheme}

	var req render.Request
	if renderInput != "" {
		records, err := readRecords(renderInput)
		if err != nil {
			return err
		}
		req = p.RequestFor(records, opts)
	} else {
		req, err = p.BuildRequest(ctx, opts)
		if err != nil {
			return err
		}
	}

	if renderURLOnly {
		fmt.Println(p.RenderURL(req))
		return nil
	}

	if cfg.Render.APIKey == "" {
		log.Warn("no rendering API key configured (set MAPS_API_KEY)")
	}

	img, err := p.Fetch(ctx, req)
	if err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	if err := os.WriteFile(renderOut, img.Data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", renderOut, err)
	}
	fmt.Fprintf(os.Stderr, "✓ Wrote map: %s (%d bytes)\n", renderOut, len(img.Data))
	return nil
}

// readRecords loads and validates a place list from a JSON file
func readRecords(path string) ([]model.PlaceRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	records, err := validate.Validate(raw)
	if err != nil {
		return nil, fmt.Errorf("validate %s: %w", path, err)
	}
	return records, nil
}
