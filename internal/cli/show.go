package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ppiankov/atlasprompt/internal/pipeline"
	"github.com/ppiankov/atlasprompt/internal/style"
)

var showJSON bool

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current set",
	Long: `Show prints the current set with its marker numbers and colours.

Example:
  atlasprompt show
  atlasprompt show --json > coordinates.json`,
	Args: cobra.NoArgs,
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)

	showCmd.Flags().BoolVar(&showJSON, "json", false, "print the raw place records as JSON")
	showCmd.Flags().String("store", "", "store backend (memory, file, layered, redis)")
	showCmd.Flags().String("store-path", "", "path of the current set document")
}

func runShow(cmd *cobra.Command, args []string) error {
	p, err := newPipeline(false)
	if err != nil {
		return err
	}

	records, err := p.Current(context.Background())
	if err != nil {
		return err
	}

	if showJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	fmt.Fprintf(os.Stderr, "Scope: %s\n\n", style.ClassifyScope(records))
	printPlaces(p.Annotate(records))
	return nil
}

// printPlaces renders annotated places as an aligned table
func printPlaces(places []pipeline.AnnotatedPlace) {
	if len(places) == 0 {
		fmt.Println("No places.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tNAME\tTYPE\tLAT\tLNG\tCOLOR\tFACT")
	for _, pl := range places {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			pl.Index, pl.Name, pl.Kind,
			strconv.FormatFloat(pl.Lat, 'f', -1, 64),
			strconv.FormatFloat(pl.Lng, 'f', -1, 64),
			pl.Color, pl.Fact)
	}
	_ = w.Flush()
}
