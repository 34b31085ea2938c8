package cmd

import (
	"fmt"
	"os"

	"github.com/XavierBriggs/fortuna/services/player-explorer/internal/dataset"
	"github.com/spf13/cobra"
)

var convertCmd = &cobra.Command{
	Use:   "convert <input.csv> [output.json]",
	Short: "Convert a semicolon-separated stats export to JSON",
	Long: `Convert reads a semicolon-separated CSV export (UTF-8 or Latin-1) and
writes it as an indented JSON array of records. Without an output path the
JSON goes to stdout.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	in, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening input: %w", err)
	}
	defer in.Close()

	out := cmd.OutOrStdout()
	if len(args) == 2 {
		f, err := os.Create(args[1])
		if err != nil {
			return fmt.Errorf("creating output: %w", err)
		}
		defer f.Close()
		out = f
	}

	n, err := dataset.ConvertCSV(in, out)
	if err != nil {
		return err
	}

	if len(args) == 2 {
		fmt.Fprintf(cmd.ErrOrStderr(), "✓ Converted %d records to %s\n", n, args[1])
	}
	return nil
}
