package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vlmbench/vlmbench/cmd/cli/format"
	"github.com/vlmbench/vlmbench/internal/pipeline"
)

var compareCmd = &cobra.Command{
	Use:   "compare <model> [model...]",
	Short: "Compare models side by side",
	Long: `Compare models under the current filters and weights. Models hidden by
the filters are listed as missing.

Examples:
  vlmbench compare Qwen2-VL-7B InternVL2-8B
  vlmbench compare Qwen2-VL-72B GPT-4o --preset math-focused -o json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCompare,
}

var compareFlags viewFlags

func init() {
	compareFlags.register(compareCmd)
	RootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	compareFlags.compare = args
	q, err := compareFlags.query()
	if err != nil {
		return err
	}
	c, err := newClient().Compare(context.Background(), q)
	if err != nil {
		return err
	}

	if getFormat() == format.FormatTable && len(c.Models) == 0 {
		fmt.Fprintln(stderr(), "None of the models are visible under the current filters.")
		return nil
	}
	if err := format.Write(stdout(), getFormat(), c, compareHeaders(), compareRows(c.Models)); err != nil {
		return err
	}
	if getFormat() == format.FormatTable {
		if len(c.Missing) > 0 {
			fmt.Fprintf(stderr(), "\nNot visible: %s\n", strings.Join(c.Missing, ", "))
		}
		fmt.Fprintf(stderr(), "\n%d model(s) compared (* marks the best value)\n", len(c.Models))
	}
	return nil
}

func compareHeaders() []string {
	return []string{"Model", "Family", "Score", "", "Params", "", "Released", "", "Score/B"}
}

func compareRows(models []pipeline.ComparedModel) [][]string {
	rows := make([][]string, len(models))
	for i, m := range models {
		p := m.Point
		rows[i] = []string{
			p.Name,
			p.Family,
			format.Float(p.EffectiveScore, 1),
			format.Mark(m.HighestScore),
			format.Params(p.Params, p.ParamsEstimated),
			format.Mark(m.LowestParams),
			format.Date(p.ReleaseDate),
			format.Mark(m.Newest),
			format.PtrF64(m.Efficiency, 2),
		}
	}
	return rows
}
