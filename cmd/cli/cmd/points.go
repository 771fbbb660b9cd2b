package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vlmbench/vlmbench/cmd/cli/format"
	"github.com/vlmbench/vlmbench/internal/pipeline"
)

var pointsCmd = &cobra.Command{
	Use:   "points",
	Short: "List the models visible under the current filters",
	Long: `List the models that pass the family, range and search filters, scored
with the selected weights.

Examples:
  vlmbench points --families Qwen,InternVL
  vlmbench points --search qwen --preset ocr-focused
  vlmbench points --weight MathVista=3 --score-min 60 -o json`,
	RunE: runPoints,
}

var pointsFlags viewFlags

func init() {
	pointsFlags.register(pointsCmd)
	RootCmd.AddCommand(pointsCmd)
}

func runPoints(cmd *cobra.Command, args []string) error {
	q, err := pointsFlags.query()
	if err != nil {
		return err
	}
	resp, err := newClient().Points(context.Background(), q)
	if err != nil {
		return err
	}

	if resp.Empty && getFormat() == format.FormatTable {
		fmt.Fprintln(stderr(), "No models match the current filters.")
		return nil
	}
	if err := format.Write(stdout(), getFormat(), resp, pointHeaders(), pointRows(resp.Points)); err != nil {
		return err
	}
	if getFormat() == format.FormatTable {
		fmt.Fprintf(stderr(), "\n%d model(s)\n", resp.Count)
	}
	return nil
}

func pointHeaders() []string {
	return []string{"Model", "Family", "Score", "Params", "Released"}
}

func pointRows(points []pipeline.ProcessedPoint) [][]string {
	rows := make([][]string, len(points))
	for i, p := range points {
		rows[i] = []string{
			p.Name,
			p.Family,
			format.Float(p.EffectiveScore, 1),
			format.Params(p.Params, p.ParamsEstimated),
			format.Date(p.ReleaseDate),
		}
	}
	return rows
}
