package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vlmbench/vlmbench/cmd/cli/format"
	"github.com/vlmbench/vlmbench/internal/database"
	"github.com/vlmbench/vlmbench/internal/scoring"
)

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List the built-in benchmark weight presets",
	RunE:  runPresets,
}

var weightsCmd = &cobra.Command{
	Use:   "weights",
	Short: "Show how a weight selection splits across benchmarks",
	Long: `Show each benchmark's weight and share of the overall score.

Examples:
  vlmbench weights --preset reasoning-heavy
  vlmbench weights --weight OCRBench=3,AI2D=1.5`,
	RunE: runWeights,
}

var weightsFlags viewFlags

func init() {
	weightsCmd.Flags().StringVar(&weightsFlags.preset, "preset", "", "Weight preset")
	weightsCmd.Flags().StringToStringVar(&weightsFlags.weights, "weight", nil, "Benchmark weight overrides")
	RootCmd.AddCommand(presetsCmd)
	RootCmd.AddCommand(weightsCmd)
}

func runPresets(cmd *cobra.Command, args []string) error {
	presets, err := newClient().Presets(context.Background())
	if err != nil {
		return err
	}
	rows := make([][]string, len(presets))
	for i, p := range presets {
		rows[i] = []string{p.Name, p.Description, emphasis(p.Weights)}
	}
	return format.Write(stdout(), getFormat(), presets, []string{"Preset", "Description", "Emphasis"}, rows)
}

// emphasis lists the benchmarks weighted away from the default.
func emphasis(w scoring.Weights) string {
	var parts []string
	for _, b := range database.Benchmarks {
		if v := w.Get(b); v != scoring.DefaultWeight {
			parts = append(parts, fmt.Sprintf("%s x%s", scoring.Info(b).Name, format.Float(v, 1)))
		}
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ", ")
}

func runWeights(cmd *cobra.Command, args []string) error {
	q, err := weightsFlags.query()
	if err != nil {
		return err
	}
	wb, err := newClient().Weights(context.Background(), q)
	if err != nil {
		return err
	}
	rows := make([][]string, len(wb.Breakdown))
	for i, r := range wb.Breakdown {
		rows[i] = []string{scoring.Info(r.Benchmark).Name, format.Float(r.Weight, 2), fmt.Sprintf("%d%%", r.Percent)}
	}
	return format.Write(stdout(), getFormat(), wb, []string{"Benchmark", "Weight", "Share"}, rows)
}
