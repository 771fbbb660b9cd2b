package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vlmbench/vlmbench/cmd/cli/format"
)

var suggestCmd = &cobra.Command{
	Use:   "suggest <query>",
	Short: "Suggest model names for a possibly misspelled query",
	Long: `Rank models whose name or family approximately matches the query.

Examples:
  vlmbench suggest qwen
  vlmbench suggest "intrn vl" --limit 3`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSuggest,
}

var suggestLimit int

func init() {
	suggestCmd.Flags().IntVar(&suggestLimit, "limit", 8, "Max suggestions")
	RootCmd.AddCommand(suggestCmd)
}

func runSuggest(cmd *cobra.Command, args []string) error {
	got, err := newClient().Suggest(context.Background(), strings.Join(args, " "), suggestLimit)
	if err != nil {
		return err
	}
	if len(got) == 0 && getFormat() == format.FormatTable {
		fmt.Fprintln(stderr(), "No matching models.")
		return nil
	}
	rows := make([][]string, len(got))
	for i, s := range got {
		rows[i] = []string{s.Name, s.Family, format.Float(s.Match, 2)}
	}
	return format.Write(stdout(), getFormat(), got, []string{"Model", "Family", "Distance"}, rows)
}
