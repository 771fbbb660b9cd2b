package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vlmbench/vlmbench/cmd/cli/format"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the server's dataset is loaded",
	Long: `Fetch the dataset load state from the server.

Examples:
  vlmbench status
  vlmbench status -o json`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	RootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	st, err := newClient().Status(context.Background())
	if err != nil {
		return err
	}
	if getFormat() == format.FormatJSON {
		return format.JSONTo(stdout(), st)
	}

	out := stdout()
	fmt.Fprintf(out, "State:   %s\n", st.Name)
	fmt.Fprintf(out, "Source:  %s\n", st.Source)
	fmt.Fprintf(out, "Models:  %d\n", st.Count)
	if !st.LoadedAt.IsZero() {
		fmt.Fprintf(out, "Loaded:  %s\n", st.LoadedAt.UTC().Format("2006-01-02 15:04:05 UTC"))
	}
	if st.Error != "" {
		fmt.Fprintf(out, "Error:   %s\n", st.Error)
	}
	return nil
}
