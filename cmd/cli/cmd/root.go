package cmd

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vlmbench/vlmbench/cmd/cli/client"
	"github.com/vlmbench/vlmbench/cmd/cli/format"
)

var (
	apiURL       string
	outputFormat string
)

// RootCmd is the top-level CLI command.
var RootCmd = &cobra.Command{
	Use:          "vlmbench",
	Short:        "vlmbench CLI: explore vision-language model benchmark results",
	SilenceUsage: true,
}

func init() {
	RootCmd.PersistentFlags().StringVar(&apiURL, "api-url", envOrDefault("VLMBENCH_API_URL", "http://localhost:8080"), "vlmbench API base URL")
	RootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "Output format: table, json, csv")
}

func newClient() *client.Client {
	return client.New(apiURL)
}

func getFormat() format.OutputFormat {
	return format.Parse(outputFormat)
}

func stdout() io.Writer {
	return RootCmd.OutOrStdout()
}

func stderr() io.Writer {
	return RootCmd.ErrOrStderr()
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
