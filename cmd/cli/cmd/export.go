package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vlmbench/vlmbench/internal/export"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the visible models as CSV or a bubble chart",
	Long: `Export the models visible under the current filters.

By default the server's suggested filename is used. Use --file - for stdout,
or --upload to publish the export to the server's bucket.

Examples:
  vlmbench export --format csv
  vlmbench export --format png --families Qwen,InternVL --file chart.png
  vlmbench export --format svg --upload`,
	RunE: runExport,
}

var (
	exportFlags  viewFlags
	exportFormat string
	exportFile   string
	exportUpload bool
)

func init() {
	exportFlags.register(exportCmd)
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "Export format: csv, png, svg")
	exportCmd.Flags().StringVar(&exportFile, "file", "", "Output file path (default: server filename, - for stdout)")
	exportCmd.Flags().BoolVar(&exportUpload, "upload", false, "Publish to the server's export bucket instead of downloading")
	RootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	f, err := export.ParseFormat(exportFormat)
	if err != nil {
		return err
	}
	q, err := exportFlags.query()
	if err != nil {
		return err
	}
	c := newClient()
	ctx := context.Background()

	if exportUpload {
		loc, err := c.Upload(ctx, f, q)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout(), loc)
		return nil
	}

	if exportFile == "-" {
		_, err := c.Download(ctx, f, q, stdout())
		return err
	}

	// Download into a temporary file so a failed request leaves nothing behind.
	dir := "."
	if exportFile != "" {
		dir = filepath.Dir(exportFile)
	}
	tmp, err := os.CreateTemp(dir, ".vlmbench-export-*")
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer os.Remove(tmp.Name())
	name, err := c.Download(ctx, f, q, tmp)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return err
	}

	dest := exportFile
	if dest == "" {
		dest = name
	}
	if dest == "" {
		dest = "vlm-export." + string(f)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return fmt.Errorf("write %s: %w", dest, err)
	}
	fmt.Fprintf(stderr(), "Wrote %s\n", dest)
	return nil
}
