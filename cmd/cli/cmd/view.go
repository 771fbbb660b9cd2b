package cmd

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/vlmbench/vlmbench/cmd/cli/format"
	"github.com/vlmbench/vlmbench/internal/config"
	"github.com/vlmbench/vlmbench/internal/debounce"
	"github.com/vlmbench/vlmbench/internal/logging"
	"github.com/vlmbench/vlmbench/internal/viewstate"
)

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Build a shareable chart view, remembering the family selection",
	Long: `Start from a shared link (or an empty view), apply selection changes and
print the resulting link. The family selection is saved to a preferences
file and restored when the starting link names no families.

Examples:
  vlmbench view --families Qwen,InternVL
  vlmbench view --toggle-family Phi --search qwen
  vlmbench view --url 'https://example.com/?families=Qwen' --comparison --compare-add Qwen2-VL-7B`,
	Args: cobra.NoArgs,
	RunE: runView,
}

var (
	viewURL         string
	viewBase        string
	viewPrefsPath   string
	viewFamilies    []string
	viewToggle      []string
	viewAll         bool
	viewSearch      string
	viewClearSearch bool
	viewSelect      string
	viewComparison  bool
	viewCompareAdd  []string
	viewDone        bool
	viewDebounce    time.Duration
)

func init() {
	f := viewCmd.Flags()
	f.StringVar(&viewURL, "url", "", "Shared link or query string to start from")
	f.StringVar(&viewBase, "base", "", "Base URL of the printed link (default: the --url host, or /)")
	f.StringVar(&viewPrefsPath, "prefs", "", "Preferences file (default: "+viewstate.DefaultPreferencesPath()+")")
	f.StringSliceVar(&viewFamilies, "families", nil, "Replace the family selection")
	f.StringSliceVar(&viewToggle, "toggle-family", nil, "Toggle families in or out of the selection")
	f.BoolVar(&viewAll, "all", false, "Select all families")
	f.StringVar(&viewSearch, "search", "", "Set the search text")
	f.BoolVar(&viewClearSearch, "clear-search", false, "Clear the search text")
	f.StringVar(&viewSelect, "select", "", "Select a model for the details panel")
	f.BoolVar(&viewComparison, "comparison", false, "Enter comparison mode before applying --compare-add")
	f.StringSliceVar(&viewCompareAdd, "compare-add", nil, "Toggle models in the comparison set")
	f.BoolVar(&viewDone, "done-comparing", false, "Leave comparison mode, clearing the comparison set")
	f.DurationVar(&viewDebounce, "debounce", 0, "Search quiet period (default: the configured debounce)")
	RootCmd.AddCommand(viewCmd)
}

// startQuery extracts the query of a link or bare query string, and the
// base to print results against.
func startQuery(raw string) (url.Values, string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return url.Values{}, "/", nil
	}
	if !strings.Contains(raw, "://") && !strings.HasPrefix(raw, "/") {
		q, err := url.ParseQuery(strings.TrimPrefix(raw, "?"))
		return q, "/", err
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, "", fmt.Errorf("parse --url: %w", err)
	}
	q := u.Query()
	u.RawQuery = ""
	u.Fragment = ""
	return q, u.String(), nil
}

func runView(cmd *cobra.Command, args []string) error {
	q, base, err := startQuery(viewURL)
	if err != nil {
		return err
	}
	if viewBase != "" {
		base = viewBase
	}
	path := viewPrefsPath
	if path == "" {
		path = viewstate.DefaultPreferencesPath()
	}

	logger := logging.New(logging.Config{Level: "warn", Format: "console", Output: stderr()})
	nav := viewstate.NewMemoryNavigator(q)
	store := viewstate.NewStore(nav, viewstate.NewFilePreferences(path), logger)
	defer store.Close()

	switch {
	case viewAll:
		store.Update(viewstate.SetFamilies())
	case len(viewFamilies) > 0:
		store.Update(viewstate.SetFamilies(viewFamilies...))
	}
	for _, fam := range viewToggle {
		store.Update(viewstate.ToggleFamily(store.Snapshot(), fam))
	}

	if viewSearch != "" || viewClearSearch {
		delay := viewDebounce
		if delay <= 0 {
			delay = configuredDebounce(logger)
		}
		in := viewstate.NewSearchInput(store, nil, delay)
		if viewClearSearch {
			in.Clear()
		} else {
			in.Type(viewSearch)
			in.Submit()
		}
		in.Close()
	}

	if viewSelect != "" {
		store.Update(viewstate.SelectModel(viewSelect))
	}
	if viewComparison {
		store.Update(viewstate.SetComparisonMode(true))
	}
	for _, name := range viewCompareAdd {
		store.Update(viewstate.ToggleCompared(store.Snapshot(), name))
	}
	if viewDone {
		store.Update(viewstate.SetComparisonMode(false))
	}

	state := store.Snapshot()
	link, err := viewstate.ShareURL(base, state)
	if err != nil {
		return err
	}

	if getFormat() == format.FormatJSON {
		return format.JSONTo(stdout(), map[string]any{"state": state, "url": link})
	}
	out := stdout()
	fmt.Fprintf(out, "Families:   %s\n", strings.Join(state.Families, ", "))
	fmt.Fprintf(out, "Search:     %s\n", orDash(state.Search))
	fmt.Fprintf(out, "Selected:   %s\n", orDash(state.Model))
	fmt.Fprintf(out, "Comparing:  %s\n", orDash(strings.Join(state.Compare, ", ")))
	fmt.Fprintf(out, "Link:       %s\n", link)
	return nil
}

// configuredDebounce reads the debounce setting from VLMBENCH_CONFIG, .env
// files and the environment, falling back to the default delay.
func configuredDebounce(logger zerolog.Logger) time.Duration {
	cfg, err := config.Load(os.Getenv("VLMBENCH_CONFIG"))
	if err != nil {
		logger.Warn().Err(err).Msg("using default debounce")
		return debounce.DefaultDelay
	}
	if cfg.Debounce <= 0 {
		return debounce.DefaultDelay
	}
	return cfg.Debounce
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
