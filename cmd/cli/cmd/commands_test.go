package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/vlmbench/vlmbench/internal/api"
	"github.com/vlmbench/vlmbench/internal/catalog"
	"github.com/vlmbench/vlmbench/internal/database"
	"github.com/vlmbench/vlmbench/internal/debounce"
	"github.com/vlmbench/vlmbench/internal/search"
	"github.com/vlmbench/vlmbench/internal/viewstate"
)

func record(name, family string, month time.Month, params, each float64) database.ModelRecord {
	scores := make(database.BenchmarkScores)
	for _, b := range database.Benchmarks {
		scores[b] = each
	}
	return database.ModelRecord{
		Name: name, Family: family, Params: params, Score: each, Benchmarks: scores,
		ReleaseDate: time.Date(2024, month, 1, 0, 0, 0, 0, time.UTC),
	}
}

func setupTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	cat := catalog.New(catalog.StaticSource{
		record("Qwen2-VL-7B", "Qwen", 8, 8.3, 60),
		record("InternVL2-8B", "InternVL", 7, 8, 55),
		record("Phi-3.5-Vision", "Phi", 8, 4.2, 50),
	}, zerolog.Nop())
	if err := cat.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	mux := http.NewServeMux()
	api.NewServer(cat, api.Options{Matcher: search.NewMatcher(0), Logger: zerolog.Nop()}).RegisterRoutes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	// Point CLI at the test server.
	apiURL = srv.URL
	outputFormat = "table"
	return srv
}

func captureOutput(t *testing.T, run func() error) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetErr(&errOut)
	err := run()
	RootCmd.SetOut(nil)
	RootCmd.SetErr(nil)
	return out.String(), errOut.String(), err
}

func TestPointsCommand_Table(t *testing.T) {
	setupTestServer(t)
	pointsFlags.reset()
	pointsFlags.families = []string{"Qwen", "Phi"}

	out, errOut, err := captureOutput(t, func() error { return runPoints(nil, nil) })
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Qwen2-VL-7B") || !strings.Contains(out, "Phi-3.5-Vision") {
		t.Errorf("missing rows: %s", out)
	}
	if strings.Contains(out, "InternVL2-8B") {
		t.Errorf("filtered family shown: %s", out)
	}
	if !strings.Contains(out, "8.3B") || !strings.Contains(out, "2024-08-01") {
		t.Errorf("unexpected formatting: %s", out)
	}
	if !strings.Contains(errOut, "2 model(s)") {
		t.Errorf("stderr = %s", errOut)
	}
}

func TestPointsCommand_JSON(t *testing.T) {
	setupTestServer(t)
	pointsFlags.reset()
	pointsFlags.weights = map[string]string{"OCRBench": "2"}
	outputFormat = "json"

	out, _, err := captureOutput(t, func() error { return runPoints(nil, nil) })
	if err != nil {
		t.Fatal(err)
	}
	var resp api.PointsResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if resp.Count != 3 || resp.Weights[database.OCRBench] != 2 {
		t.Errorf("resp = %+v", resp)
	}
}

func TestPointsCommand_NoResults(t *testing.T) {
	setupTestServer(t)
	pointsFlags.reset()
	pointsFlags.search = "zzzzzz"

	out, errOut, err := captureOutput(t, func() error { return runPoints(nil, nil) })
	if err != nil {
		t.Fatal(err)
	}
	if out != "" || !strings.Contains(errOut, "No models match") {
		t.Errorf("out = %q, err = %q", out, errOut)
	}
}

func TestPointsCommand_InvalidFlags(t *testing.T) {
	setupTestServer(t)
	pointsFlags.reset()
	pointsFlags.weights = map[string]string{"NotABench": "1"}
	if err := runPoints(nil, nil); err == nil {
		t.Error("expected unknown benchmark error")
	}

	pointsFlags.reset()
	pointsFlags.preset = "nope"
	if err := runPoints(nil, nil); err == nil {
		t.Error("expected unknown preset error")
	}
}

func TestSuggestCommand(t *testing.T) {
	setupTestServer(t)
	suggestLimit = 5
	out, _, err := captureOutput(t, func() error { return runSuggest(nil, []string{"intern"}) })
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "InternVL2-8B") {
		t.Errorf("out = %s", out)
	}
}

func TestCompareCommand(t *testing.T) {
	setupTestServer(t)
	compareFlags.reset()
	compareFlags.families = []string{"Qwen", "InternVL"}

	out, errOut, err := captureOutput(t, func() error {
		return runCompare(nil, []string{"Qwen2-VL-7B", "InternVL2-8B", "Phi-3.5-Vision"})
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Qwen2-VL-7B") || !strings.Contains(out, "InternVL2-8B") {
		t.Errorf("out = %s", out)
	}
	if !strings.Contains(errOut, "Not visible: Phi-3.5-Vision") {
		t.Errorf("stderr = %s", errOut)
	}
}

func TestExportCommand_CSVToFile(t *testing.T) {
	setupTestServer(t)
	exportFlags.reset()
	exportFlags.families = []string{"Phi"}
	exportFormat = "csv"
	exportUpload = false
	exportFile = filepath.Join(t.TempDir(), "models.csv")

	if _, _, err := captureOutput(t, func() error { return runExport(nil, nil) }); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(exportFile)
	if err != nil {
		t.Fatal(err)
	}
	want := "Model Name,Family,Benchmark Score,Parameters (B),Release Date\nPhi-3.5-Vision,Phi,50,4.2,2024-08-01\n"
	if string(data) != want {
		t.Errorf("csv = %q", data)
	}
}

func TestExportCommand_Stdout(t *testing.T) {
	setupTestServer(t)
	exportFlags.reset()
	exportFormat = "svg"
	exportUpload = false
	exportFile = "-"

	out, _, err := captureOutput(t, func() error { return runExport(nil, nil) })
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "<svg") {
		t.Errorf("expected svg output, got %.80s", out)
	}
}

func TestExportCommand_Errors(t *testing.T) {
	setupTestServer(t)
	exportFlags.reset()
	exportFormat = "pdf"
	if err := runExport(nil, nil); err == nil {
		t.Error("expected format error")
	}

	exportFormat = "csv"
	exportUpload = true
	_, _, err := captureOutput(t, func() error { return runExport(nil, nil) })
	if err == nil || !strings.Contains(err.Error(), "501") {
		t.Errorf("expected 501 without bucket, got %v", err)
	}
	exportUpload = false
}

func TestPresetsCommand(t *testing.T) {
	setupTestServer(t)
	out, _, err := captureOutput(t, func() error { return runPresets(nil, nil) })
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "OCR-Focused") || !strings.Contains(out, "OCRBench x3") {
		t.Errorf("out = %s", out)
	}
}

func TestWeightsCommand(t *testing.T) {
	setupTestServer(t)
	weightsFlags.reset()
	weightsFlags.weights = map[string]string{"MathVista": "3"}
	out, _, err := captureOutput(t, func() error { return runWeights(nil, nil) })
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) < 3 || !strings.HasPrefix(lines[2], "MathVista") || !strings.Contains(lines[2], "30%") {
		t.Errorf("out = %s", out)
	}
}

func TestStatusCommand(t *testing.T) {
	setupTestServer(t)
	out, _, err := captureOutput(t, func() error { return runStatus(nil, nil) })
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "State:   ready") || !strings.Contains(out, "Models:  3") {
		t.Errorf("out = %s", out)
	}
}

func resetView() {
	viewURL, viewBase, viewSearch, viewSelect = "", "", "", ""
	viewFamilies, viewToggle, viewCompareAdd = nil, nil, nil
	viewAll, viewClearSearch, viewComparison, viewDone = false, false, false, false
	outputFormat = "table"
}

func TestViewCommand_PersistsFamilies(t *testing.T) {
	resetView()
	viewPrefsPath = filepath.Join(t.TempDir(), "prefs.toml")
	viewFamilies = []string{"Qwen", "Phi"}

	out, _, err := captureOutput(t, func() error { return runView(nil, nil) })
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Link:       /?families=Qwen%2CPhi") {
		t.Errorf("out = %s", out)
	}

	// A fresh session without families restores the saved selection.
	resetView()
	viewURL = "https://example.com/chart?search=vl"
	out, _, err = captureOutput(t, func() error { return runView(nil, nil) })
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Families:   Qwen, Phi") {
		t.Errorf("out = %s", out)
	}
	if !strings.Contains(out, "https://example.com/chart?families=Qwen%2CPhi&search=vl") {
		t.Errorf("out = %s", out)
	}

	prefs := viewstate.NewFilePreferences(viewPrefsPath)
	raw, ok := prefs.Get(viewstate.FamiliesPreferenceKey)
	if !ok || raw != `["Qwen","Phi"]` {
		t.Errorf("persisted = %q %v", raw, ok)
	}

	// Selecting all removes the saved selection.
	resetView()
	viewAll = true
	if _, _, err := captureOutput(t, func() error { return runView(nil, nil) }); err != nil {
		t.Fatal(err)
	}
	if _, ok := prefs.Get(viewstate.FamiliesPreferenceKey); ok {
		t.Error("preference should be removed for all families")
	}
}

func TestViewCommand_ComparisonAndSearch(t *testing.T) {
	resetView()
	viewPrefsPath = filepath.Join(t.TempDir(), "prefs.toml")
	viewURL = "?model=Phi-3.5-Vision"
	viewComparison = true
	viewCompareAdd = []string{"Qwen2-VL-7B", "InternVL2-8B"}
	viewSearch = "qwen"
	outputFormat = "json"

	out, _, err := captureOutput(t, func() error { return runView(nil, nil) })
	if err != nil {
		t.Fatal(err)
	}
	var got struct {
		State viewstate.ViewState `json:"state"`
		URL   string              `json:"url"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got.State.Model != "" || !got.State.ComparisonMode || len(got.State.Compare) != 2 {
		t.Errorf("state = %+v", got.State)
	}
	if got.State.Search != "qwen" {
		t.Errorf("search = %q", got.State.Search)
	}
	if got.URL != "/?compare=Qwen2-VL-7B%2CInternVL2-8B&search=qwen" {
		t.Errorf("url = %s", got.URL)
	}
}

func TestConfiguredDebounce(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("VLMBENCH_CONFIG", "")

	t.Setenv("VLMBENCH_DEBOUNCE", "150ms")
	if got := configuredDebounce(zerolog.Nop()); got != 150*time.Millisecond {
		t.Errorf("debounce = %v, want 150ms", got)
	}

	t.Setenv("VLMBENCH_DEBOUNCE", "")
	if got := configuredDebounce(zerolog.Nop()); got != debounce.DefaultDelay {
		t.Errorf("debounce = %v, want default", got)
	}

	t.Setenv("VLMBENCH_DATA_SOURCE", "bogus")
	if got := configuredDebounce(zerolog.Nop()); got != debounce.DefaultDelay {
		t.Errorf("invalid config: debounce = %v, want default", got)
	}
}

func TestStartQuery(t *testing.T) {
	q, base, err := startQuery("families=Qwen")
	if err != nil || q.Get("families") != "Qwen" || base != "/" {
		t.Errorf("bare query: %v %s %v", q, base, err)
	}
	q, base, err = startQuery("https://example.com/x?search=a#frag")
	if err != nil || q.Get("search") != "a" || base != "https://example.com/x" {
		t.Errorf("link: %v %s %v", q, base, err)
	}
}
