// Package api serves the dashboard data over HTTP.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/vlmbench/vlmbench/internal/catalog"
	"github.com/vlmbench/vlmbench/internal/database"
	"github.com/vlmbench/vlmbench/internal/export"
	"github.com/vlmbench/vlmbench/internal/pipeline"
	"github.com/vlmbench/vlmbench/internal/scoring"
	"github.com/vlmbench/vlmbench/internal/search"
	"github.com/vlmbench/vlmbench/internal/viewstate"
)

// Uploader publishes a rendered export and returns its location.
type Uploader interface {
	Upload(ctx context.Context, f export.Format, filename string, body []byte) (string, error)
}

// Options configures a Server.
type Options struct {
	Matcher  search.Matcher
	CacheTTL time.Duration
	// Uploader is optional; without it the export endpoint answers 501.
	Uploader Uploader
	Logger   zerolog.Logger
}

// Server holds dependencies for API handlers.
type Server struct {
	catalog  *catalog.Catalog
	matcher  search.Matcher
	cache    *cache.Cache
	uploader Uploader
	logger   zerolog.Logger
	now      func() time.Time
}

// NewServer creates a new API server over cat.
func NewServer(cat *catalog.Catalog, opts Options) *Server {
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Server{
		catalog:  cat,
		matcher:  opts.Matcher,
		cache:    cache.New(ttl, 2*ttl),
		uploader: opts.Uploader,
		logger:   opts.Logger.With().Str("component", "api").Logger(),
		now:      time.Now,
	}
}

// RegisterRoutes registers all API routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/v1/models", s.handleListModels)
	mux.HandleFunc("GET /api/v1/models/{name}", s.handleGetModel)
	mux.HandleFunc("GET /api/v1/families", s.handleListFamilies)
	mux.HandleFunc("GET /api/v1/points", s.handlePoints)
	mux.HandleFunc("GET /api/v1/suggest", s.handleSuggest)
	mux.HandleFunc("GET /api/v1/compare", s.handleCompare)
	mux.HandleFunc("GET /api/v1/weights", s.handleWeights)
	mux.HandleFunc("GET /api/v1/weights/presets", s.handlePresets)
	mux.HandleFunc("GET /api/v1/benchmarks", s.handleBenchmarks)
	mux.HandleFunc("GET /api/v1/share", s.handleShare)
	mux.HandleFunc("GET /api/v1/export.csv", s.handleDownload(export.FormatCSV))
	mux.HandleFunc("GET /api/v1/chart.png", s.handleDownload(export.FormatPNG))
	mux.HandleFunc("GET /api/v1/chart.svg", s.handleDownload(export.FormatSVG))
	mux.HandleFunc("POST /api/v1/exports", s.handleUpload)
	mux.HandleFunc("POST /api/v1/catalog/reload", s.handleReload)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	st := s.catalog.Status()
	code := http.StatusOK
	if st.State != catalog.StateReady {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, st)
}

// dataset returns the loaded dataset or writes a 503 and reports false.
func (s *Server) dataset(w http.ResponseWriter) (catalog.Dataset, bool) {
	ds, err := s.catalog.Dataset()
	if err == nil {
		return ds, true
	}
	st := s.catalog.Status()
	body := map[string]string{"error": "dataset unavailable", "state": st.Name}
	if errors.Is(err, catalog.ErrNotLoaded) {
		body["error"] = "dataset loading"
	}
	var se *catalog.StateError
	if errors.As(err, &se) {
		body["detail"] = se.Error()
	}
	writeJSON(w, http.StatusServiceUnavailable, body)
	return catalog.Dataset{}, false
}

func (s *Server) handleListModels(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.dataset(w)
	if !ok {
		return
	}
	records := ds.Records
	q := r.URL.Query()
	family := q.Get("family")
	out := make([]database.ModelRecord, 0, len(records))
	for _, m := range records {
		if family == "" || m.Family == family {
			out = append(out, m)
		}
	}
	offset := min(intParam(q, "offset", 0), len(out))
	out = out[offset:]
	if limit := intParam(q, "limit", 0); limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetModel(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.dataset(w); !ok {
		return
	}
	name := r.PathValue("name")
	m := s.catalog.Get(name)
	if m == nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("model %s not found", name))
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleListFamilies(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.dataset(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, pipeline.FamiliesOf(ds.Records))
}

// PointsResponse is the body of GET /api/v1/points.
type PointsResponse struct {
	Points     []pipeline.ProcessedPoint `json:"points"`
	Count      int                       `json:"count"`
	Empty      bool                      `json:"empty"`
	State      viewstate.ViewState       `json:"state"`
	Weights    scoring.Weights           `json:"weights"`
	Observed   pipeline.Bounds           `json:"observed"`
	Filtered   bool                      `json:"rangesFiltered"`
	YAxisMax   float64                   `json:"yAxisMax"`
	YAxisTicks []float64                 `json:"yAxisTicks"`
	SizeDomain [2]float64                `json:"sizeDomain"`
}

// points runs the pipeline for v, memoized per catalog load.
func (s *Server) points(ds catalog.Dataset, v viewQuery) PointsResponse {
	key := v.cacheKey(ds.Generation)
	if cached, ok := s.cache.Get(key); ok {
		return cached.(PointsResponse)
	}

	f := v.state.Filter(v.ranges)
	f.Matcher = s.matcher
	points := pipeline.FilterVisible(ds.Records, f, v.weights)
	observed := pipeline.ObservedBounds(ds.Records, v.weights)
	upper := pipeline.YAxisUpperBound(points)
	lo, hi := pipeline.SizeDomain(points)
	resp := PointsResponse{
		Points:     points,
		Count:      len(points),
		Empty:      len(points) == 0,
		State:      v.state,
		Weights:    v.weights,
		Observed:   observed,
		Filtered:   v.ranges.IsFiltered(observed),
		YAxisMax:   upper,
		YAxisTicks: pipeline.YAxisTicks(upper),
		SizeDomain: [2]float64{lo, hi},
	}
	s.cache.Set(key, resp, cache.DefaultExpiration)
	return resp
}

func (s *Server) parse(w http.ResponseWriter, r *http.Request) (viewQuery, bool) {
	v, ok := parseViewQuery(r.URL.Query())
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown preset %q", r.URL.Query().Get(ParamPreset)))
	}
	return v, ok
}

func (s *Server) handlePoints(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.dataset(w)
	if !ok {
		return
	}
	v, ok := s.parse(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.points(ds, v))
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.dataset(w)
	if !ok {
		return
	}
	records := ds.Records
	q := r.URL.Query()
	query := q.Get("q")
	if query == "" {
		query = q.Get(viewstate.ParamSearch)
	}
	limit := intParam(q, "limit", 8)
	writeJSON(w, http.StatusOK, pipeline.Suggest(records, query, limit, s.matcher))
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.dataset(w)
	if !ok {
		return
	}
	v, ok := s.parse(w, r)
	if !ok {
		return
	}
	resp := s.points(ds, v)
	writeJSON(w, http.StatusOK, pipeline.Compare(resp.Points, v.state.Compare))
}

func (s *Server) handleWeights(w http.ResponseWriter, r *http.Request) {
	v, ok := s.parse(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"weights":    v.weights,
		"isDefault":  v.weights.IsDefault(),
		"normalized": scoring.NormalizeWeights(v.weights),
		"breakdown":  scoring.Breakdown(v.weights),
	})
}

func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scoring.Presets())
}

func (s *Server) handleBenchmarks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scoring.AllInfo())
}

func (s *Server) handleShare(w http.ResponseWriter, r *http.Request) {
	v, ok := s.parse(w, r)
	if !ok {
		return
	}
	base := r.URL.Query().Get("base")
	if base == "" {
		base = "/"
	}
	link, err := viewstate.ShareURL(base, v.state)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid base url")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": link})
}

func filenamePrefix(f export.Format) string {
	if f == export.FormatCSV {
		return "vlm-models"
	}
	return "vlm-chart"
}

// render writes the visible points for v in format f.
func (s *Server) render(ds catalog.Dataset, v viewQuery, f export.Format) ([]byte, error) {
	resp := s.points(ds, v)
	var buf bytes.Buffer
	err := export.Write(&buf, f, resp.Points, export.ChartOptions{Title: "Vision-Language Model Benchmarks"})
	return buf.Bytes(), err
}

func (s *Server) handleDownload(f export.Format) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ds, ok := s.dataset(w)
		if !ok {
			return
		}
		v, ok := s.parse(w, r)
		if !ok {
			return
		}
		body, err := s.render(ds, v, f)
		if errors.Is(err, export.ErrNoPoints) {
			writeError(w, http.StatusUnprocessableEntity, "no models match the current filters")
			return
		}
		if err != nil {
			s.logger.Error().Err(err).Str("format", string(f)).Msg("render export failed")
			writeError(w, http.StatusInternalServerError, "render failed")
			return
		}
		name := export.Filename(filenamePrefix(f), f, s.now())
		w.Header().Set("Content-Type", f.ContentType())
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
		w.WriteHeader(http.StatusOK)
		w.Write(body)
	}
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if s.uploader == nil {
		writeError(w, http.StatusNotImplemented, "export bucket not configured")
		return
	}
	f, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ds, ok := s.dataset(w)
	if !ok {
		return
	}
	v, ok := s.parse(w, r)
	if !ok {
		return
	}
	body, err := s.render(ds, v, f)
	if errors.Is(err, export.ErrNoPoints) {
		writeError(w, http.StatusUnprocessableEntity, "no models match the current filters")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "render failed")
		return
	}
	name := export.Filename(filenamePrefix(f), f, s.now())
	loc, err := s.uploader.Upload(r.Context(), f, name, body)
	if err != nil {
		s.logger.Error().Err(err).Msg("upload export failed")
		writeError(w, http.StatusBadGateway, "upload failed")
		return
	}
	s.logger.Info().Str("location", loc).Int("bytes", len(body)).Msg("export uploaded")
	writeJSON(w, http.StatusCreated, map[string]string{"location": loc, "filename": name})
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	err := s.catalog.Reload(r.Context())
	s.cache.Flush()
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, s.catalog.Status())
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
