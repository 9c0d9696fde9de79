// Package router parses and serves composition requests.
package router

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mateonav/geolayers/internal/composer"
	"github.com/mateonav/geolayers/internal/core/config"
	"github.com/mateonav/geolayers/internal/core/model"
	"github.com/mateonav/geolayers/internal/core/observability"
	"github.com/mateonav/geolayers/internal/geotab"
	"github.com/mateonav/geolayers/internal/memo"
)

// ComposeRequest is one parsed upload: tables in part order plus the
// composition options and the per-layer color overrides.
type ComposeRequest struct {
	Tables []geotab.Table
	Opts   composer.Options
	Colors []string
}

// ComposeResponse is the JSON envelope of a composition.
type ComposeResponse struct {
	Map       *composer.MapDescription `json:"map"`
	Summaries []geotab.Summary         `json:"summaries"`
}

// color cycle for layers that do not get an explicit color.
var defaultPalette = []string{"blue", "red", "green", "purple", "orange", "darkblue", "cadetblue"}

const geoJSONType = "application/geo+json"

// HandleCompose validates the upload, runs (or replays) the composition
// and writes the response. mz may be nil when memoization is disabled.
func HandleCompose(logger *slog.Logger, cfg config.Config, mz *memo.Memoizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}

		req, warn, err := ParseComposeRequest(r, cfg.MaxUploadBytes)
		if warn != "" {
			logger.Warn(warn)
		}
		if err != nil {
			http.Error(sw, err.Error(), http.StatusBadRequest)
			observability.ObserveHTTP(r.Method, "/compose", http.StatusBadRequest, time.Since(start).Seconds())
			return
		}
		if req.Opts.RadiusDeg == 0 {
			req.Opts.RadiusDeg = cfg.ClusterRadiusDeg
		}
		if req.Opts.CellRes == 0 {
			req.Opts.CellRes = cfg.CellRes
		}

		digests := make([]string, len(req.Tables))
		datasets := make([]string, len(req.Tables))
		for i, tbl := range req.Tables {
			digests[i] = memo.DatasetDigest(tbl)
			datasets[i] = tbl.Name
		}
		key := memo.Key(digests, req.Opts)

		body, hit, err := mz.GetOrCompute(r.Context(), key, datasets, func() ([]byte, error) {
			return composeBody(req)
		})
		if err != nil {
			logger.Error("compose failed", "err", err)
			http.Error(sw, "compose failed", http.StatusInternalServerError)
			observability.ObserveHTTP(r.Method, "/compose", http.StatusInternalServerError, time.Since(start).Seconds())
			return
		}
		if !hit {
			observability.ObserveCompose(req.Opts.Mode.String(), req.Opts.ClusteringEnabled, time.Since(start).Seconds())
		}

		writeComposeResponse(sw, r, logger, body)
		observability.ObserveHTTP(r.Method, "/compose", sw.code, time.Since(start).Seconds())
	}
}

// composeBody normalizes every table (concurrently; they are independent)
// and runs the composition, returning the marshaled response envelope.
func composeBody(req ComposeRequest) ([]byte, error) {
	type result struct {
		ds      *geotab.Dataset
		summary geotab.Summary
	}
	results := make([]result, len(req.Tables))

	var wg sync.WaitGroup
	for i, tbl := range req.Tables {
		wg.Add(1)
		go func(i int, tbl geotab.Table) {
			defer wg.Done()
			roles := geotab.InferRoles(tbl.Columns, tbl.Rows)
			ds := geotab.Normalize(tbl, roles)
			results[i] = result{ds: ds, summary: geotab.Summarize(ds, tbl.Columns)}
		}(i, tbl)
	}
	wg.Wait()

	inputs := make([]composer.LayerInput, 0, len(results))
	summaries := make([]geotab.Summary, 0, len(results))
	for i, res := range results {
		observability.AddRows(res.ds.Accepted, res.ds.Rejected)
		inputs = append(inputs, composer.LayerInput{
			Dataset:  res.ds,
			Identity: model.VisualIdentity{Name: res.ds.Name, Color: layerColor(req.Colors, i)},
		})
		summaries = append(summaries, res.summary)
	}

	md := composer.Compose(inputs, req.Opts)
	for _, layer := range md.Layers {
		for _, c := range layer.Clusters {
			observability.ObserveClusterSize(c.Count)
		}
	}

	body, err := json.Marshal(ComposeResponse{Map: md, Summaries: summaries})
	if err != nil {
		return nil, fmt.Errorf("marshal response: %w", err)
	}
	return body, nil
}

func layerColor(colors []string, i int) string {
	if i < len(colors) && colors[i] != "" {
		return colors[i]
	}
	return defaultPalette[i%len(defaultPalette)]
}

// writeComposeResponse serves the envelope as-is, or converts the map to
// GeoJSON when the client asked for it.
func writeComposeResponse(w http.ResponseWriter, r *http.Request, logger *slog.Logger, body []byte) {
	if !wantsGeoJSON(r) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
		return
	}

	var env ComposeResponse
	if err := json.Unmarshal(body, &env); err != nil {
		logger.Error("memoized body unreadable", "err", err)
		http.Error(w, "compose failed", http.StatusInternalServerError)
		return
	}
	gj, err := composer.ToGeoJSON(env.Map)
	if err != nil {
		logger.Error("geojson conversion failed", "err", err)
		http.Error(w, "compose failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", geoJSONType)
	_, _ = w.Write(gj)
}

func wantsGeoJSON(r *http.Request) bool {
	for _, accept := range r.Header.Values("Accept") {
		for _, part := range strings.Split(accept, ",") {
			mt, _, err := mime.ParseMediaType(strings.TrimSpace(part))
			if err == nil && mt == geoJSONType {
				return true
			}
		}
	}
	return false
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

// ParseComposeRequest reads the query parameters and the multipart body.
// Part order is preserved: the first uploaded file becomes the first
// layer. The warning return surfaces recoverable oddities to the log.
func ParseComposeRequest(r *http.Request, maxUpload int64) (ComposeRequest, string, error) {
	var warn string

	opts := composer.Options{ClusteringEnabled: true, Mode: model.ModeDetailed}

	if raw := strings.TrimSpace(r.URL.Query().Get("clustering")); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return ComposeRequest{}, "", fmt.Errorf("invalid clustering: %w", err)
		}
		opts.ClusteringEnabled = v
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("mode")); raw != "" {
		m, err := model.ParseClusterMode(raw)
		if err != nil {
			return ComposeRequest{}, "", fmt.Errorf("invalid mode: %w", err)
		}
		opts.Mode = m
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("radius")); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v <= 0 {
			return ComposeRequest{}, "", errors.New("invalid radius: must be a positive number of degrees")
		}
		opts.RadiusDeg = v
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("cell_res")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 || v > 15 {
			return ComposeRequest{}, "", errors.New("invalid cell_res: must be an integer in [0,15]")
		}
		opts.CellRes = v
	}
	colors := r.URL.Query()["color"]

	mr, err := r.MultipartReader()
	if err != nil {
		return ComposeRequest{}, warn, fmt.Errorf("multipart body required: %w", err)
	}

	var tables []geotab.Table
	var total int64
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return ComposeRequest{}, warn, fmt.Errorf("read multipart: %w", err)
		}

		name := strings.TrimSpace(part.FormName())
		if name == "" {
			name = strings.TrimSpace(part.FileName())
		}
		if name == "" {
			warn = "skipping unnamed multipart part"
			_ = part.Close()
			continue
		}

		limited := &limitedReader{r: part, remaining: maxUpload - total}
		tbl, err := geotab.ReadCSV(name, limited)
		_ = part.Close()
		if limited.exceeded {
			return ComposeRequest{}, warn, fmt.Errorf("upload exceeds %d bytes", maxUpload)
		}
		if err != nil {
			return ComposeRequest{}, warn, fmt.Errorf("dataset %q: %w", name, err)
		}
		total += limited.read
		tables = append(tables, tbl)
	}

	if len(tables) == 0 {
		return ComposeRequest{}, warn, errors.New("at least one CSV file is required")
	}
	return ComposeRequest{Tables: tables, Opts: opts, Colors: colors}, warn, nil
}

// limitedReader enforces the shared upload budget across all parts and
// remembers whether it was hit, so the caller can tell truncation from a
// short file.
type limitedReader struct {
	r         io.Reader
	remaining int64
	read      int64
	exceeded  bool
}

func (l *limitedReader) Read(p []byte) (int, error) {
	if l.remaining <= 0 {
		l.exceeded = true
		return 0, errors.New("upload size limit reached")
	}
	if int64(len(p)) > l.remaining {
		p = p[:l.remaining]
	}
	n, err := l.r.Read(p)
	l.read += int64(n)
	l.remaining -= int64(n)
	return n, err
}
