package transport

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/lookalike-dev/lookalike/pkg/api"
	"github.com/lookalike-dev/lookalike/pkg/engine"
)

// Config holds configuration for the HTTP adapter.
type Config struct {
	// MaxBodySize limits uploaded request bodies (default: 10 MB).
	MaxBodySize int64
}

// DefaultConfig returns the default adapter configuration.
func DefaultConfig() Config {
	return Config{
		MaxBodySize: 10 << 20, // 10 MB
	}
}

// Adapter serves the lookalike API over HTTP, translating multipart
// uploads and path parameters into engine calls.
type Adapter struct {
	engine *engine.Engine
	mux    *http.ServeMux
	config Config
	logger *slog.Logger
}

// NewAdapter creates an HTTP adapter over the given engine.
func NewAdapter(eng *engine.Engine, cfg Config) *Adapter {
	if cfg.MaxBodySize == 0 {
		cfg.MaxBodySize = DefaultConfig().MaxBodySize
	}

	a := &Adapter{
		engine: eng,
		mux:    http.NewServeMux(),
		config: cfg,
		logger: slog.Default(),
	}

	a.mux.HandleFunc("POST /upload", a.handleUpload)
	a.mux.HandleFunc("POST /similar", a.handleSimilar)
	a.mux.HandleFunc("GET /image/{reference}", a.handleImage)
	a.mux.HandleFunc("GET /stats", a.handleStats)
	a.mux.HandleFunc("GET /healthz", a.handleHealthz)

	return a
}

// Handler returns the http.Handler for this adapter with the default
// middleware stack applied.
func (a *Adapter) Handler() http.Handler {
	var h http.Handler = a.mux
	h = Metrics(h)
	h = Logging(a.logger)(h)
	h = RequestID(h)
	h = Recovery(h)
	return h
}

// readUploadedFile extracts the "file" multipart field, bounded by the
// configured body size.
func (a *Adapter) readUploadedFile(w http.ResponseWriter, r *http.Request) ([]byte, *api.Error) {
	r.Body = http.MaxBytesReader(w, r.Body, a.config.MaxBodySize)

	if err := r.ParseMultipartForm(a.config.MaxBodySize); err != nil {
		return nil, api.NewInvalidRequestError(fmt.Sprintf("parsing multipart form: %v", err))
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, api.NewInvalidRequestError("no file uploaded")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, api.NewInvalidRequestError(fmt.Sprintf("reading file: %v", err))
	}
	if len(data) == 0 {
		return nil, api.NewInvalidRequestError("uploaded file is empty")
	}

	return data, nil
}

func (a *Adapter) handleUpload(w http.ResponseWriter, r *http.Request) {
	data, apiErr := a.readUploadedFile(w, r)
	if apiErr != nil {
		WriteError(w, apiErr)
		return
	}

	result, err := a.engine.Ingest(r.Context(), data)
	if err != nil {
		WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

func (a *Adapter) handleSimilar(w http.ResponseWriter, r *http.Request) {
	data, apiErr := a.readUploadedFile(w, r)
	if apiErr != nil {
		WriteError(w, apiErr)
		return
	}

	k := a.engine.DefaultLimit()
	if raw := r.FormValue("k"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			WriteError(w, api.NewInvalidRequestError(fmt.Sprintf("invalid k %q", raw)))
			return
		}
		k = parsed
	}

	results, err := a.engine.Search(r.Context(), data, k)
	if err != nil {
		WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, api.SearchResponse{Results: results})
}

func (a *Adapter) handleImage(w http.ResponseWriter, r *http.Request) {
	reference := r.PathValue("reference")

	data, err := a.engine.Fetch(r.Context(), reference)
	if err != nil {
		WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (a *Adapter) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := a.engine.Stats(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

func (a *Adapter) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok\n"))
}
