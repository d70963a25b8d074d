// Package handlers exposes the prediction service over HTTP.
package handlers

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"io"
	"log/slog"
	"net/http"

	"bugtriage/logging"
	"bugtriage/services"
)

//go:embed static/index.html
var static embed.FS

var indexPage = template.Must(template.ParseFS(static, "static/index.html"))

type Options struct {
	AllowedOrigin string
	MaxBodyBytes  int64
}

// Server owns the prediction service for the lifetime of the process.
type Server struct {
	predictions *services.PredictionService
	opts        Options
	log         *slog.Logger
}

func New(predictions *services.PredictionService, opts Options) *Server {
	if opts.AllowedOrigin == "" {
		opts.AllowedOrigin = "*"
	}
	return &Server{
		predictions: predictions,
		opts:        opts,
		log:         logging.New("http"),
	}
}

// Routes returns the full handler chain.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.enableCORS(s.HealthHandler))
	mux.HandleFunc("/predict", s.enableCORS(s.PredictHandler))
	mux.HandleFunc("/predict:batch", s.enableCORS(s.PredictBatchHandler))
	mux.HandleFunc("/model/info", s.enableCORS(s.ModelInfoHandler))
	mux.HandleFunc("/stats", s.enableCORS(s.StatsHandler))
	mux.HandleFunc("/", s.IndexHandler)

	return s.recoverer(s.requestID(s.accessLog(mux)))
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// decodeBody parses the body as exactly one JSON object, whatever its
// Content-Type says.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if s.opts.MaxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes)
	}
	dec := json.NewDecoder(r.Body)
	var raw json.RawMessage
	err := dec.Decode(&raw)
	if err == nil {
		if err = dec.Decode(&struct{}{}); err == io.EOF {
			err = nil
		} else if err == nil || !isTooLarge(err) {
			err = errors.New("unexpected data after the JSON object")
		}
	}
	if err == nil && bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		err = errors.New("body must be a JSON object, got null")
	}
	if err == nil {
		err = json.Unmarshal(raw, v)
	}
	if err != nil {
		if isTooLarge(err) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "Failed to decode JSON object: "+err.Error())
		return false
	}
	return true
}

func isTooLarge(err error) bool {
	var tooLarge *http.MaxBytesError
	return errors.As(err, &tooLarge)
}

func (s *Server) IndexHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	artifact := s.predictions.Artifact()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := indexPage.Execute(w, map[string]any{
		"Format":        artifact.Format,
		"Probabilistic": artifact.Probabilistic(),
	})
	if err != nil {
		s.log.Error("render index", "error", err)
	}
}
