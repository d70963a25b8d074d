package handlers

import (
	"net/http"

	"bugtriage/issue"
)

type BatchRequest struct {
	Items []issue.Report `json:"items"`
}

type BatchResponse struct {
	Results []issue.BatchResult `json:"results"`
}

type HealthResponse struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
}

type ModelInfoResponse struct {
	Location      string `json:"location"`
	Format        string `json:"format"`
	Digest        string `json:"digest"`
	Probabilistic bool   `json:"probabilistic"`
}

// HealthHandler is only reachable once the model has loaded.
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", ModelLoaded: true})
}

func (s *Server) PredictHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var report issue.Report
	if !s.decodeBody(w, r, &report) {
		return
	}

	pred, err := s.predictions.Predict(r.Context(), report)
	if err != nil {
		s.log.Error("prediction failed", "error", err, "request_id", requestIDFrom(r.Context()))
		writeError(w, http.StatusInternalServerError, "prediction failed")
		return
	}
	writeJSON(w, http.StatusOK, pred)
}

func (s *Server) PredictBatchHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req BatchRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	results, err := s.predictions.PredictBatch(r.Context(), req.Items)
	if err != nil {
		s.log.Error("batch prediction failed", "error", err, "items", len(req.Items),
			"request_id", requestIDFrom(r.Context()))
		writeError(w, http.StatusInternalServerError, "prediction failed")
		return
	}
	writeJSON(w, http.StatusOK, BatchResponse{Results: results})
}

func (s *Server) ModelInfoHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	artifact := s.predictions.Artifact()
	writeJSON(w, http.StatusOK, ModelInfoResponse{
		Location:      artifact.Location,
		Format:        artifact.Format,
		Digest:        artifact.Digest,
		Probabilistic: artifact.Probabilistic(),
	})
}

func (s *Server) StatsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	usage, err := s.predictions.Usage(r.Context())
	if err != nil {
		s.log.Error("read usage counters", "error", err)
		writeError(w, http.StatusServiceUnavailable, "usage counters unavailable")
		return
	}
	writeJSON(w, http.StatusOK, usage)
}
