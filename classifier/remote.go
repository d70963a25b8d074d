package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Remote forwards predictions to a model server exposing POST /predict,
// GET /model/info and GET /health.
type Remote struct {
	serverURL string
	client    *http.Client
}

// ProbabilisticRemote is returned for servers that advertise probabilities.
type ProbabilisticRemote struct {
	*Remote
}

type RemoteInfo struct {
	Name          string `json:"name"`
	Version       string `json:"version"`
	SupportsProba bool   `json:"supports_proba"`
}

type remotePredictRequest struct {
	Texts []string `json:"texts"`
}

type remotePredictResponse struct {
	Predictions   []any       `json:"predictions"`
	Probabilities [][]float64 `json:"probabilities"`
}

func NewRemote(serverURL string, client *http.Client) *Remote {
	if client == nil {
		client = http.DefaultClient
	}
	return &Remote{
		serverURL: strings.TrimRight(serverURL, "/"),
		client:    client,
	}
}

func (r *Remote) Predict(ctx context.Context, texts []string) ([]any, error) {
	resp, err := r.predict(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(resp.Predictions) != len(texts) {
		return nil, fmt.Errorf("remote predict: got %d predictions for %d texts: %w", len(resp.Predictions), len(texts), ErrShapeMismatch)
	}
	return resp.Predictions, nil
}

func (r *ProbabilisticRemote) PredictProba(ctx context.Context, texts []string) ([][]float64, error) {
	resp, err := r.predict(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(resp.Probabilities) != len(texts) {
		return nil, fmt.Errorf("remote predict: got %d probability rows for %d texts: %w", len(resp.Probabilities), len(texts), ErrShapeMismatch)
	}
	return resp.Probabilities, nil
}

func (r *Remote) Info(ctx context.Context) (RemoteInfo, error) {
	var info RemoteInfo
	err := r.do(ctx, http.MethodGet, "/model/info", nil, &info)
	return info, err
}

func (r *Remote) Health(ctx context.Context) error {
	return r.do(ctx, http.MethodGet, "/health", nil, nil)
}

func (r *Remote) predict(ctx context.Context, texts []string) (remotePredictResponse, error) {
	var out remotePredictResponse
	err := r.do(ctx, http.MethodPost, "/predict", remotePredictRequest{Texts: texts}, &out)
	return out, err
}

func (r *Remote) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		jsonData, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.serverURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("model server %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("model server %s: unhealthy: %d %s", path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("model server %s: decode: %w", path, err)
	}
	return nil
}
