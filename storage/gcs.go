package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	gcs "google.golang.org/api/storage/v1"
)

// GCS downloads objects through the Cloud Storage JSON API.
type GCS struct {
	svc *gcs.Service
}

// NewGCS authenticates with the credentials file when configured and with
// application default credentials otherwise.
func NewGCS(ctx context.Context, cfg Config) (*GCS, error) {
	var opts []option.ClientOption
	if cfg.GoogleCredentials != "" {
		data, err := os.ReadFile(cfg.GoogleCredentials)
		if err != nil {
			return nil, fmt.Errorf("read google credentials: %w", err)
		}
		creds, err := google.CredentialsFromJSON(ctx, data, gcs.DevstorageReadOnlyScope)
		if err != nil {
			return nil, fmt.Errorf("parse google credentials: %w", err)
		}
		opts = append(opts, option.WithCredentials(creds))
	} else {
		ts, err := google.DefaultTokenSource(ctx, gcs.DevstorageReadOnlyScope)
		if err != nil {
			return nil, fmt.Errorf("google default credentials: %w", err)
		}
		opts = append(opts, option.WithTokenSource(ts))
	}

	svc, err := gcs.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage service: %w", err)
	}
	return &GCS{svc: svc}, nil
}

func (g *GCS) Fetch(ctx context.Context, bucket, key string) ([]byte, error) {
	resp, err := g.svc.Objects.Get(bucket, key).Context(ctx).Download()
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code == http.StatusNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}
