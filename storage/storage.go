// Package storage resolves artifact and dataset locations to bytes. A
// location is a local path, a file:// URL, an s3://bucket/key URL or a
// gs://bucket/object URL.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"
)

var ErrNotFound = errors.New("storage: object not found")

// Fetcher reads the full content of a location.
type Fetcher interface {
	Fetch(ctx context.Context, location string) ([]byte, error)
}

// Backend serves a single URL scheme.
type Backend interface {
	Fetch(ctx context.Context, bucket, key string) ([]byte, error)
}

type Config struct {
	AWSRegion          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	GoogleCredentials  string
}

// Router dispatches a location to the backend registered for its scheme.
// Locations without a scheme are read from the local file system. A Router
// is meant for startup and batch use and is not safe for concurrent use.
type Router struct {
	backends map[string]Backend
}

// NewRouter wires the S3 and GCS backends. Both are created lazily on first
// use so that a purely local setup never touches cloud credentials.
func NewRouter(cfg Config) *Router {
	return &Router{backends: map[string]Backend{
		"s3": &lazyBackend{open: func(ctx context.Context) (Backend, error) { return NewS3(cfg) }},
		"gs": &lazyBackend{open: func(ctx context.Context) (Backend, error) { return NewGCS(ctx, cfg) }},
	}}
}

// With registers or replaces the backend for scheme.
func (r *Router) With(scheme string, b Backend) *Router {
	r.backends[scheme] = b
	return r
}

func (r *Router) Fetch(ctx context.Context, location string) ([]byte, error) {
	scheme, bucket, key, err := Parse(location)
	if err != nil {
		return nil, err
	}
	if scheme == "" {
		return readLocal(key)
	}
	b, ok := r.backends[scheme]
	if !ok {
		return nil, fmt.Errorf("storage: unsupported scheme %q", scheme)
	}
	data, err := b.Fetch(ctx, bucket, key)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", location, err)
	}
	return data, nil
}

// Parse splits a location into scheme, bucket and key. Local paths return
// an empty scheme and bucket with the path as key.
func Parse(location string) (scheme, bucket, key string, err error) {
	if !strings.Contains(location, "://") {
		return "", "", location, nil
	}
	u, err := url.Parse(location)
	if err != nil {
		return "", "", "", fmt.Errorf("storage: parse %q: %w", location, err)
	}
	switch u.Scheme {
	case "file":
		return "", "", u.Path, nil
	case "s3", "gs":
		key = strings.TrimPrefix(u.Path, "/")
		if u.Host == "" || key == "" {
			return "", "", "", fmt.Errorf("storage: %q must look like %s://bucket/key", location, u.Scheme)
		}
		return u.Scheme, u.Host, key, nil
	default:
		return u.Scheme, u.Host, strings.TrimPrefix(u.Path, "/"), nil
	}
}

func readLocal(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

type lazyBackend struct {
	open    func(ctx context.Context) (Backend, error)
	backend Backend
}

func (l *lazyBackend) Fetch(ctx context.Context, bucket, key string) ([]byte, error) {
	if l.backend == nil {
		b, err := l.open(ctx)
		if err != nil {
			return nil, err
		}
		l.backend = b
	}
	return l.backend.Fetch(ctx, bucket, key)
}
