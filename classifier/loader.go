package classifier

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/crypto/blake2b"

	"bugtriage/storage"
)

// ArtifactExtensions lists the file extensions recognized as model
// artifacts, in lookup order.
var ArtifactExtensions = []string{".json", ".yaml", ".yml"}

const RemoteFormat = "remote"

// Artifact is a loaded, immutable model plus where it came from.
type Artifact struct {
	Classifier Classifier
	Location   string
	Format     string
	Digest     string
}

func (a *Artifact) Probabilistic() bool {
	_, ok := Probabilistic(a.Classifier)
	return ok
}

// Loader turns an artifact location into a Classifier. File artifacts are
// read through Fetcher; http(s) locations become Remote classifiers using
// HTTPClient.
type Loader struct {
	Fetcher    storage.Fetcher
	HTTPClient *http.Client
}

func (l Loader) Load(ctx context.Context, location string) (*Artifact, error) {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return l.loadRemote(ctx, location)
	}

	_, _, key, err := storage.Parse(location)
	if err != nil {
		return nil, err
	}
	ext := strings.ToLower(path.Ext(key))
	if !slices.Contains(ArtifactExtensions, ext) {
		return nil, fmt.Errorf("%s: extension %q: %w", location, ext, ErrUnknownFormat)
	}

	data, err := l.Fetcher.Fetch(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}

	artifact := &Artifact{Location: location, Digest: Digest(data)}
	switch ext {
	case ".json":
		artifact.Format = LinearFormat
		artifact.Classifier, err = ParseLinear(data)
	default:
		artifact.Format = KeywordFormat
		artifact.Classifier, err = ParseKeyword(data)
	}
	if err != nil {
		return nil, fmt.Errorf("load model %s: %w", location, err)
	}
	return artifact, nil
}

func (l Loader) loadRemote(ctx context.Context, serverURL string) (*Artifact, error) {
	remote := NewRemote(serverURL, l.HTTPClient)
	if err := remote.Health(ctx); err != nil {
		return nil, fmt.Errorf("load remote model: %w", err)
	}
	info, err := remote.Info(ctx)
	if err != nil {
		return nil, fmt.Errorf("load remote model: %w", err)
	}
	artifact := &Artifact{
		Location:   serverURL,
		Format:     RemoteFormat,
		Digest:     info.Version,
		Classifier: remote,
	}
	if info.SupportsProba {
		artifact.Classifier = &ProbabilisticRemote{Remote: remote}
	}
	return artifact, nil
}

// Digest is the hex BLAKE2b-256 of an artifact's bytes.
func Digest(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// FindArtifact returns the first non-directory entry in dir, in lexical order,
// whose extension is one of ArtifactExtensions.
func FindArtifact(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%s: %w", dir, ErrNoArtifact)
	}
	if err != nil {
		return "", fmt.Errorf("scan %s: %w", dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if slices.Contains(ArtifactExtensions, strings.ToLower(filepath.Ext(entry.Name()))) {
			return filepath.Join(dir, entry.Name()), nil
		}
	}
	return "", fmt.Errorf("%s: %w", dir, ErrNoArtifact)
}
