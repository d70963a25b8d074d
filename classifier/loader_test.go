package classifier

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"bugtriage/storage"

	"github.com/stretchr/testify/require"
)

func TestLoader_LoadFiles(t *testing.T) {
	ctx := context.Background()
	loader := Loader{Fetcher: storage.NewRouter(storage.Config{})}

	tests := []struct {
		description       string
		location          string
		wantFormat        string
		wantProbabilistic bool
	}{
		{"Should load a linear artifact", "testdata/binary.json", LinearFormat, true},
		{"Should load a keyword artifact", "testdata/rules.yaml", KeywordFormat, false},
	}
	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			req := require.New(t)
			artifact, err := loader.Load(ctx, tt.location)
			req.NoError(err)
			req.Equal(tt.wantFormat, artifact.Format)
			req.Equal(tt.wantProbabilistic, artifact.Probabilistic())
			req.Equal(Digest(loadFixture(t, filepath.Base(tt.location))), artifact.Digest)
			req.Len(artifact.Digest, 64)
		})
	}
}

func TestLoader_LoadErrors(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	loader := Loader{Fetcher: storage.NewRouter(storage.Config{})}

	_, err := loader.Load(ctx, filepath.Join(dir, "model.pkl"))
	require.ErrorIs(t, err, ErrUnknownFormat)

	_, err = loader.Load(ctx, filepath.Join(dir, "missing.json"))
	require.ErrorIs(t, err, storage.ErrNotFound)

	broken := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte(`{"classes":[0]}`), 0o644))
	_, err = loader.Load(ctx, broken)
	require.ErrorIs(t, err, ErrInvalidModel)
}

func TestLoader_LoadRemote(t *testing.T) {
	ctx := context.Background()
	for _, supportsProba := range []bool{true, false} {
		srv := newModelServer(t, supportsProba)
		artifact, err := Loader{HTTPClient: srv.Client()}.Load(ctx, srv.URL)
		require.NoError(t, err)
		require.Equal(t, RemoteFormat, artifact.Format)
		require.Equal(t, "2024.1", artifact.Digest)
		require.Equal(t, supportsProba, artifact.Probabilistic())
	}
}

func TestLoader_LoadRemoteUnhealthy(t *testing.T) {
	infoCalled := false
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "warming up", http.StatusServiceUnavailable)
	})
	mux.HandleFunc("/model/info", func(w http.ResponseWriter, r *http.Request) {
		infoCalled = true
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	_, err := Loader{HTTPClient: srv.Client()}.Load(context.Background(), srv.URL)
	require.ErrorContains(t, err, "/health")
	require.ErrorContains(t, err, "503 warming up")
	require.False(t, infoCalled)
}

func TestFindArtifact(t *testing.T) {
	req := require.New(t)
	dir := t.TempDir()
	for _, name := range []string{"notes.txt", "z_model.yaml", "b_model.json", "a.pkl"} {
		req.NoError(os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	req.NoError(os.Mkdir(filepath.Join(dir, "a_dir.json"), 0o755))

	got, err := FindArtifact(dir)
	req.NoError(err)
	req.Equal(filepath.Join(dir, "b_model.json"), got)

	empty := t.TempDir()
	_, err = FindArtifact(empty)
	req.ErrorIs(err, ErrNoArtifact)

	_, err = FindArtifact(filepath.Join(empty, "missing"))
	req.ErrorIs(err, ErrNoArtifact)
}
