package config

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadServer_Defaults(t *testing.T) {
	req := require.New(t)
	t.Chdir(t.TempDir())

	cfg, err := LoadServer()
	req.NoError(err)
	req.Equal("0.0.0.0:5000", cfg.Addr())
	req.Equal("app/model/bug_classifier_pipeline.json", cfg.ModelPath)
	req.Equal(int64(1<<20), cfg.MaxBodyBytes)
	req.Equal(10*time.Second, cfg.ShutdownTimeout)
	req.Equal("us-east-1", cfg.Storage.AWSRegion)
	req.Equal("text", cfg.Logging.Format)
	req.False(cfg.UsageEnabled())
}

func TestLoadServer_EnvOverrides(t *testing.T) {
	req := require.New(t)
	t.Chdir(t.TempDir())
	t.Setenv("MODEL_PATH", "s3://models/bug.json")
	t.Setenv("API_PORT", "8081")
	t.Setenv("REDIS_URL", "localhost:6379")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("AWS_REGION", "eu-west-1")

	cfg, err := LoadServer()
	req.NoError(err)
	req.Equal("s3://models/bug.json", cfg.ModelPath)
	req.Equal("0.0.0.0:8081", cfg.Addr())
	req.True(cfg.UsageEnabled())
	req.Equal("json", cfg.Logging.Format)
	req.Equal("eu-west-1", cfg.Storage.AWSRegion)
}

func TestLoadServer_Invalid(t *testing.T) {
	tests := []struct {
		description string
		key, value  string
	}{
		{"Should fail on unknown log format", "LOG_FORMAT", "xml"},
		{"Should fail on non numeric port", "API_PORT", "http"},
		{"Should fail on zero body limit", "MAX_BODY_BYTES", "0"},
		{"Should fail on unparsable duration", "READ_TIMEOUT", "soon"},
	}
	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv(tt.key, tt.value)
			_, err := LoadServer()
			require.Error(t, err)
		})
	}
}

func TestLoadEvaluate_DotEnv(t *testing.T) {
	req := require.New(t)
	dir := t.TempDir()
	t.Chdir(dir)
	req.NoError(writeFile(dir+"/.env", "DATA_PATH=data/labeled.csv\nEVAL_LIMIT=50\n"))

	cfg, err := LoadEvaluate()
	req.NoError(err)
	req.Equal("data/labeled.csv", cfg.DataPath)
	req.Equal(50, cfg.Limit)
	req.Equal("app/model", cfg.ModelDir)
	req.Equal("reports", cfg.ReportsDir)
}

func TestStorage_RouterReadsLocalFiles(t *testing.T) {
	req := require.New(t)
	dir := t.TempDir()
	req.NoError(writeFile(dir+"/issues.csv", "text,label\n"))

	router := Storage{AWSRegion: "eu-west-1"}.Router()
	data, err := router.Fetch(context.Background(), dir+"/issues.csv")
	req.NoError(err)
	req.Equal("text,label\n", string(data))
}
