package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"bugtriage/storage"
)

var validate = validator.New()

// Storage holds credentials for remote artifact and dataset locations.
type Storage struct {
	AWSRegion          string `envconfig:"AWS_REGION" default:"us-east-1"`
	AWSAccessKeyID     string `envconfig:"AWS_ACCESS_KEY_ID"`
	AWSSecretAccessKey string `envconfig:"AWS_SECRET_ACCESS_KEY"`
	GoogleCredentials  string `envconfig:"GOOGLE_APPLICATION_CREDENTIALS"`
}

func (s Storage) Router() *storage.Router {
	return storage.NewRouter(storage.Config{
		AWSRegion:          s.AWSRegion,
		AWSAccessKeyID:     s.AWSAccessKeyID,
		AWSSecretAccessKey: s.AWSSecretAccessKey,
		GoogleCredentials:  s.GoogleCredentials,
	})
}

type Logging struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Format string `envconfig:"LOG_FORMAT" default:"text" validate:"oneof=text json"`
}

// Server configures the inference service.
type Server struct {
	Host              string        `envconfig:"HOST" default:"0.0.0.0"`
	Port              string        `envconfig:"API_PORT" default:"5000" validate:"required,numeric"`
	ModelPath         string        `envconfig:"MODEL_PATH" default:"app/model/bug_classifier_pipeline.json" validate:"required"`
	ModelTimeout      time.Duration `envconfig:"MODEL_TIMEOUT" default:"30s" validate:"gt=0"`
	CORSAllowedOrigin string        `envconfig:"CORS_ALLOWED_ORIGIN" default:"*"`
	MaxBodyBytes      int64         `envconfig:"MAX_BODY_BYTES" default:"1048576" validate:"min=1"`
	ReadTimeout       time.Duration `envconfig:"READ_TIMEOUT" default:"15s" validate:"gt=0"`
	WriteTimeout      time.Duration `envconfig:"WRITE_TIMEOUT" default:"60s" validate:"gt=0"`
	ShutdownTimeout   time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s" validate:"gt=0"`

	RedisURL      string `envconfig:"REDIS_URL"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0" validate:"min=0"`

	Storage
	Logging
}

// Addr is the listen address built from Host and Port.
func (s Server) Addr() string {
	return net.JoinHostPort(s.Host, s.Port)
}

func (s Server) UsageEnabled() bool {
	return s.RedisURL != ""
}

// Evaluate configures the offline evaluation job. Command line flags take
// precedence over these values.
type Evaluate struct {
	DataPath   string `envconfig:"DATA_PATH" default:"issues.csv" validate:"required"`
	ModelDir   string `envconfig:"MODEL_DIR" default:"app/model"`
	ModelPath  string `envconfig:"EVAL_MODEL_PATH"`
	ReportsDir string `envconfig:"REPORTS_DIR" default:"reports" validate:"required"`
	Table      string `envconfig:"EVAL_TABLE"`
	Limit      int    `envconfig:"EVAL_LIMIT" default:"10000" validate:"min=1"`
	HistoryDSN string `envconfig:"EVAL_HISTORY_DSN"`
	Recent     int    `envconfig:"EVAL_RECENT" validate:"min=0"`

	Storage
	Logging
}

// LoadServer reads .env (when present) and the process environment.
func LoadServer() (Server, error) {
	var cfg Server
	if err := load(&cfg); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

func LoadEvaluate() (Evaluate, error) {
	var cfg Evaluate
	if err := load(&cfg); err != nil {
		return Evaluate{}, err
	}
	return cfg, nil
}

// Validate re-checks a config after flags have been applied on top of it.
func Validate(cfg any) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func load(cfg any) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	if err := envconfig.Process("", cfg); err != nil {
		return fmt.Errorf("process env: %w", err)
	}
	return Validate(cfg)
}
