package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/samber/lo"

	"bugtriage/classifier"
	"bugtriage/logging"
)

const (
	MetricsFile = "metrics_summary.md"
	MatrixFile  = "confusion_matrix.png"
)

type EvaluationOptions struct {
	// ModelPath wins over ModelDir when set.
	ModelPath  string
	ModelDir   string
	DataPath   string
	ReportsDir string
	Table      string
	Limit      int
}

// Observer is told about each completed step of an evaluation.
type Observer interface {
	ModelLocated(location string)
	DataLoaded(ds *Dataset)
	ColumnsInferred(cols Columns)
	ArtifactLoaded(artifact *classifier.Artifact)
	ReportWritten(path string)
}

type EvaluationResult struct {
	Artifact    *classifier.Artifact
	DataSource  string
	Columns     Columns
	Rows        int
	Report      *Report
	MetricsPath string
	MatrixPath  string
	Run         *EvaluationRun
}

// EvaluationService scores one artifact against one labeled dataset and
// writes the metrics report and confusion matrix image.
type EvaluationService struct {
	Loader   classifier.Loader
	Data     *DataService
	History  RunRecorder
	Observer Observer

	log *slog.Logger
}

func NewEvaluationService(loader classifier.Loader, data *DataService) *EvaluationService {
	return &EvaluationService{
		Loader: loader,
		Data:   data,
		log:    logging.New("evaluation"),
	}
}

func (s *EvaluationService) Run(ctx context.Context, opts EvaluationOptions) (*EvaluationResult, error) {
	obs := s.Observer
	if obs == nil {
		obs = nopObserver{}
	}

	location := opts.ModelPath
	if location == "" {
		found, err := classifier.FindArtifact(opts.ModelDir)
		if err != nil {
			return nil, fmt.Errorf("could not find a model file in %s (%v): %w",
				opts.ModelDir, artifactExtensions(), err)
		}
		location = found
	}
	obs.ModelLocated(location)

	if err := os.MkdirAll(opts.ReportsDir, 0o755); err != nil {
		return nil, fmt.Errorf("create reports dir: %w", err)
	}

	ds, err := s.Data.Load(ctx, opts.DataPath, LoadOptions{Table: opts.Table, Limit: opts.Limit})
	if err != nil {
		if errors.Is(err, ErrDatasetNotFound) {
			return nil, fmt.Errorf("data file not found: %s: %w", opts.DataPath, err)
		}
		return nil, fmt.Errorf("load data: %w", err)
	}
	obs.DataLoaded(ds)
	if ds.Rows() == 0 {
		return nil, fmt.Errorf("%s has no rows to evaluate", ds.Source)
	}

	cols, err := InferColumns(ds)
	if err != nil {
		return nil, err
	}
	obs.ColumnsInferred(cols)

	artifact, err := s.Loader.Load(ctx, location)
	if err != nil {
		return nil, err
	}
	obs.ArtifactLoaded(artifact)
	s.log.Info("evaluating", "model", artifact.Location, "digest", artifact.Digest,
		"data", ds.Source, "rows", ds.Rows(), "text_column", cols.Text, "label_column", cols.Label)

	textCol, _ := ds.Column(cols.Text)
	labelCol, _ := ds.Column(cols.Label)

	predictions, err := artifact.Classifier.Predict(ctx, textCol.Strings())
	if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}
	if len(predictions) != ds.Rows() {
		return nil, fmt.Errorf("model returned %d predictions for %d rows: %w",
			len(predictions), ds.Rows(), classifier.ErrShapeMismatch)
	}

	yTrue := lo.Map(labelCol.Values, func(v string, i int) string {
		if labelCol.Missing[i] {
			return MissingLabel
		}
		return LabelKey(v)
	})
	yPred := lo.Map(predictions, func(p any, _ int) string { return LabelKey(p) })

	report, err := NewReport(yTrue, yPred)
	if err != nil {
		return nil, err
	}

	result := &EvaluationResult{
		Artifact:    artifact,
		DataSource:  ds.Source,
		Columns:     cols,
		Rows:        ds.Rows(),
		Report:      report,
		MetricsPath: filepath.Join(opts.ReportsDir, MetricsFile),
		MatrixPath:  filepath.Join(opts.ReportsDir, MatrixFile),
	}

	if err := os.WriteFile(result.MetricsPath, []byte(report.Markdown()), 0o644); err != nil {
		return nil, fmt.Errorf("write metrics: %w", err)
	}
	obs.ReportWritten(result.MetricsPath)

	if err := report.Matrix.SavePNG(result.MatrixPath); err != nil {
		return nil, fmt.Errorf("write confusion matrix: %w", err)
	}
	obs.ReportWritten(result.MatrixPath)

	if s.History != nil {
		run := &EvaluationRun{
			ModelLocation: artifact.Location,
			ModelDigest:   artifact.Digest,
			DataSource:    ds.Source,
			TextColumn:    cols.Text,
			LabelColumn:   cols.Label,
			Rows:          ds.Rows(),
			Accuracy:      report.Accuracy,
			MacroF1:       report.MacroAvg.F1,
		}
		if err := s.History.Record(ctx, run); err != nil {
			return nil, err
		}
		result.Run = run
	}
	return result, nil
}

func artifactExtensions() string {
	return fmt.Sprint(classifier.ArtifactExtensions)
}

type nopObserver struct{}

func (nopObserver) ModelLocated(string)                 {}
func (nopObserver) DataLoaded(*Dataset)                 {}
func (nopObserver) ColumnsInferred(Columns)             {}
func (nopObserver) ArtifactLoaded(*classifier.Artifact) {}
func (nopObserver) ReportWritten(string)                {}
