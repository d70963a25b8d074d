package services

import (
	"context"
	"fmt"
	"log/slog"

	"bugtriage/classifier"
	"bugtriage/issue"
	"bugtriage/logging"
)

// PredictionService answers predictions from one loaded artifact. It holds
// no mutable state of its own and is shared by all request handlers.
type PredictionService struct {
	artifact *classifier.Artifact
	usage    UsageRecorder
	log      *slog.Logger
}

func NewPredictionService(artifact *classifier.Artifact, usage UsageRecorder) *PredictionService {
	if usage == nil {
		usage = NopUsage{}
	}
	return &PredictionService{
		artifact: artifact,
		usage:    usage,
		log:      logging.New("prediction"),
	}
}

func (s *PredictionService) Artifact() *classifier.Artifact {
	return s.artifact
}

func (s *PredictionService) Usage(ctx context.Context) (Usage, error) {
	return s.usage.Snapshot(ctx)
}

func (s *PredictionService) Predict(ctx context.Context, report issue.Report) (issue.Prediction, error) {
	pred, err := classifier.PredictOne(ctx, s.artifact.Classifier, report.Text())
	if err != nil {
		return issue.Prediction{}, fmt.Errorf("predict: %w", err)
	}
	s.record(ctx, pred.Label)
	return pred, nil
}

// PredictBatch predicts every report on its own, in input order. Result i
// always belongs to reports[i].
func (s *PredictionService) PredictBatch(ctx context.Context, reports []issue.Report) ([]issue.BatchResult, error) {
	results := make([]issue.BatchResult, 0, len(reports))
	for i, report := range reports {
		pred, err := s.Predict(ctx, report)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		results = append(results, issue.BatchResult{Index: i, Prediction: pred})
	}
	return results, nil
}

func (s *PredictionService) record(ctx context.Context, label any) {
	if err := s.usage.Record(ctx, LabelKey(label)); err != nil {
		s.log.Warn("usage counter update failed", "error", err)
	}
}
