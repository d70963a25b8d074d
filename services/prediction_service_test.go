package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"bugtriage/classifier"
	"bugtriage/issue"
	"bugtriage/mocks"
)

type fakeUsage struct {
	mu     sync.Mutex
	labels []string
	err    error
}

func (f *fakeUsage) Record(_ context.Context, label string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.labels = append(f.labels, label)
	return f.err
}

func (f *fakeUsage) Snapshot(context.Context) (Usage, error) {
	return Usage{Enabled: true, Total: int64(len(f.labels))}, nil
}

func TestPredictionService_Predict(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	model := mocks.NewMockProbabilisticClassifier(ctrl)
	text := "Crash on save\n\nApp crashes when saving large files"
	model.EXPECT().Predict(ctx, []string{text}).Return([]any{1}, nil)
	model.EXPECT().PredictProba(ctx, []string{text}).Return([][]float64{{0.1, 0.9}}, nil)

	usage := &fakeUsage{}
	svc := NewPredictionService(&classifier.Artifact{Classifier: model}, usage)
	pred, err := svc.Predict(ctx, issue.Report{Title: "Crash on save", Description: "App crashes when saving large files"})
	req.NoError(err)
	req.Equal(1, pred.Label)
	req.InDelta(0.9, *pred.Confidence, 1e-9)
	req.Equal([]string{"1"}, usage.labels)
}

func TestPredictionService_PredictBatchKeepsOrder(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	model := mocks.NewMockClassifier(ctrl)
	gomock.InOrder(
		model.EXPECT().Predict(ctx, []string{"first"}).Return([]any{"bug"}, nil),
		model.EXPECT().Predict(ctx, []string{"second"}).Return([]any{"non-bug"}, nil),
		model.EXPECT().Predict(ctx, []string{""}).Return([]any{"non-bug"}, nil),
	)

	svc := NewPredictionService(&classifier.Artifact{Classifier: model}, nil)
	results, err := svc.PredictBatch(ctx, []issue.Report{{Title: "first"}, {Description: "second"}, {}})
	req.NoError(err)
	req.Len(results, 3)
	for i, r := range results {
		req.Equal(i, r.Index)
		req.Nil(r.Confidence)
	}
	req.Equal("bug", results[0].Label)
	req.Equal("non-bug", results[1].Label)
}

func TestPredictionService_PredictBatchEmpty(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := NewPredictionService(&classifier.Artifact{Classifier: mocks.NewMockClassifier(ctrl)}, nil)
	results, err := svc.PredictBatch(context.Background(), nil)
	require.NoError(t, err)
	require.NotNil(t, results)
	require.Empty(t, results)
}

func TestPredictionService_UsageFailureIsIgnored(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	model := mocks.NewMockClassifier(ctrl)
	model.EXPECT().Predict(ctx, gomock.Any()).Return([]any{"bug"}, nil)

	svc := NewPredictionService(&classifier.Artifact{Classifier: model}, &fakeUsage{err: errors.New("redis down")})
	pred, err := svc.Predict(ctx, issue.Report{Title: "x"})
	require.NoError(t, err)
	require.Equal(t, "bug", pred.Label)
}

func TestPredictionService_PredictError(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	model := mocks.NewMockClassifier(ctrl)
	boom := errors.New("model server unreachable")
	model.EXPECT().Predict(ctx, gomock.Any()).Return(nil, boom)

	usage := &fakeUsage{}
	svc := NewPredictionService(&classifier.Artifact{Classifier: model}, usage)
	_, err := svc.PredictBatch(ctx, []issue.Report{{Title: "x"}})
	require.ErrorIs(t, err, boom)
	require.Empty(t, usage.labels)
}
