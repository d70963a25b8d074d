// Package classifier defines the capability set of a loaded text model and
// the artifact formats that can be loaded into it.
package classifier

import (
	"context"
	"errors"
	"fmt"

	"bugtriage/issue"
)

//go:generate mockgen -source=classifier.go -destination=../mocks/classifier_mock.go -package=mocks

var (
	ErrNoArtifact    = errors.New("no model artifact found")
	ErrUnknownFormat = errors.New("unknown model artifact format")
	ErrInvalidModel  = errors.New("invalid model artifact")
	ErrShapeMismatch = errors.New("model returned an unexpected number of results")
)

// Classifier is a label-only model.
type Classifier interface {
	Predict(ctx context.Context, texts []string) ([]any, error)
}

// ProbabilisticClassifier additionally returns one probability row per
// text, ordered like the model's classes.
type ProbabilisticClassifier interface {
	Classifier
	PredictProba(ctx context.Context, texts []string) ([][]float64, error)
}

// Probabilistic reports whether c exposes class probabilities.
func Probabilistic(c Classifier) (ProbabilisticClassifier, bool) {
	p, ok := c.(ProbabilisticClassifier)
	return p, ok
}

// PredictOne classifies a single text. Confidence is the highest class
// probability when c is probabilistic and nil otherwise.
func PredictOne(ctx context.Context, c Classifier, text string) (issue.Prediction, error) {
	labels, err := c.Predict(ctx, []string{text})
	if err != nil {
		return issue.Prediction{}, err
	}
	if len(labels) != 1 {
		return issue.Prediction{}, fmt.Errorf("predict: got %d labels for 1 text: %w", len(labels), ErrShapeMismatch)
	}
	pred := issue.Prediction{Label: labels[0]}

	p, ok := Probabilistic(c)
	if !ok {
		return pred, nil
	}
	rows, err := p.PredictProba(ctx, []string{text})
	if err != nil {
		return issue.Prediction{}, err
	}
	if len(rows) != 1 || len(rows[0]) == 0 {
		return issue.Prediction{}, fmt.Errorf("predict proba: %w", ErrShapeMismatch)
	}
	confidence := maxOf(rows[0])
	pred.Confidence = &confidence
	return pred, nil
}

func maxOf(row []float64) float64 {
	m := row[0]
	for _, v := range row[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
