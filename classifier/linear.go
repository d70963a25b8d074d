package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"slices"
)

const LinearFormat = "linear-text/v1"

// LinearSpec is the on-disk form of a bag-of-words linear model. Binary
// models carry a single coefficient row scoring Classes[1] against
// Classes[0]; multiclass models carry one row per class.
type LinearSpec struct {
	Format        string         `json:"format"`
	Classes       []any          `json:"classes"`
	Vocabulary    map[string]int `json:"vocabulary"`
	IDF           []float64      `json:"idf,omitempty"`
	Coef          [][]float64    `json:"coef"`
	Intercept     []float64      `json:"intercept"`
	Lowercase     *bool          `json:"lowercase,omitempty"`
	NgramRange    [2]int         `json:"ngram_range,omitempty"`
	SublinearTF   bool           `json:"sublinear_tf,omitempty"`
	Norm          string         `json:"norm,omitempty"`
	Probabilistic bool           `json:"probabilistic"`
}

// Linear is a label-only linear text model.
type Linear struct {
	spec      LinearSpec
	features  int
	lowercase bool
	lo, hi    int
}

// ProbabilisticLinear adds calibrated probabilities: sigmoid for binary
// models and softmax for multiclass ones.
type ProbabilisticLinear struct {
	*Linear
}

// ParseLinear decodes and validates a linear artifact. The returned
// classifier is probabilistic only when the artifact says so.
func ParseLinear(data []byte) (Classifier, error) {
	var spec LinearSpec
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&spec); err != nil {
		return nil, fmt.Errorf("decode linear model: %w", err)
	}
	m, err := NewLinear(spec)
	if err != nil {
		return nil, err
	}
	if spec.Probabilistic {
		return &ProbabilisticLinear{Linear: m}, nil
	}
	return m, nil
}

func NewLinear(spec LinearSpec) (*Linear, error) {
	if spec.Format != "" && spec.Format != LinearFormat {
		return nil, fmt.Errorf("format %q: %w", spec.Format, ErrUnknownFormat)
	}
	if len(spec.Classes) < 2 {
		return nil, fmt.Errorf("need at least 2 classes, got %d: %w", len(spec.Classes), ErrInvalidModel)
	}
	rows := len(spec.Classes)
	if rows == 2 {
		rows = 1
	}
	if len(spec.Coef) != rows {
		return nil, fmt.Errorf("expected %d coefficient rows, got %d: %w", rows, len(spec.Coef), ErrInvalidModel)
	}
	if len(spec.Intercept) != rows {
		return nil, fmt.Errorf("expected %d intercepts, got %d: %w", rows, len(spec.Intercept), ErrInvalidModel)
	}
	features := len(spec.Coef[0])
	for i, row := range spec.Coef {
		if len(row) != features {
			return nil, fmt.Errorf("coefficient row %d has %d features, want %d: %w", i, len(row), features, ErrInvalidModel)
		}
	}
	for term, idx := range spec.Vocabulary {
		if idx < 0 || idx >= features {
			return nil, fmt.Errorf("term %q maps to feature %d outside [0,%d): %w", term, idx, features, ErrInvalidModel)
		}
	}
	if len(spec.IDF) != 0 && len(spec.IDF) != features {
		return nil, fmt.Errorf("idf has %d entries, want %d: %w", len(spec.IDF), features, ErrInvalidModel)
	}
	switch spec.Norm {
	case "", "l1", "l2":
	default:
		return nil, fmt.Errorf("norm %q: %w", spec.Norm, ErrInvalidModel)
	}

	lo, hi := spec.NgramRange[0], spec.NgramRange[1]
	if lo == 0 && hi == 0 {
		lo, hi = 1, 1
	}
	if lo < 1 || hi < lo {
		return nil, fmt.Errorf("ngram range %v: %w", spec.NgramRange, ErrInvalidModel)
	}

	lowercase := true
	if spec.Lowercase != nil {
		lowercase = *spec.Lowercase
	}
	return &Linear{spec: spec, features: features, lowercase: lowercase, lo: lo, hi: hi}, nil
}

func (m *Linear) Predict(ctx context.Context, texts []string) ([]any, error) {
	labels := make([]any, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		labels[i] = m.spec.Classes[argmax(m.scores(text))]
	}
	return labels, nil
}

func (m *ProbabilisticLinear) PredictProba(ctx context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		scores := m.scores(text)
		if len(scores) == 1 {
			p := sigmoid(scores[0])
			out[i] = []float64{1 - p, p}
		} else {
			out[i] = softmax(scores)
		}
	}
	return out, nil
}

// scores returns the decision function. Binary models yield one score,
// positive meaning Classes[1].
func (m *Linear) scores(text string) []float64 {
	x := m.vectorize(text)
	scores := make([]float64, len(m.spec.Coef))
	for r, row := range m.spec.Coef {
		s := m.spec.Intercept[r]
		for _, f := range x {
			s += row[f.index] * f.value
		}
		scores[r] = s
	}
	return scores
}

type feature struct {
	index int
	value float64
}

// vectorize returns the non-zero tf-idf features of text ordered by
// vocabulary index, so sums over them are reproducible.
func (m *Linear) vectorize(text string) []feature {
	counts := make(map[int]float64)
	for _, term := range ngrams(tokenize(text, m.lowercase), m.lo, m.hi) {
		if idx, ok := m.spec.Vocabulary[term]; ok {
			counts[idx]++
		}
	}
	x := make([]feature, 0, len(counts))
	for _, idx := range slices.Sorted(maps.Keys(counts)) {
		tf := counts[idx]
		if m.spec.SublinearTF {
			tf = 1 + math.Log(tf)
		}
		if len(m.spec.IDF) > 0 {
			tf *= m.spec.IDF[idx]
		}
		x = append(x, feature{index: idx, value: tf})
	}

	var norm float64
	switch m.spec.Norm {
	case "l2":
		for _, f := range x {
			norm += f.value * f.value
		}
		norm = math.Sqrt(norm)
	case "l1":
		for _, f := range x {
			norm += math.Abs(f.value)
		}
	}
	if norm > 0 {
		for i := range x {
			x[i].value /= norm
		}
	}
	return x
}

func argmax(scores []float64) int {
	if len(scores) == 1 {
		if scores[0] > 0 {
			return 1
		}
		return 0
	}
	best := 0
	for i, s := range scores {
		if s > scores[best] {
			best = i
		}
	}
	return best
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

func softmax(scores []float64) []float64 {
	peak := scores[0]
	for _, s := range scores[1:] {
		peak = math.Max(peak, s)
	}
	out := make([]float64, len(scores))
	var sum float64
	for i, s := range scores {
		out[i] = math.Exp(s - peak)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
