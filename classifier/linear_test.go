package classifier

import (
	"context"
	"math"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func loadFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile("testdata/" + name)
	require.NoError(t, err)
	return data
}

func TestParseLinear_Binary(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()

	model, err := ParseLinear(loadFixture(t, "binary.json"))
	req.NoError(err)
	proba, ok := Probabilistic(model)
	req.True(ok)

	texts := []string{"Crash on save", "Feature request", ""}
	labels, err := model.Predict(ctx, texts)
	req.NoError(err)
	req.Equal([]any{float64(1), float64(0), float64(0)}, labels)

	rows, err := proba.PredictProba(ctx, texts)
	req.NoError(err)
	req.Len(rows, 3)
	req.InDelta(1/(1+math.Exp(-1.5)), rows[0][1], 1e-9)
	req.InDelta(1/(1+math.Exp(3.5)), rows[1][1], 1e-9)
	for _, row := range rows {
		req.InDelta(1.0, row[0]+row[1], 1e-9)
	}
}

func TestParseLinear_LabelOnly(t *testing.T) {
	req := require.New(t)
	data := []byte(`{"classes":["non-bug","bug"],"vocabulary":{"crash":0},"coef":[[1]],"intercept":[0],"probabilistic":false}`)

	model, err := ParseLinear(data)
	req.NoError(err)
	_, ok := Probabilistic(model)
	req.False(ok)

	labels, err := model.Predict(context.Background(), []string{"crash", "fine"})
	req.NoError(err)
	req.Equal([]any{"bug", "non-bug"}, labels)
}

func TestLinear_Multiclass(t *testing.T) {
	req := require.New(t)
	m, err := NewLinear(LinearSpec{
		Classes:    []any{"bug", "feature", "question"},
		Vocabulary: map[string]int{"crash": 0, "add": 1, "how": 2},
		Coef:       [][]float64{{2, 0, 0}, {0, 2, 0}, {0, 0, 2}},
		Intercept:  []float64{0, 0, 0},
	})
	req.NoError(err)
	model := &ProbabilisticLinear{Linear: m}

	labels, err := model.Predict(context.Background(), []string{"How do I?"})
	req.NoError(err)
	req.Equal([]any{"question"}, labels)

	rows, err := model.PredictProba(context.Background(), []string{"How do I?"})
	req.NoError(err)
	e2 := math.Exp(2)
	req.InDelta(e2/(2+e2), rows[0][2], 1e-9)
	req.InDelta(1.0, rows[0][0]+rows[0][1]+rows[0][2], 1e-9)
}

func TestLinear_Bigrams(t *testing.T) {
	req := require.New(t)
	m, err := NewLinear(LinearSpec{
		Classes:    []any{0, 1},
		Vocabulary: map[string]int{"save file": 0},
		Coef:       [][]float64{{3}},
		Intercept:  []float64{-1},
		NgramRange: [2]int{1, 2},
	})
	req.NoError(err)

	labels, err := m.Predict(context.Background(), []string{"Save file now", "file save"})
	req.NoError(err)
	req.Equal([]any{1, 0}, labels)
}

func TestLinear_VectorizeTFIDF(t *testing.T) {
	req := require.New(t)
	m, err := NewLinear(LinearSpec{
		Classes:     []any{0, 1},
		Vocabulary:  map[string]int{"crash": 0, "save": 1},
		IDF:         []float64{2, 1},
		Coef:        [][]float64{{1, 1}},
		Intercept:   []float64{0},
		Norm:        "l2",
		SublinearTF: true,
	})
	req.NoError(err)

	x := m.vectorize("crash crash save")
	raw0 := (1 + math.Log(2)) * 2
	raw1 := 1.0
	norm := math.Sqrt(raw0*raw0 + raw1*raw1)
	req.Len(x, 2)
	req.Equal([]int{0, 1}, []int{x[0].index, x[1].index})
	req.InDelta(raw0/norm, x[0].value, 1e-9)
	req.InDelta(raw1/norm, x[1].value, 1e-9)
}

func TestLinear_ScoresAreReproducible(t *testing.T) {
	req := require.New(t)
	words := strings.Fields("crash save error stack trace null pointer panic timeout leak freeze hang")
	spec := LinearSpec{
		Classes:    []any{0, 1},
		Vocabulary: map[string]int{},
		Coef:       [][]float64{make([]float64, len(words))},
		Intercept:  []float64{0.1},
		Norm:       "l2",
	}
	for i, w := range words {
		spec.Vocabulary[w] = len(words) - 1 - i
		spec.Coef[0][i] = 1.0 / float64(3*i+7)
	}
	lin, err := NewLinear(spec)
	req.NoError(err)
	m := &ProbabilisticLinear{Linear: lin}

	text := strings.Join(words, " ")
	x := m.vectorize(text)
	for i := 1; i < len(x); i++ {
		req.Less(x[i-1].index, x[i].index)
	}
	want, err := m.PredictProba(context.Background(), []string{text})
	req.NoError(err)
	for range 50 {
		got, err := m.PredictProba(context.Background(), []string{text})
		req.NoError(err)
		req.Equal(want, got)
	}
}

func TestNewLinear_Invalid(t *testing.T) {
	base := func() LinearSpec {
		return LinearSpec{
			Classes:    []any{0, 1},
			Vocabulary: map[string]int{"crash": 0},
			Coef:       [][]float64{{1}},
			Intercept:  []float64{0},
		}
	}
	tests := []struct {
		description string
		modify      func(s *LinearSpec)
		wantErr     error
	}{
		{"Should reject unknown formats", func(s *LinearSpec) { s.Format = "pickle" }, ErrUnknownFormat},
		{"Should reject a single class", func(s *LinearSpec) { s.Classes = []any{0} }, ErrInvalidModel},
		{"Should reject a row count mismatch", func(s *LinearSpec) { s.Coef = [][]float64{{1}, {1}} }, ErrInvalidModel},
		{"Should reject an intercept mismatch", func(s *LinearSpec) { s.Intercept = nil }, ErrInvalidModel},
		{"Should reject out of range vocabulary", func(s *LinearSpec) { s.Vocabulary["save"] = 4 }, ErrInvalidModel},
		{"Should reject a short idf", func(s *LinearSpec) { s.IDF = []float64{1, 2} }, ErrInvalidModel},
		{"Should reject an unknown norm", func(s *LinearSpec) { s.Norm = "max" }, ErrInvalidModel},
		{"Should reject an inverted ngram range", func(s *LinearSpec) { s.NgramRange = [2]int{2, 1} }, ErrInvalidModel},
	}
	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			spec := base()
			tt.modify(&spec)
			_, err := NewLinear(spec)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParseLinear_RejectsUnknownFields(t *testing.T) {
	_, err := ParseLinear([]byte(`{"classes":[0,1],"coef":[[1]],"intercept":[0],"weights":[]}`))
	require.Error(t, err)
}

func TestLinear_ContextCancelled(t *testing.T) {
	model, err := ParseLinear(loadFixture(t, "binary.json"))
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = model.Predict(ctx, []string{"crash"})
	require.ErrorIs(t, err, context.Canceled)
}
