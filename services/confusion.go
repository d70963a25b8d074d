package services

import (
	"errors"
	"image/color"
	"slices"
	"strconv"

	"github.com/samber/lo"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
)

// ConfusionMatrix counts samples by true label (row) and predicted label
// (column). Labels are the sorted union of both sides.
type ConfusionMatrix struct {
	Labels []string
	Counts [][]int
}

func NewConfusionMatrix(yTrue, yPred []string) *ConfusionMatrix {
	labels := SortLabels(lo.Uniq(slices.Concat(yTrue, yPred)))
	index := make(map[string]int, len(labels))
	for i, l := range labels {
		index[l] = i
	}
	counts := make([][]int, len(labels))
	for i := range counts {
		counts[i] = make([]int, len(labels))
	}
	for i := range yTrue {
		counts[index[yTrue[i]]][index[yPred[i]]]++
	}
	return &ConfusionMatrix{Labels: labels, Counts: counts}
}

func (m *ConfusionMatrix) maxCount() int {
	highest := 0
	for _, row := range m.Counts {
		highest = max(highest, slices.Max(row))
	}
	return highest
}

// matrixGrid exposes the counts as a heat map grid with the first true
// label drawn on top.
type matrixGrid struct {
	m *ConfusionMatrix
}

func (g matrixGrid) Dims() (c, r int) { return len(g.m.Labels), len(g.m.Labels) }
func (g matrixGrid) X(c int) float64  { return float64(c) }
func (g matrixGrid) Y(r int) float64  { return float64(r) }
func (g matrixGrid) Z(c, r int) float64 {
	n := len(g.m.Labels)
	return float64(g.m.Counts[n-1-r][c])
}

// blues runs from near white to dark blue.
type blues int

func (b blues) Colors() []color.Color {
	from, to := color.RGBA{R: 247, G: 251, B: 255, A: 255}, color.RGBA{R: 8, G: 48, B: 107, A: 255}
	n := max(int(b), 2)
	colors := make([]color.Color, n)
	for i := range colors {
		t := float64(i) / float64(n-1)
		colors[i] = color.RGBA{
			R: mix(from.R, to.R, t),
			G: mix(from.G, to.G, t),
			B: mix(from.B, to.B, t),
			A: 255,
		}
	}
	return colors
}

func mix(a, b uint8, t float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*t + 0.5)
}

var _ palette.Palette = blues(0)

// SavePNG draws the matrix as an annotated heat map.
func (m *ConfusionMatrix) SavePNG(path string) error {
	n := len(m.Labels)
	if n == 0 {
		return errors.New("confusion matrix is empty")
	}

	p := plot.New()
	p.Title.Text = "Confusion Matrix"
	p.X.Label.Text = "Predicted label"
	p.Y.Label.Text = "True label"

	heat := plotter.NewHeatMap(matrixGrid{m}, blues(256))
	heat.Min = 0
	heat.Max = float64(max(m.maxCount(), 1))
	p.Add(heat)

	var xys plotter.XYs
	var texts []string
	for i, row := range m.Counts {
		for c, count := range row {
			xys = append(xys, plotter.XY{X: float64(c), Y: float64(n - 1 - i)})
			texts = append(texts, strconv.Itoa(count))
		}
	}
	cells, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: texts})
	if err != nil {
		return err
	}
	threshold := heat.Max / 2
	k := 0
	for _, row := range m.Counts {
		for _, count := range row {
			cells.TextStyle[k].XAlign = text.XCenter
			cells.TextStyle[k].YAlign = text.YCenter
			if float64(count) > threshold {
				cells.TextStyle[k].Color = color.White
			}
			k++
		}
	}
	p.Add(cells)

	xticks := make([]plot.Tick, n)
	yticks := make([]plot.Tick, n)
	for i, l := range m.Labels {
		xticks[i] = plot.Tick{Value: float64(i), Label: l}
		yticks[i] = plot.Tick{Value: float64(n - 1 - i), Label: l}
	}
	p.X.Tick.Marker = plot.ConstantTicks(xticks)
	p.Y.Tick.Marker = plot.ConstantTicks(yticks)

	side := vg.Length(4+n/4) * vg.Inch
	return p.Save(side, side, path)
}
