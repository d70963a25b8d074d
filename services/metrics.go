package services

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
)

const reportDigits = 3

// ClassMetrics holds per-class precision, recall and F1 with the number of
// true samples of the class as support.
type ClassMetrics struct {
	Label     string
	Precision float64
	Recall    float64
	F1        float64
	Support   int
}

// Report summarizes a labeled prediction run. Ratios with a zero
// denominator are reported as 0.
type Report struct {
	Classes     []ClassMetrics
	Accuracy    float64
	MacroAvg    ClassMetrics
	WeightedAvg ClassMetrics
	Total       int
	Matrix      *ConfusionMatrix
}

// NewReport compares yTrue and yPred, which must have equal length and
// hold canonical label keys.
func NewReport(yTrue, yPred []string) (*Report, error) {
	if len(yTrue) != len(yPred) {
		return nil, fmt.Errorf("found %d true labels but %d predictions", len(yTrue), len(yPred))
	}
	cm := NewConfusionMatrix(yTrue, yPred)
	r := &Report{Total: len(yTrue), Matrix: cm}
	r.MacroAvg.Label = "macro avg"
	r.WeightedAvg.Label = "weighted avg"

	correct := 0
	for i, label := range cm.Labels {
		tp := cm.Counts[i][i]
		correct += tp
		var predicted, actual int
		for j := range cm.Labels {
			predicted += cm.Counts[j][i]
			actual += cm.Counts[i][j]
		}
		m := ClassMetrics{
			Label:     label,
			Precision: ratio(tp, predicted),
			Recall:    ratio(tp, actual),
			F1:        ratio(2*tp, predicted+actual),
			Support:   actual,
		}
		r.Classes = append(r.Classes, m)

		n := float64(len(cm.Labels))
		r.MacroAvg.Precision += m.Precision / n
		r.MacroAvg.Recall += m.Recall / n
		r.MacroAvg.F1 += m.F1 / n
		if r.Total > 0 {
			w := float64(actual) / float64(r.Total)
			r.WeightedAvg.Precision += m.Precision * w
			r.WeightedAvg.Recall += m.Recall * w
			r.WeightedAvg.F1 += m.F1 * w
		}
	}
	r.MacroAvg.Support = r.Total
	r.WeightedAvg.Support = r.Total
	r.Accuracy = ratio(correct, r.Total)
	return r, nil
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

// Text renders the fixed-width classification report.
func (r *Report) Text() string {
	width := len("weighted avg")
	for _, c := range r.Classes {
		width = max(width, len(c.Label))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%*s  %9s %9s %9s %9s\n\n", width, "", "precision", "recall", "f1-score", "support")
	for _, c := range r.Classes {
		writeReportRow(&b, width, c)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "%*s  %9s %9s %9.*f %9d\n", width, "accuracy", "", "", reportDigits, r.Accuracy, r.Total)
	writeReportRow(&b, width, r.MacroAvg)
	writeReportRow(&b, width, r.WeightedAvg)
	return b.String()
}

func writeReportRow(w io.Writer, width int, c ClassMetrics) {
	fmt.Fprintf(w, "%*s  %9.*f %9.*f %9.*f %9d\n", width, c.Label,
		reportDigits, c.Precision, reportDigits, c.Recall, reportDigits, c.F1, c.Support)
}

// Markdown wraps the text report in a fenced block under a heading.
func (r *Report) Markdown() string {
	return "# Model Evaluation Metrics\n\n```\n" + r.Text() + "\n```\n"
}

// WriteTable prints the per-class metrics as a console table.
func (r *Report) WriteTable(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Class", "Precision", "Recall", "F1", "Support"})
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	rows := append(append([]ClassMetrics{}, r.Classes...), r.MacroAvg, r.WeightedAvg)
	for _, c := range rows {
		table.Append([]string{
			c.Label,
			fmt.Sprintf("%.3f", c.Precision),
			fmt.Sprintf("%.3f", c.Recall),
			fmt.Sprintf("%.3f", c.F1),
			fmt.Sprintf("%d", c.Support),
		})
	}
	table.SetFooter([]string{"accuracy", "", "", fmt.Sprintf("%.3f", r.Accuracy), fmt.Sprintf("%d", r.Total)})
	table.Render()
}
