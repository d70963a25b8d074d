package issue

import "strings"

// Report is the text input of a prediction. Both fields are optional.
type Report struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Text joins title and description with a blank line and trims the result.
func (r Report) Text() string {
	return strings.TrimSpace(r.Title + "\n\n" + r.Description)
}

// Prediction is the model output for one report. Label is whatever scalar
// the classifier produced; Confidence is nil for label-only classifiers.
type Prediction struct {
	Label      any      `json:"prediction"`
	Confidence *float64 `json:"confidence"`
}

type BatchResult struct {
	Index int `json:"index"`
	Prediction
}
