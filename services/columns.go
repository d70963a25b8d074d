package services

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Column names tried, in order, when looking for the issue text.
var TextCandidates = []string{
	"text", "issue_text", "body", "description", "desc", "message",
	"content", "title_description", "title_desc", "title_body",
}

// Column names tried, in order, when looking for the label.
var LabelCandidates = []string{"label", "target", "is_bug", "bug", "class", "y"}

// CombinedTextColumn is synthesized from title and description when no
// text candidate is present.
const CombinedTextColumn = "__combined_text__"

type Columns struct {
	Text        string
	Label       string
	Synthesized bool
}

// ColumnInferenceError lists the dataset columns when the text or label
// column could not be determined.
type ColumnInferenceError struct {
	Available    []string
	MissingText  bool
	MissingLabel bool
}

func (e *ColumnInferenceError) Error() string {
	return fmt.Sprintf("could not infer text/label columns. Available columns: [%s]",
		strings.Join(lo.Map(e.Available, func(n string, _ int) string { return "'" + n + "'" }), ", "))
}

// Tips suggests how to rename columns so inference succeeds.
func (e *ColumnInferenceError) Tips() []string {
	var tips []string
	if e.MissingText {
		tips = append(tips, fmt.Sprintf("rename the text column to one of: %s", strings.Join(TextCandidates, ", ")))
		tips = append(tips, "or provide both 'title' and 'description' columns")
	}
	if e.MissingLabel {
		tips = append(tips, fmt.Sprintf("rename the label column to one of: %s", strings.Join(LabelCandidates, ", ")))
	}
	return tips
}

// InferColumns picks the text and label columns of ds. The first text
// candidate wins. Without one, title and description are combined into a
// column appended to ds when both exist, else the first text-typed column
// is used. Since description is itself a candidate, the combined column
// only appears if TextCandidates is narrowed.
func InferColumns(ds *Dataset) (Columns, error) {
	original := ds.Names()
	var cols Columns

	cols.Text, _ = lo.Find(TextCandidates, func(name string) bool {
		_, ok := ds.Column(name)
		return ok
	})

	title, hasTitle := ds.Column("title")
	desc, hasDesc := ds.Column("description")
	if cols.Text == "" && hasTitle && hasDesc {
		ds.Columns = append(ds.Columns, combineText(title, desc))
		cols.Text = CombinedTextColumn
		cols.Synthesized = true
	}

	cols.Label, _ = lo.Find(LabelCandidates, func(name string) bool {
		_, ok := ds.Column(name)
		return ok
	})

	if cols.Text == "" {
		if c, ok := lo.Find(ds.Columns, func(c *Column) bool { return c.IsText() }); ok {
			cols.Text = c.Name
		}
	}

	if cols.Text == "" || cols.Label == "" {
		return cols, &ColumnInferenceError{
			Available:    original,
			MissingText:  cols.Text == "",
			MissingLabel: cols.Label == "",
		}
	}
	return cols, nil
}

func combineText(title, desc *Column) *Column {
	titles, descs := title.Strings(), desc.Strings()
	c := &Column{
		Name:    CombinedTextColumn,
		Values:  make([]string, len(titles)),
		Missing: make([]bool, len(titles)),
	}
	for i := range titles {
		c.Values[i] = strings.TrimSpace(titles[i] + ". " + descs[i])
	}
	return c
}
