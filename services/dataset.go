package services

import (
	"strconv"
	"strings"
)

// Column is one named column of a dataset. Missing[i] marks an absent value
// at row i; Values[i] is then empty.
type Column struct {
	Name    string
	Values  []string
	Missing []bool
}

// Dataset is a column-oriented table. Columns keep their source order.
type Dataset struct {
	Source  string
	Columns []*Column
}

func (d *Dataset) Rows() int {
	if len(d.Columns) == 0 {
		return 0
	}
	return len(d.Columns[0].Values)
}

func (d *Dataset) Column(name string) (*Column, bool) {
	for _, c := range d.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

func (d *Dataset) Names() []string {
	names := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		names[i] = c.Name
	}
	return names
}

// Strings returns the column values with missing entries as "".
func (c *Column) Strings() []string {
	out := make([]string, len(c.Values))
	for i, v := range c.Values {
		if !c.Missing[i] {
			out[i] = v
		}
	}
	return out
}

// IsText reports whether the column would hold generic objects rather than
// numbers or booleans: at least one present value is neither numeric nor
// boolean, or boolean values are mixed with missing ones.
func (c *Column) IsText() bool {
	allNumeric, allBool, anyMissing, anyValue := true, true, false, false
	for i, v := range c.Values {
		if c.Missing[i] {
			anyMissing = true
			continue
		}
		anyValue = true
		if !isNumeric(v) {
			allNumeric = false
		}
		if !isBool(v) {
			allBool = false
		}
	}
	switch {
	case !anyValue:
		return false
	case allNumeric:
		return false
	case allBool:
		return anyMissing
	}
	return true
}

func isNumeric(v string) bool {
	_, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	return err == nil
}

func isBool(v string) bool {
	switch v {
	case "True", "False", "true", "false", "TRUE", "FALSE":
		return true
	}
	return false
}

// tableBuilder accumulates rows whose column set may grow, as with
// schemaless document sources.
type tableBuilder struct {
	index   map[string]int
	columns []*Column
	rows    int
}

func newTableBuilder(names ...string) *tableBuilder {
	b := &tableBuilder{index: make(map[string]int)}
	for _, n := range names {
		b.column(n)
	}
	return b
}

func (b *tableBuilder) column(name string) *Column {
	if i, ok := b.index[name]; ok {
		return b.columns[i]
	}
	c := &Column{
		Name:    name,
		Values:  make([]string, b.rows),
		Missing: make([]bool, b.rows),
	}
	for i := range c.Missing {
		c.Missing[i] = true
	}
	b.index[name] = len(b.columns)
	b.columns = append(b.columns, c)
	return c
}

// addRow appends one row; columns absent from values are missing.
func (b *tableBuilder) addRow(values map[string]*string) {
	for _, c := range b.columns {
		v, ok := values[c.Name]
		if ok && v != nil {
			c.Values = append(c.Values, *v)
			c.Missing = append(c.Missing, false)
		} else {
			c.Values = append(c.Values, "")
			c.Missing = append(c.Missing, true)
		}
	}
	b.rows++
}

func (b *tableBuilder) dataset(source string) *Dataset {
	return &Dataset{Source: source, Columns: b.columns}
}
