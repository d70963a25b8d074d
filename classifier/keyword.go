package classifier

import (
	"context"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const KeywordFormat = "keyword-rules/v1"

// KeywordSpec is an ordered rule list; the first rule with a keyword found
// in the text decides the label, otherwise Default applies.
type KeywordSpec struct {
	Format    string        `yaml:"format"`
	Default   any           `yaml:"default"`
	Lowercase *bool         `yaml:"lowercase"`
	Rules     []KeywordRule `yaml:"rules"`
}

type KeywordRule struct {
	Label    any      `yaml:"label"`
	Keywords []string `yaml:"keywords"`
}

// Keyword is a label-only classifier.
type Keyword struct {
	spec      KeywordSpec
	lowercase bool
}

func ParseKeyword(data []byte) (*Keyword, error) {
	var spec KeywordSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("decode keyword model: %w", err)
	}
	if spec.Format != "" && spec.Format != KeywordFormat {
		return nil, fmt.Errorf("format %q: %w", spec.Format, ErrUnknownFormat)
	}
	if spec.Default == nil {
		return nil, fmt.Errorf("keyword model needs a default label: %w", ErrInvalidModel)
	}
	lowercase := true
	if spec.Lowercase != nil {
		lowercase = *spec.Lowercase
	}
	for i, rule := range spec.Rules {
		if rule.Label == nil || len(rule.Keywords) == 0 {
			return nil, fmt.Errorf("rule %d needs a label and keywords: %w", i, ErrInvalidModel)
		}
		if lowercase {
			for j, kw := range rule.Keywords {
				spec.Rules[i].Keywords[j] = strings.ToLower(kw)
			}
		}
	}
	return &Keyword{spec: spec, lowercase: lowercase}, nil
}

func (k *Keyword) Predict(ctx context.Context, texts []string) ([]any, error) {
	labels := make([]any, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		labels[i] = k.classify(text)
	}
	return labels, nil
}

func (k *Keyword) classify(text string) any {
	if k.lowercase {
		text = strings.ToLower(text)
	}
	for _, rule := range k.spec.Rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(text, kw) {
				return rule.Label
			}
		}
	}
	return k.spec.Default
}
