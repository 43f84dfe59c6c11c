package pipeline

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/colereed/showrunner/internal/parse"
)

// defaultDescriptionTemplate is used when no template file is configured or
// the configured file is missing.
const defaultDescriptionTemplate = `{{HOOK}}

KEY TOPICS:
{{KEY_TOPICS}}

TIMESTAMPS:
{{TIMESTAMPS}}

PANELISTS:
{{PANELISTS}}

KEYWORDS:
{{KEYWORDS}}
`

// Template renders the YouTube description from parsed fields.
type Template struct {
	text string
}

// LoadTemplate reads the description template. A missing file falls back to
// the built-in default; only a present-but-unreadable file is an error.
func LoadTemplate(path string) (Template, error) {
	if path == "" {
		return Template{text: defaultDescriptionTemplate}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Template{text: defaultDescriptionTemplate}, nil
		}
		return Template{}, fmt.Errorf("read description template: %w", err)
	}
	return Template{text: string(data)}, nil
}

var templateFields = map[string]parse.Field{
	"{{HOOK}}":       parse.FieldHook,
	"{{KEY_TOPICS}}": parse.FieldKeyTopics,
	"{{TIMESTAMPS}}": parse.FieldTimestamps,
	"{{PANELISTS}}":  parse.FieldPanelists,
	"{{KEYWORDS}}":   parse.FieldKeywords,
}

// Populate substitutes the parsed description fields into the template.
// A missing field leaves an empty slot, which keeps the gap visible instead
// of papering over it.
func (t Template) Populate(r *parse.Result) string {
	out := t.text
	for placeholder, field := range templateFields {
		out = strings.ReplaceAll(out, placeholder, r.Get(field))
	}
	return out
}
