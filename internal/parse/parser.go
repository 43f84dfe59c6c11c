// Package parse extracts structured fields from free-text model output.
//
// Model output format varies call to call, so each field has an ordered pair
// of patterns: a primary section-header anchor and a documented fallback.
// Extraction is best-effort with explicit per-field presence tracking: an
// absent field is left empty and flagged, never defaulted to plausible text.
package parse

import (
	"regexp"
	"strings"

	"github.com/colereed/showrunner/internal/llm"
)

// Field names a parsed output field.
type Field string

const (
	FieldHook       Field = "hook"
	FieldKeyTopics  Field = "key_topics"
	FieldTimestamps Field = "timestamps"
	FieldPanelists  Field = "panelists"
	FieldKeywords   Field = "keywords"
	FieldTeaser     Field = "teaser"
	FieldArticle    Field = "article"
)

// Result holds the raw model text, extracted fields, and presence flags.
// It is never mutated after parsing; a bad parse produces flags, not retries.
type Result struct {
	Raw    string
	Fields map[Field]string
	// Missing lists expected fields that could not be extracted.
	Missing []Field
	// IncompleteKeywords is set when the keyword field was found but is not
	// a comma-delimited list of reasonable length.
	IncompleteKeywords bool
}

// Get returns a field's value, empty if missing.
func (r *Result) Get(f Field) string {
	return r.Fields[f]
}

// Clean reports whether every expected field was extracted intact.
func (r *Result) Clean() bool {
	return len(r.Missing) == 0 && !r.IncompleteKeywords
}

// Warnings renders the presence flags for logs and operator notifications.
func (r *Result) Warnings() []string {
	var warnings []string
	for _, f := range r.Missing {
		warnings = append(warnings, "missing_field:"+string(f))
	}
	if r.IncompleteKeywords {
		warnings = append(warnings, "incomplete_keywords")
	}
	return warnings
}

// descriptionFields are extracted in this order. The fields feed a platform
// that does not render markup, so all of them are plain text.
var descriptionFields = []struct {
	field    Field
	primary  *regexp.Regexp
	fallback *regexp.Regexp
}{
	// Primary anchors are the exact headers the prompt asks for. Fallbacks
	// accept the drift actually observed: spaces or hyphens instead of
	// underscores, and markdown heading or bold decoration around the header.
	{
		FieldHook,
		regexp.MustCompile(`(?is)\bHOOK:(.*?)(?:KEY_TOPICS:|TIMESTAMPS:|PANELISTS:|KEYWORDS:|$)`),
		regexp.MustCompile(`(?is)(?:^|\n)[#* ]*HOOK\b[^:\n]*:(.*?)(?:KEY[ _-]?TOPICS|TIMESTAMPS|PANELISTS|KEYWORDS|$)`),
	},
	{
		FieldKeyTopics,
		regexp.MustCompile(`(?is)\bKEY_TOPICS:(.*?)(?:TIMESTAMPS:|PANELISTS:|KEYWORDS:|$)`),
		regexp.MustCompile(`(?is)(?:^|\n)[#* ]*KEY[ _-]?TOPICS\b[^:\n]*:(.*?)(?:TIMESTAMPS|PANELISTS|KEYWORDS|$)`),
	},
	{
		FieldTimestamps,
		regexp.MustCompile(`(?is)\bTIMESTAMPS:(.*?)(?:PANELISTS:|KEYWORDS:|$)`),
		regexp.MustCompile(`(?is)(?:^|\n)[#* ]*(?:TIMESTAMPS|CHAPTERS)\b[^:\n]*:(.*?)(?:PANELISTS|KEYWORDS|$)`),
	},
	{
		FieldPanelists,
		regexp.MustCompile(`(?is)\bPANELISTS:(.*?)(?:KEYWORDS:|$)`),
		regexp.MustCompile(`(?is)(?:^|\n)[#* ]*(?:PANELISTS|GUESTS)\b[^:\n]*:(.*?)(?:KEYWORDS|$)`),
	},
	{
		FieldKeywords,
		regexp.MustCompile(`(?is)\bKEYWORDS:(.*)$`),
		regexp.MustCompile(`(?is)(?:^|\n)[#* ]*(?:KEYWORDS|TAGS)\b[^:\n]*:(.*)$`),
	},
}

// minKeywordLength is the shortest comma-delimited keyword list accepted
// before flagging incomplete_keywords.
const minKeywordLength = 20

// Parse dispatches on the step kind.
func Parse(step llm.StepKind, raw string) *Result {
	switch step {
	case llm.StepDescription:
		return Description(raw)
	case llm.StepTeaser:
		return Teaser(raw)
	case llm.StepArticle:
		return Article(raw)
	default:
		return &Result{Raw: raw, Fields: map[Field]string{}}
	}
}

// Description extracts the plain-text description components. Markup is
// stripped from every field; the consuming platform renders none of it.
func Description(raw string) *Result {
	result := &Result{Raw: raw, Fields: map[Field]string{}}

	for _, spec := range descriptionFields {
		value := extract(raw, spec.primary, spec.fallback)
		value = stripMarkup(value)
		if spec.field == FieldKeywords {
			var ok bool
			value, ok = cleanKeywords(value)
			if !ok {
				result.IncompleteKeywords = true
			}
		}
		if value == "" {
			result.Missing = append(result.Missing, spec.field)
			continue
		}
		result.Fields[spec.field] = value
	}

	return result
}

var (
	teaserPrimary   = regexp.MustCompile(`(?is)\bNEWSLETTER\s+TEASER:\s*(.*)$`)
	teaserFallback  = regexp.MustCompile(`(?is)\bTEASER:\s*(.*)$`)
	articlePrimary  = regexp.MustCompile(`(?is)\b(?:BLOG\s+POST|ARTICLE):\s*(.*)$`)
	articleFallback = regexp.MustCompile(`(?is)\bNEWSLETTER\s*(?:ARTICLE)?:\s*(.*)$`)
)

// Teaser extracts the teaser prose. Inline emphasis and link markup is
// preserved byte for byte; only a leading section header is removed.
func Teaser(raw string) *Result {
	return prose(raw, FieldTeaser, teaserPrimary, teaserFallback)
}

// Article extracts the article prose, markup preserved.
func Article(raw string) *Result {
	return prose(raw, FieldArticle, articlePrimary, articleFallback)
}

func prose(raw string, field Field, primary, fallback *regexp.Regexp) *Result {
	result := &Result{Raw: raw, Fields: map[Field]string{}}

	value := extract(raw, primary, fallback)
	if value == "" {
		// The narrow prose steps usually return the content bare, with no
		// section header at all.
		value = strings.TrimSpace(raw)
	}
	if value == "" {
		result.Missing = append(result.Missing, field)
		return result
	}
	result.Fields[field] = value
	return result
}

var (
	titlePrimary  = regexp.MustCompile(`(?m)^\s*TITLE\s*\d+\s*:\s*(.+?)\s*$`)
	titleFallback = regexp.MustCompile(`(?m)^\s*\d+[.)]\s+(.+?)\s*$`)
)

// Titles extracts up to five title candidates. The primary pattern is the
// "TITLE n:" format the prompt requests; the fallback accepts a plain
// numbered list.
func Titles(raw string) []string {
	matches := titlePrimary.FindAllStringSubmatch(raw, -1)
	if len(matches) == 0 {
		matches = titleFallback.FindAllStringSubmatch(raw, -1)
	}

	var titles []string
	for _, m := range matches {
		title := stripMarkup(m[1])
		if title == "" {
			continue
		}
		titles = append(titles, title)
		if len(titles) == 5 {
			break
		}
	}
	return titles
}

func extract(raw string, primary, fallback *regexp.Regexp) string {
	if m := primary.FindStringSubmatch(raw); m != nil {
		if v := strings.TrimSpace(m[1]); v != "" {
			return v
		}
	}
	if m := fallback.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

var linkMarkup = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)

// stripMarkup removes inline emphasis and collapses links to their text.
func stripMarkup(s string) string {
	s = linkMarkup.ReplaceAllString(s, "$1")
	s = strings.ReplaceAll(s, "**", "")
	s = strings.ReplaceAll(s, "__", "")
	return strings.TrimSpace(s)
}

var trailingNumbering = regexp.MustCompile(`\s*\d+\.\s*$`)

// cleanKeywords normalizes the keyword line and validates it is a
// comma-delimited list of minimum total length. The value is kept even when
// invalid; the flag is what tells the operator, fabricating keywords would
// hide the gap.
func cleanKeywords(s string) (string, bool) {
	s = strings.ReplaceAll(s, "#", "")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	s = trailingNumbering.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)

	ok := strings.Contains(s, ",") && len(s) >= minKeywordLength
	return s, ok
}
