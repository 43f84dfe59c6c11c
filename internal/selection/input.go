// Package selection drives the iterate-or-accept loop for episode titles.
package selection

import (
	"strconv"
	"strings"
)

// InputKind classifies an operator input at the PRESENTED state.
type InputKind int

const (
	// KindInvalid means the input matched no accepted form.
	KindInvalid InputKind = iota
	// KindSelect picks a candidate by 1-based index.
	KindSelect
	// KindFeedback requests regeneration with free-text feedback.
	KindFeedback
	// KindCustom confirms an explicit title, bypassing the candidates.
	KindCustom
	// KindCancel aborts the job without marking it processed.
	KindCancel
)

// Input is one classified operator response.
type Input struct {
	Kind InputKind
	// Index is the 1-based candidate index for KindSelect.
	Index int
	// Text is the feedback or custom title.
	Text string
}

// ParseInput classifies a raw reply against a candidate set of size n.
// Accepted forms: a bare number 1..n, "f <feedback>", "TITLE: <custom>",
// and "q" or "cancel".
func ParseInput(raw string, n int) Input {
	raw = strings.TrimSpace(raw)
	lower := strings.ToLower(raw)

	switch {
	case lower == "q" || lower == "quit" || lower == "cancel":
		return Input{Kind: KindCancel}

	case strings.HasPrefix(lower, "title:"):
		title := strings.TrimSpace(raw[len("title:"):])
		if title == "" {
			return Input{Kind: KindInvalid}
		}
		return Input{Kind: KindCustom, Text: TitleCase(title)}

	case lower == "f" || strings.HasPrefix(lower, "f "):
		feedback := strings.TrimSpace(raw[1:])
		if feedback == "" {
			return Input{Kind: KindInvalid}
		}
		return Input{Kind: KindFeedback, Text: feedback}
	}

	if idx, err := strconv.Atoi(raw); err == nil && idx >= 1 && idx <= n {
		return Input{Kind: KindSelect, Index: idx}
	}
	return Input{Kind: KindInvalid}
}

// smallWords stay lowercase mid-title.
var smallWords = map[string]bool{
	"a": true, "an": true, "and": true, "as": true, "at": true,
	"but": true, "by": true, "for": true, "in": true, "of": true,
	"on": true, "or": true, "the": true, "to": true, "with": true,
	"vs": true, "via": true,
}

// TitleCase converts a custom title to title case, keeping common small
// words lowercase except at the edges.
func TitleCase(s string) string {
	words := strings.Fields(s)
	for i, word := range words {
		lower := strings.ToLower(word)
		if i != 0 && i != len(words)-1 && smallWords[lower] {
			words[i] = lower
			continue
		}
		words[i] = capitalize(lower)
	}
	return strings.Join(words, " ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
