// Package llm wraps the content-generation endpoint behind a per-step
// prompt-and-budget contract.
package llm

// StepKind selects a prompt template and token budget.
type StepKind string

const (
	// StepTitles produces the five title candidates.
	StepTitles StepKind = "titles"
	// StepDescription produces the YouTube description components.
	StepDescription StepKind = "description"
	// StepTeaser produces the short newsletter teaser.
	StepTeaser StepKind = "teaser"
	// StepArticle produces the short-form article.
	StepArticle StepKind = "article"
)

// Token budgets per step. A single broad call was unreliable (sections went
// missing intermittently), so each step gets its own narrow call: generous
// for the description, short for the teaser, medium for the article.
var maxTokens = map[StepKind]int{
	StepTitles:      2000,
	StepDescription: 8000,
	StepTeaser:      1000,
	StepArticle:     4000,
}

// MaxTokens returns the budget for a step.
func MaxTokens(step StepKind) int {
	if n, ok := maxTokens[step]; ok {
		return n
	}
	return 2000
}

// GenContext carries everything a generation step may need. Later steps must
// reuse earlier steps' output verbatim (Hook, Teaser), never regenerate it.
type GenContext struct {
	Transcript string
	// Title is the confirmed title; empty for the titles step.
	Title string
	// Feedback is the most recent operator feedback for title regeneration.
	// It is not cumulative across rounds.
	Feedback string
	// Hook is the confirmed hook from the description step.
	Hook string
	// Teaser is the confirmed teaser text from the teaser step.
	Teaser string
	// StyleExamples is newsletter prose to imitate, if configured.
	StyleExamples string
}
