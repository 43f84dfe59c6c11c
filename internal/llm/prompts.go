package llm

import (
	"fmt"
	"strings"
	"time"
)

// buildPrompt renders the prompt for a step from its context.
func buildPrompt(step StepKind, gc GenContext, now time.Time) string {
	switch step {
	case StepTitles:
		return titlesPrompt(gc, now)
	case StepDescription:
		return descriptionPrompt(gc, now)
	case StepTeaser:
		return teaserPrompt(gc)
	case StepArticle:
		return articlePrompt(gc)
	default:
		return ""
	}
}

// dateContext keeps the model from defaulting to stale years when the
// transcript discusses current events.
func dateContext(now time.Time) string {
	return fmt.Sprintf(`CURRENT DATE CONTEXT:
Today's date is %s. The current year is %d. Do not reference other years unless they appear in the transcript; for current or future references use %d or "this year".`,
		now.Format("2006-01-02"), now.Year(), now.Year())
}

func titlesPrompt(gc GenContext, now time.Time) string {
	var b strings.Builder
	if gc.Feedback != "" {
		fmt.Fprintf(&b, "Based on this transcript, generate 5 NEW title options incorporating this feedback:\n\n%s\n\nFEEDBACK: %s\n\n", dateContext(now), gc.Feedback)
	} else {
		fmt.Fprintf(&b, "Analyze this transcript and create 5 title options:\n\n%s\n\n", dateContext(now))
	}

	fmt.Fprintf(&b, "TRANSCRIPT:\n%s\n\n", gc.Transcript)
	b.WriteString(`Create 5 title options that are:
- Keyword-rich for search
- Optimized for curiosity (curiosity gap, emotional trigger, or bold claim)
- Under 60 characters
- Focused only on the main discussion segment, not the teaser at the end
`)
	if gc.Feedback != "" {
		b.WriteString("- Address the feedback provided above\n")
	}
	b.WriteString(`
Format each on a new line as:
TITLE 1: [title]
TITLE 2: [title]
TITLE 3: [title]
TITLE 4: [title]
TITLE 5: [title]`)
	return b.String()
}

func descriptionPrompt(gc GenContext, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analyze this episode transcript and generate YouTube description components.\n\n%s\n\n", dateContext(now))
	fmt.Fprintf(&b, "The confirmed episode title is: %q\nEvery component must align with and support this title.\n\n", gc.Title)
	fmt.Fprintf(&b, "TRANSCRIPT:\n%s\n\n", gc.Transcript)
	b.WriteString(`Generate these components separately. Use plain text only, no markup like ** or __, because the description is consumed by a platform that does not render it.

A) HOOK (2-3 engaging sentences that create curiosity about the discussion)
Format: start with "HOOK:" then the text

B) KEY TOPICS (3-5 bullet points about what is covered)
Format: start with "KEY_TOPICS:" then one topic per line with a leading bullet

C) TIMESTAMPS (chapter markers from the transcript)
Format: start with "TIMESTAMPS:" then lines like
00:00 - Introduction
05:23 - [topic]
Include all timestamps present in the transcript. Make the final entry an enticing, specific teaser about the closing segment rather than a generic "transition" label.

D) PANELISTS (who participated, with title/company when mentioned)
Format: start with "PANELISTS:" then one per line with a leading bullet

E) KEYWORDS (5-10 relevant keywords, comma-separated, no hashtags)
Format: start with "KEYWORDS:" then all keywords comma-separated on ONE line with no extra text or numbering after

Format your response with exactly these section headers so the output can be parsed.`)
	return b.String()
}

func teaserPrompt(gc GenContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a newsletter teaser of at most 80 words for an episode titled %q.\n\n", gc.Title)
	if gc.Hook != "" {
		fmt.Fprintf(&b, "Reuse this confirmed hook verbatim as your framing, do not rewrite its claims:\n%s\n\n", gc.Hook)
	}
	fmt.Fprintf(&b, "TRANSCRIPT:\n%s\n\n", gc.Transcript)
	if gc.StyleExamples != "" {
		fmt.Fprintf(&b, "Match the tone and structure of these examples:\n%s\n\n", gc.StyleExamples)
	}
	b.WriteString(`Requirements:
- Markdown formatting is mandatory: at least one **bold** phrase, one *italic* quote or emphasis, and a [watch link]({{YOUTUBE_URL}}) call to action
- Conversational, punchy, ends with the call to action
- Output only the teaser text, no headers`)
	return b.String()
}

func articlePrompt(gc GenContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a ~150 word article recapping an episode titled %q.\n\n", gc.Title)
	if gc.Hook != "" {
		fmt.Fprintf(&b, "Confirmed hook (reuse its framing verbatim):\n%s\n\n", gc.Hook)
	}
	if gc.Teaser != "" {
		fmt.Fprintf(&b, "Published teaser (the article must not contradict it):\n%s\n\n", gc.Teaser)
	}
	fmt.Fprintf(&b, "TRANSCRIPT:\n%s\n\n", gc.Transcript)
	if gc.StyleExamples != "" {
		fmt.Fprintf(&b, "Match the tone and structure of these examples:\n%s\n\n", gc.StyleExamples)
	}
	b.WriteString(`Requirements:
- Recap the discussion with specific examples and one compelling panelist quote when possible (use actual names)
- Present contrasting perspectives when they occurred
- End with a clear takeaway and a [watch the full discussion]({{YOUTUBE_URL}}) link
- Markdown formatting is mandatory: **bold** panelist names and key terms, *italics* for quotes
- Output only the article body, no headers`)
	return b.String()
}
