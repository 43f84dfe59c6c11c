package parse

import (
	"strings"
	"testing"
)

const sampleDescription = `HOOK: What happens when an entire team switches stacks overnight? The panel digs in.
This one got heated.

KEY_TOPICS:
- Migration pain
- Hiring effects

TIMESTAMPS:
00:00 - Introduction
12:45 - The big rewrite

PANELISTS:
- Jordan Lee, CTO at Acme
- Sam Park

KEYWORDS: software migration, team topologies, hiring, rewrites, engineering culture`

func TestDescription_AllFields(t *testing.T) {
	r := Description(sampleDescription)

	if !r.Clean() {
		t.Fatalf("Clean() = false, warnings = %v", r.Warnings())
	}

	if got := r.Get(FieldHook); !strings.HasPrefix(got, "What happens when") {
		t.Errorf("hook = %q", got)
	}
	if got := r.Get(FieldTimestamps); !strings.Contains(got, "12:45 - The big rewrite") {
		t.Errorf("timestamps = %q", got)
	}
	if got := r.Get(FieldKeywords); got != "software migration, team topologies, hiring, rewrites, engineering culture" {
		t.Errorf("keywords = %q", got)
	}
}

func TestDescription_HeaderDrift(t *testing.T) {
	// Headers drift between calls: spaces instead of underscores, markdown
	// decoration, synonym headers. The fallbacks must still anchor.
	raw := `## HOOK:
Something big happened.

**KEY TOPICS:**
- one topic

CHAPTERS:
00:00 - Start

GUESTS:
- Somebody

TAGS: alpha, beta, gamma, delta, epsilon`

	r := Description(raw)

	if got := r.Get(FieldHook); !strings.Contains(got, "Something big happened") {
		t.Errorf("hook = %q", got)
	}
	if got := r.Get(FieldKeyTopics); !strings.Contains(got, "one topic") {
		t.Errorf("key_topics = %q", got)
	}
	if got := r.Get(FieldTimestamps); !strings.Contains(got, "00:00 - Start") {
		t.Errorf("timestamps = %q", got)
	}
	if got := r.Get(FieldPanelists); !strings.Contains(got, "Somebody") {
		t.Errorf("panelists = %q", got)
	}
	if got := r.Get(FieldKeywords); got != "alpha, beta, gamma, delta, epsilon" {
		t.Errorf("keywords = %q", got)
	}
}

func TestDescription_MissingFieldFlagged(t *testing.T) {
	raw := `HOOK: Just a hook.

KEYWORDS: alpha, beta, gamma, delta, epsilon, zeta`

	r := Description(raw)

	if r.Clean() {
		t.Fatal("Clean() = true for output missing three sections")
	}
	if got := r.Get(FieldTimestamps); got != "" {
		t.Errorf("missing field fabricated: timestamps = %q", got)
	}

	warnings := strings.Join(r.Warnings(), ",")
	for _, want := range []string{"missing_field:key_topics", "missing_field:timestamps", "missing_field:panelists"} {
		if !strings.Contains(warnings, want) {
			t.Errorf("warnings %v missing %q", r.Warnings(), want)
		}
	}
}

func TestDescription_StripsMarkup(t *testing.T) {
	raw := `HOOK: The **panel** debated [this article](https://example.com) at length.

KEY_TOPICS:
- __Important__ topic

TIMESTAMPS:
00:00 - Intro

PANELISTS:
- A Person

KEYWORDS: one, two, three, four, five`

	r := Description(raw)

	if got := r.Get(FieldHook); got != "The panel debated this article at length." {
		t.Errorf("hook = %q, markup not stripped", got)
	}
	if got := r.Get(FieldKeyTopics); strings.Contains(got, "__") {
		t.Errorf("key_topics = %q, markup not stripped", got)
	}
}

func TestDescription_KeywordValidation(t *testing.T) {
	tests := []struct {
		name           string
		keywords       string
		wantIncomplete bool
		wantValue      string
	}{
		{
			name:      "valid list",
			keywords:  "KEYWORDS: kubernetes, platform engineering, devops, cloud",
			wantValue: "kubernetes, platform engineering, devops, cloud",
		},
		{
			name:           "no commas",
			keywords:       "KEYWORDS: kubernetes devops cloud platforms",
			wantIncomplete: true,
			wantValue:      "kubernetes devops cloud platforms",
		},
		{
			name:           "too short",
			keywords:       "KEYWORDS: a, b",
			wantIncomplete: true,
			wantValue:      "a, b",
		},
		{
			name:      "hashtags stripped",
			keywords:  "KEYWORDS: #kubernetes, #devops, #platform, #cloud",
			wantValue: "kubernetes, devops, platform, cloud",
		},
		{
			name:      "trailing numbering stripped",
			keywords:  "KEYWORDS: kubernetes, devops, platform, cloud 6.",
			wantValue: "kubernetes, devops, platform, cloud",
		},
		{
			name:      "only first line kept",
			keywords:  "KEYWORDS: kubernetes, devops, platform, cloud\nThose keywords cover the episode.",
			wantValue: "kubernetes, devops, platform, cloud",
		},
		{
			name:           "section absent entirely",
			keywords:       "",
			wantIncomplete: true,
			wantValue:      "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := "HOOK: h\n\nKEY_TOPICS:\n- t\n\nTIMESTAMPS:\n00:00 - i\n\nPANELISTS:\n- p\n\n" + tt.keywords
			r := Description(raw)

			if r.IncompleteKeywords != tt.wantIncomplete {
				t.Errorf("IncompleteKeywords = %v, want %v", r.IncompleteKeywords, tt.wantIncomplete)
			}
			if got := r.Get(FieldKeywords); got != tt.wantValue {
				t.Errorf("keywords = %q, want %q", got, tt.wantValue)
			}
		})
	}
}

func TestTeaser_PreservesMarkup(t *testing.T) {
	body := "**Big news** this week: the panel was *not* holding back.\n\n[Watch the episode]({{YOUTUBE_URL}})"

	tests := []struct {
		name string
		raw  string
	}{
		{"bare output", body},
		{"with primary header", "NEWSLETTER TEASER: " + body},
		{"with fallback header", "TEASER: " + body},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Teaser(tt.raw)
			if !r.Clean() {
				t.Fatalf("Clean() = false, warnings = %v", r.Warnings())
			}
			// The teaser carries markup into a renderer, so it must survive
			// byte for byte.
			if got := r.Get(FieldTeaser); got != body {
				t.Errorf("teaser = %q, want %q", got, body)
			}
		})
	}
}

func TestTeaser_EmptyFlagged(t *testing.T) {
	r := Teaser("   \n  ")
	if r.Clean() {
		t.Error("Clean() = true for empty output")
	}
	if len(r.Missing) != 1 || r.Missing[0] != FieldTeaser {
		t.Errorf("Missing = %v, want [teaser]", r.Missing)
	}
}

func TestArticle_PreservesMarkup(t *testing.T) {
	body := "**Jordan Lee** opened with a warning: *\"we almost lost the quarter\"*.\n\n[watch the full discussion]({{YOUTUBE_URL}})"
	r := Article("ARTICLE: " + body)

	if got := r.Get(FieldArticle); got != body {
		t.Errorf("article = %q, want %q", got, body)
	}
}

func TestTitles(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{
			name: "requested format",
			raw:  "TITLE 1: First Option\nTITLE 2: Second Option\nTITLE 3: Third Option",
			want: []string{"First Option", "Second Option", "Third Option"},
		},
		{
			name: "numbered list fallback",
			raw:  "Here are the options:\n1. First Option\n2) Second Option",
			want: []string{"First Option", "Second Option"},
		},
		{
			name: "markup stripped",
			raw:  "TITLE 1: **Bold Claim** About Go",
			want: []string{"Bold Claim About Go"},
		},
		{
			name: "capped at five",
			raw:  "TITLE 1: a\nTITLE 2: b\nTITLE 3: c\nTITLE 4: d\nTITLE 5: e\nTITLE 6: f",
			want: []string{"a", "b", "c", "d", "e"},
		},
		{
			name: "nothing usable",
			raw:  "I could not generate titles for this transcript.",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Titles(tt.raw)
			if len(got) != len(tt.want) {
				t.Fatalf("Titles() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("titles[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}
