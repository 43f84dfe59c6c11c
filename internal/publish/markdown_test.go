package publish

import (
	"strings"
	"testing"
)

func TestMarkdownToHTML(t *testing.T) {
	tests := []struct {
		name string
		md   string
		want string
	}{
		{
			name: "paragraphs",
			md:   "First paragraph.\n\nSecond paragraph.",
			want: "<p>First paragraph.</p>\n<p>Second paragraph.</p>",
		},
		{
			name: "bold and italic",
			md:   "**Jordan Lee** said it was *inevitable*.",
			want: "<p><strong>Jordan Lee</strong> said it was <em>inevitable</em>.</p>",
		},
		{
			name: "link",
			md:   "[watch the full discussion](https://youtu.be/abc)",
			want: `<p><a href="https://youtu.be/abc">watch the full discussion</a></p>`,
		},
		{
			name: "heading",
			md:   "## The Takeaway\n\nShip smaller.",
			want: "<h2>The Takeaway</h2>\n<p>Ship smaller.</p>",
		},
		{
			name: "line break inside paragraph",
			md:   "line one\nline two",
			want: "<p>line one<br>line two</p>",
		},
		{
			name: "blank input",
			md:   "   \n\n  ",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := markdownToHTML(tt.md); got != tt.want {
				t.Errorf("markdownToHTML() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSubstituteVideoURL(t *testing.T) {
	md := "Intro. [watch]({{YOUTUBE_URL}}) and again [here]({{YOUTUBE_URL}})."
	got := substituteVideoURL(md, "https://youtu.be/abc")

	if strings.Contains(got, "{{YOUTUBE_URL}}") {
		t.Errorf("placeholder survived: %q", got)
	}
	if strings.Count(got, "https://youtu.be/abc") != 2 {
		t.Errorf("substitution count wrong: %q", got)
	}

	// Text without the placeholder passes through untouched.
	if got := substituteVideoURL("no placeholder", "https://youtu.be/abc"); got != "no placeholder" {
		t.Errorf("got %q", got)
	}
}
