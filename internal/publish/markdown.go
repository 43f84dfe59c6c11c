package publish

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	mdLink   = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
	mdBold   = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	mdItalic = regexp.MustCompile(`\*([^*]+)\*`)
)

// markdownToHTML converts the small markdown subset the article generator
// emits (headings, bold, italic, links) into HTML paragraphs. Anything
// outside that subset passes through unchanged inside its paragraph.
func markdownToHTML(md string) string {
	var out []string
	for _, block := range strings.Split(md, "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}

		if heading, level, ok := headingOf(block); ok {
			out = append(out, fmt.Sprintf("<h%d>%s</h%d>", level, inline(heading), level))
			continue
		}

		lines := strings.Split(block, "\n")
		for i, ln := range lines {
			lines[i] = inline(strings.TrimSpace(ln))
		}
		out = append(out, "<p>"+strings.Join(lines, "<br>")+"</p>")
	}
	return strings.Join(out, "\n")
}

func headingOf(block string) (text string, level int, ok bool) {
	if strings.Contains(block, "\n") {
		return "", 0, false
	}
	for level = 3; level >= 1; level-- {
		prefix := strings.Repeat("#", level) + " "
		if strings.HasPrefix(block, prefix) {
			return strings.TrimPrefix(block, prefix), level, true
		}
	}
	return "", 0, false
}

func inline(s string) string {
	s = mdLink.ReplaceAllString(s, `<a href="$2">$1</a>`)
	s = mdBold.ReplaceAllString(s, "<strong>$1</strong>")
	s = mdItalic.ReplaceAllString(s, "<em>$1</em>")
	return s
}

// substituteVideoURL replaces every {{YOUTUBE_URL}} placeholder with the
// resolved share link. Text without the placeholder is returned unchanged.
func substituteVideoURL(text, videoURL string) string {
	return strings.ReplaceAll(text, "{{YOUTUBE_URL}}", videoURL)
}
