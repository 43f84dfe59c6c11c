// Package bundle defines the episode output bundle: the directory of derived
// files that is the durable record of a processed transcript.
package bundle

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// File names inside a bundle directory.
const (
	TitleFile       = "selected_title.txt"
	DescriptionFile = "youtube_description.txt"
	KeywordsFile    = "keywords.txt"
	TeaserFile      = "newsletter_teaser.md"
	ArticleFile     = "article.md"
	// RawDir archives the raw model response per step for debugging.
	RawDir = "raw"
)

// Artifacts is everything a finished job writes.
type Artifacts struct {
	Title       string
	Description string
	Keywords    string
	Teaser      string
	Article     string
	// Raw maps step name to the unparsed model response.
	Raw map[string]string
}

// Write persists the bundle atomically: files are assembled in a hidden
// temp directory next to the target, then renamed into place. A crash
// mid-write never leaves a half-populated bundle visible to later steps.
// The returned path is the final bundle directory.
func Write(outputsDir, base string, a Artifacts, now time.Time) (string, error) {
	if err := os.MkdirAll(outputsDir, 0755); err != nil {
		return "", fmt.Errorf("create outputs dir: %w", err)
	}

	name := fmt.Sprintf("%s_%s", base, now.Format("20060102_150405"))
	final := filepath.Join(outputsDir, name)

	tmp, err := os.MkdirTemp(outputsDir, "."+name+"-*")
	if err != nil {
		return "", fmt.Errorf("create temp bundle: %w", err)
	}
	defer os.RemoveAll(tmp)

	files := map[string]string{
		TitleFile:       a.Title + "\n",
		DescriptionFile: a.Description,
		KeywordsFile:    a.Keywords + "\n",
		TeaserFile:      a.Teaser,
		ArticleFile:     a.Article,
	}
	for filename, content := range files {
		if err := os.WriteFile(filepath.Join(tmp, filename), []byte(content), 0644); err != nil {
			return "", fmt.Errorf("write %s: %w", filename, err)
		}
	}

	if len(a.Raw) > 0 {
		rawDir := filepath.Join(tmp, RawDir)
		if err := os.Mkdir(rawDir, 0755); err != nil {
			return "", fmt.Errorf("create raw dir: %w", err)
		}
		for step, raw := range a.Raw {
			path := filepath.Join(rawDir, step+".txt")
			if err := os.WriteFile(path, []byte(raw), 0644); err != nil {
				return "", fmt.Errorf("write raw %s: %w", step, err)
			}
		}
	}

	if err := os.Rename(tmp, final); err != nil {
		return "", fmt.Errorf("finalize bundle: %w", err)
	}
	return final, nil
}

// ReadTitle returns the selected title stored in a bundle.
func ReadTitle(dir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, TitleFile))
	if err != nil {
		return "", fmt.Errorf("read bundle title: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// ReadArticle returns the article body stored in a bundle, markup intact.
func ReadArticle(dir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, ArticleFile))
	if err != nil {
		return "", fmt.Errorf("read bundle article: %w", err)
	}
	return string(data), nil
}

// Latest returns the most recently modified bundle directory under
// outputsDir, or an error when none exist.
func Latest(outputsDir string) (string, error) {
	entries, err := os.ReadDir(outputsDir)
	if err != nil {
		return "", fmt.Errorf("read outputs dir: %w", err)
	}

	type candidate struct {
		path string
		mod  time.Time
	}
	var candidates []candidate
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		candidates = append(candidates, candidate{
			path: filepath.Join(outputsDir, entry.Name()),
			mod:  info.ModTime(),
		})
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("no bundles in %s", outputsDir)
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].mod.After(candidates[j].mod)
	})
	return candidates[0].path, nil
}
