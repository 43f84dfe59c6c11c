package selection

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme holds the colors for the interactive menu.
type Theme struct {
	Header  lipgloss.Color
	Number  lipgloss.Color
	Hint    lipgloss.Color
	Confirm lipgloss.Color
}

var defaultTheme = Theme{
	Header:  lipgloss.Color("#5FAFD7"), // light blue
	Number:  lipgloss.Color("#00D787"), // green
	Hint:    lipgloss.Color("#6C6C6C"), // dim gray
	Confirm: lipgloss.Color("#D7AF00"), // amber
}

func (t Theme) headerStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Header).Bold(true)
}

func (t Theme) numberStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Number)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

func (t Theme) confirmStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Confirm)
}

// CLIPrompter reads the operator's choice from a terminal. It blocks
// without timeout; the prompt is under direct operator control.
type CLIPrompter struct {
	in    *bufio.Scanner
	out   io.Writer
	theme Theme
}

// NewCLIPrompter creates a prompter reading from in and writing to out.
func NewCLIPrompter(in io.Reader, out io.Writer) *CLIPrompter {
	return &CLIPrompter{
		in:    bufio.NewScanner(in),
		out:   out,
		theme: defaultTheme,
	}
}

// Present renders the menu and blocks until the operator produces a valid,
// confirmed input. Selections and custom titles are confirmed with y/n;
// answering n re-presents the same candidate set.
func (p *CLIPrompter) Present(ctx context.Context, titles []string) (Input, error) {
	for {
		p.render(titles)

		line, err := p.readLine()
		if err != nil {
			return Input{}, err
		}

		input := ParseInput(line, len(titles))
		switch input.Kind {
		case KindInvalid:
			fmt.Fprintln(p.out, p.theme.hintStyle().Render("Unrecognized input, try again."))
			continue

		case KindSelect:
			ok, err := p.confirm(titles[input.Index-1])
			if err != nil {
				return Input{}, err
			}
			if !ok {
				continue
			}
			return input, nil

		case KindCustom:
			ok, err := p.confirm(input.Text)
			if err != nil {
				return Input{}, err
			}
			if !ok {
				continue
			}
			return input, nil

		default:
			return input, nil
		}
	}
}

func (p *CLIPrompter) render(titles []string) {
	fmt.Fprintln(p.out)
	fmt.Fprintln(p.out, p.theme.headerStyle().Render("Title options"))
	for i, title := range titles {
		num := p.theme.numberStyle().Render(fmt.Sprintf("%2d.", i+1))
		fmt.Fprintf(p.out, "  %s %s\n", num, title)
	}
	fmt.Fprintln(p.out, p.theme.hintStyle().Render(
		fmt.Sprintf("Enter 1-%d to select, 'f <feedback>' for new titles, 'TITLE: ...' for a custom title, 'q' to cancel.", len(titles))))
	fmt.Fprint(p.out, "> ")
}

func (p *CLIPrompter) confirm(title string) (bool, error) {
	fmt.Fprintf(p.out, "%s %q (y/n): ", p.theme.confirmStyle().Render("Use title"), title)
	line, err := p.readLine()
	if err != nil {
		return false, err
	}
	return strings.EqualFold(strings.TrimSpace(line), "y"), nil
}

func (p *CLIPrompter) readLine() (string, error) {
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", fmt.Errorf("read input: %w", err)
		}
		return "", io.EOF
	}
	return p.in.Text(), nil
}
