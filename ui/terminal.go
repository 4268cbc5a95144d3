package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/logrusorgru/aurora"
	runewidth "github.com/mattn/go-runewidth"
	indent "github.com/openconfig/goyang/pkg/indent"
	"golang.org/x/term"
)

const (
	indentUnit   = "  "
	sectionWidth = 60
	promptPrefix = "> "
)

// TerminalUI writes to stdout and reads answers from stdin. Colours are on
// only when stdout is a terminal and colour was not disabled.
type TerminalUI struct {
	level int
	out   io.Writer
	in    *bufio.Reader
	au    aurora.Aurora
	tty   bool
}

func NewTerminalUI(noColor bool) *TerminalUI {
	tty := term.IsTerminal(int(os.Stdout.Fd()))
	return &TerminalUI{
		out: os.Stdout,
		in:  bufio.NewReader(os.Stdin),
		au:  aurora.NewAurora(tty && !noColor),
		tty: tty,
	}
}

func (u *TerminalUI) line(s string) {
	fmt.Fprintf(u.out, "%s%s\n", strings.Repeat(indentUnit, u.level), s)
}

func (u *TerminalUI) Style(t StyledText) string {
	switch t.Severity {
	case SeveritySuccess:
		return u.au.Green(t.Text).String()
	case SeverityWarn:
		return u.au.Yellow(t.Text).String()
	case SeverityError:
		return u.au.Red(t.Text).String()
	case SeverityCritical:
		return u.au.Bold(t.Text).String()
	}
	return t.Text
}

func (u *TerminalUI) styled(sev Severity, format string, args []any) {
	u.line(u.Style(StyledText{Text: fmt.Sprintf(format, args...), Severity: sev}))
}

func (u *TerminalUI) Info(format string, args ...any) {
	u.styled(SeverityInfo, format, args)
}

func (u *TerminalUI) Success(format string, args ...any) {
	u.styled(SeveritySuccess, format, args)
}

func (u *TerminalUI) Warn(format string, args ...any) {
	u.styled(SeverityWarn, format, args)
}

func (u *TerminalUI) Error(format string, args ...any) {
	u.styled(SeverityError, format, args)
}

func (u *TerminalUI) Critical(format string, args ...any) {
	u.styled(SeverityCritical, format, args)
}

func (u *TerminalUI) Section(title string) {
	title = " " + title + " "
	bars := sectionWidth - runewidth.StringWidth(title)
	if bars < 6 {
		bars = 6
	}
	fmt.Fprintln(u.out)
	u.line(strings.Repeat("─", bars/2) + title + strings.Repeat("─", bars-bars/2))
}

func (u *TerminalUI) KeyValue(rows [][2]string) {
	width := 0
	for _, r := range rows {
		if w := runewidth.StringWidth(r[0]); w > width {
			width = w
		}
	}
	for _, r := range rows {
		u.line(runewidth.FillRight(r[0], width) + "  " + r[1])
	}
}

// visibleWidth is the display width of s with colour codes removed.
func visibleWidth(s string) int {
	return runewidth.StringWidth(ansi.Strip(s))
}

func (u *TerminalUI) Table(headers []string, rows [][]string) {
	cols := len(headers)
	for _, r := range rows {
		if len(r) > cols {
			cols = len(r)
		}
	}
	if cols == 0 {
		return
	}
	widths := make([]int, cols)
	measure := func(r []string) {
		for i, c := range r {
			if w := visibleWidth(c); w > widths[i] {
				widths[i] = w
			}
		}
	}
	measure(headers)
	for _, r := range rows {
		measure(r)
	}

	frame := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	rule := func(left, mid, right string) string {
		parts := make([]string, cols)
		for i, w := range widths {
			parts[i] = strings.Repeat("─", w+2)
		}
		return frame.Render(left + strings.Join(parts, mid) + right)
	}
	row := func(cells []string) string {
		var b strings.Builder
		b.WriteString(frame.Render("│"))
		for i := 0; i < cols; i++ {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			b.WriteString(" " + cell + strings.Repeat(" ", widths[i]-visibleWidth(cell)) + " ")
			b.WriteString(frame.Render("│"))
		}
		return b.String()
	}

	u.line(rule("┌", "┬", "┐"))
	if len(headers) > 0 {
		u.line(row(headers))
		u.line(rule("├", "┼", "┤"))
	}
	for _, r := range rows {
		u.line(row(r))
	}
	u.line(rule("└", "┴", "┘"))
}

// Spinner animates only on a terminal; elsewhere msg is printed once.
func (u *TerminalUI) Spinner(msg string) func() {
	if !u.tty {
		u.line(msg)
		return func() {}
	}
	s := spinner.New(spinner.CharSets[14], 80*time.Millisecond, spinner.WithWriter(u.out))
	s.Suffix = " " + msg
	s.Start()
	return func() {
		s.Stop()
		// the spinner leaves the cursor on its cleared line
		fmt.Fprintln(u.out)
	}
}

func (u *TerminalUI) Confirm(prompt string, defaultYes bool) bool {
	choices := "[y/N]"
	if defaultYes {
		choices = "[Y/n]"
	}
	u.Info("%s %s", prompt, choices)
	for {
		fmt.Fprintf(u.out, "%s%s", strings.Repeat(indentUnit, u.level), promptPrefix)
		text, err := u.in.ReadString('\n')
		answer := strings.ToLower(strings.TrimSpace(text))
		switch {
		case answer == "y" || answer == "yes":
			return true
		case answer == "n" || answer == "no":
			return false
		case answer == "" || err != nil:
			return defaultYes
		}
		u.Error("please answer y or n")
	}
}

func (u *TerminalUI) Indent() UI {
	child := *u
	child.level++
	return &child
}

func (u *TerminalUI) Writer() io.Writer {
	if u.level == 0 {
		return u.out
	}
	return indent.NewWriter(u.out, strings.Repeat(indentUnit, u.level))
}
