package ui

import (
	"encoding/json"
	"io"
)

// Severity classifies the visual weight of a piece of inline text, matching
// the five output methods on UI. TerminalUI maps each value to a terminal
// style; data consumers (--json output, RecordingUI) only ever see the
// plain text.
type Severity uint8

const (
	SeverityInfo     Severity = iota // plain, no colour emphasis
	SeveritySuccess                  // green: confirmed, SUCCESS receipts
	SeverityWarn                     // yellow: not indexed yet, needs attention
	SeverityError                    // red: failed receipts, rejected transactions
	SeverityCritical                 // bold: ids the user must check before retrying
)

// StyledText pairs a plain string with a Severity annotation.
//
// JSON serialization: the struct marshals as just the plain Text string so
// --json consumers receive clean output with no ANSI codes and no extra
// structure.
//
// Terminal rendering: pass the value to [UI.Style] to get the coloured
// string for embedding in a format call:
//
//	u.KeyValue([][2]string{{"Status", u.Style(status)}})
type StyledText struct {
	Text     string
	Severity Severity
}

// MarshalJSON serializes StyledText as a plain JSON string (just Text).
func (s StyledText) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Text)
}

// UI provides all terminal interaction for hsocial commands.
//
// It abstracts output, prompts and indentation so that:
//   - the CLI uses TerminalUI (writes to stdout, reads answers from stdin)
//   - command tests use RecordingUI (captures every call, serves scripted
//     answers to Confirm)
//
// Indentation / nesting
//
// Use [UI.Indent] to get a child UI one level deeper. The child shares the
// parent's writer and reader, so prompts and answers stay in order across
// scopes. Pass the child to helpers that print details under a heading:
//
//	u.Section(id)
//	showDetails(u.Indent(), receipt)
type UI interface {
	// --- Output ---

	// Style returns the text from t coloured according to its Severity.
	// Use it to embed a styled value inside a larger line or a KeyValue
	// cell:
	//
	//	u.Info("Status: %s", u.Style(ui.StyledText{Text: "SUCCESS", Severity: ui.SeveritySuccess}))
	//
	// When colours are disabled (piped output, --json, RecordingUI) the
	// plain text comes back unchanged.
	Style(t StyledText) string

	// Info writes a neutral status line (no prefix, no colour).
	Info(format string, args ...any)

	// Success writes a positive outcome in green.
	Success(format string, args ...any)

	// Warn writes a non-fatal warning in yellow, e.g. a transaction the
	// mirror node has not indexed yet.
	Warn(format string, args ...any)

	// Error writes a failure in red.
	// This does NOT exit or return an error; callers decide what to do next.
	Error(format string, args ...any)

	// Critical writes data the user must review before acting again, most
	// often the id of a transaction that was submitted but never confirmed.
	// The terminal renders it in bold.
	Critical(format string, args ...any)

	// Section writes a visual separator centred around a title.
	// Example: "===== 0.0.2@1700000000.000000001 ====="
	Section(title string)

	// KeyValue renders an aligned 2-column block, label on the left and
	// value on the right, with every value starting at the same column.
	// Use it for compact metadata such as Status/Created/Consensus/Explorer.
	KeyValue(rows [][2]string)

	// Table renders a bordered table with a header row followed by data
	// rows. Use it when there are 3+ columns or the data is inherently
	// tabular, e.g. list items or configured networks. A nil header skips
	// the header row.
	Table(headers []string, rows [][]string)

	// Spinner starts an animated spinner with the given message and returns
	// a stop function. Call the stop function (or defer it) to clear the
	// spinner once the work is done:
	//
	//	stop := u.Spinner("Looking up 0.0.2@1700000000.000000001...")
	//	defer stop()
	//
	// In RecordingUI, --json mode and non-terminal contexts the stop
	// function is a no-op.
	Spinner(msg string) func()

	// --- Input ---

	// Confirm asks a yes/no question and returns the answer. It prints the
	// prompt followed by [Y/n] or [y/N]; an empty answer picks the default.
	Confirm(prompt string, defaultYes bool) bool

	// --- Nesting ---

	// Indent returns a child UI with the indent level increased by one,
	// sharing the same underlying writer and reader as the parent.
	Indent() UI

	// Writer returns an io.Writer that prepends the current indentation to
	// every line. Use it for output produced by encoders, such as the yaml
	// of `config show` or --json documents.
	Writer() io.Writer
}
