package ui

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

// Entry is one recorded UI call.
type Entry struct {
	Method string
	Value  string
}

type recording struct {
	entries []Entry
	answers []string
	next    int
	buf     bytes.Buffer
}

// RecordingUI captures output for tests and answers Confirm from a script.
// Children made with Indent share the log and the script.
type RecordingUI struct {
	rec   *recording
	level int
}

func NewRecordingUI(answers ...string) *RecordingUI {
	return &RecordingUI{rec: &recording{answers: answers}}
}

func (r *RecordingUI) add(method, value string) {
	r.rec.entries = append(r.rec.entries, Entry{Method: method, Value: value})
}

func (r *RecordingUI) Style(t StyledText) string {
	return t.Text
}

func (r *RecordingUI) Info(format string, args ...any) {
	r.add("Info", fmt.Sprintf(format, args...))
}

func (r *RecordingUI) Success(format string, args ...any) {
	r.add("Success", fmt.Sprintf(format, args...))
}

func (r *RecordingUI) Warn(format string, args ...any) {
	r.add("Warn", fmt.Sprintf(format, args...))
}

func (r *RecordingUI) Error(format string, args ...any) {
	r.add("Error", fmt.Sprintf(format, args...))
}

func (r *RecordingUI) Critical(format string, args ...any) {
	r.add("Critical", fmt.Sprintf(format, args...))
}

func (r *RecordingUI) Section(title string) {
	r.add("Section", title)
}

func (r *RecordingUI) KeyValue(rows [][2]string) {
	for _, row := range rows {
		r.add("KeyValue", row[0]+": "+row[1])
	}
}

func (r *RecordingUI) Table(headers []string, rows [][]string) {
	if len(headers) > 0 {
		r.add("TableHeader", strings.Join(headers, " | "))
	}
	for _, row := range rows {
		r.add("TableRow", strings.Join(row, " | "))
	}
}

func (r *RecordingUI) Spinner(msg string) func() {
	r.add("Spinner", msg)
	return func() {}
}

// Confirm consumes the next scripted answer and panics when the script is
// exhausted, which means the test forgot an answer.
func (r *RecordingUI) Confirm(prompt string, defaultYes bool) bool {
	r.add("Confirm", prompt)
	if r.rec.next >= len(r.rec.answers) {
		panic(fmt.Sprintf("RecordingUI: no scripted answer for %q", prompt))
	}
	answer := strings.ToLower(strings.TrimSpace(r.rec.answers[r.rec.next]))
	r.rec.next++
	if answer == "" {
		return defaultYes
	}
	return answer == "y" || answer == "yes"
}

func (r *RecordingUI) Indent() UI {
	return &RecordingUI{rec: r.rec, level: r.level + 1}
}

func (r *RecordingUI) Writer() io.Writer {
	return &r.rec.buf
}

func (r *RecordingUI) Entries() []Entry {
	return r.rec.entries
}

// Messages returns the values recorded by method, in order.
func (r *RecordingUI) Messages(method string) []string {
	var out []string
	for _, e := range r.rec.entries {
		if e.Method == method {
			out = append(out, e.Value)
		}
	}
	return out
}

// HasMessage reports whether any entry contains substr, ignoring case.
func (r *RecordingUI) HasMessage(substr string) bool {
	substr = strings.ToLower(substr)
	for _, e := range r.rec.entries {
		if strings.Contains(strings.ToLower(e.Value), substr) {
			return true
		}
	}
	return false
}

func (r *RecordingUI) Output() string {
	return r.rec.buf.String()
}
