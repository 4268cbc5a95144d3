package ui

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/logrusorgru/aurora"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tranvictor/hsocial/executor"
	"github.com/tranvictor/hsocial/hedera"
	"github.com/tranvictor/hsocial/steps"
	"github.com/tranvictor/hsocial/txerror"
)

func plainTerminal(out *bytes.Buffer, input string) *TerminalUI {
	return &TerminalUI{
		out: out,
		in:  bufio.NewReader(strings.NewReader(input)),
		au:  aurora.NewAurora(false),
	}
}

func TestToastSeverity(t *testing.T) {
	u := NewRecordingUI()
	Toast(u, txerror.Classify("USER_REJECT"))
	Toast(u, txerror.New(txerror.NetworkError, "offline", nil))
	Toast(u, txerror.New(txerror.TransactionFailed, "Transaction failed: INVALID_SIGNATURE", nil))
	Toast(u, nil)

	assert.Equal(t, []Entry{
		{Method: "Info", Value: "Transaction was rejected in your wallet."},
		{Method: "Warn", Value: "offline"},
		{Method: "Error", Value: "Transaction failed: INVALID_SIGNATURE"},
	}, u.Entries())
}

func TestShowResult(t *testing.T) {
	u := NewRecordingUI()
	ShowResult(u, executor.Result{
		Success:       true,
		TransactionID: "0.0.2@1.000000001",
		Receipt:       &hedera.Receipt{Status: hedera.StatusSuccess},
	})
	assert.Equal(t, []string{"Transaction 0.0.2@1.000000001 confirmed (SUCCESS)"}, u.Messages("Success"))

	u = NewRecordingUI()
	ShowResult(u, executor.Result{
		TransactionID: "0.0.2@1.000000001",
		Error:         txerror.New(txerror.Timeout, "timed out", nil),
	})
	assert.Equal(t, []string{"Transaction id: 0.0.2@1.000000001"}, u.Messages("Critical"))
	assert.False(t, u.HasMessage("safe to try again"))

	u = NewRecordingUI()
	ShowResult(u, executor.Result{Error: txerror.New(txerror.WalletDisconnected, "reconnect", nil)})
	assert.True(t, u.HasMessage("safe to try again"))
	assert.Empty(t, u.Messages("Critical"))
}

func TestStepBoard(t *testing.T) {
	u := NewRecordingUI()
	StepBoard(u, []string{"createListTopic", "sendToList", "updateProfile"}, map[string]steps.StepStatus{
		"createListTopic": {Status: steps.Success, Disabled: true, Result: &executor.Result{Success: true, TransactionID: "0.0.2@1.1"}},
		"sendToList":      {Status: steps.Error, Err: txerror.New(txerror.UserRejected, "cancelled", nil)},
		"updateProfile":   {Status: steps.Idle, Disabled: true},
	})

	assert.Equal(t, []string{
		"1 | createListTopic | success | 0.0.2@1.1 | ",
		"2 | sendToList | error |  | cancelled",
		"3 | updateProfile | waiting |  | ",
	}, u.Messages("TableRow"))
}

func TestTerminalTableAlignsWideCells(t *testing.T) {
	var out bytes.Buffer
	u := plainTerminal(&out, "")
	u.Table([]string{"Key", "Name"}, [][]string{{"0.0.9", "日本"}, {"0.0.10", "x"}})

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 6)
	width := visibleWidth(lines[0])
	for _, l := range lines {
		assert.Equal(t, width, visibleWidth(l), l)
	}
	assert.Contains(t, lines[3], "日本")
}

func TestTerminalKeyValueAndIndent(t *testing.T) {
	var out bytes.Buffer
	u := plainTerminal(&out, "")
	u.Indent().KeyValue([][2]string{{"Topic", "0.0.9"}, {"Status", "SUCCESS"}})

	assert.Equal(t, "  Topic   0.0.9\n  Status  SUCCESS\n", out.String())
}

func TestTerminalConfirm(t *testing.T) {
	var out bytes.Buffer
	u := plainTerminal(&out, "maybe\ny\n\n")
	assert.True(t, u.Confirm("Replace network?", false))
	assert.Contains(t, out.String(), "please answer y or n")
	assert.False(t, u.Confirm("Replace network?", false), "empty answer takes the default")
	assert.True(t, u.Confirm("Replace network?", true), "end of input takes the default")
}

func TestRecordingConfirmScript(t *testing.T) {
	u := NewRecordingUI("n", "")
	assert.False(t, u.Confirm("a?", true))
	assert.True(t, u.Confirm("b?", true))
	assert.Panics(t, func() { u.Confirm("c?", true) })
}

func TestStyledTextJSON(t *testing.T) {
	b, err := StyledText{Text: "ok", Severity: SeveritySuccess}.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"ok"`, string(b))
}
