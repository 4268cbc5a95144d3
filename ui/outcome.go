package ui

import (
	"fmt"

	"github.com/tranvictor/hsocial/executor"
	"github.com/tranvictor/hsocial/steps"
	"github.com/tranvictor/hsocial/txerror"
)

// Toast shows a classified failure with the weight its type calls for. A
// rejection in the wallet is a quiet notice, not an error.
func Toast(u UI, ce *txerror.ClassifiedError) {
	if ce == nil {
		return
	}
	switch txerror.ToastTypeForError(ce.Type) {
	case txerror.ToastInfo:
		u.Info("%s", ce.Message)
	case txerror.ToastWarn:
		u.Warn("%s", ce.Message)
	default:
		u.Error("%s", ce.Message)
	}
}

// ShowResult prints the outcome of one transaction.
func ShowResult(u UI, res executor.Result) {
	if res.Success && res.Receipt == nil {
		u.Success("Nothing to do.")
		return
	}
	if res.Success {
		u.Success("Transaction %s confirmed (%s)", res.TransactionID, res.Receipt.Status)
		return
	}
	Toast(u, res.Error)
	if res.Submitted() {
		u.Critical("Transaction id: %s", res.TransactionID)
	}
	if res.SafeToRetry() {
		u.Info("Nothing reached the ledger, it is safe to try again.")
	}
}

func statusSeverity(st steps.StepStatus) Severity {
	switch st.Status {
	case steps.Success:
		return SeveritySuccess
	case steps.Error:
		return SeverityError
	case steps.Loading:
		return SeverityWarn
	}
	return SeverityInfo
}

// StepBoard renders the progress of a multi-step flow.
func StepBoard(u UI, order []string, statuses map[string]steps.StepStatus) {
	rows := make([][]string, 0, len(order))
	for i, name := range order {
		st := statuses[name]
		state := string(st.Status)
		if st.Status == steps.Idle && st.Disabled {
			state = "waiting"
		}
		tx, note := "", ""
		if st.Result != nil {
			tx = st.Result.TransactionID
		}
		if st.Err != nil {
			note = st.Err.Message
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			name,
			u.Style(StyledText{Text: state, Severity: statusSeverity(st)}),
			tx,
			note,
		})
	}
	u.Table([]string{"#", "Step", "Status", "Transaction", "Note"}, rows)
}
