package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tranvictor/hsocial/hedera"
	"github.com/tranvictor/hsocial/txerror"
	"github.com/tranvictor/hsocial/ui"
	"github.com/tranvictor/hsocial/util"
	"github.com/tranvictor/hsocial/util/monitor"
	"github.com/tranvictor/hsocial/util/reader"
)

var WaitForReceipt bool

type receiptView struct {
	TransactionID string          `json:"transaction_id"`
	Receipt       *hedera.Receipt `json:"receipt,omitempty"`
	Explorer      string          `json:"explorer"`
	Error         string          `json:"error,omitempty"`
}

func receiptCacheKey(id string) string {
	return "receipt:" + hedera.ToMirrorFormat(id)
}

func lookupReceipt(cmd *cobra.Command, a *app, id string) (*hedera.Receipt, error) {
	var cached hedera.Receipt
	if found, err := a.cache.Get(receiptCacheKey(id), &cached); err == nil && found {
		a.logger.Debug("receipt served from cache", zap.String("tx", id))
		return &cached, nil
	}

	stop := a.ui.Spinner(fmt.Sprintf("Looking up %s...", id))
	var r *hedera.Receipt
	var err error
	if WaitForReceipt {
		r, err = waitReceipt(cmd, a, id)
	} else {
		r, err = a.mirror.Receipt(cmd.Context(), id)
	}
	stop()
	if err != nil {
		return nil, err
	}
	// a recorded receipt never changes
	if err := a.cache.Set(receiptCacheKey(id), r); err != nil {
		a.logger.Warn("couldn't cache receipt", zap.String("tx", id), zap.Error(err))
	}
	return r, nil
}

// waitReceipt polls until the receipt shows up or the transaction timeout
// passes. A failed receipt is still a receipt.
func waitReceipt(cmd *cobra.Command, a *app, id string) (*hedera.Receipt, error) {
	res := a.exec.Recheck(cmd.Context(), a.receipts, id)
	if res.Receipt != nil {
		return res.Receipt, nil
	}
	return nil, res.Err()
}

var receiptCmd = &cobra.Command{
	Use:     "receipt [text containing transaction ids]",
	Aliases: []string{"info"},
	Short:   "Show the receipts of one or more transactions",
	Long: `Finds every transaction id in the arguments, in either the wallet form
(0.0.123@1700000000.000000001) or the mirror node form
(0.0.123-1700000000-000000001, as found in explorer links), and shows what
the ledger recorded for each of them.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := current
		ids := util.ScanForTransactionIDs(strings.Join(args, " "))
		if len(ids) == 0 {
			return fmt.Errorf("couldn't find any transaction id in the params")
		}

		explorer := a.network.GetExplorer()
		views := make([]receiptView, 0, len(ids))
		for _, id := range ids {
			view := receiptView{TransactionID: id, Explorer: explorer.TransactionURL(id)}
			r, err := lookupReceipt(cmd, a, id)
			switch {
			case errors.Is(err, reader.ErrNotFound):
				view.Error = "not found on the mirror node yet"
			case errors.Is(err, monitor.ErrReceiptTimeout):
				view.Error = "the mirror node never returned this transaction"
			case err != nil:
				ce := txerror.Classify(err)
				view.Error = ce.Message
				a.logger.Debug("receipt lookup failed", zap.String("tx", id), zap.Error(err))
			default:
				view.Receipt = r
			}
			views = append(views, view)
		}

		if done, err := printJSON(a.ui, views); done {
			return err
		}
		for _, v := range views {
			showReceipt(a.ui, v)
		}
		return nil
	},
}

func showReceipt(u ui.UI, v receiptView) {
	u.Section(v.TransactionID)
	if v.Receipt == nil {
		u.Warn("%s", v.Error)
		u.Info("Check %s", v.Explorer)
		return
	}
	severity := ui.SeverityError
	if v.Receipt.IsSuccess() {
		severity = ui.SeveritySuccess
	}
	rows := [][2]string{
		{"Status", u.Style(ui.StyledText{Text: v.Receipt.Status, Severity: severity})},
	}
	if v.Receipt.EntityID != "" {
		rows = append(rows, [2]string{"Created", v.Receipt.EntityID})
	}
	if v.Receipt.ConsensusTimestamp != "" {
		rows = append(rows, [2]string{"Consensus", v.Receipt.ConsensusTimestamp})
	}
	rows = append(rows, [2]string{"Explorer", v.Explorer})
	u.KeyValue(rows)
}

func init() {
	receiptCmd.Flags().BoolVarP(&WaitForReceipt, "wait", "w", false, "Keep polling until the mirror node indexes the transaction.")
	rootCmd.AddCommand(receiptCmd)
}
