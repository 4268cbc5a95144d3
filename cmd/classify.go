package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tranvictor/hsocial/txerror"
	"github.com/tranvictor/hsocial/ui"
)

type classifyView struct {
	Type      txerror.ErrorType `json:"type"`
	Message   string            `json:"message"`
	ShouldLog bool              `json:"should_log"`
	Toast     txerror.ToastType `json:"toast"`
	Retryable bool              `json:"retryable_before_submit"`
}

// parseFailure passes valid JSON on as a raw wallet payload and anything
// else as a plain message.
func parseFailure(text string) any {
	text = strings.TrimSpace(text)
	if json.Valid([]byte(text)) && (strings.HasPrefix(text, "{") || strings.HasPrefix(text, `"`)) {
		return json.RawMessage(text)
	}
	return text
}

var classifyCmd = &cobra.Command{
	Use:   "classify [error text or json]",
	Short: "Explain how a wallet or ledger error is reported to users",
	Long: `Runs an error message, or a JSON error object as wallets return them, through
the same classification every hsocial write uses, and shows the resulting
type, message and whether it would be retried. Reads stdin when no argument
is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := current
		text := strings.Join(args, " ")
		if len(args) == 0 || text == "-" {
			content, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("couldn't read stdin: %w", err)
			}
			text = string(content)
		}
		if strings.TrimSpace(text) == "" {
			return fmt.Errorf("nothing to classify")
		}

		ce := txerror.Classify(parseFailure(text))
		view := classifyView{
			Type:      ce.Type,
			Message:   ce.Message,
			ShouldLog: ce.ShouldLog,
			Toast:     txerror.ToastTypeForError(ce.Type),
			Retryable: txerror.Retryable(ce.Type, ""),
		}
		if done, err := printJSON(a.ui, view); done {
			return err
		}
		a.ui.KeyValue([][2]string{
			{"Type", string(view.Type)},
			{"Logged", yesNo(view.ShouldLog)},
			{"Shown as", string(view.Toast)},
			{"Auto retry", yesNo(view.Retryable)},
		})
		ui.Toast(a.ui, ce)
		return nil
	},
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}
