package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tranvictor/hsocial/hedera"
	"github.com/tranvictor/hsocial/profile"
	"github.com/tranvictor/hsocial/ui"
	"github.com/tranvictor/hsocial/util"
	"github.com/tranvictor/hsocial/util/reader"
)

type whoisView struct {
	EntityID    string `json:"entity_id"`
	Kind        string `json:"kind"`
	EVMAddress  string `json:"evm_address"`
	Memo        string `json:"memo,omitempty"`
	Deleted     bool   `json:"deleted,omitempty"`
	ProfileID   string `json:"profile_topic,omitempty"`
	ProfileName string `json:"profile_name,omitempty"`
	Explorer    string `json:"explorer"`
	Error       string `json:"error,omitempty"`
}

// whoisTargets collects entity ids from text, resolving long-zero EVM
// addresses back to their entity.
func whoisTargets(a *app, text string) []string {
	targets := util.ScanForEntityIDs(text)
	for _, addr := range util.ScanForEVMAddresses(text) {
		id, err := hedera.EntityIDFromEVMAddress(addr.Hex())
		if err != nil {
			a.logger.Debug("skipping evm address", zap.String("address", addr.Hex()), zap.Error(err))
			a.ui.Warn("%s is not a long-zero address, only the mirror node can resolve it.", addr.Hex())
			continue
		}
		targets = append(targets, id.String())
	}
	return targets
}

func lookupEntity(cmd *cobra.Command, a *app, target string) whoisView {
	id, _ := hedera.ParseEntityID(target)
	explorer := a.network.GetExplorer()
	view := whoisView{
		EntityID:   target,
		EVMAddress: id.ToEVMAddress().Hex(),
	}

	account, err := a.mirror.Account(cmd.Context(), target)
	if err == nil {
		view.Kind = "account"
		view.Memo = account.Memo
		view.Deleted = account.Deleted
		view.Explorer = explorer.AccountURL(target)
		if account.EVMAddress != "" {
			view.EVMAddress = account.EVMAddress
		}
		if topicID, ok := profile.TopicFromMemo(account.Memo); ok {
			view.ProfileID = topicID
			p, err := profile.Load(cmd.Context(), a.mirror, topicID)
			if err != nil {
				a.logger.Debug("memo topic holds no profile", zap.String("topic", topicID), zap.Error(err))
			} else {
				view.ProfileName = p.Name
			}
		}
		return view
	}
	if !errors.Is(err, reader.ErrNotFound) {
		view.Error = err.Error()
		return view
	}

	topic, err := a.mirror.Topic(cmd.Context(), target)
	switch {
	case err == nil:
		view.Kind = "topic"
		view.Memo = topic.Memo
		view.Deleted = topic.Deleted
		view.Explorer = explorer.TopicURL(target)
	case errors.Is(err, reader.ErrNotFound):
		view.Error = "no account or topic with this id"
	default:
		view.Error = err.Error()
	}
	return view
}

var whoisCmd = &cobra.Command{
	Use:   "whois [entity ids or evm addresses]",
	Short: "Show what an account or topic id is, and which profile it belongs to",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := current
		targets := whoisTargets(a, strings.Join(args, " "))
		if len(targets) == 0 {
			return fmt.Errorf("couldn't find any entity id in the params")
		}

		views := make([]whoisView, 0, len(targets))
		for _, target := range targets {
			views = append(views, lookupEntity(cmd, a, target))
		}
		if done, err := printJSON(a.ui, views); done {
			return err
		}
		for _, v := range views {
			showEntity(a.ui, v)
		}
		return nil
	},
}

func showEntity(u ui.UI, v whoisView) {
	u.Section(v.EntityID)
	if v.Error != "" {
		u.Warn("%s", v.Error)
		return
	}
	rows := [][2]string{
		{"Kind", v.Kind},
		{"EVM address", v.EVMAddress},
	}
	if v.Memo != "" {
		rows = append(rows, [2]string{"Memo", v.Memo})
	}
	if v.ProfileName != "" {
		rows = append(rows, [2]string{"Profile", fmt.Sprintf("%s (%s)", v.ProfileName, v.ProfileID)})
	}
	if v.Deleted {
		rows = append(rows, [2]string{"Deleted", u.Style(ui.StyledText{Text: "yes", Severity: ui.SeverityWarn})})
	}
	rows = append(rows, [2]string{"Explorer", v.Explorer})
	u.KeyValue(rows)
}

func init() {
	rootCmd.AddCommand(whoisCmd)
}
