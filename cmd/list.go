package cmd

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tranvictor/hsocial/config"
	"github.com/tranvictor/hsocial/listtopic"
	"github.com/tranvictor/hsocial/profile"
	"github.com/tranvictor/hsocial/ui"
	"github.com/tranvictor/hsocial/util/reader"
)

var ListIsTopic bool

type listView struct {
	Kind         listtopic.Kind   `json:"kind"`
	Owner        string           `json:"owner,omitempty"`
	ProfileTopic string           `json:"profile_topic,omitempty"`
	ListTopic    string           `json:"list_topic,omitempty"`
	Items        []listtopic.Item `json:"items"`
}

// resolveList loads the kind list of target. target is an account, a
// profile topic, or with --topic the list topic itself.
func resolveList(cmd *cobra.Command, a *app, kind listtopic.Kind, target string) (listView, error) {
	view := listView{Kind: kind, Items: []listtopic.Item{}}
	lists := listtopic.NewReader(a.mirror, a.logger)

	if ListIsTopic {
		view.ListTopic = target
		items, err := lists.FetchList(cmd.Context(), kind, target)
		if err != nil {
			return view, err
		}
		view.Items = append(view.Items, items...)
		return view, nil
	}

	topicID, err := profile.FindTopic(cmd.Context(), a.mirror, target)
	switch {
	case err == nil:
		view.Owner = target
	case errors.Is(err, reader.ErrNotFound):
		// not an account, try it as a profile topic
		a.logger.Debug("no such account, reading as profile topic", zap.String("target", target))
		topicID = target
	default:
		return view, err
	}
	view.ProfileTopic = topicID

	p, err := profile.Load(cmd.Context(), a.mirror, topicID)
	if err != nil {
		return view, err
	}
	view.ListTopic = p.ListTopicID(kind)
	items, err := p.ResolveList(cmd.Context(), kind, lists)
	if err != nil {
		return view, err
	}
	view.Items = append(view.Items, items...)
	return view, nil
}

// itemTable lays items out with the key field first and every other field
// seen in any item after it, sorted.
func itemTable(kind listtopic.Kind, items []listtopic.Item) ([]string, [][]string) {
	seen := map[string]bool{}
	fields := []string{}
	for _, it := range items {
		for _, name := range it.FieldNames(kind) {
			if !seen[name] {
				seen[name] = true
				fields = append(fields, name)
			}
		}
	}
	sort.Strings(fields)

	headers := append([]string{"#", kind.KeyField()}, fields...)
	rows := make([][]string, 0, len(items))
	for i, it := range items {
		key, _ := it.Key(kind)
		row := []string{fmt.Sprintf("%d", i+1), key}
		for _, name := range fields {
			if v, ok := it[name]; ok && v != nil {
				row = append(row, fmt.Sprintf("%v", v))
			} else {
				row = append(row, "")
			}
		}
		rows = append(rows, row)
	}
	return headers, rows
}

func showListHeader(u ui.UI, view listView) {
	rows := [][2]string{}
	if view.Owner != "" {
		rows = append(rows, [2]string{"Owner", view.Owner})
	}
	if view.ProfileTopic != "" {
		rows = append(rows, [2]string{"Profile topic", view.ProfileTopic})
	}
	switch {
	case view.ListTopic != "":
		rows = append(rows, [2]string{"List topic", view.ListTopic})
	case view.ProfileTopic != "":
		rows = append(rows, [2]string{"List topic", "none, stored in the profile"})
	}
	u.Section(fmt.Sprintf("%s (%d)", view.Kind, len(view.Items)))
	u.KeyValue(rows)
}

func listKind() (listtopic.Kind, error) {
	return listtopic.ParseKind(config.ListKind)
}

var showListCmd = &cobra.Command{
	Use:   "show [account, profile topic or list topic]",
	Short: "Show the channels, groups or following list of a profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := current
		kind, err := listKind()
		if err != nil {
			return err
		}
		target := strings.TrimSpace(args[0])
		stop := a.ui.Spinner(fmt.Sprintf("Reading %s of %s...", kind, target))
		view, err := resolveList(cmd, a, kind, target)
		stop()
		if err != nil {
			return err
		}
		if done, err := printJSON(a.ui, view); done {
			return err
		}
		showListHeader(a.ui, view)
		if len(view.Items) == 0 {
			a.ui.Info("The list is empty.")
			return nil
		}
		headers, rows := itemTable(kind, view.Items)
		a.ui.Table(headers, rows)
		return nil
	},
}

var findListCmd = &cobra.Command{
	Use:   "find [account, profile topic or list topic] [query]",
	Short: "Fuzzy search a list of a profile",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := current
		kind, err := listKind()
		if err != nil {
			return err
		}
		view, err := resolveList(cmd, a, kind, strings.TrimSpace(args[0]))
		if err != nil {
			return err
		}
		matches, err := listtopic.Search(kind, view.Items, strings.Join(args[1:], " "), config.ShowLimit)
		if err != nil {
			return err
		}
		if done, err := printJSON(a.ui, matches); done {
			return err
		}
		if len(matches) == 0 {
			a.ui.Warn("Nothing in %s matches %q.", kind, strings.Join(args[1:], " "))
			return nil
		}
		items := make([]listtopic.Item, 0, len(matches))
		for _, m := range matches {
			items = append(items, m.Item)
		}
		headers, rows := itemTable(kind, items)
		a.ui.Table(headers, rows)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Read the channel, group and following lists behind profiles",
	Long: `Profiles keep each list either inline, or on a dedicated topic where every
message adds an item or removes one. These commands replay the topic and
show the list as it is now.`,
}

func init() {
	flags := listCmd.PersistentFlags()
	flags.StringVarP(&config.ListKind, "kind", "l", string(listtopic.Channels), "List to read: channels, groups or following.")
	flags.BoolVarP(&ListIsTopic, "topic", "t", false, "Treat the argument as the list topic itself.")
	findListCmd.Flags().IntVarP(&config.ShowLimit, "limit", "n", listtopic.DefaultSearchLimit, "Maximum number of matches to show.")

	listCmd.AddCommand(showListCmd)
	listCmd.AddCommand(findListCmd)
	rootCmd.AddCommand(listCmd)
}
