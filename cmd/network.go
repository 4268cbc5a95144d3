package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tranvictor/hsocial/networks"
	"github.com/tranvictor/hsocial/util"
)

var (
	NetworkDefinition string
	NetworkForce      bool
)

// readNetworkDefinition accepts either an inline JSON object or a path to
// a JSON file.
func readNetworkDefinition(def string) (networks.Network, error) {
	def = strings.TrimSpace(def)
	if def == "" {
		return nil, fmt.Errorf("--definition is required")
	}
	if strings.HasPrefix(def, "{") && strings.HasSuffix(def, "}") {
		n, err := networks.NewNetworkFromJSON([]byte(def))
		if err != nil {
			return nil, fmt.Errorf("the provided json is not valid: %w", err)
		}
		return n, nil
	}
	content, err := os.ReadFile(def)
	if err != nil {
		return nil, fmt.Errorf("couldn't read the provided json file: %w", err)
	}
	n, err := networks.NewNetworkFromJSON(content)
	if err != nil {
		return nil, fmt.Errorf("the provided json is not a valid network config: %w", err)
	}
	return n, nil
}

var addNetworkCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a new network to the supported networks list locally",
	Long: `--definition takes a network config json filepath OR a json string in the following format:
	{
		"name": "local",
		"alternative_names": ["solo"],
		"ledger_id": 298,
		"mirror_lag": 1000,
		"mirror_node_variable_name": "HEDERA_LOCAL_MIRROR",
		"default_mirror_node": "http://localhost:5551",
		"explorer_url": "http://localhost:8080",
		"explorer_network": "devnet"
	}`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := current
		newNetwork, err := readNetworkDefinition(NetworkDefinition)
		if err != nil {
			return err
		}

		allNames := append([]string{newNetwork.GetName()}, newNetwork.GetAlternativeNames()...)
		taken := []string{}
		for _, name := range allNames {
			if _, err := networks.GetNetwork(name); err == nil {
				taken = append(taken, name)
			}
		}

		if len(taken) > 0 {
			if !NetworkForce && !a.ui.Confirm(
				fmt.Sprintf("Network %s already exists. Replace it?", strings.Join(taken, ", ")),
				false,
			) {
				a.ui.Warn("Aborted. Nothing was changed.")
				return nil
			}
			err = networks.ReplaceNetwork(newNetwork)
		} else {
			err = networks.AddNetwork(newNetwork)
		}
		if err != nil {
			return fmt.Errorf("failed to add the new network: %w", err)
		}
		a.ui.Success("Network %s with ledger id %d saved to %s.", newNetwork.GetName(), newNetwork.GetLedgerID(), networks.CustomNetworksDir)
		return nil
	},
}

type networkView struct {
	Name        string            `json:"name"`
	Aliases     []string          `json:"alternative_names"`
	LedgerID    uint64            `json:"ledger_id"`
	MirrorNodes map[string]string `json:"mirror_nodes"`
	Explorer    string            `json:"explorer"`
}

func supportedNetworks() []networks.Network {
	seen := map[string]bool{}
	result := []networks.Network{}
	for _, name := range networks.GetSupportedNetworkNames() {
		n, err := networks.GetNetwork(name)
		if err != nil || seen[n.GetName()] {
			continue
		}
		seen[n.GetName()] = true
		result = append(result, n)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].GetLedgerID() < result[j].GetLedgerID()
	})
	return result
}

var listNetworkCmd = &cobra.Command{
	Use:   "list",
	Short: "Show all of supported networks",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := current
		views := []networkView{}
		for _, n := range supportedNetworks() {
			views = append(views, networkView{
				Name:        n.GetName(),
				Aliases:     n.GetAlternativeNames(),
				LedgerID:    n.GetLedgerID(),
				MirrorNodes: util.MirrorNodes(n, ""),
				Explorer:    n.GetExplorer().Name(),
			})
		}
		if done, err := printJSON(a.ui, views); done {
			return err
		}

		rows := [][]string{}
		for _, v := range views {
			names := make([]string, 0, len(v.MirrorNodes))
			for name := range v.MirrorNodes {
				names = append(names, name)
			}
			sort.Strings(names)
			nodes := make([]string, 0, len(names))
			for _, name := range names {
				nodes = append(nodes, fmt.Sprintf("%s: %s", name, v.MirrorNodes[name]))
			}
			rows = append(rows, []string{
				v.Name,
				fmt.Sprintf("%d", v.LedgerID),
				strings.Join(v.Aliases, ", "),
				strings.Join(nodes, ", "),
			})
		}
		a.ui.Table([]string{"Name", "Ledger ID", "Aliases", "Mirror nodes"}, rows)
		a.ui.Info("Add more networks with: hsocial network add --definition <json or file>")
		a.ui.Info("To delete a network, remove its json file in %s.", networks.CustomNetworksDir)
		return nil
	},
}

var networkCmd = &cobra.Command{
	Use:   "network",
	Short: "Manage all networks that hsocial supports",
}

func init() {
	addNetworkCmd.Flags().StringVarP(&NetworkDefinition, "definition", "d", "", "Network config json, inline or as a file path.")
	addNetworkCmd.Flags().BoolVarP(&NetworkForce, "force", "f", false, "Replace an existing network with the same name without asking.")

	networkCmd.AddCommand(listNetworkCmd)
	networkCmd.AddCommand(addNetworkCmd)
	rootCmd.AddCommand(networkCmd)
}
