package networks

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Insert more Network implementation here to support more ledgers.
var supportedNetworks = []Network{
	Mainnet,
	Testnet,
	Previewnet,
}

var globalSupportedNetworks = newSupportedNetworks()
var ErrNetworkNotFound = fmt.Errorf("network not found")

// CustomNetworksDir holds user defined networks, one JSON file each.
var CustomNetworksDir = defaultCustomNetworksDir()

type networks struct {
	mu           sync.RWMutex
	networks     map[string]Network
	networksByID map[uint64]Network
}

func defaultCustomNetworksDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".hsocial", "networks")
}

func (n *networks) getSupportedNetworkNames() []string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	res := []string{}
	for name := range n.networks {
		res = append(res, name)
	}
	sort.Strings(res)
	return res
}

func (n *networks) getNetworkByID(id uint64) (Network, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	res, found := n.networksByID[id]
	if !found {
		return nil, fmt.Errorf("ledger id %d is not supported", id)
	}
	return res, nil
}

func (n *networks) getNetwork(name string) (Network, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	res, found := n.networks[name]
	if !found {
		return nil, fmt.Errorf("network name '%s': %w", name, ErrNetworkNotFound)
	}
	return res, nil
}

func (n *networks) add(network Network, override bool) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	names := append([]string{network.GetName()}, network.GetAlternativeNames()...)
	if !override {
		for _, name := range names {
			if _, found := n.networks[name]; found {
				return fmt.Errorf("network with name or alternative name of '%s' already exists", name)
			}
		}
	}
	for _, name := range names {
		n.networks[name] = network
	}
	n.networksByID[network.GetLedgerID()] = network
	return nil
}

func newSupportedNetworks() *networks {
	result := &networks{
		networks:     map[string]Network{},
		networksByID: map[uint64]Network{},
	}
	for _, n := range supportedNetworks {
		if err := result.add(n, false); err != nil {
			panic(err)
		}
	}

	customNetworks, err := loadCustomNetworks(defaultCustomNetworksDir())
	if err != nil {
		fmt.Fprintf(os.Stderr, "WARNING: Failed to load custom networks: %s. Ignore and continue with built-in networks.\n", err)
		return result
	}
	for _, n := range customNetworks {
		// custom networks win over built-in ones with the same name
		result.add(n, true)
	}
	return result
}

func loadCustomNetworks(dir string) ([]Network, error) {
	if dir == "" {
		return nil, nil
	}
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to glob json files in %s: %w", dir, err)
	}

	networks := []Network{}
	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read file %s: %w", file, err)
		}

		network, err := NewNetworkFromJSON(content)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to parse network from file %s: %s. Ignore and continue with other custom networks.\n", file, err)
			continue
		}
		networks = append(networks, network)
	}
	return networks, nil
}

func NewNetworkFromJSON(content []byte) (Network, error) {
	networkConfig := GenericMirrorNetworkConfig{}
	err := json.Unmarshal(content, &networkConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal network config: %w", err)
	}
	if networkConfig.Name == "" || networkConfig.DefaultMirrorNode == "" {
		return nil, fmt.Errorf("network config requires name and default_mirror_node")
	}
	return NewGenericMirrorNetwork(networkConfig), nil
}

func GetNetwork(name string) (Network, error) {
	return globalSupportedNetworks.getNetwork(name)
}

func GetNetworkByID(id uint64) (Network, error) {
	return globalSupportedNetworks.getNetworkByID(id)
}

func GetSupportedNetworkNames() []string {
	return globalSupportedNetworks.getSupportedNetworkNames()
}

// AddNetwork registers a network for this session and persists it to
// CustomNetworksDir. Names already in use are rejected.
func AddNetwork(network Network) error {
	return saveNetwork(network, false)
}

// ReplaceNetwork is AddNetwork that takes over names already in use.
func ReplaceNetwork(network Network) error {
	return saveNetwork(network, true)
}

func saveNetwork(network Network, override bool) error {
	if err := globalSupportedNetworks.add(network, override); err != nil {
		return err
	}
	if CustomNetworksDir == "" {
		return nil
	}
	if err := os.MkdirAll(CustomNetworksDir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", CustomNetworksDir, err)
	}

	content, err := network.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal network: %w", err)
	}

	err = os.WriteFile(filepath.Join(CustomNetworksDir, fmt.Sprintf("%s.json", network.GetName())), content, 0644)
	if err != nil {
		return fmt.Errorf("failed to write the new network to file: %w", err)
	}
	return nil
}
