package networks

import (
	"sync"
)

var (
	cachedNetwork Network
	mu            sync.Mutex
)

// NetworkString is bound to the --network flag.
var NetworkString string

func CurrentNetwork() Network {
	mu.Lock()
	n := cachedNetwork
	mu.Unlock()
	if n != nil {
		return n
	}

	SetNetwork(NetworkString)

	mu.Lock()
	defer mu.Unlock()
	return cachedNetwork
}

// SetNetwork switches the current network, falling back to testnet when
// the name is unknown. It returns whether the name was recognized.
func SetNetwork(networkStr string) bool {
	mu.Lock()
	defer mu.Unlock()

	n, err := GetNetwork(networkStr)
	if err != nil {
		cachedNetwork = Testnet
		return false
	}
	cachedNetwork = n
	return true
}
