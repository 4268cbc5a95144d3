package networks

var (
	Mainnet    Network = NewMainnet()
	Testnet    Network = NewTestnet()
	Previewnet Network = NewPreviewnet()
)

func NewMainnet() *GenericMirrorNetwork {
	return NewGenericMirrorNetwork(GenericMirrorNetworkConfig{
		Name:                   "mainnet",
		AlternativeNames:       []string{"hedera", "hedera-mainnet"},
		LedgerID:               0,
		MirrorLag:              3000,
		MirrorNodeVariableName: "HEDERA_MAINNET_MIRROR",
		DefaultMirrorNode:      "https://mainnet-public.mirrornode.hedera.com",
		ExplorerNetwork:        "mainnet",
	})
}

func NewTestnet() *GenericMirrorNetwork {
	return NewGenericMirrorNetwork(GenericMirrorNetworkConfig{
		Name:                   "testnet",
		AlternativeNames:       []string{"hedera-testnet"},
		LedgerID:               1,
		MirrorLag:              3000,
		MirrorNodeVariableName: "HEDERA_TESTNET_MIRROR",
		DefaultMirrorNode:      "https://testnet.mirrornode.hedera.com",
		ExplorerNetwork:        "testnet",
	})
}

func NewPreviewnet() *GenericMirrorNetwork {
	return NewGenericMirrorNetwork(GenericMirrorNetworkConfig{
		Name:                   "previewnet",
		AlternativeNames:       []string{"hedera-previewnet"},
		LedgerID:               2,
		MirrorLag:              5000,
		MirrorNodeVariableName: "HEDERA_PREVIEWNET_MIRROR",
		DefaultMirrorNode:      "https://previewnet.mirrornode.hedera.com",
		ExplorerNetwork:        "previewnet",
	})
}
