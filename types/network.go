package types

// Network represents supported EVM networks.
type Network string

const (
	NetworkBSC         Network = "bsc"
	NetworkBSCTestnet  Network = "bsc-testnet"
	NetworkEthereum    Network = "ethereum"
	NetworkSepolia     Network = "sepolia"
	NetworkPolygon     Network = "polygon"
	NetworkPolygonAmoy Network = "polygon-amoy"
	NetworkBase        Network = "base"
	NetworkBaseSepolia Network = "base-sepolia"
)

// nativeSymbols maps a network to the display label of its base asset.
var nativeSymbols = map[Network]string{
	NetworkBSC:         "BNB",
	NetworkBSCTestnet:  "tBNB",
	NetworkEthereum:    "ETH",
	NetworkSepolia:     "ETH",
	NetworkPolygon:     "POL",
	NetworkPolygonAmoy: "POL",
	NetworkBase:        "ETH",
	NetworkBaseSepolia: "ETH",
}

// NativeSymbol returns the display label of the network's base asset.
// Unknown networks report a generic label rather than failing.
func (n Network) NativeSymbol() string {
	if sym, ok := nativeSymbols[n]; ok {
		return sym
	}
	return "NATIVE"
}

// IsKnown reports whether the network is one of the supported constants.
func (n Network) IsKnown() bool {
	_, ok := nativeSymbols[n]
	return ok
}

func (n Network) IsTestnet() bool {
	switch n {
	case NetworkBSCTestnet, NetworkSepolia, NetworkPolygonAmoy, NetworkBaseSepolia:
		return true
	}
	return false
}

func (n Network) String() string {
	return string(n)
}
