package common

type Network string

const (
	NetworkBSC        Network = "bsc"
	NetworkBSCTestnet Network = "bsc-testnet"
	NetworkPolygon    Network = "polygon"
	NetworkMumbai     Network = "mumbai"
	NetworkLocal      Network = "local"
)

var chainIDs = map[Network]uint64{
	NetworkBSC:        56,
	NetworkBSCTestnet: 97,
	NetworkPolygon:    137,
	NetworkMumbai:     80001,
	NetworkLocal:      31337,
}

func (n Network) IsSupported() bool {
	_, ok := chainIDs[n]
	return ok
}

// ChainID returns the EVM chain id of the network, or 0 if the network is not supported.
func (n Network) ChainID() uint64 {
	return chainIDs[n]
}

func (n Network) String() string {
	return string(n)
}
