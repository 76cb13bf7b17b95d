package asset

import "github.com/ethereum/go-ethereum/common"

// Chain IDs
const (
	ChainIDEthereum = 1
	ChainIDOptimism = 10
	ChainIDPolygon  = 137
	ChainIDArbitrum = 42161
)

// ChainIDByName maps chain names to their chain IDs.
var ChainIDByName = map[string]uint64{
	"ethereum": ChainIDEthereum,
	"arbitrum": ChainIDArbitrum,
	"polygon":  ChainIDPolygon,
	"optimism": ChainIDOptimism,
}

// ChainNameByID maps chain IDs back to their names.
var ChainNameByID = map[uint64]string{
	ChainIDEthereum: "ethereum",
	ChainIDArbitrum: "arbitrum",
	ChainIDPolygon:  "polygon",
	ChainIDOptimism: "optimism",
}

// NativeSentinel is the pseudo-address aggregator APIs use for native coins.
var NativeSentinel = common.HexToAddress("0xEeeeeEeeeEeEeeEeEeEeeEEEeeeeEeeeeeeeEEeE")

// Well-known token addresses on Ethereum Mainnet
var (
	AddrUSDCEthereum = common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	AddrUSDTEthereum = common.HexToAddress("0xdAC17F958D2ee523a2206206994597C13D831ec7")
	AddrDAIEthereum  = common.HexToAddress("0x6B175474E89094C44Da98b954EedeAC495271d0F")
	AddrWETHEthereum = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	AddrWBTCEthereum = common.HexToAddress("0x2260FAC5E5542a773Aa44fBCfeDf7C193bc2C599")
)

// Well-known token addresses on Arbitrum One
var (
	AddrWETHArbitrum = common.HexToAddress("0x82aF49447D8a07e3bd95BD0d56f35241523fBab1")
	AddrUSDCArbitrum = common.HexToAddress("0xaf88d065e77c8cC2239327C5EDb3A432268e5831")
	AddrUSDTArbitrum = common.HexToAddress("0xFd086bC7CD5C481DCC9C85ebE478A1C0b69FCbb9")
)

// Well-known token addresses on Polygon PoS
var (
	AddrWMATICPolygon = common.HexToAddress("0x0d500B1d8E8eF31E21C99d1Db9A6444d3ADf1270")
	AddrUSDCPolygon   = common.HexToAddress("0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174")
	AddrUSDTPolygon   = common.HexToAddress("0xc2132D05D31c914a87C6611C10748AEb04B58e8F")
)

// Well-known Assets (pre-created instances)
var (
	// Ethereum Mainnet
	ETH  = NewAssetWithName(NewNativeAssetID(ChainIDEthereum), "ETH", "Ethereum", 18)
	USDC = NewAssetWithName(NewTokenAssetID(ChainIDEthereum, AddrUSDCEthereum), "USDC", "USD Coin", 6)
	USDT = NewAssetWithName(NewTokenAssetID(ChainIDEthereum, AddrUSDTEthereum), "USDT", "Tether USD", 6)
	DAI  = NewAssetWithName(NewTokenAssetID(ChainIDEthereum, AddrDAIEthereum), "DAI", "Dai Stablecoin", 18)
	WETH = NewAssetWithName(NewTokenAssetID(ChainIDEthereum, AddrWETHEthereum), "WETH", "Wrapped Ether", 18)
	WBTC = NewAssetWithName(NewTokenAssetID(ChainIDEthereum, AddrWBTCEthereum), "WBTC", "Wrapped Bitcoin", 8)

	// Arbitrum One
	ETHArbitrum  = NewAssetWithName(NewNativeAssetID(ChainIDArbitrum), "ETH", "Ethereum", 18)
	WETHArbitrum = NewAssetWithName(NewTokenAssetID(ChainIDArbitrum, AddrWETHArbitrum), "WETH", "Wrapped Ether", 18)
	USDCArbitrum = NewAssetWithName(NewTokenAssetID(ChainIDArbitrum, AddrUSDCArbitrum), "USDC", "USD Coin", 6)
	USDTArbitrum = NewAssetWithName(NewTokenAssetID(ChainIDArbitrum, AddrUSDTArbitrum), "USDT", "Tether USD", 6)

	// Polygon PoS
	MATIC         = NewAssetWithName(NewNativeAssetID(ChainIDPolygon), "MATIC", "Polygon", 18)
	WMATICPolygon = NewAssetWithName(NewTokenAssetID(ChainIDPolygon, AddrWMATICPolygon), "WMATIC", "Wrapped Matic", 18)
	USDCPolygon   = NewAssetWithName(NewTokenAssetID(ChainIDPolygon, AddrUSDCPolygon), "USDC", "USD Coin", 6)
	USDTPolygon   = NewAssetWithName(NewTokenAssetID(ChainIDPolygon, AddrUSDTPolygon), "USDT", "Tether USD", 6)

	// Optimism
	ETHOptimism = NewAssetWithName(NewNativeAssetID(ChainIDOptimism), "ETH", "Ethereum", 18)
)

// DefaultRegistry returns a registry pre-populated with well-known assets.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	// Ethereum Mainnet
	r.Register(ETH)
	r.Register(USDC)
	r.Register(USDT)
	r.Register(DAI)
	r.Register(WETH)
	r.Register(WBTC)

	// Arbitrum One
	r.Register(ETHArbitrum)
	r.Register(WETHArbitrum)
	r.Register(USDCArbitrum)
	r.Register(USDTArbitrum)

	// Polygon PoS
	r.Register(MATIC)
	r.Register(WMATICPolygon)
	r.Register(USDCPolygon)
	r.Register(USDTPolygon)

	// Optimism
	r.Register(ETHOptimism)

	return r
}

// MustNewToken creates a new ERC20 token asset with the given parameters.
// This is a convenience function for registering custom tokens.
func MustNewToken(chainID uint64, address common.Address, symbol, name string, decimals uint8) *Asset {
	id := NewTokenAssetID(chainID, address)
	return NewAssetWithName(id, symbol, name, decimals)
}

// MustNewNative creates a new native coin asset.
func MustNewNative(chainID uint64, symbol, name string, decimals uint8) *Asset {
	id := NewNativeAssetID(chainID)
	return NewAssetWithName(id, symbol, name, decimals)
}
