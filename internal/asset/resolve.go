package asset

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/dex-router/internal/apperror"
)

// unknownTokenDecimals is assumed for raw addresses the registry does not know.
const unknownTokenDecimals = 18

// Resolve resolves a user-supplied token reference on the given chain.
// ref may be a symbol ("ETH", "usdc") or a 0x-prefixed contract address.
// Raw addresses the registry does not know are accepted and assumed to
// have 18 decimals. Unknown symbols fail with CodeTokenNotFound.
func (r *Registry) Resolve(chainID uint64, ref string) (*Asset, error) {
	symbol := strings.ToUpper(strings.TrimSpace(ref))

	if a, ok := r.GetBySymbolAndChain(symbol, chainID); ok {
		return a, nil
	}

	if common.IsHexAddress(ref) {
		addr := common.HexToAddress(ref)

		if addr == NativeSentinel {
			if native, ok := r.GetNative(chainID); ok {
				return native, nil
			}
			return MustNewNative(chainID, "NATIVE", "Native Coin", unknownTokenDecimals), nil
		}

		if a, ok := r.GetToken(chainID, addr); ok {
			return a, nil
		}

		short := addr.Hex()[:10]
		return MustNewToken(chainID, addr, short, short, unknownTokenDecimals), nil
	}

	return nil, apperror.New(apperror.CodeTokenNotFound,
		apperror.WithContext(fmt.Sprintf("%s on %s", ref, ChainNameByID[chainID])))
}

// AggregatorAddress returns the address to send to aggregator APIs:
// the sentinel pseudo-address for native coins, the contract address otherwise.
func AggregatorAddress(a *Asset) common.Address {
	if a.IsNative() {
		return NativeSentinel
	}
	return a.Address()
}
