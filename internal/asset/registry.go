package asset

import (
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// Registry holds the known assets, keyed by identity and indexed by
// symbol. Symbols are not unique across chains, so symbol lookups are
// always chain-scoped.
type Registry struct {
	byID     map[AssetID]*Asset
	bySymbol map[string][]*Asset
	mu       sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byID:     make(map[AssetID]*Asset),
		bySymbol: make(map[string][]*Asset),
	}
}

// Register adds an asset. Registering the same identity twice is a
// programming error and panics.
func (r *Registry) Register(a *Asset) {
	if a == nil {
		panic("asset: cannot register nil asset")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := a.ID()
	if _, exists := r.byID[id]; exists {
		panic(fmt.Sprintf("asset: %s already registered", id))
	}

	r.byID[id] = a
	r.bySymbol[a.Symbol()] = append(r.bySymbol[a.Symbol()], a)
}

// Get retrieves an asset by its identity.
func (r *Registry) Get(id AssetID) (*Asset, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[id]
	return a, ok
}

// GetBySymbolAndChain retrieves an asset by symbol on a chain.
func (r *Registry) GetBySymbolAndChain(symbol string, chainID uint64) (*Asset, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.bySymbol[symbol] {
		if a.ChainID() == chainID {
			return a, true
		}
	}
	return nil, false
}

// GetNative retrieves the chain's native coin.
func (r *Registry) GetNative(chainID uint64) (*Asset, bool) {
	return r.Get(NewNativeAssetID(chainID))
}

// GetToken retrieves a token by chain and contract address.
func (r *Registry) GetToken(chainID uint64, address common.Address) (*Asset, bool) {
	return r.Get(NewTokenAssetID(chainID, address))
}
