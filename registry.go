package nftexchange

import (
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/kaifufi/nft-exchange-go/chain"
)

// NonceRegistry tracks per-maker nonce counters and the set of consumed
// order hashes. An order is settleable only while its nonce equals the
// maker's current counter and its hash has not been consumed. Both tables
// are mutated exclusively inside the atomic settlement and cancellation
// paths.
type NonceRegistry struct {
	mu       sync.RWMutex
	nonces   map[common.Address]uint64
	consumed map[common.Hash]bool
}

// NewNonceRegistry creates an empty registry
func NewNonceRegistry() *NonceRegistry {
	return &NonceRegistry{
		nonces:   make(map[common.Address]uint64),
		consumed: make(map[common.Hash]bool),
	}
}

// CurrentNonce returns the maker's current counter (zero if never bumped)
func (r *NonceRegistry) CurrentNonce(maker common.Address) uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.nonces[maker]
}

// IncrementNonce bumps the maker's counter, invalidating every order
// signed under the prior value in one operation. Returns the new counter.
func (r *NonceRegistry) IncrementNonce(maker common.Address) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nonces[maker]++
	return r.nonces[maker]
}

// IsConsumed reports whether an order hash was settled or cancelled
func (r *NonceRegistry) IsConsumed(orderHash common.Hash) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.consumed[orderHash]
}

// MarkConsumed marks an order hash as settled or cancelled
func (r *NonceRegistry) MarkConsumed(orderHash common.Hash) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.consumed[orderHash] = true
}

// CancelOrder marks a specific order consumed without settlement. Only the
// order's maker may cancel it. Returns the cancelled order's hash.
func (r *NonceRegistry) CancelOrder(caller common.Address, order *chain.Order) (common.Hash, error) {
	orderHash, err := chain.HashOrder(order)
	if err != nil {
		return common.Hash{}, err
	}

	if caller != order.Maker {
		return common.Hash{}, fmt.Errorf("%w: cancel of %s by %s", ErrUnauthorized, orderHash, caller)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.consumed[orderHash] {
		return common.Hash{}, fmt.Errorf("%w: %s", ErrOrderConsumed, orderHash)
	}
	r.consumed[orderHash] = true

	return orderHash, nil
}
