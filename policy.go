package nftexchange

import (
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/kaifufi/nft-exchange-go/chain"
)

// MatchResult is the policy's adjudicated final trade terms. Under a
// non-standard policy the price may differ from either order's literal
// price field.
type MatchResult struct {
	Price        *big.Int
	TokenID      *big.Int
	Amount       *big.Int
	PaymentToken common.Address
	AssetClass   chain.AssetClass
}

// MatchingPolicy decides whether a sell order and a buy order are
// compatible and derives the agreed trade terms. The maker side is
// determined by listing time: the order listed first is the maker, and its
// policy adjudicates the match.
type MatchingPolicy interface {
	// CanMatchMakerAsk adjudicates a match where the sell order is the maker
	CanMatchMakerAsk(sell, buy *chain.Order) (*MatchResult, bool)
	// CanMatchMakerBid adjudicates a match where the buy order is the maker
	CanMatchMakerBid(sell, buy *chain.Order) (*MatchResult, bool)
}

// StandardPolicyERC721 matches a sell and buy order for a single
// non-fungible token at an identical fixed price.
type StandardPolicyERC721 struct{}

func (StandardPolicyERC721) CanMatchMakerAsk(sell, buy *chain.Order) (*MatchResult, bool) {
	return standardMatch(sell, buy, chain.AssetClassERC721, big.NewInt(1))
}

func (StandardPolicyERC721) CanMatchMakerBid(sell, buy *chain.Order) (*MatchResult, bool) {
	return standardMatch(sell, buy, chain.AssetClassERC721, big.NewInt(1))
}

// StandardPolicyERC1155 matches a sell and buy order for an identical
// quantity of a semi-fungible token at an identical fixed price.
type StandardPolicyERC1155 struct{}

func (StandardPolicyERC1155) CanMatchMakerAsk(sell, buy *chain.Order) (*MatchResult, bool) {
	return standardMatch(sell, buy, chain.AssetClassERC1155, nil)
}

func (StandardPolicyERC1155) CanMatchMakerBid(sell, buy *chain.Order) (*MatchResult, bool) {
	return standardMatch(sell, buy, chain.AssetClassERC1155, nil)
}

// standardMatch applies the fixed-price compatibility rules. When
// requiredAmount is non-nil the matched quantity must equal it exactly
// (no partial fills for non-fungible assets).
func standardMatch(sell, buy *chain.Order, class chain.AssetClass, requiredAmount *big.Int) (*MatchResult, bool) {
	if sell.Side != chain.SideSell || buy.Side != chain.SideBuy {
		return nil, false
	}
	if sell.Collection != buy.Collection {
		return nil, false
	}
	if sell.TokenID == nil || buy.TokenID == nil || sell.TokenID.Cmp(buy.TokenID) != 0 {
		return nil, false
	}
	if sell.Amount == nil || buy.Amount == nil || sell.Amount.Cmp(buy.Amount) != 0 {
		return nil, false
	}
	if requiredAmount != nil && sell.Amount.Cmp(requiredAmount) != 0 {
		return nil, false
	}
	if sell.PaymentToken != buy.PaymentToken {
		return nil, false
	}
	if sell.Price == nil || buy.Price == nil || sell.Price.Cmp(buy.Price) != 0 {
		return nil, false
	}

	return &MatchResult{
		Price:        new(big.Int).Set(sell.Price),
		TokenID:      new(big.Int).Set(sell.TokenID),
		Amount:       new(big.Int).Set(sell.Amount),
		PaymentToken: sell.PaymentToken,
		AssetClass:   class,
	}, true
}

// PolicyRegistry is the whitelist of approved matching policies, keyed by
// the policy identifier carried in orders. Only whitelisted policies may
// adjudicate a settlement.
type PolicyRegistry struct {
	mu       sync.RWMutex
	policies map[common.Address]MatchingPolicy
}

// NewPolicyRegistry creates an empty registry
func NewPolicyRegistry() *PolicyRegistry {
	return &PolicyRegistry{policies: make(map[common.Address]MatchingPolicy)}
}

// Register whitelists a policy under an identifier
func (pr *PolicyRegistry) Register(id common.Address, policy MatchingPolicy) {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	pr.policies[id] = policy
}

// Remove de-whitelists a policy identifier
func (pr *PolicyRegistry) Remove(id common.Address) {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	delete(pr.policies, id)
}

// Lookup returns the policy registered under an identifier
func (pr *PolicyRegistry) Lookup(id common.Address) (MatchingPolicy, bool) {
	pr.mu.RLock()
	defer pr.mu.RUnlock()
	policy, ok := pr.policies[id]
	return policy, ok
}
