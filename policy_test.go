package nftexchange

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaifufi/nft-exchange-go/chain"
)

func matchedPair() (*chain.Order, *chain.Order) {
	collection := common.HexToAddress("0x3333333333333333333333333333333333333333")
	sell := &chain.Order{
		Maker:        common.HexToAddress("0x1111111111111111111111111111111111111111"),
		Side:         chain.SideSell,
		Collection:   collection,
		TokenID:      big.NewInt(7),
		Amount:       big.NewInt(1),
		PaymentToken: common.Address{},
		Price:        big.NewInt(1000),
	}
	buy := &chain.Order{
		Maker:        common.HexToAddress("0x9999999999999999999999999999999999999999"),
		Side:         chain.SideBuy,
		Collection:   collection,
		TokenID:      big.NewInt(7),
		Amount:       big.NewInt(1),
		PaymentToken: common.Address{},
		Price:        big.NewInt(1000),
	}
	return sell, buy
}

func TestStandardPolicyERC721_Match(t *testing.T) {
	sell, buy := matchedPair()
	policy := StandardPolicyERC721{}

	result, ok := policy.CanMatchMakerAsk(sell, buy)
	require.True(t, ok)
	assert.Equal(t, 0, result.Price.Cmp(sell.Price))
	assert.Equal(t, 0, result.TokenID.Cmp(sell.TokenID))
	assert.Equal(t, 0, result.Amount.Cmp(big.NewInt(1)))
	assert.Equal(t, sell.PaymentToken, result.PaymentToken)
	assert.Equal(t, chain.AssetClassERC721, result.AssetClass)

	// Maker-bid adjudication applies the same fixed-price rules
	_, ok = policy.CanMatchMakerBid(sell, buy)
	assert.True(t, ok)
}

func TestStandardPolicyERC721_Reject(t *testing.T) {
	policy := StandardPolicyERC721{}

	mutations := map[string]func(sell, buy *chain.Order){
		"price":        func(_, buy *chain.Order) { buy.Price = big.NewInt(999) },
		"collection":   func(_, buy *chain.Order) { buy.Collection = common.HexToAddress("0x7777777777777777777777777777777777777777") },
		"tokenId":      func(_, buy *chain.Order) { buy.TokenID = big.NewInt(8) },
		"amount":       func(_, buy *chain.Order) { buy.Amount = big.NewInt(2) },
		"paymentToken": func(_, buy *chain.Order) { buy.PaymentToken = common.HexToAddress("0x6666666666666666666666666666666666666666") },
		"sides":        func(sell, buy *chain.Order) { sell.Side = chain.SideBuy; buy.Side = chain.SideSell },
		"multiUnit":    func(sell, buy *chain.Order) { sell.Amount = big.NewInt(3); buy.Amount = big.NewInt(3) },
	}

	for name, mutate := range mutations {
		sell, buy := matchedPair()
		mutate(sell, buy)
		_, ok := policy.CanMatchMakerAsk(sell, buy)
		assert.False(t, ok, "pair with mismatched %s must not match", name)
	}
}

func TestStandardPolicyERC1155_MultiUnit(t *testing.T) {
	sell, buy := matchedPair()
	sell.Amount = big.NewInt(5)
	buy.Amount = big.NewInt(5)

	policy := StandardPolicyERC1155{}
	result, ok := policy.CanMatchMakerAsk(sell, buy)
	require.True(t, ok)
	assert.Equal(t, 0, result.Amount.Cmp(big.NewInt(5)))
	assert.Equal(t, chain.AssetClassERC1155, result.AssetClass)

	// Quantities must still be identical: no partial fills
	buy.Amount = big.NewInt(3)
	_, ok = policy.CanMatchMakerAsk(sell, buy)
	assert.False(t, ok)
}

func TestPolicyRegistry(t *testing.T) {
	registry := NewPolicyRegistry()
	id := common.HexToAddress("0x2222222222222222222222222222222222222222")

	_, ok := registry.Lookup(id)
	assert.False(t, ok)

	registry.Register(id, StandardPolicyERC721{})
	policy, ok := registry.Lookup(id)
	require.True(t, ok)
	assert.IsType(t, StandardPolicyERC721{}, policy)

	registry.Remove(id)
	_, ok = registry.Lookup(id)
	assert.False(t, ok)
}
