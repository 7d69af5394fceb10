package nftexchange

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaifufi/nft-exchange-go/chain"
)

func registryOrder(maker common.Address) *chain.Order {
	return &chain.Order{
		Maker:          maker,
		Side:           chain.SideSell,
		MatchingPolicy: common.HexToAddress("0x2222222222222222222222222222222222222222"),
		Collection:     common.HexToAddress("0x3333333333333333333333333333333333333333"),
		TokenID:        big.NewInt(1),
		Amount:         big.NewInt(1),
		Price:          big.NewInt(100),
		Salt:           big.NewInt(1),
		Nonce:          big.NewInt(0),
	}
}

func TestNonceRegistry_Counters(t *testing.T) {
	reg := NewNonceRegistry()
	maker := common.HexToAddress("0x1111111111111111111111111111111111111111")

	assert.Equal(t, uint64(0), reg.CurrentNonce(maker))
	assert.Equal(t, uint64(1), reg.IncrementNonce(maker))
	assert.Equal(t, uint64(2), reg.IncrementNonce(maker))
	assert.Equal(t, uint64(2), reg.CurrentNonce(maker))

	// Counters are per maker
	other := common.HexToAddress("0x9999999999999999999999999999999999999999")
	assert.Equal(t, uint64(0), reg.CurrentNonce(other))
}

func TestNonceRegistry_ConsumedSet(t *testing.T) {
	reg := NewNonceRegistry()
	hash := common.HexToHash("0xdeadbeef")

	assert.False(t, reg.IsConsumed(hash))
	reg.MarkConsumed(hash)
	assert.True(t, reg.IsConsumed(hash))
}

func TestNonceRegistry_CancelOrder(t *testing.T) {
	reg := NewNonceRegistry()
	maker := common.HexToAddress("0x1111111111111111111111111111111111111111")
	order := registryOrder(maker)

	hash, err := reg.CancelOrder(maker, order)
	require.NoError(t, err)

	expected, err := chain.HashOrder(order)
	require.NoError(t, err)
	assert.Equal(t, expected, hash)
	assert.True(t, reg.IsConsumed(hash))

	// A second cancel of the same order is rejected
	_, err = reg.CancelOrder(maker, order)
	assert.ErrorIs(t, err, ErrOrderConsumed)
}

func TestNonceRegistry_CancelByNonMaker(t *testing.T) {
	reg := NewNonceRegistry()
	maker := common.HexToAddress("0x1111111111111111111111111111111111111111")
	stranger := common.HexToAddress("0x9999999999999999999999999999999999999999")
	order := registryOrder(maker)

	_, err := reg.CancelOrder(stranger, order)
	assert.ErrorIs(t, err, ErrUnauthorized)

	hash, hashErr := chain.HashOrder(order)
	require.NoError(t, hashErr)
	assert.False(t, reg.IsConsumed(hash))
}
