package nftexchange

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaifufi/nft-exchange-go/chain"
)

func eth(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
}

var (
	cal = common.HexToAddress("0xCa10000000000000000000000000000000000001")
	abe = common.HexToAddress("0xabe0000000000000000000000000000000000002")
)

func TestSplitFees_MarketplaceAndRoyalty(t *testing.T) {
	price := eth(10)
	fees := []chain.Fee{
		{Rate: 500, Recipient: cal},
		{Rate: 1000, Recipient: abe},
	}

	payments, remainder, err := SplitFees(price, fees)
	require.NoError(t, err)
	require.Len(t, payments, 2)

	// 500 bps of 10 units, 1000 bps of 10 units
	half := new(big.Int).Div(eth(1), big.NewInt(2))
	assert.Equal(t, 0, payments[0].Amount.Cmp(half), "cal receives 0.5 units")
	assert.Equal(t, 0, payments[1].Amount.Cmp(eth(1)), "abe receives 1 unit")

	expectedRemainder := new(big.Int).Sub(eth(10), new(big.Int).Add(half, eth(1)))
	assert.Equal(t, 0, remainder.Cmp(expectedRemainder), "seller receives 8.5 units")
}

func TestSplitFees_NoFees(t *testing.T) {
	price := eth(3)
	payments, remainder, err := SplitFees(price, nil)
	require.NoError(t, err)
	assert.Empty(t, payments)
	assert.Equal(t, 0, remainder.Cmp(price))
}

func TestSplitFees_Conservation(t *testing.T) {
	schedules := [][]chain.Fee{
		{},
		{{Rate: 1, Recipient: cal}},
		{{Rate: 9999, Recipient: cal}},
		{{Rate: 10000, Recipient: cal}},
		{{Rate: 250, Recipient: cal}, {Rate: 250, Recipient: abe}},
		{{Rate: 3333, Recipient: cal}, {Rate: 3333, Recipient: abe}, {Rate: 3334, Recipient: cal}},
	}
	prices := []*big.Int{big.NewInt(1), big.NewInt(3), big.NewInt(9999), eth(10), eth(123456)}

	for _, price := range prices {
		for _, fees := range schedules {
			payments, remainder, err := SplitFees(price, fees)
			require.NoError(t, err)

			total := new(big.Int).Set(remainder)
			for _, p := range payments {
				total.Add(total, p.Amount)
			}
			assert.Equal(t, 0, total.Cmp(price),
				"fees plus remainder must equal price %s exactly", price)
		}
	}
}

func TestSplitFees_FloorRoundingToSeller(t *testing.T) {
	// 1 bps of 9999 floors to 0; the sub-unit remainder stays with the seller
	payments, remainder, err := SplitFees(big.NewInt(9999), []chain.Fee{{Rate: 1, Recipient: cal}})
	require.NoError(t, err)
	assert.Equal(t, int64(0), payments[0].Amount.Int64())
	assert.Equal(t, int64(9999), remainder.Int64())
}

func TestValidateFeeRates(t *testing.T) {
	assert.NoError(t, ValidateFeeRates(nil))
	assert.NoError(t, ValidateFeeRates([]chain.Fee{{Rate: 10000, Recipient: cal}}))
	assert.ErrorIs(t, ValidateFeeRates([]chain.Fee{
		{Rate: 9000, Recipient: cal},
		{Rate: 1001, Recipient: abe},
	}), ErrFeeOverflow)
}

func TestSplitFees_Overflow(t *testing.T) {
	fees := []chain.Fee{
		{Rate: 6000, Recipient: cal},
		{Rate: 6000, Recipient: abe},
	}
	_, _, err := SplitFees(eth(1), fees)
	assert.ErrorIs(t, err, ErrFeeOverflow)
}
