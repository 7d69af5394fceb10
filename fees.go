package nftexchange

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/kaifufi/nft-exchange-go/chain"
)

// InverseBasisPoint is the denominator of fee rates: 10000 bps = 100%
const InverseBasisPoint = 10000

// FeePayment is a computed per-recipient fee amount
type FeePayment struct {
	Recipient common.Address
	Amount    *big.Int
}

// ValidateFeeRates checks the rate-sum invariant of a fee schedule
func ValidateFeeRates(fees []chain.Fee) error {
	total := 0
	for _, fee := range fees {
		total += int(fee.Rate)
	}
	if total > InverseBasisPoint {
		return fmt.Errorf("%w: total rate %d bps", ErrFeeOverflow, total)
	}
	return nil
}

// SplitFees maps a settlement price and fee schedule to per-recipient
// amounts plus the seller remainder. Each fee is floor(price*rate/10000);
// sub-unit rounding remainders accrue to the seller. Fails before any
// transfer if the accumulated fees would exceed the price.
func SplitFees(price *big.Int, fees []chain.Fee) ([]FeePayment, *big.Int, error) {
	if price == nil || price.Sign() < 0 {
		return nil, nil, fmt.Errorf("%w: invalid price", ErrFeeOverflow)
	}

	payments := make([]FeePayment, 0, len(fees))
	totalFees := new(big.Int)

	for _, fee := range fees {
		amount := new(big.Int).Mul(price, big.NewInt(int64(fee.Rate)))
		amount.Div(amount, big.NewInt(InverseBasisPoint))
		totalFees.Add(totalFees, amount)
		payments = append(payments, FeePayment{Recipient: fee.Recipient, Amount: amount})
	}

	if totalFees.Cmp(price) > 0 {
		return nil, nil, fmt.Errorf("%w: fees %s exceed price %s", ErrFeeOverflow, totalFees, price)
	}

	remainder := new(big.Int).Sub(price, totalFees)
	return payments, remainder, nil
}
