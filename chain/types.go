package chain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Side represents the side of an order
type Side uint8

const (
	SideBuy Side = iota
	SideSell
)

func (s Side) String() string {
	if s == SideSell {
		return "sell"
	}
	return "buy"
}

// AssetClass represents the transfer semantics of the traded asset
type AssetClass uint8

const (
	AssetClassERC721 AssetClass = iota
	AssetClassERC1155
)

func (a AssetClass) String() string {
	if a == AssetClassERC1155 {
		return "erc1155"
	}
	return "erc721"
}

// Fee routes a basis-point share of the settlement price to a recipient
type Fee struct {
	Rate      uint16
	Recipient common.Address
}

// Order is an immutable, signed intent to buy or sell a specific asset.
// Mutating any field after hashing invalidates the signature.
type Order struct {
	Maker          common.Address
	Side           Side
	MatchingPolicy common.Address
	Collection     common.Address
	TokenID        *big.Int
	Amount         *big.Int
	PaymentToken   common.Address
	Price          *big.Int
	ListingTime    *big.Int
	ExpirationTime *big.Int
	Fees           []Fee
	Salt           *big.Int
	ExtraParams    []byte
	// Nonce is the maker's registry counter at signing time. Bumping the
	// registry counter invalidates every order signed under the old value.
	Nonce *big.Int
}

// SignedOrder represents an order with its authorizing signature
type SignedOrder struct {
	Order     *Order
	Signature []byte
}

// Input is the transport form consumed by the settlement engine.
// An empty Signature marks a self-authorized order: the submitting
// caller must itself be the maker.
type Input struct {
	Order     *Order
	Signature []byte
}

// OrderData represents the caller-supplied data for building an order
type OrderData struct {
	Maker          common.Address
	Side           Side
	MatchingPolicy common.Address
	Collection     common.Address
	TokenID        *big.Int
	Amount         *big.Int
	PaymentToken   common.Address
	Price          *big.Int
	ListingTime    *big.Int
	ExpirationTime *big.Int
	Fees           []Fee
	ExtraParams    []byte
	Nonce          *big.Int
}
