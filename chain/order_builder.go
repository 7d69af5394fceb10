package chain

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"math/rand"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// OrderBuilder builds and signs orders for a single maker key
type OrderBuilder struct {
	domain *EIP712Domain
	signer *ecdsa.PrivateKey
}

// NewOrderBuilder creates a new OrderBuilder bound to the exchange domain
func NewOrderBuilder(chainID int64, verifyingContract common.Address, signer *ecdsa.PrivateKey) *OrderBuilder {
	return &OrderBuilder{
		domain: NewEIP712Domain(big.NewInt(chainID), verifyingContract),
		signer: signer,
	}
}

// Domain returns the EIP712 domain the builder signs under
func (ob *OrderBuilder) Domain() *EIP712Domain {
	return ob.domain
}

// SignerAddress returns the address of the builder's signing key
func (ob *OrderBuilder) SignerAddress() common.Address {
	return crypto.PubkeyToAddress(ob.signer.PublicKey)
}

// BuildOrder builds an order from OrderData
func (ob *OrderBuilder) BuildOrder(data *OrderData) (*Order, error) {
	if err := ob.validateInputs(data); err != nil {
		return nil, err
	}

	listingTime := data.ListingTime
	if listingTime == nil {
		listingTime = big.NewInt(time.Now().Unix() - 1)
	}

	expirationTime := data.ExpirationTime
	if expirationTime == nil {
		expirationTime = big.NewInt(0)
	}

	nonce := data.Nonce
	if nonce == nil {
		nonce = big.NewInt(0)
	}

	order := &Order{
		Maker:          data.Maker,
		Side:           data.Side,
		MatchingPolicy: data.MatchingPolicy,
		Collection:     data.Collection,
		TokenID:        data.TokenID,
		Amount:         data.Amount,
		PaymentToken:   data.PaymentToken,
		Price:          data.Price,
		ListingTime:    listingTime,
		ExpirationTime: expirationTime,
		Fees:           data.Fees,
		Salt:           ob.generateSalt(),
		ExtraParams:    data.ExtraParams,
		Nonce:          nonce,
	}

	return order, nil
}

// BuildSignedOrder builds and signs an order
func (ob *OrderBuilder) BuildSignedOrder(data *OrderData) (*SignedOrder, error) {
	order, err := ob.BuildOrder(data)
	if err != nil {
		return nil, err
	}

	signature, err := ob.SignOrder(order)
	if err != nil {
		return nil, err
	}

	return &SignedOrder{
		Order:     order,
		Signature: signature,
	}, nil
}

// SignOrder signs the EIP712 digest of an order with the builder's key
func (ob *OrderBuilder) SignOrder(order *Order) ([]byte, error) {
	orderHash, err := HashOrder(order)
	if err != nil {
		return nil, err
	}

	digest := HashToSign(ob.domain, orderHash)

	signature, err := crypto.Sign(digest.Bytes(), ob.signer)
	if err != nil {
		return nil, fmt.Errorf("failed to sign order: %w", err)
	}

	// Normalize recovery id to 27/28
	signature[64] += 27

	return signature, nil
}

// Pack produces the transport form bundling order fields and authorization
func Pack(order *Order, signature []byte) *Input {
	return &Input{Order: order, Signature: signature}
}

// PackNoSigs produces the transport form for a maker who authorizes
// implicitly by being the submitting caller; no signature is attached.
func PackNoSigs(order *Order) *Input {
	return &Input{Order: order}
}

// Pack bundles the signed order into its transport form
func (so *SignedOrder) Pack() *Input {
	return Pack(so.Order, so.Signature)
}

func (ob *OrderBuilder) validateInputs(data *OrderData) error {
	if data.Maker == (common.Address{}) {
		return fmt.Errorf("maker is required")
	}
	if data.Collection == (common.Address{}) {
		return fmt.Errorf("collection is required")
	}
	if data.TokenID == nil {
		return ErrMissingTokenID
	}
	if data.Amount == nil || data.Amount.Sign() <= 0 {
		return ErrMissingAmount
	}
	if data.Price == nil {
		return ErrMissingPrice
	}
	if data.Price.Sign() < 0 {
		return ErrNegativePrice
	}
	if data.Side != SideBuy && data.Side != SideSell {
		return fmt.Errorf("invalid side")
	}
	return nil
}

func (ob *OrderBuilder) generateSalt() *big.Int {
	now := time.Now().UnixNano()
	random := rand.Int63()
	salt := new(big.Int).Mul(big.NewInt(now), big.NewInt(random))
	return salt.Abs(salt)
}
