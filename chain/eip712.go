package chain

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Order hashing errors
var (
	ErrNilOrder       = errors.New("nil order")
	ErrMissingTokenID = errors.New("order token ID is required")
	ErrMissingAmount  = errors.New("order amount is required")
	ErrMissingPrice   = errors.New("order price is required")
	ErrNegativePrice  = errors.New("order price must not be negative")
	ErrMissingNonce   = errors.New("order nonce is required")
)

// EIP712 domain constants
const (
	EIP712DomainName    = "NFT Exchange"
	EIP712DomainVersion = "1.0"
)

// Pre-computed type hashes using keccak256
var (
	// EIP712Domain(string name,string version,uint256 chainId,address verifyingContract)
	EIP712DomainTypeHash = crypto.Keccak256Hash([]byte(
		"EIP712Domain(string name,string version,uint256 chainId,address verifyingContract)",
	))

	// Fee(uint16 rate,address recipient)
	FeeTypeHash = crypto.Keccak256Hash([]byte(
		"Fee(uint16 rate,address recipient)",
	))

	// Order(address maker,uint8 side,address matchingPolicy,address collection,uint256 tokenId,uint256 amount,address paymentToken,uint256 price,uint256 listingTime,uint256 expirationTime,Fee[] fees,uint256 salt,bytes extraParams,uint256 nonce)Fee(uint16 rate,address recipient)
	OrderTypeHash = crypto.Keccak256Hash([]byte(
		"Order(address maker,uint8 side,address matchingPolicy,address collection,uint256 tokenId,uint256 amount,address paymentToken,uint256 price,uint256 listingTime,uint256 expirationTime,Fee[] fees,uint256 salt,bytes extraParams,uint256 nonce)Fee(uint16 rate,address recipient)",
	))
)

// EIP712Domain represents the EIP712 domain separator data
type EIP712Domain struct {
	Name              string
	Version           string
	ChainID           *big.Int
	VerifyingContract common.Address
}

// NewEIP712Domain creates a new EIP712Domain with the standard values
func NewEIP712Domain(chainID *big.Int, verifyingContract common.Address) *EIP712Domain {
	return &EIP712Domain{
		Name:              EIP712DomainName,
		Version:           EIP712DomainVersion,
		ChainID:           chainID,
		VerifyingContract: verifyingContract,
	}
}

// Hash computes the EIP712 domain separator hash
func (d *EIP712Domain) Hash() common.Hash {
	nameHash := crypto.Keccak256Hash([]byte(d.Name))
	versionHash := crypto.Keccak256Hash([]byte(d.Version))

	// The encoding is: typeHash ++ keccak256(name) ++ keccak256(version) ++ chainId ++ verifyingContract
	bytes32Type, _ := abi.NewType("bytes32", "", nil)
	uint256Type, _ := abi.NewType("uint256", "", nil)
	addressType, _ := abi.NewType("address", "", nil)

	arguments := abi.Arguments{
		{Type: bytes32Type}, // typeHash
		{Type: bytes32Type}, // nameHash
		{Type: bytes32Type}, // versionHash
		{Type: uint256Type}, // chainId
		{Type: addressType}, // verifyingContract
	}

	encoded, err := arguments.Pack(
		EIP712DomainTypeHash,
		nameHash,
		versionHash,
		d.ChainID,
		d.VerifyingContract,
	)
	if err != nil {
		panic("failed to encode domain separator: " + err.Error())
	}

	return crypto.Keccak256Hash(encoded)
}

// hashFee computes the struct hash for a single fee entry
func hashFee(fee Fee) common.Hash {
	bytes32Type, _ := abi.NewType("bytes32", "", nil)
	uint16Type, _ := abi.NewType("uint16", "", nil)
	addressType, _ := abi.NewType("address", "", nil)

	arguments := abi.Arguments{
		{Type: bytes32Type}, // typeHash
		{Type: uint16Type},  // rate
		{Type: addressType}, // recipient
	}

	encoded, err := arguments.Pack(FeeTypeHash, fee.Rate, fee.Recipient)
	if err != nil {
		panic("failed to encode fee struct: " + err.Error())
	}

	return crypto.Keccak256Hash(encoded)
}

// hashFees computes the EIP712 array hash for an order's fee schedule:
// keccak256 of the concatenated per-entry struct hashes.
func hashFees(fees []Fee) common.Hash {
	data := make([]byte, 0, len(fees)*common.HashLength)
	for _, fee := range fees {
		h := hashFee(fee)
		data = append(data, h.Bytes()...)
	}
	return crypto.Keccak256Hash(data)
}

// HashOrder computes the canonical struct hash of an order's semantic
// fields. The hash is domain-separated per field type, so two orders hash
// identically iff every field is identical, and is used both as the
// signing payload and as the order's identity in the consumed-set.
func HashOrder(order *Order) (common.Hash, error) {
	if order == nil {
		return common.Hash{}, ErrNilOrder
	}
	if order.TokenID == nil {
		return common.Hash{}, ErrMissingTokenID
	}
	if order.Amount == nil {
		return common.Hash{}, ErrMissingAmount
	}
	if order.Price == nil {
		return common.Hash{}, ErrMissingPrice
	}
	if order.Price.Sign() < 0 {
		return common.Hash{}, ErrNegativePrice
	}
	if order.Nonce == nil {
		return common.Hash{}, ErrMissingNonce
	}

	bytes32Type, _ := abi.NewType("bytes32", "", nil)
	addressType, _ := abi.NewType("address", "", nil)
	uint256Type, _ := abi.NewType("uint256", "", nil)
	uint8Type, _ := abi.NewType("uint8", "", nil)

	arguments := abi.Arguments{
		{Type: bytes32Type}, // typeHash
		{Type: addressType}, // maker
		{Type: uint8Type},   // side
		{Type: addressType}, // matchingPolicy
		{Type: addressType}, // collection
		{Type: uint256Type}, // tokenId
		{Type: uint256Type}, // amount
		{Type: addressType}, // paymentToken
		{Type: uint256Type}, // price
		{Type: uint256Type}, // listingTime
		{Type: uint256Type}, // expirationTime
		{Type: bytes32Type}, // keccak256 of fee struct hashes
		{Type: uint256Type}, // salt
		{Type: bytes32Type}, // keccak256 of extraParams
		{Type: uint256Type}, // nonce
	}

	encoded, err := arguments.Pack(
		OrderTypeHash,
		order.Maker,
		uint8(order.Side),
		order.MatchingPolicy,
		order.Collection,
		order.TokenID,
		order.Amount,
		order.PaymentToken,
		order.Price,
		bigOrZero(order.ListingTime),
		bigOrZero(order.ExpirationTime),
		hashFees(order.Fees),
		bigOrZero(order.Salt),
		crypto.Keccak256Hash(order.ExtraParams),
		order.Nonce,
	)
	if err != nil {
		panic("failed to encode order struct: " + err.Error())
	}

	return crypto.Keccak256Hash(encoded), nil
}

// HashToSign creates the final EIP712 digest to be signed.
// This follows the EIP712 specification: keccak256("\x19\x01" ++ domainSeparator ++ structHash)
func HashToSign(domain *EIP712Domain, orderHash common.Hash) common.Hash {
	domainSeparator := domain.Hash()

	prefix := []byte{0x19, 0x01}

	data := make([]byte, 0, 2+32+32)
	data = append(data, prefix...)
	data = append(data, domainSeparator.Bytes()...)
	data = append(data, orderHash.Bytes()...)

	return crypto.Keccak256Hash(data)
}

func bigOrZero(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return v
}
