package nftexchange

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Config holds the engine's domain parameters
type Config struct {
	// ChainID scopes order signatures to one deployment
	ChainID int64
	// VerifyingContract is the exchange identity embedded in the EIP712
	// domain separator
	VerifyingContract common.Address
}

// DefaultChainID is used when the config leaves ChainID unset
const DefaultChainID = 1

func (c Config) chainID() *big.Int {
	if c.ChainID == 0 {
		return big.NewInt(DefaultChainID)
	}
	return big.NewInt(c.ChainID)
}
