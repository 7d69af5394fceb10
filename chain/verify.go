package chain

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// SignatureLength is the expected r||s||v signature length in bytes
const SignatureLength = 65

var ErrInvalidSignatureLength = errors.New("signature must be 65 bytes")

// RecoverSigner recovers the signing address from a 65-byte r||s||v
// signature over the given EIP712 digest. Both 0/1 and 27/28 recovery
// identifiers are accepted.
func RecoverSigner(digest common.Hash, signature []byte) (common.Address, error) {
	if len(signature) != SignatureLength {
		return common.Address{}, ErrInvalidSignatureLength
	}

	sig := make([]byte, SignatureLength)
	copy(sig, signature)
	if sig[64] >= 27 {
		sig[64] -= 27
	}

	pubKey, err := crypto.SigToPub(digest.Bytes(), sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to recover public key: %w", err)
	}

	return crypto.PubkeyToAddress(*pubKey), nil
}

// VerifySignature reports whether the signature over the digest was
// produced by the expected signer. Recovery failures report false rather
// than propagating; the settlement engine converts a negative result into
// its signature error.
func VerifySignature(digest common.Hash, signature []byte, expected common.Address) bool {
	recovered, err := RecoverSigner(digest, signature)
	if err != nil {
		return false
	}
	return recovered == expected
}
