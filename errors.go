package nftexchange

import "errors"

var (
	// ErrSignatureInvalid represents an order whose authorization signature
	// does not recover to the maker
	ErrSignatureInvalid = errors.New("signature invalid")

	// ErrOrderExpired represents an order outside its listing window
	ErrOrderExpired = errors.New("order expired")

	// ErrOrderConsumed represents an order already settled or cancelled
	ErrOrderConsumed = errors.New("order already consumed")

	// ErrNonceMismatch represents an order signed under a stale maker nonce
	ErrNonceMismatch = errors.New("order nonce mismatch")

	// ErrOrdersDoNotMatch represents a sell/buy pair the matching policy rejected
	ErrOrdersDoNotMatch = errors.New("orders do not match")

	// ErrPolicyNotApproved represents an order referencing an unregistered matching policy
	ErrPolicyNotApproved = errors.New("matching policy not approved")

	// ErrFeeOverflow represents a fee schedule consuming more than the settlement price
	ErrFeeOverflow = errors.New("fees exceed price")

	// ErrInsufficientPayment represents an attached value short of the settlement price
	ErrInsufficientPayment = errors.New("insufficient payment")

	// ErrTransferFailed represents an asset movement the underlying ledger rejected
	ErrTransferFailed = errors.New("transfer failed")

	// ErrUnauthorized represents a maker-only operation invoked by a non-maker
	ErrUnauthorized = errors.New("caller is not the maker")
)
