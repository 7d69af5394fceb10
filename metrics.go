package nftexchange

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SettlementsTotal counts successful settlements by asset class.
	SettlementsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exchange_settlements_total",
			Help: "Total number of settled trades by asset class",
		},
		[]string{"asset_class"},
	)

	// SettlementFailuresTotal counts rejected settlements by reason.
	SettlementFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exchange_settlement_failures_total",
			Help: "Total number of rejected settlements by reason",
		},
		[]string{"reason"},
	)

	// CancellationsTotal counts explicit single-order cancellations.
	CancellationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "exchange_cancellations_total",
			Help: "Total number of cancelled orders",
		},
	)

	// NonceIncrementsTotal counts bulk invalidations via nonce bump.
	NonceIncrementsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "exchange_nonce_increments_total",
			Help: "Total number of maker nonce increments",
		},
	)
)

// failureReason maps a settlement error to its metric label
func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrSignatureInvalid):
		return "signature_invalid"
	case errors.Is(err, ErrOrderExpired):
		return "order_expired"
	case errors.Is(err, ErrOrderConsumed):
		return "order_consumed"
	case errors.Is(err, ErrNonceMismatch):
		return "nonce_mismatch"
	case errors.Is(err, ErrOrdersDoNotMatch):
		return "orders_do_not_match"
	case errors.Is(err, ErrPolicyNotApproved):
		return "policy_not_approved"
	case errors.Is(err, ErrFeeOverflow):
		return "fee_overflow"
	case errors.Is(err, ErrInsufficientPayment):
		return "insufficient_payment"
	case errors.Is(err, ErrTransferFailed):
		return "transfer_failed"
	default:
		return "other"
	}
}
