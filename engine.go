package nftexchange

import (
	"fmt"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"github.com/kaifufi/nft-exchange-go/chain"
)

// Execution is one sell/buy pair submitted for settlement
type Execution struct {
	Sell *chain.Input
	Buy  *chain.Input
}

// Receipt is the record emitted for each settled trade
type Receipt struct {
	ID           string
	SellHash     common.Hash
	BuyHash      common.Hash
	Maker        common.Address
	Taker        common.Address
	Collection   common.Address
	TokenID      *big.Int
	Amount       *big.Int
	PaymentToken common.Address
	Price        *big.Int
	Fees         []FeePayment
}

// BulkResult is the per-item outcome of a BulkExecute call
type BulkResult struct {
	Receipt *Receipt
	Err     error
}

// Engine validates, matches and atomically settles signed order pairs.
// Each Execute/BulkExecute invocation is the unit of atomicity; a mutex
// serializes settlements so the consumed-set and nonce counters are never
// revalidated stale.
type Engine struct {
	mu       sync.Mutex
	domain   *chain.EIP712Domain
	policies *PolicyRegistry
	registry *NonceRegistry
	delegate *ExecutionDelegate
	logger   *slog.Logger
	now      func() time.Time
}

// NewEngine creates a settlement engine over the given collaborators
func NewEngine(cfg Config, policies *PolicyRegistry, registry *NonceRegistry, delegate *ExecutionDelegate, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		domain:   chain.NewEIP712Domain(cfg.chainID(), cfg.VerifyingContract),
		policies: policies,
		registry: registry,
		delegate: delegate,
		logger:   logger,
		now:      time.Now,
	}
}

// Domain returns the EIP712 domain orders must be signed under
func (e *Engine) Domain() *chain.EIP712Domain {
	return e.domain
}

// Execute validates, matches and settles a single sell/buy pair. Any
// failure at any step aborts the whole call with no partial effect. For a
// native-currency leg attachedValue must cover the settlement price.
func (e *Engine) Execute(caller common.Address, sell, buy *chain.Input, attachedValue *big.Int) (*Receipt, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.execute(caller, sell, buy, attachedValue)
}

// BulkExecute settles a list of sell/buy pairs in one call. For
// native-currency legs the attached value must equal the sum of the list
// prices across the whole batch. Failures are isolated per item: a stale
// or consumed order fails its own pair and the rest of the sweep settles,
// with the per-item outcome reported in order.
func (e *Engine) BulkExecute(caller common.Address, executions []Execution, attachedValue *big.Int) ([]BulkResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	nativeTotal := new(big.Int)
	for _, exec := range executions {
		if exec.Sell == nil || exec.Sell.Order == nil || exec.Sell.Order.Price == nil {
			continue
		}
		if exec.Sell.Order.PaymentToken == NativeToken {
			nativeTotal.Add(nativeTotal, exec.Sell.Order.Price)
		}
	}

	attached := attachedValue
	if attached == nil {
		attached = new(big.Int)
	}
	if attached.Cmp(nativeTotal) != 0 {
		return nil, fmt.Errorf("%w: attached value %s does not equal native leg total %s",
			ErrInsufficientPayment, attached, nativeTotal)
	}

	results := make([]BulkResult, 0, len(executions))
	settled := 0
	for _, exec := range executions {
		var itemValue *big.Int
		if exec.Sell != nil && exec.Sell.Order != nil && exec.Sell.Order.PaymentToken == NativeToken {
			itemValue = exec.Sell.Order.Price
		}
		receipt, err := e.execute(caller, exec.Sell, exec.Buy, itemValue)
		if err == nil {
			settled++
		}
		results = append(results, BulkResult{Receipt: receipt, Err: err})
	}

	e.logger.Info("bulk settlement finished",
		"submitted", len(executions),
		"settled", settled,
		"taker", caller.Hex(),
	)
	return results, nil
}

func (e *Engine) execute(caller common.Address, sell, buy *chain.Input, attachedValue *big.Int) (*Receipt, error) {
	receipt, err := e.settle(caller, sell, buy, attachedValue)
	if err != nil {
		SettlementFailuresTotal.WithLabelValues(failureReason(err)).Inc()
		return nil, err
	}
	return receipt, nil
}

func (e *Engine) settle(caller common.Address, sell, buy *chain.Input, attachedValue *big.Int) (*Receipt, error) {
	if sell == nil || buy == nil || sell.Order == nil || buy.Order == nil {
		return nil, fmt.Errorf("%w: missing order input", ErrOrdersDoNotMatch)
	}

	sellHash, err := chain.HashOrder(sell.Order)
	if err != nil {
		return nil, fmt.Errorf("invalid sell order: %w", err)
	}
	buyHash, err := chain.HashOrder(buy.Order)
	if err != nil {
		return nil, fmt.Errorf("invalid buy order: %w", err)
	}

	if err := e.validateOrder(caller, sell, sellHash); err != nil {
		return nil, err
	}
	if err := e.validateOrder(caller, buy, buyHash); err != nil {
		return nil, err
	}

	if sell.Order.Side != chain.SideSell || buy.Order.Side != chain.SideBuy {
		return nil, fmt.Errorf("%w: sides reversed", ErrOrdersDoNotMatch)
	}

	result, err := e.matchOrders(sell.Order, buy.Order)
	if err != nil {
		return nil, err
	}

	// Fees are seller-borne under the standard policies
	feePayments, sellerAmount, err := SplitFees(result.Price, sell.Order.Fees)
	if err != nil {
		return nil, err
	}

	if result.PaymentToken == NativeToken {
		attached := attachedValue
		if attached == nil {
			attached = new(big.Int)
		}
		if attached.Cmp(result.Price) < 0 {
			return nil, fmt.Errorf("%w: attached %s, price %s", ErrInsufficientPayment, attached, result.Price)
		}
	}

	seller := sell.Order.Maker
	buyer := buy.Order.Maker

	ops := make([]transferOp, 0, len(feePayments)+2)
	ops = append(ops, transferOp{
		class:   result.AssetClass,
		token:   sell.Order.Collection,
		from:    seller,
		to:      buyer,
		tokenID: result.TokenID,
		amount:  result.Amount,
	})
	for _, fee := range feePayments {
		ops = append(ops, transferOp{
			payment: true,
			token:   result.PaymentToken,
			from:    buyer,
			to:      fee.Recipient,
			amount:  fee.Amount,
		})
	}
	ops = append(ops, transferOp{
		payment: true,
		token:   result.PaymentToken,
		from:    buyer,
		to:      seller,
		amount:  sellerAmount,
	})

	if err := e.delegate.apply(ops); err != nil {
		return nil, err
	}

	e.registry.MarkConsumed(sellHash)
	e.registry.MarkConsumed(buyHash)

	receipt := &Receipt{
		ID:           uuid.NewString(),
		SellHash:     sellHash,
		BuyHash:      buyHash,
		Maker:        seller,
		Taker:        buyer,
		Collection:   sell.Order.Collection,
		TokenID:      result.TokenID,
		Amount:       result.Amount,
		PaymentToken: result.PaymentToken,
		Price:        result.Price,
		Fees:         feePayments,
	}

	SettlementsTotal.WithLabelValues(result.AssetClass.String()).Inc()
	e.logger.Info("orders matched",
		"sell_hash", sellHash.Hex(),
		"buy_hash", buyHash.Hex(),
		"maker", seller.Hex(),
		"taker", buyer.Hex(),
		"collection", receipt.Collection.Hex(),
		"token_id", result.TokenID.String(),
		"price", result.Price.String(),
	)

	return receipt, nil
}

// validateOrder checks one order independently of its counterparty:
// listing window, consumed-set, registry nonce, fee schedule, and
// authorization.
func (e *Engine) validateOrder(caller common.Address, input *chain.Input, orderHash common.Hash) error {
	order := input.Order

	if err := e.checkListingWindow(order, orderHash); err != nil {
		return err
	}

	if e.registry.IsConsumed(orderHash) {
		return fmt.Errorf("%w: %s", ErrOrderConsumed, orderHash)
	}

	current := new(big.Int).SetUint64(e.registry.CurrentNonce(order.Maker))
	if order.Nonce.Cmp(current) != 0 {
		return fmt.Errorf("%w: order %s signed under nonce %s, current %s",
			ErrNonceMismatch, orderHash, order.Nonce, current)
	}

	if err := ValidateFeeRates(order.Fees); err != nil {
		return err
	}

	if caller == order.Maker {
		// Self-authorization: the submitting caller is the maker, so no
		// signature is required. Kept as an explicit, logged branch.
		e.logger.Debug("order self-authorized by caller",
			"order_hash", orderHash.Hex(),
			"maker", order.Maker.Hex(),
		)
		return nil
	}

	digest := chain.HashToSign(e.domain, orderHash)
	if !chain.VerifySignature(digest, input.Signature, order.Maker) {
		return fmt.Errorf("%w: order %s", ErrSignatureInvalid, orderHash)
	}
	return nil
}

// checkListingWindow verifies the order is inside its settleable window:
// listing time passed and expiration (zero = open-ended) not reached.
func (e *Engine) checkListingWindow(order *chain.Order, orderHash common.Hash) error {
	now := big.NewInt(e.now().Unix())

	if order.ListingTime != nil && order.ListingTime.Cmp(now) >= 0 {
		return fmt.Errorf("%w: order %s not yet listed", ErrOrderExpired, orderHash)
	}
	if order.ExpirationTime != nil && order.ExpirationTime.Sign() != 0 && order.ExpirationTime.Cmp(now) <= 0 {
		return fmt.Errorf("%w: order %s", ErrOrderExpired, orderHash)
	}
	return nil
}

// matchOrders selects and invokes the adjudicating policy. The order
// listed first is the maker, and its policy governs the match.
func (e *Engine) matchOrders(sell, buy *chain.Order) (*MatchResult, error) {
	sellListing := bigOrZero(sell.ListingTime)
	buyListing := bigOrZero(buy.ListingTime)

	var policyID common.Address
	makerAsk := sellListing.Cmp(buyListing) <= 0
	if makerAsk {
		policyID = sell.MatchingPolicy
	} else {
		policyID = buy.MatchingPolicy
	}

	policy, ok := e.policies.Lookup(policyID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPolicyNotApproved, policyID)
	}

	var result *MatchResult
	var matched bool
	if makerAsk {
		result, matched = policy.CanMatchMakerAsk(sell, buy)
	} else {
		result, matched = policy.CanMatchMakerBid(sell, buy)
	}
	if !matched {
		return nil, ErrOrdersDoNotMatch
	}
	return result, nil
}

// CancelOrder marks a specific order consumed without settlement.
// Maker-only. Returns the cancelled order's hash.
func (e *Engine) CancelOrder(caller common.Address, order *chain.Order) (common.Hash, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	orderHash, err := e.registry.CancelOrder(caller, order)
	if err != nil {
		return common.Hash{}, err
	}

	CancellationsTotal.Inc()
	e.logger.Info("order cancelled", "order_hash", orderHash.Hex(), "maker", caller.Hex())
	return orderHash, nil
}

// IncrementNonce invalidates every order the caller signed under the
// prior nonce in one operation. Returns the new nonce.
func (e *Engine) IncrementNonce(caller common.Address) uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	newNonce := e.registry.IncrementNonce(caller)

	NonceIncrementsTotal.Inc()
	e.logger.Info("nonce incremented", "maker", caller.Hex(), "new_nonce", newNonce)
	return newNonce
}

func bigOrZero(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return v
}
