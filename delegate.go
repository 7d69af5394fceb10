package nftexchange

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/kaifufi/nft-exchange-go/chain"
)

// NativeToken is the payment-token sentinel denoting native currency
var NativeToken = common.Address{}

// FungibleLedger is the external account ledger for native currency and
// fungible tokens. Native currency is keyed by the zero address.
type FungibleLedger interface {
	BalanceOf(token, owner common.Address) *big.Int
	Transfer(token, from, to common.Address, amount *big.Int) error
}

// AssetLedger is the external ledger for non-fungible and semi-fungible
// assets. For ERC721-style assets amount is always 1.
type AssetLedger interface {
	BalanceOf(collection common.Address, tokenID *big.Int, owner common.Address) *big.Int
	Transfer(collection common.Address, from, to common.Address, tokenID, amount *big.Int) error
}

// ExecutionDelegate is the sole authorized conduit for moving assets on
// behalf of approving owners. Each owner grants approval once to the
// delegate rather than once per counterparty; revocation is a single
// action that blocks all further transfers from that owner.
type ExecutionDelegate struct {
	mu       sync.RWMutex
	approved map[common.Address]bool

	funds    FungibleLedger
	erc721s  AssetLedger
	erc1155s AssetLedger
}

// NewExecutionDelegate creates a delegate over the given ledgers
func NewExecutionDelegate(funds FungibleLedger, erc721s, erc1155s AssetLedger) *ExecutionDelegate {
	return &ExecutionDelegate{
		approved: make(map[common.Address]bool),
		funds:    funds,
		erc721s:  erc721s,
		erc1155s: erc1155s,
	}
}

// GrantApproval authorizes the delegate to move the owner's assets.
// Granted out of band by the owning identity, never by the engine.
func (d *ExecutionDelegate) GrantApproval(owner common.Address) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.approved[owner] = true
}

// RevokeApproval withdraws the owner's grant in a single action
func (d *ExecutionDelegate) RevokeApproval(owner common.Address) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.approved, owner)
}

// HasApproval reports whether the owner has granted transfer authority
func (d *ExecutionDelegate) HasApproval(owner common.Address) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.approved[owner]
}

// Transfer moves a non-fungible or semi-fungible asset on behalf of an
// approving owner
func (d *ExecutionDelegate) Transfer(class chain.AssetClass, from, to common.Address, collection common.Address, tokenID, amount *big.Int) error {
	if !d.HasApproval(from) {
		return fmt.Errorf("%w: %s has not approved the delegate", ErrTransferFailed, from)
	}
	return d.transferAsset(class, from, to, collection, tokenID, amount)
}

// TransferPayment moves currency on behalf of an approving owner. The
// zero-address token denotes native currency.
func (d *ExecutionDelegate) TransferPayment(token, from, to common.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	if !d.HasApproval(from) {
		return fmt.Errorf("%w: %s has not approved the delegate", ErrTransferFailed, from)
	}
	return d.transferFunds(token, from, to, amount)
}

func (d *ExecutionDelegate) transferAsset(class chain.AssetClass, from, to common.Address, collection common.Address, tokenID, amount *big.Int) error {
	ledger := d.erc721s
	if class == chain.AssetClassERC1155 {
		ledger = d.erc1155s
	}
	if err := ledger.Transfer(collection, from, to, tokenID, amount); err != nil {
		return fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	return nil
}

func (d *ExecutionDelegate) transferFunds(token, from, to common.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	if err := d.funds.Transfer(token, from, to, amount); err != nil {
		return fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	return nil
}

// transferOp is a single buffered asset movement inside a settlement
type transferOp struct {
	payment  bool
	class    chain.AssetClass
	token    common.Address // payment token or collection
	from, to common.Address
	tokenID  *big.Int
	amount   *big.Int
}

func (op transferOp) execute(d *ExecutionDelegate) error {
	if op.payment {
		return d.TransferPayment(op.token, op.from, op.to, op.amount)
	}
	return d.Transfer(op.class, op.from, op.to, op.token, op.tokenID, op.amount)
}

// undo reverses an already-applied op. Approval checks are skipped: the
// receiving party never granted one, and the delegate itself performed
// the movement being reversed.
func (op transferOp) undo(d *ExecutionDelegate) error {
	if op.payment {
		return d.transferFunds(op.token, op.to, op.from, op.amount)
	}
	return d.transferAsset(op.class, op.to, op.from, op.token, op.tokenID, op.amount)
}

// apply performs a buffered sequence of movements atomically: if any
// movement fails, every movement already performed in this call is
// reversed before returning, so no partial settlement is observable.
func (d *ExecutionDelegate) apply(ops []transferOp) error {
	for i, op := range ops {
		if err := op.execute(d); err != nil {
			for j := i - 1; j >= 0; j-- {
				if undoErr := ops[j].undo(d); undoErr != nil {
					// The delegate moved these assets moments ago, so the
					// reversal cannot be rejected by balance checks.
					panic(fmt.Sprintf("settlement rollback failed: %v", undoErr))
				}
			}
			return err
		}
	}
	return nil
}
