// Package ledger provides in-memory asset ledgers implementing the
// exchange's external collaborator interfaces: a fungible ledger for
// native currency and tokens, and non-fungible / semi-fungible ledgers
// keyed by collection.
package ledger

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// FungibleLedger tracks fungible balances per token per owner. Native
// currency is keyed by the zero address.
type FungibleLedger struct {
	mu       sync.RWMutex
	balances map[common.Address]map[common.Address]*big.Int
}

// NewFungibleLedger creates an empty fungible ledger
func NewFungibleLedger() *FungibleLedger {
	return &FungibleLedger{balances: make(map[common.Address]map[common.Address]*big.Int)}
}

// Mint credits an owner's balance
func (l *FungibleLedger) Mint(token, owner common.Address, amount *big.Int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.balances[token] == nil {
		l.balances[token] = make(map[common.Address]*big.Int)
	}
	current := l.balances[token][owner]
	if current == nil {
		current = new(big.Int)
	}
	l.balances[token][owner] = new(big.Int).Add(current, amount)
}

// BalanceOf returns an owner's balance of a token
func (l *FungibleLedger) BalanceOf(token, owner common.Address) *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.balances[token] == nil || l.balances[token][owner] == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(l.balances[token][owner])
}

// Transfer moves funds between owners, rejecting overdrafts
func (l *FungibleLedger) Transfer(token, from, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return fmt.Errorf("invalid transfer amount")
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	owners := l.balances[token]
	if owners == nil || owners[from] == nil || owners[from].Cmp(amount) < 0 {
		return fmt.Errorf("insufficient balance of %s for %s", token, from)
	}

	owners[from] = new(big.Int).Sub(owners[from], amount)
	if owners[to] == nil {
		owners[to] = new(big.Int)
	}
	owners[to] = new(big.Int).Add(owners[to], amount)
	return nil
}

type tokenKey struct {
	collection common.Address
	id         string
}

// ERC721Ledger tracks single-owner tokens per collection
type ERC721Ledger struct {
	mu     sync.RWMutex
	owners map[tokenKey]common.Address
}

// NewERC721Ledger creates an empty non-fungible ledger
func NewERC721Ledger() *ERC721Ledger {
	return &ERC721Ledger{owners: make(map[tokenKey]common.Address)}
}

// Mint assigns a fresh token to an owner
func (l *ERC721Ledger) Mint(collection common.Address, tokenID *big.Int, owner common.Address) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.owners[tokenKey{collection, tokenID.String()}] = owner
}

// OwnerOf returns the owner of a token, or the zero address if unminted
func (l *ERC721Ledger) OwnerOf(collection common.Address, tokenID *big.Int) common.Address {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.owners[tokenKey{collection, tokenID.String()}]
}

// BalanceOf reports 1 if the owner holds the token, else 0
func (l *ERC721Ledger) BalanceOf(collection common.Address, tokenID *big.Int, owner common.Address) *big.Int {
	if l.OwnerOf(collection, tokenID) == owner {
		return big.NewInt(1)
	}
	return new(big.Int)
}

// Transfer moves a token between owners. Amount must be 1.
func (l *ERC721Ledger) Transfer(collection common.Address, from, to common.Address, tokenID, amount *big.Int) error {
	if amount == nil || amount.Cmp(big.NewInt(1)) != 0 {
		return fmt.Errorf("erc721 transfer amount must be 1")
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	key := tokenKey{collection, tokenID.String()}
	owner, ok := l.owners[key]
	if !ok {
		return fmt.Errorf("token %s/%s does not exist", collection, tokenID)
	}
	if owner != from {
		return fmt.Errorf("%s does not own token %s/%s", from, collection, tokenID)
	}
	l.owners[key] = to
	return nil
}

// ERC1155Ledger tracks per-owner quantities of semi-fungible tokens
type ERC1155Ledger struct {
	mu       sync.RWMutex
	balances map[tokenKey]map[common.Address]*big.Int
}

// NewERC1155Ledger creates an empty semi-fungible ledger
func NewERC1155Ledger() *ERC1155Ledger {
	return &ERC1155Ledger{balances: make(map[tokenKey]map[common.Address]*big.Int)}
}

// Mint credits an owner's quantity of a token
func (l *ERC1155Ledger) Mint(collection common.Address, tokenID *big.Int, owner common.Address, amount *big.Int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := tokenKey{collection, tokenID.String()}
	if l.balances[key] == nil {
		l.balances[key] = make(map[common.Address]*big.Int)
	}
	current := l.balances[key][owner]
	if current == nil {
		current = new(big.Int)
	}
	l.balances[key][owner] = new(big.Int).Add(current, amount)
}

// BalanceOf returns an owner's quantity of a token
func (l *ERC1155Ledger) BalanceOf(collection common.Address, tokenID *big.Int, owner common.Address) *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	key := tokenKey{collection, tokenID.String()}
	if l.balances[key] == nil || l.balances[key][owner] == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(l.balances[key][owner])
}

// Transfer moves a quantity between owners, rejecting overdrafts
func (l *ERC1155Ledger) Transfer(collection common.Address, from, to common.Address, tokenID, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return fmt.Errorf("invalid transfer amount")
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	key := tokenKey{collection, tokenID.String()}
	holders := l.balances[key]
	if holders == nil || holders[from] == nil || holders[from].Cmp(amount) < 0 {
		return fmt.Errorf("insufficient balance of %s/%s for %s", collection, tokenID, from)
	}

	holders[from] = new(big.Int).Sub(holders[from], amount)
	if holders[to] == nil {
		holders[to] = new(big.Int)
	}
	holders[to] = new(big.Int).Add(holders[to], amount)
	return nil
}
