// Example usage of the settlement engine: two makers trade an NFT for
// native currency, first singly, then as a three-item sweep.
package main

import (
	"fmt"
	"log"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	nftexchange "github.com/kaifufi/nft-exchange-go"
	"github.com/kaifufi/nft-exchange-go/chain"
	"github.com/kaifufi/nft-exchange-go/ledger"
)

func main() {
	exchangeAddr := common.HexToAddress("0x000000000000Ad05Ccc4F10045630fb830B95127")
	policyID := common.HexToAddress("0x0000000000000000000000000000000000000721")
	collection := common.HexToAddress("0xED5AF388653567Af2F388E6224dC7C4b3241C544")

	// External collaborators: in-memory ledgers and the transfer conduit
	funds := ledger.NewFungibleLedger()
	nfts := ledger.NewERC721Ledger()
	multi := ledger.NewERC1155Ledger()
	delegate := nftexchange.NewExecutionDelegate(funds, nfts, multi)

	policies := nftexchange.NewPolicyRegistry()
	policies.Register(policyID, nftexchange.StandardPolicyERC721{})

	registry := nftexchange.NewNonceRegistry()

	engine := nftexchange.NewEngine(
		nftexchange.Config{ChainID: 1, VerifyingContract: exchangeAddr},
		policies, registry, delegate, nil,
	)

	// Two makers with fresh keys
	aliceKey, err := crypto.GenerateKey()
	if err != nil {
		log.Fatalf("failed to generate key: %v", err)
	}
	bobKey, err := crypto.GenerateKey()
	if err != nil {
		log.Fatalf("failed to generate key: %v", err)
	}
	alice := crypto.PubkeyToAddress(aliceKey.PublicKey)
	bob := crypto.PubkeyToAddress(bobKey.PublicKey)

	aliceBuilder := chain.NewOrderBuilder(1, exchangeAddr, aliceKey)

	// Owners grant the delegate transfer authority once, out of band
	delegate.GrantApproval(alice)
	delegate.GrantApproval(bob)

	price := new(big.Int).Mul(big.NewInt(10), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
	funds.Mint(nftexchange.NativeToken, bob, new(big.Int).Mul(price, big.NewInt(10)))

	marketplace := common.HexToAddress("0x0000a26b00c1F0DF003000390027140000fAa719")

	makeListing := func(tokenID int64) (*chain.Input, *chain.Input) {
		nfts.Mint(collection, big.NewInt(tokenID), alice)

		signed, err := aliceBuilder.BuildSignedOrder(&chain.OrderData{
			Maker:          alice,
			Side:           chain.SideSell,
			MatchingPolicy: policyID,
			Collection:     collection,
			TokenID:        big.NewInt(tokenID),
			Amount:         big.NewInt(1),
			PaymentToken:   nftexchange.NativeToken,
			Price:          price,
			Fees:           []chain.Fee{{Rate: 250, Recipient: marketplace}},
		})
		if err != nil {
			log.Fatalf("failed to build sell order: %v", err)
		}

		// Bob submits the call himself, so his buy needs no signature
		bobBuilder := chain.NewOrderBuilder(1, exchangeAddr, bobKey)
		buyOrder, err := bobBuilder.BuildOrder(&chain.OrderData{
			Maker:          bob,
			Side:           chain.SideBuy,
			MatchingPolicy: policyID,
			Collection:     collection,
			TokenID:        big.NewInt(tokenID),
			Amount:         big.NewInt(1),
			PaymentToken:   nftexchange.NativeToken,
			Price:          price,
		})
		if err != nil {
			log.Fatalf("failed to build buy order: %v", err)
		}

		return signed.Pack(), chain.PackNoSigs(buyOrder)
	}

	// Single listing
	sell, buy := makeListing(1)
	receipt, err := engine.Execute(bob, sell, buy, price)
	if err != nil {
		log.Fatalf("settlement failed: %v", err)
	}
	fmt.Printf("settled %s: token %s -> %s for %s wei\n",
		receipt.ID, receipt.TokenID, receipt.Taker.Hex(), receipt.Price)

	// Sweep of three listings in one call
	var executions []nftexchange.Execution
	for tokenID := int64(2); tokenID <= 4; tokenID++ {
		s, b := makeListing(tokenID)
		executions = append(executions, nftexchange.Execution{Sell: s, Buy: b})
	}

	total := new(big.Int).Mul(price, big.NewInt(3))
	results, err := engine.BulkExecute(bob, executions, total)
	if err != nil {
		log.Fatalf("bulk settlement failed: %v", err)
	}
	for i, result := range results {
		if result.Err != nil {
			fmt.Printf("sweep item %d failed: %v\n", i, result.Err)
			continue
		}
		fmt.Printf("sweep item %d settled: %s\n", i, result.Receipt.ID)
	}

	fmt.Printf("alice native balance: %s wei\n", funds.BalanceOf(nftexchange.NativeToken, alice))
	fmt.Printf("marketplace fees:     %s wei\n", funds.BalanceOf(nftexchange.NativeToken, marketplace))
}
