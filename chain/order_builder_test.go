package chain

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBuilder(t *testing.T) *OrderBuilder {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	contract := common.HexToAddress("0xabcdabcdabcdabcdabcdabcdabcdabcdabcdabcd")
	return NewOrderBuilder(1, contract, key)
}

func testOrderData(maker common.Address) *OrderData {
	return &OrderData{
		Maker:          maker,
		Side:           SideSell,
		MatchingPolicy: common.HexToAddress("0x2222222222222222222222222222222222222222"),
		Collection:     common.HexToAddress("0x3333333333333333333333333333333333333333"),
		TokenID:        big.NewInt(1),
		Amount:         big.NewInt(1),
		Price:          big.NewInt(1000),
	}
}

func TestBuildOrder_Defaults(t *testing.T) {
	builder := testBuilder(t)
	maker := builder.SignerAddress()

	order, err := builder.BuildOrder(testOrderData(maker))
	require.NoError(t, err)

	assert.Equal(t, maker, order.Maker)
	require.NotNil(t, order.ListingTime)
	require.NotNil(t, order.ExpirationTime)
	assert.Equal(t, int64(0), order.ExpirationTime.Int64())
	require.NotNil(t, order.Nonce)
	assert.Equal(t, int64(0), order.Nonce.Int64())
	require.NotNil(t, order.Salt)
	assert.True(t, order.Salt.Sign() >= 0)
}

func TestBuildOrder_UniqueSalts(t *testing.T) {
	builder := testBuilder(t)
	maker := builder.SignerAddress()

	a, err := builder.BuildOrder(testOrderData(maker))
	require.NoError(t, err)
	b, err := builder.BuildOrder(testOrderData(maker))
	require.NoError(t, err)

	assert.NotEqual(t, a.Salt.String(), b.Salt.String())
}

func TestBuildOrder_Validation(t *testing.T) {
	builder := testBuilder(t)
	maker := builder.SignerAddress()

	data := testOrderData(maker)
	data.Maker = common.Address{}
	_, err := builder.BuildOrder(data)
	assert.Error(t, err)

	data = testOrderData(maker)
	data.Collection = common.Address{}
	_, err = builder.BuildOrder(data)
	assert.Error(t, err)

	data = testOrderData(maker)
	data.TokenID = nil
	_, err = builder.BuildOrder(data)
	assert.ErrorIs(t, err, ErrMissingTokenID)

	data = testOrderData(maker)
	data.Amount = big.NewInt(0)
	_, err = builder.BuildOrder(data)
	assert.ErrorIs(t, err, ErrMissingAmount)

	data = testOrderData(maker)
	data.Price = big.NewInt(-5)
	_, err = builder.BuildOrder(data)
	assert.ErrorIs(t, err, ErrNegativePrice)
}

func TestBuildSignedOrder_Verifies(t *testing.T) {
	builder := testBuilder(t)
	maker := builder.SignerAddress()

	signed, err := builder.BuildSignedOrder(testOrderData(maker))
	require.NoError(t, err)
	require.Len(t, signed.Signature, SignatureLength)

	orderHash, err := HashOrder(signed.Order)
	require.NoError(t, err)
	digest := HashToSign(builder.Domain(), orderHash)
	assert.True(t, VerifySignature(digest, signed.Signature, maker))
}

func TestPackForms(t *testing.T) {
	builder := testBuilder(t)
	maker := builder.SignerAddress()

	signed, err := builder.BuildSignedOrder(testOrderData(maker))
	require.NoError(t, err)

	packed := signed.Pack()
	assert.Equal(t, signed.Order, packed.Order)
	assert.Equal(t, signed.Signature, packed.Signature)

	noSigs := PackNoSigs(signed.Order)
	assert.Equal(t, signed.Order, noSigs.Order)
	assert.Empty(t, noSigs.Signature)
}
