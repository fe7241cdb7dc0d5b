package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opensettle/marketgate/internal/config"
	"github.com/opensettle/marketgate/internal/engine"
	"github.com/opensettle/marketgate/internal/ledger"
	"github.com/opensettle/marketgate/internal/middleware"
	"github.com/opensettle/marketgate/internal/registry"
	"github.com/opensettle/marketgate/internal/service"
	"github.com/opensettle/marketgate/internal/signer"
)

var (
	testAdmin      = common.HexToAddress("0x1000000000000000000000000000000000000001")
	testEngineAddr = common.HexToAddress("0x1000000000000000000000000000000000000002")
	testPayee      = common.HexToAddress("0x1000000000000000000000000000000000000003")
	testBuyer      = common.HexToAddress("0x1000000000000000000000000000000000000005")
	testCollection = common.HexToAddress("0x2000000000000000000000000000000000000001")
)

type testStack struct {
	router *gin.Engine
	svc    *service.SettlementService
	assets *ledger.AssetLedger
	funds  *ledger.PaymentLedger
	seller *signer.Signer
}

func newTestStack(t *testing.T) *testStack {
	t.Helper()
	gin.SetMode(gin.TestMode)

	assets := ledger.NewAssetLedger()
	funds := ledger.NewPaymentLedger()
	royalties := registry.New(testAdmin, nil)
	engCfg := engine.NewConfig(testAdmin, testEngineAddr, 31337, testPayee, 500)
	eng := engine.New(engCfg, assets, funds, nil)
	svc := service.NewSettlementService(eng, royalties, assets, funds)
	require.NoError(t, svc.EnableRoyaltyRegistry(context.Background()))

	cfg := &config.Config{Auth: config.AuthConfig{AdminKey: "topsecret"}}

	marketHandler := NewMarketHandler(svc)
	royaltyHandler := NewRoyaltyHandler(svc)
	adminHandler := NewAdminHandler(svc)

	router := gin.New()
	router.Use(middleware.ErrorHandler())
	v1 := router.Group("/v1")
	v1.POST("/settlements/buy", marketHandler.BuyNFT)
	v1.GET("/royalties/:collection", royaltyHandler.GetRoyalty)
	adm := v1.Group("/admin")
	adm.Use(middleware.AdminMiddleware(cfg))
	adm.POST("/royalties", royaltyHandler.SetRoyalty)
	adm.POST("/config/percent", adminHandler.SetMarketPercent)

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	seller, err := signer.NewSigner(hexutil.Encode(crypto.FromECDSA(key))[2:], 31337)
	require.NoError(t, err)

	return &testStack{router: router, svc: svc, assets: assets, funds: funds, seller: seller}
}

func (s *testStack) post(t *testing.T, path string, payload any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

// buyPayload lists token 1 at 1 ether and returns a fully signed buy request.
func (s *testStack) buyPayload(t *testing.T) map[string]any {
	t.Helper()
	id := big.NewInt(1)
	require.NoError(t, s.assets.Mint(testCollection, id, s.seller.Address()))
	require.NoError(t, s.assets.Approve(testCollection, id, s.seller.Address(), testEngineAddr))
	s.funds.Mint(testBuyer, big.NewInt(1e18))

	listing := &signer.ListParams{
		TokenAddress: testCollection,
		TokenID:      id,
		Price:        big.NewInt(1e18),
		Seller:       s.seller.Address(),
	}
	sig, err := s.seller.SignListing(listing, testEngineAddr)
	require.NoError(t, err)

	return map[string]any{
		"buyer": testBuyer.Hex(),
		"listing": map[string]string{
			"token_address": testCollection.Hex(),
			"token_id":      "1",
			"price":         "1",
			"seller":        s.seller.Address().Hex(),
		},
		"signature": hexutil.Encode(sig),
		"payment":   "1",
	}
}

func TestBuyNFT_HTTP(t *testing.T) {
	s := newTestStack(t)
	payload := s.buyPayload(t)

	rec := s.post(t, "/v1/settlements/buy", payload, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Kind string `json:"kind"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "nft_bought", resp.Kind)

	owner, err := s.assets.OwnerOf(testCollection, big.NewInt(1))
	require.NoError(t, err)
	assert.Equal(t, testBuyer, owner)
}

func TestBuyNFT_HTTP_ErrorMapping(t *testing.T) {
	s := newTestStack(t)
	payload := s.buyPayload(t)

	t.Run("price mismatch is a conflict", func(t *testing.T) {
		bad := map[string]any{}
		for k, v := range payload {
			bad[k] = v
		}
		bad["payment"] = "2"

		rec := s.post(t, "/v1/settlements/buy", bad, nil)
		assert.Equal(t, http.StatusConflict, rec.Code)

		var resp struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "PRICE_MISMATCH", resp.Code)
		assert.Equal(t, "Price not match", resp.Message)
	})

	t.Run("garbage signature is unauthorized", func(t *testing.T) {
		bad := map[string]any{}
		for k, v := range payload {
			bad[k] = v
		}
		bad["signature"] = "0x0102"

		rec := s.post(t, "/v1/settlements/buy", bad, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("missing fields are a bad request", func(t *testing.T) {
		rec := s.post(t, "/v1/settlements/buy", map[string]any{"buyer": testBuyer.Hex()}, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestSetRoyalty_HTTP_AdminGate(t *testing.T) {
	s := newTestStack(t)
	payload := map[string]any{
		"collection": testCollection.Hex(),
		"payee":      testPayee.Hex(),
		"rate_bps":   1000,
	}

	rec := s.post(t, "/v1/admin/royalties", payload, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.post(t, "/v1/admin/royalties", payload, map[string]string{middleware.HeaderAdminKey: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.post(t, "/v1/admin/royalties", payload, map[string]string{middleware.HeaderAdminKey: "topsecret"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Registered terms are publicly readable.
	req := httptest.NewRequest(http.MethodGet, "/v1/royalties/"+testCollection.Hex(), nil)
	getRec := httptest.NewRecorder()
	s.router.ServeHTTP(getRec, req)
	require.Equal(t, http.StatusOK, getRec.Code)

	var resp struct {
		Payee   string `json:"payee"`
		RateBps uint32 `json:"rate_bps"`
	}
	require.NoError(t, json.Unmarshal(getRec.Body.Bytes(), &resp))
	assert.Equal(t, testPayee.Hex(), resp.Payee)
	assert.Equal(t, uint32(1000), resp.RateBps)
}

func TestSetMarketPercent_HTTP_RejectsBadRate(t *testing.T) {
	s := newTestStack(t)
	headers := map[string]string{middleware.HeaderAdminKey: "topsecret"}

	rec := s.post(t, "/v1/admin/config/percent", map[string]any{"fee_bps": 10000}, headers)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.post(t, "/v1/admin/config/percent", map[string]any{"fee_bps": 250}, headers)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint32(250), s.svc.GetConfig().MarketPercent)
}
