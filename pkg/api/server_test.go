// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/lpx/pkg/amm"
	"github.com/luxfi/lpx/pkg/fee"
	"github.com/luxfi/lpx/pkg/ledger"
	"github.com/luxfi/lpx/pkg/sale"
	"github.com/luxfi/lpx/pkg/storage"
	"github.com/luxfi/lpx/pkg/token"
	"github.com/luxfi/lpx/pkg/trade"
)

var (
	memeKey = token.Key{Collection: "Token", Category: "Unit", Type: "MEME", AdditionalKey: "none"}
	galaKey = token.Key{Collection: "GALA", Category: "Unit", Type: "none", AdditionalKey: "none"}
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := storage.NewMemory()
	registry := token.NewRegistry()
	eng := ledger.NewEngine(registry)
	fees := fee.NewService(store)
	trades := trade.NewService(trade.Config{
		Store:    store,
		Ledger:   eng,
		Pools:    amm.NewMemoryPools(),
		Decimals: registry,
		Fees:     fees,
	})

	require.NoError(t, eng.Mint(context.Background(), "buyer1", galaKey, decimal.NewFromInt(1_000)))
	return NewServer(trades, fees, nil, nil).Router(false)
}

func doJSON(t *testing.T, router *gin.Engine, method, path, user string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set(CallerHeader, user)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func createTestSale(t *testing.T, router *gin.Engine) string {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/v1/sales", "creator", trade.CreateSaleRequest{
		SellingToken: memeKey,
		NativeToken:  galaKey,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var sl sale.Sale
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sl))
	return sl.VaultAddress
}

func TestHealthz(t *testing.T) {
	require := require.New(t)
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/healthz", "", nil)
	require.Equal(http.StatusOK, w.Code)
}

func TestCreateAndGetSale(t *testing.T) {
	require := require.New(t)
	router := newTestRouter(t)

	vault := createTestSale(t, router)

	w := doJSON(t, router, http.MethodGet, "/v1/sales/"+vault, "", nil)
	require.Equal(http.StatusOK, w.Code)
	var sl sale.Sale
	require.NoError(json.Unmarshal(w.Body.Bytes(), &sl))
	require.Equal(sale.StatusOngoing, sl.Status)

	w = doJSON(t, router, http.MethodGet, "/v1/sales/unknown-vault", "", nil)
	require.Equal(http.StatusNotFound, w.Code)

	// No caller header, no sale.
	w = doJSON(t, router, http.MethodPost, "/v1/sales", "", trade.CreateSaleRequest{
		SellingToken: memeKey,
		NativeToken:  galaKey,
	})
	require.Equal(http.StatusForbidden, w.Code)

	w = doJSON(t, router, http.MethodGet, "/v1/sales", "", nil)
	require.Equal(http.StatusOK, w.Code)
}

func TestBuyEndpoint(t *testing.T) {
	require := require.New(t)
	router := newTestRouter(t)
	vault := createTestSale(t, router)

	w := doJSON(t, router, http.MethodPost, "/v1/sales/"+vault+"/buy-exact", "buyer1",
		map[string]any{"tokenQuantity": "500"})
	require.Equal(http.StatusOK, w.Code, w.Body.String())

	var result trade.Result
	require.NoError(json.Unmarshal(w.Body.Bytes(), &result))
	require.Equal(trade.TypeBuyExactTokens, result.TradeType)
	require.True(result.NativeQuantity.Equal(decimal.RequireFromString("0.00825575")))

	// Slippage surfaces as a conflict.
	w = doJSON(t, router, http.MethodPost, "/v1/sales/"+vault+"/buy-exact", "buyer1",
		map[string]any{"tokenQuantity": "500", "expectedNativeToken": "0.000001"})
	require.Equal(http.StatusConflict, w.Code)

	// Excess precision is a bad request.
	w = doJSON(t, router, http.MethodPost, "/v1/sales/"+vault+"/buy-exact", "buyer1",
		map[string]any{"tokenQuantity": "1.123456789"})
	require.Equal(http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodPost, "/v1/sales/"+vault+"/buy-exact", "",
		map[string]any{"tokenQuantity": "500"})
	require.Equal(http.StatusForbidden, w.Code)

	w = doJSON(t, router, http.MethodGet, "/v1/sales/"+vault+"/trades", "", nil)
	require.Equal(http.StatusOK, w.Code)
}

func TestQuoteEndpoint(t *testing.T) {
	require := require.New(t)
	router := newTestRouter(t)
	vault := createTestSale(t, router)

	w := doJSON(t, router, http.MethodPost, "/v1/sales/"+vault+"/quote", "",
		map[string]any{"side": "buy", "exact": "tokens", "quantity": "500"})
	require.Equal(http.StatusOK, w.Code, w.Body.String())

	var quote trade.CalculationResult
	require.NoError(json.Unmarshal(w.Body.Bytes(), &quote))
	require.True(quote.CalculatedQuantity.Equal(decimal.RequireFromString("0.00825575")))

	w = doJSON(t, router, http.MethodPost, "/v1/sales/"+vault+"/quote", "",
		map[string]any{"side": "sideways", "exact": "tokens", "quantity": "500"})
	require.Equal(http.StatusBadRequest, w.Code)
}

func TestFeeConfigEndpoints(t *testing.T) {
	require := require.New(t)
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/v1/fee-config", "", nil)
	require.Equal(http.StatusNotFound, w.Code)

	cfg := fee.Config{
		FeeAddress:  "platform-fees",
		FeeAmount:   decimal.RequireFromString("0.01"),
		Authorities: []string{"admin1"},
	}
	w = doJSON(t, router, http.MethodPost, "/v1/fee-config", "", cfg)
	require.Equal(http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, router, http.MethodGet, "/v1/fee-config", "", nil)
	require.Equal(http.StatusOK, w.Code)

	// Replacing an existing configuration requires an authority.
	w = doJSON(t, router, http.MethodPost, "/v1/fee-config", "stranger", cfg)
	require.Equal(http.StatusForbidden, w.Code)
	w = doJSON(t, router, http.MethodPost, "/v1/fee-config", "admin1", cfg)
	require.Equal(http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodPost, "/v1/fee-config/authorities", "admin1",
		map[string]any{"authorities": []string{"admin2"}})
	require.Equal(http.StatusOK, w.Code)
	w = doJSON(t, router, http.MethodPost, "/v1/fee-config/authorities", "admin1",
		map[string]any{"authorities": []string{"admin1"}})
	require.Equal(http.StatusForbidden, w.Code)
}
