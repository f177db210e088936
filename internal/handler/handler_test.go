package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"go-marketplace-ledger/internal/events"
	"go-marketplace-ledger/internal/handler"
	"go-marketplace-ledger/internal/metrics"
	"go-marketplace-ledger/internal/middleware"
	"go-marketplace-ledger/internal/repository"
	"go-marketplace-ledger/internal/service"
	"go-marketplace-ledger/internal/testutil"
	"go-marketplace-ledger/pkg/units"
)

type testServer struct {
	app     *fiber.App
	metrics *metrics.Metrics
}

func newTestServer(t *testing.T) *testServer {
	t.Setenv("JWT_SECRET", "handler-test")
	db := testutil.NewDB(t)
	log := zaptest.NewLogger(t)

	ledgerRepo := repository.NewLedgerRepo(db)
	_, err := ledgerRepo.Init(context.Background(), "I love my motherland.")
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	accountRepo := repository.NewAccountRepo(db)

	marketSvc := service.NewMarketplaceService(ledgerRepo, repository.NewProductRepo(db), accountRepo,
		repository.NewTransferRepo(db), db, events.NewMetricsObserver(m), log)
	authSvc := service.NewAuthService(accountRepo, units.MustEther("100"))

	app := fiber.New()
	handler.RegisterRoutes(app, handler.Routes{
		Marketplace: handler.NewMarketplaceHandler(marketSvc, m),
		Auth:        handler.NewAuthHandler(authSvc),
		RequireAuth: middleware.RequireAuth(authSvc),
		Gatherer:    reg,
	})
	return &testServer{app: app, metrics: m}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]interface{}{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

// signup registers address and returns a bearer token.
func (s *testServer) signup(t *testing.T, address string) string {
	t.Helper()
	status, _ := s.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"address": address, "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, status)

	status, body := s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"address": address, "password": "secret1",
	})
	require.Equal(t, http.StatusOK, status)
	return body["token"].(string)
}

func balanceOf(t *testing.T, s *testServer, address string) string {
	status, body := s.do(t, http.MethodGet, "/api/v1/accounts/"+address, "", nil)
	require.Equal(t, http.StatusOK, status)
	return body["balance"].(string)
}

func TestMarketplaceScenario(t *testing.T) {
	s := newTestServer(t)
	seller := testutil.Seller.Hex()
	buyer := testutil.Buyer.Hex()
	sellerToken := s.signup(t, seller)
	buyerToken := s.signup(t, buyer)
	deployerToken := s.signup(t, testutil.Deployer.Hex())

	status, body := s.do(t, http.MethodGet, "/api/v1/ledger", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "I love my motherland.", body["name"])
	assert.Equal(t, 0.0, body["product_count"])

	// list
	status, body = s.do(t, http.MethodPost, "/api/v1/products", sellerToken, map[string]string{
		"name": "iPhone X", "price": "1", "unit": "ether",
	})
	require.Equal(t, http.StatusCreated, status, body)
	product := body["data"].(map[string]interface{})
	assert.Equal(t, 1.0, product["id"])
	assert.Equal(t, "1000000000000000000", product["price"])
	assert.Equal(t, seller, product["owner"])
	assert.Equal(t, false, product["purchased"])

	_, body = s.do(t, http.MethodGet, "/api/v1/ledger", "", nil)
	assert.Equal(t, 1.0, body["product_count"])

	// buy
	sellerBefore := balanceOf(t, s, seller)
	assert.Equal(t, "100000000000000000000", sellerBefore)

	status, body = s.do(t, http.MethodPost, "/api/v1/products/1/purchase", buyerToken, map[string]string{
		"value": "1000000000000000000",
	})
	require.Equal(t, http.StatusOK, status, body)
	product = body["data"].(map[string]interface{})
	assert.Equal(t, buyer, product["owner"])
	assert.Equal(t, true, product["purchased"])
	assert.Equal(t, "101000000000000000000", balanceOf(t, s, seller))
	assert.Equal(t, "99000000000000000000", balanceOf(t, s, buyer))

	// rejections
	status, body = s.do(t, http.MethodPost, "/api/v1/products/99/purchase", buyerToken, map[string]string{"value": "1", "unit": "ether"})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", body["code"])

	status, body = s.do(t, http.MethodPost, "/api/v1/products/1/purchase", buyerToken, map[string]string{"value": "0.5", "unit": "ether"})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "PAYMENT_MISMATCH", body["code"])

	status, body = s.do(t, http.MethodPost, "/api/v1/products/1/purchase", deployerToken, map[string]string{"value": "1", "unit": "ether"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "ALREADY_SOLD", body["code"])

	status, body = s.do(t, http.MethodPost, "/api/v1/products/1/purchase", buyerToken, map[string]string{"value": "1", "unit": "ether"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "ALREADY_SOLD", body["code"])

	assert.Equal(t, 2.0, promtestutil.ToFloat64(s.metrics.Rejections.WithLabelValues("ALREADY_SOLD")))
	assert.Equal(t, 1.0, promtestutil.ToFloat64(s.metrics.ProductsPurchased))

	// history
	status, _ = s.do(t, http.MethodGet, "/api/v1/products/1/transfers", "", nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestCreateProductValidation(t *testing.T) {
	s := newTestServer(t)
	token := s.signup(t, testutil.Seller.Hex())

	status, body := s.do(t, http.MethodPost, "/api/v1/products", token, map[string]string{"name": "", "price": "1", "unit": "ether"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_INPUT", body["code"])

	status, body = s.do(t, http.MethodPost, "/api/v1/products", token, map[string]interface{}{"name": "iPhone X", "price": 0})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_INPUT", body["code"])

	status, _ = s.do(t, http.MethodPost, "/api/v1/products", token, map[string]string{"name": "iPhone X", "price": "1", "unit": "finney"})
	assert.Equal(t, http.StatusBadRequest, status)

	_, body = s.do(t, http.MethodGet, "/api/v1/ledger", "", nil)
	assert.Equal(t, 0.0, body["product_count"])
}

func TestSelfPurchaseAndMissingProduct(t *testing.T) {
	s := newTestServer(t)
	token := s.signup(t, testutil.Seller.Hex())

	status, _ := s.do(t, http.MethodPost, "/api/v1/products", token, map[string]string{"name": "lamp", "price": "42"})
	require.Equal(t, http.StatusCreated, status)

	status, body := s.do(t, http.MethodPost, "/api/v1/products/1/purchase", token, map[string]string{"value": "42"})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "SELF_PURCHASE", body["code"])

	status, _ = s.do(t, http.MethodGet, "/api/v1/products/2", "", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = s.do(t, http.MethodGet, "/api/v1/products/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = s.do(t, http.MethodGet, "/api/v1/products/1", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "lamp", body["name"])
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	status, _ := s.do(t, http.MethodPost, "/api/v1/products", "", map[string]string{"name": "x", "price": "1"})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = s.do(t, http.MethodPost, "/api/v1/products/1/purchase", "not-a-token", map[string]string{"value": "1"})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = s.do(t, http.MethodGet, "/api/v1/accounts/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAccountsEndpoints(t *testing.T) {
	s := newTestServer(t)
	token := s.signup(t, testutil.Buyer.Hex())

	status, body := s.do(t, http.MethodGet, "/api/v1/accounts/me", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, testutil.Buyer.Hex(), body["address"])
	assert.Equal(t, "100000000000000000000", body["balance"])
	_, hasPassword := body["password"]
	assert.False(t, hasPassword)

	status, _ = s.do(t, http.MethodGet, "/api/v1/accounts/"+testutil.Stranger.Hex(), "", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = s.do(t, http.MethodGet, "/api/v1/accounts/nobody", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestRegisterConflictAndLoginFailure(t *testing.T) {
	s := newTestServer(t)
	s.signup(t, testutil.Seller.Hex())

	status, _ := s.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"address": testutil.Seller.Hex(), "password": "secret1",
	})
	assert.Equal(t, http.StatusConflict, status)

	status, _ = s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"address": testutil.Seller.Hex(), "password": "wrong!",
	})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestMetricsAndHealth(t *testing.T) {
	s := newTestServer(t)
	token := s.signup(t, testutil.Seller.Hex())
	status, _ := s.do(t, http.MethodPost, "/api/v1/products", token, map[string]string{"name": "x", "price": "1"})
	require.Equal(t, http.StatusCreated, status)

	status, body := s.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])

	resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(raw), "marketplace_products_created_total 1"), string(raw))
}
