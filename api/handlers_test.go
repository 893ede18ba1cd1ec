/*
handlers_test.go - Unit tests for API handlers

Tests for:
- Login (credential check, no password leakage)
- Product CRUD with role headers
- Purchase lifecycle over REST
- Chat turn with a stubbed model
- Dashboard aggregates
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wproject-studio/toko-admin/dispatch"
	"github.com/wproject-studio/toko-admin/planner"
	"github.com/wproject-studio/toko-admin/shop"
	"github.com/wproject-studio/toko-admin/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

// stubModel implements planner.CompletionClient with a fixed answer.
type stubModel struct {
	content string
	err     error
}

func (s *stubModel) Complete(context.Context, []planner.Message) (string, error) {
	return s.content, s.err
}

func newTestServer(t *testing.T, model planner.CompletionClient) (*httptest.Server, *sqlite.Store) {
	t.Helper()

	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	require.NoError(t, store.SaveUser(context.Background(),
		shop.User{Email: "admin@toko.dev", FullName: "Toko Admin", Role: shop.RoleAdmin}, "admin123"))

	if model == nil {
		model = &stubModel{err: planner.ErrNotConfigured}
	}

	svc := dispatch.NewService(store, nil)
	h := NewHandler(svc, planner.New(model, nil), dispatch.NewDispatcher(svc, nil), nil)

	srv := httptest.NewServer(NewRouter(h))
	t.Cleanup(srv.Close)
	return srv, store
}

func doJSON(t *testing.T, method, url string, body any, headers map[string]string) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

var (
	adminHeaders = map[string]string{"X-Actor-Id": "1", "X-Actor-Role": "admin"}
	staffHeaders = map[string]string{"X-Actor-Id": "2", "X-Actor-Role": "staff"}
)

func createProduct(t *testing.T, srv *httptest.Server, name string, price, stock int64) ProductDTO {
	t.Helper()
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/products", CreateProductRequest{
		Name:         name,
		Category:     "furniture",
		Price:        price,
		InitialStock: &stock,
	}, adminHeaders)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[ProductDTO](t, resp)
}

// =============================================================================
// AUTH
// =============================================================================

func TestLogin(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/login",
		LoginRequest{Email: "admin@toko.dev", Password: "admin123"}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[map[string]json.RawMessage](t, resp)
	var user UserDTO
	require.NoError(t, json.Unmarshal(body["user"], &user))
	assert.Equal(t, "admin", user.Role)
	assert.NotContains(t, string(body["user"]), "password")
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/login",
		LoginRequest{Email: "admin@toko.dev", Password: "wrong"}, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/login",
		LoginRequest{Email: "admin@toko.dev"}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// =============================================================================
// PRODUCTS
// =============================================================================

func TestProductCRUDOverREST(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	created := createProduct(t, srv, "Two-Seat Sofa", 2_500_000, 4)
	assert.Equal(t, int64(4), created.Quantity)
	assert.Equal(t, "Rp 2.500.000", created.PriceLabel)

	// Staff may update.
	newPrice := int64(2_750_000)
	resp := doJSON(t, http.MethodPut, fmt.Sprintf("%s/api/products/%d", srv.URL, created.ID),
		UpdateProductRequest{Price: &newPrice}, staffHeaders)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decode[ProductDTO](t, resp)
	assert.Equal(t, newPrice, updated.Price)

	// Staff may NOT delete.
	resp = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/products/%d", srv.URL, created.ID), nil, staffHeaders)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Admin deletes.
	resp = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/products/%d", srv.URL, created.ID), nil, adminHeaders)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/products/%d", srv.URL, created.ID), nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestProductWriteRequiresActor(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/products", CreateProductRequest{
		Name: "Sofa", Category: "sofa", Price: 1,
	}, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

// =============================================================================
// PURCHASES
// =============================================================================

func TestPurchaseFlowOverREST(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	product := createProduct(t, srv, "Office Chair", 900_000, 10)

	// Staff may not record purchases.
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/purchases",
		CreatePurchaseRequest{ProductID: product.ID, Quantity: 2}, staffHeaders)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Admin records one.
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/purchases",
		CreatePurchaseRequest{ProductID: product.ID, Quantity: 2, BuyerName: "Budi"}, adminHeaders)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	purchase := decode[PurchaseDTO](t, resp)
	assert.Equal(t, int64(1_800_000), purchase.TotalPrice)
	assert.Equal(t, "CONFIRMED", purchase.Status)

	// Stock was debited.
	resp = doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/products/%d", srv.URL, product.ID), nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(8), decode[ProductDTO](t, resp).Quantity)

	// Over-stock purchase is rejected.
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/purchases",
		CreatePurchaseRequest{ProductID: product.ID, Quantity: 100}, adminHeaders)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Staff cancels; stock is restored.
	resp = doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/purchases/%d/status", srv.URL, purchase.ID),
		SetPurchaseStatusRequest{Status: "CANCELLED"}, staffHeaders)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cancelled := decode[PurchaseDTO](t, resp)
	assert.Equal(t, "CANCELLED", cancelled.Status)
	require.NotNil(t, cancelled.CancelledBy)
	assert.Equal(t, int64(2), *cancelled.CancelledBy)

	resp = doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/products/%d", srv.URL, product.ID), nil, nil)
	assert.Equal(t, int64(10), decode[ProductDTO](t, resp).Quantity)

	// Cancelled is terminal.
	resp = doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/purchases/%d/status", srv.URL, purchase.ID),
		SetPurchaseStatusRequest{Status: "CONFIRMED"}, adminHeaders)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestPurchaseEditAdjustsStockByDelta(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	product := createProduct(t, srv, "Bookshelf", 750_000, 10)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/purchases",
		CreatePurchaseRequest{ProductID: product.ID, Quantity: 2}, adminHeaders)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	purchase := decode[PurchaseDTO](t, resp)

	// 2 -> 5: three more units leave stock, total re-derived.
	qty := int64(5)
	resp = doJSON(t, http.MethodPut, fmt.Sprintf("%s/api/purchases/%d", srv.URL, purchase.ID),
		EditPurchaseRequest{Quantity: &qty}, adminHeaders)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	edited := decode[PurchaseDTO](t, resp)
	assert.Equal(t, int64(5), edited.Quantity)
	assert.Equal(t, int64(3_750_000), edited.TotalPrice)

	resp = doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/products/%d", srv.URL, product.ID), nil, nil)
	assert.Equal(t, int64(5), decode[ProductDTO](t, resp).Quantity)

	// An increase beyond stock is rejected.
	qty = 50
	resp = doJSON(t, http.MethodPut, fmt.Sprintf("%s/api/purchases/%d", srv.URL, purchase.ID),
		EditPurchaseRequest{Quantity: &qty}, adminHeaders)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

// =============================================================================
// CHAT
// =============================================================================

func TestChatExecutesPlannedAction(t *testing.T) {
	model := &stubModel{content: `{
		"reply": "Adding that product now.",
		"action": {
			"entity": "product",
			"operation": "create",
			"params": {"name": "Coffee Table", "category": "table", "price": 1200000, "initialStock": 3}
		}
	}`}
	srv, store := newTestServer(t, model)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/chat", ChatRequest{
		Messages: []ChatMessage{{Role: "user", Content: "add a coffee table for 1.200.000, stock 3"}},
		User:     &UserDTO{ID: 1, Email: "admin@toko.dev", Role: "admin"},
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	chat := decode[ChatResponse](t, resp)
	assert.NotEmpty(t, chat.TurnID)
	assert.Contains(t, chat.Reply, "Adding that product now.")
	assert.Contains(t, chat.Reply, "Coffee Table")

	p, err := store.FindProductByName(context.Background(), "Coffee Table")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, int64(1_200_000), p.Price)
}

func TestChatGuestGetsReplyOnly(t *testing.T) {
	model := &stubModel{content: `{
		"reply": "Deleting everything!",
		"action": {"entity": "product", "operation": "delete", "params": {"scope": "all", "confirmDeleteAll": true}}
	}`}
	srv, store := newTestServer(t, model)
	seedViaStore(t, store)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/chat", ChatRequest{
		Messages: []ChatMessage{{Role: "user", Content: "DELETE ALL PRODUCTS"}},
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	items, err := store.ListProducts(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, items, 1, "guest turn must not execute actions")
}

func seedViaStore(t *testing.T, store *sqlite.Store) {
	t.Helper()
	p := &shop.Product{Name: "Sofa", Category: "sofa", Price: 2_000_000}
	require.NoError(t, store.CreateProduct(context.Background(), p))
}

func TestChatDegradesWithoutAPIKey(t *testing.T) {
	srv, _ := newTestServer(t, &stubModel{err: planner.ErrNotConfigured})

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/chat", ChatRequest{
		Messages: []ChatMessage{{Role: "user", Content: "hi"}},
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, decode[ChatResponse](t, resp).Reply, "OPENAI_API_KEY")
}

func TestChatRejectsMissingMessages(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/chat", map[string]any{}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// =============================================================================
// DASHBOARD
// =============================================================================

func TestDashboard(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	product := createProduct(t, srv, "Sofa", 2_000_000, 5)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/purchases",
		CreatePurchaseRequest{ProductID: product.ID, Quantity: 2}, adminHeaders)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/dashboard", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	dash := decode[DashboardDTO](t, resp)
	assert.Equal(t, int64(1), dash.ProductCount)
	assert.Equal(t, int64(3), dash.StockUnits)
	assert.Equal(t, int64(1), dash.PurchaseCount)
	assert.Equal(t, int64(4_000_000), dash.ConfirmedRevenue)
	assert.Equal(t, "Rp 4.000.000", dash.RevenueLabel)
}
