/*
handlers.go - HTTP API handlers for the shop back office

PURPOSE:
  Exposes the chat assistant and the admin CRUD surface via REST.
  Handles HTTP request/response, JSON serialization, and delegates to
  the planner / dispatcher / shop store.

ENDPOINTS:
  Chat:
    POST   /api/chat                      Chat turn: plan + execute + narrate
    POST   /api/login                     Credential check, returns the user

  Products:
    GET    /api/products                  List products (optional ?q= filter)
    POST   /api/products                  Create product (+ optional stock)
    GET    /api/products/{id}             Get one product
    PUT    /api/products/{id}             Update fields and/or stock
    DELETE /api/products/{id}             Delete product + stock (admin)

  Purchases:
    GET    /api/purchases                 Latest purchases (?limit=)
    POST   /api/purchases                 Record a sale (admin)
    GET    /api/purchases/{id}            Get one purchase
    PUT    /api/purchases/{id}            Edit quantity / buyer
    POST   /api/purchases/{id}/status     CONFIRMED/CANCELLED transition
    DELETE /api/purchases/{id}            Delete record, keeps stock (admin)

  Dashboard:
    GET    /api/dashboard                 Counts + confirmed revenue

AUTHORIZATION:
  Demo-grade, like the original client-held session: the acting user is
  taken from the X-Actor-Id and X-Actor-Role headers (chat takes the
  user object in the body instead). The same role matrix as the chat
  dispatcher applies.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 401: Missing/unknown credentials
  - 403: Role not allowed
  - 404: Resource not found
  - 409: Conflict (terminal status, insufficient stock)
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - dispatch: shared operation semantics
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wproject-studio/toko-admin/dispatch"
	"github.com/wproject-studio/toko-admin/planner"
	"github.com/wproject-studio/toko-admin/shop"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	svc        *dispatch.Service
	planner    *planner.Planner
	dispatcher *dispatch.Dispatcher
	log        *zap.Logger
}

// NewHandler creates a handler with all dependencies.
func NewHandler(svc *dispatch.Service, pl *planner.Planner, d *dispatch.Dispatcher, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{svc: svc, planner: pl, dispatcher: d, log: log}
}

func (h *Handler) store() shop.Store {
	return h.svc.Store()
}

// actor reconstructs the acting user from the request headers. Returns
// nil when the headers are absent or malformed, which the guards treat
// as unauthenticated.
func actor(r *http.Request) *shop.User {
	idStr := r.Header.Get("X-Actor-Id")
	role := shop.Role(strings.ToLower(r.Header.Get("X-Actor-Role")))
	if idStr == "" || !role.Valid() {
		return nil
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return nil
	}
	return &shop.User{ID: id, Role: role}
}

func isOperator(u *shop.User) bool {
	return u != nil && (u.Role == shop.RoleAdmin || u.Role == shop.RoleStaff)
}

func isAdmin(u *shop.User) bool {
	return u != nil && u.Role == shop.RoleAdmin
}

// =============================================================================
// CHAT & AUTH ENDPOINTS
// =============================================================================

// Chat runs one conversation turn: the planner produces a reply and an
// optional action, the dispatcher executes the action, and the
// narration is appended to the reply.
// POST /api/chat
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Messages == nil {
		writeError(w, http.StatusBadRequest, `Bad body format, "messages" must be an array`, nil)
		return
	}

	var user *shop.User
	if req.User != nil {
		user = &shop.User{
			ID:       req.User.ID,
			Email:    req.User.Email,
			FullName: req.User.FullName,
			Role:     shop.Role(strings.ToLower(req.User.Role)),
		}
	}

	messages := make([]planner.Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, planner.Message{Role: m.Role, Content: m.Content})
	}

	turnID := uuid.NewString()
	plan := h.planner.Plan(ctx, messages, user)
	reply := strings.TrimSpace(plan.Reply)

	if plan.Action != nil {
		narration := h.dispatcher.Execute(ctx, plan.Action, user)
		if narration != "" {
			if reply != "" {
				reply = reply + "\n\n" + narration
			} else {
				reply = narration
			}
		}
	}

	if reply == "" {
		reply = "The request was received, but there was nothing to do."
	}

	h.log.Info("chat turn completed",
		zap.String("turn_id", turnID),
		zap.Bool("had_action", plan.Action != nil))

	writeJSON(w, http.StatusOK, ChatResponse{TurnID: turnID, Reply: reply})
}

// Login checks credentials and returns the operator profile.
// POST /api/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required", nil)
		return
	}

	user, err := h.store().GetUserByCredentials(ctx, strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to check credentials", err)
		return
	}
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Invalid email or password", nil)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"user": toUserDTO(user)})
}

// =============================================================================
// PRODUCT ENDPOINTS
// =============================================================================

// ListProducts returns the catalog with stock, optionally filtered.
// GET /api/products?q=
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	items, err := h.store().ListProducts(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list products", err)
		return
	}

	dtos := make([]ProductDTO, 0, len(items))
	for _, it := range items {
		dtos = append(dtos, toProductDTO(it))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetProduct returns one product with its stock.
// GET /api/products/{id}
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	product, err := h.store().GetProduct(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get product", err)
		return
	}
	if product == nil {
		writeError(w, http.StatusNotFound, "Product not found", nil)
		return
	}

	qty := int64(0)
	if stock, err := h.store().GetStock(ctx, product.ID); err == nil && stock != nil {
		qty = stock.Quantity
	}
	writeJSON(w, http.StatusOK, toProductDTO(shop.ProductWithStock{Product: *product, Quantity: qty}))
}

// CreateProduct adds a product and optionally its initial stock.
// POST /api/products
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	if !isOperator(actor(r)) {
		writeError(w, http.StatusForbidden, "Only admin or staff may modify product data", nil)
		return
	}

	var req CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" || req.Category == "" || req.Price <= 0 {
		writeError(w, http.StatusBadRequest, "Name, category, and a positive price are required", nil)
		return
	}

	product := &shop.Product{
		Name:        req.Name,
		Category:    req.Category,
		Price:       req.Price,
		Description: req.Description,
	}
	res, err := h.svc.CreateProduct(r.Context(), product, req.InitialStock)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create product", err)
		return
	}

	qty := int64(0)
	if req.InitialStock != nil && res.StockSaved {
		qty = *req.InitialStock
	}
	writeJSON(w, http.StatusCreated, toProductDTO(shop.ProductWithStock{Product: *product, Quantity: qty}))
}

// UpdateProduct edits product fields and/or its stock level.
// PUT /api/products/{id}
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !isOperator(actor(r)) {
		writeError(w, http.StatusForbidden, "Only admin or staff may modify product data", nil)
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req UpdateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	update := shop.ProductUpdate{
		Name:        req.Name,
		Category:    req.Category,
		Price:       req.Price,
		Description: req.Description,
	}
	if !update.IsZero() {
		if err := h.store().UpdateProduct(ctx, id, update); err != nil {
			if errors.Is(err, shop.ErrProductNotFound) {
				writeError(w, http.StatusNotFound, "Product not found", nil)
				return
			}
			writeError(w, http.StatusInternalServerError, "Failed to update product", err)
			return
		}
	}
	if req.Stock != nil {
		if err := h.store().UpsertStock(ctx, id, *req.Stock); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to update stock", err)
			return
		}
	}

	h.GetProduct(w, r)
}

// DeleteProduct removes a product and its stock row.
// DELETE /api/products/{id}
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if !isAdmin(actor(r)) {
		writeError(w, http.StatusForbidden, "Only an admin may delete products", nil)
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.svc.DeleteProduct(r.Context(), id); err != nil {
		if errors.Is(err, shop.ErrProductNotFound) {
			writeError(w, http.StatusNotFound, "Product not found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete product", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// PURCHASE ENDPOINTS
// =============================================================================

// ListPurchases returns the latest purchases, newest first.
// GET /api/purchases?limit=
func (h *Handler) ListPurchases(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit", err)
			return
		}
		limit = n
	}

	purchases, err := h.store().ListPurchases(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list purchases", err)
		return
	}

	dtos := make([]PurchaseDTO, 0, len(purchases))
	for _, p := range purchases {
		dtos = append(dtos, toPurchaseDTO(p))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetPurchase returns one purchase.
// GET /api/purchases/{id}
func (h *Handler) GetPurchase(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	p, err := h.store().GetPurchase(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get purchase", err)
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "Purchase not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toPurchaseDTO(*p))
}

// CreatePurchase records a sale and debits stock.
// POST /api/purchases
func (h *Handler) CreatePurchase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !isAdmin(actor(r)) {
		writeError(w, http.StatusForbidden, "Only an admin may record purchases", nil)
		return
	}

	var req CreatePurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Quantity <= 0 {
		writeError(w, http.StatusBadRequest, "Quantity must be positive", nil)
		return
	}

	product, err := h.store().GetProduct(ctx, req.ProductID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get product", err)
		return
	}
	if product == nil {
		writeError(w, http.StatusNotFound, "Product not found", nil)
		return
	}

	res, err := h.svc.CreatePurchase(ctx, product, req.Quantity, req.BuyerName)
	if err != nil {
		if errors.Is(err, shop.ErrInsufficientStock) {
			writeError(w, http.StatusConflict, "Not enough stock for this purchase", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to record purchase", err)
		return
	}
	writeJSON(w, http.StatusCreated, toPurchaseDTO(*res.Purchase))
}

// EditPurchase changes quantity and/or buyer; the total is re-derived
// at the product's current price and stock is adjusted by the delta.
// PUT /api/purchases/{id}
func (h *Handler) EditPurchase(w http.ResponseWriter, r *http.Request) {
	if !isOperator(actor(r)) {
		writeError(w, http.StatusForbidden, "Only admin or staff may update purchases", nil)
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req EditPurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	p, err := h.svc.EditPurchase(r.Context(), id, req.Quantity, req.BuyerName)
	if err != nil {
		switch {
		case errors.Is(err, shop.ErrPurchaseNotFound):
			writeError(w, http.StatusNotFound, "Purchase not found", nil)
		case errors.Is(err, shop.ErrInsufficientStock):
			writeError(w, http.StatusConflict, "Not enough stock for that quantity", err)
		default:
			writeError(w, http.StatusInternalServerError, "Failed to update purchase", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, toPurchaseDTO(*p))
}

// SetPurchaseStatus applies a CONFIRMED/CANCELLED transition.
// POST /api/purchases/{id}/status
func (h *Handler) SetPurchaseStatus(w http.ResponseWriter, r *http.Request) {
	user := actor(r)
	if !isOperator(user) {
		writeError(w, http.StatusForbidden, "Only admin or staff may update purchase status", nil)
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req SetPurchaseStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	status, err := shop.ParseStatus(req.Status)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid status, use CONFIRMED or CANCELLED", err)
		return
	}

	p, _, err := h.svc.SetPurchaseStatus(r.Context(), id, status, user)
	if err != nil {
		switch {
		case errors.Is(err, shop.ErrPurchaseNotFound):
			writeError(w, http.StatusNotFound, "Purchase not found", nil)
		case errors.Is(err, shop.ErrStatusTerminal):
			writeError(w, http.StatusConflict, "A cancelled purchase cannot be confirmed again", err)
		default:
			writeError(w, http.StatusInternalServerError, "Failed to update purchase status", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, toPurchaseDTO(*p))
}

// DeletePurchase removes the record without restoring stock.
// DELETE /api/purchases/{id}
func (h *Handler) DeletePurchase(w http.ResponseWriter, r *http.Request) {
	if !isAdmin(actor(r)) {
		writeError(w, http.StatusForbidden, "Only an admin may delete purchases", nil)
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.svc.DeletePurchase(r.Context(), id); err != nil {
		if errors.Is(err, shop.ErrPurchaseNotFound) {
			writeError(w, http.StatusNotFound, "Purchase not found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete purchase", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// DASHBOARD
// =============================================================================

// Dashboard returns catalog and revenue aggregates.
// GET /api/dashboard
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	sum, err := h.store().Summary(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load dashboard", err)
		return
	}
	writeJSON(w, http.StatusOK, DashboardDTO{
		ProductCount:     sum.ProductCount,
		StockUnits:       sum.StockUnits,
		PurchaseCount:    sum.PurchaseCount,
		ConfirmedRevenue: sum.ConfirmedRevenue,
		RevenueLabel:     shop.FormatIDR(sum.ConfirmedRevenue),
	})
}

// =============================================================================
// HELPERS
// =============================================================================

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid id", err)
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
