/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/wproject-studio/toko-admin/shop"
)

// =============================================================================
// CHAT & AUTH
// =============================================================================

// ChatMessage is one turn of the conversation as sent by the client.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the POST /api/chat body. The user object is
// client-held session state, mirroring the login response.
type ChatRequest struct {
	Messages []ChatMessage `json:"messages"`
	User     *UserDTO      `json:"user"`
}

// ChatResponse carries the final reply (planner reply plus action
// narration) and a correlation id for the turn.
type ChatResponse struct {
	TurnID string `json:"turn_id"`
	Reply  string `json:"reply"`
}

// LoginRequest is the POST /api/login body.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserDTO represents an operator account. Never carries the password.
type UserDTO struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

func toUserDTO(u *shop.User) UserDTO {
	return UserDTO{
		ID:       u.ID,
		Email:    u.Email,
		FullName: u.FullName,
		Role:     string(u.Role),
	}
}

// =============================================================================
// PRODUCTS
// =============================================================================

// ProductDTO represents a product with its stock level.
type ProductDTO struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Price       int64     `json:"price"`
	PriceLabel  string    `json:"price_label"`
	Description string    `json:"description,omitempty"`
	Quantity    int64     `json:"quantity"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toProductDTO(p shop.ProductWithStock) ProductDTO {
	return ProductDTO{
		ID:          p.ID,
		Name:        p.Name,
		Category:    p.Category,
		Price:       p.Price,
		PriceLabel:  shop.FormatIDR(p.Price),
		Description: p.Description,
		Quantity:    p.Quantity,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// CreateProductRequest is the POST /api/products body.
type CreateProductRequest struct {
	Name         string `json:"name"`
	Category     string `json:"category"`
	Price        int64  `json:"price"`
	Description  string `json:"description"`
	InitialStock *int64 `json:"initial_stock"`
}

// UpdateProductRequest is the PUT /api/products/{id} body. Nil fields
// are left untouched.
type UpdateProductRequest struct {
	Name        *string `json:"name"`
	Category    *string `json:"category"`
	Price       *int64  `json:"price"`
	Description *string `json:"description"`
	Stock       *int64  `json:"stock"`
}

// =============================================================================
// PURCHASES
// =============================================================================

// PurchaseDTO represents a sale record.
type PurchaseDTO struct {
	ID          int64      `json:"id"`
	ProductID   int64      `json:"product_id"`
	BuyerName   string     `json:"buyer_name,omitempty"`
	Quantity    int64      `json:"quantity"`
	TotalPrice  int64      `json:"total_price"`
	TotalLabel  string     `json:"total_label"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	CancelledBy *int64     `json:"cancelled_by,omitempty"`
}

func toPurchaseDTO(p shop.Purchase) PurchaseDTO {
	return PurchaseDTO{
		ID:          p.ID,
		ProductID:   p.ProductID,
		BuyerName:   p.BuyerName,
		Quantity:    p.Quantity,
		TotalPrice:  p.TotalPrice,
		TotalLabel:  shop.FormatIDR(p.TotalPrice),
		Status:      string(p.Status),
		CreatedAt:   p.CreatedAt,
		CancelledAt: p.CancelledAt,
		CancelledBy: p.CancelledBy,
	}
}

// CreatePurchaseRequest is the POST /api/purchases body.
type CreatePurchaseRequest struct {
	ProductID int64  `json:"product_id"`
	Quantity  int64  `json:"quantity"`
	BuyerName string `json:"buyer_name"`
}

// EditPurchaseRequest is the PUT /api/purchases/{id} body.
type EditPurchaseRequest struct {
	Quantity  *int64  `json:"quantity"`
	BuyerName *string `json:"buyer_name"`
}

// SetPurchaseStatusRequest is the POST /api/purchases/{id}/status body.
type SetPurchaseStatusRequest struct {
	Status string `json:"status"`
}

// =============================================================================
// DASHBOARD & ERRORS
// =============================================================================

// DashboardDTO is the GET /api/dashboard response.
type DashboardDTO struct {
	ProductCount     int64  `json:"product_count"`
	StockUnits       int64  `json:"stock_units"`
	PurchaseCount    int64  `json:"purchase_count"`
	ConfirmedRevenue int64  `json:"confirmed_revenue"`
	RevenueLabel     string `json:"revenue_label"`
}

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
