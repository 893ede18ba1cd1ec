/*
types.go - Core domain types for the retail back-office

PURPOSE:
  Defines the entities shared by the store implementations, the chat
  dispatch layer, and the HTTP API: products, per-product stock rows,
  purchases with a two-state status machine, and the users whose role
  gates every operation.

KEY CONCEPTS:
  1. Stock is one-to-one with Product. A missing stock row reads as
     quantity 0 everywhere; it is created lazily on the first write.
  2. Purchase.TotalPrice is derived from the product's price at the
     moment the purchase is recorded and is never recomputed when the
     product's price changes later.
  3. Prices are integer rupiah. Totals are computed with
     decimal.Decimal so a future move to fractional currencies does
     not change call sites.

SEE ALSO:
  - errors.go: Sentinel errors shared by store implementations
  - store.go: Persistence interfaces
*/
package shop

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ROLES & USERS
// =============================================================================

// Role determines which dispatch operations a caller may perform.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleStaff
}

// User is an authenticated back-office operator. Users are read-only
// from this layer's point of view: the login check reads them, nothing
// here creates or deletes them.
type User struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     Role   `json:"role"`
}

// =============================================================================
// PRODUCTS & STOCK
// =============================================================================

// Product is a catalog entry. Name, category and price are required at
// creation; description is optional.
type Product struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Price       int64     `json:"price"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Stock is the quantity on hand for one product. Quantity never goes
// negative as the result of a purchase.
type Stock struct {
	ID        int64     `json:"id"`
	ProductID int64     `json:"product_id"`
	Quantity  int64     `json:"quantity"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProductWithStock joins a product with its current stock quantity
// (0 when no stock row exists). Used by listings.
type ProductWithStock struct {
	Product
	Quantity int64 `json:"quantity"`
}

// =============================================================================
// PURCHASES
// =============================================================================

// PurchaseStatus is the two-state purchase lifecycle.
// CONFIRMED is the initial state; CANCELLED is terminal.
type PurchaseStatus string

const (
	StatusConfirmed PurchaseStatus = "CONFIRMED"
	StatusCancelled PurchaseStatus = "CANCELLED"
)

// ParseStatus normalizes a free-form status string.
// Returns ErrInvalidStatus for anything other than the two states.
func ParseStatus(s string) (PurchaseStatus, error) {
	switch PurchaseStatus(strings.ToUpper(strings.TrimSpace(s))) {
	case StatusConfirmed:
		return StatusConfirmed, nil
	case StatusCancelled:
		return StatusCancelled, nil
	default:
		return "", ErrInvalidStatus
	}
}

// Purchase records one sale of a product. Stock is debited exactly
// once when the purchase is recorded CONFIRMED, and credited back
// exactly once if it transitions CONFIRMED -> CANCELLED.
type Purchase struct {
	ID          int64          `json:"id"`
	ProductID   int64          `json:"product_id"`
	BuyerName   string         `json:"buyer_name,omitempty"`
	Quantity    int64          `json:"quantity"`
	TotalPrice  int64          `json:"total_price"`
	Status      PurchaseStatus `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	CancelledAt *time.Time     `json:"cancelled_at,omitempty"`
	CancelledBy *int64         `json:"cancelled_by,omitempty"`
}

// =============================================================================
// MONEY
// =============================================================================

// TotalPrice computes unitPrice x quantity in integer rupiah.
func TotalPrice(unitPrice, quantity int64) int64 {
	return decimal.NewFromInt(unitPrice).Mul(decimal.NewFromInt(quantity)).IntPart()
}

// FormatIDR renders an integer rupiah amount with Indonesian thousand
// separators, e.g. 1500000 -> "Rp 1.500.000".
func FormatIDR(amount int64) string {
	d := decimal.NewFromInt(amount)
	digits := d.Abs().String()

	var b strings.Builder
	b.WriteString("Rp ")
	if d.IsNegative() {
		b.WriteString("-")
	}
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
		if len(digits) > lead {
			b.WriteString(".")
		}
	}
	for i := lead; i < len(digits); i += 3 {
		b.WriteString(digits[i : i+3])
		if i+3 < len(digits) {
			b.WriteString(".")
		}
	}
	return b.String()
}
