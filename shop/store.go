/*
store.go - Persistence interface for products, stock, purchases, users

PURPOSE:
  Defines the interface between the dispatch layer / HTTP handlers and
  the database. Different implementations can use SQLite or in-memory
  storage; chat operations and the admin UI endpoints run through the
  exact same mutations.

KEY INTERFACES:
  Store:    Product/stock/purchase CRUD plus the read-only user lookup
  TxStore:  Optional transaction support for multi-row operations

TRANSACTION BOUNDARY:
  Operations that touch two rows (purchase insert + stock decrement,
  product delete + stock delete) run inside WithTx when the store
  implements TxStore. Stores without transactions fall back to
  best-effort sequential writes, and partial failure is surfaced to
  the caller as a degraded-success message rather than silently lost.

IMPLEMENTATIONS:
  - store/sqlite: Production SQLite (implements TxStore)
  - shop/memory:  In-memory store for tests (Store only, no WithTx)

SEE ALSO:
  - store/sqlite/sqlite.go: Concrete implementation
  - shop/memory/memory.go: In-memory implementation
*/
package shop

import "context"

// =============================================================================
// STORE
// =============================================================================

// ProductUpdate carries the optional fields of a single-product update.
// Nil fields are left untouched.
type ProductUpdate struct {
	Name        *string
	Category    *string
	Price       *int64
	Description *string
}

// IsZero reports whether no field is set.
func (u ProductUpdate) IsZero() bool {
	return u.Name == nil && u.Category == nil && u.Price == nil && u.Description == nil
}

// PurchaseUpdate carries the optional fields of a purchase edit.
// Status transitions go through SetPurchaseStatus instead.
type PurchaseUpdate struct {
	BuyerName  *string
	Quantity   *int64
	TotalPrice *int64
}

// DashboardSummary aggregates the numbers shown on the admin landing page.
type DashboardSummary struct {
	ProductCount     int64 `json:"product_count"`
	StockUnits       int64 `json:"stock_units"`
	PurchaseCount    int64 `json:"purchase_count"`
	ConfirmedRevenue int64 `json:"confirmed_revenue"`
}

// Store handles persistence for the four shop tables.
// Lookup methods return (nil, nil) when the row does not exist; callers
// that need a hard error use the sentinel errors from errors.go.
type Store interface {
	// Products
	CreateProduct(ctx context.Context, p *Product) error
	GetProduct(ctx context.Context, id int64) (*Product, error)
	// FindProductByName does a case-insensitive substring match and
	// returns the first hit by ascending id. Deterministic by contract.
	FindProductByName(ctx context.Context, name string) (*Product, error)
	// ListProducts returns all products (with stock) ordered by id,
	// optionally filtered by a case-insensitive name substring.
	ListProducts(ctx context.Context, query string) ([]ProductWithStock, error)
	UpdateProduct(ctx context.Context, id int64, u ProductUpdate) error
	DeleteProduct(ctx context.Context, id int64) error
	DeleteAllProducts(ctx context.Context) error

	// Stock
	GetStock(ctx context.Context, productID int64) (*Stock, error)
	// UpsertStock overwrites the quantity, creating the row if absent.
	UpsertStock(ctx context.Context, productID, quantity int64) error
	// SetAllStock overwrites every product's stock quantity. Not additive.
	SetAllStock(ctx context.Context, quantity int64) error
	DeleteStock(ctx context.Context, productID int64) error
	DeleteAllStock(ctx context.Context) error

	// Purchases
	CreatePurchase(ctx context.Context, p *Purchase) error
	GetPurchase(ctx context.Context, id int64) (*Purchase, error)
	// ListPurchases returns the most recent purchases by descending id.
	ListPurchases(ctx context.Context, limit int) ([]Purchase, error)
	UpdatePurchase(ctx context.Context, id int64, u PurchaseUpdate) error
	SetPurchaseStatus(ctx context.Context, id int64, status PurchaseStatus, cancelledBy *int64) error
	DeletePurchase(ctx context.Context, id int64) error

	// Users (read-only credential check; demo-grade by design)
	GetUserByCredentials(ctx context.Context, email, password string) (*User, error)

	// Dashboard
	Summary(ctx context.Context) (*DashboardSummary, error)
}

// =============================================================================
// TRANSACTIONAL STORE
// =============================================================================

// TxStore wraps Store with transaction support.
type TxStore interface {
	Store

	// WithTx executes fn within a transaction. If fn returns an error
	// the transaction is rolled back, otherwise committed.
	WithTx(ctx context.Context, fn func(Store) error) error
}

// RunInTx executes fn atomically when s supports transactions, and as
// plain sequential writes otherwise. The bool result reports whether
// the writes were atomic, so callers can decide how loudly to report
// a partial failure.
func RunInTx(ctx context.Context, s Store, fn func(Store) error) (atomic bool, err error) {
	if ts, ok := s.(TxStore); ok {
		return true, ts.WithTx(ctx, fn)
	}
	return false, fn(s)
}
