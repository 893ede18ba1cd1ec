/*
Package sqlite provides the SQLite-backed implementation of shop.Store.

PURPOSE:
  Implements shop.Store and shop.TxStore using SQLite. In production,
  the same patterns apply to PostgreSQL - only minor SQL dialect
  differences.

KEY TABLES:
  products:       Catalog entries (numeric autoincrement ids)
  product_stock:  One row per product, quantity on hand
  purchases:      Sales records with the CONFIRMED/CANCELLED lifecycle
  users:          Back-office operators (read-only credential check)

TRANSACTIONS:
  WithTx wraps multi-row operations (purchase insert + stock decrement,
  product delete + stock delete, delete-all) in a single SQL
  transaction, so partial-failure handling only matters for stores
  without transaction support.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/toko.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - shop/store.go: Interface definitions
  - shop/memory/memory.go: In-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/wproject-studio/toko-admin/shop"
)

// dbtx is the subset of *sql.DB / *sql.Tx the queries need, so the
// same helpers serve both the plain store and the transactional view.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store implements shop.TxStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every pooled connection to :memory: would be its own empty
	// database, so pin the pool to one connection.
	if strings.Contains(dbPath, ":memory:") {
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS products (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		category TEXT NOT NULL,
		price INTEGER NOT NULL,
		description TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_products_name ON products(name COLLATE NOCASE);
	CREATE INDEX IF NOT EXISTS idx_products_category ON products(category);

	CREATE TABLE IF NOT EXISTS product_stock (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		product_id INTEGER NOT NULL UNIQUE REFERENCES products(id) ON DELETE CASCADE,
		quantity INTEGER NOT NULL DEFAULT 0 CHECK (quantity >= 0),
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS purchases (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		product_id INTEGER NOT NULL,
		buyer_name TEXT,
		quantity INTEGER NOT NULL CHECK (quantity > 0),
		total_price INTEGER NOT NULL,
		status TEXT NOT NULL DEFAULT 'CONFIRMED',
		created_at TEXT NOT NULL,
		cancelled_at TEXT,
		cancelled_by INTEGER
	);

	CREATE INDEX IF NOT EXISTS idx_purchases_product ON purchases(product_id);
	CREATE INDEX IF NOT EXISTS idx_purchases_status ON purchases(status);

	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		email TEXT NOT NULL UNIQUE,
		full_name TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'staff',
		password TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// =============================================================================
// PRODUCTS
// =============================================================================

// CreateProduct inserts a product row and fills in its generated id.
func (s *Store) CreateProduct(ctx context.Context, p *shop.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return createProduct(ctx, s.db, p)
}

func createProduct(ctx context.Context, db dbtx, p *shop.Product) error {
	ts := now()
	res, err := db.ExecContext(ctx, `
		INSERT INTO products (name, category, price, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		p.Name, p.Category, p.Price, nullString(p.Description), ts, ts,
	)
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read product id: %w", err)
	}
	p.ID = id
	p.CreatedAt, _ = time.Parse(time.RFC3339, ts)
	p.UpdatedAt = p.CreatedAt
	return nil
}

func (s *Store) GetProduct(ctx context.Context, id int64) (*shop.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getProduct(ctx, s.db, id)
}

func getProduct(ctx context.Context, db dbtx, id int64) (*shop.Product, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, name, category, price, description, created_at, updated_at
		FROM products WHERE id = ?`, id)
	return scanProduct(row)
}

func (s *Store) FindProductByName(ctx context.Context, name string) (*shop.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return findProductByName(ctx, s.db, name)
}

func findProductByName(ctx context.Context, db dbtx, name string) (*shop.Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	// Ambiguous partial matches resolve to the first match by ascending id.
	row := db.QueryRowContext(ctx, `
		SELECT id, name, category, price, description, created_at, updated_at
		FROM products
		WHERE name LIKE '%' || ? || '%' COLLATE NOCASE
		ORDER BY id ASC LIMIT 1`, name)
	return scanProduct(row)
}

func (s *Store) ListProducts(ctx context.Context, query string) ([]shop.ProductWithStock, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sqlQuery := `
		SELECT p.id, p.name, p.category, p.price, p.description, p.created_at, p.updated_at,
		       COALESCE(st.quantity, 0)
		FROM products p
		LEFT JOIN product_stock st ON st.product_id = p.id
	`
	var args []any
	if q := strings.TrimSpace(query); q != "" {
		sqlQuery += ` WHERE p.name LIKE '%' || ? || '%' COLLATE NOCASE`
		args = append(args, q)
	}
	sqlQuery += ` ORDER BY p.id ASC`

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var result []shop.ProductWithStock
	for rows.Next() {
		var (
			pws         shop.ProductWithStock
			description sql.NullString
			createdAt   string
			updatedAt   string
		)
		if err := rows.Scan(&pws.ID, &pws.Name, &pws.Category, &pws.Price,
			&description, &createdAt, &updatedAt, &pws.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		pws.Description = description.String
		pws.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		pws.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		result = append(result, pws)
	}
	return result, rows.Err()
}

func (s *Store) UpdateProduct(ctx context.Context, id int64, u shop.ProductUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return updateProduct(ctx, s.db, id, u)
}

func updateProduct(ctx context.Context, db dbtx, id int64, u shop.ProductUpdate) error {
	sets := []string{"updated_at = ?"}
	args := []any{now()}
	if u.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *u.Name)
	}
	if u.Category != nil {
		sets = append(sets, "category = ?")
		args = append(args, *u.Category)
	}
	if u.Price != nil {
		sets = append(sets, "price = ?")
		args = append(args, *u.Price)
	}
	if u.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, nullString(*u.Description))
	}
	args = append(args, id)

	res, err := db.ExecContext(ctx,
		"UPDATE products SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return shop.ErrProductNotFound
	}
	return nil
}

func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteProduct(ctx, s.db, id)
}

func deleteProduct(ctx context.Context, db dbtx, id int64) error {
	res, err := db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return shop.ErrProductNotFound
	}
	return nil
}

func (s *Store) DeleteAllProducts(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteAllProducts(ctx, s.db)
}

func deleteAllProducts(ctx context.Context, db dbtx) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM products`); err != nil {
		return fmt.Errorf("failed to delete products: %w", err)
	}
	return nil
}

func scanProduct(row *sql.Row) (*shop.Product, error) {
	var (
		p           shop.Product
		description sql.NullString
		createdAt   string
		updatedAt   string
	)
	err := row.Scan(&p.ID, &p.Name, &p.Category, &p.Price, &description, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan product: %w", err)
	}
	p.Description = description.String
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	p.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &p, nil
}

// =============================================================================
// STOCK
// =============================================================================

func (s *Store) GetStock(ctx context.Context, productID int64) (*shop.Stock, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getStock(ctx, s.db, productID)
}

func getStock(ctx context.Context, db dbtx, productID int64) (*shop.Stock, error) {
	var (
		st        shop.Stock
		updatedAt string
	)
	err := db.QueryRowContext(ctx, `
		SELECT id, product_id, quantity, updated_at
		FROM product_stock WHERE product_id = ?`, productID).
		Scan(&st.ID, &st.ProductID, &st.Quantity, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan stock: %w", err)
	}
	st.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &st, nil
}

func (s *Store) UpsertStock(ctx context.Context, productID, quantity int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return upsertStock(ctx, s.db, productID, quantity)
}

func upsertStock(ctx context.Context, db dbtx, productID, quantity int64) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO product_stock (product_id, quantity, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(product_id) DO UPDATE SET quantity = excluded.quantity, updated_at = excluded.updated_at`,
		productID, quantity, now(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert stock: %w", err)
	}
	return nil
}

func (s *Store) SetAllStock(ctx context.Context, quantity int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return setAllStock(ctx, s.db, quantity)
}

func setAllStock(ctx context.Context, db dbtx, quantity int64) error {
	ts := now()
	// Overwrite existing rows, then create rows for products that have
	// none, so the bulk set reaches every product.
	if _, err := db.ExecContext(ctx,
		`UPDATE product_stock SET quantity = ?, updated_at = ?`, quantity, ts); err != nil {
		return fmt.Errorf("failed to update stock: %w", err)
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO product_stock (product_id, quantity, updated_at)
		SELECT p.id, ?, ? FROM products p
		WHERE NOT EXISTS (SELECT 1 FROM product_stock st WHERE st.product_id = p.id)`,
		quantity, ts,
	)
	if err != nil {
		return fmt.Errorf("failed to create stock rows: %w", err)
	}
	return nil
}

func (s *Store) DeleteStock(ctx context.Context, productID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteStock(ctx, s.db, productID)
}

func deleteStock(ctx context.Context, db dbtx, productID int64) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM product_stock WHERE product_id = ?`, productID); err != nil {
		return fmt.Errorf("failed to delete stock: %w", err)
	}
	return nil
}

func (s *Store) DeleteAllStock(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteAllStock(ctx, s.db)
}

func deleteAllStock(ctx context.Context, db dbtx) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM product_stock`); err != nil {
		return fmt.Errorf("failed to delete stock: %w", err)
	}
	return nil
}

// =============================================================================
// PURCHASES
// =============================================================================

func (s *Store) CreatePurchase(ctx context.Context, p *shop.Purchase) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return createPurchase(ctx, s.db, p)
}

func createPurchase(ctx context.Context, db dbtx, p *shop.Purchase) error {
	if p.Status == "" {
		p.Status = shop.StatusConfirmed
	}
	ts := now()
	res, err := db.ExecContext(ctx, `
		INSERT INTO purchases (product_id, buyer_name, quantity, total_price, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		p.ProductID, nullString(p.BuyerName), p.Quantity, p.TotalPrice, p.Status, ts,
	)
	if err != nil {
		return fmt.Errorf("failed to insert purchase: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read purchase id: %w", err)
	}
	p.ID = id
	p.CreatedAt, _ = time.Parse(time.RFC3339, ts)
	return nil
}

const purchaseSelect = `
	SELECT id, product_id, buyer_name, quantity, total_price, status,
	       created_at, cancelled_at, cancelled_by
	FROM purchases`

func (s *Store) GetPurchase(ctx context.Context, id int64) (*shop.Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getPurchase(ctx, s.db, id)
}

func getPurchase(ctx context.Context, db dbtx, id int64) (*shop.Purchase, error) {
	rows, err := db.QueryContext(ctx, purchaseSelect+` WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query purchase: %w", err)
	}
	defer rows.Close()
	if !rows.Next() {
		return nil, rows.Err()
	}
	p, err := scanPurchase(rows)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) ListPurchases(ctx context.Context, limit int) ([]shop.Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := purchaseSelect + ` ORDER BY id DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query purchases: %w", err)
	}
	defer rows.Close()

	var result []shop.Purchase
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (s *Store) UpdatePurchase(ctx context.Context, id int64, u shop.PurchaseUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return updatePurchase(ctx, s.db, id, u)
}

func updatePurchase(ctx context.Context, db dbtx, id int64, u shop.PurchaseUpdate) error {
	var (
		sets []string
		args []any
	)
	if u.BuyerName != nil {
		sets = append(sets, "buyer_name = ?")
		args = append(args, nullString(*u.BuyerName))
	}
	if u.Quantity != nil {
		sets = append(sets, "quantity = ?")
		args = append(args, *u.Quantity)
	}
	if u.TotalPrice != nil {
		sets = append(sets, "total_price = ?")
		args = append(args, *u.TotalPrice)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)

	res, err := db.ExecContext(ctx,
		"UPDATE purchases SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("failed to update purchase: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return shop.ErrPurchaseNotFound
	}
	return nil
}

func (s *Store) SetPurchaseStatus(ctx context.Context, id int64, status shop.PurchaseStatus, cancelledBy *int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return setPurchaseStatus(ctx, s.db, id, status, cancelledBy)
}

func setPurchaseStatus(ctx context.Context, db dbtx, id int64, status shop.PurchaseStatus, cancelledBy *int64) error {
	var (
		cancelledAt any
		cancelledID any
	)
	if status == shop.StatusCancelled {
		cancelledAt = now()
		if cancelledBy != nil {
			cancelledID = *cancelledBy
		}
	}

	res, err := db.ExecContext(ctx, `
		UPDATE purchases SET status = ?, cancelled_at = ?, cancelled_by = ?
		WHERE id = ?`,
		status, cancelledAt, cancelledID, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update purchase status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return shop.ErrPurchaseNotFound
	}
	return nil
}

func (s *Store) DeletePurchase(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deletePurchase(ctx, s.db, id)
}

func deletePurchase(ctx context.Context, db dbtx, id int64) error {
	res, err := db.ExecContext(ctx, `DELETE FROM purchases WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete purchase: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return shop.ErrPurchaseNotFound
	}
	return nil
}

func scanPurchase(rows *sql.Rows) (shop.Purchase, error) {
	var (
		p           shop.Purchase
		buyerName   sql.NullString
		createdAt   string
		cancelledAt sql.NullString
		cancelledBy sql.NullInt64
	)
	err := rows.Scan(&p.ID, &p.ProductID, &buyerName, &p.Quantity, &p.TotalPrice,
		&p.Status, &createdAt, &cancelledAt, &cancelledBy)
	if err != nil {
		return p, fmt.Errorf("failed to scan purchase: %w", err)
	}
	p.BuyerName = buyerName.String
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	if cancelledAt.Valid {
		t, _ := time.Parse(time.RFC3339, cancelledAt.String)
		p.CancelledAt = &t
	}
	if cancelledBy.Valid {
		v := cancelledBy.Int64
		p.CancelledBy = &v
	}
	return p, nil
}

// =============================================================================
// USERS & DASHBOARD
// =============================================================================

// GetUserByCredentials matches email+password and never returns the
// password column. Plain-text comparison, matching the seeded demo
// accounts.
func (s *Store) GetUserByCredentials(ctx context.Context, email, password string) (*shop.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var u shop.User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, full_name, role FROM users
		WHERE email = ? COLLATE NOCASE AND password = ?`,
		email, password,
	).Scan(&u.ID, &u.Email, &u.FullName, &u.Role)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &u, nil
}

// SaveUser inserts a user row. Used by seeding and tests.
func (s *Store) SaveUser(ctx context.Context, u shop.User, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (email, full_name, role, password)
		VALUES (?, ?, ?, ?)`,
		u.Email, u.FullName, u.Role, password,
	)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// CountUsers reports how many user rows exist. The server seeds demo
// accounts only when the table is empty.
func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

func (s *Store) Summary(ctx context.Context) (*shop.DashboardSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sum shop.DashboardSummary
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM products),
			(SELECT COALESCE(SUM(quantity), 0) FROM product_stock),
			(SELECT COUNT(*) FROM purchases),
			(SELECT COALESCE(SUM(total_price), 0) FROM purchases WHERE status = 'CONFIRMED')`,
	).Scan(&sum.ProductCount, &sum.StockUnits, &sum.PurchaseCount, &sum.ConfirmedRevenue)
	if err != nil {
		return nil, fmt.Errorf("failed to query summary: %w", err)
	}
	return &sum, nil
}

// =============================================================================
// TRANSACTIONS (shop.TxStore)
// =============================================================================

// WithTx executes fn within a database transaction. The transaction is
// rolled back if fn returns an error.
func (s *Store) WithTx(ctx context.Context, fn func(shop.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&txStore{tx: sqlTx}); err != nil {
		return err
	}
	return sqlTx.Commit()
}

// txStore is the view of the store inside WithTx. It reuses the shared
// query helpers against the open transaction and takes no locks (the
// parent holds the write lock for the duration of WithTx).
type txStore struct {
	tx *sql.Tx
}

func (ts *txStore) CreateProduct(ctx context.Context, p *shop.Product) error {
	return createProduct(ctx, ts.tx, p)
}

func (ts *txStore) GetProduct(ctx context.Context, id int64) (*shop.Product, error) {
	return getProduct(ctx, ts.tx, id)
}

func (ts *txStore) FindProductByName(ctx context.Context, name string) (*shop.Product, error) {
	return findProductByName(ctx, ts.tx, name)
}

func (ts *txStore) ListProducts(ctx context.Context, query string) ([]shop.ProductWithStock, error) {
	return nil, fmt.Errorf("ListProducts is not supported inside a transaction")
}

func (ts *txStore) UpdateProduct(ctx context.Context, id int64, u shop.ProductUpdate) error {
	return updateProduct(ctx, ts.tx, id, u)
}

func (ts *txStore) DeleteProduct(ctx context.Context, id int64) error {
	return deleteProduct(ctx, ts.tx, id)
}

func (ts *txStore) DeleteAllProducts(ctx context.Context) error {
	return deleteAllProducts(ctx, ts.tx)
}

func (ts *txStore) GetStock(ctx context.Context, productID int64) (*shop.Stock, error) {
	return getStock(ctx, ts.tx, productID)
}

func (ts *txStore) UpsertStock(ctx context.Context, productID, quantity int64) error {
	return upsertStock(ctx, ts.tx, productID, quantity)
}

func (ts *txStore) SetAllStock(ctx context.Context, quantity int64) error {
	return setAllStock(ctx, ts.tx, quantity)
}

func (ts *txStore) DeleteStock(ctx context.Context, productID int64) error {
	return deleteStock(ctx, ts.tx, productID)
}

func (ts *txStore) DeleteAllStock(ctx context.Context) error {
	return deleteAllStock(ctx, ts.tx)
}

func (ts *txStore) CreatePurchase(ctx context.Context, p *shop.Purchase) error {
	return createPurchase(ctx, ts.tx, p)
}

func (ts *txStore) GetPurchase(ctx context.Context, id int64) (*shop.Purchase, error) {
	return getPurchase(ctx, ts.tx, id)
}

func (ts *txStore) ListPurchases(ctx context.Context, limit int) ([]shop.Purchase, error) {
	return nil, fmt.Errorf("ListPurchases is not supported inside a transaction")
}

func (ts *txStore) UpdatePurchase(ctx context.Context, id int64, u shop.PurchaseUpdate) error {
	return updatePurchase(ctx, ts.tx, id, u)
}

func (ts *txStore) SetPurchaseStatus(ctx context.Context, id int64, status shop.PurchaseStatus, cancelledBy *int64) error {
	return setPurchaseStatus(ctx, ts.tx, id, status, cancelledBy)
}

func (ts *txStore) DeletePurchase(ctx context.Context, id int64) error {
	return deletePurchase(ctx, ts.tx, id)
}

func (ts *txStore) GetUserByCredentials(ctx context.Context, email, password string) (*shop.User, error) {
	return nil, fmt.Errorf("GetUserByCredentials is not supported inside a transaction")
}

func (ts *txStore) Summary(ctx context.Context) (*shop.DashboardSummary, error) {
	return nil, fmt.Errorf("Summary is not supported inside a transaction")
}

// =============================================================================
// HELPERS
// =============================================================================

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
