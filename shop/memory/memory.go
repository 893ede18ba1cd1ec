// Package memory provides an in-memory shop.Store implementation
// (for testing/dev). It deliberately does NOT implement shop.TxStore,
// which makes it the reference implementation of the best-effort,
// non-transactional write path.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/wproject-studio/toko-admin/shop"
)

// =============================================================================
// MEMORY STORE
// =============================================================================

type Memory struct {
	mu        sync.RWMutex
	products  map[int64]shop.Product
	stock     map[int64]shop.Stock // keyed by product id
	purchases map[int64]shop.Purchase
	users     map[int64]memUser

	nextProductID  int64
	nextStockID    int64
	nextPurchaseID int64

	// StockWriteErr, when set, makes every stock mutation fail.
	// Test hook for exercising partial-failure narration.
	StockWriteErr error
}

type memUser struct {
	shop.User
	Password string
}

func New() *Memory {
	return &Memory{
		products:  make(map[int64]shop.Product),
		stock:     make(map[int64]shop.Stock),
		purchases: make(map[int64]shop.Purchase),
		users:     make(map[int64]memUser),
	}
}

// AddUser seeds a user for credential checks in tests.
func (m *Memory) AddUser(u shop.User, password string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = memUser{User: u, Password: password}
}

// =============================================================================
// PRODUCTS
// =============================================================================

func (m *Memory) CreateProduct(_ context.Context, p *shop.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextProductID++
	p.ID = m.nextProductID
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	m.products[p.ID] = *p
	return nil
}

func (m *Memory) GetProduct(_ context.Context, id int64) (*shop.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *Memory) FindProductByName(_ context.Context, name string) (*shop.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return nil, nil
	}

	// First match by ascending id, to mirror the SQL ORDER BY id LIMIT 1.
	ids := m.productIDsLocked()
	for _, id := range ids {
		p := m.products[id]
		if strings.Contains(strings.ToLower(p.Name), needle) {
			return &p, nil
		}
	}
	return nil, nil
}

func (m *Memory) ListProducts(_ context.Context, query string) ([]shop.ProductWithStock, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	needle := strings.ToLower(strings.TrimSpace(query))
	var result []shop.ProductWithStock
	for _, id := range m.productIDsLocked() {
		p := m.products[id]
		if needle != "" && !strings.Contains(strings.ToLower(p.Name), needle) {
			continue
		}
		var qty int64
		if s, ok := m.stock[p.ID]; ok {
			qty = s.Quantity
		}
		result = append(result, shop.ProductWithStock{Product: p, Quantity: qty})
	}
	return result, nil
}

func (m *Memory) UpdateProduct(_ context.Context, id int64, u shop.ProductUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.products[id]
	if !ok {
		return shop.ErrProductNotFound
	}
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Category != nil {
		p.Category = *u.Category
	}
	if u.Price != nil {
		p.Price = *u.Price
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	p.UpdatedAt = time.Now().UTC()
	m.products[id] = p
	return nil
}

func (m *Memory) DeleteProduct(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.products[id]; !ok {
		return shop.ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *Memory) DeleteAllProducts(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products = make(map[int64]shop.Product)
	return nil
}

func (m *Memory) productIDsLocked() []int64 {
	ids := make([]int64, 0, len(m.products))
	for id := range m.products {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// =============================================================================
// STOCK
// =============================================================================

func (m *Memory) GetStock(_ context.Context, productID int64) (*shop.Stock, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.stock[productID]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *Memory) UpsertStock(_ context.Context, productID, quantity int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.StockWriteErr != nil {
		return m.StockWriteErr
	}
	s, ok := m.stock[productID]
	if !ok {
		m.nextStockID++
		s = shop.Stock{ID: m.nextStockID, ProductID: productID}
	}
	s.Quantity = quantity
	s.UpdatedAt = time.Now().UTC()
	m.stock[productID] = s
	return nil
}

func (m *Memory) SetAllStock(_ context.Context, quantity int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.StockWriteErr != nil {
		return m.StockWriteErr
	}
	now := time.Now().UTC()
	for pid := range m.products {
		s, ok := m.stock[pid]
		if !ok {
			m.nextStockID++
			s = shop.Stock{ID: m.nextStockID, ProductID: pid}
		}
		s.Quantity = quantity
		s.UpdatedAt = now
		m.stock[pid] = s
	}
	return nil
}

func (m *Memory) DeleteStock(_ context.Context, productID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.StockWriteErr != nil {
		return m.StockWriteErr
	}
	delete(m.stock, productID)
	return nil
}

func (m *Memory) DeleteAllStock(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.StockWriteErr != nil {
		return m.StockWriteErr
	}
	m.stock = make(map[int64]shop.Stock)
	return nil
}

// =============================================================================
// PURCHASES
// =============================================================================

func (m *Memory) CreatePurchase(_ context.Context, p *shop.Purchase) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextPurchaseID++
	p.ID = m.nextPurchaseID
	p.CreatedAt = time.Now().UTC()
	m.purchases[p.ID] = *p
	return nil
}

func (m *Memory) GetPurchase(_ context.Context, id int64) (*shop.Purchase, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.purchases[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *Memory) ListPurchases(_ context.Context, limit int) ([]shop.Purchase, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]int64, 0, len(m.purchases))
	for id := range m.purchases {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })

	var result []shop.Purchase
	for _, id := range ids {
		if limit > 0 && len(result) >= limit {
			break
		}
		result = append(result, m.purchases[id])
	}
	return result, nil
}

func (m *Memory) UpdatePurchase(_ context.Context, id int64, u shop.PurchaseUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.purchases[id]
	if !ok {
		return shop.ErrPurchaseNotFound
	}
	if u.BuyerName != nil {
		p.BuyerName = *u.BuyerName
	}
	if u.Quantity != nil {
		p.Quantity = *u.Quantity
	}
	if u.TotalPrice != nil {
		p.TotalPrice = *u.TotalPrice
	}
	m.purchases[id] = p
	return nil
}

func (m *Memory) SetPurchaseStatus(_ context.Context, id int64, status shop.PurchaseStatus, cancelledBy *int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.purchases[id]
	if !ok {
		return shop.ErrPurchaseNotFound
	}
	p.Status = status
	if status == shop.StatusCancelled {
		now := time.Now().UTC()
		p.CancelledAt = &now
		p.CancelledBy = cancelledBy
	} else {
		p.CancelledAt = nil
		p.CancelledBy = nil
	}
	m.purchases[id] = p
	return nil
}

func (m *Memory) DeletePurchase(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.purchases[id]; !ok {
		return shop.ErrPurchaseNotFound
	}
	delete(m.purchases, id)
	return nil
}

// =============================================================================
// USERS & DASHBOARD
// =============================================================================

func (m *Memory) GetUserByCredentials(_ context.Context, email, password string) (*shop.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) && u.Password == password {
			user := u.User
			return &user, nil
		}
	}
	return nil, nil
}

func (m *Memory) Summary(_ context.Context) (*shop.DashboardSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := &shop.DashboardSummary{ProductCount: int64(len(m.products))}
	for _, st := range m.stock {
		s.StockUnits += st.Quantity
	}
	for _, p := range m.purchases {
		s.PurchaseCount++
		if p.Status == shop.StatusConfirmed {
			s.ConfirmedRevenue += p.TotalPrice
		}
	}
	return s, nil
}
