package dispatch

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/wproject-studio/toko-admin/shop"
)

// Service implements the multi-step shop operations behind both the
// chat dispatcher and the REST handlers. Operations that touch more
// than one table run through shop.RunInTx: atomic on a transactional
// store, best-effort sequential otherwise. The *Saved/*Debited result
// flags report the non-atomic partial outcomes so callers can narrate
// them honestly.
type Service struct {
	store shop.Store
	log   *zap.Logger
}

func NewService(store shop.Store, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, log: log}
}

// Store exposes the underlying store for plain single-table reads.
func (s *Service) Store() shop.Store {
	return s.store
}

// CreateProductResult reports a product insert plus its optional
// initial stock row.
type CreateProductResult struct {
	Product *shop.Product
	// StockSaved is false when an initial stock was requested but the
	// stock write failed after the product row was already committed
	// (only possible on a non-transactional store).
	StockSaved bool
}

// CreateProduct inserts a product and, when initialStock is set, its
// stock row.
func (s *Service) CreateProduct(ctx context.Context, p *shop.Product, initialStock *int64) (CreateProductResult, error) {
	res := CreateProductResult{Product: p, StockSaved: true}

	atomic, err := shop.RunInTx(ctx, s.store, func(tx shop.Store) error {
		if err := tx.CreateProduct(ctx, p); err != nil {
			return err
		}
		if initialStock != nil {
			if err := tx.UpsertStock(ctx, p.ID, *initialStock); err != nil {
				return fmt.Errorf("save initial stock: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		if !atomic && p.ID != 0 {
			// Product row landed, stock write failed.
			s.log.Warn("initial stock write failed after product insert",
				zap.Int64("product_id", p.ID), zap.Error(err))
			res.StockSaved = false
			return res, nil
		}
		return res, err
	}
	return res, nil
}

// DeleteProduct removes a product and its stock row.
func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	_, err := shop.RunInTx(ctx, s.store, func(tx shop.Store) error {
		if err := tx.DeleteStock(ctx, id); err != nil {
			return err
		}
		return tx.DeleteProduct(ctx, id)
	})
	return err
}

// DeleteAllProducts wipes the catalog: all stock rows first, then all
// products. Callers are responsible for the confirmation protocol.
func (s *Service) DeleteAllProducts(ctx context.Context) error {
	_, err := shop.RunInTx(ctx, s.store, func(tx shop.Store) error {
		if err := tx.DeleteAllStock(ctx); err != nil {
			return err
		}
		return tx.DeleteAllProducts(ctx)
	})
	return err
}

// CreatePurchaseResult reports a recorded sale.
type CreatePurchaseResult struct {
	Purchase *shop.Purchase
	// StockDebited is false when the purchase row was committed but the
	// stock decrement failed (non-transactional store only). The stock
	// figure then needs manual reconciliation.
	StockDebited bool
}

// CreatePurchase records a CONFIRMED sale of quantity units of the
// given product and debits the stock once. The total price is locked
// in at the product's current price and never recomputed afterwards.
// Insufficient (or missing) stock rejects the purchase with
// shop.InsufficientStockError.
func (s *Service) CreatePurchase(ctx context.Context, product *shop.Product, quantity int64, buyerName string) (CreatePurchaseResult, error) {
	purchase := &shop.Purchase{
		ProductID:  product.ID,
		BuyerName:  buyerName,
		Quantity:   quantity,
		TotalPrice: shop.TotalPrice(product.Price, quantity),
		Status:     shop.StatusConfirmed,
	}
	res := CreatePurchaseResult{Purchase: purchase, StockDebited: true}

	atomic, err := shop.RunInTx(ctx, s.store, func(tx shop.Store) error {
		stock, err := tx.GetStock(ctx, product.ID)
		if err != nil {
			return err
		}
		available := int64(0)
		if stock != nil {
			available = stock.Quantity
		}
		if available < quantity {
			return &shop.InsufficientStockError{
				ProductID: product.ID,
				Available: available,
				Requested: quantity,
			}
		}
		if err := tx.CreatePurchase(ctx, purchase); err != nil {
			return err
		}
		if err := tx.UpsertStock(ctx, product.ID, available-quantity); err != nil {
			return fmt.Errorf("debit stock: %w", err)
		}
		return nil
	})
	if err != nil {
		if !atomic && purchase.ID != 0 {
			s.log.Warn("stock debit failed after purchase insert",
				zap.Int64("purchase_id", purchase.ID), zap.Error(err))
			res.StockDebited = false
			return res, nil
		}
		return res, err
	}
	return res, nil
}

// SetPurchaseStatus applies a status transition.
//
// Lifecycle: CONFIRMED -> CANCELLED restores the sold quantity to
// stock and stamps cancelled_at / cancelled_by. CANCELLED is terminal;
// re-confirming returns shop.ErrStatusTerminal (stock was already
// given back, flipping the row again would not re-debit it). Setting
// the current status again is a no-op with changed=false.
func (s *Service) SetPurchaseStatus(ctx context.Context, id int64, status shop.PurchaseStatus, actor *shop.User) (p *shop.Purchase, changed bool, err error) {
	p, err = s.store.GetPurchase(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if p == nil {
		return nil, false, shop.ErrPurchaseNotFound
	}
	if p.Status == status {
		return p, false, nil
	}
	if p.Status == shop.StatusCancelled {
		return p, false, shop.ErrStatusTerminal
	}

	var cancelledBy *int64
	if status == shop.StatusCancelled && actor != nil {
		cancelledBy = &actor.ID
	}

	purchase := p
	_, err = shop.RunInTx(ctx, s.store, func(tx shop.Store) error {
		if err := tx.SetPurchaseStatus(ctx, purchase.ID, status, cancelledBy); err != nil {
			return err
		}
		if status != shop.StatusCancelled {
			return nil
		}
		// Give the sold units back.
		stock, err := tx.GetStock(ctx, purchase.ProductID)
		if err != nil {
			return err
		}
		available := int64(0)
		if stock != nil {
			available = stock.Quantity
		}
		return tx.UpsertStock(ctx, purchase.ProductID, available+purchase.Quantity)
	})
	if err != nil {
		return nil, false, err
	}

	p, err = s.store.GetPurchase(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return p, true, nil
}

// EditPurchase changes a purchase's quantity and/or buyer name. The
// total price is re-derived at the product's CURRENT price. When the
// purchase is CONFIRMED, stock is adjusted by the quantity delta, with
// an insufficient-stock check on increases. CANCELLED rows can be
// edited freely since their stock was already restored.
func (s *Service) EditPurchase(ctx context.Context, id int64, newQuantity *int64, buyerName *string) (*shop.Purchase, error) {
	p, err := s.store.GetPurchase(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, shop.ErrPurchaseNotFound
	}

	update := shop.PurchaseUpdate{BuyerName: buyerName}
	var stockDelta int64

	if newQuantity != nil && *newQuantity != p.Quantity {
		if *newQuantity <= 0 {
			return nil, fmt.Errorf("quantity must be positive")
		}
		product, err := s.store.GetProduct(ctx, p.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, shop.ErrProductNotFound
		}
		total := shop.TotalPrice(product.Price, *newQuantity)
		update.Quantity = newQuantity
		update.TotalPrice = &total
		if p.Status == shop.StatusConfirmed {
			stockDelta = *newQuantity - p.Quantity
		}
	}

	purchase := p
	_, err = shop.RunInTx(ctx, s.store, func(tx shop.Store) error {
		if stockDelta != 0 {
			stock, err := tx.GetStock(ctx, purchase.ProductID)
			if err != nil {
				return err
			}
			available := int64(0)
			if stock != nil {
				available = stock.Quantity
			}
			if available < stockDelta {
				return &shop.InsufficientStockError{
					ProductID: purchase.ProductID,
					Available: available,
					Requested: stockDelta,
				}
			}
			if err := tx.UpsertStock(ctx, purchase.ProductID, available-stockDelta); err != nil {
				return err
			}
		}
		return tx.UpdatePurchase(ctx, purchase.ID, update)
	})
	if err != nil {
		return nil, err
	}

	return s.store.GetPurchase(ctx, id)
}

// DeletePurchase removes the purchase row. Stock is deliberately NOT
// restored: deletion is bookkeeping removal, not a cancellation, so
// any stock correction is a manual follow-up.
func (s *Service) DeletePurchase(ctx context.Context, id int64) error {
	return s.store.DeletePurchase(ctx, id)
}
