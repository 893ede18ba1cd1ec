package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/wproject-studio/toko-admin/shop"
)

// ConfirmDeleteAllPhrase is the exact confirmation the operator must
// type (case-insensitive) before a delete-all-products action is
// allowed to execute.
const ConfirmDeleteAllPhrase = "DELETE ALL PRODUCTS"

// bulkPhrases mark a name param that clearly refers to the whole
// catalog rather than a single product. Fallback for planner output
// that skipped the explicit scope field.
var bulkPhrases = []string{
	"all products",
	"all product",
	"every product",
	"all items",
	"all stock",
}

func mentionsAllProducts(name string) bool {
	name = strings.ToLower(name)
	if name == "" {
		return false
	}
	for _, phrase := range bulkPhrases {
		if strings.Contains(name, phrase) {
			return true
		}
	}
	return false
}

// Dispatcher executes planned chat actions. It never returns an error:
// every outcome, success or failure, becomes a narration string that
// the chat handler appends to the planner's reply. An empty string
// means there was nothing to narrate (nil action).
type Dispatcher struct {
	svc *Service
	log *zap.Logger
}

func NewDispatcher(svc *Service, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{svc: svc, log: log}
}

// Execute runs one action on behalf of user and narrates the result.
func (d *Dispatcher) Execute(ctx context.Context, action *Action, user *shop.User) string {
	if action == nil {
		return ""
	}
	if user == nil {
		return msgNotLoggedIn
	}

	d.log.Info("executing chat action",
		zap.String("entity", action.Entity),
		zap.String("operation", action.Operation),
		zap.Int64("user_id", user.ID),
		zap.String("role", string(user.Role)),
	)

	switch action.Entity {
	case EntityProduct:
		return d.executeProduct(ctx, action, user)
	case EntityPurchase:
		return d.executePurchase(ctx, action, user)
	default:
		return "I don't recognize that kind of data operation."
	}
}

// ===== PRODUCT ACTIONS =====

func (d *Dispatcher) executeProduct(ctx context.Context, action *Action, user *shop.User) string {
	switch action.Operation {
	case OpCreate:
		return d.productCreate(ctx, action, user)
	case OpRead:
		return d.productRead(ctx, action)
	case OpUpdate:
		return d.productUpdate(ctx, action, user)
	case OpDelete:
		return d.productDelete(ctx, action, user)
	default:
		return "I don't recognize that product operation."
	}
}

func (d *Dispatcher) productCreate(ctx context.Context, action *Action, user *shop.User) string {
	if deny := guardProductWrite(user); deny != "" {
		return deny
	}

	p := action.productCreate()
	if p.Name == "" || p.Category == "" || p.Price == nil {
		return "That request is missing details. I need at least the product's name, category, and price."
	}

	product := &shop.Product{
		Name:        p.Name,
		Category:    p.Category,
		Price:       *p.Price,
		Description: p.Description,
	}
	res, err := d.svc.CreateProduct(ctx, product, p.InitialStock)
	if err != nil {
		d.log.Error("product create failed", zap.Error(err))
		return "Something went wrong while adding the product."
	}
	if !res.StockSaved {
		return fmt.Sprintf("Product %q was created with id %d, but its initial stock could not be saved.", product.Name, product.ID)
	}
	return fmt.Sprintf("Product %q has been added with id %d.", product.Name, product.ID)
}

func (d *Dispatcher) productRead(ctx context.Context, action *Action) string {
	p := action.productRead()

	var items []shop.ProductWithStock
	if p.ID != nil {
		product, err := d.svc.Store().GetProduct(ctx, *p.ID)
		if err != nil {
			d.log.Error("product read failed", zap.Error(err))
			return "Something went wrong while reading product data."
		}
		if product != nil {
			qty := int64(0)
			if stock, err := d.svc.Store().GetStock(ctx, product.ID); err == nil && stock != nil {
				qty = stock.Quantity
			}
			items = append(items, shop.ProductWithStock{Product: *product, Quantity: qty})
		}
	} else {
		var err error
		items, err = d.svc.Store().ListProducts(ctx, p.Query)
		if err != nil {
			d.log.Error("product list failed", zap.Error(err))
			return "Something went wrong while reading product data."
		}
	}

	if len(items) == 0 {
		return "No products match that request."
	}

	var b strings.Builder
	b.WriteString("Here are the products:")
	for _, it := range items {
		fmt.Fprintf(&b, "\n#%d %s (%s) - %s | stock: %d",
			it.ID, it.Name, it.Category, shop.FormatIDR(it.Price), it.Quantity)
	}
	return b.String()
}

func (d *Dispatcher) productUpdate(ctx context.Context, action *Action, user *shop.User) string {
	if deny := guardProductWrite(user); deny != "" {
		return deny
	}

	p := action.productUpdate()

	// Bulk stock write: explicit scope, a bulk phrase in the name, or a
	// stock-only update with no product reference at all.
	bulk := p.Scope == ScopeAll ||
		mentionsAllProducts(p.Name) ||
		(p.ID == nil && p.Name == "" && p.NewStock != nil)

	if bulk && p.NewStock != nil {
		if err := d.svc.Store().SetAllStock(ctx, *p.NewStock); err != nil {
			d.log.Error("bulk stock update failed", zap.Error(err))
			return "Something went wrong while updating stock for all products."
		}
		return fmt.Sprintf("Stock for every product has been set to %d.", *p.NewStock)
	}

	product, err := resolveProduct(ctx, d.svc.Store(), p.ID, p.Name)
	if err != nil {
		d.log.Error("product resolve failed", zap.Error(err))
		return "Something went wrong while looking up the product."
	}
	if product == nil {
		return "I couldn't find the product you mean."
	}

	var update shop.ProductUpdate
	if p.NewName != "" {
		update.Name = &p.NewName
	}
	if p.NewCategory != "" {
		update.Category = &p.NewCategory
	}
	update.Price = p.NewPrice
	update.Description = p.NewDescription

	if !update.IsZero() {
		if err := d.svc.Store().UpdateProduct(ctx, product.ID, update); err != nil {
			d.log.Error("product update failed", zap.Error(err))
			return "Something went wrong while updating the product."
		}
	}
	if p.NewStock != nil {
		if err := d.svc.Store().UpsertStock(ctx, product.ID, *p.NewStock); err != nil {
			d.log.Error("stock update failed", zap.Error(err))
			return fmt.Sprintf("Product #%d was updated, but its stock could not be saved.", product.ID)
		}
	}
	return fmt.Sprintf("Product #%d has been updated.", product.ID)
}

func (d *Dispatcher) productDelete(ctx context.Context, action *Action, user *shop.User) string {
	if deny := guardAdmin(user); deny != "" {
		return deny
	}

	p := action.productDelete()
	deleteAll := p.Scope == ScopeAll || mentionsAllProducts(p.Name)

	if deleteAll {
		if !p.ConfirmDeleteAll {
			return fmt.Sprintf(
				"I detected a request to delete ALL products, but there is no %q confirmation yet. If you are sure, repeat the request by typing exactly: %s",
				ConfirmDeleteAllPhrase, ConfirmDeleteAllPhrase)
		}
		if err := d.svc.DeleteAllProducts(ctx); err != nil {
			d.log.Error("delete all products failed", zap.Error(err))
			return "Something went wrong while deleting all products."
		}
		return "All products and their stock records have been deleted."
	}

	product, err := resolveProduct(ctx, d.svc.Store(), p.ID, p.Name)
	if err != nil {
		d.log.Error("product resolve failed", zap.Error(err))
		return "Something went wrong while looking up the product."
	}
	if product == nil {
		return "I couldn't find the product you mean."
	}

	if err := d.svc.DeleteProduct(ctx, product.ID); err != nil {
		d.log.Error("product delete failed", zap.Int64("product_id", product.ID), zap.Error(err))
		return "Something went wrong while deleting the product."
	}
	return fmt.Sprintf("Product #%d (%q) has been deleted.", product.ID, product.Name)
}

// ===== PURCHASE ACTIONS =====

func (d *Dispatcher) executePurchase(ctx context.Context, action *Action, user *shop.User) string {
	switch action.Operation {
	case OpCreate:
		return d.purchaseCreate(ctx, action, user)
	case OpRead:
		return d.purchaseRead(ctx, action)
	case OpUpdate:
		return d.purchaseUpdate(ctx, action, user)
	case OpDelete:
		return d.purchaseDelete(ctx, action, user)
	default:
		return "I don't recognize that purchase operation."
	}
}

func (d *Dispatcher) purchaseCreate(ctx context.Context, action *Action, user *shop.User) string {
	if deny := guardAdmin(user); deny != "" {
		return deny
	}

	p := action.purchaseCreate()
	if p.Quantity == nil || *p.Quantity <= 0 {
		return "The purchase quantity has not been given."
	}

	product, err := resolveProduct(ctx, d.svc.Store(), p.ProductID, p.ProductName)
	if err != nil {
		d.log.Error("product resolve failed", zap.Error(err))
		return "Something went wrong while looking up the product."
	}
	if product == nil {
		return "I couldn't find the product you mean."
	}

	res, err := d.svc.CreatePurchase(ctx, product, *p.Quantity, p.BuyerName)
	if err != nil {
		if errors.Is(err, shop.ErrInsufficientStock) {
			return "There is not enough stock for this purchase."
		}
		d.log.Error("purchase create failed", zap.Error(err))
		return "Something went wrong while recording the purchase."
	}
	if !res.StockDebited {
		return "The purchase was recorded, but the stock update failed. Please check the stock manually."
	}
	return fmt.Sprintf("Recorded %dx %q for a total of %s.",
		*p.Quantity, product.Name, shop.FormatIDR(res.Purchase.TotalPrice))
}

func (d *Dispatcher) purchaseRead(ctx context.Context, action *Action) string {
	var (
		purchases []shop.Purchase
		err       error
	)
	if id := asID(action.param("id")); id != nil {
		var p *shop.Purchase
		p, err = d.svc.Store().GetPurchase(ctx, *id)
		if p != nil {
			purchases = append(purchases, *p)
		}
	} else {
		purchases, err = d.svc.Store().ListPurchases(ctx, 20)
	}
	if err != nil {
		d.log.Error("purchase read failed", zap.Error(err))
		return "Something went wrong while reading purchase data."
	}
	if len(purchases) == 0 {
		return "There are no matching purchases yet."
	}

	var b strings.Builder
	b.WriteString("Here are the purchases:")
	for _, p := range purchases {
		buyer := p.BuyerName
		if buyer == "" {
			buyer = "-"
		}
		fmt.Fprintf(&b, "\n#%d product_id=%d, qty=%d, total=%s, status=%s, buyer=%s",
			p.ID, p.ProductID, p.Quantity, shop.FormatIDR(p.TotalPrice), p.Status, buyer)
	}
	return b.String()
}

func (d *Dispatcher) purchaseUpdate(ctx context.Context, action *Action, user *shop.User) string {
	if deny := guardPurchaseUpdate(user); deny != "" {
		return deny
	}

	p := action.purchaseUpdate()
	if p.ID == nil {
		return "The id of the purchase to update has not been given."
	}
	if p.NewStatus == "" {
		return "The new status has not been given. Use CONFIRMED or CANCELLED."
	}
	status, err := shop.ParseStatus(p.NewStatus)
	if err != nil {
		return "That status is not valid. Use CONFIRMED or CANCELLED."
	}

	purchase, changed, err := d.svc.SetPurchaseStatus(ctx, *p.ID, status, user)
	switch {
	case errors.Is(err, shop.ErrPurchaseNotFound):
		return "The purchase was not found."
	case errors.Is(err, shop.ErrStatusTerminal):
		return fmt.Sprintf("Purchase #%d was cancelled and its stock already restored, so it cannot be confirmed again.", *p.ID)
	case err != nil:
		d.log.Error("purchase status update failed", zap.Error(err))
		return "Something went wrong while updating the purchase status."
	case !changed:
		return fmt.Sprintf("Purchase #%d is already %s.", purchase.ID, status)
	}
	return fmt.Sprintf("Purchase #%d status has been changed to %s.", purchase.ID, status)
}

func (d *Dispatcher) purchaseDelete(ctx context.Context, action *Action, user *shop.User) string {
	if deny := guardAdmin(user); deny != "" {
		return deny
	}

	id := asID(action.param("id"))
	if id == nil {
		return "The id of the purchase to delete has not been given."
	}

	if err := d.svc.DeletePurchase(ctx, *id); err != nil {
		if errors.Is(err, shop.ErrPurchaseNotFound) {
			return "The purchase was not found."
		}
		d.log.Error("purchase delete failed", zap.Error(err))
		return "Something went wrong while deleting the purchase."
	}
	return fmt.Sprintf("Purchase #%d has been deleted. Its stock was not restored; adjust stock manually if needed.", *id)
}
