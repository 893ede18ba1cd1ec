package sqlite_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wproject-studio/toko-admin/shop"
	"github.com/wproject-studio/toko-admin/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func seedProduct(t *testing.T, store *sqlite.Store, name, category string, price, stock int64) *shop.Product {
	ctx := context.Background()
	p := &shop.Product{Name: name, Category: category, Price: price}
	require.NoError(t, store.CreateProduct(ctx, p))
	require.NotZero(t, p.ID)
	require.NoError(t, store.UpsertStock(ctx, p.ID, stock))
	return p
}

// =============================================================================
// PRODUCT TESTS
// =============================================================================

func TestProductCRUD(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p := seedProduct(t, store, "Two-Seat Sofa", "sofa", 2_500_000, 4)

	got, err := store.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Two-Seat Sofa", got.Name)
	assert.Equal(t, int64(2_500_000), got.Price)

	newName := "Premium Sofa"
	newPrice := int64(3_000_000)
	err = store.UpdateProduct(ctx, p.ID, shop.ProductUpdate{Name: &newName, Price: &newPrice})
	require.NoError(t, err)

	got, err = store.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Premium Sofa", got.Name)
	assert.Equal(t, int64(3_000_000), got.Price)
	// Untouched fields survive a partial update.
	assert.Equal(t, "sofa", got.Category)

	require.NoError(t, store.DeleteProduct(ctx, p.ID))

	got, err = store.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got, "deleted product should read as nil, not error")
}

func TestProductNotFoundSemantics(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	got, err := store.GetProduct(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, got)

	name := "x"
	err = store.UpdateProduct(ctx, 999, shop.ProductUpdate{Name: &name})
	assert.ErrorIs(t, err, shop.ErrProductNotFound)

	err = store.DeleteProduct(ctx, 999)
	assert.ErrorIs(t, err, shop.ErrProductNotFound)
}

func TestFindProductByName(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := seedProduct(t, store, "Office Chair Deluxe", "chair", 900_000, 2)
	seedProduct(t, store, "Office Chair Basic", "chair", 400_000, 2)

	// Case-insensitive substring match.
	got, err := store.FindProductByName(ctx, "office chair")
	require.NoError(t, err)
	require.NotNil(t, got)

	// Ambiguity resolves to the lowest id.
	assert.Equal(t, first.ID, got.ID)

	got, err = store.FindProductByName(ctx, "bookshelf")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = store.FindProductByName(ctx, "")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestListProductsIncludesStock(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seedProduct(t, store, "Sofa", "sofa", 2_000_000, 7)

	// Product without a stock row reads as quantity 0.
	noStock := &shop.Product{Name: "Bookshelf", Category: "storage", Price: 750_000}
	require.NoError(t, store.CreateProduct(ctx, noStock))

	items, err := store.ListProducts(ctx, "")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, int64(7), items[0].Quantity)
	assert.Equal(t, int64(0), items[1].Quantity)

	filtered, err := store.ListProducts(ctx, "book")
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "Bookshelf", filtered[0].Name)
}

// =============================================================================
// STOCK TESTS
// =============================================================================

func TestSetAllStockCreatesMissingRows(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	withStock := seedProduct(t, store, "Sofa", "sofa", 2_000_000, 9)
	noStock := &shop.Product{Name: "Table", Category: "table", Price: 1_200_000}
	require.NoError(t, store.CreateProduct(ctx, noStock))

	require.NoError(t, store.SetAllStock(ctx, 0))

	for _, id := range []int64{withStock.ID, noStock.ID} {
		stock, err := store.GetStock(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, stock, "product %d should have a stock row", id)
		assert.Equal(t, int64(0), stock.Quantity)
	}
}

func TestUpsertStockOverwrites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p := seedProduct(t, store, "Sofa", "sofa", 2_000_000, 3)
	require.NoError(t, store.UpsertStock(ctx, p.ID, 10))

	stock, err := store.GetStock(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), stock.Quantity, "upsert overwrites, it does not add")
}

// =============================================================================
// PURCHASE TESTS
// =============================================================================

func TestPurchaseLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p := seedProduct(t, store, "Sofa", "sofa", 2_000_000, 5)

	purchase := &shop.Purchase{
		ProductID:  p.ID,
		BuyerName:  "Budi",
		Quantity:   2,
		TotalPrice: shop.TotalPrice(p.Price, 2),
	}
	require.NoError(t, store.CreatePurchase(ctx, purchase))
	require.NotZero(t, purchase.ID)
	assert.Equal(t, shop.StatusConfirmed, purchase.Status, "status defaults to CONFIRMED")

	actor := int64(7)
	require.NoError(t, store.SetPurchaseStatus(ctx, purchase.ID, shop.StatusCancelled, &actor))

	got, err := store.GetPurchase(ctx, purchase.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, shop.StatusCancelled, got.Status)
	require.NotNil(t, got.CancelledAt)
	require.NotNil(t, got.CancelledBy)
	assert.Equal(t, actor, *got.CancelledBy)

	require.NoError(t, store.DeletePurchase(ctx, purchase.ID))
	got, err = store.GetPurchase(ctx, purchase.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestListPurchasesNewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p := seedProduct(t, store, "Sofa", "sofa", 2_000_000, 100)
	for i := 0; i < 25; i++ {
		require.NoError(t, store.CreatePurchase(ctx, &shop.Purchase{
			ProductID:  p.ID,
			BuyerName:  fmt.Sprintf("buyer-%d", i),
			Quantity:   1,
			TotalPrice: p.Price,
		}))
	}

	purchases, err := store.ListPurchases(ctx, 20)
	require.NoError(t, err)
	require.Len(t, purchases, 20)
	assert.Greater(t, purchases[0].ID, purchases[1].ID, "newest first")
	assert.Equal(t, "buyer-24", purchases[0].BuyerName)
}

// =============================================================================
// TRANSACTION TESTS
// =============================================================================

func TestWithTxRollsBackOnError(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p := seedProduct(t, store, "Sofa", "sofa", 2_000_000, 5)

	err := store.WithTx(ctx, func(tx shop.Store) error {
		if err := tx.UpsertStock(ctx, p.ID, 0); err != nil {
			return err
		}
		return fmt.Errorf("boom")
	})
	require.Error(t, err)

	stock, err := store.GetStock(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), stock.Quantity, "rolled back write must not be visible")
}

func TestRunInTxReportsAtomic(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	atomic, err := shop.RunInTx(ctx, store, func(tx shop.Store) error {
		return nil
	})
	require.NoError(t, err)
	assert.True(t, atomic)
}

// =============================================================================
// USER & SUMMARY TESTS
// =============================================================================

func TestGetUserByCredentials(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveUser(ctx,
		shop.User{Email: "admin@toko.dev", FullName: "Toko Admin", Role: shop.RoleAdmin},
		"admin123"))

	u, err := store.GetUserByCredentials(ctx, "admin@toko.dev", "admin123")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, shop.RoleAdmin, u.Role)
	assert.Equal(t, "Toko Admin", u.FullName)

	u, err = store.GetUserByCredentials(ctx, "admin@toko.dev", "wrong")
	require.NoError(t, err)
	assert.Nil(t, u)

	u, err = store.GetUserByCredentials(ctx, "nobody@toko.dev", "admin123")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestSummary(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p := seedProduct(t, store, "Sofa", "sofa", 2_000_000, 5)
	seedProduct(t, store, "Table", "table", 1_000_000, 3)

	require.NoError(t, store.CreatePurchase(ctx, &shop.Purchase{
		ProductID: p.ID, Quantity: 1, TotalPrice: 2_000_000,
	}))
	cancelled := &shop.Purchase{ProductID: p.ID, Quantity: 1, TotalPrice: 2_000_000}
	require.NoError(t, store.CreatePurchase(ctx, cancelled))
	require.NoError(t, store.SetPurchaseStatus(ctx, cancelled.ID, shop.StatusCancelled, nil))

	sum, err := store.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), sum.ProductCount)
	assert.Equal(t, int64(8), sum.StockUnits)
	assert.Equal(t, int64(2), sum.PurchaseCount)
	assert.Equal(t, int64(2_000_000), sum.ConfirmedRevenue, "cancelled rows excluded from revenue")
}
