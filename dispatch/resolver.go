package dispatch

import (
	"context"

	"github.com/wproject-studio/toko-admin/shop"
)

// resolveProduct turns an id/name reference from the planner into a
// concrete product row.
//
// Resolution order:
//  1. id, if present: exact lookup, a miss resolves to nil (no name
//     fallback, so a wrong id never silently targets another product)
//  2. name: case-insensitive substring match, ambiguity settled
//     deterministically by lowest id
//  3. neither given: nil
func resolveProduct(ctx context.Context, s shop.Store, id *int64, name string) (*shop.Product, error) {
	if id != nil {
		return s.GetProduct(ctx, *id)
	}
	if name != "" {
		return s.FindProductByName(ctx, name)
	}
	return nil, nil
}
