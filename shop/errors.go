/*
errors.go - Centralized error types for the shop domain

PURPOSE:
  All sentinel errors in one place. Store implementations return these;
  the dispatch layer converts them into user-facing narration instead
  of propagating them, so no chat turn ever fails on a domain error.

SEE ALSO:
  - store.go: Interfaces whose implementations return these
  - dispatch: Converts these into reply text
*/
package shop

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrProductNotFound is returned when a referenced product doesn't exist.
	ErrProductNotFound = errors.New("product not found")

	// ErrPurchaseNotFound is returned when a referenced purchase doesn't exist.
	ErrPurchaseNotFound = errors.New("purchase not found")

	// ErrUserNotFound is returned when a credential check matches no user.
	ErrUserNotFound = errors.New("user not found")

	// ErrInsufficientStock is returned when a purchase (or a quantity
	// increase on an edit) would drive stock negative.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrInvalidStatus is returned for a status outside CONFIRMED/CANCELLED.
	ErrInvalidStatus = errors.New("invalid purchase status")

	// ErrStatusTerminal is returned when a transition out of CANCELLED
	// is attempted. CANCELLED is terminal.
	ErrStatusTerminal = errors.New("cancelled purchase cannot be re-confirmed")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InsufficientStockError reports how short a stock-consuming operation was.
type InsufficientStockError struct {
	ProductID int64
	Available int64
	Requested int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product #%d: available %d, requested %d",
		e.ProductID, e.Available, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}
