package ledger

import (
	"errors"
	"fmt"
)

var (
	ErrProductNotFound     = errors.New("product not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrInvalidQuantity     = errors.New("quantity must be greater than zero")
	ErrInvalidPrice        = errors.New("unit price must not be negative")
	ErrInvalidReference    = errors.New("invalid reference type")
	ErrInvalidMovementType = errors.New("invalid movement type for stock addition")
	ErrConcurrentUpdate    = errors.New("product was modified concurrently")
)

// InsufficientStockError carries the quantities involved in a rejected deduction.
type InsufficientStockError struct {
	Available int
	Required  int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Insufficient stock. Available: %d, Required: %d", e.Available, e.Required)
}

func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}
