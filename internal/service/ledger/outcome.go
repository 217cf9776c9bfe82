package ledger

import (
	"errors"

	"github.com/mamadbah2/autoshop/internal/domain/models"
)

// Result is the structured answer handed to callers such as sales or service
// completion, which decide how to surface a failure to the end user.
type Result struct {
	Success     bool            `json:"success"`
	Message     string          `json:"message"`
	Product     *models.Product `json:"product,omitempty"`
	StockBefore int             `json:"stockBefore"`
	StockAfter  int             `json:"stockAfter"`
	AlertSent   bool            `json:"alertSent,omitempty"`
}

// Outcome folds a ledger call into a Result. successMessage is used when err is nil.
func Outcome(change *Change, err error, successMessage string) Result {
	if err != nil {
		return Result{Success: false, Message: failureMessage(err)}
	}
	return Result{
		Success:     true,
		Message:     successMessage,
		Product:     change.Product,
		StockBefore: change.StockBefore,
		StockAfter:  change.StockAfter,
		AlertSent:   change.AlertSent,
	}
}

func failureMessage(err error) string {
	var insufficient *InsufficientStockError
	switch {
	case errors.As(err, &insufficient):
		return insufficient.Error()
	case errors.Is(err, ErrProductNotFound):
		return "Product not found"
	case errors.Is(err, ErrUserNotFound):
		return "User not found"
	default:
		return err.Error()
	}
}
