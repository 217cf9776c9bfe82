// Package alerts decides when a low-stock notification episode starts and
// keeps it from repeating until stock recovers.
package alerts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/mamadbah2/autoshop/internal/config"
	"github.com/mamadbah2/autoshop/internal/domain/models"
	"github.com/mamadbah2/autoshop/internal/repository"
)

// releaseAttempts bounds the re-reads spent reopening a latch whose
// dispatch failed.
const releaseAttempts = 3

// ProductStore persists the alert latch and lists products still waiting for one.
type ProductStore interface {
	GetProduct(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	SaveProduct(ctx context.Context, p *models.Product, expectedVersion int64) error
	FindLowStock(ctx context.Context) ([]models.LowStockItem, error)
}

// Directory lists the staff who must hear about low stock.
type Directory interface {
	FindAlertRecipients(ctx context.Context, roles []string) ([]models.Contact, error)
}

// Notifier delivers one alert and reports whether it got through.
type Notifier interface {
	SendAlert(ctx context.Context, contact models.Contact, message string) bool
}

// Mailer queues an email copy of an alert. Copies never count as deliveries.
type Mailer interface {
	SendEmail(ctx context.Context, to, subject, message string) bool
}

// Trigger evaluates products after stock decreases.
type Trigger struct {
	products  ProductStore
	directory Directory
	notifier  Notifier
	mailer    Mailer
	roles     []string
	timeout   time.Duration
	now       func() time.Time
	logger    *zap.Logger
}

// NewTrigger wires an alert trigger.
func NewTrigger(products ProductStore, directory Directory, notifier Notifier, cfg config.AlertsConfig, logger *zap.Logger) *Trigger {
	if logger == nil {
		logger = zap.NewNop()
	}
	roles := cfg.Roles
	if len(roles) == 0 {
		roles = []string{models.RoleAdmin, models.RoleInventoryManager}
	}
	mailer, _ := notifier.(Mailer)
	return &Trigger{
		products:  products,
		directory: directory,
		notifier:  notifier,
		mailer:    mailer,
		roles:     roles,
		timeout:   cfg.NotifyTimeout,
		now:       time.Now,
		logger:    logger,
	}
}

// LowStockMessage renders the text sent to every recipient.
func LowStockMessage(p *models.Product) string {
	return fmt.Sprintf("LOW STOCK ALERT: %s (SKU: %s) is running low. Current stock: %d, Reorder level: %d. Please restock immediately.",
		p.ProductName, p.DisplaySKU(), p.StockQty, p.ReorderLevel)
}

// Evaluate dispatches an alert for p when it sits at or below its reorder
// level and no alert went out in the current episode. The latch is claimed
// with a version-checked write before anything is sent, so only one caller
// per episode dispatches. It is released again when no delivery succeeded.
// p is updated in place with the stored latch state. The result reports
// whether the alert went out.
func (t *Trigger) Evaluate(ctx context.Context, p *models.Product) bool {
	if !p.NeedsLowStockAlert() {
		return false
	}

	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	log := t.logger.With(zap.String("product_id", p.ID.Hex()), zap.String("product", p.ProductName))

	contacts, err := t.directory.FindAlertRecipients(ctx, t.roles)
	if err != nil {
		log.Error("failed to load alert recipients", zap.Error(err))
		return false
	}
	if len(contacts) == 0 {
		log.Warn("no eligible alert recipients, latch left open")
		return false
	}

	// Mongo stores milliseconds; the claim time doubles as the claim token.
	claimedAt := t.now().UTC().Truncate(time.Millisecond)
	previousAlert := p.LastAlertDate

	claimed := *p
	claimed.LowStockAlertSent = true
	claimed.LastAlertDate = &claimedAt
	claimed.Version = p.Version + 1
	claimed.UpdatedAt = claimedAt
	if err := t.products.SaveProduct(ctx, &claimed, p.Version); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			log.Debug("alert latch claimed by a concurrent writer")
		} else {
			log.Error("failed to claim alert latch", zap.Error(err))
		}
		return false
	}
	*p = claimed

	message := LowStockMessage(p)
	delivered := 0
	for _, contact := range contacts {
		if t.notifier.SendAlert(ctx, contact, message) {
			delivered++
		}
	}
	if delivered == 0 {
		log.Warn("low stock alert not delivered to any recipient", zap.Int("recipients", len(contacts)))
		t.release(context.WithoutCancel(ctx), p, claimedAt, previousAlert)
		return false
	}

	t.queueEmails(ctx, contacts, p, message)

	log.Info("low stock alert sent",
		zap.Int("delivered", delivered),
		zap.Int("recipients", len(contacts)),
		zap.Int("stock_qty", p.StockQty),
		zap.Int("reorder_level", p.ReorderLevel))
	return true
}

// queueEmails sends an email copy to every contact that has an address.
func (t *Trigger) queueEmails(ctx context.Context, contacts []models.Contact, p *models.Product, message string) {
	if t.mailer == nil {
		return
	}
	subject := "Low stock alert: " + p.ProductName
	for _, contact := range contacts {
		if contact.Email == "" {
			continue
		}
		t.mailer.SendEmail(ctx, contact.Email, subject, message)
	}
}

// release reopens the latch claimed at claimedAt. Writers that changed the
// stock in the meantime are tolerated; a latch that was cleared or claimed
// again since is left alone.
func (t *Trigger) release(ctx context.Context, p *models.Product, claimedAt time.Time, previousAlert *time.Time) {
	for attempt := 0; attempt < releaseAttempts; attempt++ {
		current, err := t.products.GetProduct(ctx, p.ID)
		if err != nil {
			t.logger.Error("failed to reload product for latch release", zap.String("product_id", p.ID.Hex()), zap.Error(err))
			return
		}
		if !current.LowStockAlertSent || current.LastAlertDate == nil || !current.LastAlertDate.Equal(claimedAt) {
			*p = *current
			return
		}

		released := *current
		released.LowStockAlertSent = false
		released.LastAlertDate = previousAlert
		released.Version = current.Version + 1
		released.UpdatedAt = t.now().UTC()

		err = t.products.SaveProduct(ctx, &released, current.Version)
		if err == nil {
			*p = released
			return
		}
		if !errors.Is(err, repository.ErrVersionConflict) {
			t.logger.Error("failed to release alert latch", zap.String("product_id", p.ID.Hex()), zap.Error(err))
			return
		}
	}
	t.logger.Error("gave up releasing alert latch", zap.String("product_id", p.ID.Hex()))
}

// RetryPending re-evaluates active low-stock products whose latch is still
// open, which happens when nobody could be reached at the time of the sale.
// It returns the ids of products whose alert went out.
func (t *Trigger) RetryPending(ctx context.Context) ([]primitive.ObjectID, error) {
	items, err := t.products.FindLowStock(ctx)
	if err != nil {
		return nil, fmt.Errorf("find low stock: %w", err)
	}

	var sent []primitive.ObjectID
	for _, item := range items {
		p := item.Product
		if p.LowStockAlertSent {
			continue
		}
		if t.Evaluate(ctx, &p) {
			sent = append(sent, p.ID)
		}
	}

	t.logger.Info("pending alerts swept", zap.Int("candidates", len(items)), zap.Int("sent", len(sent)))
	return sent, nil
}
