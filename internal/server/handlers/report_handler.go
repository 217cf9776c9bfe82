package handlers

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/mamadbah2/autoshop/internal/domain/models"
	"github.com/mamadbah2/autoshop/internal/service/reporting"
)

const (
	xlsxContentType      = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	defaultMovementLimit = 100
)

// AlertSweeper retries open low-stock alert episodes.
type AlertSweeper interface {
	RetryPending(ctx context.Context) ([]primitive.ObjectID, error)
}

// NotificationLog reads the delivery log.
type NotificationLog interface {
	ListNotifications(ctx context.Context, limit int) ([]models.Notification, error)
}

// ReportHandler serves movement history, summaries and low-stock reports.
type ReportHandler struct {
	reports       *reporting.Service
	alerts        AlertSweeper
	notifications NotificationLog
	now           func() time.Time
	logger        *zap.Logger
}

// NewReportHandler constructs the HTTP handler adapter.
func NewReportHandler(reports *reporting.Service, alerts AlertSweeper, notifications NotificationLog, logger *zap.Logger) *ReportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportHandler{
		reports:       reports,
		alerts:        alerts,
		notifications: notifications,
		now:           time.Now,
		logger:        logger,
	}
}

// Movements handles GET /movements?productId=&type=&from=&to=&limit=.
func (h *ReportHandler) Movements(c *gin.Context) {
	filter := models.MovementFilter{
		Type:  models.MovementType(c.Query("type")),
		Limit: defaultMovementLimit,
	}
	if filter.Type != "" && !filter.Type.Valid() {
		badRequest(c, h.logger, "invalid type", fmt.Errorf("unknown movement type %q", filter.Type))
		return
	}

	var err error
	if filter.ProductID, err = optionalObjectID(c.Query("productId")); err != nil {
		badRequest(c, h.logger, "invalid productId", err)
		return
	}
	if raw := c.Query("limit"); raw != "" {
		if filter.Limit, err = strconv.Atoi(raw); err != nil || filter.Limit < 1 {
			badRequest(c, h.logger, "invalid limit", err)
			return
		}
	}
	if raw := c.Query("from"); raw != "" {
		from, err := h.bound(raw, false)
		if err != nil {
			badRequest(c, h.logger, "invalid from", err)
			return
		}
		filter.From = &from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := h.bound(raw, true)
		if err != nil {
			badRequest(c, h.logger, "invalid to", err)
			return
		}
		filter.To = &to
	}

	movements, err := h.reports.Movements(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, movements)
}

// Summary handles GET /movements/summary?from=&to=.
func (h *ReportHandler) Summary(c *gin.Context) {
	from, err := h.bound(c.Query("from"), false)
	if err != nil {
		badRequest(c, h.logger, "invalid from", err)
		return
	}
	to, err := h.bound(c.Query("to"), true)
	if err != nil {
		badRequest(c, h.logger, "invalid to", err)
		return
	}

	summary, err := h.reports.MovementSummary(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"from": from, "to": to, "items": summary})
}

// DailySummary handles GET /movements/daily?date=. The date defaults to today.
func (h *ReportHandler) DailySummary(c *gin.Context) {
	day, err := h.day(c.Query("date"))
	if err != nil {
		badRequest(c, h.logger, "invalid date", err)
		return
	}

	summary, err := h.reports.DailySummary(c.Request.Context(), day)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": day.Format(dateLayout), "items": summary})
}

// ExportDailySummary handles POST /reports/daily/export?date=.
func (h *ReportHandler) ExportDailySummary(c *gin.Context) {
	day, err := h.day(c.Query("date"))
	if err != nil {
		badRequest(c, h.logger, "invalid date", err)
		return
	}

	res, err := h.reports.ExportDailySummary(c.Request.Context(), day)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// LowStock handles GET /stock/low.
func (h *ReportHandler) LowStock(c *gin.Context) {
	items, err := h.reports.LowStock(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// LowStockWorkbook handles GET /stock/low/export.
func (h *ReportHandler) LowStockWorkbook(c *gin.Context) {
	var buf bytes.Buffer
	n, err := h.reports.WriteLowStockWorkbook(c.Request.Context(), &buf)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	name := fmt.Sprintf("low-stock-%s.xlsx", h.now().In(h.reports.Location()).Format(dateLayout))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Header("X-Item-Count", strconv.Itoa(n))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// SweepAlerts handles POST /alerts/sweep.
func (h *ReportHandler) SweepAlerts(c *gin.Context) {
	sent, err := h.alerts.RetryPending(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerted": sent, "count": len(sent)})
}

// Notifications handles GET /notifications?limit=.
func (h *ReportHandler) Notifications(c *gin.Context) {
	limit := defaultMovementLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			badRequest(c, h.logger, "invalid limit", err)
			return
		}
		limit = n
	}

	list, err := h.notifications.ListNotifications(c.Request.Context(), limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// bound parses a range boundary. A plain date as the upper bound covers the
// whole day.
func (h *ReportHandler) bound(raw string, upper bool) (time.Time, error) {
	if raw == "" {
		return time.Time{}, fmt.Errorf("value is required")
	}
	t, dateOnly, err := parseTime(raw, h.reports.Location())
	if err != nil {
		return time.Time{}, err
	}
	if dateOnly && upper {
		_, end := h.reports.DayBounds(t)
		return end, nil
	}
	return t, nil
}

func (h *ReportHandler) day(raw string) (time.Time, error) {
	if raw == "" {
		return h.now(), nil
	}
	return time.ParseInLocation(dateLayout, raw, h.reports.Location())
}
