package reporting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/autoshop/internal/domain/models"
	repo "github.com/mamadbah2/autoshop/internal/repository/sheets"
)

const (
	dateLayout        = "2006-01-02"
	dailySummaryRange = "DailySummary!A:F"
	exportedDateRange = "DailySummary!A:A"
)

var (
	ErrInvalidRange       = errors.New("start date must not be after end date")
	ErrExportNotAvailable = errors.New("spreadsheet export is not configured")
)

// Store holds the queries reports are built from.
type Store interface {
	SummarizeMovements(ctx context.Context, from, to time.Time) ([]models.MovementSummary, error)
	FindLowStock(ctx context.Context) ([]models.LowStockItem, error)
	ListMovements(ctx context.Context, filter models.MovementFilter) ([]models.StockMovement, error)
}

// Service exposes stock movement and low-stock reports.
type Service struct {
	store  Store
	sheets repo.Repository
	loc    *time.Location
	now    func() time.Time
	logger *zap.Logger
}

// NewService wires a new reporting service instance. sheets may be nil when
// the spreadsheet export is disabled; loc defaults to UTC.
func NewService(store Store, sheets repo.Repository, loc *time.Location, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{store: store, sheets: sheets, loc: loc, now: time.Now, logger: logger}
}

// MovementSummary aggregates movements by product and type over [from, to].
func (s *Service) MovementSummary(ctx context.Context, from, to time.Time) ([]models.MovementSummary, error) {
	if from.After(to) {
		return nil, ErrInvalidRange
	}
	summary, err := s.store.SummarizeMovements(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("summarize movements: %w", err)
	}
	return summary, nil
}

// DayBounds returns the first and last instant of day's calendar date in the
// shop timezone.
func (s *Service) DayBounds(day time.Time) (time.Time, time.Time) {
	local := day.In(s.loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.loc)
	end := start.AddDate(0, 0, 1).Add(-time.Millisecond)
	return start, end
}

// DailySummary aggregates the movements of one calendar day.
func (s *Service) DailySummary(ctx context.Context, day time.Time) ([]models.MovementSummary, error) {
	start, end := s.DayBounds(day)
	return s.MovementSummary(ctx, start, end)
}

// Movements lists movement history newest first.
func (s *Service) Movements(ctx context.Context, filter models.MovementFilter) ([]models.StockMovement, error) {
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return nil, ErrInvalidRange
	}
	movements, err := s.store.ListMovements(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	return movements, nil
}

// Location is the timezone calendar days are evaluated in.
func (s *Service) Location() *time.Location {
	return s.loc
}

// LowStock lists active products at or below their reorder level.
func (s *Service) LowStock(ctx context.Context) ([]models.LowStockItem, error) {
	items, err := s.store.FindLowStock(ctx)
	if err != nil {
		return nil, fmt.Errorf("find low stock: %w", err)
	}
	return items, nil
}

// ExportDailySummary appends day's summary to the spreadsheet. A day that is
// already present is skipped so reruns do not duplicate rows.
func (s *Service) ExportDailySummary(ctx context.Context, day time.Time) (*models.DailyExport, error) {
	if s.sheets == nil {
		return nil, ErrExportNotAvailable
	}

	start, _ := s.DayBounds(day)
	label := start.Format(dateLayout)
	result := &models.DailyExport{Date: start, ExportedAt: s.now().UTC()}

	exported, err := s.sheets.ReadRange(ctx, exportedDateRange)
	if err != nil {
		return nil, fmt.Errorf("load exported dates: %w", err)
	}
	for _, row := range exported {
		if len(row) == 0 {
			continue
		}
		if exportedOn, err := parseDate(row[0]); err == nil && exportedOn.Format(dateLayout) == label {
			s.logger.Info("daily summary already exported", zap.String("date", label))
			result.Skipped = true
			return result, nil
		}
	}

	summary, err := s.DailySummary(ctx, day)
	if err != nil {
		return nil, err
	}

	rows := make([][]interface{}, 0, len(summary))
	for _, line := range summary {
		rows = append(rows, []interface{}{
			label,
			line.ProductName,
			string(line.Type),
			line.TotalQuantity,
			line.TotalAmount,
			line.Count,
		})
	}

	if err := s.sheets.AppendRows(ctx, dailySummaryRange, rows); err != nil {
		return nil, fmt.Errorf("append daily summary: %w", err)
	}

	result.Rows = len(rows)
	s.logger.Info("daily summary exported", zap.String("date", label), zap.Int("rows", len(rows)))
	return result, nil
}

func parseDate(value interface{}) (time.Time, error) {
	str := fmt.Sprint(value)
	if str == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if len(str) > 10 {
		str = str[:10]
	}
	return time.Parse(dateLayout, str)
}
