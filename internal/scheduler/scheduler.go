package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/mamadbah2/autoshop/internal/config"
	"github.com/mamadbah2/autoshop/internal/domain/models"
)

const jobTimeout = 2 * time.Minute

// AlertSweeper retries low-stock alerts that could not be delivered.
type AlertSweeper interface {
	RetryPending(ctx context.Context) ([]primitive.ObjectID, error)
}

// SummaryExporter pushes a day's movement summary to the spreadsheet.
type SummaryExporter interface {
	ExportDailySummary(ctx context.Context, day time.Time) (*models.DailyExport, error)
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	cfg      config.ReportingConfig
	sweeper  AlertSweeper
	exporter SummaryExporter
	now      func() time.Time
	logger   *zap.Logger
}

// NewScheduler creates a new scheduler instance. exporter may be nil, in which
// case the daily export is not scheduled.
func NewScheduler(cfg config.ReportingConfig, loc *time.Location, sweeper AlertSweeper, exporter SummaryExporter, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}

	// Standard 5-field cron specs evaluated in the shop timezone.
	c := cron.New(cron.WithLocation(loc))

	return &Scheduler{
		cron:     c,
		cfg:      cfg,
		sweeper:  sweeper,
		exporter: exporter,
		now:      time.Now,
		logger:   logger,
	}
}

// Start registers the jobs and starts the scheduler.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler")

	if _, err := s.cron.AddFunc(s.cfg.AlertSweepCron, s.sweepAlerts); err != nil {
		return fmt.Errorf("schedule alert sweep %q: %w", s.cfg.AlertSweepCron, err)
	}

	if s.exporter != nil {
		if _, err := s.cron.AddFunc(s.cfg.CronSchedule, s.exportDailySummary); err != nil {
			return fmt.Errorf("schedule daily export %q: %w", s.cfg.CronSchedule, err)
		}
	} else {
		s.logger.Info("daily summary export disabled")
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) sweepAlerts() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	sent, err := s.sweeper.RetryPending(ctx)
	if err != nil {
		s.logger.Error("failed to sweep pending alerts", zap.Error(err))
		return
	}
	if len(sent) > 0 {
		s.logger.Info("pending alerts delivered", zap.Int("count", len(sent)))
	}
}

func (s *Scheduler) exportDailySummary() {
	s.logger.Info("exporting daily summary")
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	res, err := s.exporter.ExportDailySummary(ctx, s.now())
	if err != nil {
		s.logger.Error("failed to export daily summary", zap.Error(err))
		return
	}

	s.logger.Info("daily summary export finished",
		zap.Time("date", res.Date),
		zap.Int("rows", res.Rows),
		zap.Bool("skipped", res.Skipped))
}
