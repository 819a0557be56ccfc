package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/hts-life/presswatch/internal/config"
	"github.com/hts-life/presswatch/internal/domain/models"
	"github.com/hts-life/presswatch/internal/service/maintenance"
)

// Scheduler runs periodic maintenance checks over the configured stock codes.
type Scheduler struct {
	cron           *cron.Cron
	maintenanceSvc *maintenance.Service
	cfg            config.MonitorConfig
	logger         *zap.Logger
}

// NewScheduler creates a new scheduler instance. The cron runs in the
// configured timezone so "every day at 20:00" means plant-local time.
func NewScheduler(cfg config.MonitorConfig, maintenanceSvc *maintenance.Service, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Warn("failed to load timezone, falling back to local", zap.String("timezone", cfg.Timezone), zap.Error(err))
		location = time.Local
	}

	return &Scheduler{
		cron:           cron.New(cron.WithLocation(location)),
		maintenanceSvc: maintenanceSvc,
		cfg:            cfg,
		logger:         logger,
	}
}

// Start registers the check job and starts the cron loop.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler",
		zap.String("schedule", s.cfg.CronSchedule),
		zap.Int("stock_codes", len(s.cfg.StockCodes)))

	if len(s.cfg.StockCodes) == 0 {
		s.logger.Warn("no monitored stock codes configured, scheduled checks disabled")
		return
	}

	if _, err := s.cron.AddFunc(s.cfg.CronSchedule, s.runChecks); err != nil {
		s.logger.Error("failed to schedule maintenance checks", zap.Error(err))
		return
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) runChecks() {
	for _, stockCode := range s.cfg.StockCodes {
		s.checkOne(stockCode)
	}
}

func (s *Scheduler) checkOne(stockCode string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	status, err := s.maintenanceSvc.Check(ctx, models.CheckRequest{StockCode: stockCode})
	if err != nil {
		s.logger.Error("scheduled maintenance check failed",
			zap.String("stock_code", stockCode),
			zap.Error(err))
		return
	}
	if status == nil {
		return
	}

	s.logger.Info("scheduled maintenance check completed",
		zap.String("stock_code", stockCode),
		zap.Float64("remaining_ratio", status.RemainingRatio),
		zap.Bool("alert_sent", status.AlertSent))
}
