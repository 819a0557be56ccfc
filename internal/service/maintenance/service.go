package maintenance

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/hts-life/presswatch/internal/domain/models"
)

// ErrEmptyStockCode indicates a check or reset was requested without a stock code.
var ErrEmptyStockCode = errors.New("stock code must not be empty")

const timestampLayout = "2006-01-02 15:04"

// ProductionSource provides today's aggregated print quantity for a stock
// code. A nil record means nothing was produced today.
type ProductionSource interface {
	TodayProduction(ctx context.Context, stockCode string) (*models.ProductionRecord, error)
}

// CounterStore owns the per-stock-code maintenance counters.
type CounterStore interface {
	GetOrCreate(ctx context.Context, stockCode string) (models.MaintenanceCounter, error)
	AddCycles(ctx context.Context, stockCode string, delta float64) (float64, error)
	Reset(ctx context.Context, stockCode string) error
}

// Notifier delivers alert text to the configured recipient.
type Notifier interface {
	SendMessage(ctx context.Context, text string) error
}

// Service runs maintenance checks: it folds today's production into the
// running counter and fires an alert when remaining capacity before the
// threshold drops to 10% or less.
type Service struct {
	production       ProductionSource
	counters         CounterStore
	notifier         Notifier
	defaultThreshold float64
	logger           *zap.Logger
}

// NewService wires a new maintenance service instance.
func NewService(production ProductionSource, counters CounterStore, notifier Notifier, defaultThreshold float64, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		production:       production,
		counters:         counters,
		notifier:         notifier,
		defaultThreshold: defaultThreshold,
		logger:           logger,
	}
}

// Check runs one evaluation for the requested stock code. It returns
// (nil, nil) when no production was recorded today, in which case the
// counter is left untouched and no alert is considered. A failing alert
// delivery is reported through the returned status, not as an error.
func (s *Service) Check(ctx context.Context, req models.CheckRequest) (*models.MaintenanceStatus, error) {
	if req.StockCode == "" {
		return nil, ErrEmptyStockCode
	}

	threshold := req.Threshold
	if threshold <= 0 {
		threshold = s.defaultThreshold
	}

	record, err := s.production.TodayProduction(ctx, req.StockCode)
	if err != nil {
		return nil, fmt.Errorf("load today's production: %w", err)
	}
	if record == nil {
		s.logger.Info("no production recorded today",
			zap.String("stock_code", req.StockCode),
			zap.String("transaction_id", req.TransactionID))
		return nil, nil
	}

	counter, err := s.counters.GetOrCreate(ctx, req.StockCode)
	if err != nil {
		return nil, fmt.Errorf("load maintenance counter: %w", err)
	}

	newCycles := record.Quantity

	total, err := s.counters.AddCycles(ctx, req.StockCode, newCycles)
	if err != nil {
		return nil, fmt.Errorf("accumulate cycles: %w", err)
	}

	remaining := threshold - total
	status := &models.MaintenanceStatus{
		TransactionID:     req.TransactionID,
		MachineType:       record.MachineType,
		StockCode:         req.StockCode,
		TotalCycles:       total,
		LastMaintenanceAt: counter.LastMaintenanceAt,
		Threshold:         threshold,
		Remaining:         remaining,
		RemainingRatio:    remaining / threshold * 100,
	}

	s.logger.Info("maintenance status",
		zap.String("machine_type", status.MachineType),
		zap.String("stock_code", status.StockCode),
		zap.Float64("new_cycles", newCycles),
		zap.Float64("total_cycles", status.TotalCycles),
		zap.Time("last_maintenance_at", status.LastMaintenanceAt),
		zap.Float64("threshold", status.Threshold),
		zap.Float64("remaining", status.Remaining),
		zap.Float64("remaining_ratio", status.RemainingRatio))

	if !status.AlertDue() {
		return status, nil
	}

	if err := s.notifier.SendMessage(ctx, alertText(*status)); err != nil {
		// Alert delivery failure is non-fatal; the check itself succeeded.
		s.logger.Error("failed to send maintenance alert",
			zap.String("stock_code", status.StockCode),
			zap.Error(err))
		return status, nil
	}

	status.AlertSent = true
	s.logger.Info("maintenance alert sent", zap.String("stock_code", status.StockCode))

	return status, nil
}

// Reset zeroes the counter after physical maintenance has been performed.
// Never invoked by Check; operators trigger it explicitly.
func (s *Service) Reset(ctx context.Context, stockCode string) error {
	if stockCode == "" {
		return ErrEmptyStockCode
	}

	if err := s.counters.Reset(ctx, stockCode); err != nil {
		return fmt.Errorf("reset maintenance counter: %w", err)
	}

	s.logger.Info("maintenance counter reset", zap.String("stock_code", stockCode))
	return nil
}

func alertText(status models.MaintenanceStatus) string {
	var b strings.Builder
	fmt.Fprintf(&b, "⚠️ WARNING: maintenance due soon for %s\n", status.MachineType)
	fmt.Fprintf(&b, "Stock code: %s\n", status.StockCode)
	fmt.Fprintf(&b, "Total cycles: %s\n", formatCount(status.TotalCycles))
	fmt.Fprintf(&b, "Last maintenance: %s\n", status.LastMaintenanceAt.Format(timestampLayout))
	fmt.Fprintf(&b, "Remaining cycles: %s\n", formatCount(status.Remaining))
	fmt.Fprintf(&b, "Threshold: %s\n", formatCount(status.Threshold))
	fmt.Fprintf(&b, "Remaining ratio: %%%s", formatRatio(status.RemainingRatio))
	return b.String()
}

// Report renders a human-readable status summary for console output.
func Report(status models.MaintenanceStatus) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Machine: %s\n", status.MachineType)
	fmt.Fprintf(&b, "Stock code: %s\n", status.StockCode)
	fmt.Fprintf(&b, "Total cycles: %s\n", formatCount(status.TotalCycles))
	fmt.Fprintf(&b, "Last maintenance: %s\n", status.LastMaintenanceAt.Format(timestampLayout))
	fmt.Fprintf(&b, "Threshold: %s\n", formatCount(status.Threshold))
	fmt.Fprintf(&b, "Remaining cycles: %s\n", formatCount(status.Remaining))
	fmt.Fprintf(&b, "Remaining ratio: %%%s\n", formatRatio(status.RemainingRatio))
	if status.AlertDue() {
		if status.AlertSent {
			b.WriteString("Maintenance alert sent.\n")
		} else {
			b.WriteString("Maintenance alert due but delivery failed; see logs.\n")
		}
	} else {
		b.WriteString("No maintenance alert needed.\n")
	}
	return b.String()
}
