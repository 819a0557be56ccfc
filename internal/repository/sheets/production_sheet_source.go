package sheets

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/hts-life/presswatch/internal/config"
	"github.com/hts-life/presswatch/internal/domain/models"
)

const (
	dateLayout          = "2006-01-02"
	productionDataRange = "Production!A:D"
)

// ProductionSheetSource reads the daily production aggregate from a Google
// Sheets press log, for sites that record print runs in a spreadsheet
// instead of the press database. Rows are (date, stock code, machine type,
// quantity).
type ProductionSheetSource struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
	now           func() time.Time
}

// NewProductionSheetSource builds a Google Sheets backed production source.
func NewProductionSheetSource(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*ProductionSheetSource, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &ProductionSheetSource{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		logger:        logger,
		now:           time.Now,
	}, nil
}

// TodayProduction sums today's quantities for the stock code grouped by
// machine type and returns the first group in machine-type order, matching
// the database source's one-group-per-day contract regardless of sheet row
// order. Returns (nil, nil) when no row matches.
func (s *ProductionSheetSource) TodayProduction(ctx context.Context, stockCode string) (*models.ProductionRecord, error) {
	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, productionDataRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read range %s: %w", productionDataRange, err)
	}

	today := s.now().Format(dateLayout)
	totals := make(map[string]float64)

	for _, row := range resp.Values {
		if len(row) < 4 {
			continue
		}

		dateValue, err := parseDate(row[0])
		if err != nil {
			s.logger.Debug("skip production row with invalid date", zap.Any("value", row[0]), zap.Error(err))
			continue
		}
		if dateValue.Format(dateLayout) != today || fmt.Sprint(row[1]) != stockCode {
			continue
		}

		machineType := fmt.Sprint(row[2])
		qty, err := parseFloat(row[3])
		if err != nil {
			s.logger.Debug("skip production row with invalid qty", zap.Any("value", row[3]), zap.Error(err))
			continue
		}

		totals[machineType] += qty
	}

	if len(totals) == 0 {
		return nil, nil
	}

	var machineType string
	for mt := range totals {
		if machineType == "" || mt < machineType {
			machineType = mt
		}
	}

	return &models.ProductionRecord{
		MachineType: machineType,
		StockCode:   stockCode,
		Quantity:    totals[machineType],
	}, nil
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

func parseFloat(value interface{}) (float64, error) {
	str := fmt.Sprint(value)
	if str == "" {
		return 0, fmt.Errorf("empty numeric value")
	}
	return strconv.ParseFloat(str, 64)
}
