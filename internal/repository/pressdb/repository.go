package pressdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hts-life/presswatch/internal/domain/models"
)

// ErrCounterMissing indicates an update targeted a counter row that does not
// exist yet. Callers must go through GetOrCreate first.
var ErrCounterMissing = errors.New("maintenance counter row missing")

// Repository provides access to the two press tables: the production log and
// the per-stock-code maintenance counters.
type Repository struct {
	db *sql.DB
}

// NewRepository wraps an already-opened database handle.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// TodayProduction aggregates today's production log entries for the stock
// code, summing quantity grouped by machine type. Exactly one group is
// expected per stock code per day; if several machine types contributed, the
// first group in machine-type order wins rather than summing across types,
// since merging distinct presses would misattribute wear. Returns (nil, nil)
// when nothing was produced today.
func (r *Repository) TodayProduction(ctx context.Context, stockCode string) (*models.ProductionRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT machine_type, SUM(quantity), stock_code
		FROM press_production_log
		WHERE stock_code = ? AND DATE(started_at) = CURDATE()
		GROUP BY machine_type, stock_code
		ORDER BY machine_type`, stockCode,
	)
	if err != nil {
		return nil, fmt.Errorf("query production log: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}

	var record models.ProductionRecord
	var quantity sql.NullFloat64
	if err := rows.Scan(&record.MachineType, &quantity, &record.StockCode); err != nil {
		return nil, fmt.Errorf("scan production row: %w", err)
	}
	record.Quantity = quantity.Float64

	return &record, nil
}

// GetOrCreate returns the maintenance counter for the stock code, lazily
// creating a zeroed row stamped with the current time. The insert is a
// single-statement upsert so concurrent first evaluations of the same stock
// code cannot race into duplicate rows.
func (r *Repository) GetOrCreate(ctx context.Context, stockCode string) (models.MaintenanceCounter, error) {
	var counter models.MaintenanceCounter

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO press_maintenance_counters (stock_code, cycle_count, last_maintenance_at)
		VALUES (?, 0, NOW())
		ON DUPLICATE KEY UPDATE stock_code = stock_code`, stockCode,
	)
	if err != nil {
		return counter, fmt.Errorf("upsert counter: %w", err)
	}

	err = r.db.QueryRowContext(ctx, `
		SELECT stock_code, cycle_count, last_maintenance_at
		FROM press_maintenance_counters WHERE stock_code = ?`, stockCode,
	).Scan(&counter.StockCode, &counter.CycleCount, &counter.LastMaintenanceAt)
	if err != nil {
		return counter, fmt.Errorf("query counter: %w", err)
	}

	return counter, nil
}

// AddCycles increments the counter by delta and returns the stored total.
// The increment and the re-read happen inside one transaction so the value
// reported to the caller is the persisted one even under concurrent runs.
func (r *Repository) AddCycles(ctx context.Context, stockCode string, delta float64) (float64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE press_maintenance_counters
		SET cycle_count = cycle_count + ?
		WHERE stock_code = ?`, delta, stockCode,
	)
	if err != nil {
		return 0, fmt.Errorf("increment counter: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		// MySQL reports zero affected rows for a no-change update too, so
		// distinguish a genuinely absent row from a zero-delta increment.
		var exists int
		err := tx.QueryRowContext(ctx,
			`SELECT 1 FROM press_maintenance_counters WHERE stock_code = ?`, stockCode,
		).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrCounterMissing
		}
		if err != nil {
			return 0, fmt.Errorf("verify counter row: %w", err)
		}
	}

	var total float64
	err = tx.QueryRowContext(ctx,
		`SELECT cycle_count FROM press_maintenance_counters WHERE stock_code = ?`, stockCode,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("read stored total: %w", err)
	}

	return total, tx.Commit()
}

// Reset zeroes the counter and stamps the current time as the new last
// maintenance time. Upserts so resetting a stock code that was never
// evaluated still leaves a valid zeroed row behind.
func (r *Repository) Reset(ctx context.Context, stockCode string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO press_maintenance_counters (stock_code, cycle_count, last_maintenance_at)
		VALUES (?, 0, NOW())
		ON DUPLICATE KEY UPDATE cycle_count = 0, last_maintenance_at = NOW()`, stockCode,
	)
	if err != nil {
		return fmt.Errorf("reset counter: %w", err)
	}

	return nil
}
