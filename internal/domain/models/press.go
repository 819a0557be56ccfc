package models

import "time"

// ProductionRecord is the daily production aggregate for one stock code:
// the summed print quantity produced today on one machine type.
type ProductionRecord struct {
	MachineType string
	StockCode   string
	Quantity    float64
}

// MaintenanceCounter tracks accumulated print cycles for a stock code since
// its last maintenance event. One row per stock code; never deleted.
type MaintenanceCounter struct {
	StockCode         string
	CycleCount        float64
	LastMaintenanceAt time.Time
}

// MaintenanceStatus is the outcome of one maintenance check.
type MaintenanceStatus struct {
	TransactionID     string    `json:"transaction_id,omitempty"`
	MachineType       string    `json:"machine_type"`
	StockCode         string    `json:"stock_code"`
	TotalCycles       float64   `json:"total_cycles"`
	LastMaintenanceAt time.Time `json:"last_maintenance_at"`
	Threshold         float64   `json:"threshold"`
	Remaining         float64   `json:"remaining"`
	RemainingRatio    float64   `json:"remaining_ratio"`
	AlertSent         bool      `json:"alert_sent"`
}

// AlertDue reports whether remaining capacity has dropped to 10% of the
// threshold or less. Remaining may be negative when the threshold was
// already exceeded; that still counts as due.
func (s MaintenanceStatus) AlertDue() bool {
	return s.Remaining <= s.Threshold*0.1
}
