package models

// CheckRequest triggers one maintenance evaluation for a stock code.
// Threshold is optional; zero means "use the configured default".
type CheckRequest struct {
	TransactionID string  `json:"transaction_id"`
	StockCode     string  `json:"stock_code" binding:"required"`
	Threshold     float64 `json:"threshold"`
}

// ResetRequest zeroes the maintenance counter after physical maintenance
// has been performed. Operator-triggered only.
type ResetRequest struct {
	StockCode string `json:"stock_code" binding:"required"`
}
