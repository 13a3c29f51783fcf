package entity

import "time"

// CostRecord holds the estimated CloudWatch Logs cost for a single log group,
// queried under one credential context (local profile or Organization account).
// Records are built once per report generation and never mutated afterwards.
type CostRecord struct {
	Owner          string  `json:"owner"`
	AccountID      string  `json:"account_id,omitempty"`
	Region         string  `json:"region"`
	LogGroup       string  `json:"log_group"`
	RetentionDays  int     `json:"retention_days"`
	IngestionBytes int64   `json:"ingestion_bytes"`
	AvgStoredBytes int64   `json:"avg_stored_bytes"`
	IngestionCost  float64 `json:"ingestion_cost"`
	StorageCost    float64 `json:"storage_cost"`
	TotalCost      float64 `json:"total_cost"`
}

// CostSummary aggregates the records collected for one owner over the
// reporting window.
type CostSummary struct {
	Owner         string       `json:"owner"`
	AccountID     string       `json:"account_id,omitempty"`
	Records       []CostRecord `json:"records"`
	IngestionCost float64      `json:"ingestion_cost"`
	StorageCost   float64      `json:"storage_cost"`
	TotalCost     float64      `json:"total_cost"`
	// ActualSpend is the billed AmazonCloudWatch cost for the same window,
	// present only when --compare-actuals was requested.
	ActualSpend *float64  `json:"actual_spend,omitempty"`
	WindowStart time.Time `json:"window_start"`
	WindowEnd   time.Time `json:"window_end"`
	Success     bool      `json:"success"`
	Error       string    `json:"error,omitempty"`
}
