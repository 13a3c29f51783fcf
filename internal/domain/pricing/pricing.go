// Package pricing converts raw AWS/Logs byte metrics into dollar estimates.
// It is a pure computation over already-fetched values; all API access lives
// in the aws adapter.
package pricing

import (
	"github.com/logscost/logscost/internal/domain/entity"
)

const (
	// DefaultIngestionRatePerGB is the CloudWatch Logs ingestion price.
	DefaultIngestionRatePerGB = 0.50
	// DefaultStorageRatePerGBMonth is the CloudWatch Logs archival price.
	DefaultStorageRatePerGBMonth = 0.03

	bytesPerGB   = float64(1 << 30)
	daysPerMonth = 30.0
)

// StorageMode selects how the GB-month figure is derived from the daily
// StoredBytes samples. The billing definition is a time-integral; the metric
// only gives point-in-time samples, so both readings are defensible and the
// choice is left to the user.
type StorageMode string

const (
	// StorageModeAverage uses the mean of all samples in the window.
	StorageModeAverage StorageMode = "average"
	// StorageModeSnapshot uses the most recent sample only.
	StorageModeSnapshot StorageMode = "snapshot"
)

// Valid reports whether m is a known storage mode.
func (m StorageMode) Valid() bool {
	return m == StorageModeAverage || m == StorageModeSnapshot
}

// Rates are the per-gigabyte prices applied by the calculator.
type Rates struct {
	IngestionPerGB    float64
	StoragePerGBMonth float64
}

// DefaultRates returns the fixed public CloudWatch Logs prices.
func DefaultRates() Rates {
	return Rates{
		IngestionPerGB:    DefaultIngestionRatePerGB,
		StoragePerGBMonth: DefaultStorageRatePerGBMonth,
	}
}

// Calculator turns metric sums into CostRecords. It carries no state beyond
// its configuration and is safe for reuse across owners.
type Calculator struct {
	rates Rates
	mode  StorageMode
}

// NewCalculator builds a calculator. Zero-valued rates fall back to the
// defaults so a partially filled config file cannot silently price at $0.
func NewCalculator(rates Rates, mode StorageMode) *Calculator {
	if rates.IngestionPerGB == 0 {
		rates.IngestionPerGB = DefaultIngestionRatePerGB
	}
	if rates.StoragePerGBMonth == 0 {
		rates.StoragePerGBMonth = DefaultStorageRatePerGBMonth
	}
	if !mode.Valid() {
		mode = StorageModeAverage
	}
	return &Calculator{rates: rates, mode: mode}
}

// Mode returns the configured storage computation mode.
func (c *Calculator) Mode() StorageMode {
	return c.mode
}

// Cost computes the cost record for one log group from its raw metric values.
// days is the reporting window length and scales the stored volume to a
// monthly-equivalent figure. Empty metric slices yield zero cost; missing
// data is the caller reporting "no traffic", not an error.
func (c *Calculator) Cost(owner, accountID string, group entity.LogGroupInfo, metrics entity.LogGroupMetrics, days int) entity.CostRecord {
	ingestionBytes := sum(metrics.IncomingBytes)

	var storedBytes float64
	switch c.mode {
	case StorageModeSnapshot:
		if n := len(metrics.StoredBytes); n > 0 {
			storedBytes = metrics.StoredBytes[n-1]
		}
	default:
		if n := len(metrics.StoredBytes); n > 0 {
			storedBytes = sum(metrics.StoredBytes) / float64(n)
		}
	}

	ingestionCost := ingestionBytes / bytesPerGB * c.rates.IngestionPerGB
	storageGBMonth := storedBytes / bytesPerGB * (float64(days) / daysPerMonth)
	storageCost := storageGBMonth * c.rates.StoragePerGBMonth

	return entity.CostRecord{
		Owner:          owner,
		AccountID:      accountID,
		Region:         group.Region,
		LogGroup:       group.Name,
		RetentionDays:  group.RetentionDays,
		IngestionBytes: int64(ingestionBytes),
		AvgStoredBytes: int64(storedBytes),
		IngestionCost:  ingestionCost,
		StorageCost:    storageCost,
		TotalCost:      ingestionCost + storageCost,
	}
}

// Summarize folds a set of records into the per-owner totals. The summary
// total is, by construction, the sum of the record totals.
func Summarize(owner, accountID string, records []entity.CostRecord) entity.CostSummary {
	s := entity.CostSummary{
		Owner:     owner,
		AccountID: accountID,
		Records:   records,
		Success:   true,
	}
	for _, r := range records {
		s.IngestionCost += r.IngestionCost
		s.StorageCost += r.StorageCost
		s.TotalCost += r.TotalCost
	}
	return s
}

func sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}
