package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logscost/logscost/internal/domain/entity"
)

const gib = float64(1 << 30)

var apiGroup = entity.LogGroupInfo{Name: "/app/api", Region: "us-east-1"}

func defaultCalc() *Calculator {
	return NewCalculator(DefaultRates(), StorageModeAverage)
}

func TestCostOneGiBIngestion(t *testing.T) {
	rec := defaultCalc().Cost("dev", "", apiGroup, entity.LogGroupMetrics{
		IncomingBytes: []float64{gib},
	}, 30)

	assert.InDelta(t, 0.50, rec.IngestionCost, 1e-9)
	assert.Zero(t, rec.StorageCost)
	assert.Equal(t, int64(1<<30), rec.IngestionBytes)
}

func TestCostTenGBMonthStorage(t *testing.T) {
	// Constant 10 GiB stored over a 30-day window is 10 GB-months.
	rec := defaultCalc().Cost("dev", "", apiGroup, entity.LogGroupMetrics{
		StoredBytes: []float64{10 * gib, 10 * gib, 10 * gib},
	}, 30)

	assert.InDelta(t, 0.30, rec.StorageCost, 1e-9)
	assert.Zero(t, rec.IngestionCost)
}

func TestCostZeroBytesZeroCost(t *testing.T) {
	rec := defaultCalc().Cost("dev", "", apiGroup, entity.LogGroupMetrics{}, 30)

	assert.Zero(t, rec.IngestionCost)
	assert.Zero(t, rec.StorageCost)
	assert.Zero(t, rec.TotalCost)
}

func TestCostCarriesGroupFields(t *testing.T) {
	group := entity.LogGroupInfo{Name: "/app/worker", Region: "eu-west-1", RetentionDays: 14}
	rec := defaultCalc().Cost("dev", "123456789012", group, entity.LogGroupMetrics{}, 30)

	assert.Equal(t, "/app/worker", rec.LogGroup)
	assert.Equal(t, "eu-west-1", rec.Region)
	assert.Equal(t, 14, rec.RetentionDays)
	assert.Equal(t, "123456789012", rec.AccountID)
}

func TestCostTotalIsIngestionPlusStorage(t *testing.T) {
	rec := defaultCalc().Cost("dev", "", apiGroup, entity.LogGroupMetrics{
		IncomingBytes: []float64{3 * gib, 0.5 * gib},
		StoredBytes:   []float64{2 * gib, 4 * gib},
	}, 14)

	assert.InDelta(t, rec.IngestionCost+rec.StorageCost, rec.TotalCost, 1e-12)
}

func TestCostMonotonicInBytes(t *testing.T) {
	calc := defaultCalc()
	var prev entity.CostRecord
	for i := 0; i < 10; i++ {
		bytes := float64(i) * 512 * gib
		rec := calc.Cost("dev", "", apiGroup, entity.LogGroupMetrics{
			IncomingBytes: []float64{bytes},
			StoredBytes:   []float64{bytes},
		}, 30)
		if i > 0 {
			assert.GreaterOrEqual(t, rec.IngestionCost, prev.IngestionCost)
			assert.GreaterOrEqual(t, rec.StorageCost, prev.StorageCost)
		}
		prev = rec
	}
}

func TestCostStorageModes(t *testing.T) {
	// Samples arrive oldest-first; snapshot mode must price the newest one.
	metrics := entity.LogGroupMetrics{StoredBytes: []float64{2 * gib, 4 * gib, 12 * gib}}

	avg := NewCalculator(DefaultRates(), StorageModeAverage).
		Cost("dev", "", apiGroup, metrics, 30)
	snap := NewCalculator(DefaultRates(), StorageModeSnapshot).
		Cost("dev", "", apiGroup, metrics, 30)

	// mean(2,4,12) = 6 GiB vs newest sample 12 GiB
	assert.InDelta(t, 6*0.03, avg.StorageCost, 1e-9)
	assert.InDelta(t, 12*0.03, snap.StorageCost, 1e-9)
}

func TestCostSnapshotGrowingGroup(t *testing.T) {
	// A group that grew during the window is priced at its end-of-window
	// size, never at the size it started with.
	grew := entity.LogGroupMetrics{StoredBytes: []float64{1 * gib, 5 * gib, 20 * gib}}

	snap := NewCalculator(DefaultRates(), StorageModeSnapshot).
		Cost("dev", "", apiGroup, grew, 30)

	assert.InDelta(t, 20*0.03, snap.StorageCost, 1e-9)
	assert.Equal(t, int64(20*gib), snap.AvgStoredBytes)
}

func TestCostWindowScalesStorage(t *testing.T) {
	metrics := entity.LogGroupMetrics{StoredBytes: []float64{10 * gib}}

	full := defaultCalc().Cost("dev", "", apiGroup, metrics, 30)
	half := defaultCalc().Cost("dev", "", apiGroup, metrics, 15)

	assert.InDelta(t, full.StorageCost/2, half.StorageCost, 1e-9)
}

func TestNewCalculatorZeroRatesFallBack(t *testing.T) {
	calc := NewCalculator(Rates{}, StorageMode("bogus"))

	rec := calc.Cost("dev", "", apiGroup, entity.LogGroupMetrics{
		IncomingBytes: []float64{gib},
	}, 30)

	assert.InDelta(t, DefaultIngestionRatePerGB, rec.IngestionCost, 1e-9)
	assert.Equal(t, StorageModeAverage, calc.Mode())
}

func TestSummarizeAddsUpRecords(t *testing.T) {
	calc := defaultCalc()
	var records []entity.CostRecord
	for _, name := range []string{"/app/api", "/app/worker", "/aws/lambda/cron"} {
		group := entity.LogGroupInfo{Name: name, Region: "us-east-1"}
		records = append(records, calc.Cost("prod", "123456789012", group, entity.LogGroupMetrics{
			IncomingBytes: []float64{gib, 2 * gib},
			StoredBytes:   []float64{5 * gib},
		}, 30))
	}

	s := Summarize("prod", "123456789012", records)
	require.Len(t, s.Records, 3)

	var wantTotal float64
	for _, r := range records {
		wantTotal += r.TotalCost
	}
	assert.InDelta(t, wantTotal, s.TotalCost, 1e-9)
	assert.InDelta(t, s.IngestionCost+s.StorageCost, s.TotalCost, 1e-9)
	assert.True(t, s.Success)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize("dev", "", nil)
	assert.Zero(t, s.TotalCost)
	assert.True(t, s.Success)
}
