package aws

import (
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	cwTypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The snapshot storage mode takes the last accumulated value as the most
// recent sample, so the query must return datapoints oldest-first.
func TestMetricDataInputChronologicalOrder(t *testing.T) {
	end := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	start := end.AddDate(0, 0, -30)

	input := metricDataInput("StoredBytes", "Average", "/app/api", start, end)

	assert.Equal(t, cwTypes.ScanByTimestampAscending, input.ScanBy)
	assert.Equal(t, start, aws.ToTime(input.StartTime))
	assert.Equal(t, end, aws.ToTime(input.EndTime))
}

func TestMetricDataInputQueryShape(t *testing.T) {
	end := time.Now().UTC()
	input := metricDataInput("IncomingBytes", "Sum", "/app/worker", end.AddDate(0, 0, -7), end)

	require.Len(t, input.MetricDataQueries, 1)
	q := input.MetricDataQueries[0]

	require.NotNil(t, q.MetricStat)
	assert.Equal(t, "AWS/Logs", aws.ToString(q.MetricStat.Metric.Namespace))
	assert.Equal(t, "IncomingBytes", aws.ToString(q.MetricStat.Metric.MetricName))
	assert.Equal(t, "Sum", aws.ToString(q.MetricStat.Stat))
	assert.Equal(t, int32(86400), aws.ToInt32(q.MetricStat.Period))

	require.Len(t, q.MetricStat.Metric.Dimensions, 1)
	assert.Equal(t, "LogGroupName", aws.ToString(q.MetricStat.Metric.Dimensions[0].Name))
	assert.Equal(t, "/app/worker", aws.ToString(q.MetricStat.Metric.Dimensions[0].Value))
}
