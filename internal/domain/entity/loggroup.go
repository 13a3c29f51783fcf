package entity

// LogGroupInfo is a log group as listed by DescribeLogGroups.
// RetentionDays = 0 means "Never expire". Stored volume comes from the
// StoredBytes metric, not from this listing.
type LogGroupInfo struct {
	Name          string `json:"name"`
	Region        string `json:"region"`
	RetentionDays int    `json:"retention_days"`
}

// LogGroupMetrics carries the raw AWS/Logs datapoints for one log group over
// the reporting window: daily sums of IncomingBytes and daily averages of
// StoredBytes. Either slice may be empty when the group saw no traffic.
type LogGroupMetrics struct {
	IncomingBytes []float64
	StoredBytes   []float64
}
