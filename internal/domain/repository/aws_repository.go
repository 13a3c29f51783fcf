package repository

import (
	"context"
	"time"

	"github.com/logscost/logscost/internal/domain/entity"
)

// AWSRepository defines the interface for AWS API interactions.
type AWSRepository interface {
	// Profile Operations
	GetAWSProfiles() []string
	GetAccountID(ctx context.Context, profile string) (string, error)

	// Organization Operations
	GetManagementAccountID(ctx context.Context, profile string) (string, error)
	ListOrganizationAccounts(ctx context.Context, profile string) ([]entity.OrganizationAccount, error)

	// Logs & Metrics Operations
	DescribeLogGroups(ctx context.Context, target entity.Target, regions []string) ([]entity.LogGroupInfo, error)
	GetLogGroupMetrics(ctx context.Context, target entity.Target, group entity.LogGroupInfo, start, end time.Time) (entity.LogGroupMetrics, error)

	// Billed spend for the AmazonCloudWatch service over a window, used to
	// sanity-check the estimate.
	GetActualCloudWatchSpend(ctx context.Context, target entity.Target, start, end time.Time) (float64, error)

	// Setup Operations (organization mode)
	EnsureMonitorRole(ctx context.Context, profile string, account entity.OrganizationAccount, managementAccountID string) error
}
