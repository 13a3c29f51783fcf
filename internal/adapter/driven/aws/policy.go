package aws

import (
	"encoding/json"
	"fmt"
)

// RoleName is the fixed name of the cross-account monitoring role provisioned
// by `logscost setup` and assumed in member accounts.
const RoleName = "CloudWatchCostMonitorRole"

// monitorPolicyName é o nome da inline policy anexada ao role.
const monitorPolicyName = "CloudWatchLogsCostAccess"

type policyDocument struct {
	Version   string            `json:"Version"`
	Statement []policyStatement `json:"Statement"`
}

type policyStatement struct {
	Effect    string           `json:"Effect"`
	Principal *policyPrincipal `json:"Principal,omitempty"`
	Action    interface{}      `json:"Action"`
	Resource  string           `json:"Resource,omitempty"`
}

type policyPrincipal struct {
	AWS string `json:"AWS"`
}

// trustPolicyDocument builds the assume-role trust policy. For the management
// account the principal is the caller itself; for member accounts it is the
// management account root, so any management principal can assume the role.
func trustPolicyDocument(principalARN string) (string, error) {
	doc := policyDocument{
		Version: "2012-10-17",
		Statement: []policyStatement{{
			Effect:    "Allow",
			Principal: &policyPrincipal{AWS: principalARN},
			Action:    "sts:AssumeRole",
		}},
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("error marshaling trust policy: %w", err)
	}
	return string(data), nil
}

// monitorPolicyDocument builds the narrow read-only policy the monitor needs:
// listing log groups and reading AWS/Logs metrics, nothing else.
func monitorPolicyDocument() (string, error) {
	doc := policyDocument{
		Version: "2012-10-17",
		Statement: []policyStatement{{
			Effect: "Allow",
			Action: []string{
				"logs:DescribeLogGroups",
				"cloudwatch:GetMetricData",
				"cloudwatch:GetMetricStatistics",
				"cloudwatch:ListMetrics",
			},
			Resource: "*",
		}},
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("error marshaling monitor policy: %w", err)
	}
	return string(data), nil
}
