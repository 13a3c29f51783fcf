package entity

// OrganizationAccount is a member account as returned by Organizations ListAccounts.
type OrganizationAccount struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

// IsActive reports whether the account can be queried at all.
func (a OrganizationAccount) IsActive() bool {
	return a.Status == "ACTIVE"
}

// Target identifies one credential context to collect costs under.
// Profile targets resolve through the shared AWS config files; Organization
// targets assume the monitor role in the member account.
type Target struct {
	// Profile is the CLI profile used to build credentials. In Organization
	// mode this is the management profile the role is assumed from.
	Profile string
	// AccountID is set for Organization targets (and filled in lazily for
	// profile targets once known).
	AccountID string
	// Name is what reports display: the account name, or the profile name.
	Name string
	// AssumeRole marks Organization member targets that require
	// CloudWatchCostMonitorRole.
	AssumeRole bool
}
