package types

import "errors"

var (
	ErrNoProfilesFound      = errors.New("no AWS profiles found. Please configure AWS CLI first")
	ErrNoValidProfilesFound = errors.New("none of the specified profiles were found in AWS configuration")
	ErrNotManagementAccount = errors.New("organization mode requires credentials for the management account")
	ErrMonitorRoleMissing   = errors.New("monitor role not found in member account; run 'logscost setup' first")
	ErrInvalidStorageMode   = errors.New("invalid storage mode: must be 'average' or 'snapshot'")
)
