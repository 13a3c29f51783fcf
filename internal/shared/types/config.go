package types

// Config represents the application configuration that can be loaded from a
// TOML, YAML, or JSON file. CLI flags always win over file values.
type Config struct {
	Profiles             []string `json:"profiles" yaml:"profiles" toml:"profiles"`
	Regions              []string `json:"regions" yaml:"regions" toml:"regions"`
	Org                  bool     `json:"org" yaml:"org" toml:"org"`
	Days                 int      `json:"days" yaml:"days" toml:"days"`
	StorageMode          string   `json:"storage_mode" yaml:"storage_mode" toml:"storage_mode"`
	IngestionRatePerGB   float64  `json:"ingestion_rate_per_gb" yaml:"ingestion_rate_per_gb" toml:"ingestion_rate_per_gb"`
	StorageRatePerGBMo   float64  `json:"storage_rate_per_gb_month" yaml:"storage_rate_per_gb_month" toml:"storage_rate_per_gb_month"`
	ReportName           string   `json:"report_name" yaml:"report_name" toml:"report_name"`
	ReportType           []string `json:"report_type" yaml:"report_type" toml:"report_type"`
	Dir                  string   `json:"dir" yaml:"dir" toml:"dir"`
}
