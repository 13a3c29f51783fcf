package types

// CLIArgs represents the command-line arguments shared by the subcommands.
type CLIArgs struct {
	ConfigFile     string
	Profiles       []string
	Regions        []string
	All            bool
	Org            bool
	Days           int
	StorageMode    string
	CompareActuals bool
	ReportName     string
	ReportType     []string
	Dir            string
}
