package cli

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/logscost/logscost/internal/application/usecase"
	"github.com/logscost/logscost/internal/shared/types"
	"github.com/logscost/logscost/pkg/version"
)

// CLIApp represents the command-line interface application.
type CLIApp struct {
	rootCmd        *cobra.Command
	monitorUseCase *usecase.MonitorUseCase
	version        string
}

// NewCLIApp cria uma nova aplicação CLI.
func NewCLIApp(versionStr string) *CLIApp {
	app := &CLIApp{
		version: versionStr,
	}

	// Obtem a versão formatada
	formattedVersion := version.FormatVersion()

	rootCmd := &cobra.Command{
		Use:     "logscost",
		Short:   "CloudWatch Logs cost monitor CLI",
		Long:    "Estimates CloudWatch Logs ingestion and storage costs per log group, across profiles or a whole AWS Organization.",
		Version: formattedVersion, // Use a versão formatada
	}

	// Personaliza a template para incluir mais informações de versão
	rootCmd.SetVersionTemplate(`{{printf "CloudWatch Logs Cost Monitor version: %s\n" .Version}}`)

	// Flags compartilhadas entre os subcomandos
	rootCmd.PersistentFlags().StringP("config-file", "C", "", "Path to a TOML, YAML, or JSON configuration file")
	rootCmd.PersistentFlags().StringSliceP("profiles", "p", nil, "Specific AWS profiles to use (comma-separated)")
	rootCmd.PersistentFlags().StringSliceP("regions", "r", nil, "AWS regions to check for log groups (comma-separated, default: profile region)")
	rootCmd.PersistentFlags().BoolP("all", "a", false, "Use all available AWS profiles")
	rootCmd.PersistentFlags().Bool("org", false, "Collect costs for every active account in the AWS Organization")
	rootCmd.PersistentFlags().IntP("days", "t", 0, "Reporting window in days (default: 30)")
	rootCmd.PersistentFlags().String("storage-mode", "", "How to derive stored volume from daily samples: average or snapshot (default: average)")

	summarizeCmd := &cobra.Command{
		Use:   "summarize",
		Short: "Show estimated CloudWatch Logs costs per log group",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.run(cmd, app.monitorUseCase.RunSummarize)
		},
	}
	summarizeCmd.Flags().Bool("compare-actuals", false, "Compare the estimate with the billed AmazonCloudWatch spend from Cost Explorer")
	summarizeCmd.Flags().StringP("report-name", "n", "", "Specify the base name for the report file (without extension)")
	summarizeCmd.Flags().StringSliceP("report-type", "y", nil, "Specify report types: csv, json, pdf")
	summarizeCmd.Flags().StringP("dir", "d", "", "Directory to save the report files (default: current directory)")

	graphCmd := &cobra.Command{
		Use:   "graph",
		Short: "Write ingestion, storage and total cost bar charts as PNG files",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.run(cmd, app.monitorUseCase.RunGraph)
		},
	}
	graphCmd.Flags().StringP("dir", "d", "", "Directory to save the chart files (default: current directory)")

	setupCmd := &cobra.Command{
		Use:   "setup",
		Short: "Provision the CloudWatchCostMonitorRole in every active Organization account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.run(cmd, app.monitorUseCase.RunSetup)
		},
	}
	setupCmd.Flags().String("profile", "", "Management account profile to run setup as (default: first of --profiles, or 'default')")

	rootCmd.AddCommand(summarizeCmd, graphCmd, setupCmd)

	app.rootCmd = rootCmd
	return app
}

// Execute runs the CLI application.
func (app *CLIApp) Execute() error {
	return app.rootCmd.Execute()
}

// run é o ponto de entrada comum dos subcomandos.
func (app *CLIApp) run(cmd *cobra.Command, fn func(context.Context, *types.CLIArgs) error) error {
	// Exibe o banner de boas-vindas
	displayWelcomeBanner(app.version)

	// Verifica a versão mais recente disponível
	go version.CheckLatestVersion(app.version)

	cliArgs, err := parseArgs(cmd)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return fn(ctx, cliArgs)
}

// parseArgs parses command-line flags into a CLIArgs struct.
func parseArgs(cmd *cobra.Command) (*types.CLIArgs, error) {
	flags := cmd.Flags()

	configFile, _ := flags.GetString("config-file")
	profiles, _ := flags.GetStringSlice("profiles")
	regions, _ := flags.GetStringSlice("regions")
	all, _ := flags.GetBool("all")
	org, _ := flags.GetBool("org")
	days, _ := flags.GetInt("days")
	storageMode, _ := flags.GetString("storage-mode")

	// Flags que só existem em alguns subcomandos: GetX devolve o zero value
	// quando a flag não está registrada.
	compareActuals, _ := flags.GetBool("compare-actuals")
	reportName, _ := flags.GetString("report-name")
	reportType, _ := flags.GetStringSlice("report-type")
	dir, _ := flags.GetString("dir")
	profile, _ := flags.GetString("profile")

	// O perfil de management do setup entra na frente da lista.
	if profile != "" {
		profiles = append([]string{profile}, profiles...)
	}

	// Um --dir vazio fica vazio: o merge com o arquivo de configuração ainda
	// pode preenchê-lo, e a camada de export usa o diretório corrente como
	// último fallback.
	if dir != "" {
		absDir, err := filepath.Abs(dir)
		if err != nil {
			return nil, err
		}
		dir = absDir
	}

	args := &types.CLIArgs{
		ConfigFile:     configFile,
		Profiles:       profiles,
		Regions:        regions,
		All:            all,
		Org:            org,
		Days:           days,
		StorageMode:    storageMode,
		CompareActuals: compareActuals,
		ReportName:     reportName,
		ReportType:     reportType,
		Dir:            dir,
	}

	return args, nil
}

// SetMonitorUseCase sets the monitor use case for the CLI app.
func (app *CLIApp) SetMonitorUseCase(useCase *usecase.MonitorUseCase) {
	app.monitorUseCase = useCase
}
