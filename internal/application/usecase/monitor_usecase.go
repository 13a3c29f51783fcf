package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/pterm/pterm"

	"github.com/logscost/logscost/internal/domain/entity"
	"github.com/logscost/logscost/internal/domain/pricing"
	"github.com/logscost/logscost/internal/domain/repository"
	"github.com/logscost/logscost/internal/shared/types"
)

// MonitorUseCase handles the CloudWatch Logs cost monitor commands:
// summarize, graph and setup.
type MonitorUseCase struct {
	awsRepo    repository.AWSRepository
	exportRepo repository.ExportRepository
	configRepo repository.ConfigRepository
	console    types.ConsoleInterface
}

// NewMonitorUseCase creates a new monitor use case.
func NewMonitorUseCase(
	awsRepo repository.AWSRepository,
	exportRepo repository.ExportRepository,
	configRepo repository.ConfigRepository,
	console types.ConsoleInterface,
) *MonitorUseCase {
	return &MonitorUseCase{
		awsRepo:    awsRepo,
		exportRepo: exportRepo,
		configRepo: configRepo,
		console:    console,
	}
}

// MergeConfigFile carrega o arquivo de configuração (se houver) e preenche os
// argumentos não informados na linha de comando. Flags sempre ganham.
func (uc *MonitorUseCase) MergeConfigFile(args *types.CLIArgs) (*types.Config, error) {
	if args.ConfigFile == "" {
		return &types.Config{}, nil
	}

	cfg, err := uc.configRepo.LoadConfigFile(args.ConfigFile)
	if err != nil {
		return nil, err
	}

	if len(args.Profiles) == 0 {
		args.Profiles = cfg.Profiles
	}
	if len(args.Regions) == 0 {
		args.Regions = cfg.Regions
	}
	if !args.Org {
		args.Org = cfg.Org
	}
	if args.Days == 0 {
		args.Days = cfg.Days
	}
	if args.StorageMode == "" {
		args.StorageMode = cfg.StorageMode
	}
	if args.ReportName == "" {
		args.ReportName = cfg.ReportName
	}
	if len(args.ReportType) == 0 {
		args.ReportType = cfg.ReportType
	}
	if args.Dir == "" {
		args.Dir = cfg.Dir
	}

	return cfg, nil
}

// newCalculator monta o calculador de preços a partir dos argumentos e do
// arquivo de configuração.
func (uc *MonitorUseCase) newCalculator(args *types.CLIArgs, cfg *types.Config) (*pricing.Calculator, error) {
	mode := pricing.StorageMode(args.StorageMode)
	if args.StorageMode != "" && !mode.Valid() {
		return nil, fmt.Errorf("%w: %q", types.ErrInvalidStorageMode, args.StorageMode)
	}

	rates := pricing.Rates{
		IngestionPerGB:    cfg.IngestionRatePerGB,
		StoragePerGBMonth: cfg.StorageRatePerGBMo,
	}
	return pricing.NewCalculator(rates, mode), nil
}

// ResolveTargets determines which credential contexts to collect costs under.
func (uc *MonitorUseCase) ResolveTargets(ctx context.Context, args *types.CLIArgs) ([]entity.Target, error) {
	if args.Org {
		return uc.resolveOrganizationTargets(ctx, args)
	}
	return uc.resolveProfileTargets(args)
}

func (uc *MonitorUseCase) resolveProfileTargets(args *types.CLIArgs) ([]entity.Target, error) {
	availableProfiles := uc.awsRepo.GetAWSProfiles()
	if len(availableProfiles) == 0 {
		return nil, types.ErrNoProfilesFound
	}

	profilesToUse := []string{}

	if len(args.Profiles) > 0 {
		for _, profile := range args.Profiles {
			found := false
			for _, availProfile := range availableProfiles {
				if profile == availProfile {
					profilesToUse = append(profilesToUse, profile)
					found = true
					break
				}
			}
			if !found {
				uc.console.LogWarning("Profile '%s' not found in AWS configuration", profile)
			}
		}
		if len(profilesToUse) == 0 {
			return nil, types.ErrNoValidProfilesFound
		}
	} else if args.All {
		profilesToUse = availableProfiles
	} else {
		defaultExists := false
		for _, profile := range availableProfiles {
			if profile == "default" {
				profilesToUse = []string{"default"}
				defaultExists = true
				break
			}
		}

		if !defaultExists {
			profilesToUse = availableProfiles
			uc.console.LogWarning("No default profile found. Using all available profiles.")
		}
	}

	targets := make([]entity.Target, 0, len(profilesToUse))
	for _, profile := range profilesToUse {
		targets = append(targets, entity.Target{Profile: profile, Name: profile})
	}
	return targets, nil
}

func (uc *MonitorUseCase) resolveOrganizationTargets(ctx context.Context, args *types.CLIArgs) ([]entity.Target, error) {
	mgmtProfile := managementProfile(args)

	managementID, err := uc.awsRepo.GetManagementAccountID(ctx, mgmtProfile)
	if err != nil {
		return nil, err
	}

	accounts, err := uc.awsRepo.ListOrganizationAccounts(ctx, mgmtProfile)
	if err != nil {
		return nil, err
	}

	var targets []entity.Target
	for _, account := range accounts {
		if !account.IsActive() {
			continue
		}
		targets = append(targets, entity.Target{
			Profile:    mgmtProfile,
			AccountID:  account.ID,
			Name:       account.Name,
			AssumeRole: account.ID != managementID,
		})
	}
	return targets, nil
}

// managementProfile é o perfil usado para falar com a Organization: o primeiro
// de --profiles, ou "default".
func managementProfile(args *types.CLIArgs) string {
	if len(args.Profiles) > 0 {
		return args.Profiles[0]
	}
	return "default"
}

// CollectSummaries queries log groups and metrics for every target,
// sequentially, and prices each log group. A failing target produces a failed
// summary instead of aborting the whole run.
func (uc *MonitorUseCase) CollectSummaries(
	ctx context.Context,
	targets []entity.Target,
	args *types.CLIArgs,
	calc *pricing.Calculator,
	status types.StatusHandle,
) []entity.CostSummary {
	days := args.Days
	if days <= 0 {
		days = 30
	}
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -days)

	progress := uc.console.ProgressWithTotal(len(targets))
	defer progress.Stop()

	summaries := make([]entity.CostSummary, 0, len(targets))
	for _, target := range targets {
		status.Update(fmt.Sprintf("Collecting log group costs for %s...", target.Name))
		summary := uc.collectTargetSummary(ctx, target, args, calc, start, end, days)
		summaries = append(summaries, summary)
		progress.Increment()
	}
	return summaries
}

func (uc *MonitorUseCase) collectTargetSummary(
	ctx context.Context,
	target entity.Target,
	args *types.CLIArgs,
	calc *pricing.Calculator,
	start, end time.Time,
	days int,
) entity.CostSummary {
	failed := func(err error) entity.CostSummary {
		return entity.CostSummary{
			Owner:       target.Name,
			AccountID:   target.AccountID,
			WindowStart: start,
			WindowEnd:   end,
			Success:     false,
			Error:       err.Error(),
		}
	}

	accountID := target.AccountID
	if accountID == "" {
		id, err := uc.awsRepo.GetAccountID(ctx, target.Profile)
		if err != nil {
			uc.console.LogWarning("Could not resolve account ID for %s: %s", target.Name, err)
		} else {
			accountID = id
		}
	}

	logGroups, err := uc.awsRepo.DescribeLogGroups(ctx, target, args.Regions)
	if err != nil {
		return failed(err)
	}

	records := make([]entity.CostRecord, 0, len(logGroups))
	for _, group := range logGroups {
		metrics, err := uc.awsRepo.GetLogGroupMetrics(ctx, target, group, start, end)
		if err != nil {
			return failed(err)
		}
		records = append(records, calc.Cost(target.Name, accountID, group, metrics, days))
	}

	summary := pricing.Summarize(target.Name, accountID, records)
	summary.WindowStart = start
	summary.WindowEnd = end

	if args.CompareActuals {
		actual, err := uc.awsRepo.GetActualCloudWatchSpend(ctx, target, start, end)
		if err != nil {
			uc.console.LogWarning("Could not get billed CloudWatch spend for %s: %s", target.Name, err)
		} else {
			summary.ActualSpend = &actual
		}
	}

	return summary
}

// RunSummarize executa o comando summarize: tabela por log group no terminal
// e, opcionalmente, exports.
func (uc *MonitorUseCase) RunSummarize(ctx context.Context, args *types.CLIArgs) error {
	cfg, err := uc.MergeConfigFile(args)
	if err != nil {
		return err
	}
	calc, err := uc.newCalculator(args, cfg)
	if err != nil {
		return err
	}

	targets, err := uc.ResolveTargets(ctx, args)
	if err != nil {
		return err
	}

	status := uc.console.Status("Initializing cost report...")
	summaries := uc.CollectSummaries(ctx, targets, args, calc, status)
	status.Stop()

	table := uc.buildSummaryTable(summaries, args.CompareActuals)
	uc.console.Print(table.Render())

	ownerCosts := make([]types.OwnerCost, 0, len(summaries))
	anyData := false
	for _, summary := range summaries {
		if summary.Success && len(summary.Records) > 0 {
			anyData = true
		}
		ownerCosts = append(ownerCosts, types.OwnerCost{Owner: summary.Owner, Cost: summary.TotalCost})
	}
	if !anyData {
		uc.console.LogWarning("No costs found or access issues.")
		return nil
	}

	uc.console.DisplayCostBars(ownerCosts)

	return uc.exportReports(summaries, args)
}

// RunGraph executa o comando graph: três PNGs com nomes fixos no diretório
// de saída.
func (uc *MonitorUseCase) RunGraph(ctx context.Context, args *types.CLIArgs) error {
	cfg, err := uc.MergeConfigFile(args)
	if err != nil {
		return err
	}
	calc, err := uc.newCalculator(args, cfg)
	if err != nil {
		return err
	}

	targets, err := uc.ResolveTargets(ctx, args)
	if err != nil {
		return err
	}

	status := uc.console.Status("Collecting cost data for graphs...")
	summaries := uc.CollectSummaries(ctx, targets, args, calc, status)
	status.Stop()

	paths, err := uc.exportRepo.SaveCostCharts(summaries, args.Dir)
	if err != nil {
		return err
	}

	for _, path := range paths {
		uc.console.LogSuccess("Graph saved: %s", path)
	}
	return nil
}

// RunSetup provisiona o CloudWatchCostMonitorRole em todas as contas ativas
// da Organization.
func (uc *MonitorUseCase) RunSetup(ctx context.Context, args *types.CLIArgs) error {
	if _, err := uc.MergeConfigFile(args); err != nil {
		return err
	}

	mgmtProfile := managementProfile(args)

	managementID, err := uc.awsRepo.GetManagementAccountID(ctx, mgmtProfile)
	if err != nil {
		return err
	}

	accounts, err := uc.awsRepo.ListOrganizationAccounts(ctx, mgmtProfile)
	if err != nil {
		return err
	}

	for _, account := range accounts {
		if !account.IsActive() {
			continue
		}

		label := account.ID
		if account.ID == managementID {
			label += " (management)"
		}
		uc.console.LogInfo("Setting up role in account %s", label)

		if err := uc.awsRepo.EnsureMonitorRole(ctx, mgmtProfile, account, managementID); err != nil {
			uc.console.LogError("Error setting up role in account %s: %s", account.ID, err)
			continue
		}
		uc.console.LogSuccess("Monitor role ready in account %s", account.ID)
	}

	return nil
}

// buildSummaryTable monta a tabela de exibição, uma linha por log group e uma
// linha de total por conta/perfil.
func (uc *MonitorUseCase) buildSummaryTable(summaries []entity.CostSummary, compareActuals bool) types.TableInterface {
	table := uc.console.CreateTable()

	table.AddColumn("Account/Profile")
	table.AddColumn("Log Group")
	table.AddColumn("Ingestion Cost")
	table.AddColumn("Storage Cost")
	table.AddColumn("Total Cost")

	for _, summary := range summaries {
		if !summary.Success {
			table.AddRow(
				pterm.FgMagenta.Sprintf("%s", summary.Owner),
				pterm.FgRed.Sprintf("Failed: %s", summary.Error),
				pterm.FgRed.Sprint("Error"),
				pterm.FgRed.Sprint("Error"),
				pterm.FgRed.Sprint("Error"),
			)
			continue
		}

		ownerText := pterm.FgMagenta.Sprintf("%s\nAccount: %s", summary.Owner, summary.AccountID)
		for _, rec := range summary.Records {
			table.AddRow(
				ownerText,
				rec.LogGroup,
				fmt.Sprintf("$%.2f", rec.IngestionCost),
				fmt.Sprintf("$%.2f", rec.StorageCost),
				fmt.Sprintf("$%.2f", rec.TotalCost),
			)
			ownerText = ""
		}

		totalLabel := "Total"
		if compareActuals && summary.ActualSpend != nil {
			totalLabel = fmt.Sprintf("Total (billed CloudWatch: $%.2f)", *summary.ActualSpend)
		}
		table.AddRow(
			pterm.FgMagenta.Sprintf("%s", summary.Owner),
			pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint(totalLabel),
			pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprintf("$%.2f", summary.IngestionCost),
			pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprintf("$%.2f", summary.StorageCost),
			pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprintf("$%.2f", summary.TotalCost),
		)
	}

	return table
}

// exportReports grava os relatórios pedidos via --report-name/--report-type.
func (uc *MonitorUseCase) exportReports(summaries []entity.CostSummary, args *types.CLIArgs) error {
	if args.ReportName == "" || len(args.ReportType) == 0 {
		return nil
	}

	for _, reportType := range args.ReportType {
		switch reportType {
		case "csv":
			csvPath, err := uc.exportRepo.ExportToCSV(summaries, args.ReportName, args.Dir)
			if err != nil {
				uc.console.LogError("Failed to export to CSV: %s", err)
			} else {
				uc.console.LogSuccess("Successfully exported to CSV: %s", csvPath)
			}
		case "json":
			jsonPath, err := uc.exportRepo.ExportToJSON(summaries, args.ReportName, args.Dir)
			if err != nil {
				uc.console.LogError("Failed to export to JSON: %s", err)
			} else {
				uc.console.LogSuccess("Successfully exported to JSON: %s", jsonPath)
			}
		case "pdf":
			pdfPath, err := uc.exportRepo.ExportToPDF(summaries, args.ReportName, args.Dir)
			if err != nil {
				uc.console.LogError("Failed to export to PDF: %s", err)
			} else {
				uc.console.LogSuccess("Successfully exported to PDF: %s", pdfPath)
			}
		default:
			uc.console.LogWarning("Unknown report type: %s", reportType)
		}
	}

	return nil
}
