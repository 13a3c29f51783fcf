package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logscost/logscost/internal/domain/entity"
	"github.com/logscost/logscost/internal/domain/pricing"
	"github.com/logscost/logscost/internal/shared/types"
)

const gib = float64(1 << 30)

// --- fakes ---

type fakeAWSRepo struct {
	profiles      []string
	accountIDs    map[string]string
	managementID  string
	orgAccounts   []entity.OrganizationAccount
	logGroups     map[string][]entity.LogGroupInfo // keyed by target name
	metrics       map[string]entity.LogGroupMetrics
	actualSpend   float64
	metricsErr    error
	rolesEnsured  []string
	ensureRoleErr map[string]error
}

func (f *fakeAWSRepo) GetAWSProfiles() []string { return f.profiles }

func (f *fakeAWSRepo) GetAccountID(_ context.Context, profile string) (string, error) {
	if id, ok := f.accountIDs[profile]; ok {
		return id, nil
	}
	return "", errors.New("unknown profile")
}

func (f *fakeAWSRepo) GetManagementAccountID(_ context.Context, _ string) (string, error) {
	if f.managementID == "" {
		return "", types.ErrNotManagementAccount
	}
	return f.managementID, nil
}

func (f *fakeAWSRepo) ListOrganizationAccounts(_ context.Context, _ string) ([]entity.OrganizationAccount, error) {
	return f.orgAccounts, nil
}

func (f *fakeAWSRepo) DescribeLogGroups(_ context.Context, target entity.Target, _ []string) ([]entity.LogGroupInfo, error) {
	return f.logGroups[target.Name], nil
}

func (f *fakeAWSRepo) GetLogGroupMetrics(_ context.Context, _ entity.Target, group entity.LogGroupInfo, _, _ time.Time) (entity.LogGroupMetrics, error) {
	if f.metricsErr != nil {
		return entity.LogGroupMetrics{}, f.metricsErr
	}
	return f.metrics[group.Name], nil
}

func (f *fakeAWSRepo) GetActualCloudWatchSpend(_ context.Context, _ entity.Target, _, _ time.Time) (float64, error) {
	return f.actualSpend, nil
}

func (f *fakeAWSRepo) EnsureMonitorRole(_ context.Context, _ string, account entity.OrganizationAccount, _ string) error {
	if err, ok := f.ensureRoleErr[account.ID]; ok {
		return err
	}
	f.rolesEnsured = append(f.rolesEnsured, account.ID)
	return nil
}

type fakeExportRepo struct {
	csvCalls   int
	jsonCalls  int
	pdfCalls   int
	chartCalls int
	summaries  []entity.CostSummary
}

func (f *fakeExportRepo) ExportToCSV(s []entity.CostSummary, _, _ string) (string, error) {
	f.csvCalls++
	f.summaries = s
	return "/tmp/report.csv", nil
}

func (f *fakeExportRepo) ExportToJSON(s []entity.CostSummary, _, _ string) (string, error) {
	f.jsonCalls++
	return "/tmp/report.json", nil
}

func (f *fakeExportRepo) ExportToPDF(s []entity.CostSummary, _, _ string) (string, error) {
	f.pdfCalls++
	return "/tmp/report.pdf", nil
}

func (f *fakeExportRepo) SaveCostCharts(s []entity.CostSummary, _ string) ([]string, error) {
	f.chartCalls++
	f.summaries = s
	return []string{"ingestion_costs.png", "storage_costs.png", "total_costs.png"}, nil
}

type fakeConfigRepo struct {
	cfg *types.Config
	err error
}

func (f *fakeConfigRepo) LoadConfigFile(_ string) (*types.Config, error) {
	return f.cfg, f.err
}

type fakeTable struct {
	columns []string
	rows    [][]string
}

func (t *fakeTable) AddColumn(name string, _ ...interface{}) { t.columns = append(t.columns, name) }
func (t *fakeTable) AddRow(cells ...interface{}) {
	row := make([]string, len(cells))
	for i, c := range cells {
		row[i] = fmt.Sprint(c)
	}
	t.rows = append(t.rows, row)
}
func (t *fakeTable) Render() string { return fmt.Sprintf("%d rows", len(t.rows)) }

type fakeHandle struct{}

func (fakeHandle) Update(string) {}
func (fakeHandle) Stop()         {}
func (fakeHandle) Increment()    {}

type fakeConsole struct {
	warnings []string
	table    *fakeTable
	bars     []types.OwnerCost
}

func (c *fakeConsole) Print(...interface{})            {}
func (c *fakeConsole) Printf(string, ...interface{})   {}
func (c *fakeConsole) Println(...interface{})          {}
func (c *fakeConsole) LogInfo(string, ...interface{})  {}
func (c *fakeConsole) LogError(string, ...interface{}) {}
func (c *fakeConsole) LogWarning(format string, a ...interface{}) {
	c.warnings = append(c.warnings, fmt.Sprintf(format, a...))
}
func (c *fakeConsole) LogSuccess(string, ...interface{})                {}
func (c *fakeConsole) Status(string) types.StatusHandle                 { return fakeHandle{} }
func (c *fakeConsole) ProgressWithTotal(int) types.ProgressHandle       { return fakeHandle{} }
func (c *fakeConsole) DisplayCostBars(ownerCosts []types.OwnerCost)     { c.bars = ownerCosts }
func (c *fakeConsole) CreateTable() types.TableInterface {
	c.table = &fakeTable{}
	return c.table
}

func newUseCase(aws *fakeAWSRepo) (*MonitorUseCase, *fakeExportRepo, *fakeConsole) {
	export := &fakeExportRepo{}
	console := &fakeConsole{}
	uc := NewMonitorUseCase(aws, export, &fakeConfigRepo{cfg: &types.Config{}}, console)
	return uc, export, console
}

func singleProfileRepo() *fakeAWSRepo {
	return &fakeAWSRepo{
		profiles:   []string{"default", "prod"},
		accountIDs: map[string]string{"default": "111111111111", "prod": "222222222222"},
		logGroups: map[string][]entity.LogGroupInfo{
			"prod": {
				{Name: "/app/api", Region: "us-east-1"},
				{Name: "/app/worker", Region: "us-east-1"},
			},
		},
		metrics: map[string]entity.LogGroupMetrics{
			"/app/api":    {IncomingBytes: []float64{gib}, StoredBytes: []float64{10 * gib}},
			"/app/worker": {IncomingBytes: []float64{2 * gib}},
		},
	}
}

// --- tests ---

func TestResolveTargetsExplicitProfiles(t *testing.T) {
	uc, _, console := newUseCase(singleProfileRepo())

	targets, err := uc.ResolveTargets(context.Background(), &types.CLIArgs{
		Profiles: []string{"prod", "missing"},
	})
	require.NoError(t, err)

	require.Len(t, targets, 1)
	assert.Equal(t, "prod", targets[0].Profile)
	assert.False(t, targets[0].AssumeRole)
	require.Len(t, console.warnings, 1)
	assert.Contains(t, console.warnings[0], "missing")
}

func TestResolveTargetsNoValidProfiles(t *testing.T) {
	uc, _, _ := newUseCase(singleProfileRepo())

	_, err := uc.ResolveTargets(context.Background(), &types.CLIArgs{Profiles: []string{"nope"}})
	assert.ErrorIs(t, err, types.ErrNoValidProfilesFound)
}

func TestResolveTargetsDefaultProfile(t *testing.T) {
	uc, _, _ := newUseCase(singleProfileRepo())

	targets, err := uc.ResolveTargets(context.Background(), &types.CLIArgs{})
	require.NoError(t, err)
	require.Len(t, targets, 1)
	assert.Equal(t, "default", targets[0].Profile)
}

func TestResolveTargetsAllProfiles(t *testing.T) {
	uc, _, _ := newUseCase(singleProfileRepo())

	targets, err := uc.ResolveTargets(context.Background(), &types.CLIArgs{All: true})
	require.NoError(t, err)
	assert.Len(t, targets, 2)
}

func TestResolveTargetsOrganization(t *testing.T) {
	repo := singleProfileRepo()
	repo.managementID = "111111111111"
	repo.orgAccounts = []entity.OrganizationAccount{
		{ID: "111111111111", Name: "management", Status: "ACTIVE"},
		{ID: "333333333333", Name: "workloads", Status: "ACTIVE"},
		{ID: "444444444444", Name: "suspended", Status: "SUSPENDED"},
	}
	uc, _, _ := newUseCase(repo)

	targets, err := uc.ResolveTargets(context.Background(), &types.CLIArgs{Org: true})
	require.NoError(t, err)

	require.Len(t, targets, 2)
	assert.False(t, targets[0].AssumeRole, "management account must use its own credentials")
	assert.True(t, targets[1].AssumeRole)
	assert.Equal(t, "333333333333", targets[1].AccountID)
}

func TestCollectSummariesPricesLogGroups(t *testing.T) {
	uc, _, console := newUseCase(singleProfileRepo())

	calc := pricing.NewCalculator(pricing.DefaultRates(), pricing.StorageModeAverage)
	targets := []entity.Target{{Profile: "prod", Name: "prod"}}
	summaries := uc.CollectSummaries(context.Background(), targets, &types.CLIArgs{Days: 30}, calc, console.Status(""))

	require.Len(t, summaries, 1)
	s := summaries[0]
	require.True(t, s.Success)
	require.Len(t, s.Records, 2)

	// /app/api: 1 GiB ingested + 10 GB-month stored; /app/worker: 2 GiB ingested
	assert.InDelta(t, 0.80, s.Records[0].TotalCost, 1e-9)
	assert.InDelta(t, 1.00, s.Records[1].TotalCost, 1e-9)
	assert.InDelta(t, 1.80, s.TotalCost, 1e-9)
	assert.Equal(t, "222222222222", s.AccountID)
}

func TestCollectSummariesWarnsOnAccountIDFailure(t *testing.T) {
	repo := singleProfileRepo()
	uc, _, console := newUseCase(repo)

	calc := pricing.NewCalculator(pricing.DefaultRates(), pricing.StorageModeAverage)
	// Profile unknown to STS but with log groups: the report still renders,
	// with an empty account ID and a warning instead of silence.
	targets := []entity.Target{{Profile: "ghost", Name: "prod"}}
	summaries := uc.CollectSummaries(context.Background(), targets, &types.CLIArgs{Days: 30}, calc, console.Status(""))

	require.Len(t, summaries, 1)
	assert.True(t, summaries[0].Success)
	assert.Empty(t, summaries[0].AccountID)
	require.NotEmpty(t, console.warnings)
	assert.Contains(t, console.warnings[0], "account ID")
}

func TestCollectSummariesMetricFailure(t *testing.T) {
	repo := singleProfileRepo()
	repo.metricsErr = errors.New("throttled")
	uc, _, console := newUseCase(repo)

	calc := pricing.NewCalculator(pricing.DefaultRates(), pricing.StorageModeAverage)
	targets := []entity.Target{{Profile: "prod", Name: "prod"}}
	summaries := uc.CollectSummaries(context.Background(), targets, &types.CLIArgs{Days: 30}, calc, console.Status(""))

	require.Len(t, summaries, 1)
	assert.False(t, summaries[0].Success)
	assert.Contains(t, summaries[0].Error, "throttled")
}

func TestCollectSummariesCompareActuals(t *testing.T) {
	repo := singleProfileRepo()
	repo.actualSpend = 2.34
	uc, _, console := newUseCase(repo)

	calc := pricing.NewCalculator(pricing.DefaultRates(), pricing.StorageModeAverage)
	targets := []entity.Target{{Profile: "prod", Name: "prod"}}
	summaries := uc.CollectSummaries(context.Background(), targets,
		&types.CLIArgs{Days: 30, CompareActuals: true}, calc, console.Status(""))

	require.Len(t, summaries, 1)
	require.NotNil(t, summaries[0].ActualSpend)
	assert.InDelta(t, 2.34, *summaries[0].ActualSpend, 1e-9)
}

func TestRunSummarizeBuildsTableAndExports(t *testing.T) {
	uc, export, console := newUseCase(singleProfileRepo())

	err := uc.RunSummarize(context.Background(), &types.CLIArgs{
		Profiles:   []string{"prod"},
		Days:       30,
		ReportName: "logs",
		ReportType: []string{"csv", "json"},
	})
	require.NoError(t, err)

	require.NotNil(t, console.table)
	assert.Equal(t, []string{"Account/Profile", "Log Group", "Ingestion Cost", "Storage Cost", "Total Cost"}, console.table.columns)
	// 2 log group rows + 1 total row
	assert.Len(t, console.table.rows, 3)
	assert.Equal(t, 1, export.csvCalls)
	assert.Equal(t, 1, export.jsonCalls)
	assert.Equal(t, 0, export.pdfCalls)

	require.Len(t, console.bars, 1)
	assert.InDelta(t, 1.80, console.bars[0].Cost, 1e-9)
}

func TestRunSummarizeNoData(t *testing.T) {
	repo := singleProfileRepo()
	repo.logGroups = nil
	uc, export, console := newUseCase(repo)

	err := uc.RunSummarize(context.Background(), &types.CLIArgs{Profiles: []string{"prod"}})
	require.NoError(t, err)

	assert.Zero(t, export.csvCalls)
	require.NotEmpty(t, console.warnings)
	assert.Contains(t, strings.Join(console.warnings, " "), "No costs found")
}

func TestRunSummarizeInvalidStorageMode(t *testing.T) {
	uc, _, _ := newUseCase(singleProfileRepo())

	err := uc.RunSummarize(context.Background(), &types.CLIArgs{StorageMode: "median"})
	assert.ErrorIs(t, err, types.ErrInvalidStorageMode)
}

func TestRunGraphSavesCharts(t *testing.T) {
	uc, export, _ := newUseCase(singleProfileRepo())

	err := uc.RunGraph(context.Background(), &types.CLIArgs{Profiles: []string{"prod"}, Days: 7})
	require.NoError(t, err)

	assert.Equal(t, 1, export.chartCalls)
	require.Len(t, export.summaries, 1)
	assert.True(t, export.summaries[0].Success)
}

func TestRunSetupProvisionsActiveAccountsOnly(t *testing.T) {
	repo := singleProfileRepo()
	repo.managementID = "111111111111"
	repo.orgAccounts = []entity.OrganizationAccount{
		{ID: "111111111111", Name: "management", Status: "ACTIVE"},
		{ID: "333333333333", Name: "workloads", Status: "ACTIVE"},
		{ID: "444444444444", Name: "old", Status: "SUSPENDED"},
	}
	uc, _, _ := newUseCase(repo)

	err := uc.RunSetup(context.Background(), &types.CLIArgs{})
	require.NoError(t, err)

	assert.Equal(t, []string{"111111111111", "333333333333"}, repo.rolesEnsured)
}

func TestRunSetupContinuesAfterAccountFailure(t *testing.T) {
	repo := singleProfileRepo()
	repo.managementID = "111111111111"
	repo.orgAccounts = []entity.OrganizationAccount{
		{ID: "111111111111", Name: "management", Status: "ACTIVE"},
		{ID: "333333333333", Name: "workloads", Status: "ACTIVE"},
	}
	repo.ensureRoleErr = map[string]error{"111111111111": errors.New("denied")}
	uc, _, _ := newUseCase(repo)

	err := uc.RunSetup(context.Background(), &types.CLIArgs{})
	require.NoError(t, err)

	assert.Equal(t, []string{"333333333333"}, repo.rolesEnsured)
}

func TestMergeConfigFileFlagsWin(t *testing.T) {
	cfgRepo := &fakeConfigRepo{cfg: &types.Config{
		Profiles:    []string{"cfg-profile"},
		Days:        90,
		StorageMode: "snapshot",
		Dir:         "/cfg/dir",
	}}
	uc := NewMonitorUseCase(singleProfileRepo(), &fakeExportRepo{}, cfgRepo, &fakeConsole{})

	args := &types.CLIArgs{ConfigFile: "logscost.toml", Days: 7, Profiles: []string{"prod"}}
	_, err := uc.MergeConfigFile(args)
	require.NoError(t, err)

	assert.Equal(t, 7, args.Days, "flag value must win")
	assert.Equal(t, []string{"prod"}, args.Profiles)
	assert.Equal(t, "snapshot", args.StorageMode, "unset flag takes config value")
	assert.Equal(t, "/cfg/dir", args.Dir)
}
