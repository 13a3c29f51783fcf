package aws

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwTypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	ceTypes "github.com/aws/aws-sdk-go-v2/service/costexplorer/types"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	iamTypes "github.com/aws/aws-sdk-go-v2/service/iam/types"
	"github.com/aws/aws-sdk-go-v2/service/organizations"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/logscost/logscost/internal/domain/entity"
	"github.com/logscost/logscost/internal/domain/repository"
	"github.com/logscost/logscost/internal/shared/types"
)

// metricPeriodSeconds é a resolução dos datapoints: um por dia.
const metricPeriodSeconds = 86400

// AWSRepositoryImpl implementa o AWSRepository com cache de configs e clientes.
type AWSRepositoryImpl struct {
	cfgCache    map[string]aws.Config
	clientCache map[string]interface{}
	mu          sync.Mutex
}

// NewAWSRepository cria uma nova implementação do AWSRepository.
func NewAWSRepository() repository.AWSRepository {
	return &AWSRepositoryImpl{
		cfgCache:    make(map[string]aws.Config),
		clientCache: make(map[string]interface{}),
	}
}

func (r *AWSRepositoryImpl) getAWSConfig(ctx context.Context, profile string) (aws.Config, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cfg, ok := r.cfgCache[profile]; ok {
		return cfg, nil
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithSharedConfigProfile(profile))
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config for profile %s: %w", profile, err)
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	r.cfgCache[profile] = cfg
	return cfg, nil
}

// getTargetConfig resolve a config de credenciais de um alvo. Perfis usam a
// shared config; contas da Organization assumem o CloudWatchCostMonitorRole
// a partir do perfil de management.
func (r *AWSRepositoryImpl) getTargetConfig(ctx context.Context, target entity.Target) (aws.Config, error) {
	if !target.AssumeRole {
		return r.getAWSConfig(ctx, target.Profile)
	}

	cacheKey := "role:" + target.AccountID
	r.mu.Lock()
	if cfg, ok := r.cfgCache[cacheKey]; ok {
		r.mu.Unlock()
		return cfg, nil
	}
	r.mu.Unlock()

	mgmtCfg, err := r.getAWSConfig(ctx, target.Profile)
	if err != nil {
		return aws.Config{}, err
	}

	roleArn := fmt.Sprintf("arn:aws:iam::%s:role/%s", target.AccountID, RoleName)
	creds, err := r.assumeRole(ctx, mgmtCfg, roleArn, "CostMonitor")
	if err != nil {
		return aws.Config{}, fmt.Errorf("%w (account %s): %v", types.ErrMonitorRoleMissing, target.AccountID, err)
	}

	cfg := mgmtCfg.Copy()
	cfg.Credentials = credentials.NewStaticCredentialsProvider(
		creds.AccessKeyID, creds.SecretAccessKey, creds.SessionToken)

	r.mu.Lock()
	r.cfgCache[cacheKey] = cfg
	r.mu.Unlock()
	return cfg, nil
}

func (r *AWSRepositoryImpl) assumeRole(ctx context.Context, cfg aws.Config, roleArn, sessionName string) (aws.Credentials, error) {
	stsClient := sts.NewFromConfig(cfg)
	out, err := stsClient.AssumeRole(ctx, &sts.AssumeRoleInput{
		RoleArn:         aws.String(roleArn),
		RoleSessionName: aws.String(sessionName),
	})
	if err != nil {
		return aws.Credentials{}, err
	}
	c := out.Credentials
	return aws.Credentials{
		AccessKeyID:     aws.ToString(c.AccessKeyId),
		SecretAccessKey: aws.ToString(c.SecretAccessKey),
		SessionToken:    aws.ToString(c.SessionToken),
	}, nil
}

func (r *AWSRepositoryImpl) getServiceClient(ctx context.Context, target entity.Target, region, service string) (interface{}, error) {
	targetKey := target.Profile
	if target.AssumeRole {
		targetKey = "role:" + target.AccountID
	}
	cacheKey := fmt.Sprintf("%s-%s-%s", targetKey, region, service)

	r.mu.Lock()
	if client, ok := r.clientCache[cacheKey]; ok {
		r.mu.Unlock()
		return client, nil
	}
	r.mu.Unlock()

	cfg, err := r.getTargetConfig(ctx, target)
	if err != nil {
		return nil, err
	}

	regionalCfg := cfg.Copy()
	if region != "" {
		regionalCfg.Region = region
	}

	var client interface{}
	switch service {
	case "sts":
		client = sts.NewFromConfig(regionalCfg)
	case "logs":
		client = cloudwatchlogs.NewFromConfig(regionalCfg)
	case "cloudwatch":
		client = cloudwatch.NewFromConfig(regionalCfg)
	case "organizations":
		// Organizations é um serviço global servido em us-east-1
		regionalCfg.Region = "us-east-1"
		client = organizations.NewFromConfig(regionalCfg)
	case "iam":
		regionalCfg.Region = "us-east-1"
		client = iam.NewFromConfig(regionalCfg)
	case "costexplorer":
		regionalCfg.Region = "us-east-1"
		client = costexplorer.NewFromConfig(regionalCfg)
	default:
		return nil, fmt.Errorf("unsupported service: %s", service)
	}

	r.mu.Lock()
	r.clientCache[cacheKey] = client
	r.mu.Unlock()

	return client, nil
}

func (r *AWSRepositoryImpl) GetAWSProfiles() []string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return []string{"default"}
	}

	credentialsPath := filepath.Join(homeDir, ".aws", "credentials")
	configPath := filepath.Join(homeDir, ".aws", "config")

	profiles := make(map[string]bool)
	profileRegex := regexp.MustCompile(`\[([^]]+)\]`)

	parseFile := func(path string, isConfig bool) {
		content, err := os.ReadFile(path)
		if err != nil {
			return
		}
		matches := profileRegex.FindAllStringSubmatch(string(content), -1)
		for _, match := range matches {
			profileName := match[1]
			if isConfig {
				profileName = strings.TrimPrefix(profileName, "profile ")
			}
			profiles[profileName] = true
		}
	}

	parseFile(credentialsPath, false)
	parseFile(configPath, true)

	if len(profiles) == 0 {
		profiles["default"] = true
	}

	result := make([]string, 0, len(profiles))
	for profile := range profiles {
		result = append(result, profile)
	}
	sort.Strings(result)
	return result
}

func (r *AWSRepositoryImpl) GetAccountID(ctx context.Context, profile string) (string, error) {
	client, err := r.getServiceClient(ctx, entity.Target{Profile: profile}, "us-east-1", "sts")
	if err != nil {
		return "", err
	}
	stsClient := client.(*sts.Client)

	result, err := stsClient.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", fmt.Errorf("error getting account ID for profile %s: %w", profile, err)
	}
	return aws.ToString(result.Account), nil
}

func (r *AWSRepositoryImpl) GetManagementAccountID(ctx context.Context, profile string) (string, error) {
	client, err := r.getServiceClient(ctx, entity.Target{Profile: profile}, "", "organizations")
	if err != nil {
		return "", err
	}
	orgClient := client.(*organizations.Client)

	out, err := orgClient.DescribeOrganization(ctx, &organizations.DescribeOrganizationInput{})
	if err != nil {
		return "", fmt.Errorf("%w: %v", types.ErrNotManagementAccount, err)
	}
	return aws.ToString(out.Organization.MasterAccountId), nil
}

func (r *AWSRepositoryImpl) ListOrganizationAccounts(ctx context.Context, profile string) ([]entity.OrganizationAccount, error) {
	client, err := r.getServiceClient(ctx, entity.Target{Profile: profile}, "", "organizations")
	if err != nil {
		return nil, err
	}
	orgClient := client.(*organizations.Client)

	var accounts []entity.OrganizationAccount
	p := organizations.NewListAccountsPaginator(orgClient, &organizations.ListAccountsInput{})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("error listing organization accounts: %w", err)
		}
		for _, acct := range page.Accounts {
			accounts = append(accounts, entity.OrganizationAccount{
				ID:     aws.ToString(acct.Id),
				Name:   aws.ToString(acct.Name),
				Status: string(acct.Status),
			})
		}
	}

	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Name < accounts[j].Name })
	return accounts, nil
}

// DescribeLogGroups lista os log groups do alvo em cada região pedida.
// Com regions vazio, usa só a região default da config do alvo.
func (r *AWSRepositoryImpl) DescribeLogGroups(ctx context.Context, target entity.Target, regions []string) ([]entity.LogGroupInfo, error) {
	if len(regions) == 0 {
		cfg, err := r.getTargetConfig(ctx, target)
		if err != nil {
			return nil, err
		}
		regions = []string{cfg.Region}
	}

	var result []entity.LogGroupInfo
	for _, region := range regions {
		client, err := r.getServiceClient(ctx, target, region, "logs")
		if err != nil {
			return nil, err
		}
		cwlClient := client.(*cloudwatchlogs.Client)

		p := cloudwatchlogs.NewDescribeLogGroupsPaginator(cwlClient, &cloudwatchlogs.DescribeLogGroupsInput{
			Limit: aws.Int32(50),
		})
		for p.HasMorePages() {
			page, err := p.NextPage(ctx)
			if err != nil {
				return nil, fmt.Errorf("error describing log groups in %s: %w", region, err)
			}
			for _, lg := range page.LogGroups {
				result = append(result, entity.LogGroupInfo{
					Name:          aws.ToString(lg.LogGroupName),
					Region:        region,
					RetentionDays: int(aws.ToInt32(lg.RetentionInDays)),
				})
			}
		}
	}
	return result, nil
}

// GetLogGroupMetrics busca os datapoints diários de IncomingBytes (Sum) e
// StoredBytes (Average) de um log group na janela pedida.
func (r *AWSRepositoryImpl) GetLogGroupMetrics(ctx context.Context, target entity.Target, group entity.LogGroupInfo, start, end time.Time) (entity.LogGroupMetrics, error) {
	client, err := r.getServiceClient(ctx, target, group.Region, "cloudwatch")
	if err != nil {
		return entity.LogGroupMetrics{}, err
	}
	cwClient := client.(*cloudwatch.Client)

	incoming, err := r.getMetricValues(ctx, cwClient, "IncomingBytes", "Sum", group.Name, start, end)
	if err != nil {
		return entity.LogGroupMetrics{}, err
	}
	stored, err := r.getMetricValues(ctx, cwClient, "StoredBytes", "Average", group.Name, start, end)
	if err != nil {
		return entity.LogGroupMetrics{}, err
	}

	return entity.LogGroupMetrics{IncomingBytes: incoming, StoredBytes: stored}, nil
}

// metricDataInput monta a consulta de um datapoint por dia. ScanBy ascendente
// garante que os valores cheguem em ordem cronológica: o último da lista é o
// sample mais recente da janela.
func metricDataInput(metricName, stat, logGroupName string, start, end time.Time) *cloudwatch.GetMetricDataInput {
	return &cloudwatch.GetMetricDataInput{
		StartTime: aws.Time(start),
		EndTime:   aws.Time(end),
		ScanBy:    cwTypes.ScanByTimestampAscending,
		MetricDataQueries: []cwTypes.MetricDataQuery{{
			Id: aws.String("m1"),
			MetricStat: &cwTypes.MetricStat{
				Metric: &cwTypes.Metric{
					Namespace:  aws.String("AWS/Logs"),
					MetricName: aws.String(metricName),
					Dimensions: []cwTypes.Dimension{
						{Name: aws.String("LogGroupName"), Value: aws.String(logGroupName)},
					},
				},
				Period: aws.Int32(metricPeriodSeconds),
				Stat:   aws.String(stat),
			},
			ReturnData: aws.Bool(true),
		}},
	}
}

func (r *AWSRepositoryImpl) getMetricValues(ctx context.Context, client *cloudwatch.Client, metricName, stat, logGroupName string, start, end time.Time) ([]float64, error) {
	input := metricDataInput(metricName, stat, logGroupName, start, end)

	var values []float64
	p := cloudwatch.NewGetMetricDataPaginator(client, input)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("error getting %s for log group %s: %w", metricName, logGroupName, err)
		}
		for _, res := range page.MetricDataResults {
			values = append(values, res.Values...)
		}
	}
	return values, nil
}

// GetActualCloudWatchSpend retorna o custo faturado do serviço AmazonCloudWatch
// na janela, via Cost Explorer, para comparação com a estimativa.
func (r *AWSRepositoryImpl) GetActualCloudWatchSpend(ctx context.Context, target entity.Target, start, end time.Time) (float64, error) {
	client, err := r.getServiceClient(ctx, target, "", "costexplorer")
	if err != nil {
		return 0, err
	}
	ceClient := client.(*costexplorer.Client)

	input := &costexplorer.GetCostAndUsageInput{
		TimePeriod: &ceTypes.DateInterval{
			Start: aws.String(start.Format("2006-01-02")),
			End:   aws.String(end.Format("2006-01-02")),
		},
		Granularity: ceTypes.GranularityMonthly,
		Metrics:     []string{"UnblendedCost"},
		Filter: &ceTypes.Expression{
			Dimensions: &ceTypes.DimensionValues{
				Key:    "SERVICE",
				Values: []string{"AmazonCloudWatch"},
			},
		},
	}

	result, err := ceClient.GetCostAndUsage(ctx, input)
	if err != nil {
		return 0, fmt.Errorf("error getting actual CloudWatch spend: %w", err)
	}

	var total float64
	for _, period := range result.ResultsByTime {
		if val, ok := period.Total["UnblendedCost"]; ok && val.Amount != nil {
			cost, _ := strconv.ParseFloat(*val.Amount, 64)
			total += cost
		}
	}
	return total, nil
}

// EnsureMonitorRole cria (ou atualiza) o CloudWatchCostMonitorRole em uma
// conta da Organization. Na conta de management o trust aponta para o caller;
// nas contas membro, para o root da conta de management, entrando via
// OrganizationAccountAccessRole.
func (r *AWSRepositoryImpl) EnsureMonitorRole(ctx context.Context, profile string, account entity.OrganizationAccount, managementAccountID string) error {
	mgmtCfg, err := r.getAWSConfig(ctx, profile)
	if err != nil {
		return err
	}

	var iamClient *iam.Client
	var principalARN string

	if account.ID == managementAccountID {
		stsClient := sts.NewFromConfig(mgmtCfg)
		identity, err := stsClient.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
		if err != nil {
			return fmt.Errorf("error getting caller identity: %w", err)
		}
		principalARN = aws.ToString(identity.Arn)
		iamClient = iam.NewFromConfig(mgmtCfg)
	} else {
		roleArn := fmt.Sprintf("arn:aws:iam::%s:role/OrganizationAccountAccessRole", account.ID)
		creds, err := r.assumeRole(ctx, mgmtCfg, roleArn, "CostMonitorSetup")
		if err != nil {
			return fmt.Errorf("error assuming OrganizationAccountAccessRole in account %s: %w", account.ID, err)
		}
		memberCfg := mgmtCfg.Copy()
		memberCfg.Credentials = credentials.NewStaticCredentialsProvider(
			creds.AccessKeyID, creds.SecretAccessKey, creds.SessionToken)
		principalARN = fmt.Sprintf("arn:aws:iam::%s:root", managementAccountID)
		iamClient = iam.NewFromConfig(memberCfg)
	}

	trustPolicy, err := trustPolicyDocument(principalARN)
	if err != nil {
		return err
	}

	_, err = iamClient.CreateRole(ctx, &iam.CreateRoleInput{
		RoleName:                 aws.String(RoleName),
		AssumeRolePolicyDocument: aws.String(trustPolicy),
		Description:              aws.String("Role for cross-account CloudWatch Logs cost monitoring"),
	})
	if err != nil {
		var alreadyExists *iamTypes.EntityAlreadyExistsException
		if !errors.As(err, &alreadyExists) {
			return fmt.Errorf("error creating role in account %s: %w", account.ID, err)
		}
		// Role já existe: só atualiza o trust policy.
		_, err = iamClient.UpdateAssumeRolePolicy(ctx, &iam.UpdateAssumeRolePolicyInput{
			RoleName:       aws.String(RoleName),
			PolicyDocument: aws.String(trustPolicy),
		})
		if err != nil {
			return fmt.Errorf("error updating trust policy in account %s: %w", account.ID, err)
		}
	}

	monitorPolicy, err := monitorPolicyDocument()
	if err != nil {
		return err
	}

	_, err = iamClient.PutRolePolicy(ctx, &iam.PutRolePolicyInput{
		RoleName:       aws.String(RoleName),
		PolicyName:     aws.String(monitorPolicyName),
		PolicyDocument: aws.String(monitorPolicy),
	})
	if err != nil {
		return fmt.Errorf("error attaching policy in account %s: %w", account.ID, err)
	}

	return nil
}
