package runner_test

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zhangyu1818/lighthouse-ci/internal/lighthouse"
	"github.com/zhangyu1818/lighthouse-ci/internal/results"
	"github.com/zhangyu1818/lighthouse-ci/internal/runner"
)

const (
	serviceSitesDocumentConstant      = `{"us": ["https://example.com/pricing"]}`
	serviceAuditedPageURLConstant     = "https://example.com/pricing"
	serviceRegionNameConstant         = "us"
	firstInvocationTimestampConstant  = "2026-08-23_12-00-00"
	secondInvocationTimestampConstant = "2026-08-24_12-00-00"
	scoredReportTemplateConstant      = `{"categories":{"performance":{"title":"Performance","score":%.2f}}}`
	scriptedArtifactConstant          = "<html></html>"
)

// scriptedAuditEngine returns a fixed performance score for every audit and
// records which pages it was asked to audit.
type scriptedAuditEngine struct {
	performanceScore float64
	auditedPages     []string
}

func (engine *scriptedAuditEngine) Run(executionContext context.Context, pageURL string, device lighthouse.DeviceProfile) (lighthouse.Outcome, error) {
	engine.auditedPages = append(engine.auditedPages, pageURL)

	reportJSON := []byte(fmt.Sprintf(scoredReportTemplateConstant, engine.performanceScore))
	var parsedReport lighthouse.Report
	if parseError := json.Unmarshal(reportJSON, &parsedReport); parseError != nil {
		return lighthouse.Outcome{}, parseError
	}

	return lighthouse.Outcome{
		Report:       parsedReport,
		ReportJSON:   reportJSON,
		ArtifactHTML: []byte(scriptedArtifactConstant),
	}, nil
}

func writeSitesFile(testInstance *testing.T, sitesDocument string) string {
	testInstance.Helper()

	sitesFilePath := filepath.Join(testInstance.TempDir(), "sites.json")
	require.NoError(testInstance, os.WriteFile(sitesFilePath, []byte(sitesDocument), 0o600))
	return sitesFilePath
}

func buildRunOptions(sitesFilePath string, outputDirectory string, timestamp string) runner.RunOptions {
	return runner.RunOptions{
		SitesFile:       sitesFilePath,
		OutputDirectory: outputDirectory,
		DeviceProfiles:  lighthouse.DefaultDeviceProfiles(),
		Timestamp:       timestamp,
	}
}

func TestServiceFirstInvocationWritesSnapshotWithoutSummary(testInstance *testing.T) {
	sitesFilePath := writeSitesFile(testInstance, serviceSitesDocumentConstant)
	outputDirectory := testInstance.TempDir()
	auditEngine := &scriptedAuditEngine{performanceScore: 0.80}

	service, serviceError := runner.NewService(nil, auditEngine, nil)
	require.NoError(testInstance, serviceError)

	runError := service.Run(context.Background(), buildRunOptions(sitesFilePath, outputDirectory, firstInvocationTimestampConstant))
	require.NoError(testInstance, runError)

	require.Len(testInstance, auditEngine.auditedPages, len(lighthouse.DefaultDeviceProfiles()))

	resultStore := results.NewStore(outputDirectory)
	for _, deviceProfile := range lighthouse.DefaultDeviceProfiles() {
		reportPath := resultStore.ReportPath(serviceRegionNameConstant, firstInvocationTimestampConstant, deviceProfile, serviceAuditedPageURLConstant)
		require.FileExists(testInstance, reportPath)
	}

	require.NoFileExists(testInstance, resultStore.SummaryPath(firstInvocationTimestampConstant))
}

func TestServiceSecondInvocationWritesSummaryWithDeltas(testInstance *testing.T) {
	sitesFilePath := writeSitesFile(testInstance, serviceSitesDocumentConstant)
	outputDirectory := testInstance.TempDir()

	firstEngine := &scriptedAuditEngine{performanceScore: 0.80}
	firstService, firstServiceError := runner.NewService(nil, firstEngine, nil)
	require.NoError(testInstance, firstServiceError)
	require.NoError(testInstance, firstService.Run(context.Background(), buildRunOptions(sitesFilePath, outputDirectory, firstInvocationTimestampConstant)))

	secondEngine := &scriptedAuditEngine{performanceScore: 0.85}
	secondService, secondServiceError := runner.NewService(nil, secondEngine, nil)
	require.NoError(testInstance, secondServiceError)
	require.NoError(testInstance, secondService.Run(context.Background(), buildRunOptions(sitesFilePath, outputDirectory, secondInvocationTimestampConstant)))

	resultStore := results.NewStore(outputDirectory)
	summaryPath := resultStore.SummaryPath(secondInvocationTimestampConstant)
	require.FileExists(testInstance, summaryPath)

	summaryContent, readError := os.ReadFile(summaryPath)
	require.NoError(testInstance, readError)

	summaryText := string(summaryContent)
	require.Contains(testInstance, summaryText, "<h2>us</h2>")
	require.Contains(testInstance, summaryText, serviceAuditedPageURLConstant+" (mobile)")
	require.Contains(testInstance, summaryText, serviceAuditedPageURLConstant+" (desktop)")
	require.Contains(testInstance, summaryText, "<td>Performance</td><td>80.00</td><td>85.00</td><td>+5.00</td>")
}

func TestServiceSkipsUnknownRegionsWithoutAuditing(testInstance *testing.T) {
	sitesFilePath := writeSitesFile(testInstance, serviceSitesDocumentConstant)
	auditEngine := &scriptedAuditEngine{performanceScore: 0.80}

	service, serviceError := runner.NewService(nil, auditEngine, nil)
	require.NoError(testInstance, serviceError)

	options := buildRunOptions(sitesFilePath, testInstance.TempDir(), firstInvocationTimestampConstant)
	options.Regions = []string{"zz"}

	require.NoError(testInstance, service.Run(context.Background(), options))
	require.Empty(testInstance, auditEngine.auditedPages)
}

func TestServiceDerivesTimestampFromClock(testInstance *testing.T) {
	sitesFilePath := writeSitesFile(testInstance, serviceSitesDocumentConstant)
	outputDirectory := testInstance.TempDir()
	auditEngine := &scriptedAuditEngine{performanceScore: 0.80}

	clockTime, parseError := time.ParseInLocation(results.TimestampLayout, secondInvocationTimestampConstant, time.Local)
	require.NoError(testInstance, parseError)

	service, serviceError := runner.NewService(nil, auditEngine, fixedClock{current: clockTime})
	require.NoError(testInstance, serviceError)

	options := buildRunOptions(sitesFilePath, outputDirectory, "")
	require.NoError(testInstance, service.Run(context.Background(), options))

	resultStore := results.NewStore(outputDirectory)
	reportPath := resultStore.ReportPath(serviceRegionNameConstant, secondInvocationTimestampConstant, lighthouse.DeviceProfileMobile, serviceAuditedPageURLConstant)
	require.FileExists(testInstance, reportPath)
}

type fixedClock struct {
	current time.Time
}

func (clock fixedClock) Now() time.Time {
	return clock.current
}
