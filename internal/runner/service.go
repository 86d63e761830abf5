package runner

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/zhangyu1818/lighthouse-ci/internal/compare"
	"github.com/zhangyu1818/lighthouse-ci/internal/lighthouse"
	"github.com/zhangyu1818/lighthouse-ci/internal/regions"
	"github.com/zhangyu1818/lighthouse-ci/internal/results"
	"github.com/zhangyu1818/lighthouse-ci/internal/snapshot"
	"github.com/zhangyu1818/lighthouse-ci/internal/summary"
)

const (
	auditEngineNotConfiguredMessageConstant = "audit engine not configured"

	unknownRegionWarningMessageConstant = "Skipping unknown region"
	noRegionsSelectedMessageConstant    = "No configured regions matched the selection"
	auditStartedMessageConstant         = "Auditing page"
	auditStoredMessageConstant          = "Stored audit result"
	baselineMissingMessageConstant      = "No baseline snapshot for page"
	nothingToCompareMessageConstant     = "Nothing to compare; skipping summary"
	summaryWrittenMessageConstant       = "Wrote audit summary"

	regionFieldNameConstant      = "region"
	pageURLFieldNameConstant     = "url"
	deviceFieldNameConstant      = "device"
	timestampFieldNameConstant   = "timestamp"
	reportPathFieldNameConstant  = "report_path"
	summaryPathFieldNameConstant = "summary_path"
)

// Service runs the audit loop for one invocation.
type Service struct {
	logger      *zap.Logger
	auditEngine lighthouse.Engine
	clock       Clock
}

// NewService constructs a Service around the provided audit engine.
func NewService(logger *zap.Logger, auditEngine lighthouse.Engine, clock Clock) (*Service, error) {
	if auditEngine == nil {
		return nil, errors.New(auditEngineNotConfiguredMessageConstant)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &Service{logger: logger, auditEngine: auditEngine, clock: clock}, nil
}

// Run audits every selected region's URLs on every device profile.
//
// Each audit is persisted before its baseline lookup so the current snapshot
// survives later failures. An empty comparison set is a successful run that
// writes no summary. Audit and storage failures abort the invocation.
func (service *Service) Run(executionContext context.Context, options RunOptions) error {
	runTimestamp := options.Timestamp
	if len(runTimestamp) == 0 {
		runTimestamp = service.clock.Now().Format(results.TimestampLayout)
	}

	deviceProfiles := options.DeviceProfiles
	if len(deviceProfiles) == 0 {
		deviceProfiles = lighthouse.DefaultDeviceProfiles()
	}

	siteCatalog, catalogError := regions.LoadSiteCatalog(options.SitesFile)
	if catalogError != nil {
		return catalogError
	}

	selectedRegions, unknownRegions := siteCatalog.Resolve(options.Regions)
	for _, unknownRegion := range unknownRegions {
		service.logger.Warn(unknownRegionWarningMessageConstant, zap.String(regionFieldNameConstant, unknownRegion))
	}
	if len(selectedRegions) == 0 {
		service.logger.Warn(noRegionsSelectedMessageConstant)
		return nil
	}

	resultStore := results.NewStore(options.OutputDirectory)
	baselineSelector, selectorError := snapshot.NewSelector(resultStore, options.SkipPartialSnapshots)
	if selectorError != nil {
		return selectorError
	}

	runSet := compare.NewRunSet()
	for _, regionName := range selectedRegions {
		for _, pageURL := range siteCatalog.URLs(regionName) {
			for _, deviceProfile := range deviceProfiles {
				if auditError := service.auditAndCompare(executionContext, resultStore, baselineSelector, runSet, regionName, runTimestamp, deviceProfile, pageURL); auditError != nil {
					return auditError
				}
			}
		}
	}

	if runSet.Empty() {
		service.logger.Info(nothingToCompareMessageConstant, zap.String(timestampFieldNameConstant, runTimestamp))
		return nil
	}

	summaryRenderer, rendererError := summary.NewRenderer()
	if rendererError != nil {
		return rendererError
	}
	summaryDocument, renderError := summaryRenderer.Render(runTimestamp, runSet)
	if renderError != nil {
		return renderError
	}
	summaryPath, writeError := resultStore.WriteSummary(runTimestamp, summaryDocument)
	if writeError != nil {
		return writeError
	}

	service.logger.Info(summaryWrittenMessageConstant, zap.String(summaryPathFieldNameConstant, summaryPath))
	return nil
}

func (service *Service) auditAndCompare(
	executionContext context.Context,
	resultStore *results.Store,
	baselineSelector *snapshot.Selector,
	runSet *compare.RunSet,
	regionName string,
	runTimestamp string,
	deviceProfile lighthouse.DeviceProfile,
	pageURL string,
) error {
	service.logger.Info(
		auditStartedMessageConstant,
		zap.String(regionFieldNameConstant, regionName),
		zap.String(pageURLFieldNameConstant, pageURL),
		zap.String(deviceFieldNameConstant, string(deviceProfile)),
	)

	auditOutcome, auditError := service.auditEngine.Run(executionContext, pageURL, deviceProfile)
	if auditError != nil {
		return auditError
	}

	reportPath, saveError := resultStore.Save(regionName, runTimestamp, deviceProfile, pageURL, auditOutcome.ReportJSON, auditOutcome.ArtifactHTML)
	if saveError != nil {
		return saveError
	}
	service.logger.Info(auditStoredMessageConstant, zap.String(reportPathFieldNameConstant, reportPath))

	baselineReport, baselineFound, baselineError := baselineSelector.FindPrevious(regionName, runTimestamp, deviceProfile, pageURL)
	if baselineError != nil {
		return baselineError
	}
	if !baselineFound {
		service.logger.Info(
			baselineMissingMessageConstant,
			zap.String(pageURLFieldNameConstant, pageURL),
			zap.String(deviceFieldNameConstant, string(deviceProfile)),
		)
		return nil
	}

	runSet.Add(regionName, compare.PageComparison{
		PageURL:     pageURL,
		Device:      deviceProfile,
		Differences: compare.Diff(baselineReport, auditOutcome.Report),
	})
	return nil
}
