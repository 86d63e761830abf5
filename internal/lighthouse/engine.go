package lighthouse

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"

	"github.com/zhangyu1818/lighthouse-ci/internal/execshell"
)

const (
	auditEngineFailureMessageConstant  = "audit engine failure"
	auditEngineFailureTemplateConstant = "%w: %v"

	executorNotConfiguredMessageConstant = "shell executor not configured"

	temporaryDirectoryPatternConstant = "lighthouse-audit-*"
	outputBaseNameConstant            = "audit"
	reportFileSuffixConstant          = ".report.json"
	artifactFileSuffixConstant        = ".report.html"

	portFlagConstant          = "--port"
	outputFlagConstant        = "--output"
	outputJSONValueConstant   = "json"
	outputHTMLValueConstant   = "html"
	outputPathFlagConstant    = "--output-path"
	quietFlagConstant         = "--quiet"
	presetFlagConstant        = "--preset"
	desktopPresetNameConstant = "desktop"

	engineRunStartedMessageConstant   = "audit started"
	engineRunCompletedMessageConstant = "audit completed"
	logFieldPageURLConstant           = "page_url"
	logFieldDeviceProfileConstant     = "device_profile"
	logFieldCategoryCountConstant     = "category_count"
)

// ErrAuditEngine marks fatal audit engine and browser launch failures.
var ErrAuditEngine = errors.New(auditEngineFailureMessageConstant)

// Outcome bundles the products of one audit run.
type Outcome struct {
	Report       Report
	ReportJSON   []byte
	ArtifactHTML []byte
}

// CLIEngine implements Engine by driving the Lighthouse CLI against a
// dedicated headless Chrome instance per audit.
type CLIEngine struct {
	shellExecutor   *execshell.ShellExecutor
	browserLauncher BrowserLauncher
	logger          *zap.Logger
	extraFlags      []string
}

// NewCLIEngine validates dependencies and constructs a CLIEngine.
//
// A nil browserLauncher defaults to LaunchHeadlessBrowser; extraFlags are
// appended verbatim to every Lighthouse CLI invocation.
func NewCLIEngine(shellExecutor *execshell.ShellExecutor, browserLauncher BrowserLauncher, logger *zap.Logger, extraFlags []string) (*CLIEngine, error) {
	if shellExecutor == nil {
		return nil, errors.New(executorNotConfiguredMessageConstant)
	}
	if browserLauncher == nil {
		browserLauncher = LaunchHeadlessBrowser
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	duplicatedFlags := append([]string{}, extraFlags...)

	return &CLIEngine{
		shellExecutor:   shellExecutor,
		browserLauncher: browserLauncher,
		logger:          logger,
		extraFlags:      duplicatedFlags,
	}, nil
}

// Run launches a browser, audits the page for the requested device profile,
// and returns the parsed report with both persisted artifacts.
//
// The browser teardown completes before Run returns, so sequential callers
// never share a Chrome instance.
func (engine *CLIEngine) Run(executionContext context.Context, pageURL string, device DeviceProfile) (Outcome, error) {
	engine.logger.Info(
		engineRunStartedMessageConstant,
		zap.String(logFieldPageURLConstant, pageURL),
		zap.String(logFieldDeviceProfileConstant, string(device)),
	)

	browserSession, launchError := engine.browserLauncher()
	if launchError != nil {
		return Outcome{}, fmt.Errorf(auditEngineFailureTemplateConstant, ErrAuditEngine, launchError)
	}
	defer browserSession.Close()

	debuggingPort, portError := browserSession.DebuggingPort()
	if portError != nil {
		return Outcome{}, fmt.Errorf(auditEngineFailureTemplateConstant, ErrAuditEngine, portError)
	}

	temporaryDirectory, temporaryDirectoryError := os.MkdirTemp("", temporaryDirectoryPatternConstant)
	if temporaryDirectoryError != nil {
		return Outcome{}, fmt.Errorf(auditEngineFailureTemplateConstant, ErrAuditEngine, temporaryDirectoryError)
	}
	defer os.RemoveAll(temporaryDirectory)

	outputBasePath := filepath.Join(temporaryDirectory, outputBaseNameConstant)
	commandArguments := engine.buildCommandArguments(pageURL, device, debuggingPort, outputBasePath)

	_, executionError := engine.shellExecutor.ExecuteLighthouse(executionContext, execshell.CommandDetails{Arguments: commandArguments})
	if executionError != nil {
		return Outcome{}, fmt.Errorf(auditEngineFailureTemplateConstant, ErrAuditEngine, executionError)
	}

	reportJSON, reportReadError := os.ReadFile(outputBasePath + reportFileSuffixConstant)
	if reportReadError != nil {
		return Outcome{}, fmt.Errorf(auditEngineFailureTemplateConstant, ErrAuditEngine, reportReadError)
	}

	artifactHTML, artifactReadError := os.ReadFile(outputBasePath + artifactFileSuffixConstant)
	if artifactReadError != nil {
		return Outcome{}, fmt.Errorf(auditEngineFailureTemplateConstant, ErrAuditEngine, artifactReadError)
	}

	var parsedReport Report
	if parseError := json.Unmarshal(reportJSON, &parsedReport); parseError != nil {
		return Outcome{}, fmt.Errorf(auditEngineFailureTemplateConstant, ErrAuditEngine, parseError)
	}

	engine.logger.Info(
		engineRunCompletedMessageConstant,
		zap.String(logFieldPageURLConstant, pageURL),
		zap.String(logFieldDeviceProfileConstant, string(device)),
		zap.Int(logFieldCategoryCountConstant, len(parsedReport.Categories)),
	)

	return Outcome{
		Report:       parsedReport,
		ReportJSON:   reportJSON,
		ArtifactHTML: artifactHTML,
	}, nil
}

func (engine *CLIEngine) buildCommandArguments(pageURL string, device DeviceProfile, debuggingPort int, outputBasePath string) []string {
	commandArguments := []string{
		pageURL,
		portFlagConstant, strconv.Itoa(debuggingPort),
		outputFlagConstant, outputJSONValueConstant,
		outputFlagConstant, outputHTMLValueConstant,
		outputPathFlagConstant, outputBasePath,
		quietFlagConstant,
	}

	if device == DeviceProfileDesktop {
		commandArguments = append(commandArguments, presetFlagConstant, desktopPresetNameConstant)
	}

	return append(commandArguments, engine.extraFlags...)
}
