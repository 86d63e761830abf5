package runner

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zhangyu1818/lighthouse-ci/internal/execshell"
	"github.com/zhangyu1818/lighthouse-ci/internal/lighthouse"
	"github.com/zhangyu1818/lighthouse-ci/internal/results"
)

const (
	commandNameConstant             = "run"
	commandShortDescriptionConstant = "Audit configured sites and summarize score changes"
	commandLongDescriptionConstant  = "run audits every configured URL per region on each device profile, stores the results as a timestamped snapshot, and writes an HTML summary of score changes against the previous snapshot."

	regionFlagNameConstant  = "region"
	regionFlagUsageConstant = "Region to audit; repeatable. Defaults to every configured region."

	sitesFlagNameConstant  = "sites"
	sitesFlagUsageConstant = "Path to the JSON sites file mapping regions to URLs."

	outputFlagNameConstant  = "output"
	outputFlagUsageConstant = "Directory receiving snapshots and summaries."

	skipPartialFlagNameConstant  = "skip-partial"
	skipPartialFlagUsageConstant = "Walk past snapshots missing a page's report when looking up the baseline."
)

// CommandBuilder assembles the run cobra command with configurable dependencies.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider func() CommandConfiguration
	AuditEngine           lighthouse.Engine
	Clock                 Clock
}

// Build constructs the cobra command executing one audit invocation.
func (builder *CommandBuilder) Build() *cobra.Command {
	command := &cobra.Command{
		Use:   commandNameConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().StringArray(regionFlagNameConstant, nil, regionFlagUsageConstant)
	command.Flags().String(sitesFlagNameConstant, "", sitesFlagUsageConstant)
	command.Flags().String(outputFlagNameConstant, "", outputFlagUsageConstant)
	command.Flags().Bool(skipPartialFlagNameConstant, false, skipPartialFlagUsageConstant)

	return command
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	logger := builder.logger()
	configuration := builder.configuration()

	options, optionsError := builder.resolveOptions(command, configuration)
	if optionsError != nil {
		return optionsError
	}

	auditEngine := builder.AuditEngine
	if auditEngine == nil {
		builtEngine, engineError := buildCLIEngine(logger, configuration)
		if engineError != nil {
			return engineError
		}
		auditEngine = builtEngine
	}

	service, serviceError := NewService(logger, auditEngine, builder.Clock)
	if serviceError != nil {
		return serviceError
	}

	return service.Run(command.Context(), options)
}

func (builder *CommandBuilder) resolveOptions(command *cobra.Command, configuration CommandConfiguration) (RunOptions, error) {
	selectedRegions, _ := command.Flags().GetStringArray(regionFlagNameConstant)

	sitesFilePath, _ := command.Flags().GetString(sitesFlagNameConstant)
	if len(sitesFilePath) == 0 {
		sitesFilePath = configuration.SitesFile
	}

	outputDirectory, _ := command.Flags().GetString(outputFlagNameConstant)
	if len(outputDirectory) == 0 {
		outputDirectory = configuration.OutputDirectory
	}

	skipPartialSnapshots := configuration.SkipPartialSnapshots
	if command.Flags().Changed(skipPartialFlagNameConstant) {
		skipPartialSnapshots, _ = command.Flags().GetBool(skipPartialFlagNameConstant)
	}

	deviceProfiles, profilesError := configuration.deviceProfiles()
	if profilesError != nil {
		return RunOptions{}, profilesError
	}

	clock := builder.Clock
	if clock == nil {
		clock = SystemClock{}
	}

	return RunOptions{
		Regions:              selectedRegions,
		SitesFile:            sitesFilePath,
		OutputDirectory:      outputDirectory,
		SkipPartialSnapshots: skipPartialSnapshots,
		DeviceProfiles:       deviceProfiles,
		Timestamp:            clock.Now().Format(results.TimestampLayout),
	}, nil
}

func (builder *CommandBuilder) logger() *zap.Logger {
	if builder.LoggerProvider != nil {
		if provided := builder.LoggerProvider(); provided != nil {
			return provided
		}
	}
	return zap.NewNop()
}

func (builder *CommandBuilder) configuration() CommandConfiguration {
	if builder.ConfigurationProvider != nil {
		return builder.ConfigurationProvider().sanitize()
	}
	return CommandConfiguration{}.sanitize()
}

func buildCLIEngine(logger *zap.Logger, configuration CommandConfiguration) (lighthouse.Engine, error) {
	commandRunner := execshell.NewOSCommandRunner()
	commandRunner.SetExecutableOverride(execshell.CommandLighthouse, configuration.LighthouseBinary)

	shellExecutor, executorError := execshell.NewShellExecutor(logger, commandRunner)
	if executorError != nil {
		return nil, executorError
	}

	return lighthouse.NewCLIEngine(shellExecutor, nil, logger, configuration.ExtraFlags)
}
