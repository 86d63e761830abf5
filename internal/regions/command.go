package regions

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	commandNameConstant             = "regions"
	commandShortDescriptionConstant = "List configured regions and their audited URLs"
	commandLongDescriptionConstant  = "regions prints every region of the sites catalog together with the URLs audited for it."

	sitesFlagNameConstant  = "sites"
	sitesFlagUsageConstant = "Path to the JSON sites file mapping regions to URLs."

	regionLineTemplateConstant = "%s (%d URLs)\n"
	urlLineTemplateConstant    = "  %s\n"
)

// LoggerProvider supplies a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// CommandConfiguration captures persistent settings for the regions command.
type CommandConfiguration struct {
	SitesFile string `mapstructure:"sites_file"`
}

// CommandBuilder assembles the regions cobra command with configurable dependencies.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider func() CommandConfiguration
}

// Build constructs the cobra command listing the sites catalog.
func (builder *CommandBuilder) Build() *cobra.Command {
	command := &cobra.Command{
		Use:   commandNameConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().String(sitesFlagNameConstant, "", sitesFlagUsageConstant)

	return command
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	sitesFilePath := builder.resolveSitesFilePath(command)

	catalog, loadError := LoadSiteCatalog(sitesFilePath)
	if loadError != nil {
		return loadError
	}

	for _, regionName := range catalog.RegionNames() {
		regionURLs := catalog.URLs(regionName)
		fmt.Fprintf(command.OutOrStdout(), regionLineTemplateConstant, regionName, len(regionURLs))
		for _, regionURL := range regionURLs {
			fmt.Fprintf(command.OutOrStdout(), urlLineTemplateConstant, regionURL)
		}
	}

	return nil
}

func (builder *CommandBuilder) resolveSitesFilePath(command *cobra.Command) string {
	flaggedPath, _ := command.Flags().GetString(sitesFlagNameConstant)
	if len(flaggedPath) > 0 {
		return flaggedPath
	}
	if builder.ConfigurationProvider != nil {
		return builder.ConfigurationProvider().SitesFile
	}
	return ""
}
