package docs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const (
	readmeFileNameConstant   = "README.md"
	yamlFenceOpeningConstant = "```yaml"
	fenceClosingConstant     = "```"
)

type documentedConfiguration struct {
	Common struct {
		LogLevel  string `yaml:"log_level"`
		LogFormat string `yaml:"log_format"`
	} `yaml:"common"`
	Tools struct {
		Run struct {
			SitesFile            string   `yaml:"sites_file"`
			OutputDirectory      string   `yaml:"output_directory"`
			SkipPartialSnapshots bool     `yaml:"skip_partial_snapshots"`
			DeviceProfiles       []string `yaml:"device_profiles"`
			LighthouseBinary     string   `yaml:"lighthouse_binary"`
			ExtraFlags           []string `yaml:"extra_flags"`
		} `yaml:"run"`
	} `yaml:"tools"`
}

func extractYAMLExample(testInstance *testing.T, documentContent string) string {
	testInstance.Helper()

	openingIndex := strings.Index(documentContent, yamlFenceOpeningConstant)
	require.GreaterOrEqual(testInstance, openingIndex, 0)

	exampleStart := openingIndex + len(yamlFenceOpeningConstant)
	closingOffset := strings.Index(documentContent[exampleStart:], fenceClosingConstant)
	require.GreaterOrEqual(testInstance, closingOffset, 0)

	return documentContent[exampleStart : exampleStart+closingOffset]
}

// The documented configuration example must stay parseable and aligned with
// the shipped defaults.
func TestReadmeConfigurationExampleParses(testInstance *testing.T) {
	readmeContent, readError := os.ReadFile(filepath.Join("..", readmeFileNameConstant))
	require.NoError(testInstance, readError)

	yamlExample := extractYAMLExample(testInstance, string(readmeContent))

	var parsedConfiguration documentedConfiguration
	require.NoError(testInstance, yaml.Unmarshal([]byte(yamlExample), &parsedConfiguration))

	require.Equal(testInstance, "info", parsedConfiguration.Common.LogLevel)
	require.Equal(testInstance, "structured", parsedConfiguration.Common.LogFormat)
	require.Equal(testInstance, "sites.json", parsedConfiguration.Tools.Run.SitesFile)
	require.Equal(testInstance, "results", parsedConfiguration.Tools.Run.OutputDirectory)
	require.False(testInstance, parsedConfiguration.Tools.Run.SkipPartialSnapshots)
	require.Equal(testInstance, []string{"mobile", "desktop"}, parsedConfiguration.Tools.Run.DeviceProfiles)
	require.Equal(testInstance, "lighthouse", parsedConfiguration.Tools.Run.LighthouseBinary)
}
