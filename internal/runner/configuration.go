package runner

import (
	"strings"

	"github.com/zhangyu1818/lighthouse-ci/internal/lighthouse"
)

const (
	sitesFileConfigurationKeyConstant            = "sites_file"
	outputDirectoryConfigurationKeyConstant      = "output_directory"
	skipPartialSnapshotsConfigurationKeyConstant = "skip_partial_snapshots"
	deviceProfilesConfigurationKeyConstant       = "device_profiles"
	lighthouseBinaryConfigurationKeyConstant     = "lighthouse_binary"
	extraFlagsConfigurationKeyConstant           = "extra_flags"

	configurationKeySeparatorConstant = "."

	defaultSitesFileConstant        = "sites.json"
	defaultOutputDirectoryConstant  = "results"
	defaultLighthouseBinaryConstant = "lighthouse"
)

// CommandConfiguration captures persistent settings for the run command.
type CommandConfiguration struct {
	SitesFile            string   `mapstructure:"sites_file"`
	OutputDirectory      string   `mapstructure:"output_directory"`
	SkipPartialSnapshots bool     `mapstructure:"skip_partial_snapshots"`
	DeviceProfiles       []string `mapstructure:"device_profiles"`
	LighthouseBinary     string   `mapstructure:"lighthouse_binary"`
	ExtraFlags           []string `mapstructure:"extra_flags"`
}

// DefaultConfigurationValues exposes run defaults keyed beneath the provided prefix.
func DefaultConfigurationValues(configurationKeyPrefix string) map[string]any {
	prefixedKey := func(configurationKey string) string {
		if len(configurationKeyPrefix) == 0 {
			return configurationKey
		}
		return configurationKeyPrefix + configurationKeySeparatorConstant + configurationKey
	}

	deviceProfileNames := make([]string, 0, len(lighthouse.DefaultDeviceProfiles()))
	for _, deviceProfile := range lighthouse.DefaultDeviceProfiles() {
		deviceProfileNames = append(deviceProfileNames, string(deviceProfile))
	}

	return map[string]any{
		prefixedKey(sitesFileConfigurationKeyConstant):            defaultSitesFileConstant,
		prefixedKey(outputDirectoryConfigurationKeyConstant):      defaultOutputDirectoryConstant,
		prefixedKey(skipPartialSnapshotsConfigurationKeyConstant): false,
		prefixedKey(deviceProfilesConfigurationKeyConstant):       deviceProfileNames,
		prefixedKey(lighthouseBinaryConfigurationKeyConstant):     defaultLighthouseBinaryConstant,
		prefixedKey(extraFlagsConfigurationKeyConstant):           []string{},
	}
}

// sanitize fills unset values with defaults and normalizes device profile names.
func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	sanitized := configuration
	if len(strings.TrimSpace(sanitized.SitesFile)) == 0 {
		sanitized.SitesFile = defaultSitesFileConstant
	}
	if len(strings.TrimSpace(sanitized.OutputDirectory)) == 0 {
		sanitized.OutputDirectory = defaultOutputDirectoryConstant
	}
	if len(strings.TrimSpace(sanitized.LighthouseBinary)) == 0 {
		sanitized.LighthouseBinary = defaultLighthouseBinaryConstant
	}
	return sanitized
}

// deviceProfiles parses the configured profile names, falling back to the default pair.
func (configuration CommandConfiguration) deviceProfiles() ([]lighthouse.DeviceProfile, error) {
	if len(configuration.DeviceProfiles) == 0 {
		return lighthouse.DefaultDeviceProfiles(), nil
	}

	parsedProfiles := make([]lighthouse.DeviceProfile, 0, len(configuration.DeviceProfiles))
	for _, profileName := range configuration.DeviceProfiles {
		parsedProfile, parseError := lighthouse.ParseDeviceProfile(profileName)
		if parseError != nil {
			return nil, parseError
		}
		parsedProfiles = append(parsedProfiles, parsedProfile)
	}
	return parsedProfiles, nil
}
