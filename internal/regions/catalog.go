package regions

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

const (
	sitesFileUnreadableMessageConstant   = "sites file unreadable"
	noRegionsConfiguredMessageConstant   = "no regions configured"
	sitesFileReadErrorTemplateConstant   = "%w: %v"
	sitesFileParseErrorTemplateConstant  = "%w: %v"
	sitesFileDecodeErrorTemplateConstant = "%w: %v"
	urlListSeparatorConstant             = ","
)

// Configuration-class sentinel errors for the sites catalog.
var (
	ErrSitesFileUnreadable = errors.New(sitesFileUnreadableMessageConstant)
	ErrNoRegionsConfigured = errors.New(noRegionsConfiguredMessageConstant)
)

// SiteCatalog holds the configured regions and their audited URLs.
type SiteCatalog struct {
	sitesByRegion map[string][]string
}

// LoadSiteCatalog reads a JSON sites file mapping region codes to URL lists.
//
// The raw document is decoded through mapstructure so a region may also carry
// a single comma-separated URL string. encoding/json provides the initial
// parse because Viper folds map keys to lower case, which would corrupt
// region codes that participate in the on-disk results layout.
func LoadSiteCatalog(sitesFilePath string) (SiteCatalog, error) {
	sitesFileContent, readError := os.ReadFile(sitesFilePath)
	if readError != nil {
		return SiteCatalog{}, fmt.Errorf(sitesFileReadErrorTemplateConstant, ErrSitesFileUnreadable, readError)
	}

	var rawDocument map[string]any
	if parseError := json.Unmarshal(sitesFileContent, &rawDocument); parseError != nil {
		return SiteCatalog{}, fmt.Errorf(sitesFileParseErrorTemplateConstant, ErrSitesFileUnreadable, parseError)
	}

	sitesByRegion := map[string][]string{}
	decoderConfiguration := &mapstructure.DecoderConfig{
		DecodeHook: mapstructure.StringToSliceHookFunc(urlListSeparatorConstant),
		Result:     &sitesByRegion,
	}
	regionDecoder, decoderCreationError := mapstructure.NewDecoder(decoderConfiguration)
	if decoderCreationError != nil {
		return SiteCatalog{}, fmt.Errorf(sitesFileDecodeErrorTemplateConstant, ErrSitesFileUnreadable, decoderCreationError)
	}
	if decodeError := regionDecoder.Decode(rawDocument); decodeError != nil {
		return SiteCatalog{}, fmt.Errorf(sitesFileDecodeErrorTemplateConstant, ErrSitesFileUnreadable, decodeError)
	}

	sanitizedCatalog := sanitizeCatalog(sitesByRegion)
	if len(sanitizedCatalog) == 0 {
		return SiteCatalog{}, ErrNoRegionsConfigured
	}

	return SiteCatalog{sitesByRegion: sanitizedCatalog}, nil
}

func sanitizeCatalog(rawCatalog map[string][]string) map[string][]string {
	sanitized := map[string][]string{}
	for regionName, regionURLs := range rawCatalog {
		trimmedRegionName := strings.TrimSpace(regionName)
		if len(trimmedRegionName) == 0 {
			continue
		}

		sanitizedURLs := make([]string, 0, len(regionURLs))
		for _, regionURL := range regionURLs {
			trimmedURL := strings.TrimSpace(regionURL)
			if len(trimmedURL) == 0 {
				continue
			}
			sanitizedURLs = append(sanitizedURLs, trimmedURL)
		}
		if len(sanitizedURLs) == 0 {
			continue
		}

		sanitized[trimmedRegionName] = sanitizedURLs
	}
	return sanitized
}

// RegionNames returns the configured region codes in sorted order.
func (catalog SiteCatalog) RegionNames() []string {
	regionNames := make([]string, 0, len(catalog.sitesByRegion))
	for regionName := range catalog.sitesByRegion {
		regionNames = append(regionNames, regionName)
	}
	sort.Strings(regionNames)
	return regionNames
}

// URLs returns the configured URLs of one region in their configured order.
func (catalog SiteCatalog) URLs(regionName string) []string {
	configuredURLs := catalog.sitesByRegion[regionName]
	duplicatedURLs := make([]string, len(configuredURLs))
	copy(duplicatedURLs, configuredURLs)
	return duplicatedURLs
}

// Resolve applies a region allow-list and separates unknown region names.
//
// An empty allow-list selects every configured region. Selected regions come
// back sorted; unknown names keep their argument order for logging.
func (catalog SiteCatalog) Resolve(allowList []string) (selectedRegions []string, unknownRegions []string) {
	if len(allowList) == 0 {
		return catalog.RegionNames(), nil
	}

	selectedSet := map[string]struct{}{}
	for _, requestedRegion := range allowList {
		trimmedRegion := strings.TrimSpace(requestedRegion)
		if len(trimmedRegion) == 0 {
			continue
		}
		if _, regionConfigured := catalog.sitesByRegion[trimmedRegion]; !regionConfigured {
			unknownRegions = append(unknownRegions, trimmedRegion)
			continue
		}
		selectedSet[trimmedRegion] = struct{}{}
	}

	for selectedRegion := range selectedSet {
		selectedRegions = append(selectedRegions, selectedRegion)
	}
	sort.Strings(selectedRegions)
	return selectedRegions, unknownRegions
}
