package lighthouse

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const (
	deviceProfileMobileStringConstant  = "mobile"
	deviceProfileDesktopStringConstant = "desktop"

	categoriesFieldNameConstant = "categories"

	unsupportedDeviceProfileTemplateConstant = "unsupported device profile: %s"
	reportNotObjectMessageConstant           = "report document is not a JSON object"
	categoriesNotObjectMessageConstant       = "report categories field is not a JSON object"
	reportTokenErrorTemplateConstant         = "unable to read report document: %w"
	categoryDecodeErrorTemplateConstant      = "unable to decode category %q: %w"
)

// DeviceProfile selects the emulation parameters of one audit run.
type DeviceProfile string

// Supported device profiles.
const (
	DeviceProfileMobile  DeviceProfile = DeviceProfile(deviceProfileMobileStringConstant)
	DeviceProfileDesktop DeviceProfile = DeviceProfile(deviceProfileDesktopStringConstant)
)

// DefaultDeviceProfiles returns the profiles audited when none are configured.
func DefaultDeviceProfiles() []DeviceProfile {
	return []DeviceProfile{DeviceProfileMobile, DeviceProfileDesktop}
}

// ParseDeviceProfile converts free-form configuration text into a DeviceProfile.
func ParseDeviceProfile(rawProfile string) (DeviceProfile, error) {
	normalizedProfile := strings.ToLower(strings.TrimSpace(rawProfile))
	switch DeviceProfile(normalizedProfile) {
	case DeviceProfileMobile:
		return DeviceProfileMobile, nil
	case DeviceProfileDesktop:
		return DeviceProfileDesktop, nil
	default:
		return "", fmt.Errorf(unsupportedDeviceProfileTemplateConstant, rawProfile)
	}
}

// CategoryScore captures one audit category of a report.
//
// Score holds the native 0-1 value; a nil Score marks a category the audit
// engine could not score.
type CategoryScore struct {
	Identifier string
	Title      string
	Score      *float64
}

// Report models the category scores of one audit run for one URL and device.
//
// Categories preserves the order of the source document so downstream
// comparisons iterate categories the way the audit engine emitted them.
type Report struct {
	Categories []CategoryScore
}

// CategoryByIdentifier returns the category with the given identifier when present.
func (report Report) CategoryByIdentifier(identifier string) (CategoryScore, bool) {
	for _, category := range report.Categories {
		if category.Identifier == identifier {
			return category, true
		}
	}
	return CategoryScore{}, false
}

type categoryPayload struct {
	Title string   `json:"title"`
	Score *float64 `json:"score"`
}

// UnmarshalJSON parses a Lighthouse report document, walking the token stream
// so the categories keep their document order.
func (report *Report) UnmarshalJSON(data []byte) error {
	report.Categories = nil

	decoder := json.NewDecoder(bytes.NewReader(data))

	openingToken, openingError := decoder.Token()
	if openingError != nil {
		return fmt.Errorf(reportTokenErrorTemplateConstant, openingError)
	}
	if openingDelimiter, isDelimiter := openingToken.(json.Delim); !isDelimiter || openingDelimiter != '{' {
		return errors.New(reportNotObjectMessageConstant)
	}

	for decoder.More() {
		keyToken, keyError := decoder.Token()
		if keyError != nil {
			return fmt.Errorf(reportTokenErrorTemplateConstant, keyError)
		}
		keyName, _ := keyToken.(string)

		if keyName == categoriesFieldNameConstant {
			if categoriesError := report.parseCategories(decoder); categoriesError != nil {
				return categoriesError
			}
			continue
		}

		var discardedValue json.RawMessage
		if discardError := decoder.Decode(&discardedValue); discardError != nil {
			return fmt.Errorf(reportTokenErrorTemplateConstant, discardError)
		}
	}

	return nil
}

func (report *Report) parseCategories(decoder *json.Decoder) error {
	openingToken, openingError := decoder.Token()
	if openingError != nil {
		return fmt.Errorf(reportTokenErrorTemplateConstant, openingError)
	}
	if openingDelimiter, isDelimiter := openingToken.(json.Delim); !isDelimiter || openingDelimiter != '{' {
		return errors.New(categoriesNotObjectMessageConstant)
	}

	for decoder.More() {
		keyToken, keyError := decoder.Token()
		if keyError != nil {
			return fmt.Errorf(reportTokenErrorTemplateConstant, keyError)
		}
		categoryIdentifier, _ := keyToken.(string)

		var decodedCategory categoryPayload
		if decodeError := decoder.Decode(&decodedCategory); decodeError != nil {
			return fmt.Errorf(categoryDecodeErrorTemplateConstant, categoryIdentifier, decodeError)
		}

		report.Categories = append(report.Categories, CategoryScore{
			Identifier: categoryIdentifier,
			Title:      decodedCategory.Title,
			Score:      decodedCategory.Score,
		})
	}

	if _, closingError := decoder.Token(); closingError != nil {
		return fmt.Errorf(reportTokenErrorTemplateConstant, closingError)
	}

	return nil
}
