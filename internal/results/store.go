package results

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/zhangyu1818/lighthouse-ci/internal/lighthouse"
)

const (
	// TimestampLayout names snapshot directories and summary documents with
	// second resolution in local time.
	TimestampLayout = "2006-01-02_15-04-05"

	// ReportFileExtension is the suffix of stored structured reports.
	ReportFileExtension = ".json"

	// ArtifactFileExtension is the suffix of stored rendered artifacts.
	ArtifactFileExtension = ".html"

	summaryDirectoryNameConstant    = "summary"
	summaryFileNameTemplateConstant = "summary-%s.html"

	httpSchemePrefixConstant      = "http://"
	httpsSchemePrefixConstant     = "https://"
	pathSeparatorConstant         = "/"
	filenameSafeSeparatorConstant = "_"

	storageFailureMessageConstant    = "storage failure"
	reportNotFoundMessageConstant    = "report not found"
	storageErrorTemplateConstant     = "%w: %v"
	reportParseErrorTemplateConstant = "%w: unable to parse stored report %s: %v"

	snapshotDirectoryPermissions = 0o755
	storedFilePermissions        = 0o644
)

// Sentinel errors distinguishing recoverable baseline misses from fatal storage failures.
var (
	ErrStorage        = errors.New(storageFailureMessageConstant)
	ErrReportNotFound = errors.New(reportNotFoundMessageConstant)
)

// Store persists audit outputs beneath one results root directory.
type Store struct {
	rootDirectory string
}

// NewStore constructs a Store rooted at the provided results directory.
func NewStore(rootDirectory string) *Store {
	return &Store{rootDirectory: rootDirectory}
}

// RootDirectory returns the results root the store writes beneath.
func (store *Store) RootDirectory() string {
	return store.rootDirectory
}

// RegionDirectory returns the directory holding one region's snapshots.
func (store *Store) RegionDirectory(regionName string) string {
	return filepath.Join(store.rootDirectory, regionName)
}

// SnapshotDirectory returns the directory of one timestamped snapshot.
func (store *Store) SnapshotDirectory(regionName string, timestamp string) string {
	return filepath.Join(store.rootDirectory, regionName, timestamp)
}

// ReportPath returns the stored report location for one URL and device inside a snapshot.
func (store *Store) ReportPath(regionName string, timestamp string, device lighthouse.DeviceProfile, pageURL string) string {
	return filepath.Join(
		store.SnapshotDirectory(regionName, timestamp),
		string(device),
		FileNameForURL(pageURL)+ReportFileExtension,
	)
}

// Save writes the structured report and rendered artifact of one audit.
//
// Directory creation is idempotent; re-saving the same URL, device, and
// timestamp silently overwrites earlier content. The returned path is the
// stored report's location.
func (store *Store) Save(regionName string, timestamp string, device lighthouse.DeviceProfile, pageURL string, reportJSON []byte, artifactHTML []byte) (string, error) {
	deviceDirectory := filepath.Join(store.SnapshotDirectory(regionName, timestamp), string(device))
	if directoryError := os.MkdirAll(deviceDirectory, snapshotDirectoryPermissions); directoryError != nil {
		return "", fmt.Errorf(storageErrorTemplateConstant, ErrStorage, directoryError)
	}

	storedBaseName := FileNameForURL(pageURL)
	reportPath := filepath.Join(deviceDirectory, storedBaseName+ReportFileExtension)
	artifactPath := filepath.Join(deviceDirectory, storedBaseName+ArtifactFileExtension)

	if writeError := os.WriteFile(reportPath, reportJSON, storedFilePermissions); writeError != nil {
		return "", fmt.Errorf(storageErrorTemplateConstant, ErrStorage, writeError)
	}
	if writeError := os.WriteFile(artifactPath, artifactHTML, storedFilePermissions); writeError != nil {
		return "", fmt.Errorf(storageErrorTemplateConstant, ErrStorage, writeError)
	}

	return reportPath, nil
}

// LoadReport reads a stored report back into its parsed representation.
//
// A missing file maps to ErrReportNotFound so callers can treat it as "no
// baseline"; every other filesystem or parse failure is a fatal storage error.
func (store *Store) LoadReport(reportPath string) (lighthouse.Report, error) {
	reportContent, readError := os.ReadFile(reportPath)
	if readError != nil {
		if errors.Is(readError, fs.ErrNotExist) {
			return lighthouse.Report{}, fmt.Errorf(storageErrorTemplateConstant, ErrReportNotFound, readError)
		}
		return lighthouse.Report{}, fmt.Errorf(storageErrorTemplateConstant, ErrStorage, readError)
	}

	var storedReport lighthouse.Report
	if parseError := json.Unmarshal(reportContent, &storedReport); parseError != nil {
		return lighthouse.Report{}, fmt.Errorf(reportParseErrorTemplateConstant, ErrStorage, reportPath, parseError)
	}

	return storedReport, nil
}

// SummaryPath returns the aggregate summary document location for one invocation timestamp.
func (store *Store) SummaryPath(timestamp string) string {
	return filepath.Join(store.rootDirectory, summaryDirectoryNameConstant, fmt.Sprintf(summaryFileNameTemplateConstant, timestamp))
}

// WriteSummary stores the aggregate summary document and returns its path.
func (store *Store) WriteSummary(timestamp string, summaryDocument []byte) (string, error) {
	summaryDirectory := filepath.Join(store.rootDirectory, summaryDirectoryNameConstant)
	if directoryError := os.MkdirAll(summaryDirectory, snapshotDirectoryPermissions); directoryError != nil {
		return "", fmt.Errorf(storageErrorTemplateConstant, ErrStorage, directoryError)
	}

	summaryPath := store.SummaryPath(timestamp)
	if writeError := os.WriteFile(summaryPath, summaryDocument, storedFilePermissions); writeError != nil {
		return "", fmt.Errorf(storageErrorTemplateConstant, ErrStorage, writeError)
	}

	return summaryPath, nil
}

// FileNameForURL derives the stored base name of one audited URL.
//
// The scheme is stripped and every path separator becomes an underscore, so
// http and https variants of one page share a single stored name.
func FileNameForURL(pageURL string) string {
	schemelessURL := strings.TrimPrefix(pageURL, httpsSchemePrefixConstant)
	schemelessURL = strings.TrimPrefix(schemelessURL, httpSchemePrefixConstant)
	return strings.ReplaceAll(schemelessURL, pathSeparatorConstant, filenameSafeSeparatorConstant)
}
