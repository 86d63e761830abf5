package snapshot

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"time"

	"github.com/zhangyu1818/lighthouse-ci/internal/lighthouse"
	"github.com/zhangyu1818/lighthouse-ci/internal/results"
)

const (
	storeNotConfiguredMessageConstant     = "result store not configured"
	currentTimestampParseTemplateConstant = "unable to parse current snapshot timestamp %q: %w"
	regionDirectoryListTemplateConstant   = "%w: unable to list region directory %s: %v"
)

// Selector locates previous-run baselines inside a result store.
type Selector struct {
	store                *results.Store
	skipPartialSnapshots bool
}

// NewSelector constructs a Selector over the provided store.
//
// With skipPartialSnapshots enabled the baseline search walks past snapshots
// missing the requested URL/device report; disabled, only the immediately
// preceding snapshot is consulted.
func NewSelector(store *results.Store, skipPartialSnapshots bool) (*Selector, error) {
	if store == nil {
		return nil, errors.New(storeNotConfiguredMessageConstant)
	}
	return &Selector{store: store, skipPartialSnapshots: skipPartialSnapshots}, nil
}

// FindPrevious returns the baseline report for one URL and device, when one exists.
//
// The boolean result reports whether a baseline was found; a missing region
// directory, an empty snapshot history, or a missing report in the candidate
// snapshot all yield absence rather than an error. Filesystem failures other
// than "not found" abort the lookup.
func (selector *Selector) FindPrevious(regionName string, currentTimestamp string, device lighthouse.DeviceProfile, pageURL string) (lighthouse.Report, bool, error) {
	currentSnapshotTime, currentParseError := time.ParseInLocation(results.TimestampLayout, currentTimestamp, time.Local)
	if currentParseError != nil {
		return lighthouse.Report{}, false, fmt.Errorf(currentTimestampParseTemplateConstant, currentTimestamp, currentParseError)
	}

	candidateTimestamps, listError := selector.listEarlierSnapshots(regionName, currentSnapshotTime)
	if listError != nil {
		return lighthouse.Report{}, false, listError
	}

	for _, candidateTimestamp := range candidateTimestamps {
		reportPath := selector.store.ReportPath(regionName, candidateTimestamp, device, pageURL)
		baselineReport, loadError := selector.store.LoadReport(reportPath)
		if loadError == nil {
			return baselineReport, true, nil
		}
		if !errors.Is(loadError, results.ErrReportNotFound) {
			return lighthouse.Report{}, false, loadError
		}
		if !selector.skipPartialSnapshots {
			return lighthouse.Report{}, false, nil
		}
	}

	return lighthouse.Report{}, false, nil
}

// listEarlierSnapshots returns snapshot timestamps strictly older than the
// current snapshot, newest first. Directory names that do not parse with the
// timestamp layout are ignored.
func (selector *Selector) listEarlierSnapshots(regionName string, currentSnapshotTime time.Time) ([]string, error) {
	regionDirectory := selector.store.RegionDirectory(regionName)

	directoryEntries, readError := os.ReadDir(regionDirectory)
	if readError != nil {
		if errors.Is(readError, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf(regionDirectoryListTemplateConstant, results.ErrStorage, regionDirectory, readError)
	}

	type snapshotCandidate struct {
		timestamp    string
		snapshotTime time.Time
	}

	candidates := make([]snapshotCandidate, 0, len(directoryEntries))
	for _, directoryEntry := range directoryEntries {
		if !directoryEntry.IsDir() {
			continue
		}

		snapshotTime, parseError := time.ParseInLocation(results.TimestampLayout, directoryEntry.Name(), time.Local)
		if parseError != nil {
			continue
		}
		if !snapshotTime.Before(currentSnapshotTime) {
			continue
		}

		candidates = append(candidates, snapshotCandidate{timestamp: directoryEntry.Name(), snapshotTime: snapshotTime})
	}

	sort.Slice(candidates, func(firstIndex int, secondIndex int) bool {
		return candidates[firstIndex].snapshotTime.After(candidates[secondIndex].snapshotTime)
	})

	orderedTimestamps := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		orderedTimestamps = append(orderedTimestamps, candidate.timestamp)
	}
	return orderedTimestamps, nil
}
