package snapshot_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zhangyu1818/lighthouse-ci/internal/lighthouse"
	"github.com/zhangyu1818/lighthouse-ci/internal/results"
	"github.com/zhangyu1818/lighthouse-ci/internal/snapshot"
)

const (
	selectorSubtestNameTemplateConstant = "%d_%s"
	selectorRegionNameConstant          = "us"
	selectorPageURLConstant             = "https://example.com/pricing"
	currentRunTimestampConstant         = "2026-08-24_12-00-00"
	previousRunTimestampConstant        = "2026-08-23_12-00-00"
	olderRunTimestampConstant           = "2026-08-22_12-00-00"
	reportDocumentTemplateConstant      = `{"categories":{"performance":{"title":"Performance","score":%s}}}`
	artifactDocumentConstant            = "<html></html>"
)

func saveScoredReport(testInstance *testing.T, store *results.Store, timestamp string, performanceScore string) {
	testInstance.Helper()

	reportDocument := fmt.Sprintf(reportDocumentTemplateConstant, performanceScore)
	_, saveError := store.Save(
		selectorRegionNameConstant,
		timestamp,
		lighthouse.DeviceProfileMobile,
		selectorPageURLConstant,
		[]byte(reportDocument),
		[]byte(artifactDocumentConstant),
	)
	require.NoError(testInstance, saveError)
}

func requirePerformanceScore(testInstance *testing.T, report lighthouse.Report, expectedScore float64) {
	testInstance.Helper()

	performanceCategory, categoryFound := report.CategoryByIdentifier("performance")
	require.True(testInstance, categoryFound)
	require.NotNil(testInstance, performanceCategory.Score)
	require.InDelta(testInstance, expectedScore, *performanceCategory.Score, 0.0001)
}

func TestSelectorFindsImmediatelyPrecedingSnapshot(testInstance *testing.T) {
	store := results.NewStore(testInstance.TempDir())
	saveScoredReport(testInstance, store, olderRunTimestampConstant, "0.70")
	saveScoredReport(testInstance, store, previousRunTimestampConstant, "0.80")
	saveScoredReport(testInstance, store, currentRunTimestampConstant, "0.90")

	selector, selectorError := snapshot.NewSelector(store, false)
	require.NoError(testInstance, selectorError)

	baselineReport, baselineFound, findError := selector.FindPrevious(selectorRegionNameConstant, currentRunTimestampConstant, lighthouse.DeviceProfileMobile, selectorPageURLConstant)
	require.NoError(testInstance, findError)
	require.True(testInstance, baselineFound)
	requirePerformanceScore(testInstance, baselineReport, 0.80)
}

func TestSelectorReportsAbsenceWithoutBaseline(testInstance *testing.T) {
	testCases := []struct {
		name    string
		prepare func(testInstance *testing.T, store *results.Store)
	}{
		{
			name:    "region_directory_missing",
			prepare: func(testInstance *testing.T, store *results.Store) {},
		},
		{
			name: "only_current_snapshot_exists",
			prepare: func(testInstance *testing.T, store *results.Store) {
				saveScoredReport(testInstance, store, currentRunTimestampConstant, "0.90")
			},
		},
		{
			name: "unparsable_directory_names_ignored",
			prepare: func(testInstance *testing.T, store *results.Store) {
				require.NoError(testInstance, os.MkdirAll(filepath.Join(store.RegionDirectory(selectorRegionNameConstant), "latest"), 0o755))
			},
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(selectorSubtestNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			store := results.NewStore(testInstance.TempDir())
			testCase.prepare(testInstance, store)

			selector, selectorError := snapshot.NewSelector(store, false)
			require.NoError(testInstance, selectorError)

			_, baselineFound, findError := selector.FindPrevious(selectorRegionNameConstant, currentRunTimestampConstant, lighthouse.DeviceProfileMobile, selectorPageURLConstant)
			require.NoError(testInstance, findError)
			require.False(testInstance, baselineFound)
		})
	}
}

func TestSelectorPartialSnapshotPolicy(testInstance *testing.T) {
	buildStoreWithPartialPrevious := func(testInstance *testing.T) *results.Store {
		store := results.NewStore(testInstance.TempDir())
		saveScoredReport(testInstance, store, olderRunTimestampConstant, "0.70")
		snapshotDirectory := filepath.Join(store.SnapshotDirectory(selectorRegionNameConstant, previousRunTimestampConstant), string(lighthouse.DeviceProfileMobile))
		require.NoError(testInstance, os.MkdirAll(snapshotDirectory, 0o755))
		return store
	}

	testInstance.Run("default_policy_reports_absence", func(testInstance *testing.T) {
		store := buildStoreWithPartialPrevious(testInstance)

		selector, selectorError := snapshot.NewSelector(store, false)
		require.NoError(testInstance, selectorError)

		_, baselineFound, findError := selector.FindPrevious(selectorRegionNameConstant, currentRunTimestampConstant, lighthouse.DeviceProfileMobile, selectorPageURLConstant)
		require.NoError(testInstance, findError)
		require.False(testInstance, baselineFound)
	})

	testInstance.Run("skip_partial_walks_further_back", func(testInstance *testing.T) {
		store := buildStoreWithPartialPrevious(testInstance)

		selector, selectorError := snapshot.NewSelector(store, true)
		require.NoError(testInstance, selectorError)

		baselineReport, baselineFound, findError := selector.FindPrevious(selectorRegionNameConstant, currentRunTimestampConstant, lighthouse.DeviceProfileMobile, selectorPageURLConstant)
		require.NoError(testInstance, findError)
		require.True(testInstance, baselineFound)
		requirePerformanceScore(testInstance, baselineReport, 0.70)
	})
}

func TestSelectorOrdersByDirectoryTimestampNotModificationTime(testInstance *testing.T) {
	store := results.NewStore(testInstance.TempDir())
	saveScoredReport(testInstance, store, olderRunTimestampConstant, "0.70")
	saveScoredReport(testInstance, store, previousRunTimestampConstant, "0.80")

	// Push the older snapshot's modification time past everything else.
	futureModificationTime := time.Now().Add(48 * time.Hour)
	olderSnapshotDirectory := store.SnapshotDirectory(selectorRegionNameConstant, olderRunTimestampConstant)
	require.NoError(testInstance, os.Chtimes(olderSnapshotDirectory, futureModificationTime, futureModificationTime))

	selector, selectorError := snapshot.NewSelector(store, false)
	require.NoError(testInstance, selectorError)

	baselineReport, baselineFound, findError := selector.FindPrevious(selectorRegionNameConstant, currentRunTimestampConstant, lighthouse.DeviceProfileMobile, selectorPageURLConstant)
	require.NoError(testInstance, findError)
	require.True(testInstance, baselineFound)
	requirePerformanceScore(testInstance, baselineReport, 0.80)
}

func TestSelectorRejectsNilStore(testInstance *testing.T) {
	_, selectorError := snapshot.NewSelector(nil, false)
	require.Error(testInstance, selectorError)
}
