package compare

import (
	"sort"

	"github.com/zhangyu1818/lighthouse-ci/internal/lighthouse"
)

// Score values arrive from reports on a 0..1 scale; differences are presented
// on the conventional 0..100 scale.
const scoreScaleFactorConstant = 100.0

// ScoreDifference captures one category's movement between two runs.
type ScoreDifference struct {
	CategoryIdentifier string
	CategoryTitle      string
	PreviousScore      float64
	CurrentScore       float64
	Delta              float64
}

// PageComparison holds every category difference of one URL on one device.
type PageComparison struct {
	PageURL     string
	Device      lighthouse.DeviceProfile
	Differences []ScoreDifference
}

// Diff compares a baseline report against the current report.
//
// Differences follow the current report's category order. A category absent
// from the baseline, or carrying a null score on either side, contributes a
// zero for the missing value rather than being dropped.
func Diff(baselineReport lighthouse.Report, currentReport lighthouse.Report) []ScoreDifference {
	differences := make([]ScoreDifference, 0, len(currentReport.Categories))
	for _, currentCategory := range currentReport.Categories {
		previousScore := 0.0
		if baselineCategory, baselineFound := baselineReport.CategoryByIdentifier(currentCategory.Identifier); baselineFound && baselineCategory.Score != nil {
			previousScore = *baselineCategory.Score * scoreScaleFactorConstant
		}

		currentScore := 0.0
		if currentCategory.Score != nil {
			currentScore = *currentCategory.Score * scoreScaleFactorConstant
		}

		differences = append(differences, ScoreDifference{
			CategoryIdentifier: currentCategory.Identifier,
			CategoryTitle:      currentCategory.Title,
			PreviousScore:      previousScore,
			CurrentScore:       currentScore,
			Delta:              currentScore - previousScore,
		})
	}
	return differences
}

// RunSet aggregates the comparisons of one invocation, grouped by region.
type RunSet struct {
	comparisonsByRegion map[string][]PageComparison
}

// NewRunSet constructs an empty aggregate.
func NewRunSet() *RunSet {
	return &RunSet{comparisonsByRegion: map[string][]PageComparison{}}
}

// Add records one page comparison under its region, preserving insertion order.
func (runSet *RunSet) Add(regionName string, comparison PageComparison) {
	runSet.comparisonsByRegion[regionName] = append(runSet.comparisonsByRegion[regionName], comparison)
}

// Empty reports whether no comparison was recorded.
func (runSet *RunSet) Empty() bool {
	return len(runSet.comparisonsByRegion) == 0
}

// RegionNames returns the recorded regions in sorted order.
func (runSet *RunSet) RegionNames() []string {
	regionNames := make([]string, 0, len(runSet.comparisonsByRegion))
	for regionName := range runSet.comparisonsByRegion {
		regionNames = append(regionNames, regionName)
	}
	sort.Strings(regionNames)
	return regionNames
}

// Comparisons returns the recorded comparisons of one region in insertion order.
func (runSet *RunSet) Comparisons(regionName string) []PageComparison {
	return runSet.comparisonsByRegion[regionName]
}
