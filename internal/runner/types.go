package runner

import (
	"time"

	"go.uber.org/zap"

	"github.com/zhangyu1818/lighthouse-ci/internal/lighthouse"
)

// LoggerProvider supplies a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// Clock supplies the invocation time so snapshots can be timestamped deterministically.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns the current local time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// RunOptions carries the resolved settings of one audit invocation.
type RunOptions struct {
	Regions              []string
	SitesFile            string
	OutputDirectory      string
	SkipPartialSnapshots bool
	DeviceProfiles       []lighthouse.DeviceProfile
	Timestamp            string
}
