// Package snapshot selects the previous audit baseline from a region's
// timestamped snapshot directories.
//
// Snapshots are ordered by the timestamp embedded in the directory name, not
// by filesystem modification time, so metadata churn cannot reorder history.
package snapshot
