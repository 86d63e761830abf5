// Package compare computes category score differences between a baseline
// report and the current report and aggregates them per invocation.
package compare
