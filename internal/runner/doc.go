// Package runner orchestrates one audit invocation: it audits every
// configured URL per region and device, persists the results as a timestamped
// snapshot, compares them against the previous snapshot, and writes the
// aggregate summary.
package runner
