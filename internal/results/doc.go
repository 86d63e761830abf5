// Package results persists audit reports and artifacts under the
// results/<region>/<timestamp>/<device> layout and reads stored reports back
// as comparison baselines.
package results
