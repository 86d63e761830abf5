// Package regions loads the sites catalog mapping region codes to audited
// URLs and resolves region allow-lists for one invocation.
package regions
