// Package summary renders the aggregate score-difference document of one
// invocation as a standalone HTML page.
package summary
