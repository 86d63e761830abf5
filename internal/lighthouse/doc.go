// Package lighthouse runs page-quality audits through the Lighthouse CLI.
//
// It exposes Engine as the injectable audit capability, CLIEngine as the
// production implementation that owns one headless Chrome per audit, and
// Report as the parsed category score model preserving the category order of
// the underlying report document.
package lighthouse
