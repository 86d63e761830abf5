package lighthouse

import (
	"context"

	"github.com/zhangyu1818/lighthouse-ci/internal/browser"
)

// Engine is the audit capability injected into the run orchestrator.
type Engine interface {
	Run(executionContext context.Context, pageURL string, device DeviceProfile) (Outcome, error)
}

// BrowserSession exposes the subset of a running browser used by the engine.
type BrowserSession interface {
	DebuggingPort() (int, error)
	Close()
}

// BrowserLauncher starts a browser instance for one audit.
type BrowserLauncher func() (BrowserSession, error)

// LaunchHeadlessBrowser adapts the browser package as the default BrowserLauncher.
func LaunchHeadlessBrowser() (BrowserSession, error) {
	return browser.LaunchHeadless()
}
