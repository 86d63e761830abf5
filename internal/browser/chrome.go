package browser

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/go-rod/rod/lib/launcher"
)

const (
	chromeLaunchErrorTemplateConstant       = "unable to launch headless chrome: %w"
	controlURLParseErrorTemplateConstant    = "unable to parse chrome control url %q: %w"
	controlURLMissingPortTemplateConstant   = "chrome control url %q carries no debugging port"
	debuggingPortParseErrorTemplateConstant = "unable to parse chrome debugging port %q: %w"
)

// ChromeSession represents one running headless Chrome process.
type ChromeSession struct {
	controlURL     string
	chromeLauncher *launcher.Launcher
}

// LaunchHeadless starts a headless Chrome process and returns its session handle.
func LaunchHeadless() (*ChromeSession, error) {
	chromeLauncher := launcher.New().Headless(true)

	controlURL, launchError := chromeLauncher.Launch()
	if launchError != nil {
		chromeLauncher.Cleanup()
		return nil, fmt.Errorf(chromeLaunchErrorTemplateConstant, launchError)
	}

	return &ChromeSession{
		controlURL:     controlURL,
		chromeLauncher: chromeLauncher,
	}, nil
}

// ControlURL returns the DevTools websocket URL of the running Chrome.
func (session *ChromeSession) ControlURL() string {
	return session.controlURL
}

// DebuggingPort extracts the remote debugging port from the control URL.
func (session *ChromeSession) DebuggingPort() (int, error) {
	parsedControlURL, parseError := url.Parse(session.controlURL)
	if parseError != nil {
		return 0, fmt.Errorf(controlURLParseErrorTemplateConstant, session.controlURL, parseError)
	}

	portText := parsedControlURL.Port()
	if len(portText) == 0 {
		return 0, fmt.Errorf(controlURLMissingPortTemplateConstant, session.controlURL)
	}

	portNumber, conversionError := strconv.Atoi(portText)
	if conversionError != nil {
		return 0, fmt.Errorf(debuggingPortParseErrorTemplateConstant, portText, conversionError)
	}

	return portNumber, nil
}

// Close terminates the Chrome process and removes launcher temporary state.
func (session *ChromeSession) Close() {
	if session == nil || session.chromeLauncher == nil {
		return
	}
	session.chromeLauncher.Kill()
	session.chromeLauncher.Cleanup()
	session.chromeLauncher = nil
}
