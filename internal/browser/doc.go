// Package browser manages headless Chrome lifecycle for audit runs.
//
// Each audit owns one Chrome process: LaunchHeadless starts an instance via
// the go-rod launcher, DebuggingPort exposes the remote debugging port the
// audit engine attaches to, and Close tears the process down before the next
// audit acquires its own instance.
package browser
