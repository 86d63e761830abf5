package utils

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	logLevelDebugValueConstant         = "debug"
	logLevelInfoValueConstant          = "info"
	logLevelWarnValueConstant          = "warn"
	logLevelErrorValueConstant         = "error"
	logFormatStructuredValueConstant   = "structured"
	logFormatConsoleValueConstant      = "console"
	structuredZapEncodingNameConstant  = "json"
	consoleZapEncodingNameConstant     = "console"
	unknownLogLevelTemplateConstant    = "unsupported log level: %s"
	unknownLogFormatTemplateConstant   = "unsupported log format: %s"
	loggerBuildFailureTemplateConstant = "unable to build logger: %w"
)

// LogLevel selects the minimum severity a built logger emits.
type LogLevel string

// Log levels accepted by CreateLogger.
const (
	LogLevelDebug LogLevel = LogLevel(logLevelDebugValueConstant)
	LogLevelInfo  LogLevel = LogLevel(logLevelInfoValueConstant)
	LogLevelWarn  LogLevel = LogLevel(logLevelWarnValueConstant)
	LogLevelError LogLevel = LogLevel(logLevelErrorValueConstant)
)

// LogFormat selects the output encoding of a built logger.
type LogFormat string

// Log formats accepted by CreateLogger.
const (
	LogFormatStructured LogFormat = LogFormat(logFormatStructuredValueConstant)
	LogFormatConsole    LogFormat = LogFormat(logFormatConsoleValueConstant)
)

// LoggerFactory builds zap loggers from the configured level and format.
type LoggerFactory struct{}

// NewLoggerFactory constructs a LoggerFactory.
func NewLoggerFactory() *LoggerFactory {
	return &LoggerFactory{}
}

// CreateLogger builds a production zap.Logger at the requested level and
// encoding. Unknown levels and formats are rejected rather than defaulted so
// a configuration typo surfaces at startup.
func (factory *LoggerFactory) CreateLogger(requestedLogLevel LogLevel, requestedLogFormat LogFormat) (*zap.Logger, error) {
	resolvedLevel, levelError := resolveZapLevel(requestedLogLevel)
	if levelError != nil {
		return nil, levelError
	}

	resolvedEncoding, encodingError := resolveZapEncoding(requestedLogFormat)
	if encodingError != nil {
		return nil, encodingError
	}

	loggerConfiguration := zap.NewProductionConfig()
	loggerConfiguration.Level = zap.NewAtomicLevelAt(resolvedLevel)
	loggerConfiguration.Encoding = resolvedEncoding

	builtLogger, buildError := loggerConfiguration.Build()
	if buildError != nil {
		return nil, fmt.Errorf(loggerBuildFailureTemplateConstant, buildError)
	}
	return builtLogger, nil
}

func resolveZapLevel(requestedLogLevel LogLevel) (zapcore.Level, error) {
	switch requestedLogLevel {
	case LogLevelDebug:
		return zapcore.DebugLevel, nil
	case LogLevelInfo:
		return zapcore.InfoLevel, nil
	case LogLevelWarn:
		return zapcore.WarnLevel, nil
	case LogLevelError:
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InvalidLevel, fmt.Errorf(unknownLogLevelTemplateConstant, requestedLogLevel)
	}
}

func resolveZapEncoding(requestedLogFormat LogFormat) (string, error) {
	switch requestedLogFormat {
	case LogFormatStructured:
		return structuredZapEncodingNameConstant, nil
	case LogFormatConsole:
		return consoleZapEncodingNameConstant, nil
	default:
		return "", fmt.Errorf(unknownLogFormatTemplateConstant, requestedLogFormat)
	}
}
