package recorder

import "go.uber.org/zap"

// logger is the package-wide structured logger for diagnostics that are
// not themselves trace events (currently: argument truncation warnings).
// It defaults to zap's production config; callers that want
// their own sink can replace it with SetLogger.
var logger = mustDefaultLogger()

func mustDefaultLogger() *zap.Logger {
	l, err := zap.NewProduction()
	if err != nil {
		return zap.NewNop()
	}
	return l
}

// SetLogger installs l as the package-wide logger and returns the
// previous one, mirroring SetRenderFunc/SetShowFunc's swap-and-return
// convention.
func SetLogger(l *zap.Logger) *zap.Logger {
	old := logger
	logger = l
	return old
}

func logTruncatedArgs(name, format string) {
	logger.Warn("recorder: argument list truncated",
		zap.String("recorder", name),
		zap.String("format", format),
		zap.Int("max_args", MaxArgs),
	)
}
