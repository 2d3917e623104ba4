package debug

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logger  = zap.NewNop().Sugar()
	enabled = false
)

// SetOutput sets the debug output destination.
// A nil writer or io.Discard turns logging off.
func SetOutput(w io.Writer) {
	if w == nil || w == io.Discard {
		logger = zap.NewNop().Sugar()
		enabled = false
		return
	}

	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.AddSync(w), zap.DebugLevel)

	logger = zap.New(core).Sugar()
	enabled = true
}

// Log writes a debug message
func Log(format string, args ...interface{}) {
	logger.Debugf(format, args...)
}

// Warn writes a warning
func Warn(format string, args ...interface{}) {
	logger.Warnf(format, args...)
}

// Error writes an error message
func Error(format string, args ...interface{}) {
	logger.Errorf(format, args...)
}

// Enabled returns true if debug logging is enabled
func Enabled() bool {
	return enabled
}

// Sync flushes buffered entries
func Sync() {
	_ = logger.Sync()
}
