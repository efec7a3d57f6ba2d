package httpclient

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	debugDirName  = "temp"
	debugFileName = "curl.debug"
)

// DebugFilePath returns the trace file used when debug mode is enabled.
func DebugFilePath(publicRoot string) string {
	return filepath.Join(publicRoot, debugDirName, debugFileName)
}

// traceLogger satisfies resty.Logger and appends transport traces to the debug file.
type traceLogger struct {
	file  *os.File
	sugar *zap.SugaredLogger
}

// openTrace opens the debug file in append mode. Close must be called on every exit path.
func openTrace(publicRoot string) (*traceLogger, error) {
	path := DebugFilePath(publicRoot)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create debug directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open debug file: %w", err)
	}

	encoderCfg := zap.NewDevelopmentEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderCfg),
		zapcore.AddSync(file),
		zapcore.DebugLevel,
	)

	return &traceLogger{
		file:  file,
		sugar: zap.New(core).Sugar(),
	}, nil
}

func (t *traceLogger) Errorf(format string, v ...interface{}) { t.sugar.Errorf(format, v...) }
func (t *traceLogger) Warnf(format string, v ...interface{})  { t.sugar.Warnf(format, v...) }
func (t *traceLogger) Debugf(format string, v ...interface{}) { t.sugar.Debugf(format, v...) }

// Close flushes pending entries and releases the file handle.
func (t *traceLogger) Close() error {
	if t == nil || t.file == nil {
		return nil
	}
	_ = t.sugar.Sync()
	return t.file.Close()
}

// restyLogger routes resty's own warnings into the client logger.
type restyLogger struct {
	log Logger
}

func (r restyLogger) Errorf(format string, v ...interface{}) {
	r.log.ErrorObj("transport error", "transport", fmt.Sprintf(format, v...))
}

func (r restyLogger) Warnf(format string, v ...interface{}) {
	r.log.WarnObj("transport warning", "transport", fmt.Sprintf(format, v...))
}

func (r restyLogger) Debugf(format string, v ...interface{}) {
	r.log.DebugObj("transport debug", "transport", fmt.Sprintf(format, v...))
}
