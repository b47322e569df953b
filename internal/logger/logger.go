package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

var log *slog.Logger

func Init() {
	log = New(NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func NewJSONHandler(w io.Writer, opts *slog.HandlerOptions) slog.Handler {
	return slog.NewJSONHandler(w, opts)
}

func New(h slog.Handler) *slog.Logger {
	return slog.New(h)
}

func logger() *slog.Logger {
	if log == nil {
		Init()
	}
	return log
}

func Info(msg string, args ...interface{}) {
	logger().Info(msg, args...)
}

func Infof(format string, v ...interface{}) {
	logger().Info(fmt.Sprintf(format, v...))
}

func Error(msg string, args ...interface{}) {
	logger().Error(msg, args...)
}

func Errorf(format string, v ...interface{}) {
	logger().Error(fmt.Sprintf(format, v...))
}

func Debug(msg string, args ...interface{}) {
	logger().Debug(msg, args...)
}

func Debugf(format string, v ...interface{}) {
	logger().Debug(fmt.Sprintf(format, v...))
}

func Fatal(msg string, args ...interface{}) {
	logger().Error(msg, args...)
	os.Exit(1)
}

func Fatalf(format string, v ...interface{}) {
	logger().Error(fmt.Sprintf(format, v...))
	os.Exit(1)
}

func WithError(err error) *slog.Logger {
	if err == nil {
		return logger()
	}
	return logger().With("error", err.Error())
}

func WithFields(fields map[string]interface{}) *slog.Logger {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return logger().With(args...)
}
