package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

var Log = slog.Default()

// Init installs a JSON logger on stdout, teeing into a rotated file when
// logFilePath is set.
func Init(logFilePath, level string) {
	var writer io.Writer = os.Stdout

	if logFilePath != "" {
		rotator := &lumberjack.Logger{
			Filename:   logFilePath,
			MaxSize:    10, // MB
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}
		writer = io.MultiWriter(os.Stdout, rotator)
	}

	Log = slog.New(slog.NewJSONHandler(writer, &slog.HandlerOptions{Level: ParseLevel(level)}))
	slog.SetDefault(Log)
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
