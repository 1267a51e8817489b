package utils

import (
	"strings"

	"github.com/sirupsen/logrus"
)

var Log = logrus.New()

// SetLogLevel maps a level name onto the shared logger. Unknown names keep
// the current level and return false.
func SetLogLevel(level string) bool {
	// We are not using logrus' trace and panic levels
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		Log.SetLevel(logrus.DebugLevel)
	case "info":
		Log.SetLevel(logrus.InfoLevel)
	case "warning", "warn":
		Log.SetLevel(logrus.WarnLevel)
	case "error":
		Log.SetLevel(logrus.ErrorLevel)
	case "fatal":
		Log.SetLevel(logrus.FatalLevel)
	default:
		return false
	}
	return true
}

// UseJSON switches the shared logger to JSON output for production.
func UseJSON() {
	Log.SetFormatter(&logrus.JSONFormatter{})
}
