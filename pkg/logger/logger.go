package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Log is usable from package load; InitLogger only reconfigures it.
var Log = logrus.New()

// InitLogger configures the shared structured logger. Level comes from
// LOG_LEVEL when set, otherwise info.
func InitLogger() {
	// Output to stdout instead of the default stderr
	Log.Out = os.Stdout

	// Set JSON formatter for structured logging
	Log.SetFormatter(&logrus.JSONFormatter{})

	level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		level = logrus.InfoLevel
	}
	Log.SetLevel(level)
}
