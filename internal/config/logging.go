package config

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

// LogLevels maps the accepted log level names to logrus levels.
var LogLevels = map[string]logrus.Level{
	"trace":    logrus.TraceLevel,
	"debug":    logrus.DebugLevel,
	"info":     logrus.InfoLevel,
	"warn":     logrus.WarnLevel,
	"error":    logrus.ErrorLevel,
	"critical": logrus.FatalLevel,
	"off":      logrus.PanicLevel,
}

// SetupLogging installs the shared text formatter and sets the global level.
func SetupLogging(level string) error {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.0000",
	})
	l, ok := LogLevels[level]
	if !ok {
		return fmt.Errorf("log.level must be one of %v", lo.Keys(LogLevels))
	}
	logrus.SetLevel(l)
	return nil
}
