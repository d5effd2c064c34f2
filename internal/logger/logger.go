package logger

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// Init builds the application logger at the given level. An unknown level
// falls back to info.
func Init(level string) *logrus.Logger {
	log := logrus.New()

	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		log.Warnf("bad log level %q, using info", level)
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	return log
}
