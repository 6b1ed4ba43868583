package log

import (
	"github.com/google/uuid"
	"github.com/nullseed/logruseq"
	"github.com/sirupsen/logrus"
	"github.com/stylrsa/seo-pregen/internal/util"
	"io"
	"os"
)

var entry *logrus.Entry

type Logger = *logrus.Entry

func InitLogger(config *util.Config) {
	initLogger(config, os.Stdout)
}

func initLogger(config *util.Config, out io.Writer) {
	logger := &logrus.Logger{
		Out:   out,
		Hooks: make(logrus.LevelHooks),
		Level: logrus.DebugLevel,
	}

	if config.Environment.Value == "production" {
		logger.Formatter = &logrus.JSONFormatter{}
	} else {
		logger.Formatter = &logrus.TextFormatter{
			ForceColors:      true,
			FullTimestamp:    true,
			QuoteEmptyFields: true,
		}
	}

	level, err := logrus.ParseLevel(config.LogLevel.Value)
	if err != nil {
		logger.WithField("LogLevel", config.LogLevel.Value).Warn("unknown log level, using debug")
	} else {
		logger.Level = level
	}

	if config.SeqUrl.Value != "" {
		seqHook := logruseq.NewSeqHook(config.SeqUrl.Value, logruseq.OptionAPIKey(config.SeqToken.Value))
		logger.AddHook(seqHook)
	} else {
		logger.Warn("logger running without seq hook")
	}

	u := uuid.New().String()
	entry = logger.WithField("TraceId", u)
}

func AddGlobalField(name string, value interface{}) Logger {
	entry = entry.WithField(name, value)
	return entry
}

// GetLogger returns nil until InitLogger ran.
func GetLogger() Logger {
	return entry
}
