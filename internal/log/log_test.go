package log

import (
	"bytes"
	"encoding/json"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stylrsa/seo-pregen/internal/util"
	"testing"
)

func TestInitLogger_Production(t *testing.T) {
	config := util.NewConfig()
	config.Environment.Value = "production"
	config.LogLevel.Value = "info"

	var out bytes.Buffer
	initLogger(config, &out)
	out.Reset()

	logger := AddGlobalField("Job", "seo-pregen")
	logger.Debug("hidden")
	logger.WithField("Url", "/hair-salon/gauteng").Info("generated {Url}")

	var line map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &line))
	assert.Equal(t, "generated {Url}", line["msg"])
	assert.Equal(t, "seo-pregen", line["Job"])
	assert.Equal(t, "/hair-salon/gauteng", line["Url"])
	assert.NotEmpty(t, line["TraceId"])

	assert.Same(t, logger, GetLogger())
}

func TestInitLogger_UnknownLevel(t *testing.T) {
	config := util.NewConfig()
	config.LogLevel.Value = "chatty"

	var out bytes.Buffer
	initLogger(config, &out)

	assert.Equal(t, logrus.DebugLevel, GetLogger().Logger.Level)
	assert.Contains(t, out.String(), "unknown log level")
}
