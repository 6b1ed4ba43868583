package util

import (
	"errors"
	"fmt"
	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cast"
	"log"
	"os"
)

type configValue struct {
	envVarName         string
	fallbackEnvVarName string
	required           bool
	numeric            bool
	errorMessage       string
	defaultValue       string
	Value              string
}

// Int returns the value of a numeric setting. Numeric settings are validated
// when the config is loaded.
func (m configValue) Int() int {
	return cast.ToInt(m.Value)
}

type Config struct {
	DbConnectionString configValue
	SeqUrl             configValue
	SeqToken           configValue
	Environment        configValue
	LogLevel           configValue
	BatchSize          configValue
	ParallelLimit      configValue
	MaxRetries         configValue
	CacheTtlHours      configValue
	ProgressEvery      configValue
	FrontendUrl        configValue
}

func NewConfig() *Config {
	const dbConnectionStringName = "DB_CONNECTION_STRING"
	const databaseUrlName = "DATABASE_URL"
	const seqUrlName = "SEQ_URL"
	const seqTokenName = "SEQ_TOKEN"
	const environmentName = "ENVIRONMENT"
	const logLevelName = "LOG_LEVEL"
	const batchSizeName = "SEO_BATCH_SIZE"
	const parallelLimitName = "SEO_PARALLEL_LIMIT"
	const maxRetriesName = "SEO_MAX_RETRIES"
	const cacheTtlHoursName = "SEO_CACHE_TTL_HOURS"
	const progressEveryName = "SEO_PROGRESS_EVERY"
	const frontendUrlName = "FRONTEND_URL"

	return &Config{
		DbConnectionString: configValue{
			envVarName:         dbConnectionStringName,
			fallbackEnvVarName: databaseUrlName,
			required:           true,
			errorMessage:       fmt.Sprintf("make sure that environment variable %s is set and in DSN format", dbConnectionStringName),
		},
		SeqUrl: configValue{
			envVarName: seqUrlName,
		},
		SeqToken: configValue{
			envVarName: seqTokenName,
		},
		Environment: configValue{
			envVarName:   environmentName,
			defaultValue: "development",
		},
		LogLevel: configValue{
			envVarName:   logLevelName,
			defaultValue: "debug",
		},
		BatchSize: configValue{
			envVarName:   batchSizeName,
			numeric:      true,
			defaultValue: "5000",
		},
		ParallelLimit: configValue{
			envVarName:   parallelLimitName,
			numeric:      true,
			defaultValue: "3",
		},
		MaxRetries: configValue{
			envVarName:   maxRetriesName,
			numeric:      true,
			defaultValue: "3",
		},
		CacheTtlHours: configValue{
			envVarName:   cacheTtlHoursName,
			numeric:      true,
			defaultValue: "24",
		},
		ProgressEvery: configValue{
			envVarName:   progressEveryName,
			numeric:      true,
			defaultValue: "1000",
		},
		FrontendUrl: configValue{
			envVarName:   frontendUrlName,
			defaultValue: "https://www.stylrsa.co.za",
		},
	}
}

var config *Config

// GetConfig loads the config once. A missing or malformed setting is a setup
// failure and stops the process.
func GetConfig() *Config {
	if config == nil {
		c, err := Load()
		if err != nil {
			log.Fatal(err)
		}
		config = c
	}

	return config
}

func Load() (*Config, error) {
	config := NewConfig()

	values := []*configValue{
		&config.DbConnectionString,
		&config.SeqUrl,
		&config.SeqToken,
		&config.Environment,
		&config.LogLevel,
		&config.BatchSize,
		&config.ParallelLimit,
		&config.MaxRetries,
		&config.CacheTtlHours,
		&config.ProgressEvery,
		&config.FrontendUrl,
	}

	for _, v := range values {
		if err := populateEnv(v); err != nil {
			return nil, err
		}
	}

	return config, nil
}

func populateEnv(m *configValue) (err error) {
	v := os.Getenv(m.envVarName)
	if v == "" && m.fallbackEnvVarName != "" {
		v = os.Getenv(m.fallbackEnvVarName)
	}

	if v == "" && m.required {
		if m.errorMessage != "" {
			return errors.New(m.errorMessage)
		}

		return fmt.Errorf("environment variable %s is not set", m.envVarName)
	}

	if v == "" {
		v = m.defaultValue
	}

	if m.numeric {
		n, err := cast.ToIntE(v)
		if err != nil {
			return fmt.Errorf("environment variable %s must be a number: %w", m.envVarName, err)
		}
		if n <= 0 {
			return fmt.Errorf("environment variable %s must be greater than zero, got %d", m.envVarName, n)
		}
	}

	m.Value = v
	return nil
}
