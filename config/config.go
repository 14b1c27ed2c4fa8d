package config

import (
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/prognoshealth/proxypost/lambdautils"
)

// Config holds all configuration for the commands.
type Config struct {
	// APIURL is the endpoint enveloped payloads are posted to.
	APIURL string `validate:"omitempty,url"`
	// FunctionName is the lambda function invoked directly instead of posting.
	FunctionName string
	Region       string `validate:"required"`
	LogLevel     string `validate:"required,oneof=trace debug info warn warning error fatal panic"`
	// LogQueueURL enables shipping error logs to sqs when set.
	LogQueueURL string `validate:"omitempty,url"`
	Port        string `validate:"required,numeric"`
	// InLambda is true when running inside the lambda runtime.
	InLambda bool
}

var validate = validator.New()

// Load loads configuration from an optional .env file and the environment.
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("PORT", "8080")

	config := &Config{
		APIURL:       v.GetString("API_URL"),
		FunctionName: v.GetString("FUNCTION_NAME"),
		Region:       v.GetString("AWS_REGION"),
		LogLevel:     strings.ToLower(v.GetString("LOG_LEVEL")),
		LogQueueURL:  v.GetString("LOG_QUEUE_URL"),
		Port:         v.GetString("PORT"),
		InLambda:     os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "",
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}

	return nil
}

// ValidateTarget checks that exactly one of APIURL and FunctionName is set.
func (c *Config) ValidateTarget() error {
	switch {
	case c.APIURL == "" && c.FunctionName == "":
		return errors.New("one of API_URL or FUNCTION_NAME is required")
	case c.APIURL != "" && c.FunctionName != "":
		return errors.New("only one of API_URL or FUNCTION_NAME may be set")
	}

	return nil
}

// NewLogger returns a json logrus logger at the configured level, shipping
// errors to LogQueueURL when it is set.
func (c *Config) NewLogger() (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid log level '%s'", c.LogLevel)
	}

	logger := logrus.New()
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.JSONFormatter{})

	if c.LogQueueURL != "" {
		logger.AddHook(lambdautils.NewSQSHook(c.Region, c.LogQueueURL))
	}

	return logger, nil
}
