package configuration

import (
	"fmt"
	"os"
	"regexp"

	"clubify/sources/platform"
	"clubify/sources/tracing"

	"gopkg.in/yaml.v3"
)

// NewYaml reads the configuration from the file at CONFIG_PATH
// (default: config.yaml). ${VAR} and ${VAR:default} placeholders are
// expanded from the environment before parsing.
func NewYaml(log *tracing.Logger) (*Config, error) {
	defer tracing.ProfilePoint(log, "Configuration loaded", "configuration.load")()

	filePath := os.Getenv("CONFIG_PATH")
	if filePath == "" {
		filePath = "config.yaml"
	}

	log.I("reading configuration", "path", filePath)

	content, err := os.ReadFile(filePath)
	if err != nil {
		log.E("failed to read configuration file", tracing.InnerError, err, "path", filePath)
		return nil, fmt.Errorf("failed to read configuration file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal([]byte(expandEnv(string(content))), &config); err != nil {
		log.E("failed to parse configuration file", tracing.InnerError, err, "path", filePath)
		return nil, fmt.Errorf("failed to parse configuration file: %w", err)
	}

	if err := validate(&config); err != nil {
		log.E("configuration is incomplete", tracing.InnerError, err, "path", filePath)
		return nil, err
	}

	return &config, nil
}

func validate(config *Config) error {
	checks := []struct {
		value string
		field string
	}{
		{config.Telegram.BotToken, "telegram.bot_token"},
		{config.Backend.BaseURL, "backend.base_url"},
		{config.Backend.Token, "backend.token"},
		{config.Webhook.InternalToken, "webhook.internal_token"},
	}
	for _, check := range checks {
		if err := platform.ValidateNotEmpty(check.value, check.field); err != nil {
			return err
		}
	}
	return nil
}

var placeholderRe = regexp.MustCompile(`\$\{([a-zA-Z_][a-zA-Z0-9_]*)(?::([^}]*))?\}`)

// expandEnv replaces ${VAR} or ${VAR:default} with environment values.
func expandEnv(content string) string {
	return placeholderRe.ReplaceAllStringFunc(content, func(match string) string {
		matches := placeholderRe.FindStringSubmatch(match)
		key := matches[1]
		defaultValue := ""
		if len(matches) > 2 {
			defaultValue = matches[2]
		}

		value, exists := os.LookupEnv(key)
		if !exists {
			return defaultValue
		}
		return value
	})
}
