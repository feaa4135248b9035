package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate checks a configuration, returning a descriptive error naming the
// first offending field.
func Validate(cfg *Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrors {
			switch e.Field() {
			case "BotToken":
				return fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable is missing")
			case "APIKey":
				return fmt.Errorf("OPENROUTER_API_KEY environment variable is missing")
			default:
				return fmt.Errorf("invalid configuration: %s failed on '%s' with value '%v'",
					e.Field(), e.Tag(), e.Value())
			}
		}
	}
	return err
}
