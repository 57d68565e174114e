// Package config provides configuration management for the odds aggregator.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Provider names accepted in configuration.
var knownProviders = map[string]bool{
	"primary_odds": true,
	"sportsdata":   true,
	"scoreboard":   true,
	"arbitrage":    true,
}

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new validator with custom validation functions
func NewValidator() *CustomValidator {
	v := validator.New()

	_ = v.RegisterValidation("environment", validateEnvironment)
	_ = v.RegisterValidation("loglevel", validateLogLevel)
	_ = v.RegisterValidation("provider", validateProvider)

	return &CustomValidator{validator: v}
}

// Validate validates the entire configuration
func Validate(cfg *Config) error {
	cv := NewValidator()
	return cv.Validate(cfg)
}

// Validate validates the configuration using registered validation rules
func (cv *CustomValidator) Validate(cfg *Config) error {
	if err := cv.validator.Struct(cfg); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	return validateCrossField(cfg)
}

// validateCrossField enforces rules spanning multiple config sections.
func validateCrossField(cfg *Config) error {
	enabled := map[string]bool{}
	for _, p := range cfg.Providers {
		if p.Enabled {
			enabled[p.Name] = true
		}
	}

	if len(enabled) == 0 {
		return fmt.Errorf("at least one provider must be enabled")
	}

	for _, sport := range cfg.Sync.Sports {
		hasEnabled := false
		for _, name := range sport.Providers {
			if cfg.ProviderByName(name) == nil {
				return fmt.Errorf("sport %s references unconfigured provider %s", sport.Key, name)
			}
			if enabled[name] {
				hasEnabled = true
			}
		}
		if !hasEnabled {
			return fmt.Errorf("sport %s has no enabled providers", sport.Key)
		}
	}

	return nil
}

func validateEnvironment(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "development", "staging", "production":
		return true
	}
	return false
}

func validateLogLevel(fl validator.FieldLevel) bool {
	switch strings.ToLower(fl.Field().String()) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic":
		return true
	}
	return false
}

func validateProvider(fl validator.FieldLevel) bool {
	return knownProviders[fl.Field().String()]
}

func formatValidationErrors(errs validator.ValidationErrors) error {
	messages := make([]string, 0, len(errs))
	for _, fieldErr := range errs {
		messages = append(messages, fmt.Sprintf("%s failed on '%s'", fieldErr.Namespace(), fieldErr.Tag()))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(messages, "; "))
}
