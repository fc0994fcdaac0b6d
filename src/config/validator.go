package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Validator validates configuration values using go-playground/validator
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new configuration validator
func NewValidator() *Validator {
	v := validator.New()

	// Register custom validation functions
	v.RegisterValidation("engine_provider", validateEngineProvider)
	v.RegisterValidation("store_driver", validateStoreDriver)
	v.RegisterValidation("log_format", validateLogFormat)

	return &Validator{
		validate: v,
	}
}

// Validate validates a complete configuration
func (v *Validator) Validate(config *Config) error {
	// Set default version if empty
	if config.Version == "" {
		config.Version = "1.0"
	}

	if err := v.validate.Struct(config); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
			e := validationErrors[0]
			return ValidationError{
				Field:   e.Namespace(),
				Message: fmt.Sprintf("%s: validation failed on tag '%s' with value '%v'", e.Namespace(), e.Tag(), e.Value()),
				Value:   e.Value(),
			}
		}
		return err
	}

	if config.Store.Audit && config.Store.Driver != DriverSQLite {
		return ValidationError{
			Field:   "Config.Store.Audit",
			Message: "Config.Store.Audit: audit requires the sqlite driver",
			Value:   config.Store.Driver,
		}
	}

	return nil
}

// validateEngineProvider validates engine provider values
func validateEngineProvider(fl validator.FieldLevel) bool {
	return contains([]string{ProviderOpenRouter, ProviderLocal}, fl.Field().String())
}

// validateStoreDriver validates store driver values
func validateStoreDriver(fl validator.FieldLevel) bool {
	return contains([]string{DriverMemory, DriverSQLite}, fl.Field().String())
}

// validateLogFormat validates log format values
func validateLogFormat(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return contains([]string{"json", "text"}, value)
}

// contains checks if a string is in a slice
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
