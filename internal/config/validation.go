package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Configuration validation failed with %d error(s):\n\n", len(ve)))
	for i, err := range ve {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	sb.WriteString("\nPlease fix the above errors and try again.\n")
	return sb.String()
}

// Validate performs comprehensive configuration validation
func (c *Config) Validate() error {
	var errors ValidationErrors

	errors = append(errors, c.validateApp()...)
	errors = append(errors, c.validateSession()...)
	errors = append(errors, c.validateNATS()...)

	if len(errors) > 0 {
		return errors
	}

	return nil
}

func (c *Config) validateApp() ValidationErrors {
	var errors ValidationErrors

	if c.App.Name == "" {
		errors = append(errors, ValidationError{
			Field:   "app.name",
			Message: "Application name is required",
		})
	}

	if c.App.Environment == "" {
		errors = append(errors, ValidationError{
			Field:   "app.environment",
			Message: "Environment is required (development, staging, or production)",
		})
	} else {
		validEnvs := []string{"development", "staging", "production"}
		valid := false
		for _, env := range validEnvs {
			if c.App.Environment == env {
				valid = true
				break
			}
		}
		if !valid {
			errors = append(errors, ValidationError{
				Field:   "app.environment",
				Message: fmt.Sprintf("Invalid environment '%s'. Must be one of: %v", c.App.Environment, validEnvs),
			})
		}
	}

	if c.App.LogLevel == "" {
		errors = append(errors, ValidationError{
			Field:   "app.log_level",
			Message: "Log level is required (debug, info, warn, error)",
		})
	}

	return errors
}

func (c *Config) validateSession() ValidationErrors {
	var errors ValidationErrors

	if c.Session.Mode != "paper" && c.Session.Mode != "live" {
		errors = append(errors, ValidationError{
			Field:   "session.mode",
			Message: fmt.Sprintf("Invalid mode '%s'. Must be 'paper' or 'live'", c.Session.Mode),
		})
	}

	if c.Session.DataDir == "" {
		errors = append(errors, ValidationError{
			Field:   "session.data_dir",
			Message: "Data directory is required for the tag store",
		})
	}

	// Only one of the authentication fields set means a misconfigured broker
	// entry rather than an optional handshake.
	if (c.Session.AppID == "") != (c.Session.AuthCode == "") {
		errors = append(errors, ValidationError{
			Field:   "session.app_id",
			Message: "app_id and auth_code must be set together",
		})
	}

	if c.Session.Mode == "live" {
		if c.Session.Broker == "" {
			errors = append(errors, ValidationError{
				Field:   "session.broker",
				Message: "Broker id is required in live mode",
			})
		}
		if c.Session.User == "" {
			errors = append(errors, ValidationError{
				Field:   "session.user",
				Message: "User id is required in live mode",
			})
		}
		if c.Session.Password == "" {
			errors = append(errors, ValidationError{
				Field:   "session.password",
				Message: "Password is required in live mode",
			})
		}
		if c.Session.Front == "" {
			errors = append(errors, ValidationError{
				Field:   "session.front",
				Message: "Trading front address is required in live mode",
			})
		}
	}

	return errors
}

func (c *Config) validateNATS() ValidationErrors {
	var errors ValidationErrors

	if c.NATS.Enabled && c.NATS.URL == "" {
		errors = append(errors, ValidationError{
			Field:   "nats.url",
			Message: "NATS URL is required when the event bus is enabled",
		})
	}

	return errors
}
