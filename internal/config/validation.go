package config

import (
	"fmt"
	"net/url"
	"strings"

	"mdb/internal/tokenstore"
)

// ValidationError represents a validation error with context
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (ve ValidationError) Error() string {
	if ve.Field == "" {
		return ve.Message
	}
	return fmt.Sprintf("field '%s': %s", ve.Field, ve.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for multiple validation errors
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}
	if len(ve) == 1 {
		return ve[0].Error()
	}

	var messages []string
	for _, err := range ve {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, "; "))
}

// Add adds a new validation error
func (ve *ValidationErrors) Add(field, message string, value interface{}) {
	*ve = append(*ve, ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	})
}

// ValidateOneOf checks if a value is in a list of allowed values
func ValidateOneOf(field, value string, allowed []string) error {
	for _, allowedValue := range allowed {
		if value == allowedValue {
			return nil
		}
	}
	return ValidationError{
		Field:   field,
		Value:   value,
		Message: fmt.Sprintf("must be one of: %s", strings.Join(allowed, ", ")),
	}
}

// Validate checks every field and returns all problems at once.
func (c Config) Validate() error {
	var errs ValidationErrors

	u, err := url.Parse(c.BackendURL)
	switch {
	case strings.TrimSpace(c.BackendURL) == "":
		errs.Add("backendURL", "is required", c.BackendURL)
	case err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "":
		errs.Add("backendURL", "must be an absolute http or https URL", c.BackendURL)
	}

	if _, err := tokenstore.ParseKind(c.TokenStore); err != nil {
		errs.Add("tokenStore", "must be one of: memory, file, cookie", c.TokenStore)
	}

	if c.CallbackPort < 1 || c.CallbackPort > 65535 {
		errs.Add("callbackPort", "must be between 1 and 65535", c.CallbackPort)
	}
	if c.AuthTimeout <= 0 {
		errs.Add("authTimeout", "must be positive", c.AuthTimeout)
	}
	if c.ForumTimeout <= 0 {
		errs.Add("forumTimeout", "must be positive", c.ForumTimeout)
	}

	if c.LogLevel != "" {
		if err := ValidateOneOf("logLevel", strings.ToLower(c.LogLevel), []string{"debug", "info", "warn", "error"}); err != nil {
			errs = append(errs, err.(ValidationError))
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
