package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const maxRequestTimeout = 5 * time.Minute

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate checks every field and reports all problems at once.
func Validate(c *Config) error {
	var errs ValidationErrors

	if u, err := url.Parse(c.ServiceURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, ValidationError{
			Field:   "service_url",
			Message: fmt.Sprintf("must be an http(s) URL, got %q", c.ServiceURL),
		})
	}

	if c.RequestTimeout <= 0 || c.RequestTimeout > maxRequestTimeout {
		errs = append(errs, ValidationError{
			Field:   "request_timeout",
			Message: fmt.Sprintf("must be between 0 and %s, got %s", maxRequestTimeout, c.RequestTimeout),
		})
	}

	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil || c.LogLevel == "" {
		errs = append(errs, ValidationError{
			Field:   "log_level",
			Message: fmt.Sprintf("unknown level %q", c.LogLevel),
		})
	}

	if strings.TrimSpace(c.DBPath) == "" {
		errs = append(errs, ValidationError{Field: "db_path", Message: "required"})
	}
	if strings.TrimSpace(c.LogFile) == "" {
		errs = append(errs, ValidationError{Field: "log_file", Message: "required"})
	}

	for i, k := range c.CorrectionKeys {
		if strings.TrimSpace(k) == "" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("correction_keys[%d]", i),
				Message: "empty key label",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
