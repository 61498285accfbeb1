package config

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "spool.dir_mode")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateSpool()...)
	errors = append(errors, c.validateLogging()...)
	errors = append(errors, c.validateTop()...)

	return errors
}

func (c *Config) validateSpool() []ValidationError {
	var errors []ValidationError

	if _, err := strconv.ParseUint(c.Spool.DirMode, 8, 32); err != nil {
		errors = append(errors, ValidationError{
			Field:   "spool.dir_mode",
			Value:   c.Spool.DirMode,
			Message: "must be an octal permission mode such as 0755",
		})
	}

	return errors
}

func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	level := strings.ToLower(c.Logging.Level)
	if !slices.Contains(ValidLogLevels(), level) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	return errors
}

func (c *Config) validateTop() []ValidationError {
	var errors []ValidationError

	if c.Top.RefreshMs <= 0 {
		errors = append(errors, ValidationError{
			Field:   "top.refresh_ms",
			Value:   c.Top.RefreshMs,
			Message: "must be a positive number of milliseconds",
		})
	}

	return errors
}
