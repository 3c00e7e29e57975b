package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// RegisterCustomValidators registers multiplex-specific validation
// rules. Must be called before validating Config.
func RegisterCustomValidators(v *validator.Validate) error {
	// tls_version: validates "TLSv1.2" or "TLSv1.3"
	if err := v.RegisterValidation("tls_version", validateTLSVersion); err != nil {
		return fmt.Errorf("failed to register tls_version validator: %w", err)
	}
	return nil
}

// validateTLSVersion validates a TLS version string field.
func validateTLSVersion(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "", "TLSv1.2", "TLSv1.3":
		return true
	default:
		return false
	}
}

// Validate validates the Config using struct tags and custom
// cross-field rules. Returns an error if validation fails, with
// actionable error messages.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())

	if err := RegisterCustomValidators(v); err != nil {
		return err
	}

	if err := v.Struct(c); err != nil {
		return formatValidationErrors(err)
	}

	if err := c.validateTLSMode(); err != nil {
		return err
	}

	return nil
}

// validateTLSMode ensures the TLS transport options are coherent:
// key and cert must be specified together, and pfx is an alternative
// to, not a companion of, key/cert.
func (c *Config) validateTLSMode() error {
	s := c.Server
	hasKey := s.Key != ""
	hasCert := s.Cert != ""
	hasPfx := s.Pfx != ""

	if hasKey != hasCert {
		return errors.New("server: key and cert must be specified together")
	}
	if hasPfx && (hasKey || hasCert) {
		return errors.New("server: specify pfx OR key/cert, not both")
	}

	if s.MinVersion != "" && s.MaxVersion != "" && versionOrdinal(s.MinVersion) > versionOrdinal(s.MaxVersion) {
		return errors.New("server: minVersion must not be greater than maxVersion")
	}

	return nil
}

func versionOrdinal(v string) int {
	switch v {
	case "TLSv1.2":
		return 2
	case "TLSv1.3":
		return 3
	default:
		return 0
	}
}

// formatValidationErrors converts validator.ValidationErrors to
// user-friendly messages.
func formatValidationErrors(err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		var messages []string
		for _, e := range validationErrors {
			messages = append(messages, formatSingleValidationError(e))
		}
		return errors.New(strings.Join(messages, "; "))
	}
	return err
}

// formatSingleValidationError creates a user-friendly message for a
// single validation error.
func formatSingleValidationError(e validator.FieldError) string {
	field := e.Namespace()
	tag := e.Tag()

	switch tag {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "hostname_port":
		return fmt.Sprintf("%s must be a valid host:port", field)
	case "tls_version":
		return fmt.Sprintf("%s must be 'TLSv1.2' or 'TLSv1.3'", field)
	default:
		return fmt.Sprintf("%s failed validation: %s", field, tag)
	}
}
