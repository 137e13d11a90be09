package configuration

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

func (c BrokerConfig) Validate() error {
	validate := validator.New()
	validate.RegisterStructValidation(postgresConnectionValidation, BrokerConfig{})
	if err := validate.Struct(c); err != nil {
		return err
	}
	return errors.WithMessage(c.Logging.Validate(), "invalid logging config")
}

func postgresConnectionValidation(sl validator.StructLevel) {
	c := sl.Current().Interface().(BrokerConfig)
	if c.Store.Type == StoreTypePostgres && len(c.Postgres.Connection) == 0 {
		sl.ReportError(c.Postgres.Connection, "Connection", "Connection", "required_with_postgres", "")
	}
}

// LogValidationErrors logs one line per field that failed validation.
func LogValidationErrors(err error) {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		if err != nil {
			log.Errorf("ConfigError: %s", err)
		}
		return
	}
	for _, err := range validationErrors {
		fieldName := stripPrefix(err.Namespace())
		tag := err.Tag()
		switch tag {
		case "required", "required_with_postgres":
			log.Errorf("ConfigError: Field %s is required but was not found", fieldName)
		default:
			log.Errorf("ConfigError: Field %s has invalid value %v: %s", fieldName, err.Value(), tag)
		}
	}
}

func stripPrefix(s string) string {
	if idx := strings.Index(s, "."); idx != -1 {
		return s[idx+1:]
	}
	return s
}
