// internal/config/validator.go
//
// Thin wrapper around go-playground/validator.
//
// Context
// -------
// `internal/config/loader.go` calls `validateStruct` immediately after it
// unmarshals and defaults the merged Koanf tree.  Any validation error
// aborts startup, so the binary never runs with malformed configuration.
//
// Beyond the built-in tags, one cross-field rule applies: Bol.com
// credentials come in pairs.
//
// Notes
// -----
//   • Oxford commas, two spaces after periods.

package config

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

//
// validator instance (package-level singleton)
//

var v = func() *validator.Validate {
	val := validator.New()
	val.RegisterStructValidation(validateBol, Bol{})
	return val
}()

// ErrBolCredentials is returned when only one of client id and secret is set.
var ErrBolCredentials = errors.New("config: bol.client_id and bol.client_secret must be set together")

//
// public API
//

// validateStruct returns the first validation error, or nil on success.
func validateStruct(c *Config) error {
	if err := v.Struct(c); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) && len(ve) > 0 && ve[0].Tag() == "bolpair" {
			return ErrBolCredentials
		}
		return err
	}
	return nil
}

func validateBol(sl validator.StructLevel) {
	b := sl.Current().Interface().(Bol)
	if (b.ClientID == "") != (b.ClientSecret == "") {
		sl.ReportError(b.ClientSecret, "ClientSecret", "client_secret", "bolpair", "")
	}
}
