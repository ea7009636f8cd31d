// Package validator provides the struct validator used for configuration
// documents, with the collector's custom rules registered.
package validator

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var tickerRegex = regexp.MustCompile(`^[A-Z0-9][A-Z0-9.\-]{0,11}$`)

// validMarkets lists the listing venues the price provider can address.
var validMarkets = map[string]bool{
	"KRX":    true,
	"KOSPI":  true,
	"KOSDAQ": true,
}

// New returns a validator with all custom validations registered. Field
// names in errors follow the yaml tag so messages match the document.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("ticker", validateTicker)
	_ = v.RegisterValidation("market", validateMarket)
	return v
}

func validateTicker(fl validator.FieldLevel) bool {
	return tickerRegex.MatchString(fl.Field().String())
}

func validateMarket(fl validator.FieldLevel) bool {
	return validMarkets[strings.ToUpper(fl.Field().String())]
}
