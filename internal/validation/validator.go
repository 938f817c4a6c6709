package validation

import (
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"
)

// New returns a configured validator with custom struct-level validation registered.
func New() *validatorv10.Validate {
	v := validatorv10.New()

	// `required` alone accepts whitespace-only strings; checkout identity
	// fields must carry actual content.
	v.RegisterStructValidation(checkoutStructValidation, CheckoutRequest{})

	return v
}

func checkoutStructValidation(sl validatorv10.StructLevel) {
	req := sl.Current().Interface().(CheckoutRequest)

	if strings.TrimSpace(req.FullName) == "" {
		sl.ReportError(req.FullName, "fullName", "FullName", "notblank", "")
	}
	if strings.TrimSpace(req.UserID) == "" {
		sl.ReportError(req.UserID, "userId", "UserID", "notblank", "")
	}
	if s, ok := req.Address.(string); ok && strings.TrimSpace(s) == "" {
		sl.ReportError(req.Address, "address", "Address", "notblank", "")
	}
}
