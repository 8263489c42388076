package library

import (
	"math"

	"github.com/go-playground/validator/v10"
)

// newValidator configures struct validation for mutation payloads. Rejections
// happen before any request is issued; an invalid enum value or rating never
// reaches the wire.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Ratings move on a 0-10 half-point scale.
	_ = v.RegisterValidation("halfstep", func(fl validator.FieldLevel) bool {
		doubled := fl.Field().Float() * 2
		return doubled == math.Trunc(doubled)
	})

	return v
}
