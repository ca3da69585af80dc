package domain

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks o and reports every failing field in the error meta.
func (o Order) Validate() error {
	meta := map[string]string{}
	if err := validate.Struct(o); err != nil {
		var ves validator.ValidationErrors
		if !errors.As(err, &ves) {
			return ErrValidation(err.Error())
		}
		for _, fe := range ves {
			meta[fieldPath(fe)] = formatFieldError(fe)
		}
	}
	if totalOverflows(o.Items) {
		meta["items"] = "total amount is out of range"
	}
	if len(meta) > 0 {
		return ErrValidationMeta("invalid order", meta)
	}
	return nil
}

// totalOverflows reports whether any subtotal or the running sum leaves the
// finite float64 range, which JSON cannot encode.
func totalOverflows(items []Item) bool {
	var sum float64
	for _, it := range items {
		sub := it.Subtotal()
		if math.IsInf(sub, 0) || math.IsNaN(sub) {
			return true
		}
		sum += sub
	}
	return math.IsInf(sum, 0) || math.IsNaN(sum)
}

// fieldPath turns "Order.items[0].price" into "items[0].price".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func formatFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "e164":
		return "must be an E.164 phone number"
	case "min":
		return fmt.Sprintf("must contain at least %s entries", fe.Param())
	case "gte":
		return fmt.Sprintf("must be >= %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be > %s", fe.Param())
	default:
		return "is invalid"
	}
}
