package models

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// ErrValidation wraps every struct validation failure.
var ErrValidation = errors.New("validation failed")

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
			if d, ok := field.Interface().(decimal.Decimal); ok {
				return d.String()
			}
			return nil
		}, decimal.Decimal{})
		_ = v.RegisterValidation("decimal", validateDecimal)
		_ = v.RegisterValidation("enum", validateEnum)
		v.RegisterStructValidation(validateProductDates, Product{})
		validate = v
	})
	return validate
}

// Validate checks a model against its declared lengths, ranges, enumerations
// and fixed-point bounds.
func Validate(model interface{}) error {
	if err := getValidator().Struct(model); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrValidation, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}

// FitsDecimal reports whether d is non-negative and fits NUMERIC(precision, scale).
func FitsDecimal(d decimal.Decimal, precision, scale int) bool {
	if d.IsNegative() {
		return false
	}
	if d.Exponent() < -int32(scale) && !d.Equal(d.Truncate(int32(scale))) {
		return false
	}
	limit := decimal.New(1, int32(precision-scale))
	return d.LessThan(limit)
}

// validateDecimal implements the "decimal=P_S" tag.
func validateDecimal(fl validator.FieldLevel) bool {
	p, s, ok := strings.Cut(fl.Param(), "_")
	if !ok {
		return false
	}
	precision, err := strconv.Atoi(p)
	if err != nil {
		return false
	}
	scale, err := strconv.Atoi(s)
	if err != nil {
		return false
	}
	d, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return false
	}
	return FitsDecimal(d, precision, scale)
}

func validateEnum(fl validator.FieldLevel) bool {
	e, ok := fl.Field().Interface().(interface{ Valid() bool })
	return ok && e.Valid()
}

func validateProductDates(sl validator.StructLevel) {
	p := sl.Current().Interface().(Product)
	if p.MfgDate != nil && p.ExpDate != nil && p.ExpDate.Before(*p.MfgDate) {
		sl.ReportError(p.ExpDate, "ExpDate", "ExpDate", "after_mfg", "")
	}
}
