package core

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"trailcast/internal/types"
)

// Validator wraps go-playground/validator with the domain tags:
//
//	is_latitude  - float in [-90, 90]
//	is_longitude - float in [-180, 180]
//	is_threshold - float in [0, 100]
//
// Field names in results are the JSON names.
type Validator struct {
	validate *validator.Validate
	logger   *slog.Logger
}

// ValidationError describes one failed constraint.
type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationResult collects every failed constraint of a struct.
type ValidationResult struct {
	Errors []ValidationError `json:"errors"`
}

// IsValid reports whether no constraint failed.
func (r ValidationResult) IsValid() bool {
	return len(r.Errors) == 0
}

// NewValidator creates a Validator with the custom tags registered.
func NewValidator(logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})

	mustRegister(v, "is_latitude", rangeFunc(types.MinLat, types.MaxLat))
	mustRegister(v, "is_longitude", rangeFunc(types.MinLon, types.MaxLon))
	mustRegister(v, "is_threshold", rangeFunc(types.MinThreshold, types.MaxThreshold))

	return &Validator{validate: v, logger: logger}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %q: %v", tag, err))
	}
}

// rangeFunc accepts float fields within [lo, hi]. Non-float fields fail.
func rangeFunc(lo, hi float64) validator.Func {
	return func(fl validator.FieldLevel) bool {
		f := fl.Field()
		switch f.Kind() {
		case reflect.Float32, reflect.Float64:
			x := f.Float()
			return !math.IsNaN(x) && x >= lo && x <= hi
		default:
			return false
		}
	}
}

// Validate runs the struct's validate tags and collects every failure.
func (v *Validator) Validate(s any) ValidationResult {
	err := v.validate.Struct(s)
	if err == nil {
		return ValidationResult{}
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		// InvalidValidationError: a programming error, not bad input.
		v.logger.Error("validation misuse", "error", err, "type", fmt.Sprintf("%T", s))
		return ValidationResult{Errors: []ValidationError{{
			Code:    string(types.ErrCodeInternalUnexpected),
			Message: "request could not be validated",
		}}}
	}

	res := ValidationResult{Errors: make([]ValidationError, 0, len(fieldErrs))}
	for _, fe := range fieldErrs {
		res.Errors = append(res.Errors, ValidationError{
			Field:   fieldPath(fe),
			Code:    string(tagCode(fe)),
			Message: tagMessage(fe),
		})
	}
	return res
}

// ValidateStruct is Validate as an error. The first failure decides the
// AppError code; all failures are listed under details.errors.
func (v *Validator) ValidateStruct(s any) error {
	res := v.Validate(s)
	if res.IsValid() {
		return nil
	}
	first := res.Errors[0]
	msg := first.Message
	if first.Field != "" {
		msg = first.Field + ": " + msg
	}
	return types.NewAppErrorWithDetails(types.ErrorCode(first.Code), msg, nil,
		map[string]any{"errors": res.Errors})
}

// fieldPath drops the top-level struct name from the namespace:
// "evaluateRequest.profile.wind_weight" becomes "profile.wind_weight".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func tagCode(fe validator.FieldError) types.ErrorCode {
	switch fe.Tag() {
	case "required":
		return types.ErrCodeValidationMissingField
	case "is_latitude":
		return types.ErrCodeValidationInvalidLat
	case "is_longitude":
		return types.ErrCodeValidationInvalidLon
	case "is_threshold":
		return types.ErrCodeValidationThresholdRange
	}
	if fe.Kind() == reflect.Slice && fe.Tag() == "max" {
		return types.ErrCodeValidationTooManyHours
	}
	if strings.HasSuffix(fe.Field(), "_weight") {
		return types.ErrCodeValidationInvalidProfile
	}
	return types.ErrCodeValidationInvalidSample
}

func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "is_latitude":
		return "must be between -90 and 90"
	case "is_longitude":
		return "must be between -180 and 180"
	case "is_threshold":
		return "must be between 0 and 100"
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "max":
		if fe.Kind() == reflect.Slice {
			return "must have at most " + fe.Param() + " entries"
		}
		return "must be at most " + fe.Param()
	default:
		return "failed " + fe.Tag() + " validation"
	}
}
