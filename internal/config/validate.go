package config

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate

	jurisdictionPattern = regexp.MustCompile(`^[A-Z]{2}$`)
)

func configValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()

		// Register custom validators
		v.RegisterValidation("year", isYear)
		v.RegisterValidation("jurisdiction", isJurisdiction)

		// Use YAML tag names in error messages
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		validate = v
	})
	return validate
}

// validateStruct validates v and flattens field errors into one message
func validateStruct(v interface{}) error {
	err := configValidator().Struct(v)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, formatFieldError(fe))
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}

func formatFieldError(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	switch fe.Tag() {
	case "required", "required_if":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", field, fe.Param(), fe.Value())
	case "year":
		return fmt.Sprintf("%s must be a four digit year, got %q", field, fe.Value())
	case "jurisdiction":
		return fmt.Sprintf("%s must be a two letter uppercase code, got %q", field, fe.Value())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

func isYear(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if len(s) != 4 {
		return false
	}
	y, err := strconv.Atoi(s)
	return err == nil && y >= 1900
}

func isJurisdiction(fl validator.FieldLevel) bool {
	return jurisdictionPattern.MatchString(fl.Field().String())
}
