package validation

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"wishlist/internal/apperr"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func instance() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("httpurl", func(fl validator.FieldLevel) bool {
			ok, _ := ValidateURL(fl.Field().String())
			return ok
		})
		validate = v
	})
	return validate
}

// Struct validates a request body against its `validate` tags. The first
// failure becomes a Validation error naming the JSON field.
func Struct(s any) error {
	err := instance().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperr.Validation("Invalid request body")
	}
	fe := verrs[0]
	return apperr.Validation(message(fe.Field(), fe.Tag(), fe.Param()))
}

func message(field, tag, param string) string {
	switch tag {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, param)
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(param, " ", ", "))
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", field, param)
	case "httpurl":
		return fmt.Sprintf("%s must be an http:// or https:// URL", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// ValidateURL checks if a URL is valid and uses an allowed scheme (http/https only).
// This prevents javascript:, data:, vbscript:, and other dangerous URL schemes.
func ValidateURL(urlStr string) (bool, string) {
	if urlStr == "" {
		return false, "URL is required"
	}

	u, err := url.Parse(urlStr)
	if err != nil {
		return false, "Invalid URL format"
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return false, "URL must use http:// or https:// scheme"
	}

	if u.Host == "" {
		return false, "URL must have a valid host"
	}

	return true, ""
}
