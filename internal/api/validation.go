package api

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"tourkorea/explorer/internal/domain"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	areaCodePattern = regexp.MustCompile(`^[0-9]{1,2}$`)
	registerOnce    sync.Once
)

// registerValidators adds the domain rules to gin's validator and reports fields by their
// query or JSON name.
func registerValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}

		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			for _, tag := range []string{"form", "json"} {
				name := strings.SplitN(field.Tag.Get(tag), ",", 2)[0]
				if name != "" && name != "-" {
					return name
				}
			}
			return field.Name
		})

		_ = v.RegisterValidation("areacode", func(fl validator.FieldLevel) bool {
			return areaCodePattern.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("contenttype", func(fl validator.FieldLevel) bool {
			return domain.ContentType(fl.Field().String()).Valid()
		})
	})
}

func describeBindError(err error) string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return fmt.Sprintf("invalid request: %v", err)
	}

	messages := make([]string, 0, len(validationErrs))
	for _, fe := range validationErrs {
		messages = append(messages, describeField(fe))
	}
	return strings.Join(messages, "; ")
}

func describeField(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "numeric":
		return fmt.Sprintf("%s must be numeric", fe.Field())
	case "areacode":
		return fmt.Sprintf("%s is not a valid area code", fe.Field())
	case "contenttype":
		return fmt.Sprintf("%s is not a known content type", fe.Field())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}
