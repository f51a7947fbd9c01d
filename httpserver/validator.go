package httpserver

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"contactbook/contact"
	"contactbook/errs"
)

type CustomValidator struct {
	validate *validator.Validate
}

func NewValidator() *CustomValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("notblank", validateNotBlank)
	_ = v.RegisterValidation("contactname", validateContactName)
	_ = v.RegisterValidation("contactemail", validateContactEmail)
	return &CustomValidator{validate: v}
}

func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validate.Struct(i); err != nil {
		return errs.Errorf(errs.EINVALID, "%s", formatValidationError(err))
	}
	return nil
}

func stringField(fl validator.FieldLevel) (string, bool) {
	if fl.Field().Kind() != reflect.String {
		return "", false
	}
	return strings.TrimSpace(fl.Field().String()), true
}

func validateNotBlank(fl validator.FieldLevel) bool {
	value, ok := stringField(fl)
	return ok && value != ""
}

func validateContactName(fl validator.FieldLevel) bool {
	value, ok := stringField(fl)
	return ok && contact.IsValidName(value)
}

func validateContactEmail(fl validator.FieldLevel) bool {
	value, ok := stringField(fl)
	return ok && contact.IsValidEmail(value)
}

func formatValidationError(err error) string {
	if errs, ok := err.(validator.ValidationErrors); ok {
		parts := make([]string, 0, len(errs))
		for _, fe := range errs {
			field := fe.Field()
			if field == "" {
				field = fe.StructField()
			}
			parts = append(parts, field+" failed on "+fe.Tag())
		}
		return "validation error: " + strings.Join(parts, "; ")
	}
	return "validation error"
}
