package service

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// bcrypt 只接受 72 bytes 以內的密碼
const passwordMaxBytes = 72

var fieldMessages = map[string]string{
	"required":   "This field is required.",
	"notblank":   "This field is required.",
	"username":   "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.",
	"notnumeric": "This password is entirely numeric.",
	"eqfield":    "The two password fields didn't match.",
	"email":      "Enter a valid email address.",
}

func newValidator() *validator.Validate {
	v := validator.New()

	// 錯誤訊息以表單欄位名稱為 key
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("notnumeric", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return strings.TrimLeft(s, "0123456789") != ""
	})
	_ = v.RegisterValidation("bcryptlen", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= passwordMaxBytes
	})
	_ = v.RegisterValidation("notblank", validators.NotBlank)

	return v
}

// validateStruct 把 validator 的錯誤轉成 ValidationError
func validateStruct(v *validator.Validate, input interface{}) *ValidationError {
	verr := &ValidationError{}

	err := v.Struct(input)
	if err == nil {
		return verr
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		verr.add("__all__", err.Error())
		return verr
	}

	for _, fe := range fieldErrs {
		verr.add(fe.Field(), messageFor(fe))
	}
	return verr
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "bcryptlen":
		return fmt.Sprintf("This password is too long. It must contain at most %d bytes.", passwordMaxBytes)
	case "max":
		return "Ensure this value has at most " + fe.Param() + " characters."
	case "min":
		if fe.Field() == "password1" {
			return "This password is too short. It must contain at least " + fe.Param() + " characters."
		}
		return "Ensure this value has at least " + fe.Param() + " characters."
	}
	if msg, ok := fieldMessages[fe.Tag()]; ok {
		return msg
	}
	return "Enter a valid value."
}
