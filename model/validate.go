package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidatePost checks that a post read from the API is well formed.
func ValidatePost(p Post) error {
	return validationError(validate.Struct(p))
}

// ValidateUser checks that a user read from the API is well formed: every property other
// than id is present, the email is an address, and the nested objects are populated.
func ValidateUser(u User) error {
	return validationError(validate.Struct(u))
}

func validationError(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	var msgs []string
	for _, e := range verrs {
		switch e.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", e.Namespace()))
		case "email":
			msgs = append(msgs, fmt.Sprintf("%s must be an email address, got %q", e.Namespace(), e.Value()))
		case "gt":
			msgs = append(msgs, fmt.Sprintf("%s must be greater than %s, got %v", e.Namespace(), e.Param(), e.Value()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed on the %q rule", e.Namespace(), e.Tag()))
		}
	}
	return errors.New(strings.Join(msgs, ", "))
}
