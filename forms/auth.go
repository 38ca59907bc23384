package forms

import (
	"strings"

	"recipebox/store"
)

// Registration is the sign-up form.
type Registration struct {
	Name            string `json:"name" validate:"notblank"`
	Email           string `json:"email" validate:"notblank,email"`
	Phone           string `json:"phone" validate:"notblank"`
	Password        string `json:"password" validate:"min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"eqfield=Password"`
}

var registrationMessages = map[string]string{
	"name":            "Name is required",
	"email":           "Valid email is required",
	"phone":           "Phone number is required",
	"password":        "Password must be at least 6 characters",
	"confirmPassword": "Passwords do not match",
}

// Validate returns FieldErrors for every failing field.
func (r Registration) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	return check(r, registrationMessages)
}

// Account is the account to register. The email is trimmed; other fields are kept as entered.
func (r Registration) Account() store.Account {
	return store.Account{
		Profile: store.Profile{
			Name:  r.Name,
			Email: strings.TrimSpace(r.Email),
			Phone: r.Phone,
		},
		Password: r.Password,
	}
}

// Credentials is the login form.
type Credentials struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

var credentialsMessages = map[string]string{
	"email":    "Email is required",
	"password": "Password is required",
}

func (c Credentials) Validate() error {
	return check(c, credentialsMessages)
}
