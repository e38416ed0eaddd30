package session

import (
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/nyaruka/phonenumbers"
)

// defaultPhoneRegion is used when a phone number is not given in E.164 form.
const defaultPhoneRegion = "NG"

// LoginRequest is the payload for POST /auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
	)
}

// RegisterRequest is the payload for POST /auth/register. Role is always
// submitted as patient; whatever the caller sets is overwritten before the
// request leaves the client.
type RegisterRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"-"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Gender          string `json:"gender"`
	NextOfKin       string `json:"next_of_kin"`
	MatricNo        string `json:"matric_no"`
	PhoneNo         string `json:"phone_no,omitempty"`
	Country         string `json:"country,omitempty"`
	Role            Role   `json:"role"`
}

// Validate will validate the payload
func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.LastName, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Gender, validation.Required, validation.In("male", "female", "other")),
		validation.Field(&r.NextOfKin, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.MatricNo, validation.Required, validation.Length(1, 50)),
		validation.Field(&r.PhoneNo, validation.By(validatePhoneNumber)),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 100)),
		validation.Field(
			&r.ConfirmPassword,
			validation.Required,
			validation.By(validateStringEquals(r.Password)),
		),
	)
}

// normalized returns a copy with the role pinned to patient. Registration is
// self-service for patients only.
func (r RegisterRequest) normalized() RegisterRequest {
	r.Role = RolePatient
	return r
}

// validatePhoneNumber accepts an empty value; the field is optional. Numbers
// without a + prefix are parsed against the default region.
func validatePhoneNumber(value any) error {
	raw, _ := value.(string)
	if raw == "" {
		return nil
	}

	num, err := phonenumbers.Parse(raw, defaultPhoneRegion)
	if err != nil {
		return fmt.Errorf("must be a valid phone number: %w", err)
	}

	if !phonenumbers.IsValidNumber(num) {
		return errors.New("must be a valid phone number")
	}

	return nil
}

func validateStringEquals(str string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if s != str {
			return errors.New("passwords do not match")
		}
		return nil
	}
}
