package session

import (
	"errors"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/healthportal-app/portal-client/internal/domain"
)

// normalizeRegistration trims input and drops the license for non-doctors.
func normalizeRegistration(reg domain.Registration) domain.Registration {
	reg.Email = domain.NormalizeEmail(reg.Email)
	reg.FullName = domain.NormalizeHumanName(reg.FullName)
	reg.LicenseNo = strings.TrimSpace(reg.LicenseNo)
	if reg.Role != domain.RoleDoctor {
		reg.LicenseNo = ""
	}
	return reg
}

func validateRegistration(reg domain.Registration) error {
	err := validation.ValidateStruct(&reg,
		validation.Field(&reg.Email, validation.Required, is.Email),
		validation.Field(&reg.Password, validation.Required),
		validation.Field(&reg.FullName, validation.Required, validation.Length(1, 200)),
		validation.Field(&reg.Role, validation.Required, validation.In(domain.RolePatient, domain.RoleDoctor)),
		validation.Field(&reg.LicenseNo, validation.By(func(value interface{}) error {
			if reg.Role == domain.RoleDoctor && value.(string) == "" {
				return errors.New("is required for doctors")
			}
			return nil
		})),
		validation.Field(&reg.DataUsageConsent, validation.By(func(value interface{}) error {
			if !value.(bool) {
				return errors.New("must be accepted")
			}
			return nil
		})),
	)
	if err == nil {
		return nil
	}
	return validationError(err)
}

func validateLogin(email, password string) error {
	var fields map[string]string
	if email == "" {
		fields = map[string]string{"email": "cannot be blank"}
	}
	if password == "" {
		if fields == nil {
			fields = map[string]string{}
		}
		fields["password"] = "cannot be blank"
	}
	if fields == nil {
		return nil
	}
	return &AuthError{Kind: ValidationFailed, Message: "Email and password are required.", Fields: fields}
}

func validationError(err error) error {
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		return &AuthError{Kind: ValidationFailed, Message: err.Error(), Err: err}
	}
	fields := make(map[string]string, len(verrs))
	keys := make([]string, 0, len(verrs))
	for k, e := range verrs {
		fields[k] = e.Error()
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fields[k])
	}
	return &AuthError{
		Kind:    ValidationFailed,
		Message: "Please fix the following: " + strings.Join(parts, "; ") + ".",
		Fields:  fields,
		Err:     err,
	}
}
