package intake

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/neomorfeo/sendstack/internal/domain"
)

// Validator runs the step-local checks. An empty field map means the step is valid.
type Validator struct {
	validate *validator.Validate
}

type dnsInput struct {
	Provider string `json:"provider" validate:"required"`
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// NewValidator returns a Validator that reports fields by their json names.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

// Check returns a *domain.ValidationError when step has invalid fields.
func (v *Validator) Check(step Step, form Form, accounts []domain.AccountIdentity) error {
	fields := v.Fields(step, form, accounts)
	if len(fields) == 0 {
		return nil
	}
	return &domain.ValidationError{Step: int(step), Fields: fields}
}

// Fields returns the field-to-message map for step.
func (v *Validator) Fields(step Step, form Form, accounts []domain.AccountIdentity) map[string]string {
	fields := make(map[string]string)
	switch step {
	case StepContact:
		v.structFields(fields, "", form.Contact)
	case StepCompany:
		v.structFields(fields, "", form.Company)
	case StepDomains:
		v.domainFields(fields, form)
	case StepAccounts:
		if !hasIdentity(accounts) {
			fields["accounts"] = "at least one account is required"
		}
	}
	return fields
}

func (v *Validator) domainFields(fields map[string]string, form Form) {
	n := form.NumberOfDomains
	if n < 1 || n > domain.MaxDomains {
		fields["number_of_domains"] = fmt.Sprintf("must be between 1 and %d", domain.MaxDomains)
	}

	switch form.PackageType {
	case domain.PackageBYOD:
		if len(form.CustomDomains) != n {
			fields["custom_domains"] = fmt.Sprintf("must list %d domains", n)
		}
		for i, d := range form.CustomDomains {
			if err := v.validate.Var(normalizeDomain(d), "required,fqdn"); err != nil {
				var verrs validator.ValidationErrors
				if errors.As(err, &verrs) {
					fields[fmt.Sprintf("custom_domains[%d]", i)] = message(verrs[0])
				}
			}
		}
		v.structFields(fields, "dns.", dnsInput(form.DNS))
	case domain.PackageFull:
		if len(form.SelectedDomains) != n {
			fields["selected_domains"] = fmt.Sprintf("select exactly %d domains", n)
		}
		for i, d := range form.SelectedDomains {
			if !form.Selectable(d) {
				fields[fmt.Sprintf("selected_domains[%d]", i)] = "must be an available search result"
			}
		}
	default:
		fields["package_type"] = "must be byod or full-package"
	}
}

func (v *Validator) structFields(fields map[string]string, prefix string, s any) {
	err := v.validate.Struct(s)
	if err == nil {
		return
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		fields[strings.TrimSuffix(prefix, ".")+"_error"] = err.Error()
		return
	}
	for _, fe := range verrs {
		fields[prefix+fe.Field()] = message(fe)
	}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "url":
		return "must be a valid URL"
	case "fqdn":
		return "must be a valid domain name"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	default:
		return fmt.Sprintf("failed on %s validation", fe.Tag())
	}
}

func hasIdentity(accounts []domain.AccountIdentity) bool {
	for _, a := range accounts {
		if !a.IsBlank() {
			return true
		}
	}
	return false
}
