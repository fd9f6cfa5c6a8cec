package intake

import (
	"slices"
	"strings"

	"github.com/neomorfeo/sendstack/internal/domain"
)

// Contact is collected on step 1.
type Contact struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"required,min=7,max=32"`
}

// Company is collected on step 2.
type Company struct {
	Name    string `json:"company_name" validate:"required,max=200"`
	Website string `json:"website" validate:"omitempty,url"`
}

// Form is the browser-held intake state. CustomDomains is authoritative for
// BYOD orders, SelectedDomains for full-package orders.
type Form struct {
	Contact         Contact                     `json:"contact"`
	Company         Company                     `json:"company"`
	PackageType     domain.PackageType          `json:"package_type"`
	NumberOfDomains int                         `json:"number_of_domains"`
	CustomDomains   []string                    `json:"custom_domains"`
	SelectedDomains []string                    `json:"selected_domains"`
	SearchedDomains []domain.AvailabilityResult `json:"searched_domains"`
	DNS             domain.DNSCredentials       `json:"dns"`
}

// NewForm returns the state of a freshly opened wizard.
func NewForm() Form {
	return Form{
		PackageType:     domain.PackageBYOD,
		NumberOfDomains: 1,
		CustomDomains:   make([]string, 1),
	}
}

// ResolvedDomains returns the normalized, non-blank domains of the
// authoritative source for the package type.
func (f Form) ResolvedDomains() []string {
	src := f.SelectedDomains
	if f.PackageType == domain.PackageBYOD {
		src = f.CustomDomains
	}
	out := make([]string, 0, len(src))
	for _, d := range src {
		if d = normalizeDomain(d); d != "" {
			out = append(out, d)
		}
	}
	return out
}

// Selectable reports whether d was returned by a search and reported available.
func (f Form) Selectable(d string) bool {
	d = normalizeDomain(d)
	return slices.ContainsFunc(f.SearchedDomains, func(r domain.AvailabilityResult) bool {
		return r.Available && normalizeDomain(r.Domain) == d
	})
}

func (f Form) domainKey() string {
	return string(f.PackageType) + "|" + strings.Join(f.ResolvedDomains(), ",")
}

func (f Form) clone() Form {
	f.CustomDomains = append([]string(nil), f.CustomDomains...)
	f.SelectedDomains = append([]string(nil), f.SelectedDomains...)
	f.SearchedDomains = append([]domain.AvailabilityResult(nil), f.SearchedDomains...)
	return f
}

func normalizeDomain(d string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(d)), ".")
}

func resizeStrings(s []string, n int) []string {
	out := make([]string, n)
	copy(out, s)
	return out
}
