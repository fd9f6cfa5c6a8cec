package intake

import (
	"context"
	"fmt"
	"strings"

	"github.com/neomorfeo/sendstack/internal/credentials"
	"github.com/neomorfeo/sendstack/internal/domain"
)

// Submission is what leaves the wizard once the review step is confirmed.
type Submission struct {
	Form     Form
	Domains  []string
	Accounts []domain.AccountIdentity
}

// Submit re-validates steps 1 through 4, drops blank account rows and
// completes bare logins with the first resolved domain.
func (w *Wizard) Submit() (Submission, error) {
	if w.step != StepReview {
		return Submission{}, &domain.StepError{Event: "submit", Current: int(w.step)}
	}
	for s := StepContact; s < StepReview; s++ {
		if err := w.validator.Check(s, w.form, w.accounts); err != nil {
			return Submission{}, err
		}
	}

	domains := w.form.ResolvedDomains()
	accounts := make([]domain.AccountIdentity, 0, len(w.accounts))
	for _, a := range w.accounts {
		if a.IsBlank() {
			continue
		}
		if a.Login != "" && !strings.Contains(a.Login, "@") && len(domains) > 0 {
			a.Login += "@" + domains[0]
		}
		accounts = append(accounts, a)
	}

	return Submission{Form: w.form.clone(), Domains: domains, Accounts: accounts}, nil
}

// Replay drives a fresh wizard through form and accounts the way a browser
// would, walking every step so each one is validated.
func Replay(ctx context.Context, nav Navigator, gen *credentials.Generator, v *Validator, form Form, accounts []domain.AccountIdentity) (Submission, error) {
	w := NewWizard(nav, gen, v)
	w.Dispatch(
		SetContact{Contact: form.Contact},
		SetCompany{Company: form.Company},
		SetPackageType{PackageType: form.PackageType},
		SetDomainCount{N: form.NumberOfDomains},
	)
	if w.form.NumberOfDomains != form.NumberOfDomains {
		return Submission{}, &domain.ValidationError{
			Step:   int(StepDomains),
			Fields: map[string]string{"number_of_domains": fmt.Sprintf("must be between 1 and %d", domain.MaxDomains)},
		}
	}

	domains := form.CustomDomains
	if form.PackageType != domain.PackageBYOD {
		domains = form.SelectedDomains
	}
	w.Dispatch(
		AppendSearchResults{Results: form.SearchedDomains},
		SetDomains{Domains: domains},
		SetDNSCredentials{DNS: form.DNS},
		SetAccounts{Accounts: accounts},
	)
	switch {
	case form.PackageType == domain.PackageBYOD && len(form.CustomDomains) != form.NumberOfDomains:
		return Submission{}, &domain.ValidationError{
			Step:   int(StepDomains),
			Fields: map[string]string{"custom_domains": fmt.Sprintf("must list %d domains", form.NumberOfDomains)},
		}
	case form.PackageType == domain.PackageFull && len(form.SelectedDomains) != len(w.form.SelectedDomains):
		return Submission{}, &domain.ValidationError{
			Step:   int(StepDomains),
			Fields: map[string]string{"selected_domains": fmt.Sprintf("select exactly %d domains", form.NumberOfDomains)},
		}
	}

	for w.step < StepReview {
		if err := w.Next(ctx); err != nil {
			return Submission{}, err
		}
	}
	return w.Submit()
}
