package intake

import (
	"slices"

	"github.com/neomorfeo/sendstack/internal/credentials"
	"github.com/neomorfeo/sendstack/internal/domain"
)

// Action is a typed wizard mutation.
type Action interface {
	apply(w *Wizard)
}

type SetContact struct{ Contact Contact }

func (a SetContact) apply(w *Wizard) { w.form.Contact = a.Contact }

type SetCompany struct{ Company Company }

func (a SetCompany) apply(w *Wizard) { w.form.Company = a.Company }

// SetPackageType switches the domain source. Both domain collections and
// the accounts are reset.
type SetPackageType struct{ PackageType domain.PackageType }

func (a SetPackageType) apply(w *Wizard) {
	if a.PackageType == w.form.PackageType {
		return
	}
	w.form.PackageType = a.PackageType
	w.form.CustomDomains = make([]string, w.form.NumberOfDomains)
	w.form.SelectedDomains = nil
	w.accounts = credentials.Blank(domain.TotalAccounts(w.form.NumberOfDomains))
}

// SetDomainCount resizes the domain collections and the accounts. The count
// is clamped to 1..MaxDomains.
type SetDomainCount struct{ N int }

func (a SetDomainCount) apply(w *Wizard) {
	n := min(max(a.N, 1), domain.MaxDomains)
	if n == w.form.NumberOfDomains {
		return
	}
	w.form.NumberOfDomains = n
	w.form.CustomDomains = resizeStrings(w.form.CustomDomains, n)
	if len(w.form.SelectedDomains) > n {
		w.form.SelectedDomains = w.form.SelectedDomains[:n]
	}
	w.accounts = credentials.Resize(w.accounts, domain.TotalAccounts(n))
}

// SetCustomDomain edits one BYOD domain slot. Out-of-range indexes are ignored.
type SetCustomDomain struct {
	Index  int
	Domain string
}

func (a SetCustomDomain) apply(w *Wizard) {
	if a.Index < 0 || a.Index >= len(w.form.CustomDomains) {
		return
	}
	w.form.CustomDomains[a.Index] = a.Domain
}

// SetDomains replaces the authoritative domain collection for the current
// package type, cut to the domain count.
type SetDomains struct{ Domains []string }

func (a SetDomains) apply(w *Wizard) {
	n := w.form.NumberOfDomains
	if w.form.PackageType == domain.PackageBYOD {
		w.form.CustomDomains = resizeStrings(a.Domains, n)
		return
	}
	selected := make([]string, 0, n)
	for _, d := range a.Domains {
		d = normalizeDomain(d)
		if d == "" || slices.Contains(selected, d) {
			continue
		}
		if len(selected) == n {
			break
		}
		selected = append(selected, d)
	}
	w.form.SelectedDomains = selected
}

// SelectDomain toggles one search result for a full-package order. Selecting
// beyond the domain count, or a domain no search reported available, is ignored.
type SelectDomain struct {
	Domain   string
	Selected bool
}

func (a SelectDomain) apply(w *Wizard) {
	if w.form.PackageType != domain.PackageFull {
		return
	}
	d := normalizeDomain(a.Domain)
	idx := slices.Index(w.form.SelectedDomains, d)
	switch {
	case a.Selected && idx < 0 && len(w.form.SelectedDomains) < w.form.NumberOfDomains && w.form.Selectable(d):
		w.form.SelectedDomains = append(w.form.SelectedDomains, d)
	case !a.Selected && idx >= 0:
		w.form.SelectedDomains = slices.Delete(w.form.SelectedDomains, idx, idx+1)
	}
}

// AppendSearchResults adds probe results after the ones already shown.
// A domain already listed keeps its first verdict.
type AppendSearchResults struct{ Results []domain.AvailabilityResult }

func (a AppendSearchResults) apply(w *Wizard) {
	for _, r := range a.Results {
		seen := slices.ContainsFunc(w.form.SearchedDomains, func(e domain.AvailabilityResult) bool {
			return e.Domain == r.Domain
		})
		if !seen {
			w.form.SearchedDomains = append(w.form.SearchedDomains, r)
		}
	}
}

type SetDNSCredentials struct{ DNS domain.DNSCredentials }

func (a SetDNSCredentials) apply(w *Wizard) { w.form.DNS = a.DNS }

// GenerateAccounts replaces every row with identities derived from Seed.
type GenerateAccounts struct{ Seed credentials.Seed }

func (a GenerateAccounts) apply(w *Wizard) {
	w.accounts = w.gen.Generate(a.Seed, domain.TotalAccounts(w.form.NumberOfDomains))
}

// EditAccount changes the names on one row and re-derives its login.
type EditAccount struct {
	Index     int
	FirstName string
	LastName  string
}

func (a EditAccount) apply(w *Wizard) {
	if a.Index < 0 || a.Index >= len(w.accounts) {
		return
	}
	row := w.accounts[a.Index]
	row.FirstName, row.LastName = a.FirstName, a.LastName
	w.accounts[a.Index] = w.gen.Rederive(row, a.Index)
}

// SetAccounts loads rows as given, resized to the derived account count.
type SetAccounts struct{ Accounts []domain.AccountIdentity }

func (a SetAccounts) apply(w *Wizard) {
	w.accounts = credentials.Resize(a.Accounts, domain.TotalAccounts(w.form.NumberOfDomains))
}
