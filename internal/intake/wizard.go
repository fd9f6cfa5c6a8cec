package intake

import (
	"context"
	"slices"

	"github.com/neomorfeo/sendstack/internal/credentials"
	"github.com/neomorfeo/sendstack/internal/domain"
)

// Wizard owns the intake form, the current step and the account collection
// derived from it. It is not safe for concurrent use.
type Wizard struct {
	nav       Navigator
	gen       *credentials.Generator
	validator *Validator

	step     Step
	form     Form
	accounts []domain.AccountIdentity

	// domainKey is the resolved domain set last seen on the accounts step.
	domainKey   string
	keyRecorded bool
}

// NewWizard returns a wizard on step 1 with one BYOD domain and 50 blank accounts.
func NewWizard(nav Navigator, gen *credentials.Generator, v *Validator) *Wizard {
	form := NewForm()
	return &Wizard{
		nav:       nav,
		gen:       gen,
		validator: v,
		step:      StepContact,
		form:      form,
		accounts:  credentials.Blank(domain.TotalAccounts(form.NumberOfDomains)),
	}
}

func (w *Wizard) Step() Step { return w.step }

// Form returns a copy of the current form.
func (w *Wizard) Form() Form { return w.form.clone() }

// Accounts returns a copy of the account collection.
func (w *Wizard) Accounts() []domain.AccountIdentity { return slices.Clone(w.accounts) }

// Errors returns the validation messages for the current step.
func (w *Wizard) Errors() map[string]string {
	return w.validator.Fields(w.step, w.form, w.accounts)
}

// Dispatch applies one action and re-derives dependent state.
func (w *Wizard) Dispatch(actions ...Action) {
	for _, a := range actions {
		a.apply(w)
		w.reconcile()
	}
}

// Next moves forward when the current step validates. On failure the wizard
// stays put and the error is a *domain.ValidationError or *domain.StepError.
func (w *Wizard) Next(ctx context.Context) error {
	return w.move(ctx, EventNext, func(context.Context) error {
		return w.validator.Check(w.step, w.form, w.accounts)
	})
}

// Back moves to the previous step without validating or discarding anything.
func (w *Wizard) Back(ctx context.Context) error {
	return w.move(ctx, EventBack, nil)
}

func (w *Wizard) move(ctx context.Context, event StepEvent, guard Guard) error {
	dst, err := w.nav.Apply(ctx, w.step, event, guard)
	if err != nil {
		return err
	}
	w.step = dst
	w.reconcile()
	return nil
}

// reconcile blanks the accounts when the resolved domain set differs from
// the one last seen on the accounts step. Comparing keys rather than sizes
// catches same-count edits.
func (w *Wizard) reconcile() {
	if want := domain.TotalAccounts(w.form.NumberOfDomains); len(w.accounts) != want {
		w.accounts = credentials.Resize(w.accounts, want)
	}
	if w.step != StepAccounts {
		return
	}
	key := w.form.domainKey()
	if w.keyRecorded && key != w.domainKey {
		w.accounts = credentials.Blank(domain.TotalAccounts(w.form.NumberOfDomains))
	}
	w.domainKey = key
	w.keyRecorded = true
}
