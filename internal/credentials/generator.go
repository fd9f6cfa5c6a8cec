// Package credentials derives bulk mailbox identities from a seed name.
package credentials

import (
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/neomorfeo/sendstack/internal/clock"
	"github.com/neomorfeo/sendstack/internal/domain"
)

// Seed is the name every generated identity is derived from.
type Seed struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Generator builds login names from a fixed pattern table. Random suffixes
// make repeated generation non-deterministic; the row count never is.
type Generator struct {
	intn  func(n int) int
	clock clock.Clock
}

// Option configures a Generator.
type Option func(*Generator)

// WithRand replaces the source of the random 1-999 suffix. intn must return
// a value in [0, n).
func WithRand(intn func(n int) int) Option {
	return func(g *Generator) { g.intn = intn }
}

// WithClock replaces the clock used for year suffixes.
func WithClock(c clock.Clock) Option {
	return func(g *Generator) { g.clock = c }
}

// New returns a Generator backed by math/rand/v2 and the system clock.
func New(opts ...Option) *Generator {
	g := &Generator{intn: rand.IntN, clock: clock.NewSystem()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns exactly n identities for seed. Every tenth row after the
// first carries a numeral on its first name (odd tens) or last name (even
// tens); logins always derive from the unmodified seed.
func (g *Generator) Generate(seed Seed, n int) []domain.AccountIdentity {
	if n <= 0 {
		return []domain.AccountIdentity{}
	}
	rows := make([]domain.AccountIdentity, n)
	for i := range rows {
		rows[i] = g.row(seed, i)
	}
	return rows
}

// Extend resizes existing to n, keeping rows up to min(len(existing), n) and
// generating the rest from seed.
func (g *Generator) Extend(seed Seed, existing []domain.AccountIdentity, n int) []domain.AccountIdentity {
	if n <= 0 {
		return []domain.AccountIdentity{}
	}
	rows := make([]domain.AccountIdentity, n)
	kept := copy(rows, existing)
	for i := kept; i < n; i++ {
		rows[i] = g.row(seed, i)
	}
	return rows
}

// Rederive recomputes the login of a manually edited row at position slot.
func (g *Generator) Rederive(row domain.AccountIdentity, slot int) domain.AccountIdentity {
	row.Login = g.Login(row.FirstName, row.LastName, slot)
	return row
}

// Login renders the pattern assigned to slot for the given names.
func (g *Generator) Login(firstName, lastName string, slot int) string {
	p := parts{
		first: clean(firstName),
		last:  clean(lastName),
		n:     slot + 1,
		rnd:   g.intn(999) + 1,
		year:  g.clock.Now().Year(),
	}
	if p.first == "" && p.last == "" {
		return ""
	}
	if p.first != "" {
		p.fi = p.first[:1]
	}
	if p.last != "" {
		p.li = p.last[:1]
	}
	return tidy(patterns[slot%len(patterns)](p))
}

func (g *Generator) row(seed Seed, i int) domain.AccountIdentity {
	first, last := seed.FirstName, seed.LastName
	if i > 0 && i%10 == 0 {
		k := i / 10
		if k%2 == 1 {
			first += strconv.Itoa(k)
		} else {
			last += strconv.Itoa(k)
		}
	}
	return domain.AccountIdentity{
		FirstName: first,
		LastName:  last,
		Login:     g.Login(seed.FirstName, seed.LastName, i),
	}
}

// Resize pads or cuts rows to n, filling new slots with blank identities.
func Resize(rows []domain.AccountIdentity, n int) []domain.AccountIdentity {
	if n <= 0 {
		return []domain.AccountIdentity{}
	}
	out := make([]domain.AccountIdentity, n)
	copy(out, rows)
	return out
}

// Blank returns n empty identities.
func Blank(n int) []domain.AccountIdentity {
	return Resize(nil, n)
}

func clean(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// tidy drops separators left dangling by an empty name part.
func tidy(login string) string {
	var b strings.Builder
	var prev rune
	for _, r := range login {
		if isSeparator(r) && (b.Len() == 0 || isSeparator(prev)) {
			continue
		}
		b.WriteRune(r)
		prev = r
	}
	return strings.TrimRightFunc(b.String(), isSeparator)
}

func isSeparator(r rune) bool {
	return r == '.' || r == '_' || r == '-'
}
