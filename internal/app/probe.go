package app

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/net/publicsuffix"
	"golang.org/x/sync/errgroup"

	"github.com/neomorfeo/sendstack/internal/domain"
)

// probeSuffixes are the top-level suffixes a bare query fans out across, in
// the order results are shown.
var probeSuffixes = []string{"com", "net", "org", "io", "co"}

// alternateNames are offered when the primary candidate of a bare query is taken.
var alternateNames = []func(name string) string{
	func(name string) string { return "get" + name + ".com" },
	func(name string) string { return name + "hq.com" },
	func(name string) string { return name + "app.com" },
}

// maxSuffixAlternates bounds the suggestions for a taken literal domain.
const maxSuffixAlternates = 3

// AvailabilityProbe turns a free-text query into domain availability verdicts.
// Calls are independent; callers accumulate results themselves.
type AvailabilityProbe struct {
	resolver domain.NameResolver
	logger   *slog.Logger
	limit    int
}

// NewAvailabilityProbe creates a probe that resolves candidates through resolver.
func NewAvailabilityProbe(resolver domain.NameResolver, logger *slog.Logger) *AvailabilityProbe {
	return &AvailabilityProbe{resolver: resolver, logger: logger, limit: 8}
}

// Check returns ordered verdicts for query. A query that already ends in a
// recognized suffix is checked literally; anything else fans out across
// probeSuffixes.
func (p *AvailabilityProbe) Check(ctx context.Context, query string) ([]domain.AvailabilityResult, error) {
	q := normalizeQuery(query)
	if q == "" {
		return nil, domain.ErrInvalidQuery
	}

	if suffix, icann := publicsuffix.PublicSuffix(q); icann && suffix == q && strings.Contains(q, ".") {
		return nil, domain.ErrInvalidQuery
	}
	if !hasRecognizedSuffix(q) {
		name, _, _ := strings.Cut(q, ".")
		if name == "" {
			return nil, domain.ErrInvalidQuery
		}
		return p.checkBare(ctx, name), nil
	}

	root, err := publicsuffix.EffectiveTLDPlusOne(q)
	if err != nil {
		return nil, domain.ErrInvalidQuery
	}
	rootName, suffix, _ := strings.Cut(root, ".")

	// Subdomains are never registrable on their own.
	if root != q {
		results := []domain.AvailabilityResult{{Domain: q, Available: false}}
		return append(results, p.resolveAll(ctx, withSuffixes(rootName, probeSuffixes))...), nil
	}

	results := p.resolveAll(ctx, []string{q})
	if results[0].Available {
		return results, nil
	}
	alternates := make([]string, 0, maxSuffixAlternates)
	for _, s := range probeSuffixes {
		if s != suffix && len(alternates) < maxSuffixAlternates {
			alternates = append(alternates, rootName+"."+s)
		}
	}
	return append(results, p.resolveAll(ctx, alternates)...), nil
}

func (p *AvailabilityProbe) checkBare(ctx context.Context, name string) []domain.AvailabilityResult {
	results := p.resolveAll(ctx, withSuffixes(name, probeSuffixes))
	if results[0].Available {
		return results
	}
	alternates := make([]string, 0, len(alternateNames))
	for _, alt := range alternateNames {
		alternates = append(alternates, alt(name))
	}
	return append(results, p.resolveAll(ctx, alternates)...)
}

// resolveAll resolves candidates concurrently. A failed lookup never fails
// its siblings; it is reported as available.
func (p *AvailabilityProbe) resolveAll(ctx context.Context, candidates []string) []domain.AvailabilityResult {
	results := make([]domain.AvailabilityResult, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.limit)

	for i, candidate := range candidates {
		g.Go(func() error {
			status, err := p.resolver.Resolve(gctx, candidate)
			if err != nil {
				p.logger.WarnContext(ctx, "domain lookup failed, assuming available",
					slog.String("domain", candidate),
					slog.String("error", err.Error()),
				)
				results[i] = domain.AvailabilityResult{Domain: candidate, Available: true}
				return nil
			}
			results[i] = domain.AvailabilityResult{Domain: candidate, Available: status == domain.NoSuchName}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func hasRecognizedSuffix(q string) bool {
	if !strings.Contains(q, ".") {
		return false
	}
	suffix, icann := publicsuffix.PublicSuffix(q)
	return icann && suffix != q
}

func withSuffixes(name string, suffixes []string) []string {
	out := make([]string, 0, len(suffixes))
	for _, s := range suffixes {
		out = append(out, name+"."+s)
	}
	return out
}

// normalizeQuery lowercases the query and strips schemes, paths and any
// character that cannot appear in a hostname.
func normalizeQuery(query string) string {
	q := strings.ToLower(strings.TrimSpace(query))
	q = strings.TrimPrefix(q, "http://")
	q = strings.TrimPrefix(q, "https://")
	q = strings.TrimPrefix(q, "www.")
	q, _, _ = strings.Cut(q, "/")

	var b strings.Builder
	for _, r := range q {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '.' {
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), ".-")
}
