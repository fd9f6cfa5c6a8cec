// Package dns answers whether a host name exists, either through a
// DNS-over-HTTPS JSON endpoint or the system resolver.
package dns

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/neomorfeo/sendstack/internal/domain"
)

// DefaultDoHURL is Google's JSON DNS API.
const DefaultDoHURL = "https://dns.google/resolve"

// DNS response codes used by the JSON API.
const (
	rcodeNoError  = 0
	rcodeNXDomain = 3
)

// DoHResolver implements domain.NameResolver over the application/dns-json API.
type DoHResolver struct {
	endpoint string
	client   *http.Client
}

// NewDoHResolver creates a resolver for endpoint. A nil client gets a 5s timeout.
func NewDoHResolver(endpoint string, client *http.Client) *DoHResolver {
	if endpoint == "" {
		endpoint = DefaultDoHURL
	}
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &DoHResolver{endpoint: endpoint, client: client}
}

type dohResponse struct {
	Status int `json:"Status"`
}

// Resolve queries the A record of host. NXDOMAIN maps to domain.NoSuchName;
// NOERROR, with or without answers, maps to domain.Resolved.
func (r *DoHResolver) Resolve(ctx context.Context, host string) (domain.ResolveStatus, error) {
	q := url.Values{"name": {host}, "type": {"A"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return 0, fmt.Errorf("building dns request: %w", err)
	}
	req.Header.Set("Accept", "application/dns-json")

	resp, err := r.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("querying %s: %w", host, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("querying %s: unexpected status %d", host, resp.StatusCode)
	}

	var body dohResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("decoding dns response for %s: %w", host, err)
	}

	switch body.Status {
	case rcodeNoError:
		return domain.Resolved, nil
	case rcodeNXDomain:
		return domain.NoSuchName, nil
	default:
		return 0, fmt.Errorf("querying %s: dns rcode %d", host, body.Status)
	}
}

// SystemResolver implements domain.NameResolver with net.Resolver.
type SystemResolver struct {
	resolver *net.Resolver
}

// NewSystemResolver wraps r, or net.DefaultResolver when r is nil.
func NewSystemResolver(r *net.Resolver) *SystemResolver {
	if r == nil {
		r = net.DefaultResolver
	}
	return &SystemResolver{resolver: r}
}

func (s *SystemResolver) Resolve(ctx context.Context, host string) (domain.ResolveStatus, error) {
	_, err := s.resolver.LookupHost(ctx, host)
	if err == nil {
		return domain.Resolved, nil
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
		return domain.NoSuchName, nil
	}
	return 0, fmt.Errorf("looking up %s: %w", host, err)
}
