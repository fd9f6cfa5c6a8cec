package domain

// MetadataValueLimit is the longest value, in characters, stored in gateway metadata.
const MetadataValueLimit = 400

// EllipsisMarker is appended to values cut at MetadataValueLimit.
const EllipsisMarker = "..."

// BoundedString is a metadata value that never exceeds MetadataValueLimit
// characters before its ellipsis marker.
type BoundedString struct {
	value     string
	truncated bool
}

// NewBoundedString truncates s to MetadataValueLimit runes and marks the cut
// with EllipsisMarker. Shorter values pass through unchanged.
func NewBoundedString(s string) BoundedString {
	runes := []rune(s)
	if len(runes) <= MetadataValueLimit {
		return BoundedString{value: s}
	}
	return BoundedString{
		value:     string(runes[:MetadataValueLimit]) + EllipsisMarker,
		truncated: true,
	}
}

// String returns the bounded value.
func (b BoundedString) String() string { return b.value }

// Truncated reports whether the original value was cut.
func (b BoundedString) Truncated() bool { return b.truncated }

// Metadata is the flat string map attached to a checkout session.
type Metadata struct {
	values map[string]BoundedString
}

// NewMetadata returns an empty metadata map.
func NewMetadata() *Metadata {
	return &Metadata{values: make(map[string]BoundedString)}
}

// Set stores value under key. Empty values are skipped.
func (m *Metadata) Set(key, value string) {
	if value == "" {
		return
	}
	m.values[key] = NewBoundedString(value)
}

// Get returns the stored value for key.
func (m *Metadata) Get(key string) (BoundedString, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Len returns the number of keys.
func (m *Metadata) Len() int { return len(m.values) }

// Map flattens the metadata for the gateway.
func (m *Metadata) Map() map[string]string {
	out := make(map[string]string, len(m.values))
	for k, v := range m.values {
		out[k] = v.String()
	}
	return out
}

// Metadata keys shared by the checkout builder and the materializer.
const (
	MetaFirstName       = "first_name"
	MetaLastName        = "last_name"
	MetaEmail           = "email"
	MetaPhone           = "phone"
	MetaCompanyName     = "company_name"
	MetaWebsite         = "website"
	MetaPackageType     = "package_type"
	MetaNumberOfDomains = "number_of_domains"
	MetaDomains         = "domains"
	MetaDNSProvider     = "dns_provider"
	MetaDNSUsername     = "dns_username"
	MetaAccountsCount   = "accounts_count"
)
