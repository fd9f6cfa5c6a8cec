package domain

// AvailabilityResult is the verdict for one candidate domain.
type AvailabilityResult struct {
	Domain    string `json:"domain"`
	Available bool   `json:"available"`
}

// ResolveStatus is what the name-resolution service says about a host.
type ResolveStatus int

const (
	// Resolved means the name has records and is therefore taken.
	Resolved ResolveStatus = iota
	// NoSuchName is the authoritative NXDOMAIN answer.
	NoSuchName
)

func (s ResolveStatus) String() string {
	switch s {
	case Resolved:
		return "resolved"
	case NoSuchName:
		return "nxdomain"
	default:
		return "unknown"
	}
}
