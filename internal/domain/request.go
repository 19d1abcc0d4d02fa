package domain

import "strings"

// RelayRequest holds the inbound form fields of a single relay invocation.
type RelayRequest map[string]string

// Get returns the trimmed value of a field, or "" when absent.
func (r RelayRequest) Get(name string) string {
	return strings.TrimSpace(r[name])
}

// Has reports whether the field is present and non-empty.
func (r RelayRequest) Has(name string) bool {
	return r.Get(name) != ""
}

// Missing returns the required fields that are absent, in declaration order.
func (r RelayRequest) Missing(required []string) []string {
	var missing []string
	for _, name := range required {
		if !r.Has(name) {
			missing = append(missing, name)
		}
	}
	return missing
}
