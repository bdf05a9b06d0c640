package store

import "strings"

// Backend names accepted by configuration.
const (
	BackendJSON   = "json"
	BackendBolt   = "bolt"
	BackendMemory = "memory"
)

// Backends lists the accepted backend names.
var Backends = []string{BackendJSON, BackendBolt, BackendMemory}

// NormalizeBackend lowercases name and maps the empty string to the
// default backend. ok is false for unknown names.
func NormalizeBackend(name string) (string, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return BackendJSON, true
	}
	for _, b := range Backends {
		if b == name {
			return b, true
		}
	}
	return name, false
}
