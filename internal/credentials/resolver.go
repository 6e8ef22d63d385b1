// Package credentials decides which secret a provider call uses.
package credentials

// Resolver prefers a credential supplied with the request and falls back to
// the process-wide value configured at startup.
type Resolver struct {
	fallbacks map[string]string
}

// NewResolver copies fallbacks so later changes to the map are not observed.
func NewResolver(fallbacks map[string]string) *Resolver {
	copied := make(map[string]string, len(fallbacks))
	for name, secret := range fallbacks {
		if secret != "" {
			copied[name] = secret
		}
	}
	return &Resolver{fallbacks: copied}
}

// Resolve returns the secret for name. A non-empty request value always wins,
// even if the provider later rejects it. ok is false when neither source has a
// value; that is a normal outcome, not an error.
func (r *Resolver) Resolve(name string, requestCredentials map[string]string) (secret string, ok bool) {
	if v := requestCredentials[name]; v != "" {
		return v, true
	}
	if v, exists := r.fallbacks[name]; exists {
		return v, true
	}
	return "", false
}

// HasFallback reports whether a process-wide secret exists for name.
func (r *Resolver) HasFallback(name string) bool {
	_, ok := r.fallbacks[name]
	return ok
}
