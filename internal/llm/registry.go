package llm

import (
	"errors"
	"fmt"
	"sort"
)

var ErrProviderExists = errors.New("provider already registered")

// Entry is one row of the provider registry.
type Entry struct {
	ID             string
	Name           string
	CredentialName string
	Provider       Provider
}

// Registry maps provider ids to their adapter and credential name. It is
// populated once at startup and only read afterwards, so it needs no lock.
type Registry struct {
	entries map[string]Entry
}

// NewRegistry builds a registry from entries. Ids must be unique and every
// entry needs an adapter and a credential name.
func NewRegistry(entries ...Entry) (*Registry, error) {
	r := &Registry{entries: make(map[string]Entry, len(entries))}
	for _, e := range entries {
		if e.ID == "" {
			return nil, errors.New("registry entry without id")
		}
		if e.Provider == nil {
			return nil, fmt.Errorf("registry entry %s: nil provider", e.ID)
		}
		if e.CredentialName == "" {
			return nil, fmt.Errorf("registry entry %s: empty credential name", e.ID)
		}
		if _, exists := r.entries[e.ID]; exists {
			return nil, fmt.Errorf("%w: %s", ErrProviderExists, e.ID)
		}
		if e.Name == "" {
			e.Name = e.ID
		}
		r.entries[e.ID] = e
	}
	return r, nil
}

// Lookup returns the entry for id. Unknown ids are not an error.
func (r *Registry) Lookup(id string) (Entry, bool) {
	e, ok := r.entries[id]
	return e, ok
}

// Entries returns all rows ordered by id.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *Registry) Len() int {
	return len(r.entries)
}
