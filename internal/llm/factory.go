package llm

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/nulzo/prism-fanout/internal/config"
)

var ErrUnknownType = errors.New("no adapter registered for provider type")

// Factory builds an adapter from its configuration row.
type Factory func(cfg config.ProviderConfig) (Provider, error)

var factories = struct {
	sync.RWMutex
	m map[string]Factory
}{m: make(map[string]Factory)}

// Register makes a factory available under providerType. Vendor packages call
// it from init, so a duplicate is a programming error and panics.
func Register(providerType string, f Factory) {
	factories.Lock()
	defer factories.Unlock()
	if _, exists := factories.m[providerType]; exists {
		panic(fmt.Sprintf("llm: adapter type %q registered twice", providerType))
	}
	factories.m[providerType] = f
}

// Get returns the factory for providerType. The error lists the known types.
func Get(providerType string) (Factory, error) {
	factories.RLock()
	defer factories.RUnlock()
	if f, ok := factories.m[providerType]; ok {
		return f, nil
	}
	return nil, fmt.Errorf("%w: %q (known: %s)", ErrUnknownType, providerType, strings.Join(typesLocked(), ", "))
}

// Types lists the registered adapter types in sorted order.
func Types() []string {
	factories.RLock()
	defer factories.RUnlock()
	return typesLocked()
}

func typesLocked() []string {
	out := make([]string, 0, len(factories.m))
	for t := range factories.m {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// CreateProvider builds the adapter for one registry row.
func CreateProvider(cfg config.ProviderConfig) (Provider, error) {
	factory, err := Get(cfg.Type)
	if err != nil {
		return nil, err
	}
	p, err := factory(cfg)
	if err != nil {
		return nil, fmt.Errorf("build %s adapter: %w", cfg.Type, err)
	}
	return p, nil
}
