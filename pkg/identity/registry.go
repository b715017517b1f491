package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a name has no registry entry, either because
// it was never computed or because the store evicted it.
var ErrNotFound = errors.New("thumbnail name not found")

// Store is the key-value backend of the registry.
type Store interface {
	// Get returns the value for key or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)
	// Add stores value unless key is already present.
	Add(ctx context.Context, key, value string) error
}

// Registry maps names back to the request they were computed from.
type Registry struct {
	store  Store
	prefix string
}

// NewRegistry creates a registry on top of store. An empty prefix falls back to
// DefaultPrefix.
func NewRegistry(store Store, prefix string) *Registry {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Registry{store: store, prefix: prefix}
}

// Name computes the name of a request and registers it. Registering is
// idempotent: equal names always carry equal payloads.
func (r *Registry) Name(ctx context.Context, source string, opts map[string]any) (string, error) {
	name, payload, err := Compute(source, opts)
	if err != nil {
		return "", fmt.Errorf("computing name for %s: %w", source, err)
	}

	if err := r.store.Add(ctx, CacheKey(r.prefix, name), string(payload)); err != nil {
		return "", fmt.Errorf("registering %s: %w", name, err)
	}
	return name, nil
}

// Resolve returns the source and options a name was computed from. Numbers in
// the options are returned as json.Number.
func (r *Registry) Resolve(ctx context.Context, name string) (string, map[string]any, error) {
	raw, err := r.store.Get(ctx, CacheKey(r.prefix, name))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return "", nil, fmt.Errorf("looking up %s: %w", name, err)
	}

	var data struct {
		Source *string        `json:"source"`
		Opts   map[string]any `json:"opts"`
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()
	if err := dec.Decode(&data); err != nil {
		return "", nil, fmt.Errorf("decoding registry entry %s: %w", name, err)
	}
	if data.Source == nil {
		return "", nil, fmt.Errorf("registry entry %s has no source", name)
	}
	if data.Opts == nil {
		data.Opts = map[string]any{}
	}
	return *data.Source, data.Opts, nil
}
