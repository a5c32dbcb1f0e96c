package workerreg

import (
	"context"
	"fmt"

	"github.com/randalmurphal/workerreg/pkg/workerreg/kv"
	"github.com/randalmurphal/workerreg/pkg/workerreg/table"
)

// directory holds every running registry by identity.
var directory = table.New[string, *Registry]()

// Whereis returns the running registry started under identity.
func Whereis(identity string) (*Registry, bool) {
	return directory.Get(identity)
}

// Lookup finds name in the registry started under identity.
// It returns false if either is unknown.
func Lookup(identity, name string) (*kv.Worker, bool) {
	r, ok := Whereis(identity)
	if !ok {
		return nil, false
	}
	return r.Lookup(name)
}

// Create calls Create on the registry started under identity.
func Create(ctx context.Context, identity, name string) (*kv.Worker, error) {
	r, ok := Whereis(identity)
	if !ok {
		return nil, fmt.Errorf("registry %q: %w", identity, ErrNotRunning)
	}
	return r.Create(ctx, name)
}
