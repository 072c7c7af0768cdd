package kv

import (
	"context"
	"errors"
)

// Scope names one of the two storage lifetimes available to guest state.
// Session-scoped entries expire with the guest's tab session so concurrent
// tabs stay isolated; durable entries survive until explicitly removed.
type Scope string

const (
	ScopeSession Scope = "session"
	ScopeDurable Scope = "durable"
)

// ErrNotFound is returned by Load when no value is stored under the key.
var ErrNotFound = errors.New("kv: key not found")

// Store is the capability handed to components that persist guest state.
type Store interface {
	Load(ctx context.Context, scope Scope, key string) ([]byte, error)
	Save(ctx context.Context, scope Scope, key string, value []byte) error
	Remove(ctx context.Context, scope Scope, key string) error
}
