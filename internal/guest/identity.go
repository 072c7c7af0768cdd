package guest

import "context"

// Identity carries the two IDs a guest visit runs under: SessionID lives as
// long as the tab session, DeviceID survives across visits. They back the
// session and durable storage scopes respectively.
type Identity struct {
	SessionID string
	DeviceID  string
}

func (id Identity) Valid() bool {
	return id.SessionID != "" && id.DeviceID != ""
}

type ctxKey struct{}

// WithIdentity attaches the identity to the request context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the identity attached by the session middleware.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok && id.Valid()
}
