package ordering

import (
	"context"
	"net/url"
	"testing"

	"github.com/google/uuid"

	"github.com/pousadahub/ordering-backend/internal/guest"
	"github.com/pousadahub/ordering-backend/internal/selection"
	"github.com/pousadahub/ordering-backend/pkg/config"
	"github.com/pousadahub/ordering-backend/pkg/db/models"
	pkgerrors "github.com/pousadahub/ordering-backend/pkg/errors"
	"github.com/pousadahub/ordering-backend/pkg/kv"
)

type stubDirectory struct {
	stubLookup
	loaded bool
}

func (s stubDirectory) Loaded() bool { return s.loaded }

func directoryFor(partners ...models.PartnerLocation) stubDirectory {
	return stubDirectory{stubLookup: lookupFor(partners...), loaded: true}
}

func newTestResolver(t *testing.T, dir directory, policy string) (*Resolver, *selection.Store) {
	t.Helper()
	store := selection.NewStore(kv.NewMemoryStore(), nil)
	resolver, err := NewResolver(dir, store, config.ResolverConfig{UnknownPartnerPolicy: policy}, nil, nil)
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}
	return resolver, store
}

func testIdentity() guest.Identity {
	return guest.Identity{SessionID: uuid.NewString(), DeviceID: uuid.NewString()}
}

func TestResolverPersistsPartnerFromSlug(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	adega := newTestPartner("Adega Acai", "adega-acai")
	resolver, store := newTestResolver(t, directoryFor(adega), config.UnknownPartnerHalt)
	id := testIdentity()

	res, err := resolver.Resolve(ctx, id, url.Values{ParamSlug: {"adega-acai"}})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !res.Context.IsAtPartner() || res.Context.Partner.ID != adega.ID {
		t.Fatalf("expected at_partner, got %+v", res.Context)
	}
	if got := res.Query.Encode(); got != "pousada=adega-acai" {
		t.Fatalf("canonical query: got %q", got)
	}

	session, err := store.SessionPartner(ctx, id.SessionID)
	if err != nil || session == nil || session.ID != adega.ID {
		t.Fatalf("session snapshot not persisted: %v %+v", err, session)
	}
	fallback, err := store.FallbackPartner(ctx, id.DeviceID)
	if err != nil || fallback == nil || fallback.ID != adega.ID {
		t.Fatalf("durable snapshot not persisted: %v %+v", err, fallback)
	}
}

func TestResolverSurvivesSessionLossViaFallback(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	adega := newTestPartner("Adega Acai", "adega-acai")
	resolver, store := newTestResolver(t, directoryFor(adega), config.UnknownPartnerHalt)
	id := testIdentity()

	if _, err := resolver.Resolve(ctx, id, url.Values{ParamSlug: {"adega-acai"}}); err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	// Simulates a new tab session on the same device.
	if err := store.ClearSessionPartner(ctx, id.SessionID); err != nil {
		t.Fatalf("ClearSessionPartner: %v", err)
	}

	res, err := resolver.Current(ctx, id)
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if !res.Context.IsAtPartner() || res.Context.Partner.ID != adega.ID {
		t.Fatalf("expected durable fallback to restore the partner, got %+v", res.Context)
	}
}

func TestResolverDeliverySignalReplacesPartner(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	adega := newTestPartner("Adega Acai", "adega-acai")
	resolver, store := newTestResolver(t, directoryFor(adega), config.UnknownPartnerHalt)
	id := testIdentity()

	if _, err := resolver.Resolve(ctx, id, url.Values{ParamSlug: {"adega-acai"}}); err != nil {
		t.Fatalf("Resolve partner: %v", err)
	}
	res, err := resolver.Resolve(ctx, id, url.Values{ParamDelivery: {"1"}})
	if err != nil {
		t.Fatalf("Resolve delivery: %v", err)
	}
	if !res.Context.IsDelivery() {
		t.Fatalf("expected delivery, got %+v", res.Context)
	}
	if got := res.Query.Encode(); got != "delivery=1" {
		t.Fatalf("canonical query: got %q", got)
	}

	if p, err := store.SessionPartner(ctx, id.SessionID); err != nil || p != nil {
		t.Fatalf("session partner should be cleared: %v %+v", err, p)
	}
	if p, err := store.FallbackPartner(ctx, id.DeviceID); err != nil || p != nil {
		t.Fatalf("fallback partner should be cleared: %v %+v", err, p)
	}
	if on, err := store.DeliveryMode(ctx, id.DeviceID); err != nil || !on {
		t.Fatalf("delivery flag should persist: %v %v", err, on)
	}
}

func TestResolverCurrentIsReadOnlyAndIdempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	adega := newTestPartner("Adega Acai", "adega-acai")
	resolver, _ := newTestResolver(t, directoryFor(adega), config.UnknownPartnerHalt)
	id := testIdentity()

	if _, err := resolver.Resolve(ctx, id, url.Values{ParamSlug: {"adega-acai"}}); err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	first, err := resolver.Current(ctx, id)
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	second, err := resolver.Current(ctx, id)
	if err != nil {
		t.Fatalf("Current again: %v", err)
	}
	if first.Context.Kind != second.Context.Kind || first.Context.Partner.ID != second.Context.Partner.ID {
		t.Fatalf("re-running without new signals changed the context: %+v vs %+v", first.Context, second.Context)
	}
}

func TestResolverUnknownPartnerPolicies(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	adega := newTestPartner("Adega Acai", "adega-acai")

	t.Run("halt keeps the session unresolved", func(t *testing.T) {
		t.Parallel()

		resolver, store := newTestResolver(t, directoryFor(adega), config.UnknownPartnerHalt)
		id := testIdentity()
		if err := store.SaveSessionPartner(ctx, id.SessionID, adega); err != nil {
			t.Fatalf("SaveSessionPartner: %v", err)
		}

		res, err := resolver.Resolve(ctx, id, url.Values{ParamPartnerID: {uuid.NewString()}})
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if res.Context.Kind != KindUnresolved {
			t.Fatalf("expected unresolved, got %+v", res.Context)
		}
		if len(res.Notices) != 1 || res.Notices[0].Code != NoticePartnerNotFound {
			t.Fatalf("expected partner_not_found notice, got %v", res.Notices)
		}
	})

	t.Run("fallthrough degrades to stored state", func(t *testing.T) {
		t.Parallel()

		resolver, store := newTestResolver(t, directoryFor(adega), config.UnknownPartnerFallthrough)
		id := testIdentity()
		if err := store.SaveSessionPartner(ctx, id.SessionID, adega); err != nil {
			t.Fatalf("SaveSessionPartner: %v", err)
		}

		res, err := resolver.Resolve(ctx, id, url.Values{ParamPartnerID: {uuid.NewString()}})
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if !res.Context.IsAtPartner() || res.Context.Partner.ID != adega.ID {
			t.Fatalf("expected stored partner, got %+v", res.Context)
		}
	})
}

func TestResolverReportsDirectoryPending(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	resolver, _ := newTestResolver(t, stubDirectory{stubLookup: lookupFor(), loaded: false}, config.UnknownPartnerHalt)

	res, err := resolver.Resolve(ctx, testIdentity(), url.Values{ParamSlug: {"adega-acai"}})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Context.Kind != KindUnresolved {
		t.Fatalf("expected unresolved while loading, got %+v", res.Context)
	}
	if len(res.Notices) != 1 || res.Notices[0].Code != NoticeDirectoryPending {
		t.Fatalf("expected directory_pending notice, got %v", res.Notices)
	}
}

func TestResolverSetContext(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	adega := newTestPartner("Adega Acai", "adega-acai")
	resolver, store := newTestResolver(t, directoryFor(adega), config.UnknownPartnerHalt)
	id := testIdentity()

	res, err := resolver.SetContext(ctx, id, &adega.ID)
	if err != nil {
		t.Fatalf("SetContext partner: %v", err)
	}
	if !res.Context.IsAtPartner() || res.Context.Partner.ID != adega.ID {
		t.Fatalf("expected at_partner, got %+v", res.Context)
	}

	res, err = resolver.SetContext(ctx, id, nil)
	if err != nil {
		t.Fatalf("SetContext delivery: %v", err)
	}
	if !res.Context.IsDelivery() {
		t.Fatalf("expected delivery, got %+v", res.Context)
	}
	if p, err := store.SessionPartner(ctx, id.SessionID); err != nil || p != nil {
		t.Fatalf("session partner should be cleared: %v %+v", err, p)
	}

	unknown := uuid.New()
	if _, err := resolver.SetContext(ctx, id, &unknown); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND for unknown partner, got %v", err)
	}
}

func TestResolverReset(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	adega := newTestPartner("Adega Acai", "adega-acai")
	resolver, store := newTestResolver(t, directoryFor(adega), config.UnknownPartnerHalt)
	id := testIdentity()

	if _, err := resolver.Resolve(ctx, id, url.Values{ParamSlug: {"adega-acai"}}); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if _, err := resolver.Resolve(ctx, id, url.Values{ParamDelivery: {"1"}}); err != nil {
		t.Fatalf("Resolve delivery: %v", err)
	}

	res, err := resolver.Reset(ctx, id)
	if err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if res.Context.Kind != KindUnresolved {
		t.Fatalf("expected unresolved after reset, got %+v", res.Context)
	}
	if got := res.Query.Encode(); got != "" {
		t.Fatalf("reset canonical query should be empty, got %q", got)
	}

	after, err := resolver.Current(ctx, id)
	if err != nil {
		t.Fatalf("Current after reset: %v", err)
	}
	if after.Context.Kind != KindUnresolved {
		t.Fatalf("state survived the reset: %+v", after.Context)
	}

	if on, err := store.DeliveryMode(ctx, id.DeviceID); err != nil || on {
		t.Fatalf("delivery flag should be cleared: %v %v", err, on)
	}
}

func TestResolverRejectsMissingIdentity(t *testing.T) {
	t.Parallel()

	resolver, _ := newTestResolver(t, directoryFor(), config.UnknownPartnerHalt)

	_, err := resolver.Resolve(context.Background(), guest.Identity{}, url.Values{})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}
