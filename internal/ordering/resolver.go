package ordering

import (
	"context"
	"fmt"
	"net/url"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/pousadahub/ordering-backend/internal/guest"
	"github.com/pousadahub/ordering-backend/pkg/config"
	"github.com/pousadahub/ordering-backend/pkg/db/models"
	pkgerrors "github.com/pousadahub/ordering-backend/pkg/errors"
	"github.com/pousadahub/ordering-backend/pkg/logger"
	"github.com/pousadahub/ordering-backend/pkg/metrics"
)

type directory interface {
	partnerLookup
	Loaded() bool
}

type selectionStore interface {
	SessionPartner(ctx context.Context, sessionID string) (*models.PartnerLocation, error)
	SaveSessionPartner(ctx context.Context, sessionID string, partner models.PartnerLocation) error
	ClearSessionPartner(ctx context.Context, sessionID string) error
	FallbackPartner(ctx context.Context, deviceID string) (*models.PartnerLocation, error)
	SaveFallbackPartner(ctx context.Context, deviceID string, partner models.PartnerLocation) error
	ClearFallbackPartner(ctx context.Context, deviceID string) error
	DeliveryMode(ctx context.Context, deviceID string) (bool, error)
	SetDeliveryMode(ctx context.Context, deviceID string, on bool) error
}

// Resolution is the outcome of one resolver operation: the settled context,
// any user-visible notices, and the canonical URL query the client should
// reflect. The server cannot rewrite the browser URL, so it hands it back.
type Resolution struct {
	Context Context    `json:"context"`
	Notices []Notice   `json:"notices,omitempty"`
	Query   url.Values `json:"query"`
}

// Resolver reconciles navigation signals, persisted guest state and the
// partner directory into exactly one ordering context per pass. One instance
// serves all sessions; all per-guest state lives in the selection store.
type Resolver struct {
	directory directory
	store     selectionStore
	policy    config.ResolverConfig
	metrics   *metrics.OrderingMetrics
	logg      *logger.Logger
}

func NewResolver(dir directory, store selectionStore, policy config.ResolverConfig, m *metrics.OrderingMetrics, logg *logger.Logger) (*Resolver, error) {
	if dir == nil {
		return nil, fmt.Errorf("partner directory required")
	}
	if store == nil {
		return nil, fmt.Errorf("selection store required")
	}
	return &Resolver{
		directory: dir,
		store:     store,
		policy:    policy,
		metrics:   m,
		logg:      logg,
	}, nil
}

// Resolve runs the precedence chain for the guest against the given URL query
// and persists the result. Re-running with unchanged inputs yields the same
// context.
func (r *Resolver) Resolve(ctx context.Context, id guest.Identity, query url.Values) (Resolution, error) {
	if !id.Valid() {
		return Resolution{}, pkgerrors.New(pkgerrors.CodeValidation, "guest identity is required")
	}

	if !r.directory.Loaded() {
		// Resolution is gated on the directory load; callers re-run once it
		// completes.
		return Resolution{
			Context: Unresolved(),
			Notices: []Notice{{Code: NoticeDirectoryPending, Message: "partner directory is still loading"}},
			Query:   url.Values{},
		}, nil
	}

	stored, err := r.loadStoredState(ctx, id)
	if err != nil {
		return Resolution{}, err
	}

	out := decide(ParseSignals(query), stored, r.directory, r.policy.HaltOnUnknownPartner())

	if err := r.applyEffects(ctx, id, out.effects); err != nil {
		return Resolution{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist ordering context")
	}

	r.metrics.IncResolution(string(out.context.Kind))
	if r.logg != nil && out.context.IsAtPartner() {
		ctx = r.logg.WithPartnerID(ctx, out.context.Partner.ID.String())
		r.logg.Info(ctx, "ordering context resolved")
	}

	return Resolution{
		Context: out.context,
		Notices: out.notices,
		Query:   canonicalQuery(out.context),
	}, nil
}

// Current reports the context that stored state alone resolves to, without
// URL signals and without writing anything.
func (r *Resolver) Current(ctx context.Context, id guest.Identity) (Resolution, error) {
	return r.Resolve(ctx, id, url.Values{})
}

// SetContext applies an explicit guest selection: a partner ID resolves to
// that partner, nil selects delivery mode.
func (r *Resolver) SetContext(ctx context.Context, id guest.Identity, partnerID *uuid.UUID) (Resolution, error) {
	if !id.Valid() {
		return Resolution{}, pkgerrors.New(pkgerrors.CodeValidation, "guest identity is required")
	}

	if partnerID == nil {
		eff := effects{setDeliveryFlag: true}
		if err := r.store.ClearSessionPartner(ctx, id.SessionID); err != nil {
			return Resolution{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear partner selection")
		}
		if err := r.applyEffects(ctx, id, eff); err != nil {
			return Resolution{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist delivery mode")
		}
		resolved := Delivery()
		r.metrics.IncResolution(string(resolved.Kind))
		return Resolution{Context: resolved, Query: canonicalQuery(resolved)}, nil
	}

	partner, ok := r.directory.ByID(*partnerID)
	if !ok {
		return Resolution{}, pkgerrors.New(pkgerrors.CodeNotFound, "partner not found")
	}

	p := partner
	if err := r.applyEffects(ctx, id, effects{persistPartner: &p, clearDeliveryFlg: true}); err != nil {
		return Resolution{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist partner selection")
	}

	resolved := AtPartner(partner)
	r.metrics.IncResolution(string(resolved.Kind))
	return Resolution{Context: resolved, Query: canonicalQuery(resolved)}, nil
}

// Reset forces the context back to unresolved and clears both storage scopes.
// The returned resolution carries an empty canonical query so the client can
// also drop its URL parameters.
func (r *Resolver) Reset(ctx context.Context, id guest.Identity) (Resolution, error) {
	if !id.Valid() {
		return Resolution{}, pkgerrors.New(pkgerrors.CodeValidation, "guest identity is required")
	}

	err := multierr.Combine(
		r.store.ClearSessionPartner(ctx, id.SessionID),
		r.store.ClearFallbackPartner(ctx, id.DeviceID),
		r.store.SetDeliveryMode(ctx, id.DeviceID, false),
	)
	if err != nil {
		return Resolution{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear guest selections")
	}

	r.metrics.IncResolution(string(KindUnresolved))
	return Resolution{Context: Unresolved(), Query: url.Values{}}, nil
}

func (r *Resolver) loadStoredState(ctx context.Context, id guest.Identity) (StoredState, error) {
	deliveryFlag, err := r.store.DeliveryMode(ctx, id.DeviceID)
	if err != nil {
		return StoredState{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load delivery flag")
	}
	sessionPartner, err := r.store.SessionPartner(ctx, id.SessionID)
	if err != nil {
		return StoredState{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load session partner")
	}
	fallbackPartner, err := r.store.FallbackPartner(ctx, id.DeviceID)
	if err != nil {
		return StoredState{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load fallback partner")
	}
	return StoredState{
		DeliveryFlag:    deliveryFlag,
		SessionPartner:  sessionPartner,
		FallbackPartner: fallbackPartner,
	}, nil
}

func (r *Resolver) applyEffects(ctx context.Context, id guest.Identity, eff effects) error {
	var err error
	if eff.persistPartner != nil {
		err = multierr.Append(err, r.store.SaveSessionPartner(ctx, id.SessionID, *eff.persistPartner))
		err = multierr.Append(err, r.store.SaveFallbackPartner(ctx, id.DeviceID, *eff.persistPartner))
	}
	if eff.clearPartners {
		err = multierr.Append(err, r.store.ClearSessionPartner(ctx, id.SessionID))
		err = multierr.Append(err, r.store.ClearFallbackPartner(ctx, id.DeviceID))
	}
	if eff.setDeliveryFlag {
		err = multierr.Append(err, r.store.SetDeliveryMode(ctx, id.DeviceID, true))
	}
	if eff.clearDeliveryFlg {
		err = multierr.Append(err, r.store.SetDeliveryMode(ctx, id.DeviceID, false))
	}
	return err
}
