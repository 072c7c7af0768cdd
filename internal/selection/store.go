package selection

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/pousadahub/ordering-backend/pkg/db/models"
	"github.com/pousadahub/ordering-backend/pkg/kv"
	"github.com/pousadahub/ordering-backend/pkg/logger"
)

const (
	partnerKey  = "partner"
	deliveryKey = "delivery"
)

// Store persists guest selections as JSON across the two kv scopes. A stored
// value that no longer parses is treated as absent: it is logged and will be
// overwritten by the next save, never surfaced to the caller.
type Store struct {
	kv   kv.Store
	logg *logger.Logger
}

func NewStore(store kv.Store, logg *logger.Logger) *Store {
	return &Store{kv: store, logg: logg}
}

// Get unmarshals the value under key into dest. The boolean reports presence;
// malformed payloads count as absent.
func (s *Store) Get(ctx context.Context, scope kv.Scope, key string, dest any) (bool, error) {
	raw, err := s.kv.Load(ctx, scope, key)
	if errors.Is(err, kv.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		if s.logg != nil {
			ctx = s.logg.WithField(ctx, "key", key)
			s.logg.Warn(ctx, "discarding malformed persisted selection")
		}
		return false, nil
	}
	return true, nil
}

// Put marshals value and writes it under key.
func (s *Store) Put(ctx context.Context, scope kv.Scope, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.kv.Save(ctx, scope, key, raw)
}

// Drop removes the entry; absent keys are a no-op.
func (s *Store) Drop(ctx context.Context, scope kv.Scope, key string) error {
	return s.kv.Remove(ctx, scope, key)
}

// SessionPartner returns the partner snapshot selected in this tab session.
func (s *Store) SessionPartner(ctx context.Context, sessionID string) (*models.PartnerLocation, error) {
	var partner models.PartnerLocation
	ok, err := s.Get(ctx, kv.ScopeSession, sessionID+":"+partnerKey, &partner)
	if err != nil || !ok {
		return nil, err
	}
	return &partner, nil
}

// SaveSessionPartner snapshots the partner for the tab session.
func (s *Store) SaveSessionPartner(ctx context.Context, sessionID string, partner models.PartnerLocation) error {
	return s.Put(ctx, kv.ScopeSession, sessionID+":"+partnerKey, partner)
}

// ClearSessionPartner drops the tab-session partner selection.
func (s *Store) ClearSessionPartner(ctx context.Context, sessionID string) error {
	return s.Drop(ctx, kv.ScopeSession, sessionID+":"+partnerKey)
}

// FallbackPartner returns the durable partner snapshot persisted for the
// guest's device.
func (s *Store) FallbackPartner(ctx context.Context, deviceID string) (*models.PartnerLocation, error) {
	var partner models.PartnerLocation
	ok, err := s.Get(ctx, kv.ScopeDurable, deviceID+":"+partnerKey, &partner)
	if err != nil || !ok {
		return nil, err
	}
	return &partner, nil
}

// SaveFallbackPartner persists the durable partner snapshot.
func (s *Store) SaveFallbackPartner(ctx context.Context, deviceID string, partner models.PartnerLocation) error {
	return s.Put(ctx, kv.ScopeDurable, deviceID+":"+partnerKey, partner)
}

// ClearFallbackPartner drops the durable partner snapshot.
func (s *Store) ClearFallbackPartner(ctx context.Context, deviceID string) error {
	return s.Drop(ctx, kv.ScopeDurable, deviceID+":"+partnerKey)
}

// DeliveryMode reports the durable "remember delivery" flag.
func (s *Store) DeliveryMode(ctx context.Context, deviceID string) (bool, error) {
	var flag bool
	ok, err := s.Get(ctx, kv.ScopeDurable, deviceID+":"+deliveryKey, &flag)
	if err != nil || !ok {
		return false, err
	}
	return flag, nil
}

// SetDeliveryMode persists or clears the durable delivery flag.
func (s *Store) SetDeliveryMode(ctx context.Context, deviceID string, on bool) error {
	key := deviceID + ":" + deliveryKey
	if !on {
		return s.Drop(ctx, kv.ScopeDurable, key)
	}
	return s.Put(ctx, kv.ScopeDurable, key, true)
}
