package ordering

import (
	"github.com/pousadahub/ordering-backend/pkg/db/models"
)

// Kind names the resolved ordering mode for a guest session.
type Kind string

const (
	KindUnresolved Kind = "unresolved"
	KindAtPartner  Kind = "at_partner"
	KindDelivery   Kind = "delivery"
)

// Context is the resolved ordering context: exactly one of unresolved,
// at-partner or delivery. Partner is set only when Kind is KindAtPartner.
type Context struct {
	Kind    Kind                    `json:"kind"`
	Partner *models.PartnerLocation `json:"partner,omitempty"`
}

func Unresolved() Context {
	return Context{Kind: KindUnresolved}
}

func AtPartner(partner models.PartnerLocation) Context {
	p := partner
	return Context{Kind: KindAtPartner, Partner: &p}
}

func Delivery() Context {
	return Context{Kind: KindDelivery}
}

func (c Context) IsAtPartner() bool {
	return c.Kind == KindAtPartner && c.Partner != nil
}

func (c Context) IsDelivery() bool {
	return c.Kind == KindDelivery
}

func (c Context) IsResolved() bool {
	return c.Kind == KindAtPartner || c.Kind == KindDelivery
}
