package ordering

import (
	"net/url"
	"strings"
)

// URL query parameters carried by guest links. A well-formed link carries at
// most one of them; precedence handles the rest.
const (
	ParamSlug      = "pousada"
	ParamPartnerID = "pousada_id"
	ParamDelivery  = "delivery"
)

// Signals are the navigational inputs to one resolution pass.
type Signals struct {
	Slug      string
	PartnerID string
	Delivery  bool
}

// ParseSignals extracts the resolution signals from URL query values.
func ParseSignals(values url.Values) Signals {
	return Signals{
		Slug:      strings.TrimSpace(values.Get(ParamSlug)),
		PartnerID: strings.TrimSpace(values.Get(ParamPartnerID)),
		Delivery:  parseBool(values.Get(ParamDelivery)),
	}
}

func (s Signals) Empty() bool {
	return s.Slug == "" && s.PartnerID == "" && !s.Delivery
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes":
		return true
	}
	return false
}

// canonicalQuery returns the URL parameters a client should navigate to after
// the context settled on the given resolution.
func canonicalQuery(c Context) url.Values {
	values := url.Values{}
	switch {
	case c.IsAtPartner():
		if c.Partner.Slug != nil && *c.Partner.Slug != "" {
			values.Set(ParamSlug, *c.Partner.Slug)
		} else {
			values.Set(ParamPartnerID, c.Partner.ID.String())
		}
	case c.IsDelivery():
		values.Set(ParamDelivery, "1")
	}
	return values
}
