package ordering

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/pousadahub/ordering-backend/pkg/db/models"
)

// NoticeCode classifies the non-fatal diagnostics a resolution pass surfaces.
type NoticeCode string

const (
	NoticeSlugNotFound     NoticeCode = "slug_not_found"
	NoticePartnerNotFound  NoticeCode = "partner_not_found"
	NoticeDirectoryPending NoticeCode = "directory_pending"
)

// Notice is a user-visible diagnostic attached to a resolution. Notices never
// abort the pass; the precedence rules decide what happens next.
type Notice struct {
	Code    NoticeCode `json:"code"`
	Message string     `json:"message"`
}

type partnerLookup interface {
	BySlug(slug string) (models.PartnerLocation, bool)
	ByID(id uuid.UUID) (models.PartnerLocation, bool)
}

// StoredState is the persisted guest state a resolution pass reads.
type StoredState struct {
	DeliveryFlag    bool
	SessionPartner  *models.PartnerLocation
	FallbackPartner *models.PartnerLocation
}

// effects describe the storage writes to apply once a decision is made.
// Keeping them out of decide keeps the precedence chain pure and testable.
type effects struct {
	persistPartner   *models.PartnerLocation // session + durable fallback snapshot
	clearPartners    bool                    // drop session and fallback selections
	setDeliveryFlag  bool
	clearDeliveryFlg bool
}

type outcome struct {
	context Context
	notices []Notice
	effects effects
}

// decide runs the precedence chain over the signals, the stored state and the
// partner directory. It is a pure function: same inputs, same outcome.
//
// Precedence, highest first, each rule short-circuiting the rest:
//  1. URL slug, when it matches a directory entry.
//  2. URL partner identifier, when it matches. An unmatched identifier either
//     halts the pass or falls through, per policy.
//  3. URL delivery flag.
//  4. Stored delivery flag from a previous visit.
//  5. Stored partner selection (session first, then the durable fallback),
//     used as-is without re-validating against the directory.
//  6. Unresolved.
func decide(sig Signals, stored StoredState, dir partnerLookup, haltOnUnknownPartner bool) outcome {
	var notices []Notice

	if sig.Slug != "" {
		if partner, ok := dir.BySlug(sig.Slug); ok {
			return resolvedAtPartner(partner, notices)
		}
		notices = append(notices, Notice{
			Code:    NoticeSlugNotFound,
			Message: fmt.Sprintf("no partner with slug %q", sig.Slug),
		})
	}

	if sig.PartnerID != "" {
		partner, ok := lookupByID(dir, sig.PartnerID)
		if ok {
			return resolvedAtPartner(partner, notices)
		}
		notices = append(notices, Notice{
			Code:    NoticePartnerNotFound,
			Message: "partner not found",
		})
		if haltOnUnknownPartner {
			// An explicit link to an unknown partner is treated as
			// authoritative: do not degrade to a previously stored context.
			return outcome{context: Unresolved(), notices: notices}
		}
	}

	if sig.Delivery {
		return outcome{
			context: Delivery(),
			notices: notices,
			effects: effects{clearPartners: true, setDeliveryFlag: true},
		}
	}

	if stored.DeliveryFlag {
		return outcome{context: Delivery(), notices: notices}
	}

	if stored.SessionPartner != nil {
		return outcome{context: AtPartner(*stored.SessionPartner), notices: notices}
	}
	if stored.FallbackPartner != nil {
		return outcome{context: AtPartner(*stored.FallbackPartner), notices: notices}
	}

	return outcome{context: Unresolved(), notices: notices}
}

func resolvedAtPartner(partner models.PartnerLocation, notices []Notice) outcome {
	p := partner
	return outcome{
		context: AtPartner(partner),
		notices: notices,
		effects: effects{persistPartner: &p, clearDeliveryFlg: true},
	}
}

func lookupByID(dir partnerLookup, raw string) (models.PartnerLocation, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return models.PartnerLocation{}, false
	}
	return dir.ByID(id)
}
