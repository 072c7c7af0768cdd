package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// OrderingMetrics records context resolution outcomes, cart mutations and
// delivery quotes.
type OrderingMetrics struct {
	resolutions   *prometheus.CounterVec
	cartMutations *prometheus.CounterVec
	quotes        *prometheus.CounterVec
}

// NewOrderingMetrics registers the ordering metrics on the provided registerer.
func NewOrderingMetrics(reg prometheus.Registerer) *OrderingMetrics {
	if reg == nil {
		return &OrderingMetrics{}
	}
	resolutions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ordering_context_resolutions_total",
		Help: "Context resolutions by resulting kind.",
	}, []string{"kind"})
	cartMutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ordering_cart_mutations_total",
		Help: "Cart mutations by operation.",
	}, []string{"op"})
	quotes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ordering_delivery_quotes_total",
		Help: "Delivery quotes by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(resolutions, cartMutations, quotes)
	return &OrderingMetrics{
		resolutions:   resolutions,
		cartMutations: cartMutations,
		quotes:        quotes,
	}
}

// IncResolution counts a resolution ending in the given context kind.
func (m *OrderingMetrics) IncResolution(kind string) {
	if m == nil || m.resolutions == nil {
		return
	}
	m.resolutions.WithLabelValues(normalizeLabel(kind)).Inc()
}

// IncCartMutation counts one cart mutation.
func (m *OrderingMetrics) IncCartMutation(op string) {
	if m == nil || m.cartMutations == nil {
		return
	}
	m.cartMutations.WithLabelValues(normalizeLabel(op)).Inc()
}

// IncQuote counts one delivery quote by outcome.
func (m *OrderingMetrics) IncQuote(outcome string) {
	if m == nil || m.quotes == nil {
		return
	}
	m.quotes.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
