package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/catalog-discounts/pkg/enums"
)

const (
	CacheHit  = "hit"
	CacheMiss = "miss"
)

// PricingMetrics counts discount outcomes and response cache lookups.
type PricingMetrics struct {
	resolutions *prometheus.CounterVec
	cache       *prometheus.CounterVec
}

// NewPricingMetrics registers the pricing metrics on the provided registerer.
func NewPricingMetrics(reg prometheus.Registerer) *PricingMetrics {
	if reg == nil {
		return &PricingMetrics{}
	}
	resolutions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "discount_resolutions_total",
		Help: "Tier discount resolutions by winning source.",
	}, []string{"source"})
	cache := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_cache_requests_total",
		Help: "Response cache lookups by key prefix and result.",
	}, []string{"prefix", "result"})
	reg.MustRegister(resolutions, cache)
	return &PricingMetrics{resolutions: resolutions, cache: cache}
}

// ObserveResolution counts one resolved tier.
func (m *PricingMetrics) ObserveResolution(source enums.DiscountSource) {
	if m == nil || m.resolutions == nil {
		return
	}
	m.resolutions.WithLabelValues(normalizeLabel(source.String())).Inc()
}

// ObserveCache counts one cache lookup.
func (m *PricingMetrics) ObserveCache(prefix string, hit bool) {
	if m == nil || m.cache == nil {
		return
	}
	result := CacheMiss
	if hit {
		result = CacheHit
	}
	m.cache.WithLabelValues(normalizeLabel(prefix), result).Inc()
}
