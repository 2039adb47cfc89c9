// Package pricing resolves which promotional rule discounts a price tier and
// summarises the result across a product's tiers. Everything here is a pure
// function of its inputs and an injected clock.
package pricing

import (
	"time"

	"github.com/angelmondragon/catalog-discounts/pkg/clock"
)

// Snapshot is the rule data loaded for one evaluation pass. Product-level
// discounts travel with each Tier's Product instead.
type Snapshot struct {
	Campaigns         []Campaign
	CategoryDiscounts []CategoryDiscount
}

// Windows lists every activity window in the snapshot.
func (s Snapshot) Windows() []Window {
	windows := make([]Window, 0, len(s.Campaigns)+len(s.CategoryDiscounts))
	for _, c := range s.Campaigns {
		windows = append(windows, c.Window())
	}
	for _, d := range s.CategoryDiscounts {
		windows = append(windows, d.Window)
	}
	return windows
}

// Resolver runs an ordered list of strategies and returns the first match.
type Resolver struct {
	strategies []Strategy
	clock      clock.Clock
}

// NewResolver builds a resolver over the given strategies. A nil clock falls
// back to the system clock.
func NewResolver(clk clock.Clock, strategies ...Strategy) *Resolver {
	if clk == nil {
		clk = clock.NewReal()
	}
	return &Resolver{
		strategies: append([]Strategy(nil), strategies...),
		clock:      clk,
	}
}

// NewCascade wires the standard campaign > category > product > tier order.
func NewCascade(clk clock.Clock, snapshot Snapshot) *Resolver {
	return NewResolver(clk,
		NewCampaignRule(snapshot.Campaigns),
		NewCategoryRule(snapshot.CategoryDiscounts),
		ProductRule{},
		TierRule{},
	)
}

// Now returns the resolver's notion of the current instant.
func (r *Resolver) Now() time.Time {
	return r.clock.Now()
}

// Resolve evaluates the tier at the clock's current time.
func (r *Resolver) Resolve(tier Tier) Resolution {
	return r.ResolveAt(tier, r.Now())
}

// ResolveAt evaluates the tier at now.
func (r *Resolver) ResolveAt(tier Tier, now time.Time) Resolution {
	for _, strategy := range r.strategies {
		if res, ok := strategy.TryResolve(tier, now); ok {
			return res
		}
	}
	return NoDiscount()
}
