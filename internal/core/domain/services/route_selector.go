package services

import "orderflow/internal/core/domain/model/pricing"

// Route is a priced shipping route: inland transportation to a terminal and
// ocean shipping from it, both identified by the route name.
type Route struct {
	Name           string
	Transportation int64
	OceanShipping  int64
}

// Total is the combined price of both legs.
func (r Route) Total() int64 {
	return r.Transportation + r.OceanShipping
}

// RouteSelector chooses the route an order is priced with.
type RouteSelector struct{}

func NewRouteSelector() RouteSelector {
	return RouteSelector{}
}

// Cheapest returns the route with the lowest combined price among routes that
// have both a transportation and an ocean shipping price. Entries without a
// name or with a non-positive price are ignored. For a duplicated name the
// last entry's price counts while the route keeps the position of its first
// entry. Ties keep the route listed first in Transportation.
func (RouteSelector) Cheapest(b pricing.Breakdown) (Route, bool) {
	names, transportation := indexByName(b.Transportation)
	_, ocean := indexByName(b.OceanShipping)

	var (
		best  Route
		found bool
	)
	for _, name := range names {
		oceanPrice, ok := ocean[name]
		if !ok {
			continue
		}

		candidate := Route{Name: name, Transportation: transportation[name], OceanShipping: oceanPrice}
		if !found || candidate.Total() < best.Total() {
			best = candidate
			found = true
		}
	}

	return best, found
}

// indexByName returns priced entries keyed by name together with the names in
// order of first appearance.
func indexByName(entries []pricing.PricedName) ([]string, map[string]int64) {
	names := make([]string, 0, len(entries))
	index := make(map[string]int64, len(entries))
	for _, e := range entries {
		if !isPriced(e) {
			continue
		}
		if _, ok := index[e.Name]; !ok {
			names = append(names, e.Name)
		}
		index[e.Name] = e.Price
	}
	return names, index
}

func isPriced(e pricing.PricedName) bool {
	return e.Name != "" && e.Price > 0
}
