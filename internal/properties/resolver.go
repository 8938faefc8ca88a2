// Package properties maps inbound routing hints to property identifiers and
// property identifiers to cities, via an ordered declarative rule table.
// Keeping this outside the retrieval pipeline lets deployments swap the
// mapping strategy without touching retrieval or composition.
package properties

import "strings"

// Rule matches a case-insensitive substring against an input and yields a
// value (a property id or a city name, depending on the table).
type Rule struct {
	Match string
	Value string
}

// Resolver resolves property ids from routing hints and cities from property
// ids. A zero hit falls through to the configured default.
type Resolver struct {
	propertyRules   []Rule
	cityRules       []Rule
	defaultProperty string
	defaultCity     string
}

// New creates a Resolver with the given rule tables and fallbacks.
func New(propertyRules, cityRules []Rule, defaultProperty, defaultCity string) *Resolver {
	if defaultCity == "" {
		defaultCity = "the local area"
	}
	return &Resolver{
		propertyRules:   propertyRules,
		cityRules:       cityRules,
		defaultProperty: defaultProperty,
		defaultCity:     defaultCity,
	}
}

// DefaultCityRules covers the launch markets.
var DefaultCityRules = []Rule{
	{Match: "bali", Value: "Bali"},
	{Match: "nelayan", Value: "Bali"},
	{Match: "seminyak", Value: "Bali"},
	{Match: "ubud", Value: "Bali"},
	{Match: "canggu", Value: "Bali"},
	{Match: "dubai", Value: "Dubai"},
}

// PropertyFor resolves the property id for an inbound routing hint, such as
// the recipient phone number or the webhook path segment. The first matching
// rule wins; no match yields the default property id.
func (r *Resolver) PropertyFor(hint string) string {
	if v, ok := match(r.propertyRules, hint); ok {
		return v
	}
	return r.defaultProperty
}

// CityFor resolves the city for a property id, used to scope general local
// questions when no property context is retrieved.
func (r *Resolver) CityFor(propertyID string) string {
	if v, ok := match(r.cityRules, propertyID); ok {
		return v
	}
	return r.defaultCity
}

func match(rules []Rule, input string) (string, bool) {
	lower := strings.ToLower(input)
	for _, rule := range rules {
		if rule.Match == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(rule.Match)) {
			return rule.Value, true
		}
	}
	return "", false
}
