// Package filter is a codec for nostr filters and the predicate that
// matches them against events. The same predicate drives both stored-event
// queries (after index pushdown) and live fan-out, so both paths agree on
// every match decision.
package filter

import (
	"strings"

	"roost.dev/pkg/encoders/event"
	"roost.dev/pkg/encoders/kind"
)

// F is one filter: the conjunction of all its present fields. Ids and
// Authors entries are lowercase hex prefixes of any length up to 64,
// odd lengths included.
type F struct {
	IDs     []string
	Authors []string
	Kinds   []kind.T
	Tags    map[string][]string
	Since   *int64
	Until   *int64
	Limit   *uint
	Search  string

	hasSearch bool
}

// S is a filter set; an event matches the set if it matches any member
// (disjunction).
type S []*F

// Match reports whether the event satisfies every constraint present in
// the filter. An empty filter matches everything.
func (f *F) Match(ev *event.E) bool {
	if len(f.IDs) > 0 && !matchPrefix(f.IDs, ev.IDHex()) {
		return false
	}
	if len(f.Authors) > 0 && !matchPrefix(f.Authors, ev.PubkeyHex()) {
		return false
	}
	if len(f.Kinds) > 0 {
		found := false
		for _, k := range f.Kinds {
			if k == ev.Kind {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Since != nil && ev.CreatedAt < *f.Since {
		return false
	}
	if f.Until != nil && ev.CreatedAt > *f.Until {
		return false
	}
	for name, values := range f.Tags {
		// an empty value set can match nothing
		if len(values) == 0 {
			return false
		}
		found := false
		for _, v := range values {
			if ev.Tags.ContainsValue(name, v) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.hasSearch && f.Search != "" && !matchSearch(ev, f.Search) {
		return false
	}
	return true
}

func matchPrefix(prefixes []string, hexValue string) bool {
	for _, p := range prefixes {
		if len(p) <= len(hexValue) && strings.HasPrefix(hexValue, p) {
			return true
		}
	}
	return false
}

func matchSearch(ev *event.E, term string) bool {
	term = strings.ToLower(term)
	if strings.Contains(strings.ToLower(ev.Content), term) {
		return true
	}
	for _, tag := range ev.Tags {
		for _, el := range tag[1:] {
			if strings.Contains(strings.ToLower(el), term) {
				return true
			}
		}
	}
	return false
}

// Match reports whether the event matches any filter in the set.
func (s S) Match(ev *event.E) bool {
	for _, f := range s {
		if f.Match(ev) {
			return true
		}
	}
	return false
}

// CapLimits clamps every per-filter limit to max.
func (s S) CapLimits(max uint) {
	for _, f := range s {
		if f.Limit != nil && *f.Limit > max {
			l := max
			f.Limit = &l
		}
	}
}
