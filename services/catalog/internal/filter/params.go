package filter

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/Skotchmaster/marketplace/internal/models"
)

// Params are the raw, optional listing parameters as they arrive in the query string.
type Params struct {
	Q          string
	Tags       string
	Properties string
	InStock    string
	PriceMin   string
	PriceMax   string
}

func ParseParams(v url.Values) Params {
	return Params{
		Q:          v.Get("q"),
		Tags:       v.Get("tags"),
		Properties: v.Get("properties"),
		InStock:    v.Get("in_stock"),
		PriceMin:   v.Get("price_min"),
		PriceMax:   v.Get("price_max"),
	}
}

type PropertyResolver interface {
	PropertyValues(ctx context.Context, ids []uint) ([]models.PropertyValue, error)
}

// Build composes the clauses for p. Malformed values never fail the build:
// non-numeric prices and property ids are ignored, in_stock counts only when "1".
func Build(ctx context.Context, r PropertyResolver, p Params) (Clause, error) {
	var clauses And

	if p.Q != "" {
		clauses = append(clauses, TitleContains{Query: p.Q})
	}

	if names := splitList(p.Tags); len(names) > 0 {
		clauses = append(clauses, HasAllTags{Names: names})
	}

	if ids := parseIDs(p.Properties); len(ids) > 0 {
		values, err := r.PropertyValues(ctx, ids)
		if err != nil {
			return nil, err
		}
		if groups := GroupValues(values); len(groups) > 0 {
			clauses = append(clauses, PropertyGroupMatch{Groups: groups})
		}
	}

	if p.InStock == "1" {
		clauses = append(clauses, InStock{})
	}

	if v, ok := parseNonNegative(p.PriceMin); ok {
		clauses = append(clauses, PriceAtLeast{Min: v})
	}

	if v, ok := parseNonNegative(p.PriceMax); ok {
		clauses = append(clauses, PriceAtMost{Max: v})
	}

	return clauses, nil
}

// GroupValues groups value ids by parent property, keeping the order in
// which properties are first seen.
func GroupValues(values []models.PropertyValue) []ValueGroup {
	index := make(map[uint]int, len(values))
	var groups []ValueGroup
	for _, v := range values {
		i, ok := index[v.PropertyID]
		if !ok {
			i = len(groups)
			index[v.PropertyID] = i
			groups = append(groups, ValueGroup{PropertyID: v.PropertyID})
		}
		groups[i].ValueIDs = append(groups[i].ValueIDs, v.ID)
	}
	return groups
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseIDs(s string) []uint {
	seen := make(map[uint]struct{})
	var ids []uint
	for _, part := range splitList(s) {
		id, err := strconv.ParseUint(part, 10, 64)
		if err != nil || id == 0 {
			continue
		}
		if _, dup := seen[uint(id)]; dup {
			continue
		}
		seen[uint(id)] = struct{}{}
		ids = append(ids, uint(id))
	}
	return ids
}

// parseNonNegative accepts only plain decimal digits.
func parseNonNegative(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
