// Package filter turns catalog query parameters into composable product
// predicates. Every predicate that reaches through units or tags is expressed
// as "products.id IN (subquery)", so each step yields distinct products.
package filter

import (
	"strings"

	"gorm.io/gorm"
)

type Clause interface {
	Apply(db *gorm.DB) *gorm.DB
}

// And is the conjunction of its clauses. The empty And matches every product.
type And []Clause

func (a And) Apply(db *gorm.DB) *gorm.DB {
	for _, c := range a {
		db = c.Apply(db)
	}
	return db
}

type TitleContains struct {
	Query string
}

func (c TitleContains) Apply(db *gorm.DB) *gorm.DB {
	pattern := "%" + escapeLike(strings.ToLower(c.Query)) + "%"
	return db.Where("LOWER(products.title) LIKE ? ESCAPE '!'", pattern)
}

// HasAllTags requires every listed tag, compared case-insensitively.
type HasAllTags struct {
	Names []string
}

func (c HasAllTags) Apply(db *gorm.DB) *gorm.DB {
	for _, name := range c.Names {
		tagged := newQuery(db).
			Table("product_tags").
			Select("product_tags.product_id").
			Joins("JOIN tags ON tags.id = product_tags.tag_id").
			Where("LOWER(tags.name) = ?", strings.ToLower(name))
		db = db.Where("products.id IN (?)", tagged)
	}
	return db
}

type ValueGroup struct {
	PropertyID uint
	ValueIDs   []uint
}

// PropertyGroupMatch: for every group some unit of the product carries one of
// the group's values. Different groups may be satisfied by different units.
type PropertyGroupMatch struct {
	Groups []ValueGroup
}

func (c PropertyGroupMatch) Apply(db *gorm.DB) *gorm.DB {
	for _, g := range c.Groups {
		withValue := unitsQuery(db).
			Joins("JOIN unit_values ON unit_values.unit_id = units.id").
			Where("unit_values.property_value_id IN ?", g.ValueIDs)
		db = db.Where("products.id IN (?)", withValue)
	}
	return db
}

type InStock struct{}

func (InStock) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("products.id IN (?)", unitsQuery(db).Where("units.num_in_stock > 0"))
}

// PriceAtLeast and PriceAtMost are inclusive and checked independently, so a
// product passes both when one unit is above Min and another below Max.
type PriceAtLeast struct {
	Min int64
}

func (c PriceAtLeast) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("products.id IN (?)", unitsQuery(db).Where("units.price >= ?", c.Min))
}

type PriceAtMost struct {
	Max int64
}

func (c PriceAtMost) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("products.id IN (?)", unitsQuery(db).Where("units.price <= ?", c.Max))
}

func newQuery(db *gorm.DB) *gorm.DB {
	return db.Session(&gorm.Session{NewDB: true})
}

func unitsQuery(db *gorm.DB) *gorm.DB {
	return newQuery(db).Table("units").Select("units.product_id")
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
