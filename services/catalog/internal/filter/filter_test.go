package filter

import (
	"context"
	"slices"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/marketplace/internal/models"
	"github.com/Skotchmaster/marketplace/internal/testutil"
)

type dbResolver struct{ db *gorm.DB }

func (r dbResolver) PropertyValues(ctx context.Context, ids []uint) ([]models.PropertyValue, error) {
	var values []models.PropertyValue
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&values).Error
	return values, err
}

type catalog struct {
	db                     *gorm.DB
	red, blue, green       models.PropertyValue
	sizeM, sizeL           models.PropertyValue
	shirt, jeans, hat, mug uint
}

func seedCatalog(t *testing.T) *catalog {
	t.Helper()
	db := testutil.NewDB(t)

	color := testutil.Property(t, db, "Color", "Red", "Blue", "Green")
	size := testutil.Property(t, db, "Size", "M", "L")
	c := &catalog{
		db:    db,
		red:   color.Values[0],
		blue:  color.Values[1],
		green: color.Values[2],
		sizeM: size.Values[0],
		sizeL: size.Values[1],
	}

	s1 := testutil.Seller(t, db, "seller-1")
	s2 := testutil.Seller(t, db, "seller-2")

	c.shirt = testutil.Product(t, db, s1, "Red Shirt", []string{"summer", "cotton"},
		testutil.UnitSpec{SKU: "A1", Price: 100, Stock: 5, Values: []models.PropertyValue{c.red, c.sizeM}},
		testutil.UnitSpec{SKU: "A2", Price: 300, Stock: 0, Values: []models.PropertyValue{c.blue, c.sizeL}},
	).ID
	c.jeans = testutil.Product(t, db, s2, "Blue Jeans", []string{"denim"},
		testutil.UnitSpec{SKU: "B1", Price: 500, Stock: 0, Values: []models.PropertyValue{c.blue, c.sizeM}},
	).ID
	c.hat = testutil.Product(t, db, s2, "Green Hat", []string{"Summer"},
		testutil.UnitSpec{SKU: "C1", Price: 50, Stock: 2, Values: []models.PropertyValue{c.green}},
		testutil.UnitSpec{SKU: "C2", Price: 1000, Stock: 1, Values: []models.PropertyValue{c.red, c.sizeL}},
	).ID
	c.mug = testutil.Product(t, db, s1, "Plain 100%_Mug", nil).ID

	return c
}

func (c *catalog) find(t *testing.T, p Params) []uint {
	t.Helper()
	clause, err := Build(context.Background(), dbResolver{c.db}, p)
	require.NoError(t, err)

	var ids []uint
	err = clause.Apply(c.db.Model(&models.Product{})).Order("products.id").Pluck("products.id", &ids).Error
	require.NoError(t, err)
	return ids
}

func (c *catalog) all() []uint {
	return []uint{c.shirt, c.jeans, c.hat, c.mug}
}

func idList(ids ...uint) string {
	out := ""
	for i, id := range ids {
		if i > 0 {
			out += ","
		}
		out += strconv.FormatUint(uint64(id), 10)
	}
	return out
}

func TestNoParams_ReturnsEverything(t *testing.T) {
	c := seedCatalog(t)
	assert.Equal(t, c.all(), c.find(t, Params{}))
}

func TestTitleContains(t *testing.T) {
	c := seedCatalog(t)

	assert.Equal(t, []uint{c.shirt}, c.find(t, Params{Q: "shirt"}))
	assert.Equal(t, []uint{c.shirt}, c.find(t, Params{Q: "SHIRT"}))
	assert.Equal(t, []uint{c.mug}, c.find(t, Params{Q: "%"}))
	assert.Equal(t, []uint{c.mug}, c.find(t, Params{Q: "0%_m"}))
	assert.Empty(t, c.find(t, Params{Q: "sofa"}))
}

func TestHasAllTags_RequiresEveryTag(t *testing.T) {
	c := seedCatalog(t)

	assert.Equal(t, []uint{c.shirt, c.hat}, c.find(t, Params{Tags: "summer"}))
	assert.Equal(t, []uint{c.shirt, c.hat}, c.find(t, Params{Tags: "SUMMER , "}))
	assert.Equal(t, []uint{c.shirt}, c.find(t, Params{Tags: "summer,cotton"}))
	assert.Empty(t, c.find(t, Params{Tags: "summer,denim"}))
	assert.Empty(t, c.find(t, Params{Tags: "summer,unknown"}))
}

func TestPropertyGroupMatch_OrWithinAndAcross(t *testing.T) {
	c := seedCatalog(t)

	// Color: Red OR Blue.
	assert.Equal(t, []uint{c.shirt, c.jeans, c.hat},
		c.find(t, Params{Properties: idList(c.red.ID, c.blue.ID)}))

	// (Red OR Blue) AND M.
	assert.Equal(t, []uint{c.shirt, c.jeans},
		c.find(t, Params{Properties: idList(c.red.ID, c.blue.ID, c.sizeM.ID)}))

	// Blue AND M satisfied by different units of the shirt.
	assert.Equal(t, []uint{c.shirt, c.jeans},
		c.find(t, Params{Properties: idList(c.blue.ID, c.sizeM.ID)}))

	assert.Equal(t, []uint{c.shirt, c.hat},
		c.find(t, Params{Properties: idList(c.red.ID, c.sizeL.ID)}))

	assert.Equal(t, []uint{c.hat},
		c.find(t, Params{Properties: idList(c.green.ID)}))
}

func TestPropertyGroupMatch_UnknownIDsAreNoConstraint(t *testing.T) {
	c := seedCatalog(t)
	assert.Equal(t, c.all(), c.find(t, Params{Properties: "abc,999999"}))
}

func TestInStock(t *testing.T) {
	c := seedCatalog(t)

	assert.Equal(t, []uint{c.shirt, c.hat}, c.find(t, Params{InStock: "1"}))
	assert.Equal(t, c.all(), c.find(t, Params{InStock: "true"}))
	assert.Equal(t, c.all(), c.find(t, Params{InStock: "0"}))
}

func TestPriceRange_InclusiveAndLenient(t *testing.T) {
	c := seedCatalog(t)

	assert.Equal(t, []uint{c.shirt, c.jeans, c.hat}, c.find(t, Params{PriceMin: "300"}))
	assert.Equal(t, []uint{c.shirt, c.hat}, c.find(t, Params{PriceMax: "100"}))
	assert.Equal(t, []uint{c.jeans, c.hat}, c.find(t, Params{PriceMin: "500", PriceMax: "500"}))

	// Bounds are checked per unit independently.
	assert.Equal(t, []uint{c.shirt, c.hat}, c.find(t, Params{PriceMin: "200", PriceMax: "400"}))

	for _, bad := range []string{"abc", "-5", "1.5", " 10", "+3"} {
		assert.Equal(t, c.all(), c.find(t, Params{PriceMin: bad, PriceMax: bad}), "value %q", bad)
	}
}

func TestResultsAreDistinct(t *testing.T) {
	c := seedCatalog(t)

	ids := c.find(t, Params{
		Tags:       "summer",
		Properties: idList(c.red.ID, c.blue.ID, c.sizeM.ID, c.sizeL.ID),
		PriceMin:   "0",
	})
	assert.Equal(t, []uint{c.shirt, c.hat}, ids)
}

func intersect(a, b []uint) []uint {
	out := []uint{}
	for _, v := range a {
		if slices.Contains(b, v) {
			out = append(out, v)
		}
	}
	return out
}

func TestComposition_EqualsIntersectionOfSingleFilters(t *testing.T) {
	c := seedCatalog(t)

	singles := []Params{
		{Q: "e"},
		{Tags: "summer"},
		{Properties: idList(c.red.ID, c.sizeL.ID)},
		{InStock: "1"},
		{PriceMin: "100"},
		{PriceMax: "600"},
	}

	merge := func(dst *Params, src Params) {
		if src.Q != "" {
			dst.Q = src.Q
		}
		if src.Tags != "" {
			dst.Tags = src.Tags
		}
		if src.Properties != "" {
			dst.Properties = src.Properties
		}
		if src.InStock != "" {
			dst.InStock = src.InStock
		}
		if src.PriceMin != "" {
			dst.PriceMin = src.PriceMin
		}
		if src.PriceMax != "" {
			dst.PriceMax = src.PriceMax
		}
	}

	single := make([][]uint, len(singles))
	for i, p := range singles {
		single[i] = c.find(t, p)
	}

	for mask := 1; mask < 1<<len(singles); mask++ {
		var combined Params
		want := c.all()
		for i, p := range singles {
			if mask&(1<<i) == 0 {
				continue
			}
			merge(&combined, p)
			want = intersect(want, single[i])
		}
		got := c.find(t, combined)
		if len(got) == 0 {
			got = []uint{}
		}
		assert.Equal(t, want, got, "params %+v", combined)
	}
}

func TestGroupValues_KeepsFirstSeenOrder(t *testing.T) {
	groups := GroupValues([]models.PropertyValue{
		{ID: 7, PropertyID: 2},
		{ID: 3, PropertyID: 1},
		{ID: 8, PropertyID: 2},
	})
	assert.Equal(t, []ValueGroup{
		{PropertyID: 2, ValueIDs: []uint{7, 8}},
		{PropertyID: 1, ValueIDs: []uint{3}},
	}, groups)
}

func TestParseIDs(t *testing.T) {
	assert.Equal(t, []uint{4, 2}, parseIDs("4, x,2,4,,0,-1"))
	assert.Nil(t, parseIDs(""))
}
