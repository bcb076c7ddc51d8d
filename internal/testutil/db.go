// Package testutil provides an in-memory catalog database for package tests.
package testutil

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Skotchmaster/marketplace/internal/models"
)

// NewDB opens a fresh migrated sqlite database. The pool is pinned to one
// connection so every caller sees the same in-memory database.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to connect to in-memory db")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, models.Migrate(db), "failed to migrate tables")
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

func user(t testing.TB, db *gorm.DB, username, role string) *models.User {
	t.Helper()
	u := &models.User{Username: username, PasswordHash: "x", Role: role}
	require.NoError(t, db.Create(u).Error)
	return u
}

func Seller(t testing.TB, db *gorm.DB, username string) *models.User {
	return user(t, db, username, models.RoleSeller)
}

func Buyer(t testing.TB, db *gorm.DB, username string) *models.User {
	return user(t, db, username, models.RoleBuyer)
}

// Property creates a property with the given values, in order.
func Property(t testing.TB, db *gorm.DB, name string, values ...string) *models.Property {
	t.Helper()
	p := &models.Property{Name: name}
	for _, v := range values {
		p.Values = append(p.Values, models.PropertyValue{Value: v})
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

type UnitSpec struct {
	SKU    string
	Price  int64
	Stock  int
	Values []models.PropertyValue
}

func Product(t testing.TB, db *gorm.DB, seller *models.User, title string, tags []string, units ...UnitSpec) *models.Product {
	t.Helper()

	p := &models.Product{Title: title, SellerID: seller.ID}
	for _, name := range tags {
		tag := models.Tag{Name: name}
		require.NoError(t, db.Where("name = ?", name).FirstOrCreate(&tag).Error)
		p.Tags = append(p.Tags, tag)
	}
	for _, u := range units {
		p.Units = append(p.Units, models.Unit{
			SKU:        u.SKU,
			Price:      u.Price,
			NumInStock: u.Stock,
			Values:     u.Values,
		})
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func Stock(t testing.TB, db *gorm.DB, sku string) int {
	t.Helper()
	var u models.Unit
	require.NoError(t, db.Where("sku = ?", sku).First(&u).Error)
	return u.NumInStock
}
