package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/marketplace/internal/models"
	"github.com/Skotchmaster/marketplace/services/catalog/internal/filter"
	"github.com/Skotchmaster/marketplace/services/catalog/internal/transport"
)

var (
	ErrDuplicateSKU  = errors.New("sku already exists")
	ErrUnknownValues = errors.New("unknown property values")
)

type GormRepo struct {
	DB *gorm.DB
}

// PropertyValues resolves value ids to their rows; ids that do not exist are
// simply absent from the result.
func (r *GormRepo) PropertyValues(ctx context.Context, ids []uint) ([]models.PropertyValue, error) {
	var values []models.PropertyValue
	if len(ids) == 0 {
		return values, nil
	}
	err := r.DB.WithContext(ctx).Where("id IN ?", ids).Order("id ASC").Find(&values).Error
	return values, err
}

func (r *GormRepo) CountProducts(ctx context.Context, where filter.Clause) (int64, error) {
	var total int64
	err := where.Apply(r.DB.WithContext(ctx).Model(&models.Product{})).Count(&total).Error
	return total, err
}

func (r *GormRepo) ListProducts(ctx context.Context, where filter.Clause, offset, limit int) ([]models.Product, error) {
	var items []models.Product
	err := where.Apply(r.DB.WithContext(ctx).Model(&models.Product{})).
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.name ASC") }).
		Preload("Units", func(db *gorm.DB) *gorm.DB { return db.Order("units.id ASC") }).
		Order("products.id ASC").
		Offset(offset).
		Limit(limit).
		Find(&items).Error
	return items, err
}

func (r *GormRepo) PriceBounds(ctx context.Context) (transport.PriceBounds, error) {
	var row struct {
		MinPrice *int64
		MaxPrice *int64
	}
	err := r.DB.WithContext(ctx).
		Model(&models.Unit{}).
		Select("MIN(price) AS min_price, MAX(price) AS max_price").
		Scan(&row).Error
	if err != nil {
		return transport.PriceBounds{}, err
	}
	return transport.PriceBounds{Min: row.MinPrice, Max: row.MaxPrice}, nil
}

func (r *GormRepo) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	err := r.DB.WithContext(ctx).
		Preload("Seller").
		Preload("Tags").
		Preload("Units", func(db *gorm.DB) *gorm.DB { return db.Order("units.id ASC") }).
		Preload("Units.Values.Property").
		First(&product, id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *GormRepo) ListTags(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	err := r.DB.WithContext(ctx).Order("name ASC").Find(&tags).Error
	return tags, err
}

func (r *GormRepo) ListProperties(ctx context.Context) ([]models.Property, error) {
	var props []models.Property
	err := r.DB.WithContext(ctx).
		Preload("Values", func(db *gorm.DB) *gorm.DB { return db.Order("property_values.id ASC") }).
		Order("id ASC").
		Find(&props).Error
	return props, err
}

// CreateProduct stores the product with its units in one transaction. Tags are
// matched by name case-insensitively and created when missing.
func (r *GormRepo) CreateProduct(ctx context.Context, sellerID uint, req transport.CreateProductRequest) (*models.Product, error) {
	product := models.Product{
		Title:       req.Title,
		Description: req.Description,
		SellerID:    sellerID,
	}

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		skus := make([]string, 0, len(req.Units))
		for _, u := range req.Units {
			skus = append(skus, u.SKU)
		}
		var taken []string
		if err := tx.Model(&models.Unit{}).Where("sku IN ?", skus).Pluck("sku", &taken).Error; err != nil {
			return err
		}
		if len(taken) > 0 {
			return fmt.Errorf("%w: %s", ErrDuplicateSKU, strings.Join(taken, ", "))
		}

		for _, name := range req.Tags {
			tag, err := findOrCreateTag(tx, name)
			if err != nil {
				return err
			}
			product.Tags = append(product.Tags, tag)
		}

		for _, u := range req.Units {
			unit := models.Unit{SKU: u.SKU, Price: u.Price, NumInStock: u.NumInStock}
			if len(u.Values) > 0 {
				if err := tx.Where("id IN ?", u.Values).Find(&unit.Values).Error; err != nil {
					return err
				}
				if len(unit.Values) != len(u.Values) {
					return fmt.Errorf("%w: unit %s", ErrUnknownValues, u.SKU)
				}
			}
			product.Units = append(product.Units, unit)
		}

		return tx.Create(&product).Error
	})
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func findOrCreateTag(tx *gorm.DB, name string) (models.Tag, error) {
	var tag models.Tag
	err := tx.Where("LOWER(name) = ?", strings.ToLower(name)).First(&tag).Error
	if err == nil {
		return tag, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return tag, err
	}
	tag = models.Tag{Name: name}
	if err := tx.Create(&tag).Error; err != nil {
		return tag, err
	}
	return tag, nil
}
