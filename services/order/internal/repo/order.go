package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/marketplace/internal/models"
)

type GormRepo struct {
	DB *gorm.DB
}

// Transaction runs fn against a repo bound to a single transaction.
func (r *GormRepo) Transaction(ctx context.Context, fn func(tx *GormRepo) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormRepo{DB: tx})
	})
}

// UnitsBySKU loads the units for skus together with their products, keyed by
// sku. Unknown skus are absent from the map.
func (r *GormRepo) UnitsBySKU(ctx context.Context, skus []string) (map[string]*models.Unit, error) {
	var units []models.Unit
	if err := r.DB.WithContext(ctx).Preload("Product").Where("sku IN ?", skus).Find(&units).Error; err != nil {
		return nil, err
	}
	out := make(map[string]*models.Unit, len(units))
	for i := range units {
		out[units[i].SKU] = &units[i]
	}
	return out, nil
}

func (r *GormRepo) GetUnit(ctx context.Context, id uint) (*models.Unit, error) {
	var unit models.Unit
	if err := r.DB.WithContext(ctx).First(&unit, id).Error; err != nil {
		return nil, err
	}
	return &unit, nil
}

// LockUnit reads the unit with SELECT ... FOR UPDATE. Dialects without row
// locks (sqlite) drop the locking clause.
func (r *GormRepo) LockUnit(ctx context.Context, id uint) (*models.Unit, error) {
	var unit models.Unit
	err := r.DB.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&unit, id).Error
	if err != nil {
		return nil, err
	}
	return &unit, nil
}

// DecrementStock takes qty off the unit only if enough is left. It reports
// whether the row was updated.
func (r *GormRepo) DecrementStock(ctx context.Context, id uint, qty int) (bool, error) {
	res := r.DB.WithContext(ctx).
		Model(&models.Unit{}).
		Where("id = ? AND num_in_stock >= ?", id, qty).
		Update("num_in_stock", gorm.Expr("num_in_stock - ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *GormRepo) SetStock(ctx context.Context, id uint, stock int) error {
	return r.DB.WithContext(ctx).
		Model(&models.Unit{}).
		Where("id = ?", id).
		Update("num_in_stock", stock).Error
}

func (r *GormRepo) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.DB.WithContext(ctx).Omit("Units").Create(order).Error
}

func (r *GormRepo) CreateOrderUnit(ctx context.Context, ou *models.OrderUnit) error {
	return r.DB.WithContext(ctx).Omit("Unit").Create(ou).Error
}

func (r *GormRepo) ListOrders(ctx context.Context, userID uint) ([]models.Order, error) {
	var orders []models.Order
	err := r.DB.WithContext(ctx).
		Preload("Units", func(db *gorm.DB) *gorm.DB { return db.Order("order_units.id ASC") }).
		Preload("Units.Unit").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&orders).Error
	return orders, err
}

func (r *GormRepo) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := r.DB.WithContext(ctx).
		Preload("Units", func(db *gorm.DB) *gorm.DB { return db.Order("order_units.id ASC") }).
		Preload("Units.Unit.Product").
		First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}
