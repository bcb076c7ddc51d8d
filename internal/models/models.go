package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleBuyer  = "buyer"
	RoleSeller = "seller"
)

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string    `gorm:"unique;not null"          json:"username"`
	PasswordHash string    `gorm:"not null"                 json:"-"`
	Role         string    `gorm:"not null;default:buyer"   json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

type Tag struct {
	ID   uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"unique;not null"          json:"name"`
}

type Property struct {
	ID     uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	Name   string          `gorm:"not null"                 json:"name"`
	Values []PropertyValue `json:"values,omitempty"`
}

type PropertyValue struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	PropertyID uint      `gorm:"index;not null"           json:"property_id"`
	Property   *Property `json:"property,omitempty"`
	Value      string    `gorm:"not null"                 json:"value"`
}

type Product struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"  json:"id"`
	Title       string    `gorm:"not null;index"            json:"title"`
	Description string    `json:"description"`
	SellerID    uint      `gorm:"index;not null"            json:"seller_id"`
	Seller      *User     `json:"seller,omitempty"`
	Tags        []Tag     `gorm:"many2many:product_tags"    json:"tags"`
	Units       []Unit    `json:"units,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Unit is a purchasable SKU of a product. NumInStock is only written by checkout.
type Unit struct {
	ID         uint            `gorm:"primaryKey;autoIncrement"          json:"id"`
	ProductID  uint            `gorm:"index;not null"                    json:"product_id"`
	Product    *Product        `json:"product,omitempty"`
	SKU        string          `gorm:"column:sku;uniqueIndex;not null"   json:"sku"`
	Price      int64           `gorm:"not null;index;check:price>=0"     json:"price"`
	NumInStock int             `gorm:"not null;check:num_in_stock>=0"    json:"num_in_stock"`
	Values     []PropertyValue `gorm:"many2many:unit_values"             json:"values,omitempty"`
}

// Order holds units of exactly one seller.
type Order struct {
	ID        uint        `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint        `gorm:"index;not null"           json:"user_id"`
	Name      string      `gorm:"not null"                 json:"name"`
	Address   string      `gorm:"not null"                 json:"address"`
	Phone     string      `gorm:"not null"                 json:"phone"`
	CreatedAt time.Time   `json:"created_at"`
	Units     []OrderUnit `json:"units,omitempty"`
}

type OrderUnit struct {
	ID       uint  `gorm:"primaryKey;autoIncrement"   json:"id"`
	OrderID  uint  `gorm:"index;not null"             json:"order_id"`
	UnitID   uint  `gorm:"index;not null"             json:"unit_id"`
	Unit     *Unit `json:"unit,omitempty"`
	Quantity int   `gorm:"not null;check:quantity>0"  json:"quantity"`
}

func All() []any {
	return []any{
		&User{},
		&Tag{},
		&Property{},
		&PropertyValue{},
		&Product{},
		&Unit{},
		&Order{},
		&OrderUnit{},
	}
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(All()...)
}
