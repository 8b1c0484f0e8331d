package models

import (
	"time"

	"github.com/linemk/storefront/internal/validators"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Category: раздел каталога; DetailsType определяет схему характеристик его товаров
type Category struct {
	ID          int64  `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"size:255;not null" json:"name"`
	Slug        string `gorm:"size:255;not null;uniqueIndex" json:"slug"`
	Picture     string `gorm:"size:255" json:"picture,omitempty"`
	DetailsType string `gorm:"size:32;not null" json:"details_type"`
}

// TableName возвращает имя таблицы категорий
func (Category) TableName() string {
	return "categories"
}

// Product: товар каталога.
// Связь с характеристиками полиморфная: DetailsType хранит дискриминант, DetailsID хранит id строки в таблице варианта.
type Product struct {
	ID              int64           `gorm:"primaryKey" json:"id"`
	Name            string          `gorm:"size:255;not null" json:"name"`
	Manufacturer    string          `gorm:"size:255;not null" json:"manufacturer"`
	Description     string          `gorm:"not null" json:"description"`
	Price           decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price" validate:"positive"`
	DiscountPercent decimal.Decimal `gorm:"type:numeric(5,2);not null" json:"discount_percent" validate:"percent"`
	Picture         string          `gorm:"size:255" json:"picture,omitempty"`
	UnitsAvailable  int             `gorm:"not null" json:"units_available" validate:"gte=0"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	PublishedAt     time.Time       `gorm:"not null;index" json:"published_at"`
	CategoryID      int64           `gorm:"not null;index" json:"category_id"`
	DetailsType     string          `gorm:"size:32;not null;index:idx_products_details" json:"details_type"`
	DetailsID       int64           `gorm:"not null;index:idx_products_details" json:"details_id"`
}

// TableName возвращает имя таблицы товаров
func (Product) TableName() string {
	return "products"
}

// IsPublished: товар виден покупателям, только если дата публикации уже наступила
func (p *Product) IsPublished(now time.Time) bool {
	return !p.PublishedAt.After(now)
}

// BeforeSave проверяет поля товара перед записью через gorm
func (p *Product) BeforeSave(tx *gorm.DB) error {
	return validators.Struct(p)
}
