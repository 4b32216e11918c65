package models

import (
	"context"
	"errors"
	"time"

	"github.com/ryus3/friendly-byte-shout-02/config"
	"github.com/shopspring/decimal"
)

type Product struct {
	ID           int               `gorm:"primary_key" json:"id"`
	Name         string            `gorm:"size:255;not null" json:"name" binding:"required"`
	Sku          string            `gorm:"index;size:100" json:"sku"`
	Category     string            `gorm:"index;size:100" json:"category"`
	BasePrice    decimal.Decimal   `gorm:"type:decimal(20,4);default:0" json:"base_price"`
	CostPrice    decimal.Decimal   `gorm:"type:decimal(20,4);default:0" json:"cost_price"`
	ImageURL     string            `gorm:"size:512" json:"image_url"`
	ThumbnailURL string            `gorm:"size:512" json:"thumbnail_url"`
	IsActive     *bool             `gorm:"not null;default:true" json:"is_active"`
	Variants     []*ProductVariant `gorm:"foreignKey:ProductId" json:"variants"`
	CreatedAt    time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

type ProductVariant struct {
	ID        int             `gorm:"primary_key" json:"id"`
	ProductId int             `gorm:"index;not null" json:"product_id"`
	Name      string          `gorm:"size:255" json:"name"` // e.g. color/size
	Sku       string          `gorm:"index;size:100" json:"sku"`
	Price     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"price"`
	CostPrice decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"cost_price"`
	Quantity  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"quantity"` // stocked units
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p Product) GetId() int {
	return p.ID
}

func (v ProductVariant) GetId() int {
	return v.ID
}

type NewProductVariant struct {
	Name      string          `json:"name"`
	Sku       string          `json:"sku"`
	Price     decimal.Decimal `json:"price"`
	CostPrice decimal.Decimal `json:"cost_price"`
	Quantity  decimal.Decimal `json:"quantity"`
}

type NewProduct struct {
	Name      string               `json:"name" binding:"required"`
	Sku       string               `json:"sku"`
	Category  string               `json:"category"`
	BasePrice decimal.Decimal      `json:"base_price"`
	CostPrice decimal.Decimal      `json:"cost_price"`
	Variants  []*NewProductVariant `json:"variants"`
}

// GetAllProducts loads the catalog with variants (current stock snapshot).
func GetAllProducts(ctx context.Context) ([]*Product, error) {
	db := config.GetDB()
	var products []*Product
	if err := db.WithContext(ctx).
		Preload("Variants").
		Order("id").
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func CreateProduct(ctx context.Context, input *NewProduct) (*Product, error) {
	product := Product{
		Name:      input.Name,
		Sku:       input.Sku,
		Category:  input.Category,
		BasePrice: input.BasePrice,
		CostPrice: input.CostPrice,
	}
	for _, v := range input.Variants {
		product.Variants = append(product.Variants, &ProductVariant{
			Name:      v.Name,
			Sku:       v.Sku,
			Price:     v.Price,
			CostPrice: v.CostPrice,
			Quantity:  v.Quantity,
		})
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// SetProductImage stores the public URLs written by the upload handler.
func SetProductImage(ctx context.Context, productId int, imageURL string, thumbnailURL string) (*Product, error) {
	db := config.GetDB()
	var product Product
	if err := db.WithContext(ctx).Where("id = ?", productId).Take(&product).Error; err != nil {
		return nil, errors.New("product not found")
	}
	if err := db.WithContext(ctx).Model(&product).Updates(map[string]interface{}{
		"image_url":     imageURL,
		"thumbnail_url": thumbnailURL,
	}).Error; err != nil {
		return nil, err
	}
	product.ImageURL = imageURL
	product.ThumbnailURL = thumbnailURL
	return &product, nil
}

// AdjustVariantStock applies a relative quantity change (receiving or selling
// stock). Negative adjustments may drive quantity below zero; inventory
// valuation surfaces that as-is.
func AdjustVariantStock(ctx context.Context, variantId int, delta decimal.Decimal) (*ProductVariant, error) {
	db := config.GetDB()
	var variant ProductVariant
	if err := db.WithContext(ctx).Where("id = ?", variantId).Take(&variant).Error; err != nil {
		return nil, errors.New("product variant not found")
	}
	newQty := variant.Quantity.Add(delta)
	if err := db.WithContext(ctx).Model(&variant).Update("quantity", newQty).Error; err != nil {
		return nil, err
	}
	variant.Quantity = newQty
	return &variant, nil
}
