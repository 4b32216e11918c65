package models

import (
	"context"
	"time"

	"github.com/ryus3/friendly-byte-shout-02/config"
	"github.com/shopspring/decimal"
)

// Purchase is an inventory buy. It reduces the cash balance in full when in
// range; it never appears in COGS (COGS comes from sold-item cost snapshots).
type Purchase struct {
	ID             int             `gorm:"primary_key" json:"id"`
	PurchaseNumber string          `gorm:"index;size:100" json:"purchase_number"`
	SupplierName   string          `gorm:"size:255" json:"supplier_name"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_amount"`
	Notes          string          `gorm:"type:text" json:"notes"`
	CreatedBy      string          `gorm:"size:100" json:"created_by"`
	CreatedAt      time.Time       `gorm:"index;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p Purchase) GetId() int {
	return p.ID
}

type NewPurchase struct {
	PurchaseNumber string          `json:"purchase_number"`
	SupplierName   string          `json:"supplier_name"`
	TotalAmount    decimal.Decimal `json:"total_amount" binding:"required"`
	Notes          string          `json:"notes"`
	CreatedBy      string          `json:"created_by"`
}

func GetAllPurchases(ctx context.Context) ([]*Purchase, error) {
	db := config.GetDB()
	var purchases []*Purchase
	if err := db.WithContext(ctx).Order("id").Find(&purchases).Error; err != nil {
		return nil, err
	}
	return purchases, nil
}

// CreatePurchase also writes the goods-purchase marker expense so spend
// reports can show it, while the aggregator skips it via related_data.
func CreatePurchase(ctx context.Context, input *NewPurchase) (*Purchase, error) {
	purchase := Purchase{
		PurchaseNumber: input.PurchaseNumber,
		SupplierName:   input.SupplierName,
		TotalAmount:    input.TotalAmount,
		Notes:          input.Notes,
		CreatedBy:      input.CreatedBy,
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&purchase).Error; err != nil {
		return nil, err
	}

	marker := Expense{
		Description:     "goods purchase " + purchase.PurchaseNumber,
		Amount:          purchase.TotalAmount,
		TransactionDate: purchase.CreatedAt,
		Category:        ExpenseCategoryGoodsPurchase,
		RelatedData: ExpenseRelatedData{
			Category:    ExpenseCategoryGoodsPurchase,
			ReferenceId: purchase.ID,
		},
		CreatedBy: input.CreatedBy,
	}
	if err := db.WithContext(ctx).Create(&marker).Error; err != nil {
		return nil, err
	}
	return &purchase, nil
}
