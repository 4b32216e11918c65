package models

import (
	"context"
	"errors"
	"time"

	"github.com/ryus3/friendly-byte-shout-02/config"
	"github.com/shopspring/decimal"
)

// ProfitEntry is the employee dues ledger: the amount payable to the employee
// who fulfilled an order. The entry only counts toward employeeDues while its
// linked order is delivered and inside the reporting window.
type ProfitEntry struct {
	ID             int             `gorm:"primary_key" json:"id"`
	OrderId        int             `gorm:"index;not null" json:"order_id" binding:"required"`
	EmployeeName   string          `gorm:"index;size:100" json:"employee_name"`
	EmployeeProfit decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"employee_profit"`
	IsSettled      *bool           `gorm:"not null;default:false" json:"is_settled"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p ProfitEntry) GetId() int {
	return p.ID
}

type NewProfitEntry struct {
	OrderId        int             `json:"order_id" binding:"required"`
	EmployeeName   string          `json:"employee_name" binding:"required"`
	EmployeeProfit decimal.Decimal `json:"employee_profit" binding:"required"`
}

func GetAllProfitEntries(ctx context.Context) ([]*ProfitEntry, error) {
	db := config.GetDB()
	var entries []*ProfitEntry
	if err := db.WithContext(ctx).Order("id").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func CreateProfitEntry(ctx context.Context, input *NewProfitEntry) (*ProfitEntry, error) {
	db := config.GetDB()
	var order Order
	if err := db.WithContext(ctx).Where("id = ?", input.OrderId).Take(&order).Error; err != nil {
		return nil, errors.New("order not found")
	}

	entry := ProfitEntry{
		OrderId:        input.OrderId,
		EmployeeName:   input.EmployeeName,
		EmployeeProfit: input.EmployeeProfit,
	}
	if err := db.WithContext(ctx).Create(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}
