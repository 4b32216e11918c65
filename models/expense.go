package models

import (
	"context"
	"time"

	"github.com/ryus3/friendly-byte-shout-02/config"
	"github.com/shopspring/decimal"
)

// ExpenseRelatedData carries the source document linkage for expenses raised
// by other modules (e.g. a goods purchase writes an expense whose
// related_data.category marks it so the aggregator can skip it).
type ExpenseRelatedData struct {
	Category    string `json:"category,omitempty"`
	ReferenceId int    `json:"reference_id,omitempty"`
}

type Expense struct {
	ID              int                `gorm:"primary_key" json:"id"`
	Description     string             `gorm:"size:255" json:"description"`
	Amount          decimal.Decimal    `gorm:"type:decimal(20,4);default:0" json:"amount"`
	TransactionDate time.Time          `gorm:"index;not null" json:"transaction_date"`
	ExpenseType     string             `gorm:"index;size:50" json:"expense_type"` // "system" rows are engine bookkeeping
	Category        string             `gorm:"index;size:100" json:"category"`
	RelatedData     ExpenseRelatedData `gorm:"serializer:json" json:"related_data"`
	CreatedBy       string             `gorm:"size:100" json:"created_by"`
	CreatedAt       time.Time          `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time          `gorm:"autoUpdateTime" json:"updated_at"`
}

func (e Expense) GetId() int {
	return e.ID
}

// CountsAsGeneralExpense excludes the three categories whose amounts are
// already captured elsewhere in the aggregate (profit split, dues ledger,
// purchases total).
func (e *Expense) CountsAsGeneralExpense() bool {
	if e.ExpenseType == ExpenseTypeSystem {
		return false
	}
	if e.Category == ExpenseCategoryEmployeeDues {
		return false
	}
	if e.RelatedData.Category == ExpenseCategoryGoodsPurchase {
		return false
	}
	return true
}

type NewExpense struct {
	Description     string             `json:"description"`
	Amount          decimal.Decimal    `json:"amount" binding:"required"`
	TransactionDate time.Time          `json:"transaction_date" binding:"required"`
	ExpenseType     string             `json:"expense_type"`
	Category        string             `json:"category"`
	RelatedData     ExpenseRelatedData `json:"related_data"`
	CreatedBy       string             `json:"created_by"`
}

func GetAllExpenses(ctx context.Context) ([]*Expense, error) {
	db := config.GetDB()
	var expenses []*Expense
	if err := db.WithContext(ctx).Order("id").Find(&expenses).Error; err != nil {
		return nil, err
	}
	return expenses, nil
}

func CreateExpense(ctx context.Context, input *NewExpense) (*Expense, error) {
	expense := Expense{
		Description:     input.Description,
		Amount:          input.Amount,
		TransactionDate: input.TransactionDate,
		ExpenseType:     input.ExpenseType,
		Category:        input.Category,
		RelatedData:     input.RelatedData,
		CreatedBy:       input.CreatedBy,
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&expense).Error; err != nil {
		return nil, err
	}
	return &expense, nil
}
