package models_test

import (
	"testing"
	"time"

	"github.com/ryus3/friendly-byte-shout-02/models"
)

func TestOrderIsDelivered(t *testing.T) {
	yes := true
	no := false
	cases := []struct {
		name    string
		status  models.OrderStatus
		receipt *bool
		want    bool
	}{
		{"delivered with receipt", models.OrderStatusDelivered, &yes, true},
		{"completed with receipt", models.OrderStatusCompleted, &yes, true},
		{"delivered without receipt", models.OrderStatusDelivered, &no, false},
		{"delivered receipt unset", models.OrderStatusDelivered, nil, false},
		{"pending with receipt", models.OrderStatusPending, &yes, false},
		{"returned with receipt", models.OrderStatusReturned, &yes, false},
	}
	for _, c := range cases {
		o := models.Order{Status: c.status, ReceiptReceived: c.receipt}
		if got := o.IsDelivered(); got != c.want {
			t.Errorf("%s: IsDelivered() = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestOrderEffectiveDate(t *testing.T) {
	created := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	updated := time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC)

	o := models.Order{CreatedAt: created, UpdatedAt: updated}
	if got := o.EffectiveDate(); !got.Equal(updated) {
		t.Fatalf("EffectiveDate() = %v, want update time", got)
	}

	o = models.Order{CreatedAt: created}
	if got := o.EffectiveDate(); !got.Equal(created) {
		t.Fatalf("EffectiveDate() = %v, want creation time", got)
	}
}

func TestExpenseCountsAsGeneralExpense(t *testing.T) {
	cases := []struct {
		name    string
		expense models.Expense
		want    bool
	}{
		{"plain", models.Expense{Category: "rent"}, true},
		{"system type", models.Expense{ExpenseType: models.ExpenseTypeSystem}, false},
		{"dues category", models.Expense{Category: models.ExpenseCategoryEmployeeDues}, false},
		{"goods purchase marker", models.Expense{
			RelatedData: models.ExpenseRelatedData{Category: models.ExpenseCategoryGoodsPurchase},
		}, false},
		{"unrelated related data", models.Expense{
			RelatedData: models.ExpenseRelatedData{Category: "warranty"},
		}, true},
	}
	for _, c := range cases {
		if got := c.expense.CountsAsGeneralExpense(); got != c.want {
			t.Errorf("%s: CountsAsGeneralExpense() = %v, want %v", c.name, got, c.want)
		}
	}
}
