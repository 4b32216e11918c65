package models

import (
	"context"
	"errors"
	"time"

	"github.com/ryus3/friendly-byte-shout-02/config"
	"github.com/shopspring/decimal"
)

type Order struct {
	ID              int             `gorm:"primary_key" json:"id"`
	OrderNumber     string          `gorm:"index;size:100" json:"order_number"`
	CustomerName    string          `gorm:"size:255" json:"customer_name"`
	CustomerPhone   string          `gorm:"size:100" json:"customer_phone"`
	Status          OrderStatus     `gorm:"index;size:50;not null;default:'pending'" json:"status"`
	CreatedBy       string          `gorm:"index;size:100" json:"created_by"` // empty or "manager" => manager-originated
	TotalAmount     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_amount"`
	FinalAmount     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"final_amount"`
	ReceiptReceived *bool           `gorm:"not null;default:false" json:"receipt_received"`
	Notes           string          `gorm:"type:text" json:"notes"`
	OrderItems      []*OrderItem    `gorm:"foreignKey:OrderId" json:"order_items"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type OrderItem struct {
	ID        int             `gorm:"primary_key" json:"id"`
	OrderId   int             `gorm:"index;not null" json:"order_id"`
	ProductId int             `gorm:"index" json:"product_id"`
	VariantId int             `gorm:"index" json:"variant_id"`
	Quantity  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"quantity"`
	// Price/cost snapshot taken when the order was created.
	UnitPrice decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"unit_price"`
	UnitCost  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"unit_cost"`
	Product   *Product        `gorm:"foreignKey:ProductId" json:"product,omitempty"`
	Variant   *ProductVariant `gorm:"foreignKey:VariantId" json:"variant,omitempty"`
}

func (o Order) GetId() int {
	return o.ID
}

// IsDelivered reports whether the order counts as delivered for financial
// purposes: delivered/completed status plus a received invoice receipt.
func (o *Order) IsDelivered() bool {
	statusDelivered := o.Status == OrderStatusDelivered || o.Status == OrderStatusCompleted
	receiptReceived := o.ReceiptReceived != nil && *o.ReceiptReceived
	return statusDelivered && receiptReceived
}

// EffectiveDate is the timestamp the temporal filter compares: the delivery
// update time when present, otherwise the creation time.
func (o *Order) EffectiveDate() time.Time {
	if !o.UpdatedAt.IsZero() {
		return o.UpdatedAt
	}
	return o.CreatedAt
}

type NewOrderItem struct {
	ProductId int             `json:"product_id" binding:"required"`
	VariantId int             `json:"variant_id"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
}

type NewOrder struct {
	OrderNumber   string          `json:"order_number"`
	CustomerName  string          `json:"customer_name" binding:"required"`
	CustomerPhone string          `json:"customer_phone"`
	CreatedBy     string          `json:"created_by"`
	FinalAmount   decimal.Decimal `json:"final_amount"`
	Notes         string          `json:"notes"`
	Items         []*NewOrderItem `json:"items" binding:"required"`
}

// GetAllOrders loads every order with its line items and the variant/product
// rows the cost fallback chain resolves against.
func GetAllOrders(ctx context.Context) ([]*Order, error) {
	db := config.GetDB()
	var orders []*Order
	if err := db.WithContext(ctx).
		Preload("OrderItems").
		Preload("OrderItems.Variant").
		Preload("OrderItems.Product").
		Order("id").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// CreateOrder snapshots price and cost per line item and totals the order.
func CreateOrder(ctx context.Context, input *NewOrder) (*Order, error) {
	if len(input.Items) == 0 {
		return nil, errors.New("order needs at least one item")
	}

	db := config.GetDB()
	order := Order{
		OrderNumber:   input.OrderNumber,
		CustomerName:  input.CustomerName,
		CustomerPhone: input.CustomerPhone,
		Status:        OrderStatusPending,
		CreatedBy:     input.CreatedBy,
		FinalAmount:   input.FinalAmount,
		Notes:         input.Notes,
	}

	total := decimal.Zero
	for _, item := range input.Items {
		var product Product
		if err := db.WithContext(ctx).Where("id = ?", item.ProductId).Take(&product).Error; err != nil {
			return nil, errors.New("product not found")
		}

		price := product.BasePrice
		cost := product.CostPrice
		if item.VariantId > 0 {
			var variant ProductVariant
			if err := db.WithContext(ctx).
				Where("id = ? AND product_id = ?", item.VariantId, item.ProductId).
				Take(&variant).Error; err != nil {
				return nil, errors.New("product variant not found")
			}
			if !variant.Price.IsZero() {
				price = variant.Price
			}
			if !variant.CostPrice.IsZero() {
				cost = variant.CostPrice
			}
		}

		order.OrderItems = append(order.OrderItems, &OrderItem{
			ProductId: item.ProductId,
			VariantId: item.VariantId,
			Quantity:  item.Quantity,
			UnitPrice: price,
			UnitCost:  cost,
		})
		total = total.Add(price.Mul(item.Quantity))
	}
	order.TotalAmount = total

	if err := db.WithContext(ctx).Create(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

type OrderStatusUpdate struct {
	Status          OrderStatus `json:"status" binding:"required"`
	ReceiptReceived *bool       `json:"receipt_received"`
}

// UpdateOrderStatus moves an order through its lifecycle. Marking an order
// delivered with a received receipt is what makes it visible to the engine.
func UpdateOrderStatus(ctx context.Context, orderId int, input *OrderStatusUpdate) (*Order, error) {
	db := config.GetDB()
	var order Order
	if err := db.WithContext(ctx).Where("id = ?", orderId).Take(&order).Error; err != nil {
		return nil, errors.New("order not found")
	}

	updates := map[string]interface{}{"status": input.Status}
	if input.ReceiptReceived != nil {
		updates["receipt_received"] = *input.ReceiptReceived
	}
	if err := db.WithContext(ctx).Model(&order).Updates(updates).Error; err != nil {
		return nil, err
	}
	return &order, nil
}
