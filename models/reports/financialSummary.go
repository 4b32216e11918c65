package reports

import (
	"time"

	"github.com/ryus3/friendly-byte-shout-02/models"
	"github.com/shopspring/decimal"
)

// Unified financial summary.
//
// One pure function turns a raw record snapshot plus an optional date window
// into the full set of derived metrics. Both call sites, the finance watcher
// (interactive, subscription-refreshed) and the summary endpoint (one-shot),
// go through CalculateFinancialSummary, so they can never drift apart.
//
// All amounts stay decimal end to end; nothing is rounded here. Formatting
// is the consumer's job.

// DefaultDeliveryFee applies when the delivery_fee setting is missing or not
// numeric.
var DefaultDeliveryFee = decimal.NewFromInt(5000)

// DateRange is an optional, inclusive reporting window.
type DateRange struct {
	From *time.Time `json:"from,omitempty"`
	To   *time.Time `json:"to,omitempty"`
}

// ParseDateRange builds a window from request strings. A bound that is empty
// or unparseable is treated as absent; with either bound absent the window
// includes everything (fail-open).
func ParseDateRange(from string, to string) *DateRange {
	var dr DateRange
	if t, err := time.Parse(time.RFC3339, from); err == nil {
		dr.From = &t
	}
	if t, err := time.Parse(time.RFC3339, to); err == nil {
		dr.To = &t
	}
	if dr.From == nil && dr.To == nil {
		return nil
	}
	return &dr
}

// InRange decides whether a timestamped record falls inside the window.
// Fail-open: no window, a missing bound, or a zero timestamp all include the
// record. Bounds are inclusive.
func InRange(t time.Time, dateRange *DateRange) bool {
	if dateRange == nil || dateRange.From == nil || dateRange.To == nil || t.IsZero() {
		return true
	}
	return !t.Before(*dateRange.From) && !t.After(*dateRange.To)
}

// FinancialSummary is the flat aggregate object handed to consumers. Every
// numeric field is final; consumers apply formatting only.
type FinancialSummary struct {
	// Revenue and cost of goods.
	TotalRevenue    decimal.Decimal `json:"totalRevenue"`
	ManagerRevenue  decimal.Decimal `json:"managerRevenue"`
	EmployeeRevenue decimal.Decimal `json:"employeeRevenue"`
	TotalCOGS       decimal.Decimal `json:"totalCOGS"`
	ManagerCOGS     decimal.Decimal `json:"managerCOGS"`
	EmployeeCOGS    decimal.Decimal `json:"employeeCOGS"`
	GrossProfit     decimal.Decimal `json:"grossProfit"`

	// Profit split.
	ManagerProfit             decimal.Decimal `json:"managerProfit"`
	TotalEmployeeProfit       decimal.Decimal `json:"totalEmployeeProfit"`
	EmployeeDues              decimal.Decimal `json:"employeeDues"`
	SystemProfitFromEmployees decimal.Decimal `json:"systemProfitFromEmployees"`
	TotalSystemProfit         decimal.Decimal `json:"totalSystemProfit"`
	NetProfit                 decimal.Decimal `json:"netProfit"`

	// Spend.
	GeneralExpenses decimal.Decimal `json:"generalExpenses"`
	TotalPurchases  decimal.Decimal `json:"totalPurchases"`

	// Assets and cash.
	InventoryValue  decimal.Decimal `json:"inventoryValue"`
	MainCashBalance decimal.Decimal `json:"mainCashBalance"`
	TotalAssets     decimal.Decimal `json:"totalAssets"`

	// Filtered order sequences for per-order drill-down.
	DeliveredOrders []*models.Order `json:"deliveredOrders"`
	ManagerOrders   []*models.Order `json:"managerOrders"`
	EmployeeOrders  []*models.Order `json:"employeeOrders"`

	DeliveredOrdersCount int `json:"deliveredOrdersCount"`
	ManagerOrdersCount   int `json:"managerOrdersCount"`
	EmployeeOrdersCount  int `json:"employeeOrdersCount"`

	// Inputs echoed for the consumer.
	DeliveryFee    decimal.Decimal `json:"deliveryFee"`
	InitialCapital decimal.Decimal `json:"initialCapital"`
}

// CalculateFinancialSummary recomputes the full metric chain from the given
// snapshot. Pure: no I/O, no mutation of the snapshot, same input bytes in,
// same output bytes out.
func CalculateFinancialSummary(snapshot *models.FinancialSnapshot, dateRange *DateRange) *FinancialSummary {
	initialCapital := settingDecimal(snapshot.Settings, models.SettingKeyInitialCapital, decimal.Zero)
	deliveryFee := settingDecimal(snapshot.Settings, models.SettingKeyDeliveryFee, DefaultDeliveryFee)

	delivered, managerOrders, employeeOrders := classifyOrders(snapshot.Orders, dateRange)

	managerRevenue := decimal.Zero
	managerCOGS := decimal.Zero
	for _, order := range managerOrders {
		managerRevenue = managerRevenue.Add(orderNetRevenue(order, deliveryFee))
		managerCOGS = managerCOGS.Add(orderCOGS(order))
	}
	managerProfit := managerRevenue.Sub(managerCOGS)

	employeeRevenue := decimal.Zero
	employeeCOGS := decimal.Zero
	for _, order := range employeeOrders {
		employeeRevenue = employeeRevenue.Add(orderNetRevenue(order, deliveryFee))
		employeeCOGS = employeeCOGS.Add(orderCOGS(order))
	}
	totalEmployeeProfit := employeeRevenue.Sub(employeeCOGS)

	// Dues only count while the linked order is still delivered and in range.
	// The date check is repeated on the order's own timestamp, independent of
	// the classification above.
	deliveredById := make(map[int]*models.Order, len(delivered))
	for _, order := range delivered {
		deliveredById[order.ID] = order
	}
	employeeDues := decimal.Zero
	for _, profit := range snapshot.Profits {
		order, ok := deliveredById[profit.OrderId]
		if !ok {
			continue
		}
		if !InRange(order.EffectiveDate(), dateRange) {
			continue
		}
		employeeDues = employeeDues.Add(profit.EmployeeProfit)
	}

	// May go negative when dues exceed the computed employee profit. That is
	// surfaced as-is: it signals inconsistent upstream data, and hiding it
	// would corrupt the balance identities.
	systemProfitFromEmployees := totalEmployeeProfit.Sub(employeeDues)
	totalSystemProfit := managerProfit.Add(systemProfitFromEmployees)

	generalExpenses := decimal.Zero
	for _, expense := range snapshot.Expenses {
		if !InRange(expense.TransactionDate, dateRange) {
			continue
		}
		if !expense.CountsAsGeneralExpense() {
			continue
		}
		generalExpenses = generalExpenses.Add(expense.Amount)
	}

	totalPurchases := decimal.Zero
	for _, purchase := range snapshot.Purchases {
		if !InRange(purchase.CreatedAt, dateRange) {
			continue
		}
		totalPurchases = totalPurchases.Add(purchase.TotalAmount)
	}

	// Inventory reflects the current stock snapshot, never the window.
	inventoryValue := decimal.Zero
	for _, product := range snapshot.Products {
		for _, variant := range product.Variants {
			cost := firstNonZero(variant.CostPrice, product.CostPrice)
			inventoryValue = inventoryValue.Add(variant.Quantity.Mul(cost))
		}
	}

	netProfit := totalSystemProfit.Sub(generalExpenses)
	mainCashBalance := initialCapital.Add(netProfit).Sub(totalPurchases)

	totalRevenue := managerRevenue.Add(employeeRevenue)
	totalCOGS := managerCOGS.Add(employeeCOGS)

	return &FinancialSummary{
		TotalRevenue:    totalRevenue,
		ManagerRevenue:  managerRevenue,
		EmployeeRevenue: employeeRevenue,
		TotalCOGS:       totalCOGS,
		ManagerCOGS:     managerCOGS,
		EmployeeCOGS:    employeeCOGS,
		GrossProfit:     totalRevenue.Sub(totalCOGS),

		ManagerProfit:             managerProfit,
		TotalEmployeeProfit:       totalEmployeeProfit,
		EmployeeDues:              employeeDues,
		SystemProfitFromEmployees: systemProfitFromEmployees,
		TotalSystemProfit:         totalSystemProfit,
		NetProfit:                 netProfit,

		GeneralExpenses: generalExpenses,
		TotalPurchases:  totalPurchases,

		InventoryValue:  inventoryValue,
		MainCashBalance: mainCashBalance,
		TotalAssets:     mainCashBalance.Add(inventoryValue),

		DeliveredOrders: delivered,
		ManagerOrders:   managerOrders,
		EmployeeOrders:  employeeOrders,

		DeliveredOrdersCount: len(delivered),
		ManagerOrdersCount:   len(managerOrders),
		EmployeeOrdersCount:  len(employeeOrders),

		DeliveryFee:    deliveryFee,
		InitialCapital: initialCapital,
	}
}

// classifyOrders returns the delivered set and its manager/employee
// partition, preserving the input order. The two partitions are disjoint and
// cover the delivered set exactly.
func classifyOrders(orders []*models.Order, dateRange *DateRange) (delivered, manager, employee []*models.Order) {
	delivered = make([]*models.Order, 0, len(orders))
	manager = []*models.Order{}
	employee = []*models.Order{}
	for _, order := range orders {
		if !order.IsDelivered() {
			continue
		}
		if !InRange(order.EffectiveDate(), dateRange) {
			continue
		}
		delivered = append(delivered, order)
		if order.CreatedBy == "" || order.CreatedBy == models.ManagerSentinel {
			manager = append(manager, order)
		} else {
			employee = append(employee, order)
		}
	}
	return delivered, manager, employee
}

// orderNetRevenue is (final_amount, else total_amount, else 0) minus the flat
// delivery fee. One delivery charge per order regardless of item count.
func orderNetRevenue(order *models.Order, deliveryFee decimal.Decimal) decimal.Decimal {
	amount := firstNonZero(order.FinalAmount, order.TotalAmount)
	return amount.Sub(deliveryFee)
}

// orderCOGS sums quantity times (variant cost, else product cost, else 0) over the line
// items. Orders without items contribute zero cost but still earn revenue.
func orderCOGS(order *models.Order) decimal.Decimal {
	cogs := decimal.Zero
	for _, item := range order.OrderItems {
		cost := decimal.Zero
		if item.Variant != nil && !item.Variant.CostPrice.IsZero() {
			cost = item.Variant.CostPrice
		} else if item.Product != nil && !item.Product.CostPrice.IsZero() {
			cost = item.Product.CostPrice
		}
		cogs = cogs.Add(cost.Mul(item.Quantity))
	}
	return cogs
}

// firstNonZero keeps the original fallback-chain semantics: a zero value
// falls through to the next candidate.
func firstNonZero(values ...decimal.Decimal) decimal.Decimal {
	for _, v := range values {
		if !v.IsZero() {
			return v
		}
	}
	return decimal.Zero
}

func settingDecimal(settings map[string]string, key string, fallback decimal.Decimal) decimal.Decimal {
	raw, ok := settings[key]
	if !ok {
		return fallback
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return fallback
	}
	return value
}
