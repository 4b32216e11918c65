package reports_test

import (
	"bytes"
	"encoding/json"
	"math/rand"
	"testing"
	"time"

	"github.com/ryus3/friendly-byte-shout-02/models"
	"github.com/ryus3/friendly-byte-shout-02/models/reports"
	"github.com/shopspring/decimal"
)

func dec(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func truePtr() *bool {
	v := true
	return &v
}

func falsePtr() *bool {
	v := false
	return &v
}

func day(n int) time.Time {
	return time.Date(2026, 1, n, 12, 0, 0, 0, time.UTC)
}

func deliveredOrder(id int, createdBy string, finalAmount int64, items ...*models.OrderItem) *models.Order {
	return &models.Order{
		ID:              id,
		Status:          models.OrderStatusDelivered,
		CreatedBy:       createdBy,
		FinalAmount:     dec(finalAmount),
		ReceiptReceived: truePtr(),
		OrderItems:      items,
		CreatedAt:       day(5),
		UpdatedAt:       day(10),
	}
}

func item(qty int64, variantCost int64, productCost int64) *models.OrderItem {
	it := &models.OrderItem{Quantity: dec(qty)}
	if variantCost >= 0 {
		it.Variant = &models.ProductVariant{CostPrice: dec(variantCost)}
	}
	if productCost >= 0 {
		it.Product = &models.Product{CostPrice: dec(productCost)}
	}
	return it
}

func baseSnapshot() *models.FinancialSnapshot {
	return &models.FinancialSnapshot{
		Settings: map[string]string{
			models.SettingKeyInitialCapital: "5000000",
			models.SettingKeyDeliveryFee:    "5000",
		},
	}
}

// Worked example: one manager order, final 105000, fee 5000, two units at
// cost 10000 each. Revenue 100000, COGS 20000, profit 80000, cash 5080000.
func TestManagerOrderMetricChain(t *testing.T) {
	snapshot := baseSnapshot()
	snapshot.Orders = []*models.Order{
		deliveredOrder(1, "manager", 105000, item(2, 10000, -1)),
	}

	s := reports.CalculateFinancialSummary(snapshot, nil)

	checks := []struct {
		name string
		got  decimal.Decimal
		want int64
	}{
		{"managerRevenue", s.ManagerRevenue, 100000},
		{"totalRevenue", s.TotalRevenue, 100000},
		{"managerCOGS", s.ManagerCOGS, 20000},
		{"managerProfit", s.ManagerProfit, 80000},
		{"grossProfit", s.GrossProfit, 80000},
		{"totalSystemProfit", s.TotalSystemProfit, 80000},
		{"netProfit", s.NetProfit, 80000},
		{"mainCashBalance", s.MainCashBalance, 5080000},
		{"totalAssets", s.TotalAssets, 5080000},
	}
	for _, c := range checks {
		if !c.got.Equal(dec(c.want)) {
			t.Errorf("%s = %s, want %d", c.name, c.got, c.want)
		}
	}
	if s.ManagerOrdersCount != 1 || s.EmployeeOrdersCount != 0 || s.DeliveredOrdersCount != 1 {
		t.Errorf("counts = %d/%d/%d, want 1/0/1", s.ManagerOrdersCount, s.EmployeeOrdersCount, s.DeliveredOrdersCount)
	}
}

// An empty created_by classifies as manager-originated, same as the sentinel.
func TestEmptyCreatedByIsManager(t *testing.T) {
	snapshot := baseSnapshot()
	snapshot.Orders = []*models.Order{
		deliveredOrder(1, "", 50000),
		deliveredOrder(2, "manager", 50000),
		deliveredOrder(3, "aisha", 50000),
	}

	s := reports.CalculateFinancialSummary(snapshot, nil)
	if s.ManagerOrdersCount != 2 {
		t.Fatalf("managerOrdersCount = %d, want 2", s.ManagerOrdersCount)
	}
	if s.EmployeeOrdersCount != 1 {
		t.Fatalf("employeeOrdersCount = %d, want 1", s.EmployeeOrdersCount)
	}
}

// Only delivered/completed orders with a received receipt count.
func TestDeliveredGate(t *testing.T) {
	snapshot := baseSnapshot()
	snapshot.Orders = []*models.Order{
		{ID: 1, Status: models.OrderStatusDelivered, ReceiptReceived: truePtr(), FinalAmount: dec(10000)},
		{ID: 2, Status: models.OrderStatusCompleted, ReceiptReceived: truePtr(), FinalAmount: dec(10000)},
		{ID: 3, Status: models.OrderStatusDelivered, ReceiptReceived: falsePtr(), FinalAmount: dec(10000)},
		{ID: 4, Status: models.OrderStatusDelivered, ReceiptReceived: nil, FinalAmount: dec(10000)},
		{ID: 5, Status: models.OrderStatusPending, ReceiptReceived: truePtr(), FinalAmount: dec(10000)},
		{ID: 6, Status: models.OrderStatusCancelled, ReceiptReceived: truePtr(), FinalAmount: dec(10000)},
	}

	s := reports.CalculateFinancialSummary(snapshot, nil)
	if s.DeliveredOrdersCount != 2 {
		t.Fatalf("deliveredOrdersCount = %d, want 2", s.DeliveredOrdersCount)
	}
}

// Dues exceeding the computed employee profit go negative, not to zero.
// Hiding the mismatch would break the balance identities.
func TestSystemProfitFromEmployeesMayBeNegative(t *testing.T) {
	snapshot := baseSnapshot()
	snapshot.Orders = []*models.Order{
		deliveredOrder(1, "aisha", 45000, item(1, 20000, -1)),
	}
	// revenue 40000, cogs 20000 => employee profit 20000; dues 30000.
	snapshot.Profits = []*models.ProfitEntry{
		{ID: 1, OrderId: 1, EmployeeName: "aisha", EmployeeProfit: dec(30000)},
	}

	s := reports.CalculateFinancialSummary(snapshot, nil)
	if !s.TotalEmployeeProfit.Equal(dec(20000)) {
		t.Fatalf("totalEmployeeProfit = %s, want 20000", s.TotalEmployeeProfit)
	}
	if !s.EmployeeDues.Equal(dec(30000)) {
		t.Fatalf("employeeDues = %s, want 30000", s.EmployeeDues)
	}
	if !s.SystemProfitFromEmployees.Equal(dec(-10000)) {
		t.Fatalf("systemProfitFromEmployees = %s, want -10000", s.SystemProfitFromEmployees)
	}
	// Identity: totalSystemProfit = managerProfit + systemProfitFromEmployees.
	if !s.TotalSystemProfit.Equal(s.ManagerProfit.Add(s.SystemProfitFromEmployees)) {
		t.Fatalf("totalSystemProfit identity broken: %s", s.TotalSystemProfit)
	}
}

// A profit entry only counts while its order is delivered and in range.
func TestEmployeeDuesRequireDeliveredLinkedOrder(t *testing.T) {
	from := day(1)
	to := day(15)
	dateRange := &reports.DateRange{From: &from, To: &to}

	outOfRange := deliveredOrder(2, "aisha", 40000)
	outOfRange.UpdatedAt = day(20)

	snapshot := baseSnapshot()
	snapshot.Orders = []*models.Order{
		deliveredOrder(1, "aisha", 40000),
		outOfRange,
		{ID: 3, Status: models.OrderStatusPending, CreatedBy: "aisha", FinalAmount: dec(40000), CreatedAt: day(5)},
	}
	snapshot.Profits = []*models.ProfitEntry{
		{ID: 1, OrderId: 1, EmployeeProfit: dec(7000)},  // counts
		{ID: 2, OrderId: 2, EmployeeProfit: dec(9000)},  // order out of range
		{ID: 3, OrderId: 3, EmployeeProfit: dec(5000)},  // order not delivered
		{ID: 4, OrderId: 99, EmployeeProfit: dec(4000)}, // dangling link
	}

	s := reports.CalculateFinancialSummary(snapshot, dateRange)
	if !s.EmployeeDues.Equal(dec(7000)) {
		t.Fatalf("employeeDues = %s, want 7000", s.EmployeeDues)
	}
}

// System bookkeeping rows, dues payouts and goods-purchase markers never count
// as general expenses; their amounts are already captured elsewhere.
func TestGeneralExpenseExclusions(t *testing.T) {
	snapshot := baseSnapshot()
	snapshot.Expenses = []*models.Expense{
		{ID: 1, Amount: dec(1000), TransactionDate: day(3)},
		{ID: 2, Amount: dec(2000), TransactionDate: day(3), ExpenseType: models.ExpenseTypeSystem},
		{ID: 3, Amount: dec(4000), TransactionDate: day(3), Category: models.ExpenseCategoryEmployeeDues},
		{ID: 4, Amount: dec(8000), TransactionDate: day(3), RelatedData: models.ExpenseRelatedData{Category: models.ExpenseCategoryGoodsPurchase}},
		{ID: 5, Amount: dec(16000), TransactionDate: day(3), Category: "rent"},
	}

	s := reports.CalculateFinancialSummary(snapshot, nil)
	if !s.GeneralExpenses.Equal(dec(17000)) {
		t.Fatalf("generalExpenses = %s, want 17000", s.GeneralExpenses)
	}
}

// Zero amounts fall through the fallback chain rather than short-circuiting.
func TestAmountAndCostFallbackChains(t *testing.T) {
	snapshot := baseSnapshot()
	snapshot.Settings[models.SettingKeyDeliveryFee] = "0"
	snapshot.Orders = []*models.Order{
		func() *models.Order {
			o := deliveredOrder(1, "manager", 0) // final zero => total
			o.TotalAmount = dec(30000)
			return o
		}(),
		deliveredOrder(2, "manager", 0), // both zero => 0
	}

	s := reports.CalculateFinancialSummary(snapshot, nil)
	if !s.ManagerRevenue.Equal(dec(30000)) {
		t.Fatalf("managerRevenue = %s, want 30000", s.ManagerRevenue)
	}

	// Variant cost zero falls through to product cost; both zero => 0.
	snapshot = baseSnapshot()
	snapshot.Orders = []*models.Order{
		deliveredOrder(1, "manager", 50000,
			item(1, 0, 6000), // variant zero => product 6000
			item(1, 4000, 9000),
			item(1, 0, 0), // both zero => 0
		),
	}
	s = reports.CalculateFinancialSummary(snapshot, nil)
	if !s.ManagerCOGS.Equal(dec(10000)) {
		t.Fatalf("managerCOGS = %s, want 10000", s.ManagerCOGS)
	}
}

// A missing or non-numeric delivery_fee setting uses the 5000 default; a
// present "0" means genuinely free delivery.
func TestDeliveryFeeSetting(t *testing.T) {
	cases := []struct {
		name    string
		value   string
		present bool
		want    int64
	}{
		{"missing", "", false, 5000},
		{"non-numeric", "abc", true, 5000},
		{"zero", "0", true, 0},
		{"custom", "7500", true, 7500},
	}
	for _, c := range cases {
		snapshot := baseSnapshot()
		delete(snapshot.Settings, models.SettingKeyDeliveryFee)
		if c.present {
			snapshot.Settings[models.SettingKeyDeliveryFee] = c.value
		}
		snapshot.Orders = []*models.Order{deliveredOrder(1, "manager", 100000)}

		s := reports.CalculateFinancialSummary(snapshot, nil)
		want := dec(100000).Sub(dec(c.want))
		if !s.ManagerRevenue.Equal(want) {
			t.Errorf("%s: managerRevenue = %s, want %s", c.name, s.ManagerRevenue, want)
		}
		if !s.DeliveryFee.Equal(dec(c.want)) {
			t.Errorf("%s: deliveryFee = %s, want %d", c.name, s.DeliveryFee, c.want)
		}
	}
}

// Purchases are cash-out when in range; inventory valuation ignores the
// window entirely.
func TestPurchasesAndInventory(t *testing.T) {
	from := day(1)
	to := day(10)
	dateRange := &reports.DateRange{From: &from, To: &to}

	snapshot := baseSnapshot()
	snapshot.Purchases = []*models.Purchase{
		{ID: 1, TotalAmount: dec(40000), CreatedAt: day(5)},
		{ID: 2, TotalAmount: dec(60000), CreatedAt: day(20)}, // outside window
	}
	snapshot.Products = []*models.Product{
		{ID: 1, CostPrice: dec(3000), Variants: []*models.ProductVariant{
			{ID: 1, Quantity: dec(10), CostPrice: dec(2500), CreatedAt: day(25)}, // date irrelevant
			{ID: 2, Quantity: dec(4)}, // cost falls back to product
		}},
	}

	s := reports.CalculateFinancialSummary(snapshot, dateRange)
	if !s.TotalPurchases.Equal(dec(40000)) {
		t.Fatalf("totalPurchases = %s, want 40000", s.TotalPurchases)
	}
	wantInventory := dec(10*2500 + 4*3000)
	if !s.InventoryValue.Equal(wantInventory) {
		t.Fatalf("inventoryValue = %s, want %s", s.InventoryValue, wantInventory)
	}
	if !s.MainCashBalance.Equal(s.InitialCapital.Add(s.NetProfit).Sub(s.TotalPurchases)) {
		t.Fatalf("mainCashBalance identity broken: %s", s.MainCashBalance)
	}
	if !s.TotalAssets.Equal(s.MainCashBalance.Add(s.InventoryValue)) {
		t.Fatalf("totalAssets identity broken: %s", s.TotalAssets)
	}
}

// Window bounds are inclusive; the delivery timestamp wins over creation time.
func TestDateWindowBoundaries(t *testing.T) {
	from := day(10)
	to := day(20)
	dateRange := &reports.DateRange{From: &from, To: &to}

	mk := func(id int, updated time.Time) *models.Order {
		o := deliveredOrder(id, "manager", 10000)
		o.UpdatedAt = updated
		return o
	}

	snapshot := baseSnapshot()
	snapshot.Orders = []*models.Order{
		mk(1, day(10)), // on the lower bound
		mk(2, day(20)), // on the upper bound
		mk(3, from.Add(-time.Microsecond)),
		mk(4, to.Add(time.Microsecond)),
		func() *models.Order {
			// No update timestamp: creation time (day 15) decides.
			o := deliveredOrder(5, "manager", 10000)
			o.CreatedAt = day(15)
			o.UpdatedAt = time.Time{}
			return o
		}(),
		func() *models.Order {
			// No timestamps at all: fail-open, included.
			o := deliveredOrder(6, "manager", 10000)
			o.CreatedAt = time.Time{}
			o.UpdatedAt = time.Time{}
			return o
		}(),
	}

	s := reports.CalculateFinancialSummary(snapshot, dateRange)
	if s.DeliveredOrdersCount != 4 {
		t.Fatalf("deliveredOrdersCount = %d, want 4", s.DeliveredOrdersCount)
	}
}

func TestInRangeFailOpen(t *testing.T) {
	from := day(10)
	to := day(20)

	if !reports.InRange(day(5), nil) {
		t.Error("nil range should include everything")
	}
	if !reports.InRange(day(5), &reports.DateRange{To: &to}) {
		t.Error("missing From should include everything")
	}
	if !reports.InRange(day(25), &reports.DateRange{From: &from}) {
		t.Error("missing To should include everything")
	}
	if !reports.InRange(time.Time{}, &reports.DateRange{From: &from, To: &to}) {
		t.Error("zero timestamp should be included")
	}
	if reports.InRange(day(5), &reports.DateRange{From: &from, To: &to}) {
		t.Error("day 5 should be outside [10, 20]")
	}
}

func TestParseDateRange(t *testing.T) {
	if dr := reports.ParseDateRange("", ""); dr != nil {
		t.Fatalf("empty bounds should yield nil range, got %+v", dr)
	}
	if dr := reports.ParseDateRange("not-a-date", "also-not"); dr != nil {
		t.Fatalf("unparseable bounds should yield nil range, got %+v", dr)
	}
	dr := reports.ParseDateRange("2026-01-10T00:00:00Z", "garbage")
	if dr == nil || dr.From == nil || dr.To != nil {
		t.Fatalf("partial parse should keep the good bound only, got %+v", dr)
	}
}

// The delivered set is exactly partitioned: every delivered order lands in
// precisely one of the manager/employee sequences, in input order.
func TestPartitionProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	creators := []string{"", "manager", "aisha", "omar", "lina"}
	statuses := []models.OrderStatus{
		models.OrderStatusPending, models.OrderStatusShipped,
		models.OrderStatusDelivered, models.OrderStatusCompleted,
		models.OrderStatusCancelled, models.OrderStatusReturned,
	}

	for run := 0; run < 50; run++ {
		snapshot := baseSnapshot()
		n := rng.Intn(40)
		for i := 0; i < n; i++ {
			receipt := falsePtr()
			if rng.Intn(2) == 0 {
				receipt = truePtr()
			}
			snapshot.Orders = append(snapshot.Orders, &models.Order{
				ID:              i + 1,
				Status:          statuses[rng.Intn(len(statuses))],
				CreatedBy:       creators[rng.Intn(len(creators))],
				FinalAmount:     dec(int64(rng.Intn(200000))),
				ReceiptReceived: receipt,
				CreatedAt:       day(1 + rng.Intn(28)),
				UpdatedAt:       day(1 + rng.Intn(28)),
			})
		}

		s := reports.CalculateFinancialSummary(snapshot, nil)
		if len(s.ManagerOrders)+len(s.EmployeeOrders) != len(s.DeliveredOrders) {
			t.Fatalf("run %d: partition sizes %d+%d != %d",
				run, len(s.ManagerOrders), len(s.EmployeeOrders), len(s.DeliveredOrders))
		}
		seen := make(map[int]bool)
		for _, o := range s.DeliveredOrders {
			if seen[o.ID] {
				t.Fatalf("run %d: order %d appears twice in delivered set", run, o.ID)
			}
			seen[o.ID] = true
		}
		for _, o := range append(append([]*models.Order{}, s.ManagerOrders...), s.EmployeeOrders...) {
			if !seen[o.ID] {
				t.Fatalf("run %d: partitioned order %d not in delivered set", run, o.ID)
			}
		}
		// Input order preserved within each sequence.
		for i := 1; i < len(s.DeliveredOrders); i++ {
			if s.DeliveredOrders[i-1].ID >= s.DeliveredOrders[i].ID {
				t.Fatalf("run %d: delivered sequence not in input order", run)
			}
		}
	}
}

// The four balance identities must hold for any input.
func TestBalanceIdentitiesHoldOnRandomData(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for run := 0; run < 50; run++ {
		snapshot := randomSnapshot(rng)
		s := reports.CalculateFinancialSummary(snapshot, nil)

		if !s.TotalRevenue.Equal(s.ManagerRevenue.Add(s.EmployeeRevenue)) {
			t.Fatalf("run %d: totalRevenue != managerRevenue + employeeRevenue", run)
		}
		if !s.TotalSystemProfit.Equal(s.ManagerProfit.Add(s.SystemProfitFromEmployees)) {
			t.Fatalf("run %d: totalSystemProfit != managerProfit + systemProfitFromEmployees", run)
		}
		if !s.NetProfit.Equal(s.TotalSystemProfit.Sub(s.GeneralExpenses)) {
			t.Fatalf("run %d: netProfit != totalSystemProfit - generalExpenses", run)
		}
		if !s.MainCashBalance.Equal(s.InitialCapital.Add(s.NetProfit).Sub(s.TotalPurchases)) {
			t.Fatalf("run %d: mainCashBalance != initialCapital + netProfit - totalPurchases", run)
		}
		if !s.TotalAssets.Equal(s.MainCashBalance.Add(s.InventoryValue)) {
			t.Fatalf("run %d: totalAssets != mainCashBalance + inventoryValue", run)
		}
	}
}

// The same snapshot must serialize to the same bytes on every run.
func TestSummaryIsDeterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	snapshot := randomSnapshot(rng)

	first, err := json.Marshal(reports.CalculateFinancialSummary(snapshot, nil))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := json.Marshal(reports.CalculateFinancialSummary(snapshot, nil))
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if !bytes.Equal(first, again) {
			t.Fatalf("run %d produced different bytes", i)
		}
	}
}

func randomSnapshot(rng *rand.Rand) *models.FinancialSnapshot {
	snapshot := baseSnapshot()
	creators := []string{"", "manager", "aisha", "omar"}

	orders := rng.Intn(30)
	for i := 0; i < orders; i++ {
		receipt := falsePtr()
		if rng.Intn(3) > 0 {
			receipt = truePtr()
		}
		status := models.OrderStatusDelivered
		if rng.Intn(4) == 0 {
			status = models.OrderStatusPending
		}
		var items []*models.OrderItem
		for j := 0; j < rng.Intn(4); j++ {
			items = append(items, item(int64(1+rng.Intn(5)), int64(rng.Intn(5000)), int64(rng.Intn(5000))))
		}
		snapshot.Orders = append(snapshot.Orders, &models.Order{
			ID:              i + 1,
			Status:          status,
			CreatedBy:       creators[rng.Intn(len(creators))],
			FinalAmount:     dec(int64(rng.Intn(300000))),
			TotalAmount:     dec(int64(rng.Intn(300000))),
			ReceiptReceived: receipt,
			OrderItems:      items,
			CreatedAt:       day(1 + rng.Intn(28)),
			UpdatedAt:       day(1 + rng.Intn(28)),
		})
	}
	for i := 0; i < rng.Intn(10); i++ {
		snapshot.Profits = append(snapshot.Profits, &models.ProfitEntry{
			ID:             i + 1,
			OrderId:        1 + rng.Intn(orders+1),
			EmployeeProfit: dec(int64(rng.Intn(20000))),
		})
	}
	for i := 0; i < rng.Intn(10); i++ {
		e := &models.Expense{ID: i + 1, Amount: dec(int64(rng.Intn(50000))), TransactionDate: day(1 + rng.Intn(28))}
		switch rng.Intn(4) {
		case 0:
			e.ExpenseType = models.ExpenseTypeSystem
		case 1:
			e.Category = models.ExpenseCategoryEmployeeDues
		case 2:
			e.RelatedData.Category = models.ExpenseCategoryGoodsPurchase
		}
		snapshot.Expenses = append(snapshot.Expenses, e)
	}
	for i := 0; i < rng.Intn(6); i++ {
		snapshot.Purchases = append(snapshot.Purchases, &models.Purchase{
			ID: i + 1, TotalAmount: dec(int64(rng.Intn(100000))), CreatedAt: day(1 + rng.Intn(28)),
		})
	}
	for i := 0; i < rng.Intn(6); i++ {
		snapshot.Products = append(snapshot.Products, &models.Product{
			ID: i + 1, CostPrice: dec(int64(rng.Intn(4000))),
			Variants: []*models.ProductVariant{
				{ID: i*2 + 1, Quantity: dec(int64(rng.Intn(20))), CostPrice: dec(int64(rng.Intn(4000)))},
			},
		})
	}
	return snapshot
}
