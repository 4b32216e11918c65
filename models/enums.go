package models

// Collection names, as used for change channels and cache invalidation.
const (
	CollectionOrders    = "orders"
	CollectionProfits   = "profits"
	CollectionExpenses  = "expenses"
	CollectionPurchases = "purchases"
	CollectionProducts  = "products"
	CollectionSettings  = "settings"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusReturned  OrderStatus = "returned"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// ManagerSentinel marks orders originated by the shop manager. An empty
// created_by means the same thing.
const ManagerSentinel = "manager"

type UserRole string

const (
	UserRoleManager  UserRole = "manager"
	UserRoleEmployee UserRole = "employee"
)

// Expense classification. System-type expenses, employee-dues expenses and
// goods-purchase expenses are excluded from generalExpenses because their
// amounts are already captured by the profit split, the dues ledger and the
// purchases total.
const (
	ExpenseTypeSystem = "system"

	ExpenseCategoryEmployeeDues  = "employee_dues"
	ExpenseCategoryGoodsPurchase = "goods_purchase"
)

// Settings keys read by the financial engine.
const (
	SettingKeyInitialCapital = "initial_capital"
	SettingKeyDeliveryFee    = "delivery_fee"
)

// Change actions for notification envelopes.
const (
	ChangeActionCreate = "create"
	ChangeActionUpdate = "update"
	ChangeActionDelete = "delete"
)
