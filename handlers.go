package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ryus3/friendly-byte-shout-02/config"
	"github.com/ryus3/friendly-byte-shout-02/models"
	"github.com/ryus3/friendly-byte-shout-02/models/reports"
	"github.com/ryus3/friendly-byte-shout-02/utils"
	"github.com/ryus3/friendly-byte-shout-02/workflow"
	"github.com/shopspring/decimal"
)

// authorizeManagerOnly ensures the session user holds the manager role.
// The cached user record is preferred; the DB is the fallback.
func authorizeManagerOnly(ctx context.Context) error {
	username, ok := utils.GetUsernameFromContext(ctx)
	if !ok || username == "" {
		return errors.New("unauthorized")
	}

	var user models.User
	exists, err := config.GetRedisObject("User:"+username, &user)
	if err != nil {
		return err
	}
	if !exists {
		db := config.GetDB()
		if db == nil {
			return errors.New("db is nil")
		}
		if err := db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Take(&user).Error; err != nil {
			return errors.New("unauthorized")
		}
	}
	if user.Role != models.UserRoleManager {
		return errors.New("unauthorized")
	}
	return nil
}

func requireSession(c *gin.Context) bool {
	if _, ok := utils.GetUsernameFromContext(c.Request.Context()); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return false
	}
	return true
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func loginHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}

		user, err := models.VerifyLogin(c.Request.Context(), req.Username, req.Password)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		token, err := utils.JwtGenerate(user.ID, string(user.Role))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
			return
		}

		// Session lives in Redis alongside the cached user record, both
		// bounded by the token lifespan.
		ttl := tokenLifespan()
		if err := config.SetRedisValue("Token:"+token, user.Username, ttl); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not store session"})
			return
		}
		if err := config.SetRedisObject("User:"+user.Username, user, ttl); err != nil {
			config.LogError(config.GetLogger(), "handlers", "loginHandler", "cache user record", user.Username, err)
		}

		c.JSON(http.StatusOK, gin.H{
			"token": token,
			"user":  user,
		})
	}
}

func tokenLifespan() time.Duration {
	hours, err := strconv.Atoi(os.Getenv("TOKEN_HOUR_LIFESPAN"))
	if err != nil || hours <= 0 {
		hours = 24
	}
	return time.Duration(hours) * time.Hour
}

type summaryRequest struct {
	DateRange struct {
		From string `json:"from"`
		To   string `json:"to"`
	} `json:"date_range"`
	UserId int `json:"user_id"`
}

// financialSummaryHandler is the one-shot server call site. It goes through
// the same engine as the live watcher, so both always agree.
func financialSummaryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireSession(c) {
			return
		}

		ctx, span := tracer.Start(c.Request.Context(), "financialSummaryHandler")
		defer span.End()

		var req summaryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}

		dateRange := reports.ParseDateRange(req.DateRange.From, req.DateRange.To)
		summary, err := reports.GetFinancialSummary(ctx, dateRange)
		if err != nil {
			config.LogError(config.GetLogger(), "handlers", "financialSummaryHandler", "calculate summary", req, err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   err.Error(),
				"details": "failed to calculate unified financial summary",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"summary":      summary,
			"dateRange":    dateRange,
			"calculatedAt": time.Now().UTC().Format(time.RFC3339Nano),
		})
	}
}

func liveSummaryHandler(watcher *workflow.FinanceWatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireSession(c) {
			return
		}
		c.JSON(http.StatusOK, watcher.Current())
	}
}

type refreshRequest struct {
	DateRange *struct {
		From string `json:"from"`
		To   string `json:"to"`
	} `json:"date_range"`
}

// refreshSummaryHandler forces a recompute, optionally under a new window.
func refreshSummaryHandler(watcher *workflow.FinanceWatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireSession(c) {
			return
		}

		var req refreshRequest
		// An empty body keeps the current window.
		_ = c.ShouldBindJSON(&req)

		if req.DateRange != nil {
			watcher.SetDateRange(c.Request.Context(), reports.ParseDateRange(req.DateRange.From, req.DateRange.To))
		} else {
			watcher.Refresh(c.Request.Context())
		}
		c.JSON(http.StatusOK, watcher.Current())
	}
}

// exportSummaryHandler streams the summary as an xlsx workbook.
// Query params: from, to (RFC3339, both optional).
func exportSummaryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireSession(c) {
			return
		}

		dateRange := reports.ParseDateRange(c.Query("from"), c.Query("to"))
		summary, err := reports.GetFinancialSummary(c.Request.Context(), dateRange)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   err.Error(),
				"details": "failed to calculate unified financial summary",
			})
			return
		}

		workbook, err := reports.BuildSummaryWorkbook(summary)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.Header("Content-Disposition", `attachment; filename="financial-summary.xlsx"`)
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		if err := workbook.Write(c.Writer); err != nil {
			config.LogError(config.GetLogger(), "handlers", "exportSummaryHandler", "stream workbook", nil, err)
		}
	}
}

type capitalRequest struct {
	Value decimal.Decimal `json:"value" binding:"required"`
}

func updateCapitalHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireSession(c) {
			return
		}
		if err := authorizeManagerOnly(c.Request.Context()); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var req capitalRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}

		stored, err := models.UpdateInitialCapital(c.Request.Context(), config.GetLogger(), req.Value)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"initialCapital": stored})
	}
}

func listOrdersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireSession(c) {
			return
		}
		orders, err := models.GetAllOrders(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

func createOrderHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireSession(c) {
			return
		}
		var input models.NewOrder
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		// Attribution defaults to the session user; the manager sentinel and
		// an empty value both classify as manager-originated downstream.
		if input.CreatedBy == "" {
			if username, ok := utils.GetUsernameFromContext(c.Request.Context()); ok {
				input.CreatedBy = username
			}
		}
		order, err := models.CreateOrder(c.Request.Context(), &input)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

func updateOrderStatusHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireSession(c) {
			return
		}
		orderId, err := strconv.Atoi(c.Param("id"))
		if err != nil || orderId <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
			return
		}
		var input models.OrderStatusUpdate
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		order, err := models.UpdateOrderStatus(c.Request.Context(), orderId, &input)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

func listExpensesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireSession(c) {
			return
		}
		expenses, err := models.GetAllExpenses(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, expenses)
	}
}

func createExpenseHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireSession(c) {
			return
		}
		var input models.NewExpense
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		if input.CreatedBy == "" {
			if username, ok := utils.GetUsernameFromContext(c.Request.Context()); ok {
				input.CreatedBy = username
			}
		}
		expense, err := models.CreateExpense(c.Request.Context(), &input)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, expense)
	}
}

func listPurchasesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireSession(c) {
			return
		}
		purchases, err := models.GetAllPurchases(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, purchases)
	}
}

func createPurchaseHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireSession(c) {
			return
		}
		var input models.NewPurchase
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		if input.CreatedBy == "" {
			if username, ok := utils.GetUsernameFromContext(c.Request.Context()); ok {
				input.CreatedBy = username
			}
		}
		purchase, err := models.CreatePurchase(c.Request.Context(), &input)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, purchase)
	}
}

func listProductsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireSession(c) {
			return
		}
		products, err := models.GetAllProducts(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, products)
	}
}

func createProductHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireSession(c) {
			return
		}
		var input models.NewProduct
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		product, err := models.CreateProduct(c.Request.Context(), &input)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

type stockAdjustRequest struct {
	Delta decimal.Decimal `json:"delta" binding:"required"`
}

func adjustVariantStockHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireSession(c) {
			return
		}
		variantId, err := strconv.Atoi(c.Param("id"))
		if err != nil || variantId <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid variant id"})
			return
		}
		var req stockAdjustRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		variant, err := models.AdjustVariantStock(c.Request.Context(), variantId, req.Delta)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, variant)
	}
}

func listProfitEntriesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireSession(c) {
			return
		}
		entries, err := models.GetAllProfitEntries(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, entries)
	}
}

func createProfitEntryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireSession(c) {
			return
		}
		var input models.NewProfitEntry
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		entry, err := models.CreateProfitEntry(c.Request.Context(), &input)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, entry)
	}
}
