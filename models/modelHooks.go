package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/ryus3/friendly-byte-shout-02/config"
	"github.com/ryus3/friendly-byte-shout-02/utils"
	"gorm.io/gorm"
)

// Record-change hooks.
//
// Every mutation on the six record collections:
//  1. announces the change on the collection's Redis channel (drives the
//     finance watcher's auto-refresh),
//  2. drops cached financial summaries (they are stale by definition),
//  3. mirrors the change to the Pub/Sub integration topic, best-effort.
//
// Hook failures are logged and swallowed: notification delivery must never
// roll back the write that triggered it.

// FinancialSummaryCachePattern matches every cached summary key.
const FinancialSummaryCachePattern = "FinancialSummary:*"

func notifyChange(tx *gorm.DB, collection string, action string, recordId int) {
	logger := config.GetLogger()
	ctx := tx.Statement.Context

	correlationId, _ := utils.GetCorrelationIdFromContext(ctx)
	if correlationId == "" {
		correlationId = uuid.NewString()
	}

	if err := config.RemoveRedisPattern(FinancialSummaryCachePattern); err != nil {
		config.LogError(logger, "modelHooks", "notifyChange", "invalidate summary cache", collection, err)
	}

	if err := config.PublishChange(ctx, config.ChangeEvent{
		Collection:    collection,
		Action:        action,
		RecordId:      recordId,
		CorrelationId: correlationId,
	}); err != nil {
		config.LogError(logger, "modelHooks", "notifyChange", "publish redis change", collection, err)
	}

	go func() {
		if err := config.PublishRecordChange(config.RecordChangeMessage{
			Collection:    collection,
			Action:        action,
			RecordId:      recordId,
			OccurredAt:    time.Now().UTC(),
			CorrelationId: correlationId,
		}); err != nil {
			config.LogError(logger, "modelHooks", "notifyChange", "publish integration feed", collection, err)
		}
	}()
}

func (o *Order) AfterCreate(tx *gorm.DB) (err error) {
	notifyChange(tx, CollectionOrders, ChangeActionCreate, o.ID)
	return nil
}

func (o *Order) AfterUpdate(tx *gorm.DB) (err error) {
	notifyChange(tx, CollectionOrders, ChangeActionUpdate, o.ID)
	return nil
}

func (o *Order) AfterDelete(tx *gorm.DB) (err error) {
	notifyChange(tx, CollectionOrders, ChangeActionDelete, o.ID)
	return nil
}

func (p *ProfitEntry) AfterCreate(tx *gorm.DB) (err error) {
	notifyChange(tx, CollectionProfits, ChangeActionCreate, p.ID)
	return nil
}

func (p *ProfitEntry) AfterUpdate(tx *gorm.DB) (err error) {
	notifyChange(tx, CollectionProfits, ChangeActionUpdate, p.ID)
	return nil
}

func (p *ProfitEntry) AfterDelete(tx *gorm.DB) (err error) {
	notifyChange(tx, CollectionProfits, ChangeActionDelete, p.ID)
	return nil
}

func (e *Expense) AfterCreate(tx *gorm.DB) (err error) {
	notifyChange(tx, CollectionExpenses, ChangeActionCreate, e.ID)
	return nil
}

func (e *Expense) AfterUpdate(tx *gorm.DB) (err error) {
	notifyChange(tx, CollectionExpenses, ChangeActionUpdate, e.ID)
	return nil
}

func (e *Expense) AfterDelete(tx *gorm.DB) (err error) {
	notifyChange(tx, CollectionExpenses, ChangeActionDelete, e.ID)
	return nil
}

func (p *Purchase) AfterCreate(tx *gorm.DB) (err error) {
	notifyChange(tx, CollectionPurchases, ChangeActionCreate, p.ID)
	return nil
}

func (p *Purchase) AfterUpdate(tx *gorm.DB) (err error) {
	notifyChange(tx, CollectionPurchases, ChangeActionUpdate, p.ID)
	return nil
}

func (p *Purchase) AfterDelete(tx *gorm.DB) (err error) {
	notifyChange(tx, CollectionPurchases, ChangeActionDelete, p.ID)
	return nil
}

// Products publish like every other collection; the finance watcher simply
// does not subscribe to this channel (see workflow.WatchedCollections).
func (p *Product) AfterCreate(tx *gorm.DB) (err error) {
	notifyChange(tx, CollectionProducts, ChangeActionCreate, p.ID)
	return nil
}

func (p *Product) AfterUpdate(tx *gorm.DB) (err error) {
	notifyChange(tx, CollectionProducts, ChangeActionUpdate, p.ID)
	return nil
}

func (p *Product) AfterDelete(tx *gorm.DB) (err error) {
	notifyChange(tx, CollectionProducts, ChangeActionDelete, p.ID)
	return nil
}

func (v *ProductVariant) AfterUpdate(tx *gorm.DB) (err error) {
	notifyChange(tx, CollectionProducts, ChangeActionUpdate, v.ProductId)
	return nil
}

func (s *Setting) AfterCreate(tx *gorm.DB) (err error) {
	notifyChange(tx, CollectionSettings, ChangeActionCreate, s.ID)
	return nil
}

func (s *Setting) AfterUpdate(tx *gorm.DB) (err error) {
	notifyChange(tx, CollectionSettings, ChangeActionUpdate, s.ID)
	return nil
}
