package models

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// FinancialSnapshot is the raw-record input to the financial engine: the six
// collections, read in one batch. The engine never mutates it.
type FinancialSnapshot struct {
	Orders    []*Order
	Profits   []*ProfitEntry
	Expenses  []*Expense
	Purchases []*Purchase
	Products  []*Product
	Settings  map[string]string
}

// FetchFinancialSnapshot issues all six reads concurrently and fails the
// whole batch if any single read fails. No partial snapshot is ever returned.
func FetchFinancialSnapshot(ctx context.Context) (*FinancialSnapshot, error) {
	var snapshot FinancialSnapshot

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		orders, err := GetAllOrders(gctx)
		snapshot.Orders = orders
		return err
	})
	g.Go(func() error {
		profits, err := GetAllProfitEntries(gctx)
		snapshot.Profits = profits
		return err
	})
	g.Go(func() error {
		expenses, err := GetAllExpenses(gctx)
		snapshot.Expenses = expenses
		return err
	})
	g.Go(func() error {
		purchases, err := GetAllPurchases(gctx)
		snapshot.Purchases = purchases
		return err
	})
	g.Go(func() error {
		products, err := GetAllProducts(gctx)
		snapshot.Products = products
		return err
	})
	g.Go(func() error {
		settings, err := GetSettingsMap(gctx)
		snapshot.Settings = settings
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &snapshot, nil
}
