package models

import (
	"log"

	"github.com/ryus3/friendly-byte-shout-02/config"
)

func MigrateTable() {
	db := config.GetDB()
	err := db.AutoMigrate(
		&User{},
		&Setting{},
		&Product{},
		&ProductVariant{},
		&Order{},
		&OrderItem{},
		&ProfitEntry{},
		&Expense{},
		&Purchase{},
	)
	if err != nil {
		log.Printf("auto migrate failed: %v", err)
		return
	}
	log.Println("migrated tables")
}
