// seed-admin creates or updates the back-office manager user and the two
// settings the financial engine reads (initial_capital, delivery_fee).
//
// Usage (from backend directory):
//   DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/seed-admin
//
// Optional env:
//   SEED_MANAGER_PASSWORD   (default: change-me)
//   SEED_INITIAL_CAPITAL    (default: 0)
//   SEED_DELIVERY_FEE       (default: 5000)
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/go-sql-driver/mysql"
	"github.com/ryus3/friendly-byte-shout-02/config"
	"github.com/ryus3/friendly-byte-shout-02/models"
	"github.com/ryus3/friendly-byte-shout-02/utils"
	"gorm.io/gorm"
)

const (
	managerUsername = "manager"
	managerName     = "Store Manager"
)

func main() {
	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}

	models.MigrateTable()

	password := os.Getenv("SEED_MANAGER_PASSWORD")
	if password == "" {
		password = "change-me"
	}
	hashed, err := utils.HashPassword(password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to hash password: %v\n", err)
		os.Exit(1)
	}
	hashedStr := string(hashed)

	active := true
	u := models.User{
		Username: managerUsername,
		FullName: managerName,
		Password: hashedStr,
		Role:     models.UserRoleManager,
		IsActive: &active,
	}
	if err := db.WithContext(ctx).Create(&u).Error; err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			// Already seeded: refresh password and role instead.
			if err := db.WithContext(ctx).Model(&models.User{}).Where("username = ?", managerUsername).Updates(map[string]any{
				"password":  hashedStr,
				"full_name": managerName,
				"is_active": true,
				"role":      models.UserRoleManager,
			}).Error; err != nil {
				fmt.Fprintf(os.Stderr, "failed to update manager user: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("Updated manager user: username=%q\n", managerUsername)
		} else {
			fmt.Fprintf(os.Stderr, "failed to create manager user: %v\n", err)
			os.Exit(1)
		}
	} else {
		fmt.Printf("Created manager user: username=%q\n", managerUsername)
	}

	seedSetting(ctx, db, models.SettingKeyInitialCapital, os.Getenv("SEED_INITIAL_CAPITAL"), "0")
	seedSetting(ctx, db, models.SettingKeyDeliveryFee, os.Getenv("SEED_DELIVERY_FEE"), "5000")
}

// seedSetting creates the key if absent; existing values are left alone so
// reruns never clobber live configuration.
func seedSetting(ctx context.Context, db *gorm.DB, key string, value string, fallback string) {
	if value == "" {
		value = fallback
	}
	var existing models.Setting
	err := db.WithContext(ctx).Where("`key` = ?", key).Take(&existing).Error
	if err == nil {
		fmt.Printf("Setting %q already present (value=%q); skipping\n", key, existing.Value)
		return
	}
	if _, err := models.UpsertSetting(ctx, key, value); err != nil {
		fmt.Fprintf(os.Stderr, "failed to seed setting %q: %v\n", key, err)
		os.Exit(1)
	}
	fmt.Printf("Seeded setting %q = %q\n", key, value)
}
