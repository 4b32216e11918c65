package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/ryus3/friendly-byte-shout-02/config"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type Setting struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Key       string    `gorm:"uniqueIndex;size:100;not null" json:"key" binding:"required"`
	Value     string    `gorm:"size:255;not null" json:"value"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (s Setting) GetId() int {
	return s.ID
}

// GetSettingsMap loads every setting row into a key => value map.
func GetSettingsMap(ctx context.Context) (map[string]string, error) {
	db := config.GetDB()
	var settings []*Setting
	if err := db.WithContext(ctx).Find(&settings).Error; err != nil {
		return nil, err
	}
	result := make(map[string]string, len(settings))
	for _, setting := range settings {
		result[setting.Key] = setting.Value
	}
	return result, nil
}

// UpsertSetting creates the key or overwrites its value.
func UpsertSetting(ctx context.Context, key string, value string) (*Setting, error) {
	if key == "" {
		return nil, errors.New("setting key is required")
	}
	db := config.GetDB()
	var setting Setting
	err := db.WithContext(ctx).Where("`key` = ?", key).Take(&setting).Error
	if err != nil {
		setting = Setting{Key: key, Value: value}
		if err := db.WithContext(ctx).Create(&setting).Error; err != nil {
			return nil, err
		}
		return &setting, nil
	}
	if err := db.WithContext(ctx).Model(&setting).Update("value", value).Error; err != nil {
		return nil, err
	}
	setting.Value = value
	return &setting, nil
}

// UpdateInitialCapital is the single write path the financial engine owns.
// The update is serialized with a best-effort Redis lock and the stored value
// is refetched afterwards so the caller sees what a concurrent aggregation
// would see. Not transactional with respect to readers (documented
// eventual-consistency).
func UpdateInitialCapital(ctx context.Context, logger *logrus.Logger, value decimal.Decimal) (decimal.Decimal, error) {
	if locker := config.GetRedisLock(); locker != nil {
		lock, err := locker.Obtain(ctx, "lock:setting:"+SettingKeyInitialCapital, 10*time.Second, nil)
		if err == redislock.ErrNotObtained {
			logger.WithFields(logrus.Fields{
				"module": "setting",
				"key":    SettingKeyInitialCapital,
			}).Warn("could not obtain capital lock; proceeding without it")
		} else if err != nil {
			logger.WithFields(logrus.Fields{
				"module": "setting",
				"key":    SettingKeyInitialCapital,
			}).Warn("error obtaining capital lock; proceeding without it: " + err.Error())
		} else {
			defer func() {
				if releaseErr := lock.Release(ctx); releaseErr != nil {
					logger.WithFields(logrus.Fields{
						"module": "setting",
						"key":    SettingKeyInitialCapital,
					}).Warn("failed to release capital lock: " + releaseErr.Error())
				}
			}()
		}
	}

	if _, err := UpsertSetting(ctx, SettingKeyInitialCapital, value.String()); err != nil {
		return decimal.Zero, err
	}

	// Refetch the stored value rather than trusting the in-memory one.
	db := config.GetDB()
	var stored Setting
	if err := db.WithContext(ctx).Where("`key` = ?", SettingKeyInitialCapital).Take(&stored).Error; err != nil {
		return decimal.Zero, err
	}
	parsed, err := decimal.NewFromString(stored.Value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("stored capital %q is not numeric: %w", stored.Value, err)
	}
	return parsed, nil
}
