package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// StartAccountCleanup runs CleanupExpiredAccounts on the given cron schedule.
// Stop the returned cron to detach it.
func StartAccountCleanup(schedule string, db *gorm.DB, storage ObjectStorage) (*cron.Cron, error) {
	c := cron.New()

	_, err := c.AddFunc(schedule, func() {
		n, err := CleanupExpiredAccounts(context.Background(), db, storage, time.Now())
		if err != nil {
			zap.L().Error("Account cleanup failed", zap.Error(err))
			return
		}

		zap.L().Debug("Account cleanup finished", zap.Int("deleted", n))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to schedule account cleanup, %w", err)
	}

	zap.L().Debug("Account cleanup attached", zap.String("schedule", schedule))

	c.Start()
	return c, nil
}
