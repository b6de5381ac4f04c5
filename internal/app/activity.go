package app

import (
	"context"

	"go.uber.org/zap"

	"github.com/talkincode/storebuilder/internal/domain"
	"github.com/talkincode/storebuilder/internal/events"
	"github.com/talkincode/storebuilder/pkg/common"
	"github.com/talkincode/storebuilder/pkg/metrics"
)

const (
	metricSessions    = "store_sessions"
	metricEventPrefix = "store_event_"
)

// subscribeActivity counts every domain event and records it in the
// activity log. Uploads of expired sessions are purged in the background.
func (a *Application) subscribeActivity() error {
	if err := a.bus.SubscribeAsync(events.TopicSessionExpired, a.purgeExpired); err != nil {
		return err
	}
	return a.bus.SubscribeAll(func(e events.Event) {
		metrics.Incr(metricEventPrefix + e.Topic)
		entry := domain.SysOprLog{
			ID:        common.UUIDint64(),
			SessionID: e.SessionID,
			OprIp:     e.RemoteIP,
			OptAction: e.Topic,
			OptDesc:   e.Detail,
			OptTime:   e.Time,
		}
		if err := a.gormDB.Create(&entry).Error; err != nil {
			zap.L().Error("failed to write activity log", zap.String("topic", e.Topic), zap.Error(err))
		}
	})
}

func (a *Application) purgeExpired(e events.Event) {
	if err := a.uploads.Purge(context.Background(), e.SessionID); err != nil {
		zap.L().Error("failed to purge session products", zap.String("session", e.SessionID), zap.Error(err))
	}
}
