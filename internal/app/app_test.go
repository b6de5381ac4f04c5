package app

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/talkincode/storebuilder/config"
	"github.com/talkincode/storebuilder/internal/domain"
	"github.com/talkincode/storebuilder/internal/events"
	"github.com/talkincode/storebuilder/internal/upload"
	"github.com/talkincode/storebuilder/pkg/metrics"
)

func newTestApp(t *testing.T) *Application {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	cfg := *config.DefaultAppConfig
	a := NewApplication(&cfg)
	require.NoError(t, a.InitWithDB(db))
	return a
}

func TestCatalogIsSeededOnce(t *testing.T) {
	a := newTestApp(t)
	a.checkCatalog()

	var rows []domain.CatalogProduct
	require.NoError(t, a.DB().Order("sort").Find(&rows).Error)
	require.Len(t, rows, 6)
	assert.Equal(t, "Eco-friendly Water Bottle", rows[0].Name)
	assert.Equal(t, 24.99, rows[0].Price)
	assert.Equal(t, "Reusable Produce Bags", rows[5].Name)
	assert.Equal(t, placeholderImage, rows[5].Image)
}

func TestEventsAreLoggedAndCounted(t *testing.T) {
	a := newTestApp(t)
	before := metrics.Value(metricEventPrefix + events.TopicCommentCreated)

	a.Events().Publish(events.TopicCommentCreated, "s1", "10.0.0.1", "Logo placement")

	var logs []domain.SysOprLog
	require.NoError(t, a.DB().Where("session_id = ?", "s1").Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, events.TopicCommentCreated, logs[0].OptAction)
	assert.Equal(t, "10.0.0.1", logs[0].OprIp)
	assert.Equal(t, "Logo placement", logs[0].OptDesc)
	assert.Equal(t, before+1, metrics.Value(metricEventPrefix+events.TopicCommentCreated))
}

func TestExpireSessionsPurgesUploads(t *testing.T) {
	a := newTestApp(t)
	a.appConfig.Store.SessionTTL = time.Nanosecond

	s, _ := a.Sessions().GetOrCreate("idle")
	f := upload.NewForm()
	f.Name, f.Price, f.Stock = "Widget", "1", "1"
	_, err := a.Uploads().Submit(context.Background(), s.ID, f)
	require.NoError(t, err)

	time.Sleep(time.Millisecond)
	expired := a.ExpireSessions()
	assert.Equal(t, []string{"idle"}, expired)
	assert.Zero(t, a.Sessions().Len())
	a.Events().Wait()

	var count int64
	require.NoError(t, a.DB().Model(&domain.UploadProduct{}).Where("session_id = ?", "idle").Count(&count).Error)
	assert.Zero(t, count)

	var logs int64
	require.NoError(t, a.DB().Model(&domain.SysOprLog{}).Where("opt_action = ?", events.TopicSessionExpired).Count(&logs).Error)
	assert.Equal(t, int64(1), logs)
}

func TestClearExpireDataPrunesActivityLog(t *testing.T) {
	a := newTestApp(t)
	require.NoError(t, a.DB().Create(&domain.SysOprLog{ID: 1, OptAction: "old", OptTime: time.Now().Add(-2 * activityRetention)}).Error)
	require.NoError(t, a.DB().Create(&domain.SysOprLog{ID: 2, OptAction: "new", OptTime: time.Now()}).Error)

	a.SchedClearExpireData()

	var rows []domain.SysOprLog
	require.NoError(t, a.DB().Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, "new", rows[0].OptAction)
}

func TestInitDbReseedsCatalog(t *testing.T) {
	a := newTestApp(t)
	require.NoError(t, a.DB().Where("id = ?", 1).Delete(&domain.CatalogProduct{}).Error)
	a.InitDb()

	var count int64
	require.NoError(t, a.DB().Model(&domain.CatalogProduct{}).Count(&count).Error)
	assert.Equal(t, int64(6), count)
}

func TestInvalidOnboardingConfigFails(t *testing.T) {
	dsn := "file:invalid_onboarding?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	cfg := *config.DefaultAppConfig
	cfg.Store.Onboarding = []config.StepConfig{{Title: "Name?", Field: "name"}, {Title: "Again?", Field: "name"}}
	a := NewApplication(&cfg)
	assert.Error(t, a.InitWithDB(db))
}

func TestMemoryDatabaseSurvivesPoolRecycling(t *testing.T) {
	db, pin := getDatabase(config.DBConfig{Type: "sqlite"}, t.TempDir())
	require.NotNil(t, pin)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = pin.Close()
		_ = sqlDB.Close()
	})

	cfg := *config.DefaultAppConfig
	a := NewApplication(&cfg)
	require.NoError(t, a.InitWithDB(db))

	// retire every pooled connection the way an expired lifetime does
	sqlDB.SetConnMaxLifetime(10 * time.Millisecond)
	sqlDB.SetMaxIdleConns(0)
	time.Sleep(50 * time.Millisecond)

	var count int64
	require.NoError(t, a.DB().Model(&domain.CatalogProduct{}).Count(&count).Error)
	assert.Equal(t, int64(6), count)
}

func TestFileDatabaseIsNotPinned(t *testing.T) {
	db, pin := getDatabase(config.DBConfig{Type: "sqlite", Name: "store.db"}, t.TempDir())
	assert.Nil(t, pin)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
}
