package app

import (
	"context"
	"database/sql"
	"fmt"
	"path"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/talkincode/storebuilder/config"
)

const memoryDSN = "file::memory:?cache=shared"

// getDatabase opens the configured database. A sqlite database without a
// name lives in memory; it is dropped by sqlite once its last connection
// closes, so the returned pin holds one connection until the caller closes
// it. pin is nil for every other database.
func getDatabase(cfg config.DBConfig, datadir string) (db *gorm.DB, pin *sql.Conn) {
	gcfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
	if cfg.Debug {
		gcfg.Logger = logger.Default.LogMode(logger.Info)
	}

	memory := false
	var dialector gorm.Dialector
	switch cfg.Type {
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
			cfg.Host, cfg.Port, cfg.User, cfg.Passwd, cfg.Name)
		dialector = postgres.Open(dsn)
	default:
		dsn := memoryDSN
		if cfg.Name != "" {
			dsn = path.Join(datadir, cfg.Name)
		} else {
			memory = true
		}
		dialector = sqlite.Open(dsn)
	}

	db, err := gorm.Open(dialector, gcfg)
	if err != nil {
		zap.L().Fatal("database connection failed", zap.String("type", cfg.Type), zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		zap.L().Fatal("database handle error", zap.Error(err))
	}
	maxConn, idleConn := cfg.MaxConn, cfg.IdleConn
	if maxConn <= 0 {
		maxConn = 20
	}
	if idleConn <= 0 {
		idleConn = 1
	}
	if memory {
		// the pinned connection counts against the limit
		maxConn++
	}
	sqlDB.SetMaxOpenConns(maxConn)
	sqlDB.SetMaxIdleConns(idleConn)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if memory {
		pin, err = sqlDB.Conn(context.Background())
		if err != nil {
			zap.L().Fatal("in-memory database pin failed", zap.Error(err))
		}
	}
	return db, pin
}
