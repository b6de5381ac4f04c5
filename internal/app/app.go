package app

import (
	"database/sql"
	"os"
	"runtime/debug"
	"time"
	_ "time/tzdata"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/gorm"

	"github.com/talkincode/storebuilder/config"
	"github.com/talkincode/storebuilder/internal/annotation"
	"github.com/talkincode/storebuilder/internal/domain"
	"github.com/talkincode/storebuilder/internal/events"
	"github.com/talkincode/storebuilder/internal/session"
	"github.com/talkincode/storebuilder/internal/upload"
	"github.com/talkincode/storebuilder/internal/wizard"
	"github.com/talkincode/storebuilder/pkg/common"
	"github.com/talkincode/storebuilder/pkg/metrics"
)

type Application struct {
	appConfig *config.AppConfig
	gormDB    *gorm.DB
	sched     *cron.Cron
	sessions  *session.Store
	bus       *events.Bus
	uploads   *upload.Service
	dbPin     *sql.Conn
}

// Ensure Application implements all interfaces
var (
	_ DBProvider        = (*Application)(nil)
	_ ConfigProvider    = (*Application)(nil)
	_ SchedulerProvider = (*Application)(nil)
	_ SessionProvider   = (*Application)(nil)
	_ EventProvider     = (*Application)(nil)
	_ UploadProvider    = (*Application)(nil)
	_ AppContext        = (*Application)(nil)
)

func NewApplication(appConfig *config.AppConfig) *Application {
	return &Application{appConfig: appConfig}
}

func (a *Application) Config() *config.AppConfig {
	return a.appConfig
}

func (a *Application) DB() *gorm.DB {
	return a.gormDB
}

func (a *Application) Scheduler() *cron.Cron {
	return a.sched
}

func (a *Application) Sessions() *session.Store {
	return a.sessions
}

func (a *Application) Events() *events.Bus {
	return a.bus
}

func (a *Application) Uploads() *upload.Service {
	return a.uploads
}

func (a *Application) Init(cfg *config.AppConfig) {
	loc, err := time.LoadLocation(cfg.System.Location)
	if err != nil {
		zap.S().Error("timezone config error")
	} else {
		time.Local = loc
	}

	initLogger(cfg)

	// Initialize metrics with workdir convention
	err = metrics.InitMetrics(cfg.System.Workdir)
	if err != nil {
		zap.S().Warn("Failed to initialize metrics:", err)
	}

	db, pin := getDatabase(cfg.Database, cfg.GetDataDir())
	a.dbPin = pin
	zap.S().Infof("Database connection successful, type: %s", cfg.Database.Type)

	if err := a.InitWithDB(db); err != nil {
		zap.L().Fatal("engine configuration error", zap.Error(err))
	}
	a.initJob()
}

// InitWithDB migrates db, seeds the catalog and builds the engines. It does
// not touch logging, metrics or background jobs.
func (a *Application) InitWithDB(db *gorm.DB) error {
	a.gormDB = db
	if err := a.MigrateDB(a.appConfig.Database.Debug); err != nil {
		zap.S().Errorf("database migration failed: %v", err)
	}
	a.checkCatalog()
	return a.initEngines()
}

func initLogger(cfg *config.AppConfig) {
	var zapConfig zap.Config
	if cfg.Logger.Mode == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}
	zapConfig.OutputPaths = []string{"stdout"}

	var logger *zap.Logger
	if cfg.Logger.FileEnable {
		lumberJackLogger := &lumberjack.Logger{
			Filename:   cfg.Logger.Filename,
			MaxSize:    64,
			MaxBackups: 7,
			MaxAge:     7,
			Compress:   false,
		}

		core := zapcore.NewTee(
			zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(lumberJackLogger),
				zapConfig.Level,
			),
			zapcore.NewCore(
				zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
				zapcore.AddSync(os.Stdout),
				zapConfig.Level,
			),
		)
		logger = zap.New(core, zap.AddCaller())
	} else {
		var err error
		logger, err = zapConfig.Build(zap.AddCaller())
		if err != nil {
			panic(err)
		}
	}

	zap.ReplaceGlobals(logger)
}

// initEngines builds the session store and upload service from the store
// configuration, and attaches the activity subscribers.
func (a *Application) initEngines() error {
	flow, err := wizard.NewFlow(wizard.StepsFromConfig(a.appConfig.Store.Onboarding))
	if err != nil {
		return err
	}
	a.sessions = session.NewStore(session.Options{
		Onboarding:    flow,
		Milestones:    annotation.MilestonesFromConfig(a.appConfig.Store.Milestones),
		AnnotationCap: a.appConfig.Store.AnnotationCap,
		Attachment:    a.appConfig.Store.AnnotationAttachment,
		NextID:        common.UUIDint64,
	})
	a.uploads = upload.NewService(upload.NewGormProductRepository(a.gormDB), a.appConfig.Store.UploadPageSize, common.UUIDint64)
	a.bus = events.NewBus()
	return a.subscribeActivity()
}

func (a *Application) MigrateDB(track bool) (err error) {
	defer func() {
		if err1 := recover(); err1 != nil {
			if os.Getenv("GO_DEGUB_TRACE") != "" {
				debug.PrintStack()
			}
			err2, ok := err1.(error)
			if ok {
				err = err2
				zap.S().Error(err2.Error())
			}
		}
	}()
	if track {
		if err := a.gormDB.Debug().Migrator().AutoMigrate(domain.Tables...); err != nil {
			zap.S().Error(err)
		}
	} else {
		if err := a.gormDB.Migrator().AutoMigrate(domain.Tables...); err != nil {
			zap.S().Error(err)
		}
	}
	return nil
}

func (a *Application) DropAll() {
	_ = a.gormDB.Migrator().DropTable(domain.Tables...)
}

// InitDb recreates every table and seeds the catalog.
func (a *Application) InitDb() {
	a.DropAll()
	if err := a.MigrateDB(a.appConfig.Database.Debug); err != nil {
		zap.S().Error(err)
	}
	a.checkCatalog()
}

// ExpireSessions drops sessions idle beyond the configured TTL. Their
// uploaded products are purged by the session:expired subscriber.
func (a *Application) ExpireSessions() []string {
	expired := a.sessions.Sweep(time.Now(), a.appConfig.Store.SessionTTL)
	for _, id := range expired {
		a.bus.Publish(events.TopicSessionExpired, id, "", "")
	}
	metrics.SetGauge(metricSessions, int64(a.sessions.Len()))
	return expired
}

// Release releases application resources
func (a *Application) Release() {
	if a.sched != nil {
		a.sched.Stop()
	}
	if a.bus != nil {
		a.bus.Wait()
	}
	if a.dbPin != nil {
		_ = a.dbPin.Close()
	}
	_ = metrics.Close()
	_ = zap.L().Sync()
}
