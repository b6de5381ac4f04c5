package config

import (
	"os"
	"path"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// SysConfig system configuration
type SysConfig struct {
	Appid    string `yaml:"appid" env:"APPID"`
	Location string `yaml:"location" env:"LOCATION"`
	Workdir  string `yaml:"workdir" env:"WORKDIR"`
	Debug    bool   `yaml:"debug" env:"DEBUG"`
}

// WebConfig web server configuration. An empty Secret makes the server sign
// cookies with a random per-process key.
type WebConfig struct {
	Host   string `yaml:"host" env:"HOST"`
	Port   int    `yaml:"port" env:"PORT"`
	Secret string `yaml:"secret" env:"SECRET"`
}

// DBConfig database configuration. Type is "sqlite" (default, in-memory
// unless Name points at a file) or "postgres".
type DBConfig struct {
	Type     string `yaml:"type" env:"TYPE"`
	Host     string `yaml:"host" env:"HOST"`
	Port     int    `yaml:"port" env:"PORT"`
	Name     string `yaml:"name" env:"NAME"`
	User     string `yaml:"user" env:"USER"`
	Passwd   string `yaml:"passwd" env:"PASSWD"`
	MaxConn  int    `yaml:"max_conn" env:"MAX_CONN"`
	IdleConn int    `yaml:"idle_conn" env:"IDLE_CONN"`
	Debug    bool   `yaml:"debug" env:"DEBUG"`
}

// LogConfig logging configuration
type LogConfig struct {
	Mode       string `yaml:"mode" env:"MODE"`
	FileEnable bool   `yaml:"file_enable" env:"FILE_ENABLE"`
	Filename   string `yaml:"filename" env:"FILENAME"`
}

// OptionConfig is one fixed answer of a wizard step.
type OptionConfig struct {
	Label string `yaml:"label"`
	Value string `yaml:"value"`
}

// ConditionConfig declares when a wizard step is shown.
type ConditionConfig struct {
	Field     string   `yaml:"field"`
	Equals    []string `yaml:"equals"`
	NotEquals []string `yaml:"not_equals"`
}

// StepConfig declares one onboarding step.
type StepConfig struct {
	Title   string           `yaml:"title"`
	Field   string           `yaml:"field"`
	Options []OptionConfig   `yaml:"options"`
	When    *ConditionConfig `yaml:"when"`
}

// MilestoneConfig declares one purchasable milestone.
type MilestoneConfig struct {
	ID               int     `yaml:"id"`
	Name             string  `yaml:"name"`
	Price            float64 `yaml:"price"`
	RequiredComments int     `yaml:"required_comments"`
}

// StoreConfig tunes the store builder engines.
type StoreConfig struct {
	AnnotationCap        int               `yaml:"annotation_cap" env:"ANNOTATION_CAP"`
	AnnotationAttachment string            `yaml:"annotation_attachment" env:"ANNOTATION_ATTACHMENT"`
	UploadPageSize       int               `yaml:"upload_page_size" env:"UPLOAD_PAGE_SIZE"`
	SessionTTL           time.Duration     `yaml:"session_ttl" env:"SESSION_TTL"`
	Onboarding           []StepConfig      `yaml:"onboarding"`
	Milestones           []MilestoneConfig `yaml:"milestones"`
}

// AppConfig application configuration
type AppConfig struct {
	System   SysConfig   `yaml:"system" envPrefix:"SYSTEM_"`
	Web      WebConfig   `yaml:"web" envPrefix:"WEB_"`
	Database DBConfig    `yaml:"database" envPrefix:"DB_"`
	Logger   LogConfig   `yaml:"logger" envPrefix:"LOGGER_"`
	Store    StoreConfig `yaml:"store" envPrefix:"STORE_"`
}

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "STOREBUILDER_"

func (c *AppConfig) GetLogDir() string {
	return path.Join(c.System.Workdir, "logs")
}

func (c *AppConfig) GetDataDir() string {
	return path.Join(c.System.Workdir, "data")
}

func (c *AppConfig) initDirs() error {
	for _, dir := range []string{c.GetLogDir(), c.GetDataDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "create %s", dir)
		}
	}
	return nil
}

var DefaultAppConfig = &AppConfig{
	System: SysConfig{
		Appid:    "StoreBuilder",
		Location: "UTC",
		Workdir:  "/var/storebuilder",
		Debug:    false,
	},
	Web: WebConfig{
		Host: "0.0.0.0",
		Port: 1816,
	},
	Database: DBConfig{
		Type:     "sqlite",
		Name:     "",
		MaxConn:  20,
		IdleConn: 5,
	},
	Logger: LogConfig{
		Mode:       "development",
		FileEnable: false,
		Filename:   "/var/storebuilder/logs/storebuilder.log",
	},
	Store: StoreConfig{
		AnnotationCap:        10,
		AnnotationAttachment: "snippet-8ksf1srmzvC8chX71V6csGjwy7SGHg.txt",
		UploadPageSize:       25,
		SessionTTL:           2 * time.Hour,
	},
}

// LoadConfig reads cfile (when it exists) over the defaults, then applies
// STOREBUILDER_* environment overrides.
func LoadConfig(cfile string) (*AppConfig, error) {
	cfg := *DefaultAppConfig
	if cfile != "" {
		data, err := os.ReadFile(cfile)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, errors.Wrapf(err, "parse config %s", cfile)
			}
		case os.IsNotExist(err):
			// fall through to defaults
		default:
			return nil, errors.Wrapf(err, "read config %s", cfile)
		}
	}
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, errors.Wrap(err, "parse env")
	}
	cfg.normalize()
	if err := cfg.initDirs(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *AppConfig) normalize() {
	if c.Store.AnnotationCap <= 0 {
		c.Store.AnnotationCap = DefaultAppConfig.Store.AnnotationCap
	}
	if c.Store.UploadPageSize <= 0 {
		c.Store.UploadPageSize = DefaultAppConfig.Store.UploadPageSize
	}
	if c.Store.SessionTTL <= 0 {
		c.Store.SessionTTL = DefaultAppConfig.Store.SessionTTL
	}
	if c.Database.Type == "" {
		c.Database.Type = "sqlite"
	}
	if c.Logger.Mode == "" {
		c.Logger.Mode = "development"
	}
}
