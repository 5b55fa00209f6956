// Package config loads the settings of the place crawler.
package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/koizuka/placescraper"
	"github.com/spf13/viper"
)

// Config holds all configuration for the crawler
type Config struct {
	Crawler  CrawlerConfig  `mapstructure:"crawler"`
	Browser  BrowserConfig  `mapstructure:"browser"`
	Session  SessionConfig  `mapstructure:"session"`
	Database DatabaseConfig `mapstructure:"database"`
	Source   SourceConfig   `mapstructure:"source"`
	Output   OutputConfig   `mapstructure:"output"`
}

type CrawlerConfig struct {
	BaseURL         string        `mapstructure:"base_url"`
	ClassifyTimeout time.Duration `mapstructure:"classify_timeout"`
	ExtractTimeout  time.Duration `mapstructure:"extract_timeout"`
	PollInterval    time.Duration `mapstructure:"poll_interval"`
	Workers         int           `mapstructure:"workers"`
	Limit           int           `mapstructure:"limit"`
	Locale          string        `mapstructure:"locale"` // "zh-TW" or "en"
}

type BrowserConfig struct {
	Headless        bool          `mapstructure:"headless"`
	NavigateTimeout time.Duration `mapstructure:"navigate_timeout"`
	ExecPath        string        `mapstructure:"exec_path"`
	UserAgent       string        `mapstructure:"user_agent"`
}

// SessionConfig controls page snapshots and cookies.
type SessionConfig struct {
	Name    string `mapstructure:"name"`
	Dir     string `mapstructure:"dir"`
	Record  bool   `mapstructure:"record"`
	Replay  bool   `mapstructure:"replay"`
	Cookies bool   `mapstructure:"cookies"`
}

type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"` // "mysql" or "sqlite3"
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	DSN      string `mapstructure:"dsn"` // overrides the fields above
}

// SourceConfig selects where attractions come from. The database is used
// when CSV is empty.
type SourceConfig struct {
	CSV string `mapstructure:"csv"`
}

type OutputConfig struct {
	Dir   string `mapstructure:"dir"`
	JSON  bool   `mapstructure:"json"`
	Table bool   `mapstructure:"table"` // also write the AttractionBusiness table
}

// legacyEnv are the database variables of the original deployment's .env.
var legacyEnv = map[string]string{
	"database.host":     "TPD_HOST",
	"database.port":     "TPD_PORT",
	"database.user":     "TPD_USER",
	"database.password": "TPD_PASSWORD",
	"database.name":     "TPD_DB",
}

// Load loads configuration from .env files, an optional config.yaml and
// environment variables, in increasing order of precedence. Without
// explicit env files, a missing ./.env is ignored.
func Load(envFiles ...string) (*Config, error) {
	return LoadWith(nil, envFiles...)
}

// LoadWith is Load with overrides, such as command line flags, that take
// precedence over every other source. Keys are dotted, e.g. "crawler.limit".
func LoadWith(overrides map[string]interface{}, envFiles ...string) (*Config, error) {
	if err := loadEnvFiles(envFiles...); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("PLACECRAWL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range legacyEnv {
		if err := v.BindEnv(key, "PLACECRAWL_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, err
		}
	}

	setDefaults(v)
	for key, value := range overrides {
		v.Set(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &config, nil
}

func loadEnvFiles(files ...string) error {
	if len(files) == 0 {
		_ = godotenv.Load()
		return nil
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil {
			return fmt.Errorf("load %v: %w", file, err)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("crawler.base_url", placescraper.DefaultBaseURL)
	v.SetDefault("crawler.classify_timeout", placescraper.DefaultClassifyTimeout)
	v.SetDefault("crawler.extract_timeout", placescraper.DefaultExtractTimeout)
	v.SetDefault("crawler.poll_interval", placescraper.DefaultPollInterval)
	v.SetDefault("crawler.workers", 1)
	v.SetDefault("crawler.limit", 0)
	v.SetDefault("crawler.locale", "zh-TW")

	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.navigate_timeout", placescraper.DefaultTimeout)
	v.SetDefault("browser.exec_path", "")
	v.SetDefault("browser.user_agent", placescraper.UserAgent_default)

	v.SetDefault("session.name", "placecrawl")
	v.SetDefault("session.dir", "sessions/")
	v.SetDefault("session.record", false)
	v.SetDefault("session.replay", false)
	v.SetDefault("session.cookies", true)

	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.host", "127.0.0.1")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "")
	v.SetDefault("database.dsn", "")

	v.SetDefault("source.csv", "")

	v.SetDefault("output.dir", "output")
	v.SetDefault("output.json", true)
	v.SetDefault("output.table", false)
}

var locales = map[string]placescraper.Locale{
	"zh-TW": placescraper.LocaleZhTW,
	"en":    placescraper.LocaleEnglish,
}

func validate(config *Config) error {
	if config.Crawler.Workers < 1 {
		return fmt.Errorf("crawler workers must be at least 1, got: %d", config.Crawler.Workers)
	}
	if config.Crawler.Limit < 0 {
		return fmt.Errorf("crawler limit must not be negative, got: %d", config.Crawler.Limit)
	}
	if config.Crawler.ClassifyTimeout <= 0 || config.Crawler.ExtractTimeout <= 0 || config.Crawler.PollInterval <= 0 {
		return fmt.Errorf("crawler timeouts and poll interval must be positive")
	}
	if _, ok := locales[config.Crawler.Locale]; !ok {
		return fmt.Errorf("unknown locale: %s", config.Crawler.Locale)
	}

	if config.Session.Record && config.Session.Replay {
		return fmt.Errorf("session record and replay are exclusive")
	}
	// snapshots are numbered in navigation order, which only one browser keeps
	if (config.Session.Record || config.Session.Replay) && config.Crawler.Workers != 1 {
		return fmt.Errorf("session record/replay requires a single worker, got: %d", config.Crawler.Workers)
	}

	if !config.Output.JSON && !config.Output.Table {
		return fmt.Errorf("no output selected")
	}
	return nil
}

// NeedsDatabase reports whether a batch reads or writes the database.
func (config *Config) NeedsDatabase() bool {
	return config.Source.CSV == "" || config.Output.Table
}

// Validate checks the connection settings. Load leaves them unchecked
// because runs that don't touch the database don't need them.
func (db DatabaseConfig) Validate() error {
	switch db.Driver {
	case "mysql":
		if db.DSN == "" && db.Name == "" {
			return fmt.Errorf("database name is required (set TPD_DB)")
		}
	case "sqlite3":
		if db.DSN == "" {
			return fmt.Errorf("database dsn is required for sqlite3")
		}
	default:
		return fmt.Errorf("database driver must be 'mysql' or 'sqlite3', got: %s", db.Driver)
	}
	return nil
}

// Locale returns the page locale. Load has validated the name.
func (config *Config) Locale() placescraper.Locale {
	return locales[config.Crawler.Locale]
}

func (config *Config) CrawlerOptions() placescraper.CrawlerOptions {
	return placescraper.CrawlerOptions{
		BaseURL:         config.Crawler.BaseURL,
		ClassifyTimeout: config.Crawler.ClassifyTimeout,
		ExtractTimeout:  config.Crawler.ExtractTimeout,
		PollInterval:    config.Crawler.PollInterval,
	}
}

func (config *Config) ChromeOptions() placescraper.NewChromeOptions {
	return placescraper.NewChromeOptions{
		Headless:        config.Browser.Headless,
		NavigateTimeout: config.Browser.NavigateTimeout,
		ExecPath:        config.Browser.ExecPath,
	}
}

// DataSourceName returns the DSN handed to sql.Open.
func (db DatabaseConfig) DataSourceName() string {
	if db.DSN != "" || db.Driver != "mysql" {
		return db.DSN
	}
	c := mysql.NewConfig()
	c.User = db.User
	c.Passwd = db.Password
	c.Net = "tcp"
	c.Addr = net.JoinHostPort(db.Host, strconv.Itoa(db.Port))
	c.DBName = db.Name
	c.ParseTime = true
	c.Params = map[string]string{"charset": "utf8mb4"}
	return c.FormatDSN()
}
