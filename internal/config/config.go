package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

var singleConfig *Config = nil

type Config struct {
	Database *dbConfig
	Storage  *storageConfig
	Lookup   *lookupConfig
	Service  *svcConfig
}

type dbConfig struct {
	Type     string `envconfig:"DB_TYPE" default:"pgsql"`
	Hostname string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	Name     string `envconfig:"DB_NAME" default:"shelf"`
	User     string `envconfig:"DB_USER" default:""`
	Password string `envconfig:"DB_PASS" default:""`
}

type storageConfig struct {
	Endpoint      string `envconfig:"SHELF_INGEST_STORAGE_ENDPOINT" default:""`
	Bucket        string `envconfig:"SHELF_INGEST_STORAGE_BUCKET" default:"shelf-documents"`
	AccessKey     string `envconfig:"SHELF_INGEST_STORAGE_ACCESS_KEY" default:""`
	SecretKey     string `envconfig:"SHELF_INGEST_STORAGE_SECRET_KEY" default:""`
	UseSSL        bool   `envconfig:"SHELF_INGEST_STORAGE_SSL" default:"true"`
	PublicBaseUrl string `envconfig:"SHELF_INGEST_STORAGE_PUBLIC_BASE_URL" default:""`
}

type lookupConfig struct {
	BaseUrl string        `envconfig:"SHELF_INGEST_LOOKUP_BASE_URL" default:"https://www.googleapis.com/books/v1/volumes"`
	ApiKey  string        `envconfig:"SHELF_INGEST_LOOKUP_API_KEY" default:""`
	Timeout time.Duration `envconfig:"SHELF_INGEST_LOOKUP_TIMEOUT" default:"10s"`
}

type svcConfig struct {
	LogLevel       string        `envconfig:"SHELF_INGEST_LOG_LEVEL" default:"info"`
	StateDir       string        `envconfig:"SHELF_INGEST_STATE_DIR" default:"."`
	BatchSize      int           `envconfig:"SHELF_INGEST_CHECKPOINT_BATCH" default:"10"`
	BookDelay      time.Duration `envconfig:"SHELF_INGEST_BOOK_DELAY" default:"500ms"`
	PastPaperDelay time.Duration `envconfig:"SHELF_INGEST_PAST_PAPER_DELAY" default:"2s"`
	OcrLanguage    string        `envconfig:"SHELF_INGEST_OCR_LANGUAGE" default:"eng"`
}

func New() (*Config, error) {
	if singleConfig == nil {
		singleConfig = new(Config)
		if err := envconfig.Process("", singleConfig); err != nil {
			return nil, err
		}
	}
	return singleConfig, nil
}

// NewDefault returns a configuration suitable for tests and local runs:
// an in-memory sqlite catalog and no external credentials.
func NewDefault() *Config {
	return &Config{
		Database: &dbConfig{Type: "sqlite", Name: "file::memory:?cache=shared"},
		Storage:  &storageConfig{Bucket: "shelf-documents"},
		Lookup:   &lookupConfig{BaseUrl: "https://www.googleapis.com/books/v1/volumes", Timeout: 10 * time.Second},
		Service: &svcConfig{
			LogLevel:       "info",
			StateDir:       ".",
			BatchSize:      10,
			BookDelay:      500 * time.Millisecond,
			PastPaperDelay: 2 * time.Second,
			OcrLanguage:    "eng",
		},
	}
}

// Validate checks the credentials the pipeline cannot run without. Missing
// storage or catalog credentials abort a run before any item is scanned.
func (c *Config) Validate() error {
	if c.Storage.Endpoint == "" {
		return fmt.Errorf("storage endpoint is required")
	}
	if c.Storage.AccessKey == "" || c.Storage.SecretKey == "" {
		return fmt.Errorf("storage credentials are required")
	}
	if c.Database.Type == "pgsql" && (c.Database.User == "" || c.Database.Password == "") {
		return fmt.Errorf("catalog database credentials are required")
	}
	if c.Service.BatchSize <= 0 {
		return fmt.Errorf("checkpoint batch size must be positive")
	}
	return nil
}
