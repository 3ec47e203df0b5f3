package cfg

import (
	"cmp"
	"fmt"
	"os"
	"slices"
	"time"
	_ "time/tzdata"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

var CacheBackends = []string{"file", "sqlite", "s3"}

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// HTTP configuration
	Port           string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	MaxSessions    int    `long:"max-sessions" env:"MAX_SESSIONS" default:"24" description:"Maximum number of sessions returned per request"`
	ResponseMaxAge int    `long:"response-max-age" env:"RESPONSE_MAX_AGE" default:"300" description:"Cache-Control max-age advertised to browsers and edge caches, in seconds"`

	// Upstream configuration
	FeedURL       string `long:"feed-url" env:"IMS_URL" default:"https://secretaria.transform.pt/ims/getimsxml.ashx" description:"Upstream IMS XML feed URL"`
	SecretariaURL string `long:"secretaria-url" env:"SECRETARIA_URL" default:"https://secretaria.transform.pt/secretaria/" description:"Base URL for registration links"`
	FetchTimeout  int    `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"10" description:"Upstream request timeout in seconds"`
	UserAgent     string `long:"user-agent" env:"USER_AGENT" default:"IMS Sessions/1.0" description:"User agent string for upstream requests"`
	SchemaFile    string `long:"schema-file" env:"SCHEMA_FILE" description:"YAML file overriding the feed field synonyms (optional)"`

	// Snapshot cache configuration
	CacheBackend string `long:"cache-backend" env:"CACHE_BACKEND" default:"file" description:"Snapshot store: file, sqlite or s3"`
	CacheTTL     int    `long:"cache-ttl" env:"CACHE_TTL" default:"600" description:"Snapshot time-to-live in seconds"`
	CacheFile    string `long:"cache-file" env:"CACHE_FILE" default:"./_cache/ims.xml" description:"Snapshot file path for the file backend (.gz to compress)"`
	DBPath       string `long:"db-path" env:"DB_PATH" default:"./_cache/ims.db" description:"SQLite database path for the sqlite backend"`
	S3Bucket     string `long:"s3-bucket" env:"S3_BUCKET" description:"Bucket for the s3 backend"`
	S3Key        string `long:"s3-key" env:"S3_KEY" default:"ims/ims.xml" description:"Object key for the s3 backend"`
	AWSRegion    string `long:"aws-region" env:"AWS_REGION" default:"eu-west-1" description:"AWS region for the s3 backend"`

	// Cache warmer configuration
	WarmInterval int `long:"warm-interval" env:"WARM_INTERVAL" default:"0" description:"Background snapshot refresh interval in seconds (0 disables)"`
	WorkerCount  int `long:"worker-count" env:"WORKER_COUNT" default:"1" description:"Number of background workers for the cache warmer"`

	// Application metadata
	Timezone string `long:"timezone" env:"IMS_TIMEZONE" default:"Europe/Lisbon" description:"Time zone of the feed's dates, independent of the process TZ (e.g., Europe/Lisbon)"`
	Debug    bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

func Load() (*Cfg, error) {
	return LoadArgs(os.Args[1:])
}

func LoadArgs(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		Port:           raw.Port,
		MaxSessions:    raw.MaxSessions,
		ResponseMaxAge: raw.ResponseMaxAge,
		FeedURL:        raw.FeedURL,
		SecretariaURL:  raw.SecretariaURL,
		FetchTimeout:   raw.FetchTimeout,
		UserAgent:      raw.UserAgent,
		SchemaFile:     raw.SchemaFile,
		CacheBackend:   raw.CacheBackend,
		CacheTTL:       raw.CacheTTL,
		CacheFile:      raw.CacheFile,
		DBPath:         raw.DBPath,
		S3Bucket:       raw.S3Bucket,
		S3Key:          raw.S3Key,
		AWSRegion:      raw.AWSRegion,
		WarmInterval:   raw.WarmInterval,
		WorkerCount:    raw.WorkerCount,
		Timezone:       raw.Timezone,
		Debug:          raw.Debug,
		Version:        GetVersion(),
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone '%s': %w", cfg.Timezone, err)
	}
	cfg.Location = loc

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Cfg) error {
	positiveFields := map[string]int{
		"fetch timeout": cfg.FetchTimeout,
		"cache TTL":     cfg.CacheTTL,
		"max sessions":  cfg.MaxSessions,
		"worker count":  cfg.WorkerCount,
	}

	for fieldName, fieldValue := range positiveFields {
		if fieldValue <= 0 {
			return fmt.Errorf("%s must be positive", fieldName)
		}
	}

	nonNegativeFields := map[string]int{
		"response max age": cfg.ResponseMaxAge,
		"warm interval":    cfg.WarmInterval,
	}

	for fieldName, fieldValue := range nonNegativeFields {
		if fieldValue < 0 {
			return fmt.Errorf("%s must be non-negative", fieldName)
		}
	}

	if !slices.Contains(CacheBackends, cfg.CacheBackend) {
		return fmt.Errorf("unknown cache backend '%s' (expected one of %v)", cfg.CacheBackend, CacheBackends)
	}

	if cfg.CacheBackend == "s3" && cfg.S3Bucket == "" {
		return fmt.Errorf("s3 bucket is required for the s3 cache backend")
	}

	return nil
}
