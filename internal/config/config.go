package config

import (
	"os"
	"strconv"
	"strings"
)

const (
	DefaultTimeZone          = "Europe/Amsterdam"
	DefaultHTTPAddr          = ":8080"
	DefaultPriceListSchedule = "0 6 * * 1-5" // weekdays at 06:00
	DefaultMaxUploadMB       = 32
	DefaultLogFolder         = "./logs"
	DefaultLogLevel          = "info"
	DefaultLogFormat         = "json"
	DefaultServicesFile      = "services.yaml"
	DefaultFetchTimeoutSecs  = 60
)

// Config is the process configuration, read from the environment.
type Config struct {
	HTTPAddr          string
	DatabaseURL       string
	AuthDatabaseURL   string
	PriceListURL      string
	PriceListSchedule string
	HeaderAliasesFile string
	ServicesFile      string
	TimeZone          string
	LogLevel          string
	LogFormat         string
	LogFolder         string
	MaxUploadMB       int
}

// Load reads GTN_HTTP_ADDR, DATABASE_URL, AUTH_DATABASE_URL, PRICELIST_URL,
// PRICELIST_SCHEDULE, HEADER_ALIASES_FILE, SERVICES_FILE, TZ_NAME, LOG_LEVEL,
// LOG_FORMAT, LOG_FOLDER and MAX_UPLOAD_MB. Unset values take the defaults.
func Load() Config {
	c := Config{
		HTTPAddr:          env("GTN_HTTP_ADDR", DefaultHTTPAddr),
		DatabaseURL:       env("DATABASE_URL", ""),
		AuthDatabaseURL:   env("AUTH_DATABASE_URL", ""),
		PriceListURL:      env("PRICELIST_URL", ""),
		PriceListSchedule: env("PRICELIST_SCHEDULE", DefaultPriceListSchedule),
		HeaderAliasesFile: env("HEADER_ALIASES_FILE", ""),
		ServicesFile:      env("SERVICES_FILE", DefaultServicesFile),
		TimeZone:          env("TZ_NAME", DefaultTimeZone),
		LogLevel:          strings.ToLower(env("LOG_LEVEL", DefaultLogLevel)),
		LogFormat:         strings.ToLower(env("LOG_FORMAT", DefaultLogFormat)),
		LogFolder:         env("LOG_FOLDER", DefaultLogFolder),
		MaxUploadMB:       DefaultMaxUploadMB,
	}
	if v, err := strconv.Atoi(env("MAX_UPLOAD_MB", "")); err == nil && v > 0 {
		c.MaxUploadMB = v
	}
	if c.AuthDatabaseURL == "" {
		c.AuthDatabaseURL = c.DatabaseURL
	}
	return c
}

// MaxUploadBytes is the multipart limit for upload endpoints.
func (c Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

func env(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
