// Package config provides configuration loading from environment variables.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/usestring/schemainfer/pkg/infer"
	"github.com/usestring/schemainfer/pkg/jsoncompact"
)

// Store defaults
const (
	DefaultStoreDirValue       = "schemas"
	DefaultStoreCacheMaxItems  = 256
	DefaultMaxSamplesPerEntity = 10000
)

// Config holds all configuration for the inference server.
type Config struct {
	StoreDir            string // SCHEMA_STORE_DIR, default "schemas"
	StoreCacheMaxItems  int    // STORE_CACHE_MAX_ITEMS, default 256
	SampleDir           string // SAMPLE_DIR, default "" (schema_infer_dir requires an explicit dir)
	SampleSelector      string // SAMPLE_SELECTOR, jq expression applied to each loaded file, default "."
	MaxSamplesPerEntity int    // MAX_SAMPLES_PER_ENTITY, default 10000

	// Inference
	InferWorkers  int      // INFER_WORKERS, default 8
	InferMaxDepth int      // INFER_MAX_DEPTH, default 64
	EnumFields    []string // ENUM_FIELDS, comma-separated keys whose values are collected as enums

	// Nullable widening rules
	NullableIDSuffixes    []string // NULLABLE_ID_SUFFIXES, default "Id"
	NullableTitleSuffixes []string // NULLABLE_TITLE_SUFFIXES, default "Title"
	NullableRoles         []string // NULLABLE_ROLES, default role list
	IDFallbackFormat      string   // ID_FALLBACK_FORMAT, default "uuid"

	// Compaction of loaded samples
	CompactMaxArrayItems int // COMPACT_MAX_ARRAY_ITEMS
	CompactMaxStringLen  int // COMPACT_MAX_STRING_LEN

	// Logging configuration
	LogLevel      string // LOG_LEVEL, default "info"
	LogFormat     string // LOG_FORMAT, text or json, default "text"
	LogFile       string // LOG_FILE, default "" (stderr only)
	LogMaxSizeMB  int    // LOG_MAX_SIZE_MB, default 10
	LogMaxBackups int    // LOG_MAX_BACKUPS, default 5
	LogMaxAgeDays int    // LOG_MAX_AGE_DAYS, default 28
	LogCompress   bool   // LOG_COMPRESS, default true
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is loaded first when present; variables
// already set in the environment take precedence.
func Load() *Config {
	_ = godotenv.Load()

	rules := infer.DefaultNullableRules()
	return &Config{
		StoreDir:            getEnvString("SCHEMA_STORE_DIR", DefaultStoreDirValue),
		StoreCacheMaxItems:  getEnvInt("STORE_CACHE_MAX_ITEMS", DefaultStoreCacheMaxItems),
		SampleDir:           getEnvString("SAMPLE_DIR", ""),
		SampleSelector:      getEnvString("SAMPLE_SELECTOR", "."),
		MaxSamplesPerEntity: getEnvInt("MAX_SAMPLES_PER_ENTITY", DefaultMaxSamplesPerEntity),

		InferWorkers:  getEnvInt("INFER_WORKERS", infer.DefaultWorkers),
		InferMaxDepth: getEnvInt("INFER_MAX_DEPTH", infer.DefaultMaxDepth),
		EnumFields:    getEnvList("ENUM_FIELDS", nil),

		NullableIDSuffixes:    getEnvList("NULLABLE_ID_SUFFIXES", rules.IdentifierSuffixes),
		NullableTitleSuffixes: getEnvList("NULLABLE_TITLE_SUFFIXES", rules.TitleSuffixes),
		NullableRoles:         getEnvList("NULLABLE_ROLES", rules.Roles),
		IDFallbackFormat:      getEnvString("ID_FALLBACK_FORMAT", rules.IdentifierFormat),

		// Compaction defaults (from jsoncompact package)
		CompactMaxArrayItems: getEnvInt("COMPACT_MAX_ARRAY_ITEMS", jsoncompact.DefaultMaxArrayItems),
		CompactMaxStringLen:  getEnvInt("COMPACT_MAX_STRING_LEN", jsoncompact.DefaultMaxStringLen),

		LogLevel:      getEnvString("LOG_LEVEL", "info"),
		LogFormat:     getEnvString("LOG_FORMAT", "text"),
		LogFile:       getEnvString("LOG_FILE", ""),
		LogMaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 10),
		LogMaxBackups: getEnvInt("LOG_MAX_BACKUPS", 5),
		LogMaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 28),
		LogCompress:   getEnvBool("LOG_COMPRESS", true),
	}
}

// InferOptions maps the configuration onto inference options.
// OnConflict is left for the caller to wire.
func (c *Config) InferOptions() *infer.Options {
	return &infer.Options{
		MaxDepth:   c.InferMaxDepth,
		Workers:    c.InferWorkers,
		EnumFields: append([]string(nil), c.EnumFields...),
		Nullable: infer.NullableRules{
			IdentifierSuffixes: append([]string(nil), c.NullableIDSuffixes...),
			TitleSuffixes:      append([]string(nil), c.NullableTitleSuffixes...),
			Roles:              append([]string(nil), c.NullableRoles...),
			IdentifierFormat:   c.IDFallbackFormat,
		},
	}
}

// CompactOptions maps the configuration onto sample compaction options.
func (c *Config) CompactOptions() *jsoncompact.Options {
	return &jsoncompact.Options{
		MaxArrayItems: c.CompactMaxArrayItems,
		MaxStringLen:  c.CompactMaxStringLen,
	}
}

func getEnvBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		switch v {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
	}
	return defaultVal
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

// getEnvList splits a comma-separated variable, dropping blank items.
// An unset variable yields a copy of defaultVal.
func getEnvList(key string, defaultVal []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok {
		return append([]string(nil), defaultVal...)
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
