package config

import (
	"fmt"
	"strings"
)

// ConfigError reports a missing or invalid setting. It is returned before
// any network call is made.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...any) error {
	return &ConfigError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Validate reports the first problem found.
func (c *Config) Validate() error {
	s := c.Sheets
	switch {
	case strings.TrimSpace(s.SpreadsheetID) == "":
		return invalid("sheets.spreadsheet_id", "required (GOOGLE_SHEETS_SPREADSHEET_ID)")
	case strings.TrimSpace(s.ClientEmail) == "":
		return invalid("sheets.client_email", "required (GOOGLE_SHEETS_CLIENT_EMAIL)")
	case strings.TrimSpace(s.PrivateKey) == "":
		return invalid("sheets.private_key", "required (GOOGLE_SHEETS_PRIVATE_KEY)")
	case s.RequestsPerSecond < 0:
		return invalid("sheets.requests_per_second", "must not be negative")
	case s.Burst < 0:
		return invalid("sheets.burst", "must not be negative")
	case s.BaseSheet == "" || s.BooksSheet == "" || s.OrdersSheet == "":
		return invalid("sheets", "sheet names must not be empty")
	}

	cc := c.Cache
	switch {
	case cc.BooksTTL <= 0:
		return invalid("cache.books_ttl", "must be positive, got %s", cc.BooksTTL)
	case cc.StudentsTTL <= 0:
		return invalid("cache.students_ttl", "must be positive, got %s", cc.StudentsTTL)
	case cc.OrdersTTL <= 0:
		return invalid("cache.orders_ttl", "must be positive, got %s", cc.OrdersTTL)
	}

	switch cc.GenStore {
	case GenStoreLocal, GenStoreRedis:
	default:
		return invalid("cache.gen_store", "unknown backend %q", cc.GenStore)
	}
	switch cc.Mirror {
	case MirrorNone, MirrorRistretto, MirrorBigcache, MirrorRedis:
	default:
		return invalid("cache.mirror", "unknown provider %q", cc.Mirror)
	}
	if (cc.GenStore == GenStoreRedis || cc.Mirror == MirrorRedis) && strings.TrimSpace(c.Redis.Addr) == "" {
		return invalid("redis.addr", "required by the redis backend")
	}
	return nil
}

// UsesRedis reports whether any component needs a redis connection.
func (c *Config) UsesRedis() bool {
	return c.Cache.GenStore == GenStoreRedis || c.Cache.Mirror == MirrorRedis
}
