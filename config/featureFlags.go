package config

import (
	"os"
	"strings"
)

// CatalogCacheDisabled bypasses the redis read-through catalog cache and
// always hits the database. Useful while editing catalogs in admin tooling.
//
// Set via env:
// - CPQ_CATALOG_CACHE_DISABLED=true
func CatalogCacheDisabled() bool {
	return boolFlag("CPQ_CATALOG_CACHE_DISABLED")
}

// StrictSaveValidation rejects saveConfiguration/updateConfiguration calls
// whose selections fail server-side validation, instead of persisting an
// in-progress draft. Completion always validates regardless of this flag.
//
// Set via env:
// - CPQ_STRICT_SAVE_VALIDATION=true
func StrictSaveValidation() bool {
	return boolFlag("CPQ_STRICT_SAVE_VALIDATION")
}

func boolFlag(name string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(name)))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}
