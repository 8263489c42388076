// Package config handles loading shelfhand's configuration file.
//
// # Overview
//
// This package reads a small TOML file to discover the shelfd daemon's API
// endpoint and a couple of presentation defaults. Everything else shelfhand
// persists (theme, sort order, filters) lives in the prefs package, which is
// written back at runtime; config is read-only.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/shelfhand/config.toml (default)
//  3. If the config file doesn't exist, fall back to hardcoded defaults
//  4. If the file exists but fields are missing/empty, use defaults
//  5. Apply SHELFHAND_* environment variables on top of whatever was read
//
// # Default Values
//
//   - Config file: ~/.config/shelfhand/config.toml
//   - API endpoint: 127.0.0.1:8399
//   - Timezone: UTC
//   - Page size: 50 (clamped to 200)
//
// # TOML Format
//
// Example shelfhand config.toml:
//
//	api_bind = "127.0.0.1:8399"
//	timezone = "Europe/Amsterdam"
//	page_size = 25
//
// All fields are optional. Tilde expansion is performed on the config path.
//
// # Environment Overrides
//
// Each field has an environment counterpart that wins over the file:
//
//   - SHELFHAND_API_BIND
//   - SHELFHAND_TIMEZONE
//   - SHELFHAND_PAGE_SIZE
//
// # Error Handling
//
// Load returns errors for:
//   - Path expansion failures (e.g., cannot determine home directory)
//   - File read errors (except os.ErrNotExist, which triggers defaults)
//   - TOML parsing errors
//   - Malformed environment values
//
// Missing config files are NOT an error - defaults are used instead. This
// allows shelfhand to work out-of-the-box against a local shelfd.
package config
