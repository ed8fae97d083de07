// internal/config/model.go
//
// Typed configuration model for the storefront.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `.env`                                – dotenv values,
//   • `conf/global.yaml`                             – primary static file,
//   • `PRODUCTPRAAT_`-prefixed environment overrides – highest precedence.
//
// Any value whose string begins with the prefix `vault:` is resolved
// through the Vault client *before* unmarshalling, so the model never
// stores Vault URIs, only plain strings.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.
//   • Oxford commas, two spaces after periods.  No em-dash.

package config

import "time"

//
// HTTP section
//

// HTTP holds web-server tunables.  BaseURL is the public origin used for
// canonical links and the sitemap.
type HTTP struct {
	ListenAddr string `koanf:"listen_addr" validate:"required,hostname_port"`
	ForceHTTPS bool   `koanf:"force_https"`
	BaseURL    string `koanf:"base_url"    validate:"required,url"`
}

//
// Database section
//

// Database holds the DSN and its secret.
//
// The DSN (user, host, schema, flags) stays in YAML; the password usually
// comes from Vault and replaces whatever the DSN carries.
type Database struct {
	DSN      string `koanf:"dsn"      validate:"required"`
	Password string `koanf:"password"`
}

//
// Bol.com partner API
//

// Bol holds partner credentials.  Empty credentials disable the admin
// import endpoints but not the storefront.
type Bol struct {
	ClientID     string `koanf:"client_id"`
	ClientSecret string `koanf:"client_secret"`
	SiteCode     string `koanf:"site_code"`
	Country      string `koanf:"country" validate:"omitempty,oneof=NL BE"`
}

//
// Admin session and CSRF
//

type Session struct {
	CookieName string        `koanf:"cookie_name"`
	TTL        time.Duration `koanf:"ttl"`
}

type CSRF struct {
	Key string `koanf:"key"`
}

//
// Geo lookup
//

// Geo points at an optional MaxMind City database.
type Geo struct {
	CityDB string `koanf:"city_db"`
}

//
// Logging
//

type Log struct {
	Level string `koanf:"level" validate:"omitempty,oneof=debug info warn error"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime, never set in YAML or env.
type Paths struct {
	Root string // PRODUCTPRAAT_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	HTTP     HTTP     `koanf:"http"`
	Database Database `koanf:"database"`
	Bol      Bol      `koanf:"bol"`
	Session  Session  `koanf:"session"`
	CSRF     CSRF     `koanf:"csrf"`
	Geo      Geo      `koanf:"geo"`
	Log      Log      `koanf:"log"`
	Paths    Paths    `koanf:"-"`
}

// applyDefaults fills optional fields left empty.
func (c *Config) applyDefaults() {
	if c.Bol.Country == "" {
		c.Bol.Country = "NL"
	}
	if c.Session.CookieName == "" {
		c.Session.CookieName = "pp_session"
	}
	if c.Session.TTL <= 0 {
		c.Session.TTL = 8 * time.Hour
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}
