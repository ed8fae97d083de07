// internal/config/loader.go
//
// Configuration loader and hot-reloader.
//
/*
Context
--------
`Load()` builds one immutable `Config` struct from three layers (highest
precedence last):

  1. Optional `<root>/conf/.env`.
  2. `conf/global.yaml`.
  3. Environment variables prefixed `PRODUCTPRAAT_`, where `__` maps to "."
     (e.g., `PRODUCTPRAAT_HTTP__LISTEN_ADDR → http.listen_addr`).

String values of the form `vault:<mount>/<path>#<key>` are then swapped
for the secret they name.  The tree is unmarshalled into typed structs,
defaulted, validated, enriched with the runtime root path, and cached in an
`atomic.Pointer` for lock-free reads.  `Reload()` calls `Load()` again with
the last resolver and swaps the pointer.

Instrumentation
---------------
  • DEBUG spans - root discovery, YAML read, env overlay.
  • ERROR spans - YAML parse, env overlay, vault, unmarshal, validation.
  • INFO  span  - final “config loaded” with key highlights.
  • Logs use the global *sugared* logger (`zap.S()`) so early boot issues
    surface even before the file logger is installed.

Notes
-----
  • `rootDir()` climbs the cwd tree until it finds `conf/global.yaml`;
    this lets `go run ./cmd/web` work from any sub-directory.
  • Oxford commas, two spaces after periods.
*/
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

const (
	envPrefix   = "PRODUCTPRAAT_"
	vaultPrefix = "vault:"
	secretTTL   = 10 * time.Minute
)

// ErrNoVault is returned when config references Vault but no resolver was
// supplied.
var ErrNoVault = errors.New("config: vault reference without a vault client")

// SecretResolver fetches one key of a KV-v2 secret.  *vault.Client
// satisfies it.
type SecretResolver interface {
	GetKV(ctx context.Context, secretPath, key string, ttl time.Duration) (string, error)
}

var (
	current  atomic.Pointer[Config]
	resolver atomic.Pointer[resolverBox]
)

type resolverBox struct{ r SecretResolver }

/*──────────────────────────── root discovery ───────────────────────────────*/

// rootDir resolves PRODUCTPRAAT_ROOT or climbs directories until
// conf/global.yaml is found.  Falls back to executable heuristic for
// production layout.
func rootDir() string {
	if r := os.Getenv(envPrefix + "ROOT"); r != "" {
		return r
	}

	wd, _ := os.Getwd()
	dir := wd
	for {
		if _, err := os.Stat(filepath.Join(dir, "conf", "global.yaml")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir { // reached filesystem root
			break
		}
		dir = parent
	}

	exe, _ := os.Executable()
	if filepath.Base(filepath.Dir(exe)) == "bin" {
		return filepath.Dir(filepath.Dir(exe))
	}
	return wd
}

/*─────────────────────────────── loader ───────────────────────────────────*/

// Load reads .env, YAML, env overrides, resolves Vault references through
// r (may be nil), validates, and caches Config.
func Load(ctx context.Context, r SecretResolver) (*Config, error) {
	resolver.Store(&resolverBox{r: r})

	root := rootDir()
	zap.S().Debugw("config root resolved", "root", root)

	// .env (optional, no error if missing)
	_ = godotenv.Load(filepath.Join(root, "conf", ".env"))

	k := koanf.New(".")

	yamlPath := filepath.Join(root, "conf", "global.yaml")
	if err := k.Load(file.Provider(yamlPath), yaml.Parser()); err != nil {
		zap.S().Errorw("config yaml load failed", "file", yamlPath, "err", err)
		return nil, err
	}
	zap.S().Debugw("config yaml loaded", "file", yamlPath)

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		zap.S().Errorw("config env overlay failed", "err", err)
		return nil, err
	}

	if err := resolveSecrets(ctx, k, r); err != nil {
		zap.S().Errorw("config vault resolution failed", "err", err)
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		zap.S().Errorw("config unmarshal failed", "err", err)
		return nil, err
	}

	cfg.applyDefaults()
	cfg.Paths.Root = root
	if err := validateStruct(&cfg); err != nil {
		zap.S().Errorw("config validation failed", "err", err)
		return nil, err
	}

	current.Store(&cfg)
	zap.S().Infow("config loaded",
		"listen_addr", cfg.HTTP.ListenAddr,
		"force_https", cfg.HTTP.ForceHTTPS,
		"base_url", cfg.HTTP.BaseURL,
		"bol_enabled", cfg.Bol.ClientID != "",
		"root", cfg.Paths.Root,
	)
	return &cfg, nil
}

// envKey maps PRODUCTPRAAT_HTTP__LISTEN_ADDR to http.listen_addr.
func envKey(s string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(s, envPrefix), "__", "."))
}

// resolveSecrets replaces every "vault:<path>#<key>" string in k.
func resolveSecrets(ctx context.Context, k *koanf.Koanf, r SecretResolver) error {
	for _, key := range k.Keys() {
		raw, ok := k.Get(key).(string)
		if !ok || !strings.HasPrefix(raw, vaultPrefix) {
			continue
		}
		if r == nil {
			return fmt.Errorf("%w: %s", ErrNoVault, key)
		}
		path, field, err := ParseVaultRef(raw)
		if err != nil {
			return fmt.Errorf("config %s: %w", key, err)
		}
		val, err := r.GetKV(ctx, path, field, secretTTL)
		if err != nil {
			return fmt.Errorf("config %s: %w", key, err)
		}
		if err := k.Set(key, val); err != nil {
			return err
		}
		zap.S().Debugw("config secret resolved", "key", key, "path", path)
	}
	return nil
}

// ParseVaultRef splits "vault:<mount>/<path>#<key>".
func ParseVaultRef(ref string) (path, key string, err error) {
	body := strings.TrimPrefix(ref, vaultPrefix)
	path, key, ok := strings.Cut(body, "#")
	if !ok || path == "" || key == "" || !strings.Contains(path, "/") {
		return "", "", fmt.Errorf("config: malformed vault reference %q", ref)
	}
	return path, key, nil
}

/*──────────────────────────── helpers ─────────────────────────────────────*/

func Get() *Config { return current.Load() }

func Reload(ctx context.Context) error {
	var r SecretResolver
	if b := resolver.Load(); b != nil {
		r = b.r
	}
	_, err := Load(ctx, r)
	return err
}
