// Package config loads splice.toml.
//
// A configuration file is optional. Lookup order:
//
//  1. the path given with --config
//  2. $XDG_CONFIG_HOME/splice/splice.toml (or ~/.config/splice/splice.toml)
//  3. built-in defaults
//
// Example:
//
//	[compile]
//	mode = "space"
//	arrange = true
//
//	[store]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//	redis_ttl = "24h"
//
//	[server]
//	addr = ":8080"
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/splice/pkg/errors"
)

// FileName is the configuration file name.
const FileName = "splice.toml"

// Store backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
)

// Config is the whole configuration file.
type Config struct {
	Compile CompileConfig `toml:"compile"`
	Store   StoreConfig   `toml:"store"`
	Server  ServerConfig  `toml:"server"`
}

// CompileConfig holds import defaults. Command line flags override them.
type CompileConfig struct {
	Mode       string `toml:"mode"       validate:"oneof=direct space tagged"`
	Monopack   bool   `toml:"monopack"`
	Persistent bool   `toml:"persistent"`
	Arrange    bool   `toml:"arrange"`
	Casts      bool   `toml:"casts"`
}

// StoreConfig selects and configures the document store.
type StoreConfig struct {
	Backend string `toml:"backend" validate:"oneof=file redis mongo"`
	Dir     string `toml:"dir"     validate:"required_if=Backend file"`

	RedisAddr     string        `toml:"redis_addr"     validate:"required_if=Backend redis,omitempty,hostname_port"`
	RedisPassword string        `toml:"redis_password"`
	RedisDB       int           `toml:"redis_db"       validate:"min=0,max=15"`
	RedisPrefix   string        `toml:"redis_prefix"`
	RedisTTL      time.Duration `toml:"redis_ttl"      validate:"min=0"`

	MongoURI        string `toml:"mongo_uri"        validate:"required_if=Backend mongo,omitempty,uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
}

// ServerConfig configures `splice serve`.
type ServerConfig struct {
	Addr         string        `toml:"addr"          validate:"required,hostname_port"`
	ReadTimeout  time.Duration `toml:"read_timeout"  validate:"min=0"`
	WriteTimeout time.Duration `toml:"write_timeout" validate:"min=0"`
	// MaxBodyBytes bounds uploaded documents.
	MaxBodyBytes int64 `toml:"max_body_bytes" validate:"min=1"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Compile: CompileConfig{Mode: "direct"},
		Store: StoreConfig{
			Backend:     BackendFile,
			Dir:         defaultStoreDir(),
			RedisPrefix: "splice:",
		},
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			MaxBodyBytes: 8 << 20,
		},
	}
}

func defaultStoreDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "splice", "documents")
	}
	return filepath.Join(os.TempDir(), "splice", "documents")
}

// DefaultPath returns the per-user configuration path, whether or not the
// file exists.
func DefaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "splice", FileName)
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "splice", FileName)
	}
	return ""
}

// Load reads the configuration. An explicit path must exist; without one the
// per-user file is used if present, otherwise the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
		if path == "" {
			return Default(), nil
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return Default(), nil
		}
	}
	return LoadFile(path)
}

// LoadFile decodes path over the defaults and validates the result.
func LoadFile(path string) (*Config, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "read config %s", path)
	}
	return Parse(string(data))
}

// Parse decodes TOML text over the defaults and validates the result. Unknown
// keys are rejected.
func Parse(text string) (*Config, error) {
	cfg := Default()
	md, err := toml.Decode(text, cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown config keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and reports the first failures by their
// TOML key.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.Wrap(errors.ErrCodeInternal, err, "validate config")
	}
	msgs := make([]string, len(verrs))
	for i, fe := range verrs {
		msgs[i] = describe(fe)
	}
	return errors.New(errors.ErrCodeInvalidInput, "invalid config: %s", strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	key := tomlKey(fe.StructNamespace())
	switch fe.Tag() {
	case "oneof":
		return key + " must be one of: " + fe.Param()
	case "required", "required_if":
		return key + " is required"
	case "hostname_port":
		return key + " must be host:port"
	case "uri":
		return key + " must be a URI"
	case "min", "max":
		return key + " is out of range"
	}
	return key + " is invalid (" + fe.Tag() + ")"
}

// tomlKey turns Config.Store.RedisAddr into store.redis_addr.
func tomlKey(ns string) string {
	parts := strings.Split(ns, ".")
	if len(parts) > 0 && parts[0] == "Config" {
		parts = parts[1:]
	}
	for i, p := range parts {
		parts[i] = snake(p)
	}
	return strings.Join(parts, ".")
}

func snake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && !(s[i-1] >= 'A' && s[i-1] <= 'Z') {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
