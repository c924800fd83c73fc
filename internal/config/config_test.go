package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/splice/pkg/errors"
)

func TestDefaultValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() error: %v", err)
	}
	if cfg.Compile.Mode != "direct" {
		t.Errorf("Compile.Mode = %q, want direct", cfg.Compile.Mode)
	}
	if cfg.Store.Backend != BackendFile {
		t.Errorf("Store.Backend = %q, want %q", cfg.Store.Backend, BackendFile)
	}
}

func TestParse(t *testing.T) {
	cfg, err := Parse(`
[compile]
mode = "space"
arrange = true
persistent = true

[store]
backend = "redis"
redis_addr = "localhost:6379"
redis_ttl = "24h"

[server]
addr = "127.0.0.1:9000"
`)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if cfg.Compile.Mode != "space" || !cfg.Compile.Arrange || !cfg.Compile.Persistent {
		t.Errorf("Compile = %+v", cfg.Compile)
	}
	if cfg.Compile.Monopack {
		t.Errorf("Compile.Monopack = true, want false")
	}
	if cfg.Store.RedisTTL != 24*time.Hour {
		t.Errorf("Store.RedisTTL = %v, want 24h", cfg.Store.RedisTTL)
	}
	if cfg.Store.RedisPrefix != "splice:" {
		t.Errorf("Store.RedisPrefix = %q, want default kept", cfg.Store.RedisPrefix)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
	if cfg.Server.MaxBodyBytes != 8<<20 {
		t.Errorf("Server.MaxBodyBytes = %d, want default kept", cfg.Server.MaxBodyBytes)
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"bad mode", "[compile]\nmode = \"fast\"", "compile.mode must be one of"},
		{"bad backend", "[store]\nbackend = \"s3\"", "store.backend must be one of"},
		{"redis without addr", "[store]\nbackend = \"redis\"", "store.redis_addr is required"},
		{"mongo without uri", "[store]\nbackend = \"mongo\"", "store.mongo_uri is required"},
		{"bad redis addr", "[store]\nbackend = \"redis\"\nredis_addr = \"nohost\"", "store.redis_addr must be host:port"},
		{"bad server addr", "[server]\naddr = \"\"", "server.addr is required"},
		{"redis db range", "[store]\nredis_db = 99", "store.redis_db is out of range"},
		{"unknown key", "[compile]\nturbo = true", "unknown config keys: compile.turbo"},
		{"syntax", "[compile\nmode = 1", "decode config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.text)
			if err == nil {
				t.Fatal("Parse() error = nil, want error")
			}
			if !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("code = %s, want %s", errors.GetCode(err), errors.ErrCodeInvalidInput)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want to contain %q", err, tt.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") without file error: %v", err)
	}
	if cfg.Compile.Mode != "direct" {
		t.Errorf("Load(\"\") Mode = %q, want default", cfg.Compile.Mode)
	}

	path := filepath.Join(dir, "splice", FileName)
	if DefaultPath() != path {
		t.Errorf("DefaultPath() = %q, want %q", DefaultPath(), path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("[compile]\nmode = \"tagged\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err = Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}
	if cfg.Compile.Mode != "tagged" {
		t.Errorf("Load(\"\") Mode = %q, want tagged", cfg.Compile.Mode)
	}

	if _, err := Load(filepath.Join(dir, "missing.toml")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Load(missing) error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestTomlKey(t *testing.T) {
	tests := map[string]string{
		"Config.Store.RedisAddr":     "store.redis_addr",
		"Config.Store.MongoURI":      "store.mongo_uri",
		"Config.Server.MaxBodyBytes": "server.max_body_bytes",
		"Config.Store.RedisDB":       "store.redis_db",
	}
	for in, want := range tests {
		if got := tomlKey(in); got != want {
			t.Errorf("tomlKey(%q) = %q, want %q", in, got, want)
		}
	}
}
