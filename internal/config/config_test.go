package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

var keys = []string{
	"HTTP_ADDR", "DB_DSN", "DB_AUTO_MIGRATE", "JWT_SECRET", "JWT_TTL", "REDIS_ADDR",
	"USER_CACHE_TTL", "KAFKA_BROKERS", "KAFKA_TOPIC_PREFIX", "LOG_LEVEL", "BCRYPT_COST",
}

// clearEnv blanks every variable Load reads; t.Setenv restores them afterwards
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddr != ":8080" || cfg.DatabaseDSN != "" || !cfg.AutoMigrate {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if !cfg.UsesDevSecret() || cfg.JWTTTL != 24*time.Hour || cfg.UserCacheTTL != 10*time.Minute {
		t.Fatalf("unexpected auth/cache defaults %+v", cfg)
	}
	if cfg.LogLevel != slog.LevelInfo || cfg.BcryptCost != bcrypt.DefaultCost || cfg.KafkaTopicPrefix != "ledger" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if len(cfg.KafkaBrokers) != 0 {
		t.Fatalf("brokers got=%v want none", cfg.KafkaBrokers)
	}
}

func TestLoadFromEnvAndFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	content := "JWT_SECRET=from-file\nHTTP_ADDR=:9000\nKAFKA_BROKERS= k1:9092 , k2:9092 \n"
	if err := os.WriteFile(envFile, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("HTTP_ADDR", ":7000") // already set, wins over the file
	t.Setenv("DB_AUTO_MIGRATE", "no")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("JWT_TTL", "15m")

	cfg, err := Load(envFile)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(cfg.JWTSecret) != "from-file" || cfg.HTTPAddr != ":7000" {
		t.Fatalf("secret=%q addr=%q", cfg.JWTSecret, cfg.HTTPAddr)
	}
	if cfg.AutoMigrate || cfg.LogLevel != slog.LevelDebug || cfg.JWTTTL != 15*time.Minute {
		t.Fatalf("unexpected cfg %+v", cfg)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "k2:9092" {
		t.Fatalf("brokers got=%v", cfg.KafkaBrokers)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	for key, val := range map[string]string{
		"JWT_TTL":         "soon",
		"USER_CACHE_TTL":  "10",
		"LOG_LEVEL":       "loud",
		"BCRYPT_COST":     "99",
		"DB_AUTO_MIGRATE": "flase",
	} {
		clearEnv(t)
		t.Setenv(key, val)
		if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err == nil {
			t.Fatalf("%s=%s: expected error", key, val)
		}
	}
}

func TestLoadAutoMigrateSpellings(t *testing.T) {
	for val, want := range map[string]bool{"true": true, "1": true, "yes": true, "FALSE": false, "0": false, "no": false} {
		clearEnv(t)
		t.Setenv("DB_AUTO_MIGRATE", val)
		cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
		if err != nil {
			t.Fatalf("DB_AUTO_MIGRATE=%s: %v", val, err)
		}
		if cfg.AutoMigrate != want {
			t.Fatalf("DB_AUTO_MIGRATE=%s got=%v want=%v", val, cfg.AutoMigrate, want)
		}
	}
}
