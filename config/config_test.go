package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/farellandr/rifas/internal/models"
)

func TestLoadConfigDefaultsAndEnv(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("PORT", "9090")
	t.Setenv("DB_MAX_OPEN_CONNS", "7")
	t.Setenv("TELEGRAM_ADMIN_CHAT_ID", "12345")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Port != "9090" || cfg.DBMaxOpenConns != 7 || cfg.TelegramAdminChatID != 12345 {
		t.Errorf("Env overrides not applied: %+v", cfg)
	}
	if cfg.TokenTTLHours != 24 || cfg.DBDriver != "postgres" {
		t.Errorf("Defaults not applied: %+v", cfg)
	}
	if cfg.GatewayEnabled() {
		t.Error("Gateway should be disabled without a secret key")
	}
}

func TestLoadConfigFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "port: \"7000\"\ndb_driver: sqlite\njwt_secret: from-file\nxendit:\n  secret_key: xnd_test\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("JWT_SECRET", "from-env")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Port != "7000" || cfg.DBDriver != "sqlite" {
		t.Errorf("File values not applied: %+v", cfg)
	}
	if cfg.JWTSecret != "from-env" {
		t.Errorf("Env should override file, got %q", cfg.JWTSecret)
	}
	if !cfg.GatewayEnabled() {
		t.Error("Gateway should be enabled from the file")
	}
}

func TestLoadConfigErrors(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")

	t.Run("missing secret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")
		if _, err := LoadConfig(); err == nil {
			t.Error("Expected error without JWT_SECRET")
		}
	})

	t.Run("bad driver", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("DB_DRIVER", "mysql")
		if _, err := LoadConfig(); err == nil {
			t.Error("Expected error for unsupported driver")
		}
	})

	t.Run("bad int", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("TOKEN_TTL_HOURS", "soon")
		if _, err := LoadConfig(); err == nil {
			t.Error("Expected error for non-numeric TOKEN_TTL_HOURS")
		}
	})
}

func TestInitDatabaseSqlite(t *testing.T) {
	cfg := defaults()
	cfg.DBDriver = "sqlite"
	cfg.DBPath = filepath.Join(t.TempDir(), "rifas.db")
	cfg.JWTSecret = "secret"
	cfg.AdminPassword = "s3cret"

	db, err := InitDatabase(cfg)
	if err != nil {
		t.Fatalf("InitDatabase failed: %v", err)
	}
	sqlDB, _ := db.DB()
	defer sqlDB.Close()

	var admins int64
	db.Model(&models.Admin{}).Where("username = ?", "admin").Count(&admins)
	if admins != 1 {
		t.Errorf("Expected seeded admin, got %d", admins)
	}

	again, err := InitDatabase(cfg)
	if err != nil {
		t.Fatalf("Second InitDatabase failed: %v", err)
	}
	againDB, _ := again.DB()
	defer againDB.Close()

	again.Model(&models.Admin{}).Count(&admins)
	if admins != 1 {
		t.Errorf("Seeding should be idempotent, got %d admins", admins)
	}
}
