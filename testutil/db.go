package testutil

import (
	"path/filepath"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	"github.com/trezcool/koinonia/core"
	"github.com/trezcool/koinonia/core/school"
	"github.com/trezcool/koinonia/core/user"
	"github.com/trezcool/koinonia/storage/database"
)

// NewConfig returns the configuration used by tests: a sqlite database in a temp dir.
func NewConfig(t *testing.T) *core.Config {
	return &core.Config{
		Env:       "TEST",
		TestMode:  true,
		AppName:   "Koinonia",
		Build:     "test",
		SecretKey: "test-secret",
		Server: core.ServerConfig{
			Host:               "http://localhost:8000",
			ShutdownTimeout:    time.Second,
			JWTExpirationDelta: time.Hour,
			DisableReqLogs:     true,
		},
		Database: core.DatabaseConfig{
			Engine: database.SQLite,
			Path:   filepath.Join(t.TempDir(), "koinonia_test.db"),
		},
	}
}

// PrepareDB opens a fresh, fully migrated sqlite database. It is closed when the test ends.
func PrepareDB(t *testing.T, conf ...*core.Config) *sqlx.DB {
	t.Helper()

	var cfg *core.Config
	if len(conf) > 0 {
		cfg = conf[0]
	} else {
		cfg = NewConfig(t)
	}
	db, err := database.Open(cfg)
	if err != nil {
		t.Fatalf("PrepareDB() open failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err = database.Migrate(db, "up"); err != nil {
		t.Fatalf("PrepareDB() migrate failed: %v", err)
	}
	return db
}

// NewValidator returns a validator with every custom validation registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	school.InitValidators(validate, translator)
	return validate, translator
}
