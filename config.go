package truepadosi

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"

	"github.com/devesh-qurilo/truepadosi/internal/persistence"
	"github.com/devesh-qurilo/truepadosi/internal/rest"
	"github.com/devesh-qurilo/truepadosi/pkg/api"
)

// Config describes how to construct a production Client. It is read from
// the environment once at startup and treated as immutable.
type Config struct {
	// APIBaseURL is the backend REST API root.
	APIBaseURL string `env:"TRUEPADOSI_API_BASE_URL" envDefault:"https://nityambackend.onrender.com/api/v1"`

	// PincodeBaseURL is the public postal-code directory.
	PincodeBaseURL string `env:"TRUEPADOSI_PINCODE_BASE_URL" envDefault:"https://api.postalpincode.in"`

	// HTTPTimeout bounds every backend request.
	HTTPTimeout time.Duration `env:"TRUEPADOSI_HTTP_TIMEOUT" envDefault:"15s"`

	// StoragePassphrase encrypts the session at rest. Required for Open.
	StoragePassphrase string `env:"TRUEPADOSI_STORAGE_PASSPHRASE"`
}

// LoadConfig reads Config from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("truepadosi: parse config: %w", err)
	}
	return cfg, nil
}

// Open builds a production Client: REST collaborators for the configured
// backend and an encrypted SQLite SecureStorage in the given database.
//
// The caller owns db and must import a SQLite driver, e.g.:
//
//	import _ "modernc.org/sqlite"
//
//	db, _ := sql.Open("sqlite", "file:truepadosi.db?_journal=WAL")
//	client, err := truepadosi.Open(db, cfg)
func Open(db *sql.DB, cfg Config, obs ...api.Observer) (*Client, error) {
	storage, err := persistence.NewSQLiteStorage(db, cfg.StoragePassphrase)
	if err != nil {
		return nil, err
	}

	backend := rest.NewClient(cfg.APIBaseURL, rest.WithTimeout(cfg.HTTPTimeout))
	pincode := rest.NewPincodeClient(rest.WithPincodeBaseURL(cfg.PincodeBaseURL))

	return NewClient(Collaborators{
		Auth:    backend,
		Steps:   backend,
		Feed:    backend,
		Storage: storage,
		Pincode: pincode,
	}, obs...)
}

// OpenWith builds a Client with the encrypted SQLite SecureStorage from
// Open but caller-supplied collaborators. Useful for tests and offline
// demos that still want durable sessions.
func OpenWith(db *sql.DB, cfg Config, c Collaborators, obs ...api.Observer) (*Client, error) {
	storage, err := persistence.NewSQLiteStorage(db, cfg.StoragePassphrase)
	if err != nil {
		return nil, err
	}
	c.Storage = storage
	return NewClient(c, obs...)
}

// NewMemoryClient builds a Client over in-memory storage and the given
// backend collaborators. Sessions do not survive a restart; best for tests
// and development.
func NewMemoryClient(c Collaborators, obs ...api.Observer) (*Client, error) {
	if c.Storage == nil {
		c.Storage = persistence.NewMemoryStorage()
	}
	return NewClient(c, obs...)
}
