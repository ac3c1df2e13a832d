package persistence

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"

	"github.com/devesh-qurilo/truepadosi/pkg/api"
)

// SQLiteStorage is a durable SecureStorage backed by SQLite. Values are
// sealed with XChaCha20-Poly1305 under a key derived from the passphrase
// with scrypt, so tokens at rest are encrypted rather than plain rows.
//
// It expects an *sql.DB that uses a SQLite driver (for example,
// "modernc.org/sqlite"). The caller is responsible for importing
// the driver, e.g.:
//
//	import _ "modernc.org/sqlite"
type SQLiteStorage struct {
	db   *sql.DB
	aead interface {
		Seal(dst, nonce, plaintext, additionalData []byte) []byte
		Open(dst, nonce, ciphertext, additionalData []byte) ([]byte, error)
	}
}

// Ensure SQLiteStorage implements the interface.
var _ api.SecureStorage = (*SQLiteStorage)(nil)

// scrypt parameters. Interactive-use cost: one derivation per process start.
const (
	scryptN = 1 << 15
	scryptR = 8
	scryptP = 1
)

// NewSQLiteStorage initializes the schema, loads (or creates) the key
// derivation salt, and returns a ready store. A store opened with the wrong
// passphrase fails on the first GetItem with ErrWrongPassphrase.
func NewSQLiteStorage(db *sql.DB, passphrase string) (*SQLiteStorage, error) {
	if passphrase == "" {
		return nil, errors.New("secure storage: passphrase is required")
	}

	s := &SQLiteStorage{db: db}
	if err := s.initSchema(); err != nil {
		return nil, err
	}

	salt, err := s.loadOrCreateSalt()
	if err != nil {
		return nil, err
	}

	key, err := scrypt.Key([]byte(passphrase), salt, scryptN, scryptR, scryptP, chacha20poly1305.KeySize)
	if err != nil {
		return nil, fmt.Errorf("secure storage: derive key: %w", err)
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("secure storage: init cipher: %w", err)
	}
	s.aead = aead

	return s, nil
}

func (s *SQLiteStorage) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS secure_items (
			key TEXT PRIMARY KEY,
			value BLOB NOT NULL
		);
		CREATE TABLE IF NOT EXISTS secure_meta (
			name TEXT PRIMARY KEY,
			value BLOB NOT NULL
		);`,
	)
	return err
}

func (s *SQLiteStorage) loadOrCreateSalt() ([]byte, error) {
	row := s.db.QueryRow(`SELECT value FROM secure_meta WHERE name = 'kdf_salt'`)

	var salt []byte
	err := row.Scan(&salt)
	if err == nil {
		return salt, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	salt = make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	if _, err := s.db.Exec(`INSERT INTO secure_meta (name, value) VALUES ('kdf_salt', ?)`, salt); err != nil {
		return nil, err
	}
	return salt, nil
}

func (s *SQLiteStorage) GetItem(ctx context.Context, key string) (string, error) {
	row := s.db.QueryRowContext(ctx, `SELECT value FROM secure_items WHERE key = ?`, key)

	var sealed []byte
	if err := row.Scan(&sealed); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", err
	}

	if len(sealed) < chacha20poly1305.NonceSizeX {
		return "", ErrWrongPassphrase
	}
	nonce, ciphertext := sealed[:chacha20poly1305.NonceSizeX], sealed[chacha20poly1305.NonceSizeX:]

	plain, err := s.aead.Open(nil, nonce, ciphertext, []byte(key))
	if err != nil {
		return "", ErrWrongPassphrase
	}
	return string(plain), nil
}

func (s *SQLiteStorage) SetItem(ctx context.Context, key, value string) error {
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return err
	}
	// The key is bound as additional data so a sealed value cannot be
	// replayed under a different key.
	sealed := s.aead.Seal(nonce, nonce, []byte(value), []byte(key))

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO secure_items (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, sealed,
	)
	return err
}

func (s *SQLiteStorage) RemoveItem(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM secure_items WHERE key = ?`, key)
	return err
}
