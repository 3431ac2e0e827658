package db

import "embed"

// Store is the key-value local store backing catalog persistence.
type Store interface {
	ApplyMigrations(migrations embed.FS) error
	GetValue(key string) ([]byte, error)
	UpsertValue(key string, value []byte) error
	Close() error
}
