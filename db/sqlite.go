package db

import (
	"embed"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

type SqliteStore struct {
	DB *sqlx.DB
}

func NewSqliteStore(dsn string) (Store, error) {
	db, err := sqlx.Connect("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	return &SqliteStore{
		DB: db,
	}, nil
}

func (s *SqliteStore) ApplyMigrations(migrations embed.FS) error {
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect(string(goose.DialectSQLite3)); err != nil {
		return err
	}

	if err := goose.Up(s.DB.DB, "."); err != nil {
		return err
	}

	return nil
}

func (s *SqliteStore) GetValue(key string) ([]byte, error) {
	var row snapshotRow
	if err := s.DB.Get(&row, "SELECT id, value FROM snapshots WHERE id = ?", key); err != nil {
		return nil, err
	}
	return row.Value, nil
}

func (s *SqliteStore) UpsertValue(key string, value []byte) error {
	query := `
	INSERT INTO snapshots (id, value, updated_at)
	VALUES (?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT (id) DO UPDATE SET
	value = excluded.value,
	updated_at = excluded.updated_at
	WHERE id = ?
	`
	_, err := s.DB.Exec(query, key, value, key)
	return err
}

func (s *SqliteStore) Close() error {
	return s.DB.Close()
}

type snapshotRow struct {
	ID    string `db:"id"`
	Value []byte `db:"value"`
}
