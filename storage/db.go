package storage

import (
	"database/sql"
	"embed"
	"errors"
	"net/url"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
	migrate "github.com/rubenv/sql-migrate"

	"mailview/config"
	"mailview/log"
	"mailview/utils"
)

const driverName = "sqlite3"

//go:embed migrations/*.sql
var migrationFiles embed.FS

func init() {
	migrate.SetTable("migrations")
}

// OpenDatabase opens the sqlite database and applies pending migrations.
func OpenDatabase(cfg *config.Config) (*sqlx.DB, error) {
	dsn := createDataSourceName(cfg)
	log.Info().
		Str("dataSourceName", dsn).
		Msg("connecting to database")

	db, err := sqlx.Open(driverName, dsn)
	if err != nil {
		return nil, err
	}

	if err := applyMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// OpenInMemory opens a throwaway in-memory database. Used by tests.
func OpenInMemory() (*sqlx.DB, error) {
	db, err := sqlx.Open(driverName, "file::memory:?_foreign_keys=true")
	if err != nil {
		return nil, err
	}

	// A second connection would see a different empty database.
	db.SetMaxOpenConns(1)

	if err := applyMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func applyMigrations(db *sqlx.DB) error {
	source := migrate.EmbedFileSystemMigrationSource{
		FileSystem: migrationFiles,
		Root:       "migrations",
	}

	n, err := migrate.Exec(db.DB, driverName, source, migrate.Up)
	if err != nil {
		return err
	}

	if n > 0 {
		log.Info().
			Int("migrations", n).
			Msg("database migrations applied")
	}

	return nil
}

func createDataSourceName(cfg *config.Config) string {
	opts := make(url.Values)
	opts.Add("_foreign_keys", "true")
	opts.Add("_journal_mode", cfg.Database.JournalMode)

	dsn := url.URL{
		Scheme:   "file",
		Opaque:   cfg.Database.Filename,
		RawQuery: opts.Encode(),
	}

	return dsn.String()
}

// ensureRowsAffected converts a zero-rows-affected update into a
// not-found error.
func ensureRowsAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if n == 0 {
		return utils.NotFoundError("no rows affected", sql.ErrNoRows)
	}

	return nil
}

// IsErrNoRows checks if an error is caused by an empty sql result set.
func IsErrNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// IsErrUnique checks if an error is caused by a unique constraint.
func IsErrUnique(err error) bool {
	var sqliteErr sqlite3.Error

	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}

	return false
}
